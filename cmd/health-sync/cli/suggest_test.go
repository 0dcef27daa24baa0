// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"sesions", "sessions", 1},
		{"bootstrp", "bootstrap", 1},
		{"finsh", "finish", 1},
		{"remoet", "remote", 2},
		{"kitten", "sitting", 3},
		{"zzzzz", "sessions", 8},
	}
	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []*Command{
		{Name: "bootstrap"},
		{Name: "run"},
		{Name: "finish"},
		{Name: "sessions"},
	}

	tests := []struct {
		input string
		want  string
	}{
		{"bootstrp", "bootstrap"},
		{"sesions", "sessions"},
		{"finsh", "finish"},
		{"rn", "run"},
		{"qqqqqqqq", ""}, // nothing within distance 3
	}
	for _, test := range tests {
		if got := suggestCommand(test.input, commands); got != test.want {
			t.Errorf("suggestCommand(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestSuggestFlag(t *testing.T) {
	newFlagSet := func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flagSet.String("store-dir", "", "session store directory")
		flagSet.Bool("prune-expired", false, "remove expired sessions")
		flagSet.BoolP("yes", "y", false, "skip confirmation")
		return flagSet
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"close long flag", []string{"--stor-dir"}, "--store-dir"},
		{"close with value", []string{"--prune-expred=true"}, "--prune-expired"},
		{"shorthand suggestion", []string{"--ys"}, "--yes"},
		{"distant flag", []string{"--zzzzzzzzz"}, ""},
		{"defined flag skipped", []string{"--store-dir", "--oops-this-one"}, ""},
		{"no flags in args", []string{"positional"}, ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := suggestFlag(test.args, newFlagSet()); got != test.want {
				t.Errorf("suggestFlag(%v) = %q, want %q", test.args, got, test.want)
			}
		})
	}
}
