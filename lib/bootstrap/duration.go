// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"fmt"
	"math"
	"strconv"
)

// unitSeconds maps a duration unit suffix to its length in seconds.
var unitSeconds = map[byte]int64{
	's': 1,
	'm': 60,
	'h': 3600,
	'd': 86400,
}

// ParseExpiry parses a session expiry duration into whole seconds.
// Accepted forms are a bare non-negative integer ("3600") or an
// integer with a single unit suffix from s, m, h, d ("90m", "24h",
// "7d"). Anything else fails with ErrInvalidDuration; no default is
// ever substituted for malformed input. The CLI supplies the
// documented default only when the flag is omitted entirely.
func ParseExpiry(input string) (int64, error) {
	if input == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidDuration)
	}

	digits := input
	multiplier := int64(1)
	if unit, ok := unitSeconds[input[len(input)-1]]; ok {
		digits = input[:len(input)-1]
		multiplier = unit
		if digits == "" {
			return 0, fmt.Errorf("%w: %q has a unit but no number", ErrInvalidDuration, input)
		}
	}

	// ParseUint rejects signs, spaces, and fractions, so "-5m",
	// " 60" and "1.5h" all fail here.
	value, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, input)
	}

	if value > math.MaxInt64/uint64(multiplier) {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidDuration, input)
	}

	return int64(value) * multiplier, nil
}
