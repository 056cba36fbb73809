package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ToTimecode renders elapsed seconds as "MM:SS", or "HH:MM:SS" once the hour
// mark is crossed. Components are always zero-padded to two digits.
func ToTimecode(seconds float64) string {
	total := int(math.Floor(seconds))
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// ParseTimecode converts "HH:MM:SS", "MM:SS" or bare "SS" back to seconds.
func ParseTimecode(timecode string) (int, error) {
	parts := strings.Split(timecode, ":")
	if len(parts) == 0 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid timecode %q", timecode)
	}

	values := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("invalid timecode %q: %w", timecode, err)
		}
		values[i] = v
	}

	switch len(values) {
	case 3:
		return values[0]*3600 + values[1]*60 + values[2], nil
	case 2:
		return values[0]*60 + values[1], nil
	default:
		return values[0], nil
	}
}
