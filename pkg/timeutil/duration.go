// Package timeutil parses the human-friendly window strings the schedule
// command accepts.
package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultWindow is the fallback schedule window used when none is provided.
const DefaultWindow = "1d"

var (
	windowPattern = regexp.MustCompile(`^\s*(\d+)\s*([a-z]+)`)
	unitMap       = map[string]time.Duration{
		"m":    time.Minute,
		"min":  time.Minute,
		"h":    time.Hour,
		"hr":   time.Hour,
		"hour": time.Hour,
		"d":    24 * time.Hour,
		"day":  24 * time.Hour,
		"w":    7 * 24 * time.Hour,
		"week": 7 * 24 * time.Hour,
	}
)

// ParseWindow parses a compact duration string such as "1d", "12h", or
// "1w2d" and returns the equivalent duration. When the input is empty the
// default window of one day is used.
func ParseWindow(input string) (time.Duration, error) {
	trimmed := strings.TrimSpace(strings.ToLower(input))
	if trimmed == "" {
		trimmed = DefaultWindow
	}

	remaining := trimmed
	total := time.Duration(0)
	for len(remaining) > 0 {
		matches := windowPattern.FindStringSubmatch(remaining)
		if len(matches) != 3 {
			return 0, fmt.Errorf("invalid duration segment %q", strings.TrimSpace(remaining))
		}
		value, err := strconv.ParseInt(matches[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration value %q: %w", matches[1], err)
		}
		base, ok := unitMap[matches[2]]
		if !ok {
			return 0, fmt.Errorf("unsupported duration unit %q", matches[2])
		}
		total += time.Duration(value) * base
		remaining = remaining[len(matches[0]):]
	}

	if total <= 0 {
		return 0, fmt.Errorf("duration must be greater than zero")
	}
	return total, nil
}
