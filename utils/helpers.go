package utils

import (
	"fmt"
	"strings"
	"time"
)

// IsValidInterval reports whether interval names a ClickHouse toStartOf*
// bucketing function.
func IsValidInterval(interval string) bool {
	switch interval {
	case "Minute", "Hour", "Day", "Week", "Month", "Quarter", "Year":
		return true
	default:
		return false
	}
}

// NormalizeInterval maps "day", "DAY" and "Day" to "Day".
func NormalizeInterval(interval string) string {
	interval = strings.TrimSpace(interval)
	if interval == "" {
		return ""
	}
	return strings.ToUpper(interval[:1]) + strings.ToLower(interval[1:])
}

// ParseWindow parses optional RFC3339 start and end values. A missing end
// defaults to now and a missing start to end minus defaultWindow.
func ParseWindow(startParam, endParam string, defaultWindow time.Duration, now time.Time) (time.Time, time.Time, error) {
	end := now.UTC()
	if endParam != "" {
		t, err := time.Parse(time.RFC3339, endParam)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid 'end' timestamp format, use RFC3339 (e.g., 2006-01-02T15:04:05Z)")
		}
		end = t.UTC()
	}

	start := end.Add(-defaultWindow)
	if startParam != "" {
		t, err := time.Parse(time.RFC3339, startParam)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid 'start' timestamp format, use RFC3339 (e.g., 2006-01-02T15:04:05Z)")
		}
		start = t.UTC()
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("'start' must not be after 'end'")
	}
	return start, end, nil
}
