package utils

import (
	"fmt"
	"time"
)

// FormatRoundedUnit renders a duration in seconds using its largest whole
// unit: "42s", "7m", "3h".
func FormatRoundedUnit(seconds int64) string {
	if seconds < 0 {
		seconds = -seconds
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds >= 3600 {
		return fmt.Sprintf("%dh", seconds/3600)
	}
	return fmt.Sprintf("%dm", seconds/60)
}

// FormatUnixSeconds renders a fractional Unix timestamp in local time.
func FormatUnixSeconds(ts float64) string {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).Format("2006-01-02 15:04:05")
}
