package utils

import (
	"fmt"
	"time"
)

// NowMillis returns the current server time in epoch milliseconds, the unit
// every wire timestamp uses.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// FormatPosition formats a playback offset in seconds as MM:SS.
func FormatPosition(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
