package repository

import (
	"time"
)

// timeLayout keeps sub-second precision so a round trip preserves timestamps
const timeLayout = time.RFC3339Nano

// parseTime parses a stored timestamp
func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// formatTime renders t for storage
func formatTime(t time.Time) string {
	return t.Format(timeLayout)
}
