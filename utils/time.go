package utils

import "time"

// NowISO returns the current UTC time in the ISO-8601 shape the remote API
// uses for every timestamp column.
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
