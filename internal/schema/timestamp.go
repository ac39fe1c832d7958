package schema

import "time"

// TimestampLayout is the wire layout for timestamps: ISO-8601 with
// microsecond precision, UTC, no timezone suffix.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// FormatTimestamp renders t in the wire timestamp layout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
