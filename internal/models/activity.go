package models

import "time"

// ActivityLogEntry is one append-only audit record.
type ActivityLogEntry struct {
	ID        int64
	UserID    *int64
	Action    string
	Details   *string
	IPAddress string
	Timestamp time.Time
}
