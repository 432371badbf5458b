package entity

import "time"

// Snapshot is one row of the best-effort aggregate cache maintained by the
// stats job. It is never a source of truth.
type Snapshot struct {
	ID            string    `json:"id"`
	Users         int64     `json:"users"`
	Subscriptions int64     `json:"subscriptions"`
	Views         int64     `json:"views"`
	CreatedAt     time.Time `json:"created_at"`
}
