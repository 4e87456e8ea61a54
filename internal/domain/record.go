package domain

import "time"

// RawRecord is a single commit, issue, or pull request as it entered the
// pipeline. Records are never mutated after creation; each one is consumed
// exactly once by the aggregation pass that owns it.
type RawRecord struct {
	ID        string     `json:"id"`
	Author    string     `json:"author"`
	CreatedAt time.Time  `json:"created_at"`
	State     string     `json:"state,omitempty"`
	MergedAt  *time.Time `json:"merged_at,omitempty"`
}
