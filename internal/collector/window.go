package collector

import (
	"time"

	"github.com/kurihiro0119/github-pulse/internal/domain"
)

// InWindow reports whether the record falls inside the reporting period.
// The cutoff itself is included: a record created exactly at the cutoff
// counts. Pagination's coarse page-level check only bounds how many pages
// are fetched; this per-record check decides inclusion, since a page may
// straddle the window boundary.
func InWindow(rec domain.RawRecord, cutoff time.Time) bool {
	return !rec.CreatedAt.Before(cutoff)
}
