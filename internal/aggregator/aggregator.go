package aggregator

import (
	"github.com/kurihiro0119/github-pulse/internal/domain"
)

// DefaultRecentCap bounds the "recent items" list when no cap is configured
const DefaultRecentCap = 5

// Reducer folds a stream of records into an Aggregate in a single pass.
// Records are not retained beyond the bounded recent buffer, so memory stays
// flat regardless of how many records the stream produces.
type Reducer struct {
	cap           int
	total         int
	byContributor map[string]int
	recent        []domain.RawRecord
}

// New creates a reducer with the given recent-items cap
func New(recentCap int) *Reducer {
	if recentCap <= 0 {
		recentCap = DefaultRecentCap
	}
	return &Reducer{
		cap:           recentCap,
		byContributor: make(map[string]int),
		recent:        make([]domain.RawRecord, 0, recentCap),
	}
}

// Add consumes one record: increments the total, attributes it to its author
// when one exists, and inserts it into the bounded recent buffer
func (r *Reducer) Add(rec domain.RawRecord) {
	r.total++
	if rec.Author != "" {
		r.byContributor[rec.Author]++
	}
	r.insertRecent(rec)
}

// insertRecent keeps recent ordered by CreatedAt descending. Ties are broken
// by stream order: a record arriving later with an equal timestamp goes after
// the one already kept. When the buffer is full the oldest entry is dropped.
func (r *Reducer) insertRecent(rec domain.RawRecord) {
	pos := len(r.recent)
	for i, kept := range r.recent {
		if kept.CreatedAt.Before(rec.CreatedAt) {
			pos = i
			break
		}
	}
	if pos == r.cap {
		// Older than everything kept and the buffer is full
		return
	}

	r.recent = append(r.recent, domain.RawRecord{})
	copy(r.recent[pos+1:], r.recent[pos:])
	r.recent[pos] = rec

	if len(r.recent) > r.cap {
		r.recent = r.recent[:r.cap]
	}
}

// Aggregate returns the reduced summary of everything added so far
func (r *Reducer) Aggregate() domain.Aggregate {
	recent := make([]domain.RawRecord, len(r.recent))
	copy(recent, r.recent)

	byContributor := make(map[string]int, len(r.byContributor))
	for login, count := range r.byContributor {
		byContributor[login] = count
	}

	return domain.Aggregate{
		Total:         r.total,
		ByContributor: byContributor,
		Recent:        recent,
	}
}

// Reduce folds an already-materialized record slice, used by the web path
// where the rendered page only exposes a short list
func Reduce(records []domain.RawRecord, recentCap int) domain.Aggregate {
	r := New(recentCap)
	for _, rec := range records {
		r.Add(rec)
	}
	return r.Aggregate()
}
