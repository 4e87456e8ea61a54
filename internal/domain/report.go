package domain

import "time"

// ReportWindow is the trailing reporting period in days
type ReportWindow struct {
	Days int `json:"days"`
}

// Cutoff converts the window to an absolute timestamp relative to the
// collection start time. It is computed once per run and reused for all
// three record streams so every count describes the same interval.
func (w ReportWindow) Cutoff(start time.Time) time.Time {
	return start.Add(-time.Duration(w.Days) * 24 * time.Hour)
}

// Valid reports whether the window covers at least one day
func (w ReportWindow) Valid() bool {
	return w.Days > 0
}

// Aggregate is the reduced summary of one record stream
type Aggregate struct {
	Total         int            `json:"total"`
	ByContributor map[string]int `json:"by_contributor"`
	Recent        []RawRecord    `json:"recent"`
}

// Report is the final pulse report for a single run. It is created once,
// immutable thereafter, and optionally serialized to a JSON export file.
type Report struct {
	ID          string       `json:"id"`
	Repo        RepoRef      `json:"repo"`
	GeneratedAt time.Time    `json:"generated_at"`
	Window      ReportWindow `json:"window"`
	Metadata    RepoMetadata `json:"metadata"`
	Commits     Aggregate    `json:"commits"`
	Issues      Aggregate    `json:"issues"`
	Pulls       Aggregate    `json:"pulls"`
}
