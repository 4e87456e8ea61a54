package collector

import (
	"context"

	"github.com/kurihiro0119/github-pulse/internal/aggregator"
	"github.com/kurihiro0119/github-pulse/internal/domain"
)

// Snapshot is the strategy-independent result of one collection pass:
// repository metadata plus the reduced aggregates of the three record streams.
type Snapshot struct {
	Metadata domain.RepoMetadata
	Commits  domain.Aggregate
	Issues   domain.Aggregate
	Pulls    domain.Aggregate
}

// Collector collects commit, issue, and pull request activity for one
// repository over one reporting window. Implementations are the GitHub REST
// API path and the rendered pulse-page path; callers never branch on the
// strategy beyond choosing which collector to construct.
type Collector interface {
	Collect(ctx context.Context, repo domain.RepoRef, window domain.ReportWindow) (*Snapshot, error)
}

// Options control collection behavior shared by both strategies
type Options struct {
	PageSize  int
	RecentCap int
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = 100
	}
	if o.RecentCap <= 0 {
		o.RecentCap = aggregator.DefaultRecentCap
	}
	return o
}
