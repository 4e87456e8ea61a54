// Package pulse orchestrates one report run: strategy selection, collection,
// assembly, and the optional JSON export.
package pulse

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kurihiro0119/github-pulse/internal/browser"
	"github.com/kurihiro0119/github-pulse/internal/collector"
	"github.com/kurihiro0119/github-pulse/internal/domain"
	apperrors "github.com/kurihiro0119/github-pulse/internal/errors"
	"github.com/kurihiro0119/github-pulse/internal/report"
)

// Strategy selects the collection path
type Strategy string

const (
	StrategyAPI Strategy = "api"
	StrategyWeb Strategy = "web"
)

const defaultRenderTimeout = 10 * time.Second

// Options describe one report run
type Options struct {
	Repo       domain.RepoRef
	Window     domain.ReportWindow
	Token      string
	Strategy   Strategy
	ExportPath string

	PageSize  int
	RecentCap int

	// Web strategy only
	Headless      bool
	RenderTimeout time.Duration
}

// Runner executes report runs. Each run is independent: no state is shared
// across invocations.
type Runner struct {
	logger       *logrus.Logger
	newCollector func(opts Options) (collector.Collector, error)
}

// NewRunner creates a runner that builds real collectors per strategy
func NewRunner(logger *logrus.Logger) *Runner {
	r := &Runner{logger: logger}
	r.newCollector = r.defaultCollector
	return r
}

// Run validates the window, collects with the selected strategy, assembles
// the report, and writes the export when a path is given. Any error leaves
// no report and no export file behind.
func (r *Runner) Run(ctx context.Context, opts Options) (*domain.Report, error) {
	if !opts.Window.Valid() {
		return nil, apperrors.NewInvalidWindowError(opts.Window.Days)
	}

	coll, err := r.newCollector(opts)
	if err != nil {
		return nil, err
	}

	snapshot, err := coll.Collect(ctx, opts.Repo, opts.Window)
	if err != nil {
		return nil, err
	}

	rep := report.Assemble(opts.Repo, opts.Window, snapshot.Metadata,
		snapshot.Commits, snapshot.Issues, snapshot.Pulls, time.Now().UTC())

	if opts.ExportPath != "" {
		if err := report.Export(rep, opts.ExportPath); err != nil {
			return nil, err
		}
		r.logger.WithField("path", opts.ExportPath).Info("report exported")
	}

	return rep, nil
}

func (r *Runner) defaultCollector(opts Options) (collector.Collector, error) {
	copts := collector.Options{
		PageSize:  opts.PageSize,
		RecentCap: opts.RecentCap,
	}

	switch opts.Strategy {
	case StrategyAPI, "":
		return collector.NewAPICollector(opts.Token, r.logger, copts), nil
	case StrategyWeb:
		timeout := opts.RenderTimeout
		if timeout <= 0 {
			timeout = defaultRenderTimeout
		}
		headless := opts.Headless
		factory := func(ctx context.Context) (browser.Session, error) {
			return browser.NewChromeSession(headless, timeout)
		}
		return collector.NewWebCollector(factory, r.logger, copts), nil
	default:
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("unknown collection strategy %q", opts.Strategy))
	}
}
