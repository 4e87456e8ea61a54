package collector

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kurihiro0119/github-pulse/internal/aggregator"
	"github.com/kurihiro0119/github-pulse/internal/browser"
	"github.com/kurihiro0119/github-pulse/internal/domain"
	apperrors "github.com/kurihiro0119/github-pulse/internal/errors"
)

// Selectors on the rendered github.com pages. The pulse page only exposes
// totals and a short commit list, so the web path trades completeness for
// independence from API quotas.
const (
	webBaseURL = "https://github.com"

	selPulseSummary   = "div.Box.mt-3"
	selSummaryMetrics = "div.Box.mt-3 div.d-flex"
	selCommitLinks    = "li.commit a.message"
	selCommitAuthors  = "li.commit a.commit-author"
	selCommitTimes    = "li.commit relative-time"
	selStarsCounter   = "#repo-stars-counter-star"
	selForksCounter   = "#repo-network-counter"
	selIssuesCounter  = "#issues-repo-tab-count"
)

// SessionFactory opens a fresh browser session for one collection run
type SessionFactory func(ctx context.Context) (browser.Session, error)

// webCollector implements Collector by rendering the repository's pulse page
type webCollector struct {
	newSession SessionFactory
	logger     *logrus.Logger
	opts       Options
	baseURL    string
}

// NewWebCollector creates the browser-backed collector
func NewWebCollector(newSession SessionFactory, logger *logrus.Logger, opts Options) Collector {
	return &webCollector{
		newSession: newSession,
		logger:     logger,
		opts:       opts.withDefaults(),
		baseURL:    webBaseURL,
	}
}

// Collect renders the repository home page for metadata and the pulse page
// for activity totals. The browser session is released on every exit path.
func (c *webCollector) Collect(ctx context.Context, repo domain.RepoRef, window domain.ReportWindow) (*Snapshot, error) {
	session, err := c.newSession(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to open browser session", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			c.logger.WithError(cerr).Warn("browser session close failed")
		}
	}()

	c.logger.WithFields(logrus.Fields{
		"repo":   repo.FullName(),
		"period": periodFor(window.Days),
	}).Info("collecting pulse data from rendered pulse page")

	metadata, err := c.metadata(ctx, session, repo)
	if err != nil {
		return nil, err
	}

	commits, issues, pulls, err := c.pulse(ctx, session, repo, window)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Metadata: metadata,
		Commits:  commits,
		Issues:   issues,
		Pulls:    pulls,
	}, nil
}

func (c *webCollector) metadata(ctx context.Context, s browser.Session, repo domain.RepoRef) (domain.RepoMetadata, error) {
	url := fmt.Sprintf("%s/%s/%s", c.baseURL, repo.Owner, repo.Name)
	if err := s.Navigate(ctx, url); err != nil {
		return domain.RepoMetadata{}, apperrors.NewScrapeFailedError(selStarsCounter, err)
	}
	if err := s.WaitVisible(ctx, selStarsCounter); err != nil {
		return domain.RepoMetadata{}, apperrors.NewScrapeFailedError(selStarsCounter, err)
	}

	stars, err := c.counter(ctx, s, selStarsCounter)
	if err != nil {
		return domain.RepoMetadata{}, err
	}
	forks, err := c.counter(ctx, s, selForksCounter)
	if err != nil {
		return domain.RepoMetadata{}, err
	}
	openIssues, err := c.counter(ctx, s, selIssuesCounter)
	if err != nil {
		return domain.RepoMetadata{}, err
	}

	return domain.RepoMetadata{
		Stars:      stars,
		Forks:      forks,
		OpenIssues: openIssues,
	}, nil
}

func (c *webCollector) counter(ctx context.Context, s browser.Session, selector string) (int, error) {
	text, err := s.Text(ctx, selector)
	if err != nil {
		return 0, apperrors.NewScrapeFailedError(selector, err)
	}
	n, err := parseCounter(text)
	if err != nil {
		return 0, apperrors.NewScrapeFailedError(selector, err)
	}
	return n, nil
}

func (c *webCollector) pulse(ctx context.Context, s browser.Session, repo domain.RepoRef, window domain.ReportWindow) (commits, issues, pulls domain.Aggregate, err error) {
	url := fmt.Sprintf("%s/%s/%s/pulse?period=%s", c.baseURL, repo.Owner, repo.Name, periodFor(window.Days))
	if err := s.Navigate(ctx, url); err != nil {
		return commits, issues, pulls, apperrors.NewScrapeFailedError(selPulseSummary, err)
	}
	if err := s.WaitVisible(ctx, selPulseSummary); err != nil {
		return commits, issues, pulls, apperrors.NewScrapeFailedError(selPulseSummary, err)
	}

	lines, err := s.TextAll(ctx, selSummaryMetrics)
	if err != nil {
		return commits, issues, pulls, apperrors.NewScrapeFailedError(selSummaryMetrics, err)
	}

	// A zeroed summary is indistinguishable from a truly empty period, so
	// a missing line is a hard failure, never a silent zero.
	commitTotal, ok := summaryCount(lines, "commit")
	if !ok {
		return commits, issues, pulls, apperrors.NewScrapeFailedError(selSummaryMetrics+" [commit count]", nil)
	}
	pullTotal, ok := summaryCount(lines, "pull request")
	if !ok {
		return commits, issues, pulls, apperrors.NewScrapeFailedError(selSummaryMetrics+" [pull request count]", nil)
	}
	issueTotal, ok := summaryCount(lines, "issue")
	if !ok {
		return commits, issues, pulls, apperrors.NewScrapeFailedError(selSummaryMetrics+" [issue count]", nil)
	}

	recent, err := c.recentCommits(ctx, s)
	if err != nil {
		return commits, issues, pulls, err
	}

	commits = aggregator.Reduce(recent, c.opts.RecentCap)
	commits.Total = commitTotal
	// The page exposes no per-author commit counts, only the visible tail
	// of the commit list, so no breakdown is claimed.
	commits.ByContributor = map[string]int{}

	issues = domain.Aggregate{Total: issueTotal, ByContributor: map[string]int{}, Recent: []domain.RawRecord{}}
	pulls = domain.Aggregate{Total: pullTotal, ByContributor: map[string]int{}, Recent: []domain.RawRecord{}}
	return commits, issues, pulls, nil
}

// recentCommits reads the bounded commit list the pulse page renders.
// Entries missing a link or timestamp are skipped rather than fabricated.
func (c *webCollector) recentCommits(ctx context.Context, s browser.Session) ([]domain.RawRecord, error) {
	links, err := s.AttrAll(ctx, selCommitLinks, "href")
	if err != nil {
		return nil, apperrors.NewScrapeFailedError(selCommitLinks, err)
	}
	authors, err := s.TextAll(ctx, selCommitAuthors)
	if err != nil {
		return nil, apperrors.NewScrapeFailedError(selCommitAuthors, err)
	}
	times, err := s.AttrAll(ctx, selCommitTimes, "datetime")
	if err != nil {
		return nil, apperrors.NewScrapeFailedError(selCommitTimes, err)
	}

	n := len(links)
	if len(authors) < n {
		n = len(authors)
	}
	if len(times) < n {
		n = len(times)
	}

	records := make([]domain.RawRecord, 0, n)
	for i := 0; i < n; i++ {
		if links[i] == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, times[i])
		if err != nil {
			continue
		}
		records = append(records, domain.RawRecord{
			ID:        path.Base(links[i]),
			Author:    authors[i],
			CreatedAt: ts.UTC(),
		})
	}
	return records, nil
}

// periodFor maps the day window onto the pulse page's period parameter
func periodFor(days int) string {
	switch {
	case days <= 1:
		return "daily"
	case days <= 7:
		return "weekly"
	default:
		return "monthly"
	}
}

var countPattern = regexp.MustCompile(`[0-9][0-9,]*`)

// summaryCount finds the summary line mentioning keyword and extracts its
// leading count, e.g. "36 commits" or "24 Active pull requests"
func summaryCount(lines []string, keyword string) (int, bool) {
	for _, line := range lines {
		if !strings.Contains(strings.ToLower(line), keyword) {
			continue
		}
		match := countPattern.FindString(line)
		if match == "" {
			continue
		}
		n, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
		if err != nil {
			continue
		}
		return n, true
	}
	return 0, false
}

// parseCounter parses GitHub's abbreviated counters ("1,234", "1.2k", "3m")
func parseCounter(text string) (int, error) {
	s := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(text), ",", ""))
	if s == "" {
		return 0, fmt.Errorf("empty counter text")
	}

	mult := 1.0
	switch s[len(s)-1] {
	case 'k':
		mult = 1e3
		s = s[:len(s)-1]
	case 'm':
		mult = 1e6
		s = s[:len(s)-1]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable counter %q", text)
	}
	return int(v * mult), nil
}
