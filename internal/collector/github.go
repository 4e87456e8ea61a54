package collector

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/go-github/v55/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/kurihiro0119/github-pulse/internal/aggregator"
	"github.com/kurihiro0119/github-pulse/internal/domain"
)

// apiCollector implements Collector against the GitHub REST API
type apiCollector struct {
	client    *github.Client
	limiter   RateLimiter
	paginator *Paginator
	logger    *logrus.Logger
	opts      Options
}

// NewAPICollector creates the API-backed collector. An empty token selects
// the unauthenticated client, which works but carries a much lower
// rate-limit ceiling.
func NewAPICollector(token string, logger *logrus.Logger, opts Options) Collector {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	return newAPICollector(github.NewClient(httpClient), logger, opts)
}

func newAPICollector(client *github.Client, logger *logrus.Logger, opts Options) *apiCollector {
	opts = opts.withDefaults()
	limiter := NewRateLimiter(logger)
	return &apiCollector{
		client:    client,
		limiter:   limiter,
		paginator: NewPaginator(limiter, logger, opts.PageSize),
		logger:    logger,
		opts:      opts,
	}
}

// Collect fetches metadata and the three record streams sequentially. The
// window cutoff is computed once here so all three aggregates describe the
// same interval. Streams stay sequential so the shared quota counter is
// never raced.
func (c *apiCollector) Collect(ctx context.Context, repo domain.RepoRef, window domain.ReportWindow) (*Snapshot, error) {
	cutoff := window.Cutoff(time.Now().UTC())

	c.logger.WithFields(logrus.Fields{
		"repo":   repo.FullName(),
		"days":   window.Days,
		"cutoff": cutoff.Format(time.RFC3339),
	}).Info("collecting pulse data from GitHub API")

	metadata, err := c.metadata(ctx, repo)
	if err != nil {
		return nil, err
	}

	commits, err := c.commits(ctx, repo, cutoff)
	if err != nil {
		return nil, err
	}

	issues, err := c.issues(ctx, repo, cutoff)
	if err != nil {
		return nil, err
	}

	pulls, err := c.pulls(ctx, repo, cutoff)
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

func (c *apiCollector) metadata(ctx context.Context, repo domain.RepoRef) (domain.RepoMetadata, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.RepoMetadata{}, err
	}

	r, resp, err := c.client.Repositories.Get(ctx, repo.Owner, repo.Name)
	c.observe(resp)
	if err != nil {
		return domain.RepoMetadata{}, classifyAPIError("metadata", repo, resp, err)
	}

	return domain.RepoMetadata{
		Stars:      r.GetStargazersCount(),
		Forks:      r.GetForksCount(),
		OpenIssues: r.GetOpenIssuesCount(),
	}, nil
}

func (c *apiCollector) commits(ctx context.Context, repo domain.RepoRef, cutoff time.Time) (domain.Aggregate, error) {
	reducer := aggregator.New(c.opts.RecentCap)
	opts := &github.CommitsListOptions{
		Since:       cutoff,
		ListOptions: github.ListOptions{PerPage: c.opts.PageSize},
	}

	fetch := func(ctx context.Context, page int) (Page, *github.Response, error) {
		opts.Page = page
		commits, resp, err := c.client.Repositories.ListCommits(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			// 409 means the repository has no commits at all
			if resp != nil && resp.StatusCode == http.StatusConflict {
				return Page{}, resp, nil
			}
			return Page{}, resp, err
		}

		records := make([]domain.RawRecord, 0, len(commits))
		for _, commit := range commits {
			rec, err := commitRecord(commit)
			if err != nil {
				return Page{}, resp, err
			}
			records = append(records, rec)
		}
		return Page{Records: records, Count: len(commits)}, resp, nil
	}

	err := c.paginator.Each(ctx, "commits", repo, cutoff, fetch, func(rec domain.RawRecord) error {
		reducer.Add(rec)
		return nil
	})
	if err != nil {
		return domain.Aggregate{}, err
	}
	return reducer.Aggregate(), nil
}

func (c *apiCollector) issues(ctx context.Context, repo domain.RepoRef, cutoff time.Time) (domain.Aggregate, error) {
	reducer := aggregator.New(c.opts.RecentCap)
	opts := &github.IssueListByRepoOptions{
		State:       "all",
		Since:       cutoff,
		Sort:        "created",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: c.opts.PageSize},
	}

	fetch := func(ctx context.Context, page int) (Page, *github.Response, error) {
		opts.Page = page
		issues, resp, err := c.client.Issues.ListByRepo(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			return Page{}, resp, err
		}

		records := make([]domain.RawRecord, 0, len(issues))
		for _, issue := range issues {
			// The issues endpoint mixes in pull requests
			if issue.IsPullRequest() {
				continue
			}
			rec, err := issueRecord(issue)
			if err != nil {
				return Page{}, resp, err
			}
			records = append(records, rec)
		}
		return Page{Records: records, Count: len(issues)}, resp, nil
	}

	err := c.paginator.Each(ctx, "issues", repo, cutoff, fetch, func(rec domain.RawRecord) error {
		reducer.Add(rec)
		return nil
	})
	if err != nil {
		return domain.Aggregate{}, err
	}
	return reducer.Aggregate(), nil
}

func (c *apiCollector) pulls(ctx context.Context, repo domain.RepoRef, cutoff time.Time) (domain.Aggregate, error) {
	reducer := aggregator.New(c.opts.RecentCap)
	opts := &github.PullRequestListOptions{
		State:       "all",
		Sort:        "created",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: c.opts.PageSize},
	}

	fetch := func(ctx context.Context, page int) (Page, *github.Response, error) {
		opts.Page = page
		prs, resp, err := c.client.PullRequests.List(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			return Page{}, resp, err
		}

		records := make([]domain.RawRecord, 0, len(prs))
		for _, pr := range prs {
			rec, err := pullRecord(pr)
			if err != nil {
				return Page{}, resp, err
			}
			records = append(records, rec)
		}
		return Page{Records: records, Count: len(prs)}, resp, nil
	}

	err := c.paginator.Each(ctx, "pulls", repo, cutoff, fetch, func(rec domain.RawRecord) error {
		reducer.Add(rec)
		return nil
	})
	if err != nil {
		return domain.Aggregate{}, err
	}
	return reducer.Aggregate(), nil
}

// observe feeds the limiter from a response's rate headers. A response
// without X-RateLimit headers leaves resp.Rate zeroed; that is an absent
// signal, not an exhausted quota, so it must not reach the limiter.
func (c *apiCollector) observe(resp *github.Response) {
	if resp != nil && resp.Rate.Limit > 0 {
		c.limiter.Observe(resp.Rate.Remaining, resp.Rate.Reset.Time)
	}
}

// commitRecord is the strict parse boundary for commit payloads: a commit
// without a sha or an author date fails the run instead of propagating as
// an implicit zero value.
func commitRecord(commit *github.RepositoryCommit) (domain.RawRecord, error) {
	sha := commit.GetSHA()
	date := commit.GetCommit().GetAuthor().GetDate()
	if sha == "" || date.IsZero() {
		return domain.RawRecord{}, fmt.Errorf("commit record missing sha or author date")
	}
	return domain.RawRecord{
		ID:        sha,
		Author:    commit.GetAuthor().GetLogin(),
		CreatedAt: date.Time.UTC(),
	}, nil
}

func issueRecord(issue *github.Issue) (domain.RawRecord, error) {
	if issue.GetNumber() == 0 || issue.GetCreatedAt().IsZero() {
		return domain.RawRecord{}, fmt.Errorf("issue record missing number or creation date")
	}
	return domain.RawRecord{
		ID:        strconv.Itoa(issue.GetNumber()),
		Author:    issue.GetUser().GetLogin(),
		CreatedAt: issue.GetCreatedAt().Time.UTC(),
		State:     issue.GetState(),
	}, nil
}

func pullRecord(pr *github.PullRequest) (domain.RawRecord, error) {
	if pr.GetNumber() == 0 || pr.GetCreatedAt().IsZero() {
		return domain.RawRecord{}, fmt.Errorf("pull request record missing number or creation date")
	}

	state := pr.GetState()
	var mergedAt *time.Time
	if pr.MergedAt != nil {
		t := pr.MergedAt.Time.UTC()
		mergedAt = &t
		state = "merged"
	}

	return domain.RawRecord{
		ID:        strconv.Itoa(pr.GetNumber()),
		Author:    pr.GetUser().GetLogin(),
		CreatedAt: pr.GetCreatedAt().Time.UTC(),
		State:     state,
		MergedAt:  mergedAt,
	}, nil
}
