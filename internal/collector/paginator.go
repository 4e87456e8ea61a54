package collector

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/google/go-github/v55/github"
	"github.com/sirupsen/logrus"

	"github.com/kurihiro0119/github-pulse/internal/domain"
	apperrors "github.com/kurihiro0119/github-pulse/internal/errors"
)

const (
	maxPageRetries = 3
	backoffBase    = 1 * time.Second
	maxBackoff     = 30 * time.Second
)

// Page is one fetched page of a listing. Count is the number of items the
// API returned before any filtering (the issues endpoint mixes in pull
// requests that get dropped), so termination checks see the true page size.
type Page struct {
	Records []domain.RawRecord
	Count   int
}

// PageFunc fetches one page of a listing and maps it to raw records
type PageFunc func(ctx context.Context, page int) (Page, *github.Response, error)

// Paginator drives repeated paged requests against one logical resource
// (commits, issues, or pull requests) until exhaustion or the window cutoff.
type Paginator struct {
	limiter  RateLimiter
	logger   *logrus.Logger
	pageSize int
}

// NewPaginator creates a paginator that shares the collector's rate limiter
func NewPaginator(limiter RateLimiter, logger *logrus.Logger, pageSize int) *Paginator {
	return &Paginator{
		limiter:  limiter,
		logger:   logger,
		pageSize: pageSize,
	}
}

// Each streams every in-window record of the listing to fn, page by page.
// The listing must be ordered newest-first; once a page's oldest record
// predates the cutoff the remaining pages cannot contain in-window records
// and pagination stops without another request. Records are handed to fn one
// at a time and never retained.
func (p *Paginator) Each(ctx context.Context, resource string, repo domain.RepoRef, cutoff time.Time, fetch PageFunc, fn func(domain.RawRecord) error) error {
	page := 1
	for {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}

		result, resp, err := p.fetchPage(ctx, resource, repo, page, fetch)
		if err != nil {
			return err
		}
		if resp != nil && resp.Rate.Limit > 0 {
			// A zeroed Rate means the response carried no rate headers at
			// all; feeding it to the limiter would fake an exhausted quota.
			p.limiter.Observe(resp.Rate.Remaining, resp.Rate.Reset.Time)
		}

		if result.Count == 0 {
			return nil
		}

		for _, rec := range result.Records {
			if !InWindow(rec, cutoff) {
				continue
			}
			if err := fn(rec); err != nil {
				return err
			}
		}

		if n := len(result.Records); n > 0 && result.Records[n-1].CreatedAt.Before(cutoff) {
			// The listing crossed the window boundary
			return nil
		}
		if result.Count < p.pageSize {
			// Last page
			return nil
		}
		if resp == nil || resp.NextPage == 0 {
			return nil
		}
		page = resp.NextPage
	}
}

// fetchPage requests one page, retrying transient failures (5xx, network
// timeouts) with exponential backoff. Everything else fails immediately with
// a classified error.
func (p *Paginator) fetchPage(ctx context.Context, resource string, repo domain.RepoRef, page int, fetch PageFunc) (Page, *github.Response, error) {
	var lastErr error
	for attempt := 0; attempt < maxPageRetries; attempt++ {
		if attempt > 0 {
			backoff := backoffBase << (attempt - 1)
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			p.logger.WithFields(logrus.Fields{
				"resource": resource,
				"repo":     repo.FullName(),
				"page":     page,
				"attempt":  attempt + 1,
				"backoff":  backoff.String(),
			}).Warn("retrying page after transient error")

			select {
			case <-ctx.Done():
				return Page{}, nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		result, resp, err := fetch(ctx, page)
		if err == nil {
			return result, resp, nil
		}

		classified := classifyAPIError(resource, repo, resp, err)
		if !isTransient(resp, err) {
			return Page{}, nil, classified
		}
		lastErr = classified
	}
	return Page{}, nil, lastErr
}

// classifyAPIError maps a go-github failure onto the error taxonomy
func classifyAPIError(resource string, repo domain.RepoRef, resp *github.Response, err error) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return apperrors.NewRateLimitedError("GitHub API rate limit exceeded")
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return apperrors.NewRateLimitedError("GitHub API secondary rate limit hit")
	}

	if resp != nil {
		switch {
		case resp.StatusCode == http.StatusNotFound:
			return apperrors.NewNotFoundError("repository " + repo.FullName())
		case resp.StatusCode >= 400:
			return apperrors.NewRequestFailedError(resource, repo.FullName(), resp.StatusCode)
		}
	}
	return apperrors.NewInternalError(resource+" request for "+repo.FullName()+" failed", err)
}

// isTransient reports whether the failure is worth retrying locally
func isTransient(resp *github.Response, err error) bool {
	if resp != nil {
		return resp.StatusCode >= 500
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
