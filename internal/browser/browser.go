// Package browser wraps headless-browser page rendering behind a small
// session interface, so DOM extraction logic can run against a fake in tests.
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Session is one live page-rendering browser session. A session is acquired
// for a single run and must be released with Close on every exit path so no
// browser process leaks across runs.
type Session interface {
	// Navigate loads the given URL in the session's page
	Navigate(ctx context.Context, url string) error

	// WaitVisible blocks until the selector matches a visible element or
	// the render timeout elapses
	WaitVisible(ctx context.Context, selector string) error

	// Text returns the trimmed text content of the first match
	Text(ctx context.Context, selector string) (string, error)

	// TextAll returns the trimmed text content of every match, in DOM order
	TextAll(ctx context.Context, selector string) ([]string, error)

	// AttrAll returns the given attribute of every match, in DOM order.
	// Elements without the attribute yield an empty string.
	AttrAll(ctx context.Context, selector, attr string) ([]string, error)

	// Close tears down the page and the browser process
	Close() error
}

// chromeSession implements Session on a headless Chrome via chromedp
type chromeSession struct {
	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
	timeout     time.Duration
}

// NewChromeSession starts a Chrome process and returns a session bound to a
// fresh tab. Every action on the session is bounded by timeout.
func NewChromeSession(headless bool, timeout time.Duration) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.UserAgent(userAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)

	// Start the browser now so a missing Chrome binary surfaces here
	// rather than on the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &chromeSession{
		ctx:         browserCtx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
		timeout:     timeout,
	}, nil
}

func (s *chromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	return chromedp.Run(tctx, actions...)
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

func (s *chromeSession) WaitVisible(ctx context.Context, selector string) error {
	return s.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (s *chromeSession) Text(ctx context.Context, selector string) (string, error) {
	var out string
	if err := s.run(ctx, chromedp.Text(selector, &out, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (s *chromeSession) TextAll(ctx context.Context, selector string) ([]string, error) {
	js := fmt.Sprintf(
		`Array.from(document.querySelectorAll(%q)).map(e => e.textContent.trim())`,
		selector,
	)
	var out []string
	if err := s.run(ctx, chromedp.Evaluate(js, &out)); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *chromeSession) AttrAll(ctx context.Context, selector, attr string) ([]string, error) {
	js := fmt.Sprintf(
		`Array.from(document.querySelectorAll(%q)).map(e => e.getAttribute(%q) || "")`,
		selector, attr,
	)
	var out []string
	if err := s.run(ctx, chromedp.Evaluate(js, &out)); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *chromeSession) Close() error {
	s.cancelCtx()
	s.cancelAlloc()
	return nil
}
