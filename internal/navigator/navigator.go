// Package navigator drives browser navigation for one crawl slot: URL
// construction, timeout/retry/backoff, the shared rate budget, and the
// defense-detection gate after each render.
package navigator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/url"
	"time"

	"github.com/playwright-community/playwright-go"
	"golang.org/x/time/rate"

	"github.com/maltedev/amazon-search-scraper/internal/browser"
	"github.com/maltedev/amazon-search-scraper/internal/detector"
	"github.com/maltedev/amazon-search-scraper/internal/metrics"
	"github.com/maltedev/amazon-search-scraper/internal/models"
)

type Options struct {
	NavTimeout  time.Duration
	MaxAttempts int
	SettleDelay time.Duration
}

func DefaultOptions() Options {
	return Options{
		NavTimeout:  8 * time.Second,
		MaxAttempts: 3,
		SettleDelay: 2 * time.Second,
	}
}

// Navigator serves exactly one SearchTask. It lazily acquires a browser
// context slot from the shared pool on first use and holds it until
// Close, so cookies and session state persist across the task's pages.
type Navigator struct {
	pool     *browser.Pool
	slot     *browser.Slot
	detector *detector.Detector
	limiter  *rate.Limiter
	metrics  *metrics.Metrics
	opts     Options
	logger   *slog.Logger
}

func New(pool *browser.Pool, det *detector.Detector, limiter *rate.Limiter, m *metrics.Metrics, opts Options) *Navigator {
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = DefaultOptions().NavTimeout
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = DefaultOptions().MaxAttempts
	}
	return &Navigator{
		pool:     pool,
		detector: det,
		limiter:  limiter,
		metrics:  m,
		opts:     opts,
		logger:   slog.Default().With("component", "navigator"),
	}
}

// SearchURL builds the marketplace search URL for a keyword page.
func SearchURL(task *models.SearchTask, pageIndex int) string {
	u := fmt.Sprintf("%s/s?k=%s", task.Marketplace.BaseURL(), url.QueryEscape(task.Keyword))
	if pageIndex > 1 {
		u += fmt.Sprintf("&page=%d", pageIndex)
	}
	return u
}

// FetchPage navigates to one list page and classifies the result. It
// never returns an error: every failure mode is folded into the result
// status so the orchestrator branches on exactly four outcomes.
func (n *Navigator) FetchPage(ctx context.Context, task *models.SearchTask, pageIndex int) *models.PageFetchResult {
	result := &models.PageFetchResult{PageIndex: pageIndex}

	html, err := n.fetch(ctx, task, SearchURL(task, pageIndex))
	switch {
	case err == nil:
		status := n.detector.Classify(html)
		if status == models.PageBlocked {
			html, status = n.recoverFromBlock(ctx, task, SearchURL(task, pageIndex))
		}
		result.Status = status
		if status == models.PageOK || status == models.PageEmpty {
			result.RawContent = html
		}
	default:
		n.logger.Warn("page fetch failed", "keyword", task.Keyword, "page", pageIndex, "error", err)
		result.Status = models.PageNavError
	}

	n.metrics.IncPageFetched(string(result.Status))
	return result
}

// FetchDetail fetches a product detail page under the same retry,
// backoff, and defense-detection policy as list pages.
func (n *Navigator) FetchDetail(ctx context.Context, task *models.SearchTask, detailURL string) (string, error) {
	html, err := n.fetch(ctx, task, detailURL)
	if err != nil {
		return "", err
	}
	if n.detector.Classify(html) == models.PageBlocked {
		return "", models.ErrBlocked
	}
	return html, nil
}

// fetch performs the bounded retry loop around a single navigation.
func (n *Navigator) fetch(ctx context.Context, task *models.SearchTask, target string) (string, error) {
	if err := n.ensureSlot(ctx); err != nil {
		return "", err
	}
	if n.limiter != nil {
		if err := n.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	var lastErr error
	for attempt := 1; attempt <= n.opts.MaxAttempts; attempt++ {
		if attempt > 1 {
			n.metrics.IncNavRetry()
			if err := sleepCtx(ctx, backoffDelay(attempt-1)); err != nil {
				return "", err
			}
		}

		html, err := n.navigateOnce(target)
		if err == nil {
			return html, nil
		}
		lastErr = err
		n.logger.Warn("navigation attempt failed",
			"keyword", task.Keyword, "url", target, "attempt", attempt, "error", err)
	}

	return "", fmt.Errorf("%w: %v", models.ErrNavigation, lastErr)
}

func (n *Navigator) navigateOnce(target string) (string, error) {
	page, err := n.slot.NewPage()
	if err != nil {
		return "", err
	}
	defer page.Close()

	if _, err := page.Goto(target, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(n.opts.NavTimeout.Milliseconds())),
	}); err != nil {
		return "", err
	}

	// Give dynamic content a moment to render before snapshotting.
	if n.opts.SettleDelay > 0 {
		page.WaitForTimeout(float64(n.opts.SettleDelay.Milliseconds()))
	}

	return page.Content()
}

// recoverFromBlock performs the single context-level recovery action: a
// fresh context plus a brief pause, then one final retry. A page that is
// still blocked propagates BLOCKED instead of looping.
func (n *Navigator) recoverFromBlock(ctx context.Context, task *models.SearchTask, target string) (string, models.PageStatus) {
	n.logger.Info("defense page detected, recycling context", "keyword", task.Keyword)
	n.slot.Recycle()

	if err := sleepCtx(ctx, 5*time.Second+time.Duration(rand.Int63n(int64(3*time.Second)))); err != nil {
		return "", models.PageBlocked
	}

	html, err := n.fetch(ctx, task, target)
	if err != nil {
		return "", models.PageBlocked
	}
	if status := n.detector.Classify(html); status != models.PageBlocked {
		return html, status
	}
	return "", models.PageBlocked
}

func (n *Navigator) ensureSlot(ctx context.Context) error {
	if n.slot != nil {
		return nil
	}
	slot, err := n.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	n.slot = slot
	return nil
}

// Close releases the browser context slot back to the pool.
func (n *Navigator) Close() {
	if n.slot != nil {
		n.pool.Release(n.slot)
		n.slot = nil
	}
}

// backoffDelay computes exponential backoff with jitter for the given
// completed attempt count: base 1s doubling, plus up to 1s of jitter.
func backoffDelay(attempt int) time.Duration {
	base := time.Second << uint(attempt-1)
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	return base + time.Duration(rand.Int63n(int64(time.Second)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
