// Package crawler drives one keyword crawl end to end: pagination over
// the navigator, extraction, dedup, optional detail enrichment, and
// emission through the filter to the sinks.
package crawler

import (
	"context"
	"log/slog"
	"time"

	"github.com/maltedev/amazon-search-scraper/internal/extractor"
	"github.com/maltedev/amazon-search-scraper/internal/metrics"
	"github.com/maltedev/amazon-search-scraper/internal/models"
	"github.com/maltedev/amazon-search-scraper/internal/pipeline"
)

// Fetcher is the navigation capability the orchestrator depends on. The
// navigator implements it; tests substitute fakes.
type Fetcher interface {
	FetchPage(ctx context.Context, task *models.SearchTask, pageIndex int) *models.PageFetchResult
	FetchDetail(ctx context.Context, task *models.SearchTask, url string) (string, error)
}

// Enricher augments a record in place from its detail page.
type Enricher interface {
	Enrich(ctx context.Context, task *models.SearchTask, rec *models.ProductRecord)
}

// Status is the terminal state of one keyword crawl.
type Status string

const (
	StatusDone    Status = "done"
	StatusAborted Status = "aborted"
)

// Summary reports what one keyword crawl did.
type Summary struct {
	Keyword      string
	Status       Status
	PagesFetched int
	Collected    int
	Emitted      int
}

type Options struct {
	// AbortAfter is the number of consecutive page failures that aborts
	// the keyword crawl early instead of exhausting the page budget.
	AbortAfter int
}

type Orchestrator struct {
	fetcher   Fetcher
	extractor *extractor.Extractor
	enricher  Enricher
	metrics   *metrics.Metrics
	opts      Options
	logger    *slog.Logger
}

func New(fetcher Fetcher, enr Enricher, m *metrics.Metrics, opts Options) *Orchestrator {
	if opts.AbortAfter < 1 {
		opts.AbortAfter = 2
	}
	return &Orchestrator{
		fetcher:   fetcher,
		extractor: extractor.New(),
		enricher:  enr,
		metrics:   m,
		opts:      opts,
		logger:    slog.Default().With("component", "orchestrator"),
	}
}

// Run crawls one keyword. An aborted crawl still emits everything
// collected before the abort; partial results are never discarded.
func (o *Orchestrator) Run(ctx context.Context, task *models.SearchTask, sink pipeline.RecordSink) (*Summary, error) {
	if err := task.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	state := models.NewCrawlState()
	var buffer []*models.ProductRecord

	status := o.page(ctx, task, state, &buffer)

	if task.FetchDetails && status != StatusAborted {
		status = o.detail(ctx, task, buffer)
	}

	emitted := o.emit(ctx, task, buffer, sink)
	o.metrics.ObserveCrawlDuration(time.Since(start))

	o.logger.Info("keyword crawl finished",
		"keyword", task.Keyword,
		"status", string(status),
		"pages", state.PagesFetched,
		"collected", len(buffer),
		"emitted", emitted)

	return &Summary{
		Keyword:      task.Keyword,
		Status:       status,
		PagesFetched: state.PagesFetched,
		Collected:    len(buffer),
		Emitted:      emitted,
	}, nil
}

// page runs the PAGING state: strictly in-order page fetches until the
// page budget, the item budget, the natural end of results, or too many
// consecutive failures. A failed page is retried before moving on, and
// every fetch counts against the page budget.
func (o *Orchestrator) page(ctx context.Context, task *models.SearchTask, state *models.CrawlState, buffer *[]*models.ProductRecord) Status {
	for state.PagesFetched < task.MaxPages && len(*buffer) < task.MaxItems {
		if ctx.Err() != nil {
			return StatusAborted
		}

		res := o.fetcher.FetchPage(ctx, task, state.CurrentPage)
		state.PagesFetched++

		switch res.Status {
		case models.PageOK:
			state.ConsecutiveFailures = 0
			records := o.extractor.Extract(res.RawContent, task, state.CurrentPage)
			o.metrics.AddRecordsExtracted(len(records))
			for _, rec := range records {
				if !state.MarkSeen(rec.ASIN) {
					continue
				}
				*buffer = append(*buffer, rec)
				if len(*buffer) >= task.MaxItems {
					break
				}
			}
			state.CurrentPage++

		case models.PageEmpty:
			// Natural end of results.
			return StatusDone

		case models.PageBlocked, models.PageNavError:
			state.ConsecutiveFailures++
			o.logger.Warn("page fetch degraded",
				"keyword", task.Keyword,
				"page", state.CurrentPage,
				"status", string(res.Status),
				"consecutive_failures", state.ConsecutiveFailures)
			if state.ConsecutiveFailures >= o.opts.AbortAfter {
				return StatusAborted
			}
			// Retry the same page index on the next iteration.
		}
	}
	return StatusDone
}

// detail runs the DETAILING state: enrich the first MaxDetailItems
// collected records in extraction order. Selection happens before
// filtering to keep enrichment decoupled from filter outcome.
func (o *Orchestrator) detail(ctx context.Context, task *models.SearchTask, buffer []*models.ProductRecord) Status {
	limit := task.MaxDetailItems
	if limit > len(buffer) {
		limit = len(buffer)
	}

	for i := 0; i < limit; i++ {
		if ctx.Err() != nil {
			return StatusAborted
		}
		o.enricher.Enrich(ctx, task, buffer[i])
	}
	return StatusDone
}

// emit runs every buffered record through the filter and writes the
// survivors, stopping at the item budget.
func (o *Orchestrator) emit(ctx context.Context, task *models.SearchTask, buffer []*models.ProductRecord, sink pipeline.RecordSink) int {
	filter := pipeline.NewFilter(task, o.metrics)

	emitted := 0
	for _, rec := range buffer {
		if emitted >= task.MaxItems {
			break
		}
		out, ok := filter.Process(rec)
		if !ok {
			continue
		}
		if err := sink.Write(ctx, out); err != nil {
			o.logger.Error("failed to write record", "asin", out.ASIN, "error", err)
			continue
		}
		o.metrics.IncRecordEmitted()
		emitted++
	}
	return emitted
}
