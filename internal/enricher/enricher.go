// Package enricher augments extracted records with detail-page data.
// Enrichment is strictly additive and never fatal: any fetch or parse
// failure leaves the record exactly as the list page produced it.
package enricher

import (
	"context"
	"log/slog"

	"github.com/maltedev/amazon-search-scraper/internal/extractor"
	"github.com/maltedev/amazon-search-scraper/internal/metrics"
	"github.com/maltedev/amazon-search-scraper/internal/models"
)

// DetailFetcher fetches a rendered detail page. The navigator satisfies
// this; tests substitute fakes.
type DetailFetcher interface {
	FetchDetail(ctx context.Context, task *models.SearchTask, url string) (string, error)
}

type Enricher struct {
	fetcher DetailFetcher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(fetcher DetailFetcher, m *metrics.Metrics) *Enricher {
	return &Enricher{
		fetcher: fetcher,
		metrics: m,
		logger:  slog.Default().With("component", "enricher"),
	}
}

// Enrich visits the record's detail page and adds the category path and
// feature bullets in place. List-page fields are never touched.
func (e *Enricher) Enrich(ctx context.Context, task *models.SearchTask, rec *models.ProductRecord) {
	if rec.ProductURL == "" {
		e.metrics.IncEnrichment("skipped")
		return
	}

	html, err := e.fetcher.FetchDetail(ctx, task, rec.ProductURL)
	if err != nil {
		e.logger.Warn("detail fetch failed, keeping list-page fields",
			"asin", rec.ASIN, "error", err)
		e.metrics.IncEnrichment("failed")
		return
	}

	data := extractor.ParseDetail(html)
	if len(data.CategoryPath) > 0 {
		rec.CategoryPath = data.CategoryPath
	}
	if len(data.FeatureBullets) > 0 {
		rec.FeatureBullets = data.FeatureBullets
	}
	e.metrics.IncEnrichment("ok")
}
