// Package pipeline applies the post-extraction filter/normalize stages
// and fans accepted records out to the configured sinks.
package pipeline

import (
	"github.com/maltedev/amazon-search-scraper/internal/metrics"
	"github.com/maltedev/amazon-search-scraper/internal/models"
)

// Rejection reasons reported to metrics.
const (
	RejectSponsored = "sponsored"
	RejectRating    = "rating"
	RejectReviews   = "reviews"
)

// Filter applies the task's inclusion rules in cost order: the sponsored
// check is cheapest and runs first, then the threshold filters, then
// numeric normalization on survivors.
type Filter struct {
	task    *models.SearchTask
	metrics *metrics.Metrics
}

func NewFilter(task *models.SearchTask, m *metrics.Metrics) *Filter {
	return &Filter{task: task, metrics: m}
}

// Process decides whether a record is emitted. A threshold above zero
// rejects records where the field could not be parsed: an unknown rating
// is not a passing rating.
func (f *Filter) Process(rec *models.ProductRecord) (*models.ProductRecord, bool) {
	if f.task.ExcludeSponsored && rec.IsSponsored {
		f.metrics.IncRecordRejected(RejectSponsored)
		return nil, false
	}

	if f.task.MinRating > 0 {
		if rec.Rating == nil || *rec.Rating < f.task.MinRating {
			f.metrics.IncRecordRejected(RejectRating)
			return nil, false
		}
	}

	if f.task.MinReviews > 0 {
		if rec.ReviewsCount == nil || *rec.ReviewsCount < f.task.MinReviews {
			f.metrics.IncRecordRejected(RejectReviews)
			return nil, false
		}
	}

	if rec.Currency == nil {
		def := f.task.Marketplace.Currency()
		rec.Currency = &def
	}

	return rec, true
}
