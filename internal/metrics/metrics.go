package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the crawl engine.
type Metrics struct {
	Registry         *prometheus.Registry
	PagesFetched     *prometheus.CounterVec
	NavRetries       prometheus.Counter
	RecordsExtracted prometheus.Counter
	RecordsEmitted   prometheus.Counter
	RecordsRejected  *prometheus.CounterVec
	Enrichments      *prometheus.CounterVec
	CrawlDuration    prometheus.Histogram
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	pagesFetched := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_pages_fetched_total",
			Help: "List-page fetches by resulting status.",
		},
		[]string{"status"},
	)
	navRetries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_navigation_retries_total",
			Help: "Navigation attempts beyond the first, per page.",
		},
	)
	recordsExtracted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_records_extracted_total",
			Help: "Product records parsed from list pages.",
		},
	)
	recordsEmitted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_records_emitted_total",
			Help: "Product records emitted to sinks after filtering.",
		},
	)
	recordsRejected := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_records_rejected_total",
			Help: "Product records rejected by the filter, by reason.",
		},
		[]string{"reason"},
	)
	enrichments := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_detail_enrichments_total",
			Help: "Detail-page enrichment attempts by outcome.",
		},
		[]string{"outcome"},
	)
	crawlDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crawler_keyword_duration_seconds",
			Help:    "Wall-clock duration of one keyword crawl.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	registry.MustRegister(pagesFetched, navRetries, recordsExtracted,
		recordsEmitted, recordsRejected, enrichments, crawlDuration)

	return &Metrics{
		Registry:         registry,
		PagesFetched:     pagesFetched,
		NavRetries:       navRetries,
		RecordsExtracted: recordsExtracted,
		RecordsEmitted:   recordsEmitted,
		RecordsRejected:  recordsRejected,
		Enrichments:      enrichments,
		CrawlDuration:    crawlDuration,
	}
}

// All increment helpers tolerate a nil receiver so call sites in tests
// can run without a registry.

func (m *Metrics) IncPageFetched(status string) {
	if m == nil {
		return
	}
	m.PagesFetched.WithLabelValues(status).Inc()
}

func (m *Metrics) IncNavRetry() {
	if m == nil {
		return
	}
	m.NavRetries.Inc()
}

func (m *Metrics) AddRecordsExtracted(n int) {
	if m == nil {
		return
	}
	m.RecordsExtracted.Add(float64(n))
}

func (m *Metrics) IncRecordEmitted() {
	if m == nil {
		return
	}
	m.RecordsEmitted.Inc()
}

func (m *Metrics) IncRecordRejected(reason string) {
	if m == nil {
		return
	}
	m.RecordsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncEnrichment(outcome string) {
	if m == nil {
		return
	}
	m.Enrichments.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveCrawlDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.CrawlDuration.Observe(d.Seconds())
}
