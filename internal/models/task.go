package models

import "fmt"

// SearchTask is the immutable unit of work for one keyword crawl.
type SearchTask struct {
	Keyword          string      `json:"keyword"`
	Marketplace      Marketplace `json:"marketplace"`
	MaxItems         int         `json:"max_items"`
	MaxPages         int         `json:"max_pages"`
	MinRating        float64     `json:"min_rating"`
	MinReviews       int         `json:"min_reviews"`
	ExcludeSponsored bool        `json:"exclude_sponsored"`
	FetchDetails     bool        `json:"fetch_details"`
	MaxDetailItems   int         `json:"max_detail_items"`
}

func (t *SearchTask) Validate() error {
	if t.Keyword == "" {
		return fmt.Errorf("keyword is required")
	}
	if t.MaxItems <= 0 {
		return fmt.Errorf("max items must be positive")
	}
	if t.MaxPages < 1 || t.MaxPages > 20 {
		return fmt.Errorf("max pages must be in range 1-20, got %d", t.MaxPages)
	}
	if t.MinRating < 0 {
		return fmt.Errorf("min rating cannot be negative")
	}
	if t.MinReviews < 0 {
		return fmt.Errorf("min reviews cannot be negative")
	}
	if t.MaxDetailItems < 0 {
		return fmt.Errorf("max detail items cannot be negative")
	}
	return nil
}

// PageStatus classifies the outcome of one list-page navigation.
type PageStatus string

const (
	PageOK       PageStatus = "OK"
	PageBlocked  PageStatus = "BLOCKED"
	PageEmpty    PageStatus = "EMPTY"
	PageNavError PageStatus = "NAV_ERROR"
)

// PageFetchResult is produced by the navigator per navigation attempt.
// RawContent is an HTML snapshot of the rendered page; it is consumed
// immediately by the extractor and never persisted.
type PageFetchResult struct {
	PageIndex  int
	Status     PageStatus
	RawContent string
}

// CrawlState tracks per-task progress. It is owned exclusively by the
// orchestrator of one SearchTask and never shared across tasks.
type CrawlState struct {
	SeenASINs           map[string]struct{}
	AcceptedCount       int
	CurrentPage         int
	PagesFetched        int
	ConsecutiveFailures int
}

func NewCrawlState() *CrawlState {
	return &CrawlState{
		SeenASINs:   make(map[string]struct{}),
		CurrentPage: 1,
	}
}

// MarkSeen records an ASIN, reporting whether it was new. The first
// occurrence wins; later duplicates from ad placements are dropped.
func (s *CrawlState) MarkSeen(asin string) bool {
	if _, ok := s.SeenASINs[asin]; ok {
		return false
	}
	s.SeenASINs[asin] = struct{}{}
	return true
}
