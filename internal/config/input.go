package config

import (
	"fmt"
	"strings"

	"github.com/maltedev/amazon-search-scraper/internal/models"
)

// Input is one crawl request: a set of keywords sharing the same options.
// It arrives either from the environment at startup or from the jobs API.
type Input struct {
	Keywords           []string `json:"keywords"`
	MaxItemsPerKeyword int      `json:"max_items_per_keyword"`
	MaxPages           int      `json:"max_pages"`
	Country            string   `json:"country"`
	MinRating          float64  `json:"min_rating"`
	MinReviews         int      `json:"min_reviews"`
	ExcludeSponsored   bool     `json:"exclude_sponsored"`
	FetchDetails       bool     `json:"fetch_details"`
	MaxDetailItems     int      `json:"max_detail_items"`
}

// InputFromEnv builds an Input from KEYWORDS and related variables.
// Returns nil when no keywords are configured.
func InputFromEnv() *Input {
	keywords := getEnvStringSlice("KEYWORDS", nil)
	if len(keywords) == 0 {
		return nil
	}
	in := &Input{
		Keywords:           keywords,
		MaxItemsPerKeyword: getEnvInt("MAX_ITEMS_PER_KEYWORD", 50),
		MaxPages:           getEnvInt("MAX_PAGES", 3),
		Country:            getEnv("COUNTRY", "US"),
		MinRating:          getEnvFloat("MIN_RATING", 0),
		MinReviews:         getEnvInt("MIN_REVIEWS", 0),
		ExcludeSponsored:   getEnvBool("EXCLUDE_SPONSORED", false),
		FetchDetails:       getEnvBool("FETCH_DETAILS", false),
		MaxDetailItems:     getEnvInt("MAX_DETAIL_ITEMS", 5),
	}
	in.ApplyDefaults()
	return in
}

// ApplyDefaults fills zero values with the documented defaults and clamps
// out-of-range fields instead of rejecting them.
func (in *Input) ApplyDefaults() {
	cleaned := make([]string, 0, len(in.Keywords))
	for _, k := range in.Keywords {
		if trimmed := strings.TrimSpace(k); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	in.Keywords = cleaned

	if in.MaxItemsPerKeyword <= 0 {
		in.MaxItemsPerKeyword = 50
	}
	if in.MaxPages <= 0 {
		in.MaxPages = 3
	}
	if in.MaxPages > 20 {
		in.MaxPages = 20
	}
	if in.Country == "" {
		in.Country = "US"
	}
	if in.MinRating < 0 {
		in.MinRating = 0
	}
	if in.MinReviews < 0 {
		in.MinReviews = 0
	}
	if in.MaxDetailItems <= 0 {
		in.MaxDetailItems = 5
	}
	if in.MaxDetailItems > 50 {
		in.MaxDetailItems = 50
	}
}

func (in *Input) Validate() error {
	if len(in.Keywords) == 0 {
		return fmt.Errorf("at least one keyword is required")
	}
	if in.MinRating > 5 {
		return fmt.Errorf("min rating cannot exceed 5, got %.1f", in.MinRating)
	}
	return nil
}

// Tasks expands the input into one immutable SearchTask per keyword.
func (in *Input) Tasks() []*models.SearchTask {
	marketplace := models.ParseMarketplace(in.Country)
	tasks := make([]*models.SearchTask, 0, len(in.Keywords))
	for _, keyword := range in.Keywords {
		tasks = append(tasks, &models.SearchTask{
			Keyword:          keyword,
			Marketplace:      marketplace,
			MaxItems:         in.MaxItemsPerKeyword,
			MaxPages:         in.MaxPages,
			MinRating:        in.MinRating,
			MinReviews:       in.MinReviews,
			ExcludeSponsored: in.ExcludeSponsored,
			FetchDetails:     in.FetchDetails,
			MaxDetailItems:   in.MaxDetailItems,
		})
	}
	return tasks
}
