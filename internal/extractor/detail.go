package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	breadcrumbSelector = `#wayfinding-breadcrumbs_feature_div li a, nav[aria-label="Breadcrumb"] a`
	bulletsSelector    = "#feature-bullets ul li span"
)

// DetailData holds the fields only a detail page can provide.
type DetailData struct {
	CategoryPath   []string
	FeatureBullets []string
}

// ParseDetail extracts the breadcrumb category path (root to leaf) and
// the feature bullets from a rendered detail page. Both lists are
// best-effort and may be empty.
func ParseDetail(html string) *DetailData {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return &DetailData{}
	}

	data := &DetailData{}

	doc.Find(breadcrumbSelector).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			data.CategoryPath = append(data.CategoryPath, text)
		}
	})

	doc.Find(bulletsSelector).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			data.FeatureBullets = append(data.FeatureBullets, text)
		}
	})

	return data
}
