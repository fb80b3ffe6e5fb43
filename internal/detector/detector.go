// Package detector classifies rendered pages as normal, blocked, or
// empty. Detection is heuristic and layered: known interstitial markers
// first, then presence of the result container. Adding a new defense
// signature only means extending the marker list here; the navigator's
// retry logic never changes.
package detector

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/maltedev/amazon-search-scraper/internal/models"
)

// blockedMarkers are text fragments served on bot-protection and CAPTCHA
// interstitials. They are matched against the lowercased page source and
// chosen to be specific enough that a normal result page never contains
// them; BLOCKED triggers costly recovery, so false positives hurt more
// than false negatives.
var blockedMarkers = []string{
	"api-services-support@amazon.com",
	"to discuss automated access to amazon data",
	"/captcha/",
	"enter the characters you see below",
	"type the characters you see in this image",
	"geben sie die angezeigten zeichen in das feld ein",
	"klicke auf die schaltfläche unten",
}

const resultCardSelector = `div[data-component-type="s-search-result"]`

type Detector struct{}

func New() *Detector {
	return &Detector{}
}

// Classify inspects a rendered page snapshot. It returns PageBlocked for
// interstitials, PageEmpty when no result container is present (end of
// results, not an error), and PageOK otherwise.
func (d *Detector) Classify(html string) models.PageStatus {
	lowered := strings.ToLower(html)
	for _, marker := range blockedMarkers {
		if strings.Contains(lowered, marker) {
			return models.PageBlocked
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// Unparseable content has no recognizable result structure.
		return models.PageEmpty
	}

	if doc.Find(resultCardSelector).Length() == 0 {
		return models.PageEmpty
	}

	return models.PageOK
}
