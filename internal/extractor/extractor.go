// Package extractor parses rendered search-result pages into structured
// product records. Extraction is a pure function of the page snapshot:
// the same content always yields the same records, in document order.
package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/maltedev/amazon-search-scraper/internal/models"
)

const (
	cardSelector          = `div.s-main-slot div[data-component-type="s-search-result"]`
	titleLinkSelector     = "a.a-link-normal.s-link-style.a-text-normal"
	titleLinkFallback     = "h2 a.a-link-normal"
	priceSelector         = "span.a-price > span.a-offscreen"
	originalPriceSelector = "span.a-price.a-text-price span.a-offscreen"
	ratingSelector        = "span.a-icon-alt"
	reviewsSelector       = "span.a-size-base.s-underline-text"
	primeSelector         = `i.a-icon.a-icon-prime, span[data-component-type="s-prime"]`
	brandSelector         = "h5.s-line-clamp-1 span, span.a-size-base-plus.a-color-base"
	badgeSelector         = "span.a-badge-text, span.s-label-popover-default"
	sponsoredSelector     = "span.s-sponsored-label-text, span.a-color-secondary"
	imageSelector         = "img.s-image"
)

// sponsoredMarkers flag a paid placement across the supported locales.
var sponsoredMarkers = []string{"sponsored", "gesponsert", "sponsorisé", "スポンサー"}

// badgeLikeBrands are promo labels that sometimes land in the brand slot
// of a card; they are never real brand names.
var badgeLikeBrands = []string{
	"amazon's choice",
	"overall pick",
	"best seller",
	"limited time deal",
}

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract parses every result card on the page, skipping cards without a
// stable identifier. Missing optional fields degrade to nil/default per
// field; only the ASIN is load-bearing.
func (e *Extractor) Extract(html string, task *models.SearchTask, pageIndex int) []*models.ProductRecord {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var records []*models.ProductRecord
	doc.Find(cardSelector).Each(func(_ int, card *goquery.Selection) {
		if rec := e.extractCard(card, task, pageIndex); rec != nil {
			records = append(records, rec)
		}
	})
	return records
}

func (e *Extractor) extractCard(card *goquery.Selection, task *models.SearchTask, pageIndex int) *models.ProductRecord {
	asin, _ := card.Attr("data-asin")
	if asin == "" {
		return nil
	}

	titleLink := card.Find(titleLinkSelector).First()
	if titleLink.Length() == 0 {
		titleLink = card.Find(titleLinkFallback).First()
	}
	if titleLink.Length() == 0 {
		return nil
	}

	href, _ := titleLink.Attr("href")
	if href == "" {
		return nil
	}

	rec := &models.ProductRecord{
		ASIN:       asin,
		Title:      strings.TrimSpace(titleLink.Text()),
		ProductURL: canonicalURL(href, task.Marketplace),
		Badges:     []string{},
		Keyword:    task.Keyword,
		Country:    task.Marketplace,
		PageIndex:  pageIndex,
	}

	e.extractPriceBlock(card, rec, task.Marketplace)
	e.extractRatings(card, rec)
	e.extractBrand(card, rec)
	e.extractBadges(card, rec)

	rec.IsPrime = card.Find(primeSelector).Length() > 0
	rec.IsSponsored = isSponsored(card)

	if src, ok := card.Find(imageSelector).First().Attr("src"); ok && src != "" {
		rec.ImageURL = &src
	}

	return rec
}

func (e *Extractor) extractPriceBlock(card *goquery.Selection, rec *models.ProductRecord, mkt models.Marketplace) {
	priceText := strings.TrimSpace(card.Find(priceSelector).First().Text())
	if priceText != "" {
		rec.PriceText = &priceText
		rec.Price = parsePrice(priceText, mkt)
		if code := parseCurrency(priceText); code != "" {
			rec.Currency = &code
		}
	}

	originalText := strings.TrimSpace(card.Find(originalPriceSelector).First().Text())
	if originalText != "" && originalText != priceText {
		rec.OriginalPriceText = &originalText
	}
}

func (e *Extractor) extractRatings(card *goquery.Selection, rec *models.ProductRecord) {
	if label := strings.TrimSpace(card.Find(ratingSelector).First().Text()); label != "" {
		rec.Rating = parseRating(label)
	}
	if text := strings.TrimSpace(card.Find(reviewsSelector).First().Text()); text != "" {
		rec.ReviewsCount = parseReviewCount(text)
	}
}

func (e *Extractor) extractBrand(card *goquery.Selection, rec *models.ProductRecord) {
	brand, _ := card.Attr("data-brand")
	brand = strings.TrimSpace(brand)
	if brand == "" {
		brand = strings.TrimSpace(card.Find(brandSelector).First().Text())
	}
	if brand == "" {
		return
	}

	lowered := strings.ToLower(brand)
	for _, marker := range badgeLikeBrands {
		if strings.Contains(lowered, marker) {
			return
		}
	}
	rec.Brand = &brand
}

func (e *Extractor) extractBadges(card *goquery.Selection, rec *models.ProductRecord) {
	seen := make(map[string]struct{})
	card.Find(badgeSelector).Each(func(_ int, s *goquery.Selection) {
		label := strings.TrimSpace(s.Text())
		if label == "" {
			return
		}
		if _, dup := seen[label]; dup {
			return
		}
		seen[label] = struct{}{}
		rec.Badges = append(rec.Badges, label)
	})
}

func isSponsored(card *goquery.Selection) bool {
	text := strings.ToLower(strings.TrimSpace(card.Find(sponsoredSelector).First().Text()))
	if text == "" {
		return false
	}
	for _, marker := range sponsoredMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// canonicalURL absolutizes a card link against the marketplace domain and
// strips tracking query parameters.
func canonicalURL(href string, mkt models.Marketplace) string {
	if cut := strings.IndexByte(href, '?'); cut >= 0 {
		href = href[:cut]
	}
	if strings.HasPrefix(href, "/") {
		return mkt.BaseURL() + href
	}
	return href
}
