package extractor

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/amazon-search-scraper/internal/models"
)

func usTask() *models.SearchTask {
	return &models.SearchTask{
		Keyword:     "wireless earbuds",
		Marketplace: models.MarketplaceUS,
		MaxItems:    50,
		MaxPages:    3,
	}
}

func wrapCards(cards ...string) string {
	return `<html><body><div class="s-main-slot">` + strings.Join(cards, "\n") + `</div></body></html>`
}

const fullCard = `
<div data-component-type="s-search-result" data-asin="B0TEST00001">
	<h2><a class="a-link-normal s-link-style a-text-normal" href="/dp/B0TEST00001?ref=sr_1_1"><span>Wireless Earbuds Pro</span></a></h2>
	<span class="a-price"><span class="a-offscreen">$29.99</span></span>
	<span class="a-price a-text-price"><span class="a-offscreen">$39.99</span></span>
	<span class="a-icon-alt">4.5 out of 5 stars</span>
	<span class="a-size-base s-underline-text">1,234</span>
	<i class="a-icon a-icon-prime"></i>
	<span class="a-badge-text">Best Seller</span>
	<span class="a-badge-text">Best Seller</span>
	<img class="s-image" src="https://m.media-amazon.com/images/I/1.jpg"/>
</div>`

func TestExtractFullCard(t *testing.T) {
	records := New().Extract(wrapCards(fullCard), usTask(), 1)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "B0TEST00001", rec.ASIN)
	assert.Equal(t, "Wireless Earbuds Pro", rec.Title)
	assert.Equal(t, "https://www.amazon.com/dp/B0TEST00001", rec.ProductURL)

	require.NotNil(t, rec.Price)
	assert.InDelta(t, 29.99, *rec.Price, 0.001)
	require.NotNil(t, rec.PriceText)
	assert.Equal(t, "$29.99", *rec.PriceText)
	require.NotNil(t, rec.OriginalPriceText)
	assert.Equal(t, "$39.99", *rec.OriginalPriceText)
	require.NotNil(t, rec.Currency)
	assert.Equal(t, "USD", *rec.Currency)

	require.NotNil(t, rec.Rating)
	assert.InDelta(t, 4.5, *rec.Rating, 0.001)
	require.NotNil(t, rec.ReviewsCount)
	assert.Equal(t, 1234, *rec.ReviewsCount)

	assert.True(t, rec.IsPrime)
	assert.False(t, rec.IsSponsored)
	assert.Equal(t, []string{"Best Seller"}, rec.Badges)

	require.NotNil(t, rec.ImageURL)
	assert.Equal(t, "https://m.media-amazon.com/images/I/1.jpg", *rec.ImageURL)

	assert.Equal(t, "wireless earbuds", rec.Keyword)
	assert.Equal(t, models.MarketplaceUS, rec.Country)
	assert.Equal(t, 1, rec.PageIndex)
}

func TestExtractMissingOptionalFields(t *testing.T) {
	card := `
<div data-component-type="s-search-result" data-asin="B0BARE00001">
	<h2><a class="a-link-normal s-link-style a-text-normal" href="/dp/B0BARE00001"><span>Bare Product</span></a></h2>
</div>`

	records := New().Extract(wrapCards(card), usTask(), 2)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Nil(t, rec.Price)
	assert.Nil(t, rec.PriceText)
	assert.Nil(t, rec.OriginalPriceText)
	assert.Nil(t, rec.Currency)
	assert.Nil(t, rec.Rating)
	// A product with zero reviews omits the node entirely: null, not 0.
	assert.Nil(t, rec.ReviewsCount)
	assert.Nil(t, rec.Brand)
	assert.Nil(t, rec.ImageURL)
	assert.False(t, rec.IsPrime)
	assert.False(t, rec.IsSponsored)
	assert.Empty(t, rec.Badges)
}

func TestExtractSkipsCardsWithoutIdentifier(t *testing.T) {
	noASIN := `
<div data-component-type="s-search-result" data-asin="">
	<h2><a class="a-link-normal s-link-style a-text-normal" href="/dp/X"><span>Orphan</span></a></h2>
</div>`
	noLink := `<div data-component-type="s-search-result" data-asin="B0NOLINK001"></div>`

	records := New().Extract(wrapCards(noASIN, noLink, fullCard), usTask(), 1)
	require.Len(t, records, 1)
	assert.Equal(t, "B0TEST00001", records[0].ASIN)
}

func TestExtractSponsoredCard(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  bool
	}{
		{"english label", "Sponsored", true},
		{"german label", "Gesponsert", true},
		{"unrelated secondary text", "Ships to Germany", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := fmt.Sprintf(`
<div data-component-type="s-search-result" data-asin="B0SPON00001">
	<span class="s-sponsored-label-text">%s</span>
	<h2><a class="a-link-normal s-link-style a-text-normal" href="/dp/B0SPON00001"><span>Ad Product</span></a></h2>
</div>`, tt.label)

			records := New().Extract(wrapCards(card), usTask(), 1)
			require.Len(t, records, 1)
			assert.Equal(t, tt.want, records[0].IsSponsored)
		})
	}
}

func TestExtractBrand(t *testing.T) {
	tests := []struct {
		name string
		card string
		want *string
	}{
		{
			name: "brand attribute",
			card: `<div data-component-type="s-search-result" data-asin="B0BRAND0001" data-brand="Anker">
				<h2><a class="a-link-normal s-link-style a-text-normal" href="/dp/B0BRAND0001"><span>X</span></a></h2></div>`,
			want: strPtr("Anker"),
		},
		{
			name: "brand node",
			card: `<div data-component-type="s-search-result" data-asin="B0BRAND0002">
				<h5 class="s-line-clamp-1"><span>Soundcore</span></h5>
				<h2><a class="a-link-normal s-link-style a-text-normal" href="/dp/B0BRAND0002"><span>X</span></a></h2></div>`,
			want: strPtr("Soundcore"),
		},
		{
			name: "badge text in brand slot is rejected",
			card: `<div data-component-type="s-search-result" data-asin="B0BRAND0003">
				<h5 class="s-line-clamp-1"><span>Amazon's Choice</span></h5>
				<h2><a class="a-link-normal s-link-style a-text-normal" href="/dp/B0BRAND0003"><span>X</span></a></h2></div>`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := New().Extract(wrapCards(tt.card), usTask(), 1)
			require.Len(t, records, 1)
			if tt.want == nil {
				assert.Nil(t, records[0].Brand)
			} else {
				require.NotNil(t, records[0].Brand)
				assert.Equal(t, *tt.want, *records[0].Brand)
			}
		})
	}
}

func TestExtractGermanMarketplace(t *testing.T) {
	card := `
<div data-component-type="s-search-result" data-asin="B0DE00000001">
	<h2><a class="a-link-normal s-link-style a-text-normal" href="/dp/B0DE00000001"><span>Kopfhörer</span></a></h2>
	<span class="a-price"><span class="a-offscreen">1.299,00 €</span></span>
	<span class="a-icon-alt">4,3 von 5 Sternen</span>
	<span class="a-size-base s-underline-text">2.456</span>
</div>`

	task := usTask()
	task.Marketplace = models.MarketplaceDE

	records := New().Extract(wrapCards(card), task, 1)
	require.Len(t, records, 1)

	rec := records[0]
	require.NotNil(t, rec.Price)
	assert.InDelta(t, 1299.00, *rec.Price, 0.001)
	require.NotNil(t, rec.Currency)
	assert.Equal(t, "EUR", *rec.Currency)
	require.NotNil(t, rec.Rating)
	assert.InDelta(t, 4.3, *rec.Rating, 0.001)
	require.NotNil(t, rec.ReviewsCount)
	assert.Equal(t, 2456, *rec.ReviewsCount)
	assert.Equal(t, "https://www.amazon.de/dp/B0DE00000001", rec.ProductURL)
}

func TestExtractPreservesDocumentOrder(t *testing.T) {
	var cards []string
	for i := 0; i < 5; i++ {
		cards = append(cards, fmt.Sprintf(`
<div data-component-type="s-search-result" data-asin="B0ORDER000%d">
	<h2><a class="a-link-normal s-link-style a-text-normal" href="/dp/B0ORDER000%d"><span>Item %d</span></a></h2>
</div>`, i, i, i))
	}

	records := New().Extract(wrapCards(cards...), usTask(), 1)
	require.Len(t, records, 5)
	for i, rec := range records {
		assert.Equal(t, fmt.Sprintf("B0ORDER000%d", i), rec.ASIN)
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	html := wrapCards(fullCard, fullCard)

	e := New()
	first := e.Extract(html, usTask(), 1)
	second := e.Extract(html, usTask(), 1)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.True(t, reflect.DeepEqual(first[i], second[i]))
	}
}

func strPtr(s string) *string {
	return &s
}
