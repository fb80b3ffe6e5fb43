package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/amazon-search-scraper/internal/models"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		text string
		mkt  models.Marketplace
		want float64
	}{
		{"us decimal", "$29.99", models.MarketplaceUS, 29.99},
		{"us with thousands", "$1,234.56", models.MarketplaceUS, 1234.56},
		{"uk decimal", "£9.50", models.MarketplaceUK, 9.50},
		{"german decimal comma", "92,14 €", models.MarketplaceDE, 92.14},
		{"german with thousands", "1.234,56 €", models.MarketplaceDE, 1234.56},
		{"german thousands only", "1.299 €", models.MarketplaceDE, 1299},
		{"french decimal comma", "45,90 €", models.MarketplaceFR, 45.90},
		{"japanese grouped integer", "￥1,980", models.MarketplaceJP, 1980},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parsePrice(tt.text, tt.mkt)
			require.NotNil(t, got)
			assert.InDelta(t, tt.want, *got, 0.001)
		})
	}

	t.Run("no digits", func(t *testing.T) {
		assert.Nil(t, parsePrice("Currently unavailable", models.MarketplaceUS))
	})
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"$29.99", "USD"},
		{"£9.50", "GBP"},
		{"45,90 €", "EUR"},
		{"¥1,980", "JPY"},
		{"29.99 USD", "USD"},
		{"29.99", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseCurrency(tt.text), "text=%q", tt.text)
	}
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *float64
	}{
		{"english label", "4.5 out of 5 stars", floatPtr(4.5)},
		{"german label", "4,3 von 5 Sternen", floatPtr(4.3)},
		{"integer rating", "5 out of 5 stars", floatPtr(5)},
		{"out of range", "9.5 out of 5 stars", nil},
		{"garbage", "not a rating", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseRating(tt.text)
			if tt.want == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.InDelta(t, *tt.want, *got, 0.001)
			}
		})
	}
}

func TestParseReviewCount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *int
	}{
		{"grouped comma", "1,234", intPtr(1234)},
		{"grouped dot", "2.456", intPtr(2456)},
		{"with suffix", "1,234 ratings", intPtr(1234)},
		{"plain", "87", intPtr(87)},
		{"no digits", "ratings", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseReviewCount(tt.text)
			if tt.want == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tt.want, *got)
			}
		})
	}
}

func floatPtr(f float64) *float64 {
	return &f
}

func intPtr(i int) *int {
	return &i
}
