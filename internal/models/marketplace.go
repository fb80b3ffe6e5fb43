package models

import "strings"

// Marketplace identifies a country-specific Amazon storefront.
type Marketplace string

const (
	MarketplaceUS Marketplace = "US"
	MarketplaceUK Marketplace = "UK"
	MarketplaceDE Marketplace = "DE"
	MarketplaceFR Marketplace = "FR"
	MarketplaceJP Marketplace = "JP"
)

// ParseMarketplace maps a country code to a Marketplace, defaulting to US.
func ParseMarketplace(s string) Marketplace {
	switch Marketplace(strings.ToUpper(strings.TrimSpace(s))) {
	case MarketplaceUK:
		return MarketplaceUK
	case MarketplaceDE:
		return MarketplaceDE
	case MarketplaceFR:
		return MarketplaceFR
	case MarketplaceJP:
		return MarketplaceJP
	default:
		return MarketplaceUS
	}
}

func (m Marketplace) Domain() string {
	switch m {
	case MarketplaceUK:
		return "www.amazon.co.uk"
	case MarketplaceDE:
		return "www.amazon.de"
	case MarketplaceFR:
		return "www.amazon.fr"
	case MarketplaceJP:
		return "www.amazon.co.jp"
	default:
		return "www.amazon.com"
	}
}

func (m Marketplace) BaseURL() string {
	return "https://" + m.Domain()
}

func (m Marketplace) Locale() string {
	switch m {
	case MarketplaceUK:
		return "en-GB"
	case MarketplaceDE:
		return "de-DE"
	case MarketplaceFR:
		return "fr-FR"
	case MarketplaceJP:
		return "ja-JP"
	default:
		return "en-US"
	}
}

func (m Marketplace) TimezoneID() string {
	switch m {
	case MarketplaceUK:
		return "Europe/London"
	case MarketplaceDE:
		return "Europe/Berlin"
	case MarketplaceFR:
		return "Europe/Paris"
	case MarketplaceJP:
		return "Asia/Tokyo"
	default:
		return "America/New_York"
	}
}

func (m Marketplace) AcceptLanguage() string {
	switch m {
	case MarketplaceUK:
		return "en-GB,en;q=0.9"
	case MarketplaceDE:
		return "de-DE,de;q=0.9,en;q=0.8"
	case MarketplaceFR:
		return "fr-FR,fr;q=0.9,en;q=0.8"
	case MarketplaceJP:
		return "ja-JP,ja;q=0.9,en;q=0.8"
	default:
		return "en-US,en;q=0.9"
	}
}

// Currency returns the storefront's default ISO currency code.
func (m Marketplace) Currency() string {
	switch m {
	case MarketplaceUK:
		return "GBP"
	case MarketplaceDE, MarketplaceFR:
		return "EUR"
	case MarketplaceJP:
		return "JPY"
	default:
		return "USD"
	}
}

// DecimalComma reports whether the storefront formats prices with a
// decimal comma and dot thousands separators (1.234,56).
func (m Marketplace) DecimalComma() bool {
	return m == MarketplaceDE || m == MarketplaceFR
}
