package extractor

import (
	"strconv"
	"strings"

	"github.com/maltedev/amazon-search-scraper/internal/models"
)

var currencyBySymbol = map[rune]string{
	'$': "USD",
	'€': "EUR",
	'£': "GBP",
	'¥': "JPY",
	'￥': "JPY", // fullwidth variant used on amazon.co.jp
}

// parsePrice normalizes a display price into a float, handling both
// dot-decimal (1,234.56) and comma-decimal (1.234,56) storefronts.
func parsePrice(text string, mkt models.Marketplace) *float64 {
	var numeric strings.Builder
	for _, ch := range text {
		if ch >= '0' && ch <= '9' || ch == ',' || ch == '.' {
			numeric.WriteRune(ch)
		}
	}
	s := numeric.String()
	if s == "" {
		return nil
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	switch {
	case hasComma && hasDot:
		// The rightmost separator is the decimal mark.
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		if mkt.DecimalComma() {
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			// US/UK/JP use the comma only for grouping (1,234).
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasDot:
		if mkt.DecimalComma() {
			// DE/FR group thousands with dots unless a comma is present.
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &val
}

// parseCurrency pulls a currency tag from display text: a known leading
// or trailing symbol maps to its ISO code, a trailing 3-4 letter token is
// taken verbatim. Empty result means "unknown"; the filter stage fills
// the marketplace default later.
func parseCurrency(text string) string {
	stripped := strings.TrimSpace(text)
	if stripped == "" {
		return ""
	}

	runes := []rune(stripped)
	if code, ok := currencyBySymbol[runes[0]]; ok {
		return code
	}
	if code, ok := currencyBySymbol[runes[len(runes)-1]]; ok {
		return code
	}

	fields := strings.Fields(stripped)
	last := fields[len(fields)-1]
	if n := len([]rune(last)); n >= 3 && n <= 4 && isLetters(last) {
		return strings.ToUpper(last)
	}
	return ""
}

func isLetters(s string) bool {
	for _, ch := range s {
		if (ch < 'a' || ch > 'z') && (ch < 'A' || ch > 'Z') {
			return false
		}
	}
	return true
}

// parseRating parses star labels such as "4.5 out of 5 stars" or
// "4,5 von 5 Sternen" into their leading numeric value.
func parseRating(text string) *float64 {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return nil
	}
	val, err := strconv.ParseFloat(strings.ReplaceAll(fields[0], ",", "."), 64)
	if err != nil || val < 0 || val > 5 {
		return nil
	}
	return &val
}

// parseReviewCount parses a formatted integer such as "1,234" or
// "1.234 ratings". Returns nil when no digits are present; a missing
// review node must stay null, never zero.
func parseReviewCount(text string) *int {
	var digits strings.Builder
	for _, ch := range text {
		if ch >= '0' && ch <= '9' {
			digits.WriteRune(ch)
		}
	}
	if digits.Len() == 0 {
		return nil
	}
	val, err := strconv.Atoi(digits.String())
	if err != nil {
		return nil
	}
	return &val
}
