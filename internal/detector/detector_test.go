package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maltedev/amazon-search-scraper/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		html string
		want models.PageStatus
	}{
		{
			name: "normal result page",
			html: `<html><body><div class="s-main-slot">
				<div data-component-type="s-search-result" data-asin="B01"></div>
			</div></body></html>`,
			want: models.PageOK,
		},
		{
			name: "captcha interstitial",
			html: `<html><body>
				<p>Enter the characters you see below</p>
				<form action="/errors/validateCaptcha"><img src="/captcha/abc.jpg"></form>
			</body></html>`,
			want: models.PageBlocked,
		},
		{
			name: "automated access notice",
			html: `<html><body>To discuss automated access to Amazon data please contact
				api-services-support@amazon.com.</body></html>`,
			want: models.PageBlocked,
		},
		{
			name: "german interstitial",
			html: `<html><body><p>Klicke auf die Schaltfläche unten</p>
				<button>Weiter shoppen</button></body></html>`,
			want: models.PageBlocked,
		},
		{
			name: "no result container",
			html: `<html><body><div class="s-no-results">No results for xyzzy.</div></body></html>`,
			want: models.PageEmpty,
		},
		{
			name: "empty document",
			html: "",
			want: models.PageEmpty,
		},
		{
			// A product mentioning captchas in its title must not trip
			// the marker list.
			name: "result page with captcha-adjacent title",
			html: `<html><body><div class="s-main-slot">
				<div data-component-type="s-search-result" data-asin="B02">
					<h2><span>CAPTCHA puzzle book for kids</span></h2>
				</div>
			</div></body></html>`,
			want: models.PageOK,
		},
	}

	d := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Classify(tt.html))
		})
	}
}
