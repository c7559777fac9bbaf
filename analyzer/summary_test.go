package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrade(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		low, high int
		want      Status
	}{
		{"empty", 0, 30, 60, StatusBad},
		{"too short", 12, 30, 60, StatusWarning},
		{"at lower bound", 30, 30, 60, StatusWarning},
		{"in range", 45, 30, 60, StatusGood},
		{"at upper bound", 60, 30, 60, StatusWarning},
		{"description in range", 140, 120, 160, StatusGood},
		{"description too long", 200, 120, 160, StatusWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, grade(tt.n, tt.low, tt.high))
		})
	}
}

func TestSummarizeFallbacks(t *testing.T) {
	summary := Summarize(Extract("<body><p>bare page</p></body>", "https://shop.com/items"), "https://shop.com/items")

	assert.Equal(t, 0, summary.TitleLength)
	assert.Equal(t, StatusBad, summary.TitleStatus)
	assert.Equal(t, StatusBad, summary.DescriptionStatus)
	assert.Equal(t, Checklist{}, summary.Checklist)

	assert.Equal(t, SearchPreview{
		URL:         "https://shop.com/items",
		Title:       NoTitleText,
		Description: NoDescriptionText,
	}, summary.Search)
	assert.Equal(t, CardPreview{
		Title:       NoTitleText,
		Description: NoDescriptionText,
		Domain:      "shop.com",
	}, summary.OpenGraph)
	assert.Equal(t, summary.OpenGraph, summary.Twitter)
}

func TestSummarizePreviewChain(t *testing.T) {
	html := `<head>
		<title>Shop</title>
		<meta name="description" content="Buy stuff">
		<meta property="og:title" content="Shop on OG">
		<meta property="og:image" content="https://cdn.shop.com/og.png">
		<meta name="twitter:description" content="Tweet stuff">
	</head>`

	summary := Summarize(Extract(html, "https://www.shop.com/"), "https://www.shop.com/")

	assert.Equal(t, CardPreview{
		Title:       "Shop on OG",
		Description: "Buy stuff",
		Image:       "https://cdn.shop.com/og.png",
		Domain:      "www.shop.com",
	}, summary.OpenGraph)
	assert.Equal(t, CardPreview{
		Title:       "Shop on OG",
		Description: "Tweet stuff",
		Image:       "https://cdn.shop.com/og.png",
		Domain:      "www.shop.com",
	}, summary.Twitter)
	assert.Equal(t, Checklist{TitleFound: true, DescriptionFound: true, OGTitleFound: true}, summary.Checklist)
}

func TestSummarizeLengths(t *testing.T) {
	title := strings.Repeat("é", 45)
	description := strings.Repeat("a", 130)
	report := SEOReport{Title: &title, Description: &description}

	summary := Summarize(report, "https://example.com")

	assert.Equal(t, 45, summary.TitleLength)
	assert.Equal(t, StatusGood, summary.TitleStatus)
	assert.Equal(t, 130, summary.DescriptionLength)
	assert.Equal(t, StatusGood, summary.DescriptionStatus)
}

func TestSummarizeCounts(t *testing.T) {
	html := `<body>
		<a href="/a">A</a>
		<a href="/b" rel="nofollow">B</a>
		<a href="https://x.com" rel="nofollow">X</a>
		<img src="/1.png" alt="one"><img src="/2.png"><img src="/3.png">
		one two three
	</body>`

	summary := Summarize(Extract(html, "https://shop.com"), "https://shop.com")

	assert.Equal(t, LinkStats{Total: 3, Internal: 2, External: 1, Nofollow: 2}, summary.Links)
	assert.Equal(t, ImageStats{Total: 3, MissingAlt: 2}, summary.Images)
	assert.Equal(t, 6, summary.WordCount)
}

func TestHostnameFallsBackToInput(t *testing.T) {
	assert.Equal(t, "shop.com", hostname("https://shop.com:8443/x"))
	assert.Equal(t, "not a url", hostname("not a url"))
}
