package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-optimizer/metasight/analyzer"
)

const pageHTML = `<html><head><title>Shop</title>
<meta name="description" content="Buy stuff">
<meta name="keywords" content="shop, deals">
<meta property="og:image" content="https://cdn.shop.com/og.png">
</head><body>
<h1>Welcome</h1><h2>Deals</h2><h3>Today</h3>
<a href="/a">A</a><a href="https://x.com/b" rel="nofollow">B</a>
<img src="/i.png"><img src="/j.png" alt="Jacket">
</body></html>`

func render(t *testing.T, a *analyzer.Analysis) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, a))
	return buf.String()
}

func TestRender(t *testing.T) {
	a := analyzer.New(nil).AnalyzeHTML(pageHTML, "https://shop.com/")

	out := render(t, a)

	for _, want := range []string{
		"SEO report for https://shop.com/",
		"Search preview",
		"Open Graph card",
		"Twitter card",
		"https://cdn.shop.com/og.png",
		"[x]  Title tag",
		"[ ]  og:title",
		"shop, deals",
		"H1  Welcome",
		"  H2  Deals",
		"    H3  Today",
		"Missing alt",
		"Jacket",
	} {
		assert.Contains(t, out, want)
	}

	lines := strings.Split(out, "\n")
	var internal, external string
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "Internal"):
			internal = line
		case strings.HasPrefix(line, "External nofollow"):
			external = line
		}
	}
	assert.Contains(t, internal, "/a")
	assert.Contains(t, external, "https://x.com/b")
}

func TestRenderEmptyPage(t *testing.T) {
	a := analyzer.New(nil).AnalyzeHTML("", "https://empty.example.com")

	out := render(t, a)

	assert.Contains(t, out, analyzer.NoTitleText)
	assert.Contains(t, out, analyzer.NoDescriptionText)
	var empty int
	for _, line := range strings.Split(out, "\n") {
		if line == noneText {
			empty++
		}
	}
	// one per empty inventory
	assert.Equal(t, 3, empty)
}

func TestRenderNil(t *testing.T) {
	assert.Error(t, Render(&bytes.Buffer{}, nil))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRenderWriteError(t *testing.T) {
	a := analyzer.New(nil).AnalyzeHTML(pageHTML, "https://shop.com/")
	assert.Error(t, Render(failingWriter{}, a))
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "", indent("h1"))
	assert.Equal(t, "    ", indent("h3"))
	assert.Equal(t, "", indent("p"))
}
