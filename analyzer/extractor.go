package analyzer

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/idna"
)

// MissingLinkText is used for anchors without any text content.
// TODO: the doubled word is a known quirk kept verbatim; drop it once the
// report consumers stop matching on this exact string.
const MissingLinkText = "No Text Text"

// opaqueOrigin is the serialized origin of URLs without a host-based origin
const opaqueOrigin = "null"

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
	"ftp":   "21",
}

// Extract parses htmlText and derives the SEO report for the page at baseURL.
// Malformed markup never fails: whatever the parser recovers is reported.
func Extract(htmlText, baseURL string) SEOReport {
	doc := parseDocument(htmlText)

	report := SEOReport{
		Title:       extractTitle(doc),
		Headings:    extractHeadings(doc),
		OGTags:      make(map[string]string),
		TwitterTags: make(map[string]string),
		Images:      extractImages(doc),
		Links:       extractLinks(doc, baseURL),
		WordCount:   countWords(doc.Find("body").First().Text()),
	}
	extractMetaTags(doc, &report)

	return report
}

func parseDocument(htmlText string) *goquery.Document {
	// noscript content is markup, as in a parser without script support
	root, err := html.ParseWithOptions(strings.NewReader(htmlText), html.ParseOptionEnableScripting(false))
	if err != nil {
		// only reader errors end up here, which a string reader never returns
		root = &html.Node{Type: html.DocumentNode}
	}
	return goquery.NewDocumentFromNode(root)
}

func extractTitle(doc *goquery.Document) *string {
	title := doc.Find("title").First().Text()
	if title == "" {
		return nil
	}
	return &title
}

// extractMetaTags applies the meta rules in order; the first rule that matches
// a tag consumes it and later duplicates overwrite earlier ones.
func extractMetaTags(doc *goquery.Document, report *SEOReport) {
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name := strings.ToLower(s.AttrOr("name", ""))
		property := strings.ToLower(s.AttrOr("property", ""))
		content := s.AttrOr("content", "")
		if content == "" {
			return
		}

		switch {
		case name == "description":
			report.Description = &content
		case name == "keywords":
			report.Keywords = &content
		case strings.HasPrefix(property, "og:"):
			report.OGTags[strings.TrimPrefix(property, "og:")] = content
		case strings.HasPrefix(name, "twitter:"):
			report.TwitterTags[strings.TrimPrefix(name, "twitter:")] = content
		}
	})
}

func extractHeadings(doc *goquery.Document) []Heading {
	headings := make([]Heading, 0)
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		text := collapseWhitespace(s.Text())
		if text == "" {
			return
		}
		headings = append(headings, Heading{
			Level: goquery.NodeName(s),
			Text:  text,
		})
	})
	return headings
}

func extractImages(doc *goquery.Document) []Image {
	images := make([]Image, 0)
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src := s.AttrOr("src", "")
		if src == "" {
			return
		}
		img := Image{Src: src}
		if alt := s.AttrOr("alt", ""); alt != "" {
			img.Alt = &alt
		}
		images = append(images, img)
	})
	return images
}

func extractLinks(doc *goquery.Document, baseURL string) []Link {
	origin := newOriginResolver(baseURL)

	links := make([]Link, 0)
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		href := s.AttrOr("href", "")
		if shouldSkipLink(href) {
			return
		}

		text := collapseWhitespace(s.Text())
		if text == "" {
			text = MissingLinkText
		}

		links = append(links, Link{
			Href:       href,
			Text:       text,
			IsExternal: origin.isExternal(href),
			Nofollow:   strings.Contains(s.AttrOr("rel", ""), "nofollow"),
		})
	})
	return links
}

// shouldSkipLink reports whether href is missing or is a script/mail pseudo link.
// Scheme matching ignores case and leading whitespace, the way browsers parse hrefs.
func shouldSkipLink(href string) bool {
	if href == "" {
		return true
	}
	scheme := strings.ToLower(strings.TrimLeftFunc(href, isSpace))
	return strings.HasPrefix(scheme, "javascript:") || strings.HasPrefix(scheme, "mailto:")
}

// originResolver classifies hrefs against the origin of the page URL.
// When the page URL has no usable origin, relative hrefs cannot be resolved and
// count as internal while every absolute href counts as external.
type originResolver struct {
	origin string
	base   *url.URL
}

func newOriginResolver(baseURL string) originResolver {
	u, err := url.Parse(baseURL)
	if err != nil || !u.IsAbs() {
		return originResolver{}
	}

	r := originResolver{origin: originOf(u)}
	if r.origin != opaqueOrigin {
		r.base, _ = url.Parse(r.origin)
	}
	return r
}

func (r originResolver) isExternal(href string) bool {
	ref, err := url.Parse(r.normalizeHref(href))
	if err != nil {
		return false
	}

	if r.base == nil {
		if !ref.IsAbs() {
			return false
		}
		return originOf(ref) != r.origin
	}

	return originOf(r.base.ResolveReference(ref)) != r.origin
}

// normalizeHref rewrites href so net/url resolves it the way browsers do.
// Tabs and newlines are dropped and backslashes act as slashes in special URLs.
// A special scheme without "//" is relative when it matches the base scheme.
func (r originResolver) normalizeHref(href string) string {
	href = strings.TrimFunc(href, isSpace)
	href = strings.Map(func(c rune) rune {
		if c == '\t' || c == '\n' || c == '\r' {
			return -1
		}
		return c
	}, href)

	scheme, rest, hasScheme := splitScheme(href)
	_, special := defaultPorts[scheme]
	if !hasScheme {
		special = r.base != nil
	}
	if special {
		href = slashBeforeQuery(href)
		rest = slashBeforeQuery(rest)
	}

	if hasScheme && special {
		switch {
		case r.base != nil && scheme == r.base.Scheme && !strings.HasPrefix(rest, "//"):
			href = rest
		default:
			href = scheme + "://" + strings.TrimLeft(rest, "/")
		}
	}

	return escapePercent(href)
}

// splitScheme splits a leading "scheme:" off s. The scheme is lowercased.
func splitScheme(s string) (scheme, rest string, ok bool) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		case i > 0 && c == ':':
			return strings.ToLower(s[:i]), s[i+1:], true
		default:
			return "", s, false
		}
	}
	return "", s, false
}

// slashBeforeQuery replaces backslashes with slashes up to the query or fragment
func slashBeforeQuery(s string) string {
	end := strings.IndexAny(s, "?#")
	if end < 0 {
		end = len(s)
	}
	return strings.ReplaceAll(s[:end], "\\", "/") + s[end:]
}

// escapePercent escapes percent signs that do not start a valid escape and
// control bytes net/url refuses to parse
func escapePercent(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '%' && (i+2 >= len(s) || !isHex(s[i+1]) || !isHex(s[i+2])):
			b.WriteString("%25")
		case c < 0x20 || c == 0x7f:
			fmt.Fprintf(&b, "%%%02X", c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// originOf serializes the (scheme, host, port) triple of u
func originOf(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	defaultPort, special := defaultPorts[scheme]
	if !special || u.Host == "" {
		return opaqueOrigin
	}

	host := strings.ToLower(u.Hostname())
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}

	origin := scheme + "://" + host
	if port := u.Port(); port != "" && port != defaultPort {
		origin += ":" + port
	}
	return origin
}

// isSpace matches the JavaScript \s class
func isSpace(r rune) bool {
	if r == '\uFEFF' {
		return true
	}
	return r != '\u0085' && unicode.IsSpace(r)
}

// collapseWhitespace trims s and collapses internal whitespace runs to one space
func collapseWhitespace(s string) string {
	return strings.Join(strings.FieldsFunc(s, isSpace), " ")
}

// countWords counts whitespace delimited tokens. Script and style text is
// included, so this is a rough estimate of the visible text.
func countWords(text string) int {
	return len(strings.FieldsFunc(text, isSpace))
}
