// Package report renders an analysis as a plain text report.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/seo-optimizer/metasight/analyzer"
)

const (
	MissingAltText = "Missing alt"
	noneText       = "(none)"
)

// Render writes the report for a to w
func Render(w io.Writer, a *analyzer.Analysis) error {
	if a == nil {
		return fmt.Errorf("nothing to render")
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	p := &printer{w: tw}

	p.section("SEO report for " + a.URL)

	s := a.Summary
	p.section("Search preview")
	p.row("URL", s.Search.URL)
	p.row("Title", s.Search.Title)
	p.row("Description", s.Search.Description)

	p.section("Open Graph card")
	p.card(s.OpenGraph)

	p.section("Twitter card")
	p.card(s.Twitter)

	p.section("Checklist")
	p.check("Title tag", s.Checklist.TitleFound)
	p.check("Meta description", s.Checklist.DescriptionFound)
	p.check("og:title", s.Checklist.OGTitleFound)
	p.check("twitter:title", s.Checklist.TwitterTitleFound)

	p.section("Metrics")
	p.row("Title length", fmt.Sprintf("%d chars\t%s", s.TitleLength, s.TitleStatus))
	p.row("Description length", fmt.Sprintf("%d chars\t%s", s.DescriptionLength, s.DescriptionStatus))
	p.row("Word count", fmt.Sprintf("%d", s.WordCount))
	p.row("Links", fmt.Sprintf("%d total\t%d internal, %d external, %d nofollow",
		s.Links.Total, s.Links.Internal, s.Links.External, s.Links.Nofollow))
	p.row("Images", fmt.Sprintf("%d total\t%d missing alt", s.Images.Total, s.Images.MissingAlt))
	if a.Report.Keywords != nil {
		p.row("Keywords", *a.Report.Keywords)
	}

	p.section("Headings")
	if len(a.Report.Headings) == 0 {
		p.line(noneText)
	}
	for _, h := range a.Report.Headings {
		p.line(indent(h.Level) + strings.ToUpper(h.Level) + "  " + h.Text)
	}

	p.section("Links")
	if len(a.Report.Links) == 0 {
		p.line(noneText)
	}
	for _, l := range a.Report.Links {
		kind := "Internal"
		if l.IsExternal {
			kind = "External"
		}
		if l.Nofollow {
			kind += " nofollow"
		}
		p.row(kind, l.Text+"\t"+l.Href)
	}

	p.section("Images")
	if len(a.Report.Images) == 0 {
		p.line(noneText)
	}
	for _, img := range a.Report.Images {
		alt := MissingAltText
		if img.Alt != nil {
			alt = *img.Alt
		}
		p.row(img.Src, alt)
	}

	if p.err != nil {
		return p.err
	}
	return tw.Flush()
}

// printer remembers the first write error so Render can check once
type printer struct {
	w       io.Writer
	err     error
	started bool
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) section(title string) {
	if p.started {
		p.printf("\n")
	}
	p.started = true
	p.printf("%s\n%s\n", title, strings.Repeat("=", len(title)))
}

func (p *printer) row(label, value string) {
	p.printf("%s\t%s\n", label, value)
}

func (p *printer) line(text string) {
	p.printf("%s\n", text)
}

func (p *printer) card(c analyzer.CardPreview) {
	p.row("Domain", c.Domain)
	p.row("Title", c.Title)
	p.row("Description", c.Description)
	image := c.Image
	if image == "" {
		image = noneText
	}
	p.row("Image", image)
}

func (p *printer) check(label string, ok bool) {
	mark := "[ ]"
	if ok {
		mark = "[x]"
	}
	p.row(mark, label)
}

// indent nests a heading two spaces per level below h1
func indent(level string) string {
	var depth int
	if _, err := fmt.Sscanf(level, "h%d", &depth); err != nil || depth < 1 {
		return ""
	}
	return strings.Repeat("  ", depth-1)
}
