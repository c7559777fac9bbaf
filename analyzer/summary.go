package analyzer

import (
	"net/url"
	"unicode/utf8"
)

const (
	NoTitleText       = "No Title Found"
	NoDescriptionText = "No meta description provided. Search engines will show a snippet from the page content."
)

// Summarize derives the preview cards and metric grades for a report.
// pageURL is the address the report was extracted from.
func Summarize(report SEOReport, pageURL string) Summary {
	titleLength := length(report.Title)
	descLength := length(report.Description)

	summary := Summary{
		TitleLength:       titleLength,
		TitleStatus:       grade(titleLength, 30, 60),
		DescriptionLength: descLength,
		DescriptionStatus: grade(descLength, 120, 160),
		WordCount:         report.WordCount,
		Links:             countLinks(report.Links),
		Images:            countImages(report.Images),
		Checklist: Checklist{
			TitleFound:        report.Title != nil,
			DescriptionFound:  report.Description != nil,
			OGTitleFound:      report.OGTags["title"] != "",
			TwitterTitleFound: report.TwitterTags["title"] != "",
		},
	}

	title := orDefault(report.Title, NoTitleText)
	description := orDefault(report.Description, NoDescriptionText)
	domain := hostname(pageURL)

	summary.Search = SearchPreview{
		URL:         pageURL,
		Title:       title,
		Description: description,
	}
	summary.OpenGraph = CardPreview{
		Title:       firstNonEmpty(report.OGTags["title"], title),
		Description: firstNonEmpty(report.OGTags["description"], description),
		Image:       report.OGTags["image"],
		Domain:      domain,
	}
	summary.Twitter = CardPreview{
		Title:       firstNonEmpty(report.TwitterTags["title"], summary.OpenGraph.Title),
		Description: firstNonEmpty(report.TwitterTags["description"], description),
		Image:       firstNonEmpty(report.TwitterTags["image"], summary.OpenGraph.Image),
		Domain:      domain,
	}

	return summary
}

// grade is bad when empty and good strictly between low and high
func grade(n, low, high int) Status {
	switch {
	case n == 0:
		return StatusBad
	case n > low && n < high:
		return StatusGood
	default:
		return StatusWarning
	}
}

func countLinks(links []Link) LinkStats {
	stats := LinkStats{Total: len(links)}
	for _, l := range links {
		if l.IsExternal {
			stats.External++
		} else {
			stats.Internal++
		}
		if l.Nofollow {
			stats.Nofollow++
		}
	}
	return stats
}

func countImages(images []Image) ImageStats {
	stats := ImageStats{Total: len(images)}
	for _, img := range images {
		if img.Alt == nil {
			stats.MissingAlt++
		}
	}
	return stats
}

func length(s *string) int {
	if s == nil {
		return 0
	}
	return utf8.RuneCountInString(*s)
}

func orDefault(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return u.Hostname()
}
