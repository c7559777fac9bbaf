package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seo-optimizer/metasight/fetcher"
	"github.com/seo-optimizer/metasight/logging"
	"github.com/seo-optimizer/metasight/metrics"
	"github.com/seo-optimizer/metasight/stats"
)

// Fetcher retrieves the raw HTML of a page
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetcher.Page, error)
}

// Analyzer runs the retrieve, extract and summarize pipeline
type Analyzer struct {
	fetcher Fetcher
	stats   *stats.Storage
	metrics *metrics.Metrics
	logger  logrus.FieldLogger
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithStats records analysis outcomes in the monthly statistics storage
func WithStats(s *stats.Storage) Option {
	return func(a *Analyzer) {
		a.stats = s
	}
}

// WithMetrics records analysis outcomes in prometheus
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Analyzer) {
		a.metrics = m
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// New creates an Analyzer that retrieves pages through f
func New(f Fetcher, opts ...Option) *Analyzer {
	a := &Analyzer{
		fetcher: f,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze retrieves rawURL and extracts its SEO report. Retrieval errors are
// returned unchanged so callers can classify them with the fetcher helpers.
func (a *Analyzer) Analyze(ctx context.Context, rawURL string) (*Analysis, error) {
	log := a.logger.WithField("url", rawURL)

	start := time.Now()
	page, err := a.fetcher.Fetch(ctx, rawURL)
	a.metrics.RecordFetch(time.Since(start))
	if err != nil {
		a.recordFailure(err)
		log.WithError(err).Warn("Page retrieval failed")
		return nil, err
	}

	analysis := a.AnalyzeHTML(page.HTML, page.URL)
	log.WithFields(logrus.Fields{
		"links":    analysis.Summary.Links.Total,
		"images":   analysis.Summary.Images.Total,
		"words":    analysis.Summary.WordCount,
		"duration": time.Since(start).String(),
	}).Info("Page analyzed")

	return analysis, nil
}

// AnalyzeHTML extracts and summarizes html already in hand
func (a *Analyzer) AnalyzeHTML(html, baseURL string) *Analysis {
	start := time.Now()
	report := Extract(html, baseURL)
	summary := Summarize(report, baseURL)

	a.metrics.RecordExtraction(time.Since(start), summary.Links.Internal, summary.Links.External, summary.Images.MissingAlt)
	a.metrics.RecordAnalysis(metrics.OutcomeSuccess)
	if a.stats != nil {
		a.stats.Record(stats.Delta{
			Analyses:         1,
			LinksFound:       summary.Links.Total,
			ExternalLinks:    summary.Links.External,
			ImagesFound:      summary.Images.Total,
			ImagesMissingAlt: summary.Images.MissingAlt,
		})
	}

	return &Analysis{
		URL:     baseURL,
		Report:  report,
		Summary: summary,
	}
}

func (a *Analyzer) recordFailure(err error) {
	var delta stats.Delta
	switch {
	case fetcher.IsValidation(err):
		delta.InvalidURLs = 1
		a.metrics.RecordAnalysis(metrics.OutcomeInvalidURL)
	case fetcher.IsRetrieval(err):
		delta.FetchFailures = 1
		a.metrics.RecordAnalysis(metrics.OutcomeFetchFailure)
	default:
		a.metrics.RecordAnalysis(metrics.OutcomeError)
	}
	if a.stats != nil {
		a.stats.Record(delta)
	}
}

// GetStats returns the statistics storage instance
func (a *Analyzer) GetStats() *stats.Storage {
	return a.stats
}

// Shutdown flushes statistics to disk
func (a *Analyzer) Shutdown() error {
	if a == nil || a.stats == nil {
		return nil
	}
	if err := a.stats.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown stats storage: %w", err)
	}
	return nil
}
