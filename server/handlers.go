package server

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/metasight/analyzer"
	"github.com/seo-optimizer/metasight/fetcher"
	"github.com/seo-optimizer/metasight/middleware"
	"github.com/seo-optimizer/metasight/report"
	"github.com/seo-optimizer/metasight/stats"
)

type analyzeRequest struct {
	URL string `json:"url" binding:"required"`
}

type extractRequest struct {
	HTML    string `json:"html"`
	BaseURL string `json:"baseUrl" binding:"required"`
}

// MonthlyEntry is one month of persisted analysis counters
type MonthlyEntry struct {
	Month string             `json:"month"`
	Stats stats.MonthlyStats `json:"stats"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func (s *Server) analyze(c *gin.Context) {
	var request analyzeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid URL provided",
		})
		return
	}

	analysis, ok := s.run(c, request.URL)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analysis)
}

func (s *Server) extract(c *gin.Context) {
	var request extractRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "html and baseUrl are required",
		})
		return
	}

	c.JSON(http.StatusOK, s.analyzer.AnalyzeHTML(request.HTML, request.BaseURL))
}

func (s *Server) renderReport(c *gin.Context) {
	analysis, ok := s.run(c, c.Query("url"))
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, analysis); err != nil {
		_ = c.Error(err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}

// run analyzes rawURL and writes the error response on failure
func (s *Server) run(c *gin.Context, rawURL string) (*analyzer.Analysis, bool) {
	target, err := fetcher.NormalizeURL(rawURL)
	if err != nil {
		s.logger.WithField("request_id", middleware.GetRequestID(c)).WithError(err).Info("Rejected analyze request")
		c.JSON(http.StatusBadRequest, gin.H{"error": fetcher.UserMessage(err)})
		return nil, false
	}
	c.Set(middleware.AnalyzedURLKey, target)

	analysis, err := s.analyzer.Analyze(c.Request.Context(), target)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case fetcher.IsValidation(err):
			status = http.StatusBadRequest
		case fetcher.IsRetrieval(err):
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": fetcher.UserMessage(err)})
		return nil, false
	}
	return analysis, true
}

func (s *Server) requestStatistics(c *gin.Context) {
	if s.statistics == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "statistics are disabled"})
		return
	}
	c.JSON(http.StatusOK, s.statistics.GetStatistics())
}

func (s *Server) monthlyStatistics(c *gin.Context) {
	storage := s.analyzer.GetStats()
	if storage == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "statistics are disabled"})
		return
	}

	months := storage.GetAllMonths()
	entries := make([]MonthlyEntry, 0, len(months))
	for _, month := range months {
		monthly, _ := storage.GetMonthlyStats(month)
		entries = append(entries, MonthlyEntry{Month: month, Stats: monthly})
	}

	c.JSON(http.StatusOK, gin.H{
		"current": storage.GetCurrentStats(),
		"months":  entries,
	})
}
