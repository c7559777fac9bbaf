package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/seo-optimizer/metasight/logging"
)

// AnalyzedURLKey is the context key handlers set to the page URL they analyzed
const AnalyzedURLKey = "analyzedURL"

// saveEvery is the number of tracked analyses between statistics snapshots
const saveEvery = 100

// analysisRoutes are the routes that fetch and analyze a page
var analysisRoutes = map[string]bool{
	http.MethodPost + " /api/analyze": true,
	http.MethodGet + " /api/report":   true,
}

// StatsMiddleware tracks visitors and analysis requests
func StatsMiddleware(stats *logging.Statistics, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		stats.TrackVisitor(c.ClientIP())

		c.Next()

		// Only track analysis requests
		if !analysisRoutes[c.Request.Method+" "+c.FullPath()] {
			return
		}

		loadTime := float64(time.Since(start).Milliseconds())
		stats.TrackAnalysis(c.GetString(AnalyzedURLKey), loadTime, c.Writer.Status() >= http.StatusBadRequest)

		if stats.TotalRequests()%saveEvery == 0 {
			go func() {
				if err := stats.Save(); err != nil {
					logger.WithError(err).Warn("Failed to save request statistics")
				}
			}()
		}
	}
}
