// file: internal/server/middleware/metrics.go
// version: 1.0.0
// guid: 07da4e5a-438f-475e-9ab9-4472d8d647d9

package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jdfalk/calibre-api/internal/metrics"
)

// Metrics records Prometheus counters and latency histograms per request.
// The route template (not the raw path) is the label, so /books/:id stays a
// single series.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.IncHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()))
		metrics.ObserveHTTPDuration(route, time.Since(start))
	}
}
