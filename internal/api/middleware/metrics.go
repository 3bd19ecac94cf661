package middleware

import (
	"strconv"
	"time"

	"fuel-rl/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics observes request latency per route template. Unmatched routes
// are grouped under "unmatched" to keep label cardinality bounded.
func Metrics(rec *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		rec.RecordRequest(route, c.Request.Method, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
