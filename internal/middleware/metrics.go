package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/omniclinic/clinic-api/pkg/metrics"
)

// Metrics records per-request counters and latency. The route template is
// used as the path label so parameterized routes collapse into one series.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.RequestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
		if c.Writer.Status() >= 500 {
			m.ErrorTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		}
	}
}
