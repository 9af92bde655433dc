package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/strafeup/permissions/api/observability"
)

// Metrics records request counts and latencies by route template.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
