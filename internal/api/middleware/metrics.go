package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"roll-call/pkg/metrics"
)

// Metrics HTTP 请求计数与耗时
// 以路由模板作为标签，未匹配的路由统一记为 unmatched
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.HTTPRequests.WithLabelValues(c.Request.Method, route, status).Inc()
		m.HTTPLatency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
