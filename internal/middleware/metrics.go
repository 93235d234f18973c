package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teamsp-admin-api/internal/service"
	"github.com/noah-isme/teamsp-admin-api/pkg/response"
)

// Metrics observes every request by route template. Store failures answer HTTP 200,
// so the envelope code is recorded next to the status.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	if metricsSvc == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		code := "none"
		if rc, ok := response.Code(c); ok {
			code = strconv.Itoa(int(rc))
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), code, time.Since(start))
	}
}
