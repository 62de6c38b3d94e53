package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPObserver is the slice of the metrics registry the middleware needs.
type HTTPObserver interface {
	ObserveHTTPRequest(method, route string, status int, elapsed time.Duration)
}

// Metrics records request count and latency per route template. The route
// template ("/api/v1/documents/:id/assess") is used rather than the raw path
// so the label cardinality stays bounded.
func Metrics(observer HTTPObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		observer.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
