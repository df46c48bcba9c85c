package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// SlowRequestThreshold marks requests worth a warning line
const SlowRequestThreshold = 500 * time.Millisecond

// PerformanceLogger logs method, path, status and latency of every request
func PerformanceLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		log.Printf("[http] %s %s | Status: %d | Time: %v",
			c.Request.Method,
			c.FullPath(),
			c.Writer.Status(),
			latency)

		if latency > SlowRequestThreshold {
			log.Printf("[http] slow request: %s %s took %v", c.Request.Method, c.Request.URL.Path, latency)
		}
	}
}
