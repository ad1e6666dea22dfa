// file: internal/server/middleware/logging.go
// version: 1.0.0
// guid: 5ee6b7fe-9704-42d1-9dff-091c7209d176

package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs each request and its response with the request ID.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path

		log.Printf("[REQUEST] %s %s from %s [request-id: %s]",
			method, path, c.ClientIP(), GetRequestID(c))

		c.Next()

		log.Printf("[RESPONSE] %s %s -> %d (%d bytes) in %v [request-id: %s]",
			method, path, c.Writer.Status(), c.Writer.Size(),
			time.Since(start), GetRequestID(c))
	}
}
