// file: internal/server/middleware/basicauth.go
// version: 1.0.0
// guid: b264751d-1477-47c8-9261-fecbd3f93c72

package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/jdfalk/calibre-api/internal/config"
)

// BasicAuth returns a Gin middleware that enforces HTTP Basic Authentication
// when credentials are configured. Health and metrics endpoints are exempt.
// A configured bcrypt hash takes precedence over a plaintext password.
func BasicAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !config.AppConfig.AuthEnabled() {
			c.Next()
			return
		}

		path := c.Request.URL.Path
		if path == "/health" || path == "/metrics" {
			c.Next()
			return
		}

		user, pass, ok := c.Request.BasicAuth()
		if !ok {
			unauthorized(c)
			return
		}

		expectedUser := config.AppConfig.Auth.Username
		userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(expectedUser)) == 1

		passMatch := false
		if hash := config.AppConfig.Auth.PasswordHash; hash != "" {
			passMatch = bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass)) == nil
		} else {
			expectedPass := config.AppConfig.Auth.Password
			passMatch = subtle.ConstantTimeCompare([]byte(pass), []byte(expectedPass)) == 1
		}

		if !userMatch || !passMatch {
			unauthorized(c)
			return
		}

		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", `Basic realm="Calibre API"`)
	c.AbortWithStatus(http.StatusUnauthorized)
}
