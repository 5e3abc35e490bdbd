package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// APIKeyHeader is the header carrying the caller's API key.
const APIKeyHeader = "X-API-Key"

// APIKeyAuth verifies the caller's API key. A configured key starting
// with $2 is treated as a bcrypt hash; anything else is compared in
// constant time.
func APIKeyAuth(configuredKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(APIKeyHeader)
		if provided == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Missing API key",
				"code":  "UNAUTHORIZED",
			})
			c.Abort()
			return
		}

		var ok bool
		if strings.HasPrefix(configuredKey, "$2") {
			ok = bcrypt.CompareHashAndPassword([]byte(configuredKey), []byte(provided)) == nil
		} else {
			ok = subtle.ConstantTimeCompare([]byte(configuredKey), []byte(provided)) == 1
		}

		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid API key",
				"code":  "UNAUTHORIZED",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
