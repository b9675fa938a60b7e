package middleware

import (
	"github.com/gin-gonic/gin"
)

const anonymousOwner = "anonymous"

// NoAuth is a pass-through middleware for AUTH_MODE=none. Every caller
// shares the anonymous owner, so stored scores form one public library.
func NoAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", uint(0))
		c.Set("user_id_str", anonymousOwner)
		c.Next()
	}
}
