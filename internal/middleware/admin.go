package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	roleAdmin = "admin"
)

// AdminRequired ensures the caller has the admin role. It must run after
// one of the auth middlewares.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := GetCurrentUserID(c); !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		if GetCurrentUserRole(c) != roleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}
