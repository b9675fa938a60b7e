package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GatewayAuth trusts user info from gateway headers (X-User-ID, X-User-Email, X-User-Role).
// This is used when the API runs behind a gateway that has already
// validated the caller.
//
// When AUTH_MODE=gateway, the API trusts these headers unconditionally.
// This should ONLY be used with proper network isolation.
func GatewayAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDStr := c.GetHeader("X-User-ID")
		if userIDStr == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Authentication required",
				"message": "Missing X-User-ID header from gateway",
			})
			c.Abort()
			return
		}

		setGatewayIdentity(c, userIDStr)
		c.Next()
	}
}

// OptionalGatewayAuth is like GatewayAuth but doesn't fail if headers are missing
func OptionalGatewayAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userIDStr := c.GetHeader("X-User-ID"); userIDStr != "" {
			setGatewayIdentity(c, userIDStr)
		}
		c.Next()
	}
}

func setGatewayIdentity(c *gin.Context, userIDStr string) {
	// Gateways may send numeric or opaque IDs; stored scores use the string
	if id, err := strconv.ParseUint(userIDStr, 10, 64); err == nil {
		c.Set("user_id", uint(id))
	}
	c.Set("user_id_str", userIDStr)
	c.Set("user_email", c.GetHeader("X-User-Email"))
	c.Set("user_role", c.GetHeader("X-User-Role"))
}
