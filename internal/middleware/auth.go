package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/metrome-api/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	bearerPrefix = "Bearer"
)

type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// OwnerID is the identity stored scores are filed under. The subject claim
// wins over the numeric user ID.
func (c *Claims) OwnerID() string {
	if c.Subject != "" {
		return c.Subject
	}
	if c.UserID != 0 {
		return strconv.FormatUint(uint64(c.UserID), 10)
	}
	return ""
}

func tokenFromRequest(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == bearerPrefix {
			return parts[1]
		}
	}

	// If no header, try cookie
	tokenString, _ := c.Cookie("access_token")
	return tokenString
}

func parseToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

func setIdentity(c *gin.Context, claims *Claims) {
	c.Set("user_id", claims.UserID)
	c.Set("user_id_str", claims.OwnerID())
	c.Set("user_email", claims.Email)
	c.Set("user_role", claims.Role)
}

// JWTAuth middleware validates HS256 tokens and attaches the caller's
// identity to the context
func JWTAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
			c.Abort()
			return
		}

		claims, err := parseToken(tokenString, cfg.JWTSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		if claims.OwnerID() == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token has no subject"})
			c.Abort()
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalJWTAuth is like JWTAuth but doesn't abort if the token is missing
// or invalid
func OptionalJWTAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := parseToken(tokenString, cfg.JWTSecret)
		if err != nil || claims.OwnerID() == "" {
			c.Next()
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// GetCurrentUserID retrieves the owner ID from context
func GetCurrentUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id_str")
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// GetCurrentUserRole retrieves the role claim from context
func GetCurrentUserRole(c *gin.Context) string {
	return c.GetString("user_role")
}
