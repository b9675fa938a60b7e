package handlers

import (
	"net/http"

	"github.com/Conceptual-Machines/metrome-api/internal/database"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

// NewHealthHandler creates a health handler. db is nil when scores are
// kept in memory.
func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"database": gin.H{"status": "disabled", "store": "memory"},
		})
		return
	}

	if err := database.Ping(h.db); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": gin.H{"status": "unreachable", "error": err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": gin.H{"status": "connected", "store": "postgres"},
	})
}
