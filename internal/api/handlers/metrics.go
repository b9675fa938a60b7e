package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/Conceptual-Machines/metrome-api/internal/click"
	"github.com/gin-gonic/gin"
	"github.com/hako/durafmt"
)

type MetricsHandler struct {
	startTime time.Time
	version   string
	authMode  string
	store     string
	profile   click.Profile
}

func NewMetricsHandler(version, authMode, store string, profile click.Profile) *MetricsHandler {
	return &MetricsHandler{
		startTime: time.Now(),
		version:   version,
		authMode:  authMode,
		store:     store,
		profile:   profile,
	}
}

// formatUptime formats the uptime to whole seconds, e.g. "3h 12m 5s"
func formatUptime(d time.Duration) string {
	if d < time.Second {
		return "0s"
	}
	return durafmt.Parse(d.Truncate(time.Second)).Format(shortUnits)
}

type MetricsResponse struct {
	Status    string        `json:"status"`
	Uptime    string        `json:"uptime"`
	Timestamp string        `json:"timestamp"`
	Version   string        `json:"version"`
	StartTime string        `json:"start_time"`
	System    SystemMetrics `json:"system"`
	API       APIInfo       `json:"api"`
}

type APIInfo struct {
	AuthMode   string `json:"auth_mode"`
	ScoreStore string `json:"score_store"`
	SampleRate uint32 `json:"sample_rate"`
}

type SystemMetrics struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAllocMB   uint64 `json:"mem_alloc_mb"`
	MemTotalMB   uint64 `json:"mem_total_mb"`
	NumGC        uint32 `json:"num_gc"`
}

const (
	bytesToMB = 1024 * 1024
)

func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(h.startTime)

	metrics := MetricsResponse{
		Status:    "healthy",
		Uptime:    formatUptime(uptime),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		StartTime: h.startTime.UTC().Format(time.RFC3339),
		System: SystemMetrics{
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
			MemAllocMB:   m.Alloc / bytesToMB,
			MemTotalMB:   m.TotalAlloc / bytesToMB,
			NumGC:        m.NumGC,
		},
		API: APIInfo{
			AuthMode:   h.authMode,
			ScoreStore: h.store,
			SampleRate: h.profile.SampleRate,
		},
	}

	c.JSON(http.StatusOK, metrics)
}
