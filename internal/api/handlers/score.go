package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Conceptual-Machines/metrome-api/internal/click"
	"github.com/Conceptual-Machines/metrome-api/internal/logger"
	"github.com/Conceptual-Machines/metrome-api/internal/metrum"
	"github.com/Conceptual-Machines/metrome-api/internal/middleware"
	"github.com/Conceptual-Machines/metrome-api/internal/models"
	"github.com/Conceptual-Machines/metrome-api/internal/services"
	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/hako/durafmt"
)

type ScoreHandler struct {
	scores  *services.ScoreService
	library *services.ScoreLibrary
	profile click.Profile
}

func NewScoreHandler(scores *services.ScoreService, library *services.ScoreLibrary, profile click.Profile) *ScoreHandler {
	return &ScoreHandler{
		scores:  scores,
		library: library,
		profile: profile,
	}
}

type ParseRequest struct {
	Score *string `json:"score" binding:"required"`
}

type RenderRequest struct {
	Score      *string `json:"score" binding:"required"`
	SampleRate uint32  `json:"sample_rate"`
}

type SaveScoreRequest struct {
	Title string  `json:"title"`
	Score *string `json:"score" binding:"required"`
}

type ParseResponse struct {
	Bars     [][]metrum.Duration `json:"bars"`
	TotalMs  float32             `json:"total_ms"`
	Length   string              `json:"length"`
	NumBars  int                 `json:"num_bars"`
	NumBeats int                 `json:"num_beats"`
	Dump     string              `json:"dump"`
}

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

// HumanLength formats a score length in milliseconds, e.g. "2s 500ms"
func HumanLength(totalMs float64) string {
	d := time.Duration(totalMs * float64(time.Millisecond))
	if d <= 0 {
		return "0s"
	}
	return durafmt.Parse(d).LimitFirstN(lengthUnits).Format(shortUnits)
}

func newParseResponse(result *services.ParseResult) ParseResponse {
	bars := make([][]metrum.Duration, 0, len(result.Score.Bars))
	for _, bar := range result.Score.Bars {
		bars = append(bars, bar.Durations)
	}
	return ParseResponse{
		Bars:     bars,
		TotalMs:  result.TotalMs,
		Length:   HumanLength(float64(result.TotalMs)),
		NumBars:  result.Bars,
		NumBeats: result.Beats,
		Dump:     result.Score.String(),
	}
}

// respondError maps service and notation errors to HTTP responses
func respondError(c *gin.Context, err error) {
	var merr *metrum.MetrumError
	switch {
	case errors.As(err, &merr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": merr.Error(),
			"kind":  merr.Kind(),
			"code":  merr.Code(),
		})
	case errors.Is(err, services.ErrScoreTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrScoreNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Score not found"})
	default:
		logger.Error("Score request failed", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// logAttempt stores one parse attempt for the admin parse log
func (h *ScoreHandler) logAttempt(c *gin.Context, source string, result *services.ParseResult, err error, elapsed time.Duration) {
	owner, _ := middleware.GetCurrentUserID(c)
	entry := &models.ParseLog{
		OwnerID:    owner,
		RequestID:  c.GetString("request_id"),
		Success:    err == nil,
		SourceSize: len(source),
		DurationUS: elapsed.Microseconds(),
	}
	var merr *metrum.MetrumError
	if errors.As(err, &merr) {
		entry.ErrorKind = string(merr.Kind())
		entry.ErrorCode = merr.Code()
	}
	if result != nil {
		entry.Bars = result.Bars
		entry.Beats = result.Beats
	}
	h.library.LogParse(c.Request.Context(), entry)
}

func (h *ScoreHandler) parse(c *gin.Context, source string) (*services.ParseResult, error) {
	start := time.Now()
	result, err := h.scores.Parse(c.Request.Context(), source)
	if errors.Is(err, services.ErrScoreTooLarge) {
		return nil, err
	}
	h.logAttempt(c, source, result, err, time.Since(start))
	return result, err
}

func (h *ScoreHandler) profileFor(sampleRate uint32) (click.Profile, error) {
	profile := h.profile
	if sampleRate == 0 {
		return profile, nil
	}
	if sampleRate < minSampleRate || sampleRate > maxSampleRate {
		return profile, fmt.Errorf("sample_rate must be between %d and %d", minSampleRate, maxSampleRate)
	}
	profile.SampleRate = sampleRate
	return profile, nil
}

func (h *ScoreHandler) writeWAV(c *gin.Context, result *services.RenderResult, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("X-Score-Length", HumanLength(float64(result.TotalMs)))
	c.Header("X-Score-Beats", strconv.Itoa(result.Beats))
	fields := logger.WithContext(c)
	fields["size"] = humanize.Bytes(uint64(len(result.WAV)))
	fields["sample_rate"] = result.SampleRate
	fields["beats"] = result.Beats
	logger.Info("Click track rendered", fields)
	c.Data(http.StatusOK, wavContentType, result.WAV)
}

// Parse parses a score and returns its bars of durations
func (h *ScoreHandler) Parse(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.parse(c, *req.Score)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newParseResponse(result))
}

// Render parses a score and returns its click track as WAV
func (h *ScoreHandler) Render(c *gin.Context) {
	var req RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.profileFor(req.SampleRate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parsed, err := h.parse(c, *req.Score)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.scores.RenderParsed(c.Request.Context(), parsed, profile)
	if err != nil {
		respondError(c, err)
		return
	}

	h.writeWAV(c, result, "click.wav")
}

// Create validates and stores a score for the current user
func (h *ScoreHandler) Create(c *gin.Context) {
	owner, ok := middleware.GetCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req SaveScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stored, err := h.library.Save(c.Request.Context(), owner, req.Title, *req.Score)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"score":  stored,
		"length": HumanLength(stored.TotalMs),
	})
}

// List returns the current user's scores, newest first
func (h *ScoreHandler) List(c *gin.Context) {
	owner, ok := middleware.GetCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page := 1
	if pageStr := c.Query("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	pageSize := services.DefaultPageSize
	if sizeStr := c.Query("page_size"); sizeStr != "" {
		if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 {
			pageSize = s
			if pageSize > services.MaxPageSize {
				pageSize = services.MaxPageSize
			}
		}
	}

	scores, total, err := h.library.List(c.Request.Context(), owner, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"scores": scores,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total_count": total,
			"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
		},
	})
}

// Get returns one of the current user's scores
func (h *ScoreHandler) Get(c *gin.Context) {
	owner, ok := middleware.GetCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	stored, err := h.library.Get(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"score":  stored,
		"length": HumanLength(stored.TotalMs),
	})
}

// GetWAV renders a stored score's click track
func (h *ScoreHandler) GetWAV(c *gin.Context) {
	owner, ok := middleware.GetCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var sampleRate uint64
	if rateStr := c.Query("sample_rate"); rateStr != "" {
		rate, err := strconv.ParseUint(rateStr, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sample_rate"})
			return
		}
		sampleRate = rate
	}
	profile, err := h.profileFor(uint32(sampleRate))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stored, err := h.library.Get(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.scores.Render(c.Request.Context(), stored.Source, profile)
	if err != nil {
		respondError(c, err)
		return
	}

	h.writeWAV(c, result, stored.PublicID+".wav")
}

// Delete removes one of the current user's scores
func (h *ScoreHandler) Delete(c *gin.Context) {
	owner, ok := middleware.GetCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.library.Delete(c.Request.Context(), owner, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Score deleted"})
}

// ParseLogs returns the latest parse attempts (admin only)
func (h *ScoreHandler) ParseLogs(c *gin.Context) {
	limit := defaultParseLogLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	logs, err := h.library.RecentParseLogs(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
}
