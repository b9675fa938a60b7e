package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Conceptual-Machines/metrome-api/internal/logger"
	"github.com/Conceptual-Machines/metrome-api/internal/models"
	"github.com/google/uuid"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	maxTitleLength  = 200
)

// ScoreLibrary stores users' scores. Every stored source has been parsed
// successfully at least once.
type ScoreLibrary struct {
	repo   ScoreRepository
	scores *ScoreService
}

func NewScoreLibrary(repo ScoreRepository, scores *ScoreService) *ScoreLibrary {
	return &ScoreLibrary{repo: repo, scores: scores}
}

// Save parses source and stores it under a new public ID
func (l *ScoreLibrary) Save(ctx context.Context, ownerID, title, source string) (*models.StoredScore, error) {
	parsed, err := l.scores.Parse(ctx, source)
	if err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) > maxTitleLength {
		title = string([]rune(title)[:maxTitleLength])
	}

	stored := &models.StoredScore{
		PublicID: uuid.New().String(),
		OwnerID:  ownerID,
		Title:    title,
		Source:   source,
		Bars:     parsed.Bars,
		Beats:    parsed.Beats,
		TotalMs:  float64(parsed.TotalMs),
	}
	if err := l.repo.Create(ctx, stored); err != nil {
		return nil, fmt.Errorf("failed to save score: %w", err)
	}

	logger.Info("Score saved", logger.Fields{
		"score_id": stored.PublicID,
		"owner_id": ownerID,
		"bars":     stored.Bars,
		"beats":    stored.Beats,
	})
	return stored, nil
}

// Get returns ownerID's score. Scores of other owners are reported as
// ErrScoreNotFound.
func (l *ScoreLibrary) Get(ctx context.Context, ownerID, publicID string) (*models.StoredScore, error) {
	stored, err := l.repo.Get(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if stored.OwnerID != ownerID {
		return nil, ErrScoreNotFound
	}
	return stored, nil
}

// List returns a page of ownerID's scores. Page numbers start at 1.
func (l *ScoreLibrary) List(ctx context.Context, ownerID string, page, pageSize int) ([]models.StoredScore, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return l.repo.List(ctx, ownerID, page, pageSize)
}

func (l *ScoreLibrary) Delete(ctx context.Context, ownerID, publicID string) error {
	if err := l.repo.Delete(ctx, ownerID, publicID); err != nil {
		return err
	}
	logger.Info("Score deleted", logger.Fields{
		"score_id": publicID,
		"owner_id": ownerID,
	})
	return nil
}

// RecentParseLogs returns the latest parse attempts across all owners
func (l *ScoreLibrary) RecentParseLogs(ctx context.Context, limit int) ([]models.ParseLog, error) {
	if limit < 1 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	return l.repo.RecentParseLogs(ctx, limit)
}

// LogParse records a parse attempt. Failures are logged, never returned.
func (l *ScoreLibrary) LogParse(ctx context.Context, entry *models.ParseLog) {
	if err := l.repo.LogParse(ctx, entry); err != nil {
		logger.Warn("Failed to store parse log", logger.Fields{
			"error":      err.Error(),
			"request_id": entry.RequestID,
		})
	}
}
