package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Conceptual-Machines/metrome-api/internal/models"
	"gorm.io/gorm"
)

var ErrScoreNotFound = errors.New("score not found")

// ScoreRepository persists stored scores and parse logs
type ScoreRepository interface {
	Create(ctx context.Context, score *models.StoredScore) error
	Get(ctx context.Context, publicID string) (*models.StoredScore, error)
	List(ctx context.Context, ownerID string, page, pageSize int) ([]models.StoredScore, int64, error)
	Delete(ctx context.Context, ownerID, publicID string) error
	LogParse(ctx context.Context, entry *models.ParseLog) error
	RecentParseLogs(ctx context.Context, limit int) ([]models.ParseLog, error)
}

// ScoreStore is the Postgres-backed ScoreRepository
type ScoreStore struct {
	db *gorm.DB
}

func NewScoreStore(db *gorm.DB) *ScoreStore {
	return &ScoreStore{db: db}
}

func (s *ScoreStore) Create(ctx context.Context, score *models.StoredScore) error {
	return s.db.WithContext(ctx).Create(score).Error
}

func (s *ScoreStore) Get(ctx context.Context, publicID string) (*models.StoredScore, error) {
	var score models.StoredScore
	err := s.db.WithContext(ctx).Where("public_id = ?", publicID).First(&score).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrScoreNotFound
	}
	if err != nil {
		return nil, err
	}
	return &score, nil
}

// List returns one page of an owner's scores, newest first, and the total count
func (s *ScoreStore) List(ctx context.Context, ownerID string, page, pageSize int) ([]models.StoredScore, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.StoredScore{}).
		Where("owner_id = ?", ownerID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var scores []models.StoredScore
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&scores).Error
	if err != nil {
		return nil, 0, err
	}
	return scores, total, nil
}

func (s *ScoreStore) Delete(ctx context.Context, ownerID, publicID string) error {
	result := s.db.WithContext(ctx).
		Where("public_id = ? AND owner_id = ?", publicID, ownerID).
		Delete(&models.StoredScore{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrScoreNotFound
	}
	return nil
}

func (s *ScoreStore) LogParse(ctx context.Context, entry *models.ParseLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *ScoreStore) RecentParseLogs(ctx context.Context, limit int) ([]models.ParseLog, error) {
	var logs []models.ParseLog
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

// MemoryScoreStore keeps scores in process memory. It is used when no
// database is configured.
type MemoryScoreStore struct {
	mu     sync.RWMutex
	nextID uint
	scores map[string]models.StoredScore
	logs   []models.ParseLog
}

func NewMemoryScoreStore() *MemoryScoreStore {
	return &MemoryScoreStore{scores: make(map[string]models.StoredScore)}
}

func (m *MemoryScoreStore) Create(_ context.Context, score *models.StoredScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	now := time.Now()
	score.ID = m.nextID
	score.CreatedAt = now
	score.UpdatedAt = now
	m.scores[score.PublicID] = *score
	return nil
}

func (m *MemoryScoreStore) Get(_ context.Context, publicID string) (*models.StoredScore, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	score, ok := m.scores[publicID]
	if !ok {
		return nil, ErrScoreNotFound
	}
	return &score, nil
}

func (m *MemoryScoreStore) List(_ context.Context, ownerID string, page, pageSize int) ([]models.StoredScore, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var owned []models.StoredScore
	for _, s := range m.scores {
		if s.OwnerID == ownerID {
			owned = append(owned, s)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].ID > owned[j].ID })

	total := int64(len(owned))
	start := (page - 1) * pageSize
	if start >= len(owned) {
		return []models.StoredScore{}, total, nil
	}
	end := start + pageSize
	if end > len(owned) {
		end = len(owned)
	}
	return owned[start:end], total, nil
}

func (m *MemoryScoreStore) Delete(_ context.Context, ownerID, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	score, ok := m.scores[publicID]
	if !ok || score.OwnerID != ownerID {
		return ErrScoreNotFound
	}
	delete(m.scores, publicID)
	return nil
}

func (m *MemoryScoreStore) LogParse(_ context.Context, entry *models.ParseLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry.ID = uint(len(m.logs) + 1)
	entry.CreatedAt = time.Now()
	m.logs = append(m.logs, *entry)
	return nil
}

// RecentParseLogs returns up to limit entries, newest first
func (m *MemoryScoreStore) RecentParseLogs(_ context.Context, limit int) ([]models.ParseLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	logs := make([]models.ParseLog, 0, limit)
	for i := len(m.logs) - 1; i >= 0 && len(logs) < limit; i-- {
		logs = append(logs, m.logs[i])
	}
	return logs, nil
}
