package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/agrisense-ai/agrisense-backend/internal/model"
	"github.com/agrisense-ai/agrisense-backend/pkg/logger"
)

// WeatherLogStore records successful weather lookups for analytics.
type WeatherLogStore interface {
	Insert(ctx context.Context, log *model.WeatherLog) error
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

type weatherLogStore struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewWeatherLogStore creates a Postgres-backed weather log store.
func NewWeatherLogStore(db *DB, log *logger.Logger) WeatherLogStore {
	return &weatherLogStore{db: db.Gorm(), log: log.With(zap.String("store", "weatherlog"))}
}

func (s *weatherLogStore) Insert(ctx context.Context, entry *model.WeatherLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.FetchedAt.IsZero() {
		entry.FetchedAt = time.Now()
	}
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *weatherLogStore) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.WeatherLog{}).
		Where("fetched_at >= ?", since).
		Count(&count).Error
	return count, err
}
