package ranking

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tierfolio/tierfolio-backend/internal/domain"
	"github.com/tierfolio/tierfolio-backend/internal/pkg/logger"
)

type ActivityEventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*domain.ActivityEvent) error
	ListRecentByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*domain.ActivityEvent, error)
}

type activityEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityEventRepo(db *gorm.DB, baseLog *logger.Logger) ActivityEventRepo {
	return &activityEventRepo{db: db, log: baseLog.With("repo", "ActivityEventRepo")}
}

func (r *activityEventRepo) Create(ctx context.Context, tx *gorm.DB, rows []*domain.ActivityEvent) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return t.WithContext(ctx).Create(&rows).Error
}

func (r *activityEventRepo) ListRecentByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*domain.ActivityEvent, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.ActivityEvent
	if userID == uuid.Nil {
		return out, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if err := t.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
