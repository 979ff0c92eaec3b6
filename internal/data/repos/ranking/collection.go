package ranking

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tierfolio/tierfolio-backend/internal/domain"
	apperrors "github.com/tierfolio/tierfolio-backend/internal/pkg/errors"
	"github.com/tierfolio/tierfolio-backend/internal/pkg/logger"
)

type CollectionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *domain.Collection) (*domain.Collection, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Collection, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.Collection, error)
}

type collectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCollectionRepo(db *gorm.DB, baseLog *logger.Logger) CollectionRepo {
	return &collectionRepo{db: db, log: baseLog.With("repo", "CollectionRepo")}
}

func (r *collectionRepo) Create(ctx context.Context, tx *gorm.DB, row *domain.Collection) (*domain.Collection, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *collectionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Collection, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, apperrors.ErrInvalidArgument
	}
	var out domain.Collection
	if err := t.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *collectionRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.Collection, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Collection
	if userID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
