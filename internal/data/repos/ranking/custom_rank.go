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

// SortOrderUpdate is one row of a reorder batch.
type SortOrderUpdate struct {
	ID        uuid.UUID
	SortOrder int
}

type CustomRankRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *domain.CustomRank) (*domain.CustomRank, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.CustomRank, error)
	// ListByCollection returns ranks ordered by SortOrder ascending.
	ListByCollection(ctx context.Context, tx *gorm.DB, collectionID uuid.UUID) ([]*domain.CustomRank, error)
	Update(ctx context.Context, tx *gorm.DB, row *domain.CustomRank) (*domain.CustomRank, error)

	// BulkSetSortOrder applies the whole batch in one transaction so readers
	// never observe a duplicate or missing sort order.
	BulkSetSortOrder(ctx context.Context, collectionID uuid.UUID, updates []SortOrderUpdate) error

	// DeleteAndCompact removes the rank and renumbers the survivors to keep
	// sort order dense, in one transaction.
	DeleteAndCompact(ctx context.Context, id uuid.UUID) error
}

type customRankRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCustomRankRepo(db *gorm.DB, baseLog *logger.Logger) CustomRankRepo {
	return &customRankRepo{db: db, log: baseLog.With("repo", "CustomRankRepo")}
}

func (r *customRankRepo) Create(ctx context.Context, tx *gorm.DB, row *domain.CustomRank) (*domain.CustomRank, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *customRankRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.CustomRank, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, apperrors.ErrInvalidArgument
	}
	var out domain.CustomRank
	if err := t.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *customRankRepo) ListByCollection(ctx context.Context, tx *gorm.DB, collectionID uuid.UUID) ([]*domain.CustomRank, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.CustomRank
	if collectionID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("collection_id = ?", collectionID).
		Order("sort_order ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *customRankRepo) Update(ctx context.Context, tx *gorm.DB, row *domain.CustomRank) (*domain.CustomRank, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(ctx).Save(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *customRankRepo) BulkSetSortOrder(ctx context.Context, collectionID uuid.UUID, updates []SortOrderUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			res := tx.Model(&domain.CustomRank{}).
				Where("id = ? AND collection_id = ?", u.ID, collectionID).
				Update("sort_order", u.SortOrder)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperrors.ErrNotFound
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return apperrors.Persistence("bulk set sort order", err)
	}
	return nil
}

func (r *customRankRepo) DeleteAndCompact(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row domain.CustomRank
		if err := tx.Where("id = ?", id).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(&row).Error; err != nil {
			return err
		}
		// Close the gap so sort order stays dense.
		return tx.Model(&domain.CustomRank{}).
			Where("collection_id = ? AND sort_order > ?", row.CollectionID, row.SortOrder).
			UpdateColumn("sort_order", gorm.Expr("sort_order - 1")).Error
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return apperrors.Persistence("delete custom rank", err)
	}
	return nil
}
