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

// ItemFilters narrows ListByCollection. Zero value means no filtering.
type ItemFilters struct {
	Status   domain.ItemStatus
	Tier     *string // filter by exact tier name; not applied when nil
	Unranked bool    // only items with tier IS NULL
	Limit    int
}

// ScoreUpdate is one row of a rating batch.
type ScoreUpdate struct {
	ID       uuid.UUID
	EloScore int
}

type ItemRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*domain.Item) ([]*domain.Item, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Item, error)
	ListByCollection(ctx context.Context, tx *gorm.DB, collectionID uuid.UUID, f ItemFilters) ([]*domain.Item, error)
	CountByTier(ctx context.Context, tx *gorm.DB, collectionID uuid.UUID, tierName string) (int64, error)

	// SetTier writes the tier column only; every other column, EloScore
	// included, is left untouched.
	SetTier(ctx context.Context, tx *gorm.DB, id uuid.UUID, tier *string) (*domain.Item, error)
	SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status domain.ItemStatus) (*domain.Item, error)

	// RenameTier rewrites the tier string on every item of the collection
	// currently assigned to oldName.
	RenameTier(ctx context.Context, tx *gorm.DB, collectionID uuid.UUID, oldName, newName string) error

	// UpdateScores applies the whole batch in one transaction; a failing row
	// aborts every other row.
	UpdateScores(ctx context.Context, updates []ScoreUpdate) error

	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type itemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewItemRepo(db *gorm.DB, baseLog *logger.Logger) ItemRepo {
	return &itemRepo{db: db, log: baseLog.With("repo", "ItemRepo")}
}

func (r *itemRepo) Create(ctx context.Context, tx *gorm.DB, rows []*domain.Item) ([]*domain.Item, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*domain.Item{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *itemRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Item, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, apperrors.ErrInvalidArgument
	}
	var out domain.Item
	if err := t.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *itemRepo) ListByCollection(ctx context.Context, tx *gorm.DB, collectionID uuid.UUID, f ItemFilters) ([]*domain.Item, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Item
	if collectionID == uuid.Nil {
		return out, nil
	}
	q := t.WithContext(ctx).Where("collection_id = ?", collectionID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Unranked {
		q = q.Where("tier IS NULL")
	} else if f.Tier != nil {
		q = q.Where("tier = ?", *f.Tier)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if err := q.Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *itemRepo) CountByTier(ctx context.Context, tx *gorm.DB, collectionID uuid.UUID, tierName string) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var n int64
	err := t.WithContext(ctx).Model(&domain.Item{}).
		Where("collection_id = ? AND tier = ?", collectionID, tierName).
		Count(&n).Error
	return n, err
}

func (r *itemRepo) SetTier(ctx context.Context, tx *gorm.DB, id uuid.UUID, tier *string) (*domain.Item, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(ctx).Model(&domain.Item{}).Where("id = ?", id).Update("tier", tier)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrNotFound
	}
	return r.GetByID(ctx, tx, id)
}

func (r *itemRepo) SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status domain.ItemStatus) (*domain.Item, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(ctx).Model(&domain.Item{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrNotFound
	}
	return r.GetByID(ctx, tx, id)
}

func (r *itemRepo) RenameTier(ctx context.Context, tx *gorm.DB, collectionID uuid.UUID, oldName, newName string) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).Model(&domain.Item{}).
		Where("collection_id = ? AND tier = ?", collectionID, oldName).
		Update("tier", newName).Error
}

func (r *itemRepo) UpdateScores(ctx context.Context, updates []ScoreUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			res := tx.Model(&domain.Item{}).Where("id = ?", u.ID).Update("elo_score", u.EloScore)
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
		return apperrors.Persistence("update item scores", err)
	}
	return nil
}

func (r *itemRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).Where("id = ?", id).Delete(&domain.Item{}).Error
}
