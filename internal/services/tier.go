package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tierfolio/tierfolio-backend/internal/data/repos/ranking"
	"github.com/tierfolio/tierfolio-backend/internal/domain"
	apperrors "github.com/tierfolio/tierfolio-backend/internal/pkg/errors"
	"github.com/tierfolio/tierfolio-backend/internal/pkg/logger"
)

// RankPatch is a partial CustomRank update. Nil fields are left unchanged.
type RankPatch struct {
	Name      *string
	Color     *string
	Sentiment *domain.RankSentiment
}

// TierService owns tier definitions and item→tier assignment. An item's tier
// is either nil or exactly one name visible to its collection; when the
// collection defines no custom ranks the built-in S..F ladder applies.
type TierService interface {
	AssignItemToTier(ctx context.Context, userID, itemID uuid.UUID, tierName string, collectionID uuid.UUID) (*domain.Item, error)
	RemoveItemTier(ctx context.Context, userID, itemID, collectionID uuid.UUID) (*domain.Item, error)

	CreateCustomRank(ctx context.Context, userID, collectionID uuid.UUID, name, color string, sentiment domain.RankSentiment) (*domain.CustomRank, error)
	UpdateCustomRank(ctx context.Context, id uuid.UUID, patch RankPatch) (*domain.CustomRank, error)
	DeleteCustomRank(ctx context.Context, userID, id uuid.UUID) error
	ReorderTiers(ctx context.Context, userID, collectionID uuid.UUID, orderedIDs []uuid.UUID) error

	GetCustomRank(ctx context.Context, id uuid.UUID) (*domain.CustomRank, error)
	ListTiers(ctx context.Context, collectionID uuid.UUID) ([]*domain.CustomRank, error)
	// TierNames returns the valid assignment targets for a collection:
	// custom rank names in sort order, or the built-in ladder when the
	// collection defines none.
	TierNames(ctx context.Context, collectionID uuid.UUID) ([]string, error)
}

type tierService struct {
	db       *gorm.DB
	log      *logger.Logger
	ranks    ranking.CustomRankRepo
	items    ranking.ItemRepo
	activity ActivityService
}

func NewTierService(db *gorm.DB, baseLog *logger.Logger, ranks ranking.CustomRankRepo, items ranking.ItemRepo, activity ActivityService) TierService {
	return &tierService{
		db:       db,
		log:      baseLog.With("service", "TierService"),
		ranks:    ranks,
		items:    items,
		activity: activity,
	}
}

func (s *tierService) TierNames(ctx context.Context, collectionID uuid.UUID) ([]string, error) {
	rows, err := s.ranks.ListByCollection(ctx, nil, collectionID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return append([]string(nil), domain.BuiltinLadder...), nil
	}
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Name)
	}
	return names, nil
}

func (s *tierService) ListTiers(ctx context.Context, collectionID uuid.UUID) ([]*domain.CustomRank, error) {
	return s.ranks.ListByCollection(ctx, nil, collectionID)
}

func (s *tierService) GetCustomRank(ctx context.Context, id uuid.UUID) (*domain.CustomRank, error) {
	return s.ranks.GetByID(ctx, nil, id)
}

func (s *tierService) AssignItemToTier(ctx context.Context, userID, itemID uuid.UUID, tierName string, collectionID uuid.UUID) (*domain.Item, error) {
	tierName = strings.TrimSpace(tierName)
	if tierName == "" {
		return nil, fmt.Errorf("%w: empty tier name", apperrors.ErrInvalidArgument)
	}
	names, err := s.TierNames(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	known := false
	for _, n := range names {
		if n == tierName {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("%w: unknown tier %q", apperrors.ErrInvalidArgument, tierName)
	}

	item, err := s.items.GetByID(ctx, nil, itemID)
	if err != nil {
		return nil, err
	}
	if item.CollectionID != collectionID {
		return nil, fmt.Errorf("%w: item %s not in collection %s", apperrors.ErrNotFound, itemID, collectionID)
	}
	if item.Tier != nil && *item.Tier == tierName {
		// Repeated identical assignment is a no-op.
		return item, nil
	}
	updated, err := s.items.SetTier(ctx, nil, itemID, &tierName)
	if err != nil {
		return nil, err
	}
	if s.activity != nil {
		s.activity.Log(userID, domain.EventTierAssigned, map[string]any{
			"item_id":       itemID.String(),
			"collection_id": collectionID.String(),
			"tier":          tierName,
		})
	}
	return updated, nil
}

func (s *tierService) RemoveItemTier(ctx context.Context, userID, itemID, collectionID uuid.UUID) (*domain.Item, error) {
	item, err := s.items.GetByID(ctx, nil, itemID)
	if err != nil {
		return nil, err
	}
	if item.CollectionID != collectionID {
		return nil, fmt.Errorf("%w: item %s not in collection %s", apperrors.ErrNotFound, itemID, collectionID)
	}
	if item.Tier == nil {
		return item, nil
	}
	prev := *item.Tier
	updated, err := s.items.SetTier(ctx, nil, itemID, nil)
	if err != nil {
		return nil, err
	}
	if s.activity != nil {
		s.activity.Log(userID, domain.EventTierRemoved, map[string]any{
			"item_id":       itemID.String(),
			"collection_id": collectionID.String(),
			"tier":          prev,
		})
	}
	return updated, nil
}

func (s *tierService) CreateCustomRank(ctx context.Context, userID, collectionID uuid.UUID, name, color string, sentiment domain.RankSentiment) (*domain.CustomRank, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty rank name", apperrors.ErrInvalidArgument)
	}
	if sentiment == "" {
		sentiment = domain.SentimentNeutral
	}
	existing, err := s.ranks.ListByCollection(ctx, nil, collectionID)
	if err != nil {
		return nil, err
	}
	for _, r := range existing {
		if r.Name == name {
			return nil, fmt.Errorf("%w: rank %q already exists", apperrors.ErrInvalidArgument, name)
		}
	}
	row := &domain.CustomRank{
		CollectionID: collectionID,
		Name:         name,
		Color:        color,
		Sentiment:    sentiment,
		SortOrder:    len(existing),
	}
	created, err := s.ranks.Create(ctx, nil, row)
	if err != nil {
		return nil, err
	}
	if s.activity != nil {
		s.activity.Log(userID, domain.EventCustomRankCreated, map[string]any{
			"rank_id":       created.ID.String(),
			"collection_id": collectionID.String(),
			"name":          created.Name,
		})
	}
	return created, nil
}

func (s *tierService) UpdateCustomRank(ctx context.Context, id uuid.UUID, patch RankPatch) (*domain.CustomRank, error) {
	row, err := s.ranks.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	oldName := row.Name
	if patch.Name != nil {
		newName := strings.TrimSpace(*patch.Name)
		if newName == "" {
			return nil, fmt.Errorf("%w: empty rank name", apperrors.ErrInvalidArgument)
		}
		row.Name = newName
	}
	if patch.Color != nil {
		row.Color = *patch.Color
	}
	if patch.Sentiment != nil {
		row.Sentiment = *patch.Sentiment
	}

	if row.Name == oldName {
		return s.ranks.Update(ctx, nil, row)
	}

	// Renaming must rewrite the tier string on assigned items in the same
	// transaction, or those items end up pointing at a name that no longer
	// exists.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.ranks.Update(ctx, tx, row); err != nil {
			return err
		}
		return s.items.RenameTier(ctx, tx, row.CollectionID, oldName, row.Name)
	})
	if err != nil {
		return nil, apperrors.Persistence("rename custom rank", err)
	}
	return row, nil
}

func (s *tierService) DeleteCustomRank(ctx context.Context, userID, id uuid.UUID) error {
	row, err := s.ranks.GetByID(ctx, nil, id)
	if err != nil {
		return err
	}
	n, err := s.items.CountByTier(ctx, nil, row.CollectionID, row.Name)
	if err != nil {
		return err
	}
	if n > 0 {
		return &apperrors.TierNotEmptyError{RankName: row.Name, ItemCount: n}
	}
	if err := s.ranks.DeleteAndCompact(ctx, id); err != nil {
		return err
	}
	if s.activity != nil {
		s.activity.Log(userID, domain.EventCustomRankDeleted, map[string]any{
			"rank_id":       id.String(),
			"collection_id": row.CollectionID.String(),
			"name":          row.Name,
		})
	}
	return nil
}

func (s *tierService) ReorderTiers(ctx context.Context, userID, collectionID uuid.UUID, orderedIDs []uuid.UUID) error {
	current, err := s.ranks.ListByCollection(ctx, nil, collectionID)
	if err != nil {
		return err
	}
	if len(orderedIDs) != len(current) {
		return fmt.Errorf("%w: reorder wants %d ids, collection has %d ranks", apperrors.ErrInvalidArgument, len(orderedIDs), len(current))
	}
	known := make(map[uuid.UUID]bool, len(current))
	for _, r := range current {
		known[r.ID] = true
	}
	updates := make([]ranking.SortOrderUpdate, 0, len(orderedIDs))
	seen := make(map[uuid.UUID]bool, len(orderedIDs))
	for i, id := range orderedIDs {
		if !known[id] || seen[id] {
			return fmt.Errorf("%w: ordered ids are not a permutation of the collection's ranks", apperrors.ErrInvalidArgument)
		}
		seen[id] = true
		updates = append(updates, ranking.SortOrderUpdate{ID: id, SortOrder: i})
	}
	if err := s.ranks.BulkSetSortOrder(ctx, collectionID, updates); err != nil {
		return err
	}
	if s.activity != nil {
		s.activity.Log(userID, domain.EventTiersReordered, map[string]any{
			"collection_id": collectionID.String(),
			"rank_count":    len(orderedIDs),
		})
	}
	return nil
}
