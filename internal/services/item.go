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

// NewItemInput is the caller-supplied shape for a manually added item.
type NewItemInput struct {
	Title       string
	Description string
	ImageURL    string
	Origin      string
}

// ItemService owns the item read path plus the manual create and the
// ACTIVE/IGNORED toggle. Ratings and tier assignment live on MatchService
// and TierService respectively.
type ItemService interface {
	CreateItem(ctx context.Context, userID, collectionID uuid.UUID, in NewItemInput) (*domain.Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	ListItems(ctx context.Context, collectionID uuid.UUID, f ranking.ItemFilters) ([]*domain.Item, error)
	SetItemStatus(ctx context.Context, id uuid.UUID, status domain.ItemStatus) (*domain.Item, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

type itemService struct {
	db          *gorm.DB
	log         *logger.Logger
	items       ranking.ItemRepo
	collections ranking.CollectionRepo
	activity    ActivityService
}

func NewItemService(db *gorm.DB, baseLog *logger.Logger, items ranking.ItemRepo, collections ranking.CollectionRepo, activity ActivityService) ItemService {
	return &itemService{
		db:          db,
		log:         baseLog.With("service", "ItemService"),
		items:       items,
		collections: collections,
		activity:    activity,
	}
}

func (s *itemService) CreateItem(ctx context.Context, userID, collectionID uuid.UUID, in NewItemInput) (*domain.Item, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: item title required", apperrors.ErrInvalidArgument)
	}
	if _, err := s.collections.GetByID(ctx, nil, collectionID); err != nil {
		return nil, err
	}
	row := &domain.Item{
		CollectionID: collectionID,
		Title:        title,
		Description:  in.Description,
		ImageURL:     in.ImageURL,
		Origin:       in.Origin,
		EloScore:     domain.InitialEloScore,
		Status:       domain.ItemStatusActive,
	}
	created, err := s.items.Create(ctx, nil, []*domain.Item{row})
	if err != nil {
		return nil, err
	}
	item := created[0]
	s.activity.Log(userID, domain.EventItemCreated, map[string]any{
		"item_id":       item.ID,
		"collection_id": collectionID,
		"title":         item.Title,
	})
	return item, nil
}

func (s *itemService) GetItem(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	return s.items.GetByID(ctx, nil, id)
}

func (s *itemService) ListItems(ctx context.Context, collectionID uuid.UUID, f ranking.ItemFilters) ([]*domain.Item, error) {
	return s.items.ListByCollection(ctx, nil, collectionID, f)
}

func (s *itemService) SetItemStatus(ctx context.Context, id uuid.UUID, status domain.ItemStatus) (*domain.Item, error) {
	if status != domain.ItemStatusActive && status != domain.ItemStatusIgnored {
		return nil, fmt.Errorf("%w: unknown item status %q", apperrors.ErrInvalidArgument, status)
	}
	return s.items.SetStatus(ctx, nil, id, status)
}

func (s *itemService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return s.items.Delete(ctx, nil, id)
}
