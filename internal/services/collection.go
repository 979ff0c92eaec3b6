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

// CollectionService owns the lists items and tiers hang off of.
type CollectionService interface {
	CreateCollection(ctx context.Context, userID uuid.UUID, name, domainHint string) (*domain.Collection, error)
	GetCollection(ctx context.Context, id uuid.UUID) (*domain.Collection, error)
	ListCollections(ctx context.Context, userID uuid.UUID) ([]*domain.Collection, error)
}

type collectionService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo ranking.CollectionRepo
}

func NewCollectionService(db *gorm.DB, baseLog *logger.Logger, repo ranking.CollectionRepo) CollectionService {
	return &collectionService{
		db:   db,
		log:  baseLog.With("service", "CollectionService"),
		repo: repo,
	}
}

func (s *collectionService) CreateCollection(ctx context.Context, userID uuid.UUID, name, domainHint string) (*domain.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: collection name required", apperrors.ErrInvalidArgument)
	}
	row := &domain.Collection{
		UserID:     userID,
		Name:       name,
		DomainHint: strings.TrimSpace(domainHint),
	}
	return s.repo.Create(ctx, nil, row)
}

func (s *collectionService) GetCollection(ctx context.Context, id uuid.UUID) (*domain.Collection, error) {
	return s.repo.GetByID(ctx, nil, id)
}

func (s *collectionService) ListCollections(ctx context.Context, userID uuid.UUID) ([]*domain.Collection, error) {
	return s.repo.ListByUser(ctx, nil, userID)
}
