package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/tierfolio/tierfolio-backend/internal/clients/discovery"
	"github.com/tierfolio/tierfolio-backend/internal/data/repos/ranking"
	"github.com/tierfolio/tierfolio-backend/internal/domain"
	"github.com/tierfolio/tierfolio-backend/internal/observability"
	apperrors "github.com/tierfolio/tierfolio-backend/internal/pkg/errors"
	"github.com/tierfolio/tierfolio-backend/internal/pkg/logger"
)

// TournamentService assembles the bounded comparison set for one ranking
// session: owned ACTIVE items first, discovery candidates to fill the
// deficit. Discovery is best-effort; its failure degrades the pool to
// owned-only and is never surfaced to the user.
type TournamentService interface {
	GeneratePool(ctx context.Context, userID, collectionID uuid.UUID, poolSize int, includeUnseen bool) ([]domain.PoolItem, error)
}

type tournamentService struct {
	log         *logger.Logger
	items       ranking.ItemRepo
	collections ranking.CollectionRepo
	disco       discovery.Client
	activity    ActivityService
	metrics     *observability.Metrics

	// shuffle is swappable so tests can pin ordering. Defaults to a uniform
	// rand.Shuffle.
	shuffle func(n int, swap func(i, j int))
}

func NewTournamentService(baseLog *logger.Logger, items ranking.ItemRepo, collections ranking.CollectionRepo, disco discovery.Client, activity ActivityService, metrics *observability.Metrics) TournamentService {
	return &tournamentService{
		log:         baseLog.With("service", "TournamentService"),
		items:       items,
		collections: collections,
		disco:       disco,
		activity:    activity,
		metrics:     metrics,
		shuffle:     rand.Shuffle,
	}
}

func (s *tournamentService) GeneratePool(ctx context.Context, userID, collectionID uuid.UUID, poolSize int, includeUnseen bool) ([]domain.PoolItem, error) {
	if poolSize <= 0 {
		return nil, fmt.Errorf("%w: pool size must be positive", apperrors.ErrInvalidArgument)
	}
	coll, err := s.collections.GetByID(ctx, nil, collectionID)
	if err != nil {
		return nil, err
	}

	owned, err := s.items.ListByCollection(ctx, nil, collectionID, ranking.ItemFilters{
		Status: domain.ItemStatusActive,
		Limit:  poolSize,
	})
	if err != nil {
		return nil, err
	}

	pool := make([]domain.PoolItem, 0, poolSize)
	for _, it := range owned {
		pool = append(pool, domain.OwnedPoolItem(it))
	}

	if len(pool) >= poolSize || !includeUnseen {
		if len(pool) > poolSize {
			pool = pool[:poolSize]
		}
		s.shufflePool(pool)
		s.logGenerated(userID, collectionID, pool)
		return pool, nil
	}

	deficit := poolSize - len(pool)
	candidates := s.discoverCandidates(ctx, coll, owned, deficit)
	pool = append(pool, candidates...)
	s.shufflePool(pool)
	s.logGenerated(userID, collectionID, pool)
	return pool, nil
}

// discoverCandidates returns up to deficit candidate entries. Any discovery
// failure yields an empty slice: the tournament simply runs owned-only.
func (s *tournamentService) discoverCandidates(ctx context.Context, coll *domain.Collection, owned []*domain.Item, deficit int) []domain.PoolItem {
	if s.disco == nil || deficit <= 0 {
		return nil
	}
	if s.metrics != nil {
		s.metrics.DiscoverySearchInc()
	}
	// Ask for extra headroom since dedupe may discard some results.
	found, err := s.disco.Search(ctx, coll.Name, coll.DomainHint, deficit*2)
	if err != nil {
		if s.metrics != nil {
			s.metrics.DiscoveryDegradedInc()
		}
		s.log.Warn("discovery unavailable, pool degrades to owned items", "collection_id", coll.ID, "error", err)
		return nil
	}

	ownedTitles := make(map[string]bool, len(owned))
	for _, it := range owned {
		ownedTitles[strings.ToLower(strings.TrimSpace(it.Title))] = true
	}

	out := make([]domain.PoolItem, 0, deficit)
	seen := make(map[string]bool, len(found))
	for _, c := range found {
		if len(out) >= deficit {
			break
		}
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		// Dedupe by exact case-insensitive title only. Alternate titles
		// ("Dune" vs "Dune (2021)") are not matched; known limitation.
		key := strings.ToLower(name)
		if ownedTitles[key] || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, domain.CandidatePoolItem(&domain.TournamentCandidate{
			TempID:      domain.NewCandidateTempID(),
			Name:        name,
			Description: c.Description,
			ImageURL:    c.ImageURL,
			Origin:      c.Origin,
			EloScore:    domain.InitialEloScore,
		}))
	}
	return out
}

func (s *tournamentService) shufflePool(pool []domain.PoolItem) {
	s.shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
}

func (s *tournamentService) logGenerated(userID, collectionID uuid.UUID, pool []domain.PoolItem) {
	if s.metrics != nil {
		s.metrics.PoolGeneratedInc(len(pool))
	}
	if s.activity == nil {
		return
	}
	ownedN, candN := 0, 0
	for _, p := range pool {
		if p.Kind == domain.PoolItemOwned {
			ownedN++
		} else {
			candN++
		}
	}
	s.activity.Log(userID, domain.EventTournamentGenerated, map[string]any{
		"collection_id": collectionID.String(),
		"pool_size":     len(pool),
		"owned":         ownedN,
		"candidates":    candN,
	})
}
