package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tierfolio/tierfolio-backend/internal/data/repos/ranking"
	"github.com/tierfolio/tierfolio-backend/internal/domain"
	"github.com/tierfolio/tierfolio-backend/internal/observability"
	"github.com/tierfolio/tierfolio-backend/internal/pkg/envutil"
	apperrors "github.com/tierfolio/tierfolio-backend/internal/pkg/errors"
	"github.com/tierfolio/tierfolio-backend/internal/pkg/logger"
)

type MatchConfig struct {
	KFactor int
}

func MatchConfigFromEnv() MatchConfig {
	return MatchConfig{
		KFactor: envutil.Int("ELO_K_FACTOR", DefaultKFactor),
	}
}

// MatchResult reports the post-match ratings of both sides.
type MatchResult struct {
	WinnerElo int `json:"winner_elo"`
	LoserElo  int `json:"loser_elo"`
}

// MatchService applies face-off outcomes to a session pool. Owned-item deltas
// persist as one all-or-nothing batch; candidate deltas live only on the pool
// entry until the candidate is promoted.
type MatchService interface {
	// RecordMatch resolves winner and loser inside pool, computes the Elo
	// update, and persists owned-item scores transactionally. The pool is
	// mutated only after persistence succeeds. The activity event carries
	// the names supplied on the outcome, never re-resolved from storage:
	// candidate ids may never be persisted, so a later lookup would fail.
	RecordMatch(ctx context.Context, userID uuid.UUID, pool []domain.PoolItem, outcome domain.MatchOutcome) (*MatchResult, error)

	// UpdateItemScores applies a rating batch in one transaction.
	UpdateItemScores(ctx context.Context, updates []ranking.ScoreUpdate) error

	// AddChallenger persists a candidate as a real item carrying its
	// current, possibly match-adjusted rating. Never resets to 1200.
	AddChallenger(ctx context.Context, userID uuid.UUID, candidate *domain.TournamentCandidate, collectionID uuid.UUID, initialElo int) (*domain.Item, error)
}

type matchService struct {
	log      *logger.Logger
	cfg      MatchConfig
	items    ranking.ItemRepo
	activity ActivityService
	metrics  *observability.Metrics
}

func NewMatchService(baseLog *logger.Logger, cfg MatchConfig, items ranking.ItemRepo, activity ActivityService, metrics *observability.Metrics) MatchService {
	if cfg.KFactor <= 0 {
		cfg.KFactor = DefaultKFactor
	}
	return &matchService{
		log:      baseLog.With("service", "MatchService"),
		cfg:      cfg,
		items:    items,
		activity: activity,
		metrics:  metrics,
	}
}

func (s *matchService) RecordMatch(ctx context.Context, userID uuid.UUID, pool []domain.PoolItem, outcome domain.MatchOutcome) (*MatchResult, error) {
	if outcome.WinnerID == outcome.LoserID {
		return nil, fmt.Errorf("%w: winner and loser are the same entry", apperrors.ErrInvalidArgument)
	}
	winner := findPoolEntry(pool, outcome.WinnerID)
	loser := findPoolEntry(pool, outcome.LoserID)
	if winner == nil || loser == nil {
		return nil, fmt.Errorf("%w: match ids not in pool", apperrors.ErrNotFound)
	}

	winnerNew, loserNew := EloOutcome(winner.Elo(), loser.Elo(), s.cfg.KFactor)

	var updates []ranking.ScoreUpdate
	if winner.Kind == domain.PoolItemOwned {
		updates = append(updates, ranking.ScoreUpdate{ID: winner.Item.ID, EloScore: winnerNew})
	}
	if loser.Kind == domain.PoolItemOwned {
		updates = append(updates, ranking.ScoreUpdate{ID: loser.Item.ID, EloScore: loserNew})
	}
	if len(updates) > 0 {
		if err := s.items.UpdateScores(ctx, updates); err != nil {
			// Batch aborted: pool state stays exactly as it was.
			return nil, err
		}
	}

	winner.SetElo(winnerNew)
	loser.SetElo(loserNew)

	if s.metrics != nil {
		s.metrics.MatchRecordedInc()
	}
	if s.activity != nil {
		s.activity.Log(userID, domain.EventMatchRecorded, map[string]any{
			"winner_id":   outcome.WinnerID,
			"winner_name": outcome.WinnerName,
			"winner_elo":  winnerNew,
			"loser_id":    outcome.LoserID,
			"loser_name":  outcome.LoserName,
			"loser_elo":   loserNew,
		})
	}
	return &MatchResult{WinnerElo: winnerNew, LoserElo: loserNew}, nil
}

func (s *matchService) UpdateItemScores(ctx context.Context, updates []ranking.ScoreUpdate) error {
	return s.items.UpdateScores(ctx, updates)
}

func (s *matchService) AddChallenger(ctx context.Context, userID uuid.UUID, candidate *domain.TournamentCandidate, collectionID uuid.UUID, initialElo int) (*domain.Item, error) {
	if candidate == nil {
		return nil, fmt.Errorf("%w: nil candidate", apperrors.ErrInvalidArgument)
	}
	name := strings.TrimSpace(candidate.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: candidate has no name", apperrors.ErrInvalidArgument)
	}
	if collectionID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing collection id", apperrors.ErrInvalidArgument)
	}
	if initialElo <= 0 {
		initialElo = candidate.EloScore
	}
	if initialElo <= 0 {
		initialElo = domain.InitialEloScore
	}

	row := &domain.Item{
		CollectionID: collectionID,
		Title:        name,
		Description:  candidate.Description,
		ImageURL:     candidate.ImageURL,
		Origin:       candidate.Origin,
		EloScore:     initialElo,
		Status:       domain.ItemStatusActive,
	}
	created, err := s.items.Create(ctx, nil, []*domain.Item{row})
	if err != nil {
		return nil, apperrors.Persistence("promote challenger", err)
	}
	it := created[0]

	if s.activity != nil {
		s.activity.Log(userID, domain.EventChallengerPromoted, map[string]any{
			"item_id":       it.ID.String(),
			"name":          name,
			"collection_id": collectionID.String(),
			"elo_score":     initialElo,
			"origin":        candidate.Origin,
		})
	}
	return it, nil
}

func findPoolEntry(pool []domain.PoolItem, id string) *domain.PoolItem {
	for i := range pool {
		if pool[i].ID() == id {
			return &pool[i]
		}
	}
	return nil
}
