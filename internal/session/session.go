package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tierfolio/tierfolio-backend/internal/data/repos/ranking"
	"github.com/tierfolio/tierfolio-backend/internal/domain"
	"github.com/tierfolio/tierfolio-backend/internal/observability"
	apperrors "github.com/tierfolio/tierfolio-backend/internal/pkg/errors"
	"github.com/tierfolio/tierfolio-backend/internal/pkg/logger"
	"github.com/tierfolio/tierfolio-backend/internal/services"
)

// Deps are the collaborators a session mutates through.
type Deps struct {
	Log         *logger.Logger
	Items       ranking.ItemRepo
	Tiers       services.TierService
	Matches     services.MatchService
	Tournaments services.TournamentService
	Metrics     *observability.Metrics
	KFactor     int
}

// MutationFailure is a rolled-back speculative mutation surfaced to the user.
type MutationFailure struct {
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// mutation pairs one persistence call with the inverse of its speculative
// patch. The dispatcher runs persist calls strictly in enqueue order; on a
// failure only the recorded inverse is applied, never a full refetch.
type mutation struct {
	kind    string
	persist func(ctx context.Context) error
	inverse func()
}

// Session is one user's live ranking session: the shadow state their client
// renders, the tournament pool they vote on, and the serial queue that
// reconciles speculative updates against persistence.
type Session struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	CollectionID uuid.UUID

	deps Deps
	log  *logger.Logger

	mu         sync.Mutex
	shadow     *shadow
	pool       []domain.PoolItem
	drag       dragMachine
	failures   []MutationFailure
	lastActive time.Time
	closed     bool

	queue chan *mutation
	done  chan struct{}

	closeOnce sync.Once

	// persistTimeout bounds each dispatched call; there is no cancellation
	// once a call is issued, the dispatcher simply waits it out.
	persistTimeout time.Duration
}

func newSession(ctx context.Context, deps Deps, userID, collectionID uuid.UUID) (*Session, error) {
	ranks, err := deps.Tiers.ListTiers(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	items, err := deps.Items.ListByCollection(ctx, nil, collectionID, ranking.ItemFilters{})
	if err != nil {
		return nil, err
	}
	kFactor := deps.KFactor
	if kFactor <= 0 {
		kFactor = services.DefaultKFactor
	}
	deps.KFactor = kFactor

	s := &Session{
		ID:             uuid.New(),
		UserID:         userID,
		CollectionID:   collectionID,
		deps:           deps,
		shadow:         newShadow(ranks, items),
		lastActive:     time.Now(),
		queue:          make(chan *mutation, 256),
		done:           make(chan struct{}),
		persistTimeout: 15 * time.Second,
	}
	s.log = deps.Log.With("session_id", s.ID.String())
	go s.dispatch()
	return s, nil
}

// dispatch drains the mutation queue one call at a time, preserving the
// order the user issued them. Failures roll the shadow back by the exact
// recorded delta and are surfaced on the session.
func (s *Session) dispatch() {
	for {
		select {
		case <-s.done:
			return
		case m := <-s.queue:
			ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
			err := m.persist(ctx)
			cancel()
			if err == nil {
				// Shadow already matches the persisted state; the
				// speculative patch simply stops being speculative.
				s.deps.Metrics.SessionMutation(m.kind, "committed")
				continue
			}
			s.mu.Lock()
			m.inverse()
			s.failures = append(s.failures, MutationFailure{
				Kind:    m.kind,
				Message: err.Error(),
				At:      time.Now(),
			})
			s.mu.Unlock()
			s.deps.Metrics.SessionMutation(m.kind, "rolled_back")
			s.deps.Metrics.SessionRollbackInc()
			s.log.Warn("mutation rolled back", "kind", m.kind, "error", err)
		}
	}
}

func (s *Session) enqueue(m *mutation) error {
	if s.closed {
		return fmt.Errorf("session closed")
	}
	select {
	case s.queue <- m:
		return nil
	default:
		return fmt.Errorf("session mutation queue full")
	}
}

// StartTournament builds the comparison pool and seeds speculative ratings.
func (s *Session) StartTournament(ctx context.Context, poolSize int, includeUnseen bool) ([]domain.PoolItem, error) {
	pool, err := s.deps.Tournaments.GeneratePool(ctx, s.UserID, s.CollectionID, poolSize, includeUnseen)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.pool = pool
	for _, p := range pool {
		s.shadow.poolElo[p.ID()] = p.Elo()
	}
	return pool, nil
}

// StartDrag begins a drag. kind is "item" or "row"; sourceID is the item id
// or rank id being moved.
func (s *Session) StartDrag(kind DragKind, sourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.drag.start(kind, sourceID)
}

func (s *Session) CancelDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.drag.cancel()
}

// DropResult reports what a drop did. Mutated=false means the target was not
// recognized and no persistence call was issued.
type DropResult struct {
	Mutated bool   `json:"mutated"`
	Kind    string `json:"kind,omitempty"`
}

// Drop completes the in-flight drag against targetID. Item drags accept a
// custom rank id, a builtin ladder name, or the Unranked sentinel; any other
// target is a pure no-op. Row drags reorder tiers and never touch item
// assignments.
func (s *Session) Drop(targetID string) (*DropResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	kind, sourceID, err := s.drag.drop()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err)
	}
	defer s.drag.settle()

	switch kind {
	case DragItem:
		return s.dropItem(sourceID, targetID)
	case DragRow:
		return s.dropRow(sourceID, targetID)
	default:
		return &DropResult{Mutated: false}, nil
	}
}

func (s *Session) dropItem(sourceID, targetID string) (*DropResult, error) {
	itemID, err := uuid.Parse(sourceID)
	if err != nil {
		return &DropResult{Mutated: false}, nil
	}
	if _, ok := s.shadow.items[itemID]; !ok {
		return &DropResult{Mutated: false}, nil
	}

	if targetID == domain.UnrankedTarget {
		prev, _ := s.shadow.setTier(itemID, nil)
		if prev == nil {
			return &DropResult{Mutated: false}, nil
		}
		m := &mutation{
			kind: "remove_tier",
			persist: func(ctx context.Context) error {
				_, err := s.deps.Tiers.RemoveItemTier(ctx, s.UserID, itemID, s.CollectionID)
				return err
			},
			inverse: func() { s.shadow.setTier(itemID, prev) },
		}
		if err := s.enqueue(m); err != nil {
			s.shadow.setTier(itemID, prev)
			return nil, err
		}
		return &DropResult{Mutated: true, Kind: m.kind}, nil
	}

	name, ok := s.shadow.rankNameForTarget(targetID)
	if !ok {
		// Dropped outside any recognized target: nothing to cancel, no
		// call was ever issued.
		return &DropResult{Mutated: false}, nil
	}
	prev, _ := s.shadow.setTier(itemID, &name)
	if prev != nil && *prev == name {
		return &DropResult{Mutated: false}, nil
	}
	m := &mutation{
		kind: "assign_tier",
		persist: func(ctx context.Context) error {
			_, err := s.deps.Tiers.AssignItemToTier(ctx, s.UserID, itemID, name, s.CollectionID)
			return err
		},
		inverse: func() { s.shadow.setTier(itemID, prev) },
	}
	if err := s.enqueue(m); err != nil {
		s.shadow.setTier(itemID, prev)
		return nil, err
	}
	return &DropResult{Mutated: true, Kind: m.kind}, nil
}

func (s *Session) dropRow(sourceID, targetID string) (*DropResult, error) {
	srcID, err := uuid.Parse(sourceID)
	if err != nil {
		return &DropResult{Mutated: false}, nil
	}
	dstID, err := uuid.Parse(targetID)
	if err != nil {
		return &DropResult{Mutated: false}, nil
	}
	prevOrder := s.shadow.rankOrder()
	newOrder, ok := moveBefore(prevOrder, srcID, dstID)
	if !ok {
		return &DropResult{Mutated: false}, nil
	}
	s.shadow.applyRankOrder(newOrder)
	m := &mutation{
		kind: "reorder_tiers",
		persist: func(ctx context.Context) error {
			return s.deps.Tiers.ReorderTiers(ctx, s.UserID, s.CollectionID, newOrder)
		},
		inverse: func() { s.shadow.applyRankOrder(prevOrder) },
	}
	if err := s.enqueue(m); err != nil {
		s.shadow.applyRankOrder(prevOrder)
		return nil, err
	}
	return &DropResult{Mutated: true, Kind: m.kind}, nil
}

// Vote records a face-off outcome. The shadow rating moves immediately; the
// durable update runs on the dispatcher and rolls the shadow back on failure.
func (s *Session) Vote(outcome domain.MatchOutcome) (*services.MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	winner := s.poolEntry(outcome.WinnerID)
	loser := s.poolEntry(outcome.LoserID)
	if winner == nil || loser == nil {
		return nil, fmt.Errorf("%w: vote ids not in pool", apperrors.ErrNotFound)
	}

	prevWinner := s.shadow.poolElo[outcome.WinnerID]
	prevLoser := s.shadow.poolElo[outcome.LoserID]
	winnerNew, loserNew := services.EloOutcome(prevWinner, prevLoser, s.deps.KFactor)
	s.shadow.poolElo[outcome.WinnerID] = winnerNew
	s.shadow.poolElo[outcome.LoserID] = loserNew

	m := &mutation{
		kind: "match_vote",
		persist: func(ctx context.Context) error {
			// RecordMatch mutates pool entries only after its batch commits,
			// so a failure leaves the durable ratings untouched.
			s.mu.Lock()
			defer s.mu.Unlock()
			_, err := s.deps.Matches.RecordMatch(ctx, s.UserID, s.pool, outcome)
			return err
		},
		inverse: func() {
			s.shadow.poolElo[outcome.WinnerID] = prevWinner
			s.shadow.poolElo[outcome.LoserID] = prevLoser
		},
	}
	if err := s.enqueue(m); err != nil {
		m.inverse()
		return nil, err
	}
	return &services.MatchResult{WinnerElo: winnerNew, LoserElo: loserNew}, nil
}

// PromoteChallenger persists a candidate pool entry as a real item, carrying
// its current rating, and swaps the pool entry to owned.
func (s *Session) PromoteChallenger(ctx context.Context, tempID string) (*domain.Item, error) {
	s.mu.Lock()
	entry := s.poolEntry(tempID)
	if entry == nil || entry.Kind != domain.PoolItemCandidate {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: candidate %s not in pool", apperrors.ErrNotFound, tempID)
	}
	candidate := entry.Candidate
	currentElo := s.shadow.poolElo[tempID]
	if currentElo == 0 {
		currentElo = candidate.EloScore
	}
	s.mu.Unlock()

	item, err := s.deps.Matches.AddChallenger(ctx, s.UserID, candidate, s.CollectionID, currentElo)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if e := s.poolEntry(tempID); e != nil {
		*e = domain.OwnedPoolItem(item)
	}
	delete(s.shadow.poolElo, tempID)
	s.shadow.poolElo[item.ID.String()] = item.EloScore
	s.shadow.items[item.ID] = &ItemView{
		ID:        item.ID,
		Title:     item.Title,
		Tier:      item.Tier,
		EloScore:  item.EloScore,
		CreatedAt: item.CreatedAt,
	}
	s.shadow.rebuildUnranked()
	return item, nil
}

// SortUnranked applies a client-local ordering to the unranked pool view.
// It issues no persistence call.
func (s *Session) SortUnranked(mode UnrankedSort) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.shadow.sortUnranked(mode)
}

// State is the snapshot the client renders.
type State struct {
	SessionID    uuid.UUID         `json:"session_id"`
	CollectionID uuid.UUID         `json:"collection_id"`
	Ranks        []RankView        `json:"ranks"`
	Items        []*ItemView       `json:"items"`
	Unranked     []uuid.UUID       `json:"unranked"`
	Pool         []domain.PoolItem `json:"pool,omitempty"`
	PoolElo      map[string]int    `json:"pool_elo,omitempty"`
	DragPhase    string            `json:"drag_phase"`
	Failures     []MutationFailure `json:"failures,omitempty"`
}

// Snapshot returns the current shadow state and drains surfaced failures.
func (s *Session) Snapshot() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	st := &State{
		SessionID:    s.ID,
		CollectionID: s.CollectionID,
		Ranks:        append([]RankView(nil), s.shadow.ranks...),
		Unranked:     append([]uuid.UUID(nil), s.shadow.unranked...),
		Pool:         append([]domain.PoolItem(nil), s.pool...),
		PoolElo:      map[string]int{},
		DragPhase:    s.drag.phase.String(),
		Failures:     s.failures,
	}
	for _, it := range s.shadow.items {
		st.Items = append(st.Items, it)
	}
	for k, v := range s.shadow.poolElo {
		st.PoolElo[k] = v
	}
	s.failures = nil
	return st
}

func (s *Session) poolEntry(id string) *domain.PoolItem {
	for i := range s.pool {
		if s.pool[i].ID() == id {
			return &s.pool[i]
		}
	}
	return nil
}

func (s *Session) touch() {
	s.lastActive = time.Now()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.done)
	})
}

func moveBefore(order []uuid.UUID, src, dst uuid.UUID) ([]uuid.UUID, bool) {
	if src == dst {
		return nil, false
	}
	srcIdx, dstIdx := -1, -1
	for i, id := range order {
		if id == src {
			srcIdx = i
		}
		if id == dst {
			dstIdx = i
		}
	}
	if srcIdx < 0 || dstIdx < 0 {
		return nil, false
	}
	out := make([]uuid.UUID, 0, len(order))
	for i, id := range order {
		if i == srcIdx {
			continue
		}
		if id == dst {
			if srcIdx < dstIdx {
				out = append(out, id, src)
				continue
			}
			out = append(out, src, id)
			continue
		}
		out = append(out, id)
	}
	return out, true
}
