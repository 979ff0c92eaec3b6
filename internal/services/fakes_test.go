package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tierfolio/tierfolio-backend/internal/clients/discovery"
	"github.com/tierfolio/tierfolio-backend/internal/data/repos/ranking"
	"github.com/tierfolio/tierfolio-backend/internal/domain"
	apperrors "github.com/tierfolio/tierfolio-backend/internal/pkg/errors"
	"github.com/tierfolio/tierfolio-backend/internal/pkg/logger"
)

func testLogger() *logger.Logger {
	log, err := logger.New("test")
	if err != nil {
		panic(err)
	}
	return log
}

// fakeItemRepo is an in-memory ItemRepo. UpdateScores honors failScores to
// exercise the abort path.
type fakeItemRepo struct {
	mu         sync.Mutex
	items      map[uuid.UUID]*domain.Item
	failScores error
}

func newFakeItemRepo(items ...*domain.Item) *fakeItemRepo {
	r := &fakeItemRepo{items: make(map[uuid.UUID]*domain.Item)}
	for _, it := range items {
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		r.items[it.ID] = it
	}
	return r
}

func (r *fakeItemRepo) Create(_ context.Context, _ *gorm.DB, rows []*domain.Item) ([]*domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		r.items[row.ID] = row
	}
	return rows, nil
}

func (r *fakeItemRepo) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: item %s", apperrors.ErrNotFound, id)
	}
	return it, nil
}

func (r *fakeItemRepo) ListByCollection(_ context.Context, _ *gorm.DB, collectionID uuid.UUID, f ranking.ItemFilters) ([]*domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Item
	for _, it := range r.items {
		if it.CollectionID != collectionID {
			continue
		}
		if f.Status != "" && it.Status != f.Status {
			continue
		}
		if f.Unranked && it.Tier != nil {
			continue
		}
		if f.Tier != nil && (it.Tier == nil || *it.Tier != *f.Tier) {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *fakeItemRepo) CountByTier(_ context.Context, _ *gorm.DB, collectionID uuid.UUID, tierName string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, it := range r.items {
		if it.CollectionID == collectionID && it.Tier != nil && *it.Tier == tierName {
			n++
		}
	}
	return n, nil
}

func (r *fakeItemRepo) SetTier(_ context.Context, _ *gorm.DB, id uuid.UUID, tier *string) (*domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: item %s", apperrors.ErrNotFound, id)
	}
	it.Tier = tier
	return it, nil
}

func (r *fakeItemRepo) SetStatus(_ context.Context, _ *gorm.DB, id uuid.UUID, status domain.ItemStatus) (*domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: item %s", apperrors.ErrNotFound, id)
	}
	it.Status = status
	return it, nil
}

func (r *fakeItemRepo) RenameTier(_ context.Context, _ *gorm.DB, collectionID uuid.UUID, oldName, newName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.CollectionID == collectionID && it.Tier != nil && *it.Tier == oldName {
			n := newName
			it.Tier = &n
		}
	}
	return nil
}

func (r *fakeItemRepo) UpdateScores(_ context.Context, updates []ranking.ScoreUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failScores != nil {
		return r.failScores
	}
	for _, u := range updates {
		it, ok := r.items[u.ID]
		if !ok {
			return fmt.Errorf("%w: item %s", apperrors.ErrNotFound, u.ID)
		}
		it.EloScore = u.EloScore
	}
	return nil
}

func (r *fakeItemRepo) Delete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("%w: item %s", apperrors.ErrNotFound, id)
	}
	delete(r.items, id)
	return nil
}

type fakeCollectionRepo struct {
	collections map[uuid.UUID]*domain.Collection
}

func newFakeCollectionRepo(cols ...*domain.Collection) *fakeCollectionRepo {
	r := &fakeCollectionRepo{collections: make(map[uuid.UUID]*domain.Collection)}
	for _, c := range cols {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		r.collections[c.ID] = c
	}
	return r
}

func (r *fakeCollectionRepo) Create(_ context.Context, _ *gorm.DB, row *domain.Collection) (*domain.Collection, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	r.collections[row.ID] = row
	return row, nil
}

func (r *fakeCollectionRepo) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*domain.Collection, error) {
	c, ok := r.collections[id]
	if !ok {
		return nil, fmt.Errorf("%w: collection %s", apperrors.ErrNotFound, id)
	}
	return c, nil
}

func (r *fakeCollectionRepo) ListByUser(_ context.Context, _ *gorm.DB, userID uuid.UUID) ([]*domain.Collection, error) {
	var out []*domain.Collection
	for _, c := range r.collections {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

// fakeRankRepo keeps ranks ordered the way the real repo returns them.
type fakeRankRepo struct {
	mu    sync.Mutex
	ranks map[uuid.UUID]*domain.CustomRank
}

func newFakeRankRepo(rows ...*domain.CustomRank) *fakeRankRepo {
	r := &fakeRankRepo{ranks: make(map[uuid.UUID]*domain.CustomRank)}
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		r.ranks[row.ID] = row
	}
	return r
}

func (r *fakeRankRepo) Create(_ context.Context, _ *gorm.DB, row *domain.CustomRank) (*domain.CustomRank, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	r.ranks[row.ID] = row
	return row, nil
}

func (r *fakeRankRepo) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*domain.CustomRank, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.ranks[id]
	if !ok {
		return nil, fmt.Errorf("%w: rank %s", apperrors.ErrNotFound, id)
	}
	return row, nil
}

func (r *fakeRankRepo) ListByCollection(_ context.Context, _ *gorm.DB, collectionID uuid.UUID) ([]*domain.CustomRank, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.CustomRank
	for _, row := range r.ranks {
		if row.CollectionID == collectionID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (r *fakeRankRepo) Update(_ context.Context, _ *gorm.DB, row *domain.CustomRank) (*domain.CustomRank, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ranks[row.ID]; !ok {
		return nil, fmt.Errorf("%w: rank %s", apperrors.ErrNotFound, row.ID)
	}
	r.ranks[row.ID] = row
	return row, nil
}

func (r *fakeRankRepo) BulkSetSortOrder(_ context.Context, _ uuid.UUID, updates []ranking.SortOrderUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range updates {
		row, ok := r.ranks[u.ID]
		if !ok {
			return fmt.Errorf("%w: rank %s", apperrors.ErrNotFound, u.ID)
		}
		row.SortOrder = u.SortOrder
	}
	return nil
}

func (r *fakeRankRepo) DeleteAndCompact(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.ranks[id]
	if !ok {
		return fmt.Errorf("%w: rank %s", apperrors.ErrNotFound, id)
	}
	delete(r.ranks, id)
	for _, other := range r.ranks {
		if other.CollectionID == row.CollectionID && other.SortOrder > row.SortOrder {
			other.SortOrder--
		}
	}
	return nil
}

// fakeActivity records events synchronously so tests can assert on them.
type fakeActivity struct {
	mu     sync.Mutex
	events []string
}

func (a *fakeActivity) Log(_ uuid.UUID, eventType string, _ map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, eventType)
}

func (a *fakeActivity) ListRecent(context.Context, uuid.UUID, int) ([]*domain.ActivityEvent, error) {
	return nil, nil
}

func (a *fakeActivity) recorded() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.events...)
}

// fakeDiscovery serves a fixed candidate list, or fails.
type fakeDiscovery struct {
	candidates []discovery.Candidate
	err        error
	calls      int
}

func (d *fakeDiscovery) Search(_ context.Context, _, _ string, limit int) ([]discovery.Candidate, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	if len(d.candidates) > limit {
		return d.candidates[:limit], nil
	}
	return d.candidates, nil
}
