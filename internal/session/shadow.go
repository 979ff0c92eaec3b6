package session

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tierfolio/tierfolio-backend/internal/domain"
)

// RankView is the session's snapshot of one tier definition. TargetID doubles
// as the drop-target identifier the client echoes back.
type RankView struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	SortOrder int       `json:"sort_order"`
	Builtin   bool      `json:"builtin"`
}

// ItemView is the client-facing projection of one item in the shadow.
type ItemView struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Tier      *string   `json:"tier,omitempty"`
	EloScore  int       `json:"elo_score"`
	CreatedAt time.Time `json:"created_at"`
}

// shadow is the speculative client view. Every user mutation lands here
// immediately; persistence either confirms it (patch dropped) or the recorded
// inverse is applied (exact delta rollback, no refetch).
type shadow struct {
	ranks     []RankView
	items     map[uuid.UUID]*ItemView
	poolElo   map[string]int // pool-scoped id -> speculative rating
	unranked  []uuid.UUID    // client-local display order of the unranked pool
}

func newShadow(ranks []*domain.CustomRank, items []*domain.Item) *shadow {
	s := &shadow{
		items:   make(map[uuid.UUID]*ItemView, len(items)),
		poolElo: map[string]int{},
	}
	if len(ranks) == 0 {
		for i, name := range domain.BuiltinLadder {
			s.ranks = append(s.ranks, RankView{Name: name, SortOrder: i, Builtin: true})
		}
	} else {
		for _, r := range ranks {
			s.ranks = append(s.ranks, RankView{
				ID:        r.ID,
				Name:      r.Name,
				Color:     r.Color,
				SortOrder: r.SortOrder,
				Builtin:   false,
			})
		}
	}
	for _, it := range items {
		s.items[it.ID] = &ItemView{
			ID:        it.ID,
			Title:     it.Title,
			Tier:      it.Tier,
			EloScore:  it.EloScore,
			CreatedAt: it.CreatedAt,
		}
		if it.Tier == nil {
			s.unranked = append(s.unranked, it.ID)
		}
	}
	return s
}

// rankNameForTarget resolves a drop-target id to a tier name. The second
// return is false when the target is not a recognized rank id.
func (s *shadow) rankNameForTarget(targetID string) (string, bool) {
	if id, err := uuid.Parse(targetID); err == nil {
		for _, r := range s.ranks {
			if !r.Builtin && r.ID == id {
				return r.Name, true
			}
		}
		return "", false
	}
	// Builtin ladder ranks have no persisted id; their name is the target.
	for _, r := range s.ranks {
		if r.Builtin && r.Name == targetID {
			return r.Name, true
		}
	}
	return "", false
}

func (s *shadow) setTier(itemID uuid.UUID, tier *string) (prev *string, ok bool) {
	it, found := s.items[itemID]
	if !found {
		return nil, false
	}
	prev = it.Tier
	it.Tier = tier
	s.rebuildUnranked()
	return prev, true
}

func (s *shadow) rebuildUnranked() {
	kept := s.unranked[:0]
	present := map[uuid.UUID]bool{}
	for _, id := range s.unranked {
		if it, ok := s.items[id]; ok && it.Tier == nil {
			kept = append(kept, id)
			present[id] = true
		}
	}
	s.unranked = kept
	for id, it := range s.items {
		if it.Tier == nil && !present[id] {
			s.unranked = append(s.unranked, id)
		}
	}
}

func (s *shadow) rankOrder() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s.ranks))
	for _, r := range s.ranks {
		out = append(out, r.ID)
	}
	return out
}

func (s *shadow) applyRankOrder(ordered []uuid.UUID) {
	pos := make(map[uuid.UUID]int, len(ordered))
	for i, id := range ordered {
		pos[id] = i
	}
	sort.SliceStable(s.ranks, func(i, j int) bool {
		return pos[s.ranks[i].ID] < pos[s.ranks[j].ID]
	})
	for i := range s.ranks {
		s.ranks[i].SortOrder = i
	}
}

// UnrankedSort is the purely client-local ordering of the unranked pool.
type UnrankedSort string

const (
	UnrankedNewest       UnrankedSort = "newest"
	UnrankedOldest       UnrankedSort = "oldest"
	UnrankedAlphabetical UnrankedSort = "alphabetical"
)

// sortUnranked reorders the local unranked view; stored data is untouched.
func (s *shadow) sortUnranked(mode UnrankedSort) {
	sort.SliceStable(s.unranked, func(i, j int) bool {
		a, b := s.items[s.unranked[i]], s.items[s.unranked[j]]
		switch mode {
		case UnrankedOldest:
			return a.CreatedAt.Before(b.CreatedAt)
		case UnrankedAlphabetical:
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		default: // newest
			return b.CreatedAt.Before(a.CreatedAt)
		}
	})
}
