package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// TournamentCandidate is an ephemeral item sourced from the discovery
// service. TempID never collides with a persisted item id: persisted ids are
// bare UUID strings, candidate ids carry the tmp- prefix. A candidate becomes
// a real Item only via explicit promotion, which carries over its current
// (possibly match-adjusted) EloScore.
type TournamentCandidate struct {
	TempID      string `json:"temp_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	Origin      string `json:"origin,omitempty"`
	EloScore    int    `json:"elo_score"`
}

// NewCandidateTempID mints an ephemeral id outside the persisted id space.
func NewCandidateTempID() string {
	return "tmp-" + uuid.NewString()
}

type PoolItemKind string

const (
	PoolItemOwned     PoolItemKind = "OWNED"
	PoolItemCandidate PoolItemKind = "CANDIDATE"
)

// PoolItem is the tagged union of a persisted item and an ephemeral
// candidate, so the two identity spaces are never conflated.
type PoolItem struct {
	Kind      PoolItemKind         `json:"kind"`
	Item      *Item                `json:"item,omitempty"`
	Candidate *TournamentCandidate `json:"candidate,omitempty"`
}

func OwnedPoolItem(it *Item) PoolItem {
	return PoolItem{Kind: PoolItemOwned, Item: it}
}

func CandidatePoolItem(c *TournamentCandidate) PoolItem {
	return PoolItem{Kind: PoolItemCandidate, Candidate: c}
}

// ID returns the pool-scoped identifier: the item UUID string for owned
// entries, the temp id for candidates.
func (p PoolItem) ID() string {
	if p.Kind == PoolItemCandidate {
		return p.Candidate.TempID
	}
	return p.Item.ID.String()
}

func (p PoolItem) Name() string {
	if p.Kind == PoolItemCandidate {
		return p.Candidate.Name
	}
	return p.Item.Title
}

func (p PoolItem) Elo() int {
	if p.Kind == PoolItemCandidate {
		return p.Candidate.EloScore
	}
	return p.Item.EloScore
}

func (p *PoolItem) SetElo(score int) {
	if p.Kind == PoolItemCandidate {
		p.Candidate.EloScore = score
		return
	}
	p.Item.EloScore = score
}

func (p PoolItem) String() string {
	return fmt.Sprintf("%s(%s %q elo=%d)", p.Kind, p.ID(), p.Name(), p.Elo())
}

// MatchOutcome is the transient face-off event consumed by the match engine.
// Winner/loser names travel with the event because candidate ids cannot be
// looked up later.
type MatchOutcome struct {
	WinnerID   string `json:"winner_id"`
	WinnerName string `json:"winner_name"`
	LoserID    string `json:"loser_id"`
	LoserName  string `json:"loser_name"`
}
