package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/tierfolio/tierfolio-backend/internal/domain"
	apperrors "github.com/tierfolio/tierfolio-backend/internal/pkg/errors"
)

func newMatchFixture(items *fakeItemRepo) (MatchService, *fakeActivity) {
	activity := &fakeActivity{}
	return NewMatchService(testLogger(), MatchConfig{KFactor: DefaultKFactor}, items, activity, nil), activity
}

func TestRecordMatchOwnedVsOwned(t *testing.T) {
	collectionID := uuid.New()
	winner := &domain.Item{ID: uuid.New(), CollectionID: collectionID, Title: "Alien", EloScore: 1200}
	loser := &domain.Item{ID: uuid.New(), CollectionID: collectionID, Title: "Gigli", EloScore: 1200}
	items := newFakeItemRepo(winner, loser)
	svc, activity := newMatchFixture(items)

	pool := []domain.PoolItem{domain.OwnedPoolItem(winner), domain.OwnedPoolItem(loser)}
	res, err := svc.RecordMatch(context.Background(), uuid.New(), pool, domain.MatchOutcome{
		WinnerID: winner.ID.String(), WinnerName: winner.Title,
		LoserID: loser.ID.String(), LoserName: loser.Title,
	})
	if err != nil {
		t.Fatalf("record match: %v", err)
	}
	if res.WinnerElo != 1216 || res.LoserElo != 1184 {
		t.Fatalf("result = %d/%d, want 1216/1184", res.WinnerElo, res.LoserElo)
	}
	if winner.EloScore != 1216 || loser.EloScore != 1184 {
		t.Fatalf("persisted scores = %d/%d, want 1216/1184", winner.EloScore, loser.EloScore)
	}
	events := activity.recorded()
	if len(events) != 1 || events[0] != domain.EventMatchRecorded {
		t.Fatalf("events = %v, want one %s", events, domain.EventMatchRecorded)
	}
}

func TestRecordMatchOwnedVsCandidate(t *testing.T) {
	collectionID := uuid.New()
	owned := &domain.Item{ID: uuid.New(), CollectionID: collectionID, Title: "Alien", EloScore: 1200}
	cand := &domain.TournamentCandidate{TempID: domain.NewCandidateTempID(), Name: "Moon", EloScore: 1200}
	items := newFakeItemRepo(owned)
	svc, _ := newMatchFixture(items)

	pool := []domain.PoolItem{domain.OwnedPoolItem(owned), domain.CandidatePoolItem(cand)}
	res, err := svc.RecordMatch(context.Background(), uuid.New(), pool, domain.MatchOutcome{
		WinnerID: cand.TempID, WinnerName: cand.Name,
		LoserID: owned.ID.String(), LoserName: owned.Title,
	})
	if err != nil {
		t.Fatalf("record match: %v", err)
	}
	// The candidate's new rating lives only on the pool entry.
	if cand.EloScore != 1216 {
		t.Fatalf("candidate elo = %d, want 1216", cand.EloScore)
	}
	if owned.EloScore != 1184 {
		t.Fatalf("owned loser elo = %d, want 1184", owned.EloScore)
	}
	if res.WinnerElo != 1216 {
		t.Fatalf("winner elo = %d, want 1216", res.WinnerElo)
	}
}

func TestRecordMatchLeavesPoolUntouchedOnPersistFailure(t *testing.T) {
	collectionID := uuid.New()
	winner := &domain.Item{ID: uuid.New(), CollectionID: collectionID, Title: "Alien", EloScore: 1300}
	loser := &domain.Item{ID: uuid.New(), CollectionID: collectionID, Title: "Gigli", EloScore: 1100}
	items := newFakeItemRepo(winner, loser)
	items.failScores = apperrors.Persistence("update scores", errors.New("connection reset"))
	svc, activity := newMatchFixture(items)

	pool := []domain.PoolItem{domain.OwnedPoolItem(winner), domain.OwnedPoolItem(loser)}
	_, err := svc.RecordMatch(context.Background(), uuid.New(), pool, domain.MatchOutcome{
		WinnerID: winner.ID.String(), LoserID: loser.ID.String(),
	})
	if err == nil {
		t.Fatal("persist failure must surface")
	}
	if winner.EloScore != 1300 || loser.EloScore != 1100 {
		t.Fatalf("pool mutated despite failed batch: %d/%d", winner.EloScore, loser.EloScore)
	}
	if len(activity.recorded()) != 0 {
		t.Fatalf("no activity must be logged on failure")
	}
}

func TestRecordMatchUnknownIDs(t *testing.T) {
	svc, _ := newMatchFixture(newFakeItemRepo())
	_, err := svc.RecordMatch(context.Background(), uuid.New(), nil, domain.MatchOutcome{
		WinnerID: "tmp-a", LoserID: "tmp-b",
	})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("unknown pool ids must be not found, got %v", err)
	}
}

func TestRecordMatchSelfPlayRejected(t *testing.T) {
	svc, _ := newMatchFixture(newFakeItemRepo())
	_, err := svc.RecordMatch(context.Background(), uuid.New(), nil, domain.MatchOutcome{
		WinnerID: "tmp-a", LoserID: "tmp-a",
	})
	if !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("self-play must be invalid argument, got %v", err)
	}
}

func TestAddChallengerCarriesCurrentElo(t *testing.T) {
	collectionID := uuid.New()
	items := newFakeItemRepo()
	svc, activity := newMatchFixture(items)

	cand := &domain.TournamentCandidate{TempID: domain.NewCandidateTempID(), Name: "Moon", EloScore: 1248, Origin: "tmdb"}
	item, err := svc.AddChallenger(context.Background(), uuid.New(), cand, collectionID, 1248)
	if err != nil {
		t.Fatalf("add challenger: %v", err)
	}
	if item.EloScore != 1248 {
		t.Fatalf("promoted elo = %d, want 1248 (rating must survive promotion)", item.EloScore)
	}
	if item.Status != domain.ItemStatusActive {
		t.Fatalf("promoted status = %s, want ACTIVE", item.Status)
	}
	if item.Tier != nil {
		t.Fatalf("promoted item must start unranked")
	}
	events := activity.recorded()
	if len(events) != 1 || events[0] != domain.EventChallengerPromoted {
		t.Fatalf("events = %v, want one %s", events, domain.EventChallengerPromoted)
	}
}

func TestAddChallengerFallsBackToCandidateElo(t *testing.T) {
	svc, _ := newMatchFixture(newFakeItemRepo())
	cand := &domain.TournamentCandidate{TempID: domain.NewCandidateTempID(), Name: "Moon", EloScore: 1190}
	item, err := svc.AddChallenger(context.Background(), uuid.New(), cand, uuid.New(), 0)
	if err != nil {
		t.Fatalf("add challenger: %v", err)
	}
	if item.EloScore != 1190 {
		t.Fatalf("elo = %d, want candidate's 1190", item.EloScore)
	}
}

func TestAddChallengerValidation(t *testing.T) {
	svc, _ := newMatchFixture(newFakeItemRepo())
	if _, err := svc.AddChallenger(context.Background(), uuid.New(), nil, uuid.New(), 1200); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("nil candidate must be rejected, got %v", err)
	}
	if _, err := svc.AddChallenger(context.Background(), uuid.New(), &domain.TournamentCandidate{Name: "  "}, uuid.New(), 1200); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("blank name must be rejected, got %v", err)
	}
}
