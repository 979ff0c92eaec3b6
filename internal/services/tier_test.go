package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/tierfolio/tierfolio-backend/internal/domain"
	apperrors "github.com/tierfolio/tierfolio-backend/internal/pkg/errors"
)

func newTierFixture(t *testing.T, ranks *fakeRankRepo, items *fakeItemRepo) (TierService, *fakeActivity) {
	t.Helper()
	activity := &fakeActivity{}
	return NewTierService(nil, testLogger(), ranks, items, activity), activity
}

func TestAssignItemToTierBuiltinLadder(t *testing.T) {
	userID, collectionID := uuid.New(), uuid.New()
	item := &domain.Item{ID: uuid.New(), CollectionID: collectionID, Title: "Dune", EloScore: 1200, Status: domain.ItemStatusActive}
	items := newFakeItemRepo(item)
	svc, _ := newTierFixture(t, newFakeRankRepo(), items)

	got, err := svc.AssignItemToTier(context.Background(), userID, item.ID, "S", collectionID)
	if err != nil {
		t.Fatalf("assign to builtin tier: %v", err)
	}
	if got.Tier == nil || *got.Tier != "S" {
		t.Fatalf("item tier = %v, want S", got.Tier)
	}
}

func TestAssignItemToTierRejectsUnknownName(t *testing.T) {
	userID, collectionID := uuid.New(), uuid.New()
	item := &domain.Item{ID: uuid.New(), CollectionID: collectionID, Title: "Dune"}
	svc, _ := newTierFixture(t, newFakeRankRepo(), newFakeItemRepo(item))

	_, err := svc.AssignItemToTier(context.Background(), userID, item.ID, "Mythic", collectionID)
	if !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("unknown tier must be invalid argument, got %v", err)
	}
}

func TestAssignItemToTierCustomRanksShadowBuiltins(t *testing.T) {
	// Once a collection defines custom ranks, the builtin ladder no longer
	// names valid targets.
	userID, collectionID := uuid.New(), uuid.New()
	item := &domain.Item{ID: uuid.New(), CollectionID: collectionID, Title: "Dune"}
	ranks := newFakeRankRepo(&domain.CustomRank{CollectionID: collectionID, Name: "Great", SortOrder: 0})
	svc, _ := newTierFixture(t, ranks, newFakeItemRepo(item))

	if _, err := svc.AssignItemToTier(context.Background(), userID, item.ID, "S", collectionID); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("builtin name must be rejected when custom ranks exist, got %v", err)
	}
	got, err := svc.AssignItemToTier(context.Background(), userID, item.ID, "Great", collectionID)
	if err != nil {
		t.Fatalf("assign to custom rank: %v", err)
	}
	if got.Tier == nil || *got.Tier != "Great" {
		t.Fatalf("item tier = %v, want Great", got.Tier)
	}
}

func TestAssignItemToTierIdempotent(t *testing.T) {
	userID, collectionID := uuid.New(), uuid.New()
	tier := "A"
	item := &domain.Item{ID: uuid.New(), CollectionID: collectionID, Title: "Dune", Tier: &tier}
	svc, _ := newTierFixture(t, newFakeRankRepo(), newFakeItemRepo(item))

	got, err := svc.AssignItemToTier(context.Background(), userID, item.ID, "A", collectionID)
	if err != nil {
		t.Fatalf("re-assign same tier: %v", err)
	}
	if got.Tier == nil || *got.Tier != "A" {
		t.Fatalf("item tier = %v, want A", got.Tier)
	}
}

func TestRemoveItemTier(t *testing.T) {
	userID, collectionID := uuid.New(), uuid.New()
	tier := "B"
	item := &domain.Item{ID: uuid.New(), CollectionID: collectionID, Title: "Dune", Tier: &tier}
	svc, _ := newTierFixture(t, newFakeRankRepo(), newFakeItemRepo(item))

	got, err := svc.RemoveItemTier(context.Background(), userID, item.ID, collectionID)
	if err != nil {
		t.Fatalf("remove tier: %v", err)
	}
	if got.Tier != nil {
		t.Fatalf("item tier = %v, want nil", *got.Tier)
	}

	// Removing again is a no-op, not an error.
	if _, err := svc.RemoveItemTier(context.Background(), userID, item.ID, collectionID); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}

func TestCreateCustomRankAppendsAtEnd(t *testing.T) {
	userID, collectionID := uuid.New(), uuid.New()
	ranks := newFakeRankRepo(
		&domain.CustomRank{CollectionID: collectionID, Name: "Great", SortOrder: 0},
		&domain.CustomRank{CollectionID: collectionID, Name: "Fine", SortOrder: 1},
	)
	svc, _ := newTierFixture(t, ranks, newFakeItemRepo())

	created, err := svc.CreateCustomRank(context.Background(), userID, collectionID, "Meh", "#999999", domain.SentimentNegative)
	if err != nil {
		t.Fatalf("create rank: %v", err)
	}
	if created.SortOrder != 2 {
		t.Fatalf("new rank sort order = %d, want 2", created.SortOrder)
	}
}

func TestCreateCustomRankRejectsDuplicateName(t *testing.T) {
	userID, collectionID := uuid.New(), uuid.New()
	ranks := newFakeRankRepo(&domain.CustomRank{CollectionID: collectionID, Name: "Great", SortOrder: 0})
	svc, _ := newTierFixture(t, ranks, newFakeItemRepo())

	if _, err := svc.CreateCustomRank(context.Background(), userID, collectionID, "Great", "", domain.SentimentPositive); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("duplicate name must be rejected, got %v", err)
	}
}

func TestDeleteCustomRankBlockedWhenPopulated(t *testing.T) {
	userID, collectionID := uuid.New(), uuid.New()
	rank := &domain.CustomRank{ID: uuid.New(), CollectionID: collectionID, Name: "Great", SortOrder: 0}
	tier := "Great"
	items := newFakeItemRepo(
		&domain.Item{ID: uuid.New(), CollectionID: collectionID, Title: "Dune", Tier: &tier},
		&domain.Item{ID: uuid.New(), CollectionID: collectionID, Title: "Blade Runner", Tier: &tier},
	)
	svc, _ := newTierFixture(t, newFakeRankRepo(rank), items)

	err := svc.DeleteCustomRank(context.Background(), userID, rank.ID)
	if !apperrors.IsTierNotEmpty(err) {
		t.Fatalf("populated tier delete must fail with TierNotEmpty, got %v", err)
	}
	var tne *apperrors.TierNotEmptyError
	if !errors.As(err, &tne) || tne.ItemCount != 2 {
		t.Fatalf("error must carry the live count, got %+v", err)
	}
}

func TestDeleteCustomRankCompactsSortOrder(t *testing.T) {
	userID, collectionID := uuid.New(), uuid.New()
	middle := &domain.CustomRank{ID: uuid.New(), CollectionID: collectionID, Name: "Fine", SortOrder: 1}
	ranks := newFakeRankRepo(
		&domain.CustomRank{CollectionID: collectionID, Name: "Great", SortOrder: 0},
		middle,
		&domain.CustomRank{CollectionID: collectionID, Name: "Meh", SortOrder: 2},
	)
	svc, _ := newTierFixture(t, ranks, newFakeItemRepo())

	if err := svc.DeleteCustomRank(context.Background(), userID, middle.ID); err != nil {
		t.Fatalf("delete empty rank: %v", err)
	}
	rows, err := svc.ListTiers(context.Background(), collectionID)
	if err != nil {
		t.Fatalf("list tiers: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rank count = %d, want 2", len(rows))
	}
	for i, row := range rows {
		if row.SortOrder != i {
			t.Fatalf("sort order gap after delete: rank %q has %d, want %d", row.Name, row.SortOrder, i)
		}
	}
}

func TestReorderTiersRequiresPermutation(t *testing.T) {
	userID, collectionID := uuid.New(), uuid.New()
	a := &domain.CustomRank{ID: uuid.New(), CollectionID: collectionID, Name: "Great", SortOrder: 0}
	b := &domain.CustomRank{ID: uuid.New(), CollectionID: collectionID, Name: "Fine", SortOrder: 1}
	svc, _ := newTierFixture(t, newFakeRankRepo(a, b), newFakeItemRepo())

	if err := svc.ReorderTiers(context.Background(), userID, collectionID, []uuid.UUID{a.ID}); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("short id list must be rejected, got %v", err)
	}
	if err := svc.ReorderTiers(context.Background(), userID, collectionID, []uuid.UUID{a.ID, a.ID}); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("duplicate ids must be rejected, got %v", err)
	}
	if err := svc.ReorderTiers(context.Background(), userID, collectionID, []uuid.UUID{a.ID, uuid.New()}); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("foreign id must be rejected, got %v", err)
	}
}

func TestReorderTiersAppliesNewOrder(t *testing.T) {
	userID, collectionID := uuid.New(), uuid.New()
	a := &domain.CustomRank{ID: uuid.New(), CollectionID: collectionID, Name: "Great", SortOrder: 0}
	b := &domain.CustomRank{ID: uuid.New(), CollectionID: collectionID, Name: "Fine", SortOrder: 1}
	c := &domain.CustomRank{ID: uuid.New(), CollectionID: collectionID, Name: "Meh", SortOrder: 2}
	svc, _ := newTierFixture(t, newFakeRankRepo(a, b, c), newFakeItemRepo())

	if err := svc.ReorderTiers(context.Background(), userID, collectionID, []uuid.UUID{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	rows, err := svc.ListTiers(context.Background(), collectionID)
	if err != nil {
		t.Fatalf("list tiers: %v", err)
	}
	want := []string{"Meh", "Great", "Fine"}
	for i, row := range rows {
		if row.Name != want[i] {
			t.Fatalf("position %d = %q, want %q", i, row.Name, want[i])
		}
	}
}

func TestTierMutationsEmitActivityEvents(t *testing.T) {
	userID, collectionID := uuid.New(), uuid.New()
	item := &domain.Item{ID: uuid.New(), CollectionID: collectionID, Title: "Dune"}
	ranks := newFakeRankRepo(
		&domain.CustomRank{ID: uuid.New(), CollectionID: collectionID, Name: "Great", SortOrder: 0},
		&domain.CustomRank{ID: uuid.New(), CollectionID: collectionID, Name: "Fine", SortOrder: 1},
	)
	svc, activity := newTierFixture(t, ranks, newFakeItemRepo(item))

	if _, err := svc.AssignItemToTier(context.Background(), userID, item.ID, "Great", collectionID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := svc.RemoveItemTier(context.Background(), userID, item.ID, collectionID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	created, err := svc.CreateCustomRank(context.Background(), userID, collectionID, "Meh", "", domain.SentimentNegative)
	if err != nil {
		t.Fatalf("create rank: %v", err)
	}
	rows, err := svc.ListTiers(context.Background(), collectionID)
	if err != nil {
		t.Fatalf("list tiers: %v", err)
	}
	order := []uuid.UUID{rows[2].ID, rows[0].ID, rows[1].ID}
	if err := svc.ReorderTiers(context.Background(), userID, collectionID, order); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if err := svc.DeleteCustomRank(context.Background(), userID, created.ID); err != nil {
		t.Fatalf("delete rank: %v", err)
	}

	want := []string{
		domain.EventTierAssigned,
		domain.EventTierRemoved,
		domain.EventCustomRankCreated,
		domain.EventTiersReordered,
		domain.EventCustomRankDeleted,
	}
	got := activity.recorded()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTierNoOpsEmitNoActivity(t *testing.T) {
	userID, collectionID := uuid.New(), uuid.New()
	tier := "A"
	item := &domain.Item{ID: uuid.New(), CollectionID: collectionID, Title: "Dune", Tier: &tier}
	svc, activity := newTierFixture(t, newFakeRankRepo(), newFakeItemRepo(item))

	if _, err := svc.AssignItemToTier(context.Background(), userID, item.ID, "A", collectionID); err != nil {
		t.Fatalf("re-assign same tier: %v", err)
	}
	if _, err := svc.RemoveItemTier(context.Background(), userID, item.ID, collectionID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := svc.RemoveItemTier(context.Background(), userID, item.ID, collectionID); err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if got := activity.recorded(); len(got) != 1 || got[0] != domain.EventTierRemoved {
		t.Fatalf("events = %v, want only the one real removal", got)
	}
}

func TestTierNamesFallsBackToBuiltinLadder(t *testing.T) {
	svc, _ := newTierFixture(t, newFakeRankRepo(), newFakeItemRepo())
	names, err := svc.TierNames(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("tier names: %v", err)
	}
	if len(names) != len(domain.BuiltinLadder) {
		t.Fatalf("names = %v, want builtin ladder", names)
	}
	for i, n := range domain.BuiltinLadder {
		if names[i] != n {
			t.Fatalf("names[%d] = %q, want %q", i, names[i], n)
		}
	}
}
