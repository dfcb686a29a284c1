package store

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/ideas-net-studio/shared-memory/internal/model"
)

func newTestIndex(t *testing.T) *SearchIndex {
	t.Helper()
	ix, err := OpenIndex(t.TempDir())
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}

func lookup(t *testing.T, ix *SearchIndex, term string) []string {
	t.Helper()
	ids, err := ix.Lookup(context.Background(), term)
	if err != nil {
		t.Fatalf("lookup %q: %v", term, err)
	}
	sort.Strings(ids)
	return ids
}

func TestIndexAddAndLookup(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	m := testMemory("M1", model.TypeConcept, time.Now().UTC())
	m.Title = "Auth flow"
	m.Content = "Use OAuth2 for third-party login"
	m.Tags = []string{"auth", "security"}

	if err := ix.Add(ctx, m); err != nil {
		t.Fatalf("add: %v", err)
	}

	for _, term := range []string{"auth", "oauth2", "flow", "security", "login"} {
		ids := lookup(t, ix, term)
		if len(ids) != 1 || ids[0] != "M1" {
			t.Errorf("term %q: expected [M1], got %v", term, ids)
		}
	}
	if ids := lookup(t, ix, "missing"); len(ids) != 0 {
		t.Errorf("expected empty posting list, got %v", ids)
	}
}

func TestIndexUpdate_DropsStalePostings(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	m := testMemory("M1", model.TypeConcept, time.Now().UTC())
	m.Title = "Redis cache"
	m.Content = "eviction policy"
	ix.Add(ctx, m)

	m.Title = "Postgres tuning"
	m.Content = "connection pool"
	if err := ix.Update(ctx, m); err != nil {
		t.Fatalf("update: %v", err)
	}

	if ids := lookup(t, ix, "redis"); len(ids) != 0 {
		t.Errorf("stale posting survived update: %v", ids)
	}
	if ids := lookup(t, ix, "postgres"); len(ids) != 1 {
		t.Errorf("expected new posting, got %v", ids)
	}
}

func TestIndexLookupPrefix(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	m := testMemory("M1", model.TypeDecision, time.Now().UTC())
	m.Content = "Use OAuth2 for third-party login"
	ix.Add(ctx, m)

	ids, err := ix.LookupPrefix(ctx, "oauth")
	if err != nil {
		t.Fatalf("lookup prefix: %v", err)
	}
	if len(ids) != 1 || ids[0] != "M1" {
		t.Errorf("expected [M1] for prefix oauth, got %v", ids)
	}

	// Exact lookup stays exact.
	if ids := lookup(t, ix, "oauth"); len(ids) != 0 {
		t.Errorf("expected no exact match for oauth, got %v", ids)
	}
}

func TestIndexRemove(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	m := testMemory("M1", model.TypeConcept, time.Now().UTC())
	m.Content = "ephemeral note"
	ix.Add(ctx, m)

	if err := ix.Remove(ctx, "M1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if ids := lookup(t, ix, "ephemeral"); len(ids) != 0 {
		t.Errorf("posting survived remove: %v", ids)
	}
	// Removing an unknown id is harmless.
	if err := ix.Remove(ctx, "ghost"); err != nil {
		t.Errorf("remove unknown id: %v", err)
	}
}

func TestIndexLookup_FailureWrapsIO(t *testing.T) {
	ix, err := OpenIndex(t.TempDir())
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	ix.Close()
	ctx := context.Background()

	if _, err := ix.Lookup(ctx, "term"); !errors.Is(err, ErrIO) {
		t.Errorf("expected ErrIO from closed index, got %v", err)
	}
	if _, err := ix.LookupPrefix(ctx, "term"); !errors.Is(err, ErrIO) {
		t.Errorf("expected ErrIO from closed index, got %v", err)
	}
}

func TestIndexRebuild_MatchesIncremental(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()
	now := time.Now().UTC()

	a := testMemory("A", model.TypeConcept, now)
	a.Content = "goroutines and channels"
	b := testMemory("B", model.TypeDecision, now)
	b.Content = "channels for fan-out"
	ix.Add(ctx, a)
	ix.Add(ctx, b)

	before := lookup(t, ix, "channels")

	if err := ix.Rebuild(ctx, []*model.Memory{a, b}); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	after := lookup(t, ix, "channels")

	if len(before) != len(after) {
		t.Fatalf("rebuild changed postings: %v vs %v", before, after)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("rebuild changed postings: %v vs %v", before, after)
		}
	}
}

func TestIndexRebuild_DropsDeparted(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()
	now := time.Now().UTC()

	a := testMemory("A", model.TypeConcept, now)
	a.Content = "kept"
	b := testMemory("B", model.TypeConcept, now)
	b.Content = "dropped"
	ix.Add(ctx, a)
	ix.Add(ctx, b)

	// Rebuild from a store that no longer holds B.
	if err := ix.Rebuild(ctx, []*model.Memory{a}); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if ids := lookup(t, ix, "dropped"); len(ids) != 0 {
		t.Errorf("expected B gone after rebuild, got %v", ids)
	}
	if ids := lookup(t, ix, "kept"); len(ids) != 1 {
		t.Errorf("expected A kept after rebuild, got %v", ids)
	}
}
