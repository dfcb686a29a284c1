package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ideas-net-studio/shared-memory/internal/model"
)

func newTestEntities(t *testing.T) *EntityStore {
	t.Helper()
	e := NewEntityStore(t.TempDir())
	if err := e.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	return e
}

func testMemory(id string, typ model.Type, updated time.Time) *model.Memory {
	return &model.Memory{
		ID:         id,
		Type:       typ,
		Title:      "title " + id,
		Content:    "content " + id,
		Importance: model.DefaultImportance,
		CreatedAt:  updated,
		UpdatedAt:  updated,
	}
}

func TestEntityInit_Idempotent(t *testing.T) {
	dir := t.TempDir()
	e := NewEntityStore(dir)
	if err := e.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := e.Init(); err != nil {
		t.Fatalf("second init: %v", err)
	}
	for _, typ := range model.Types {
		if _, err := os.Stat(filepath.Join(dir, string(typ))); err != nil {
			t.Errorf("expected type dir %s: %v", typ, err)
		}
	}
}

func TestEntityCreateAndRead(t *testing.T) {
	e := newTestEntities(t)
	now := time.Now().UTC()
	m := testMemory("M1", model.TypeConcept, now)
	m.Tags = []string{"auth", "security"}

	if err := e.Create(m); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := e.Read("M1", model.TypeConcept)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Title != m.Title || got.Content != m.Content {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if len(got.Tags) != 2 {
		t.Errorf("expected 2 tags, got %v", got.Tags)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("created_at changed: %v != %v", got.CreatedAt, now)
	}
}

func TestEntityCreate_ConflictAcrossTypes(t *testing.T) {
	e := newTestEntities(t)
	now := time.Now().UTC()
	if err := e.Create(testMemory("M1", model.TypeConcept, now)); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Same id under a different type must still collide.
	err := e.Create(testMemory("M1", model.TypeDecision, now))
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestEntityCreate_UnreadableExistingRecord(t *testing.T) {
	e := newTestEntities(t)
	now := time.Now().UTC()
	if err := e.Create(testMemory("M1", model.TypeConcept, now)); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Corrupt the record. The conflict check must report the failure,
	// not treat the id as absent and write a second record.
	path := filepath.Join(e.Root(), string(model.TypeConcept), "M1.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt record: %v", err)
	}

	err := e.Create(testMemory("M1", model.TypeDecision, now))
	if !errors.Is(err, ErrIO) {
		t.Errorf("expected ErrIO, got %v", err)
	}
	dup := filepath.Join(e.Root(), string(model.TypeDecision), "M1.json")
	if _, err := os.Stat(dup); !os.IsNotExist(err) {
		t.Error("expected no record written under second type")
	}
}

func TestEntityRead_NotFound(t *testing.T) {
	e := newTestEntities(t)
	_, err := e.Read("missing", model.TypeConcept)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestEntityFind_AnyType(t *testing.T) {
	e := newTestEntities(t)
	now := time.Now().UTC()
	e.Create(testMemory("M1", model.TypePattern, now))

	got, err := e.Find("M1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Type != model.TypePattern {
		t.Errorf("expected pattern, got %s", got.Type)
	}

	if _, err := e.Find("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestEntityDelete(t *testing.T) {
	e := newTestEntities(t)
	now := time.Now().UTC()
	e.Create(testMemory("M1", model.TypeConcept, now))

	if err := e.Delete("M1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := e.Find("M1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := e.Delete("M1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestEntityWrite_NoPartialRecord(t *testing.T) {
	e := newTestEntities(t)
	now := time.Now().UTC()
	m := testMemory("M1", model.TypeConcept, now)
	if err := e.Write(m); err != nil {
		t.Fatalf("write: %v", err)
	}

	// No temp files left behind in the type directory.
	entries, _ := os.ReadDir(filepath.Join(e.Root(), string(model.TypeConcept)))
	for _, entry := range entries {
		if entry.Name() != "M1.json" {
			t.Errorf("unexpected file %s", entry.Name())
		}
	}
}

func TestEntityList_OrderAndFilters(t *testing.T) {
	e := newTestEntities(t)
	base := time.Now().UTC()

	a := testMemory("A", model.TypeConcept, base.Add(1*time.Second))
	a.Tags = []string{"security"}
	b := testMemory("B", model.TypeDecision, base.Add(2*time.Second))
	b.Tags = []string{"security", "auth"}
	c := testMemory("C", model.TypeDecision, base.Add(3*time.Second))

	for _, m := range []*model.Memory{a, b, c} {
		if err := e.Create(m); err != nil {
			t.Fatalf("create %s: %v", m.ID, err)
		}
	}

	all, err := e.List(ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3, got %d", len(all))
	}
	// Most recently updated first.
	if all[0].ID != "C" || all[1].ID != "B" || all[2].ID != "A" {
		t.Errorf("wrong order: %s %s %s", all[0].ID, all[1].ID, all[2].ID)
	}

	decisions, _ := e.List(ListFilter{Types: []model.Type{model.TypeDecision}})
	if len(decisions) != 2 {
		t.Errorf("expected 2 decisions, got %d", len(decisions))
	}

	tagged, _ := e.List(ListFilter{Tags: []string{"security"}})
	if len(tagged) != 2 {
		t.Errorf("expected 2 with security tag, got %d", len(tagged))
	}

	both, _ := e.List(ListFilter{Types: []model.Type{model.TypeDecision}, Tags: []string{"security"}})
	if len(both) != 1 || both[0].ID != "B" {
		t.Errorf("expected only B, got %v", both)
	}

	limited, _ := e.List(ListFilter{Limit: 2})
	if len(limited) != 2 {
		t.Errorf("expected 2 limited, got %d", len(limited))
	}
}
