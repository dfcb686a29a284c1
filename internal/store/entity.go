package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ideas-net-studio/shared-memory/internal/model"
)

// EntityStore is the durable record of memories: one JSON file per memory,
// grouped in one subdirectory per type under the store root. It is the
// sole component that touches memory files on disk; everything else (index,
// relation graph, query engine) goes through it.
type EntityStore struct {
	root string
}

// NewEntityStore wraps an already-resolved absolute root directory.
func NewEntityStore(root string) *EntityStore {
	return &EntityStore{root: root}
}

// Root returns the store's root directory.
func (e *EntityStore) Root() string {
	return e.root
}

// Init creates the root and one subdirectory per memory type. Idempotent.
func (e *EntityStore) Init() error {
	for _, t := range model.Types {
		dir := filepath.Join(e.root, string(t))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create type dir %s: %v", ErrIO, dir, err)
		}
	}
	return nil
}

func (e *EntityStore) path(t model.Type, id string) string {
	return filepath.Join(e.root, string(t), id+".json")
}

// Create writes a new record. Fails with ErrConflict if the id already
// exists anywhere in the store, regardless of type.
func (e *EntityStore) Create(m *model.Memory) error {
	if _, err := e.Find(m.ID); err == nil {
		return fmt.Errorf("%w: memory %s already exists", ErrConflict, m.ID)
	} else if !errors.Is(err, ErrNotFound) {
		// An existing-but-unreadable record is not "absent"; never
		// overwrite it.
		return err
	}
	return e.write(m)
}

// Read loads the record at its type-scoped location.
func (e *EntityStore) Read(id string, t model.Type) (*model.Memory, error) {
	data, err := os.ReadFile(e.path(t, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: read memory %s: %v", ErrIO, id, err)
	}
	var m model.Memory
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: decode memory %s: %v", ErrIO, id, err)
	}
	return &m, nil
}

// Find locates a record by id alone, scanning each type directory.
func (e *EntityStore) Find(id string) (*model.Memory, error) {
	for _, t := range model.Types {
		if _, err := os.Stat(e.path(t, id)); err == nil {
			return e.Read(id, t)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Write persists the record atomically: serialize fully, write to a temp
// file in the same directory, then rename into place. A partial record is
// never observable.
func (e *EntityStore) Write(m *model.Memory) error {
	return e.write(m)
}

func (e *EntityStore) write(m *model.Memory) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode memory %s: %v", ErrIO, m.ID, err)
	}
	dir := filepath.Join(e.root, string(m.Type))
	tmp, err := os.CreateTemp(dir, "."+m.ID+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", ErrIO, m.ID, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write memory %s: %v", ErrIO, m.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close temp for %s: %v", ErrIO, m.ID, err)
	}
	if err := os.Rename(tmpName, e.path(m.Type, m.ID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: rename memory %s: %v", ErrIO, m.ID, err)
	}
	return nil
}

// Delete removes the record file. Cascading cleanup of relations and index
// postings is the facade's job.
func (e *EntityStore) Delete(id string) error {
	m, err := e.Find(id)
	if err != nil {
		return err
	}
	if err := os.Remove(e.path(m.Type, id)); err != nil {
		return fmt.Errorf("%w: delete memory %s: %v", ErrIO, id, err)
	}
	return nil
}

// All loads every record in the store.
func (e *EntityStore) All() ([]*model.Memory, error) {
	var out []*model.Memory
	for _, t := range model.Types {
		dir := filepath.Join(e.root, string(t))
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("%w: read type dir %s: %v", ErrIO, dir, err)
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
				continue
			}
			m, err := e.Read(strings.TrimSuffix(name, ".json"), t)
			if err != nil {
				return nil, err
			}
			out = append(out, m)
		}
	}
	return out, nil
}

// ListFilter narrows List results. Empty fields match everything.
type ListFilter struct {
	Types []model.Type
	Tags  []string
	Limit int
}

// List returns memories matching the filter, most recently updated first.
// Type and tag filters intersect; Limit <= 0 means no truncation.
func (e *EntityStore) List(f ListFilter) ([]*model.Memory, error) {
	all, err := e.All()
	if err != nil {
		return nil, err
	}
	var out []*model.Memory
	for _, m := range all {
		if !matchesFilter(m, f.Types, f.Tags) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// matchesFilter applies type and tag filters as an intersection: the memory
// must be one of the given types and carry every given tag.
func matchesFilter(m *model.Memory, types []model.Type, tags []string) bool {
	if len(types) > 0 {
		ok := false
		for _, t := range types {
			if m.Type == t {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, tag := range tags {
		if !m.HasTag(tag) {
			return false
		}
	}
	return true
}
