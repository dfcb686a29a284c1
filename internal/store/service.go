// Package store implements the memory storage engine: a file-backed
// entity store, a SQLite posting-list search index, a symmetric relation
// graph, and the Service facade that keeps the three consistent.
package store

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/oklog/ulid/v2"

	"github.com/ideas-net-studio/shared-memory/internal/model"
)

// Service is the only entry point external callers use. Every mutation
// goes entity store first, then index and relation graph, so the three
// never disagree from a caller's point of view. Operations are
// synchronous and expect a single logical writer; serializing calls is
// the surrounding request loop's job.
type Service struct {
	entities *EntityStore
	index    *SearchIndex
	graph    *Graph
	entropy  *rand.Rand
}

// Open initializes a service over the given root directory. The path must
// already be resolved and containment-checked by the caller. Idempotent:
// opening an existing store leaves its contents alone.
func Open(root string) (*Service, error) {
	entities := NewEntityStore(root)
	if err := entities.Init(); err != nil {
		return nil, err
	}
	index, err := OpenIndex(root)
	if err != nil {
		return nil, err
	}
	return &Service{
		entities: entities,
		index:    index,
		graph:    NewGraph(entities),
		entropy:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Close releases the index database handle.
func (s *Service) Close() error {
	return s.index.Close()
}

// Build initializes a fresh store at an arbitrary directory. Fails with
// ErrConflict if the directory is non-empty and overwrite is not set;
// with overwrite, prior contents are cleared first.
func Build(directory string, overwrite bool) error {
	entries, err := os.ReadDir(directory)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: read dir %s: %v", ErrIO, directory, err)
	}
	if len(entries) > 0 {
		if !overwrite {
			return fmt.Errorf("%w: directory %s is not empty", ErrConflict, directory)
		}
		for _, entry := range entries {
			if err := os.RemoveAll(filepath.Join(directory, entry.Name())); err != nil {
				return fmt.Errorf("%w: clear %s: %v", ErrIO, directory, err)
			}
		}
	}
	svc, err := Open(directory)
	if err != nil {
		return err
	}
	return svc.Close()
}

func (s *Service) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// CreateParams holds arguments for creating a memory. A nil Importance
// takes the default; a supplied value is validated as-is.
type CreateParams struct {
	Title      string
	Type       string
	Content    string
	Tags       []string
	Related    []string
	Importance *int
}

// Create validates and stores a new memory, indexes it, and applies any
// initial relations.
func (s *Service) Create(ctx context.Context, p CreateParams) (*model.Memory, error) {
	t, err := model.ParseType(p.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if strings.TrimSpace(p.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidArgument)
	}
	if strings.TrimSpace(p.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidArgument)
	}
	importance := model.DefaultImportance
	if p.Importance != nil {
		importance = *p.Importance
	}
	if !model.ValidImportance(importance) {
		return nil, fmt.Errorf("%w: importance %d outside [%d, %d]",
			ErrInvalidArgument, importance, model.MinImportance, model.MaxImportance)
	}
	// Every initial relation target must exist before anything is written.
	for _, id := range p.Related {
		if _, err := s.entities.Find(id); err != nil {
			return nil, fmt.Errorf("related target: %w", err)
		}
	}

	now := time.Now().UTC()
	m := &model.Memory{
		ID:         s.newID(),
		Type:       t,
		Title:      p.Title,
		Content:    p.Content,
		Tags:       model.NormalizeTags(p.Tags),
		Importance: importance,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.entities.Create(m); err != nil {
		return nil, err
	}
	if err := s.index.Add(ctx, m); err != nil {
		return nil, err
	}
	if len(p.Related) > 0 {
		if m, err = s.graph.Relate(m.ID, p.Related, now); err != nil {
			return nil, err
		}
	}
	log.Debug("memory created", "id", m.ID, "type", m.Type)
	return m, nil
}

// UpdateParams holds the partial field set for an update. Nil pointers
// leave the field untouched.
type UpdateParams struct {
	Title      *string
	Content    *string
	Tags       *[]string
	Related    *[]string
	Importance *int
}

// Update merges the supplied fields into an existing memory, refreshes
// its updated timestamp, and re-indexes if any text field changed.
// Supplying Related replaces the whole relation set, adding and removing
// edges on both sides as needed.
func (s *Service) Update(ctx context.Context, id string, p UpdateParams) (*model.Memory, error) {
	m, err := s.entities.Find(id)
	if err != nil {
		return nil, err
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalidArgument)
	}
	if p.Content != nil && strings.TrimSpace(*p.Content) == "" {
		return nil, fmt.Errorf("%w: content cannot be empty", ErrInvalidArgument)
	}
	if p.Importance != nil && !model.ValidImportance(*p.Importance) {
		return nil, fmt.Errorf("%w: importance %d outside [%d, %d]",
			ErrInvalidArgument, *p.Importance, model.MinImportance, model.MaxImportance)
	}
	var addRel, removeRel []string
	if p.Related != nil {
		next := make(map[string]bool, len(*p.Related))
		for _, rid := range *p.Related {
			if rid == id {
				return nil, fmt.Errorf("%w: memory %s cannot relate to itself", ErrInvalidArgument, id)
			}
			if _, err := s.entities.Find(rid); err != nil {
				return nil, fmt.Errorf("related target: %w", err)
			}
			next[rid] = true
			if !m.HasRelated(rid) {
				addRel = append(addRel, rid)
			}
		}
		for _, rid := range m.Related {
			if !next[rid] {
				removeRel = append(removeRel, rid)
			}
		}
	}

	now := time.Now().UTC()
	reindex := false
	if p.Title != nil {
		m.Title = *p.Title
		reindex = true
	}
	if p.Content != nil {
		m.Content = *p.Content
		reindex = true
	}
	if p.Tags != nil {
		m.Tags = model.NormalizeTags(*p.Tags)
		reindex = true
	}
	if p.Importance != nil {
		m.Importance = *p.Importance
	}
	m.UpdatedAt = now
	if err := s.entities.Write(m); err != nil {
		return nil, err
	}
	if reindex {
		if err := s.index.Update(ctx, m); err != nil {
			return nil, err
		}
	}
	if len(removeRel) > 0 {
		if m, err = s.graph.Unrelate(id, removeRel, now); err != nil {
			return nil, err
		}
	}
	if len(addRel) > 0 {
		if m, err = s.graph.Relate(id, addRel, now); err != nil {
			return nil, err
		}
	}
	log.Debug("memory updated", "id", id)
	return m, nil
}

// Delete removes a memory, its index postings, and every edge pointing at
// it, in one logical operation.
func (s *Service) Delete(ctx context.Context, id string) error {
	m, err := s.entities.Find(id)
	if err != nil {
		return err
	}
	if err := s.graph.Cascade(m, time.Now().UTC()); err != nil {
		return err
	}
	if err := s.entities.Delete(id); err != nil {
		return err
	}
	if err := s.index.Remove(ctx, id); err != nil {
		return err
	}
	log.Debug("memory deleted", "id", id)
	return nil
}

// Get reads a memory at its type-scoped location.
func (s *Service) Get(id string, memType string) (*model.Memory, error) {
	t, err := model.ParseType(memType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return s.entities.Read(id, t)
}

// AddTags unions the given tags into the memory's tag set and re-indexes.
// Adding an already-present tag is a no-op.
func (s *Service) AddTags(ctx context.Context, id string, tags []string) (*model.Memory, error) {
	m, err := s.entities.Find(id)
	if err != nil {
		return nil, err
	}
	m.Tags = model.NormalizeTags(append(append([]string(nil), m.Tags...), tags...))
	m.UpdatedAt = time.Now().UTC()
	if err := s.entities.Write(m); err != nil {
		return nil, err
	}
	if err := s.index.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// RemoveTags drops the given tags from the memory's tag set and
// re-indexes. Removing an absent tag is a no-op.
func (s *Service) RemoveTags(ctx context.Context, id string, tags []string) (*model.Memory, error) {
	m, err := s.entities.Find(id)
	if err != nil {
		return nil, err
	}
	drop := make(map[string]bool, len(tags))
	for _, t := range model.NormalizeTags(tags) {
		drop[t] = true
	}
	var kept []string
	for _, t := range m.Tags {
		if !drop[t] {
			kept = append(kept, t)
		}
	}
	m.Tags = kept
	m.UpdatedAt = time.Now().UTC()
	if err := s.entities.Write(m); err != nil {
		return nil, err
	}
	if err := s.index.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Relate adds symmetric edges from source to every target.
func (s *Service) Relate(sourceID string, targetIDs []string) (*model.Memory, error) {
	return s.graph.Relate(sourceID, targetIDs, time.Now().UTC())
}

// Unrelate removes symmetric edges from source to every target.
func (s *Service) Unrelate(sourceID string, targetIDs []string) (*model.Memory, error) {
	return s.graph.Unrelate(sourceID, targetIDs, time.Now().UTC())
}

// RebuildIndex discards the search index and recomputes it from the
// entity store. Synchronous; runtime is proportional to store size.
func (s *Service) RebuildIndex(ctx context.Context) error {
	all, err := s.entities.All()
	if err != nil {
		return err
	}
	if err := s.index.Rebuild(ctx, all); err != nil {
		return err
	}
	log.Debug("index rebuilt", "memories", len(all))
	return nil
}
