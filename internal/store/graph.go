package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/ideas-net-studio/shared-memory/internal/model"
)

// Graph maintains the symmetric "related" edges between memories. Edges
// live inside each memory's own record; the graph holds no state of its
// own and goes through the entity store for every read and write.
type Graph struct {
	entities *EntityStore
}

// NewGraph builds a graph over the given entity store.
func NewGraph(e *EntityStore) *Graph {
	return &Graph{entities: e}
}

// Relate adds a two-sided edge from source to every target. The whole
// batch is validated before anything is written: a missing source or any
// missing target rejects the call with no partial application. Relating
// an already-related pair is a no-op for that pair.
func (g *Graph) Relate(sourceID string, targetIDs []string, now time.Time) (*model.Memory, error) {
	source, err := g.entities.Find(sourceID)
	if err != nil {
		return nil, err
	}
	targets := make([]*model.Memory, 0, len(targetIDs))
	for _, id := range targetIDs {
		if id == sourceID {
			return nil, fmt.Errorf("%w: memory %s cannot relate to itself", ErrInvalidArgument, sourceID)
		}
		t, err := g.entities.Find(id)
		if err != nil {
			return nil, fmt.Errorf("relate target: %w", err)
		}
		targets = append(targets, t)
	}

	changed := false
	for _, t := range targets {
		if source.HasRelated(t.ID) {
			continue
		}
		source.AddRelated(t.ID)
		t.AddRelated(sourceID)
		t.UpdatedAt = now
		if err := g.entities.Write(t); err != nil {
			return nil, err
		}
		changed = true
	}
	if changed {
		source.UpdatedAt = now
		if err := g.entities.Write(source); err != nil {
			return nil, err
		}
	}
	return source, nil
}

// Unrelate removes the two-sided edge from source to every target. Only a
// missing source is an error; removing an edge that was never there, or
// pointing at a target that no longer exists, is a no-op.
func (g *Graph) Unrelate(sourceID string, targetIDs []string, now time.Time) (*model.Memory, error) {
	source, err := g.entities.Find(sourceID)
	if err != nil {
		return nil, err
	}
	changed := false
	for _, id := range targetIDs {
		if !source.HasRelated(id) {
			continue
		}
		source.RemoveRelated(id)
		changed = true
		t, err := g.entities.Find(id)
		if err != nil {
			// Only a vanished target is a no-op; an unreadable one
			// must surface.
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		t.RemoveRelated(sourceID)
		t.UpdatedAt = now
		if err := g.entities.Write(t); err != nil {
			return nil, err
		}
	}
	if changed {
		source.UpdatedAt = now
		if err := g.entities.Write(source); err != nil {
			return nil, err
		}
	}
	return source, nil
}

// Cascade removes every edge pointing at m. Called by the facade as part
// of the same logical operation that deletes m, so no dangling reference
// is ever observable. Edges are symmetric, so m's own related set names
// every record that must be touched.
func (g *Graph) Cascade(m *model.Memory, now time.Time) error {
	for _, id := range m.Related {
		other, err := g.entities.Find(id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return err
		}
		other.RemoveRelated(m.ID)
		other.UpdatedAt = now
		if err := g.entities.Write(other); err != nil {
			return err
		}
	}
	return nil
}
