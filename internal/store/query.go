package store

import (
	"context"
	"errors"
	"sort"

	"github.com/ideas-net-studio/shared-memory/internal/model"
	"github.com/ideas-net-studio/shared-memory/internal/token"
)

// DefaultSearchLimit bounds search results when the caller gives none.
const DefaultSearchLimit = 20

// SearchParams holds arguments for a text search.
type SearchParams struct {
	Query string
	Types []model.Type
	Tags  []string
	Limit int
}

// Search tokenizes the query with the same rule as indexing, scores each
// candidate by the number of matching query tokens (a token matches any
// index term it prefixes), and breaks ties by most recent update. Type
// and tag filters intersect with the text match. An empty result is a
// normal outcome, not an error.
func (s *Service) Search(ctx context.Context, p SearchParams) ([]*model.Memory, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	// Stored tags are normalized, so the filter must be too.
	tags := model.NormalizeTags(p.Tags)
	tokens := token.Unique(p.Query)
	if len(tokens) == 0 {
		return []*model.Memory{}, nil
	}

	scores := make(map[string]int)
	for _, t := range tokens {
		ids, err := s.index.LookupPrefix(ctx, t)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			scores[id]++
		}
	}

	var results []*model.Memory
	for id := range scores {
		m, err := s.entities.Find(id)
		if err != nil {
			// The entity store is the source of truth; a stale posting
			// is skipped, not surfaced.
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		if !matchesFilter(m, p.Types, tags) {
			continue
		}
		results = append(results, m)
	}
	sort.Slice(results, func(i, j int) bool {
		si, sj := scores[results[i].ID], scores[results[j].ID]
		if si != sj {
			return si > sj
		}
		return results[i].UpdatedAt.After(results[j].UpdatedAt)
	})
	if len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []*model.Memory{}
	}
	return results, nil
}

// ListParams holds arguments for a filtered listing.
type ListParams struct {
	Types []model.Type
	Tags  []string
	Limit int
}

// List bypasses the index entirely: pure recency order from the entity
// store, same filters as Search, no relevance ranking. No filter returns
// everything.
func (s *Service) List(p ListParams) ([]*model.Memory, error) {
	out, err := s.entities.List(ListFilter{Types: p.Types, Tags: model.NormalizeTags(p.Tags), Limit: p.Limit})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*model.Memory{}
	}
	return out, nil
}
