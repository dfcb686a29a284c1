package store

import (
	"github.com/ideas-net-studio/shared-memory/internal/model"
)

// Stats holds store statistics.
type Stats struct {
	Root           string      `json:"root"`
	TotalMemories  int         `json:"total_memories"`
	DistinctTags   int         `json:"distinct_tags"`
	TotalRelations int         `json:"total_relations"`
	IndexSizeBytes int64       `json:"index_size_bytes"`
	Types          []TypeStats `json:"types"`
}

// TypeStats holds per-type counts.
type TypeStats struct {
	Type  model.Type `json:"type"`
	Count int        `json:"count"`
}

// Stats returns store statistics. Relations are counted as edges, so a
// symmetric pair counts once.
func (s *Service) Stats() (*Stats, error) {
	all, err := s.entities.All()
	if err != nil {
		return nil, err
	}

	st := &Stats{
		Root:           s.entities.Root(),
		TotalMemories:  len(all),
		IndexSizeBytes: s.index.SizeBytes(),
	}

	byType := make(map[model.Type]int)
	tags := make(map[string]bool)
	edges := 0
	for _, m := range all {
		byType[m.Type]++
		for _, t := range m.Tags {
			tags[t] = true
		}
		edges += len(m.Related)
	}
	st.DistinctTags = len(tags)
	st.TotalRelations = edges / 2

	for _, t := range model.Types {
		if byType[t] > 0 {
			st.Types = append(st.Types, TypeStats{Type: t, Count: byType[t]})
		}
	}
	return st, nil
}
