// Package model defines the core memory data types.
package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Type classifies a memory. The set is closed; anything else is rejected
// at the facade boundary.
type Type string

const (
	TypeConcept   Type = "concept"
	TypeDecision  Type = "decision"
	TypePattern   Type = "pattern"
	TypeLearning  Type = "learning"
	TypeReference Type = "reference"
)

// Types lists every valid memory type, in the order their directories are
// created under a store root.
var Types = []Type{TypeConcept, TypeDecision, TypePattern, TypeLearning, TypeReference}

// ParseType validates a raw type string.
func ParseType(s string) (Type, error) {
	t := Type(s)
	for _, v := range Types {
		if t == v {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown memory type %q", s)
}

// Importance bounds. Out-of-range values are rejected, not clamped.
const (
	MinImportance     = 1
	MaxImportance     = 10
	DefaultImportance = 5
)

// ValidImportance reports whether n is within bounds.
func ValidImportance(n int) bool {
	return n >= MinImportance && n <= MaxImportance
}

// Memory is one persisted knowledge record.
type Memory struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Tags       []string  `json:"tags,omitempty"`
	Related    []string  `json:"related,omitempty"`
	Importance int       `json:"importance"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NormalizeTags lower-cases, trims, deduplicates, and sorts tags.
// Empty entries are dropped.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// HasTag reports whether the memory carries the given normalized tag.
func (m *Memory) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasRelated reports whether id is in the memory's related set.
func (m *Memory) HasRelated(id string) bool {
	for _, r := range m.Related {
		if r == id {
			return true
		}
	}
	return false
}

// AddRelated inserts id into the related set, keeping it sorted.
// Adding an existing id is a no-op.
func (m *Memory) AddRelated(id string) {
	if m.HasRelated(id) {
		return
	}
	m.Related = append(m.Related, id)
	sort.Strings(m.Related)
}

// RemoveRelated drops id from the related set if present.
func (m *Memory) RemoveRelated(id string) {
	for i, r := range m.Related {
		if r == id {
			m.Related = append(m.Related[:i], m.Related[i+1:]...)
			return
		}
	}
}

// Clone returns a deep copy so callers can't mutate store-held state.
func (m *Memory) Clone() *Memory {
	c := *m
	c.Tags = append([]string(nil), m.Tags...)
	c.Related = append([]string(nil), m.Related...)
	return &c
}
