// Package token normalizes text into search terms.
//
// The rule here defines search semantics for the whole store: the index
// and the query engine must tokenize identically or lookups silently miss.
// A term is a maximal run of ASCII letters and digits, lower-cased.
package token

import "strings"

func isAlnum(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= '0' && r <= '9'
}

// Split lower-cases text and splits it on runs of non-alphanumeric
// characters. Empty tokens are dropped; duplicates are kept.
func Split(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isAlnum(r)
	})
}

// Unique tokenizes text and deduplicates the result, preserving first
// occurrence order.
func Unique(text string) []string {
	return dedupe(Split(text))
}

// FromFields derives the full term set for a memory's indexable fields
// (title, content, tags). Each field is deduplicated on its own, then the
// union is deduplicated again.
func FromFields(fields ...string) []string {
	var all []string
	for _, f := range fields {
		all = append(all, dedupe(Split(f))...)
	}
	return dedupe(all)
}

func dedupe(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	var out []string
	for _, t := range tokens {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
