// Package mapping converts the output of the KEGG "link" and "conv"
// operations into mappings from entry IDs of one database to sets of related
// entry IDs in another, with helpers to reverse, combine, and persist them.
package mapping

import (
	"sort"
	"strings"
)

// Set is an unordered set of entry IDs.
type Set map[string]struct{}

// NewSet creates a set from the given entry IDs.
func NewSet(entryIDs ...string) Set {
	s := make(Set, len(entryIDs))
	for _, id := range entryIDs {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether the set holds entryID.
func (s Set) Contains(entryID string) bool {
	_, ok := s[entryID]
	return ok
}

// Sorted returns the set's entry IDs in sorted order.
func (s Set) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Mapping maps entry IDs of one database to sets of related entry IDs.
type Mapping map[string]Set

// Add merges entryIDs into the set mapped from key.
func (m Mapping) Add(key string, entryIDs ...string) {
	set, ok := m[key]
	if !ok {
		set = make(Set, len(entryIDs))
		m[key] = set
	}
	for _, id := range entryIDs {
		set[id] = struct{}{}
	}
}

// Keys returns the mapping's keys in sorted order.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Parse converts a "link" or "conv" response body into a mapping: one
// tab-separated source-to-target pair per line. An empty body yields an
// empty mapping.
func Parse(body string) Mapping {
	m := Mapping{}
	body = strings.TrimSpace(body)
	if body == "" {
		return m
	}
	for _, line := range strings.Split(body, "\n") {
		from, to, ok := strings.Cut(strings.TrimSpace(line), "\t")
		if !ok {
			continue
		}
		m.Add(from, to)
	}
	return m
}

// Reverse turns keys into values and values into keys: every pair
// key -> value becomes value -> key.
func Reverse(m Mapping) Mapping {
	reversed := Mapping{}
	for key, values := range m {
		for value := range values {
			reversed.Add(value, key)
		}
	}
	return reversed
}

// Combine merges two mappings. A key present in both gets the union of its
// value sets.
func Combine(m1, m2 Mapping) Mapping {
	combined := Mapping{}
	for key, values := range m1 {
		combined.Add(key, values.Sorted()...)
	}
	for key, values := range m2 {
		combined.Add(key, values.Sorted()...)
	}
	return combined
}

// deduplicatePathwayKeys drops every key that is not a "path:map" entry ID.
// Mappings involving pathway often carry each entry twice under two
// prefixes.
func deduplicatePathwayKeys(m Mapping) Mapping {
	for key := range m {
		if !strings.HasPrefix(key, "path:map") {
			delete(m, key)
		}
	}
	return m
}

// processAsSource applies fn to the mapping with relevantDatabase treated as
// the source side. When the relevant database is actually the target, the
// mapping is reversed, processed, and reversed back.
func processAsSource(m Mapping, sourceDatabase, targetDatabase, relevantDatabase string, fn func(Mapping, string) Mapping) Mapping {
	doubleReverse := targetDatabase == relevantDatabase
	if doubleReverse {
		m = Reverse(m)
		targetDatabase = sourceDatabase
	}
	m = fn(m, targetDatabase)
	if doubleReverse {
		m = Reverse(m)
	}
	return m
}
