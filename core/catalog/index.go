package catalog

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// DefaultSearchLimit applies when Search is called without a positive limit.
const DefaultSearchLimit = 10

// minSubstringLen is the shortest query eligible for substring matching.
const minSubstringLen = 3

// Index is an immutable parsed catalog.
type Index struct {
	entries    []Entry
	exact      map[string]int
	normalized map[string]int
	// keys holds normalized keys ordered by length, then lexically.
	keys      []string
	FetchedAt time.Time
}

// ParseIndex decodes a catalog document and builds its lookup maps.
// The first entry wins when two names collide.
func ParseIndex(data []byte, fetchedAt time.Time) (*Index, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	idx := &Index{
		entries:    make([]Entry, 0, len(entries)),
		exact:      make(map[string]int, len(entries)),
		normalized: make(map[string]int, len(entries)),
		FetchedAt:  fetchedAt,
	}

	for _, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			continue
		}
		pos := len(idx.entries)
		idx.entries = append(idx.entries, e)

		if _, ok := idx.exact[exactKey(e.Name)]; !ok {
			idx.exact[exactKey(e.Name)] = pos
		}
		norm := Normalize(e.Name)
		if norm == "" {
			continue
		}
		if _, ok := idx.normalized[norm]; !ok {
			idx.normalized[norm] = pos
			idx.keys = append(idx.keys, norm)
		}
	}

	sort.Slice(idx.keys, func(i, j int) bool {
		if len(idx.keys[i]) != len(idx.keys[j]) {
			return len(idx.keys[i]) < len(idx.keys[j])
		}
		return idx.keys[i] < idx.keys[j]
	})

	return idx, nil
}

// Len returns the number of entries in the index.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Lookup tries exact, then normalized, then substring matching.
func (idx *Index) Lookup(name string) (Result, bool) {
	pos, kind, ok := idx.lookup(name)
	if !ok {
		return Result{}, false
	}
	return idx.result(pos, kind), true
}

func (idx *Index) lookup(name string) (int, MatchKind, bool) {
	if idx == nil || strings.TrimSpace(name) == "" {
		return 0, "", false
	}

	if pos, ok := idx.exact[exactKey(name)]; ok {
		return pos, MatchExact, true
	}

	norm := Normalize(name)
	if norm == "" {
		return 0, "", false
	}
	if pos, ok := idx.normalized[norm]; ok {
		return pos, MatchNormalized, true
	}

	if len(norm) < minSubstringLen {
		return 0, "", false
	}
	for _, key := range idx.keys {
		if strings.Contains(key, norm) {
			return idx.normalized[key], MatchSubstring, true
		}
	}
	// Longest key first so the most specific entry inside a title wins.
	for i := len(idx.keys) - 1; i >= 0; i-- {
		key := idx.keys[i]
		if len(key) >= minSubstringLen && strings.Contains(norm, key) {
			return idx.normalized[key], MatchSubstring, true
		}
	}
	return 0, "", false
}

// Search returns up to limit entries whose normalized key contains the
// normalized query, an exact or normalized hit first.
func (idx *Index) Search(query string, limit int) []Result {
	if idx == nil {
		return nil
	}
	norm := Normalize(query)
	if norm == "" {
		return nil
	}

	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	results := make([]Result, 0, limit)
	seen := make(map[int]struct{})

	if pos, kind, ok := idx.lookup(query); ok && kind != MatchSubstring {
		results = append(results, idx.result(pos, kind))
		seen[pos] = struct{}{}
	}

	for _, key := range idx.keys {
		if len(results) >= limit {
			break
		}
		if !strings.Contains(key, norm) {
			continue
		}
		pos := idx.normalized[key]
		if _, dup := seen[pos]; dup {
			continue
		}
		seen[pos] = struct{}{}
		results = append(results, idx.result(pos, MatchSubstring))
	}
	return results
}

func (idx *Index) result(pos int, kind MatchKind) Result {
	e := idx.entries[pos]
	return Result{Entry: e, Key: Normalize(e.Name), Match: kind}
}
