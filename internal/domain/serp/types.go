// Package serp defines the normalized search-results model shared by the
// analysis pipeline and the pluggable SERP providers.
package serp

import (
	"sort"
	"strings"
	"time"
)

// Query describes one SERP lookup. Fields are concrete values; callers fill
// defaults before handing the query to a client.
type Query struct {
	Keyword      string `json:"keyword"`
	LocationCode int    `json:"location_code"` // Provider location code (2840 = United States)
	LanguageCode string `json:"language_code"` // ISO 639-1 language code
	Device       string `json:"device"`        // "desktop" or "mobile"
	MaxResults   int    `json:"max_results"`   // Organic rows to keep
	Offline      bool   `json:"offline,omitempty"`
}

// Entry is one organic result row.
type Entry struct {
	Position int    `json:"position"` // 1-based rank on the page
	Title    string `json:"title"`
	Snippet  string `json:"snippet"`
	URL      string `json:"url"`
}

// Response is one query's normalized result set. Entries are ordered by
// ascending position with unique positions; the set may be empty.
type Response struct {
	Query         string    `json:"query"`
	Location      string    `json:"location"`
	Language      string    `json:"language"`
	Entries       []Entry   `json:"entries"`
	PeopleAlsoAsk []string  `json:"people_also_ask,omitempty"`
	Live          bool      `json:"live"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// NormalizeEntries enforces the Response entry invariants: rows with an empty
// title or non-positive position are dropped, duplicate positions keep the
// first occurrence, and the result is sorted by ascending position.
func NormalizeEntries(entries []Entry) []Entry {
	normalized := make([]Entry, 0, len(entries))
	seen := make(map[int]struct{}, len(entries))

	for _, entry := range entries {
		if entry.Position <= 0 || strings.TrimSpace(entry.Title) == "" {
			continue
		}
		if _, dup := seen[entry.Position]; dup {
			continue
		}
		seen[entry.Position] = struct{}{}
		normalized = append(normalized, entry)
	}

	sort.Slice(normalized, func(i, j int) bool {
		return normalized[i].Position < normalized[j].Position
	})

	return normalized
}
