// Package catalog models the metadata index that maps section names to the
// location of their exported documents.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

var (
	// ErrNotFound is returned when a section name is absent from the index.
	ErrNotFound = errors.New("section not found in metadata index")
	// ErrEmptyIndex is returned for an index without sections.
	ErrEmptyIndex = errors.New("metadata index has no sections")
	// ErrNoLocation is returned when an entry cannot be turned into a fetchable location.
	ErrNoLocation = errors.New("section has no remote location")
)

// Entry describes one section of the catalog.
type Entry struct {
	ID           string `json:"id,omitempty"`
	Category     string `json:"category,omitempty"`
	DefaultClass string `json:"defaultClass,omitempty"`
	RemoteURL    string `json:"remoteUrl,omitempty"`
	RelativePath string `json:"relativePath,omitempty"`

	// Name and Framework come from the index keys.
	Name      string `json:"-"`
	Framework string `json:"-"`
}

// Key identifies the entry within the index.
func (e Entry) Key() string {
	parts := make([]string, 0, 3)
	if e.Framework != "" {
		parts = append(parts, e.Framework)
	}
	parts = append(parts, e.Category, e.Name)
	return strings.Join(parts, "/")
}

// Index is the metadata index. Two layouts exist: a flat
// sections[category][name] table pointing at remote URLs, and the generated
// frameworks[framework][category][name] table with relative paths.
type Index struct {
	Sections    map[string]map[string]Entry            `json:"sections,omitempty"`
	Frameworks  map[string]map[string]map[string]Entry `json:"frameworks,omitempty"`
	LastUpdated string                                 `json:"lastUpdated,omitempty"`
}

// Parse decodes a metadata index document.
func Parse(data []byte) (*Index, error) {
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("invalid metadata index: %w", err)
	}
	if len(idx.Sections) == 0 && len(idx.Frameworks) == 0 {
		return nil, ErrEmptyIndex
	}
	return &idx, nil
}

// Len counts the sections of the index.
func (idx *Index) Len() int {
	n := 0
	for _, names := range idx.Sections {
		n += len(names)
	}
	for _, categories := range idx.Frameworks {
		for _, names := range categories {
			n += len(names)
		}
	}
	return n
}

// Entries returns every section with its keys filled in. Flat sections come
// first, then frameworks; each level is sorted by key.
func (idx *Index) Entries() []Entry {
	entries := make([]Entry, 0, idx.Len())
	for _, category := range sortedKeys(idx.Sections) {
		names := idx.Sections[category]
		for _, name := range sortedKeys(names) {
			entries = append(entries, withKeys(names[name], "", category, name))
		}
	}
	for _, framework := range sortedKeys(idx.Frameworks) {
		categories := idx.Frameworks[framework]
		for _, category := range sortedKeys(categories) {
			names := categories[category]
			for _, name := range sortedKeys(names) {
				entries = append(entries, withKeys(names[name], framework, category, name))
			}
		}
	}
	return entries
}

func withKeys(e Entry, framework, category, name string) Entry {
	e.Framework = framework
	e.Name = name
	if e.Category == "" {
		e.Category = category
	}
	return e
}

// LookupError reports a section name that did not resolve.
type LookupError struct {
	Name        string
	Suggestions []string
}

func (e *LookupError) Error() string {
	msg := fmt.Sprintf("section %q not found in metadata index", e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", quoteJoin(e.Suggestions))
	}
	return msg
}

func (e *LookupError) Unwrap() error {
	return ErrNotFound
}

// MaxSuggestions bounds the "did you mean" list.
const MaxSuggestions = 3

// Lookup finds a section by its exact name. The first match in Entries order
// wins when the same name appears in several categories.
func (idx *Index) Lookup(name string) (Entry, error) {
	entries := idx.Entries()
	for _, e := range entries {
		if e.Name == name {
			return e, nil
		}
	}
	return Entry{}, &LookupError{Name: name, Suggestions: suggest(name, entries)}
}

func suggest(name string, entries []Entry) []string {
	query := strings.TrimSpace(name)
	if query == "" {
		return nil
	}
	seen := map[string]bool{}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !seen[e.Name] {
			seen[e.Name] = true
			names = append(names, e.Name)
		}
	}

	type candidate struct {
		name     string
		distance int
	}
	var candidates []candidate
	picked := map[string]bool{}

	ranks := fuzzy.RankFindFold(query, names)
	sort.Sort(ranks)
	for _, r := range ranks {
		candidates = append(candidates, candidate{name: r.Target, distance: r.Distance})
		picked[r.Target] = true
	}

	lowered := strings.ToLower(query)
	limit := len(query)/3 + 1
	for _, n := range names {
		if picked[n] {
			continue
		}
		if d := fuzzy.LevenshteinDistance(lowered, strings.ToLower(n)); d <= limit {
			candidates = append(candidates, candidate{name: n, distance: d})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].name < candidates[j].name
	})
	out := make([]string, 0, MaxSuggestions)
	for _, c := range candidates {
		if len(out) == MaxSuggestions {
			break
		}
		out = append(out, c.name)
	}
	return out
}

// ResolveURL returns the location to fetch the section document from:
// the entry's remote URL, its relative path joined onto base, or a path
// guessed from the repository's folder conventions.
func ResolveURL(e Entry, base string) (string, error) {
	if e.RemoteURL != "" {
		return e.RemoteURL, nil
	}
	rel := e.RelativePath
	if rel == "" && e.Category != "" && e.Name != "" {
		rel = GuessPath(e.Category, e.Name)
	}
	if rel == "" || base == "" {
		return "", fmt.Errorf("%w: %s", ErrNoLocation, e.Key())
	}
	return joinLocation(base, rel), nil
}

func joinLocation(base, rel string) string {
	if strings.Contains(base, "://") {
		return strings.TrimRight(base, "/") + "/" + path.Clean(strings.TrimLeft(rel, "/"))
	}
	return filepath.Join(base, filepath.FromSlash(strings.TrimLeft(rel, "/")))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func quoteJoin(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
