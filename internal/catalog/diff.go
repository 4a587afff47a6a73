package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// ChangeType represents the type of change detected
type ChangeType string

const (
	ChangeTypeAdded   ChangeType = "added"
	ChangeTypeRemoved ChangeType = "removed"
	ChangeTypeChanged ChangeType = "changed"
)

// Change is one section that differs between two index versions.
type Change struct {
	Type    ChangeType `json:"type"`
	Key     string     `json:"key"`
	Details string     `json:"details,omitempty"`
}

// Diff represents the differences between two index versions.
type Diff struct {
	Changes []Change `json:"changes"`
	Added   int      `json:"added"`
	Removed int      `json:"removed"`
	Changed int      `json:"changed"`
}

// HasChanges returns true if there are any changes detected
func (d *Diff) HasChanges() bool {
	return len(d.Changes) > 0
}

// FormatSummary returns a concise summary of changes
func (d *Diff) FormatSummary() string {
	if !d.HasChanges() {
		return "No changes"
	}

	parts := []string{}
	if d.Added > 0 {
		parts = append(parts, fmt.Sprintf("%d added", d.Added))
	}
	if d.Changed > 0 {
		parts = append(parts, fmt.Sprintf("%d changed", d.Changed))
	}
	if d.Removed > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", d.Removed))
	}
	return strings.Join(parts, ", ")
}

// FormatVerbose lists every change, grouped by type.
func (d *Diff) FormatVerbose() string {
	if !d.HasChanges() {
		return "No changes detected"
	}

	groups := []struct {
		title  string
		typ    ChangeType
		marker string
	}{
		{"Added", ChangeTypeAdded, "+"},
		{"Changed", ChangeTypeChanged, "~"},
		{"Removed", ChangeTypeRemoved, "-"},
	}

	var b strings.Builder
	for _, g := range groups {
		var lines []string
		for _, c := range d.Changes {
			if c.Type != g.typ {
				continue
			}
			line := fmt.Sprintf("  %s %s", g.marker, c.Key)
			if c.Details != "" {
				line += ": " + c.Details
			}
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("%s (%d):\n", g.title, len(lines)))
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

// ComputeDiff compares two index versions. A nil old index reports every
// section as added.
func ComputeDiff(oldIdx, newIdx *Index) *Diff {
	diff := &Diff{Changes: []Change{}}

	newEntries := map[string]Entry{}
	if newIdx != nil {
		for _, e := range newIdx.Entries() {
			newEntries[e.Key()] = e
		}
	}
	oldEntries := map[string]Entry{}
	if oldIdx != nil {
		for _, e := range oldIdx.Entries() {
			oldEntries[e.Key()] = e
		}
	}

	for key, newEntry := range newEntries {
		oldEntry, existed := oldEntries[key]
		if !existed {
			diff.Changes = append(diff.Changes, Change{Type: ChangeTypeAdded, Key: key})
			diff.Added++
			continue
		}
		if details := entryChanges(oldEntry, newEntry); len(details) > 0 {
			diff.Changes = append(diff.Changes, Change{Type: ChangeTypeChanged, Key: key, Details: strings.Join(details, ", ")})
			diff.Changed++
		}
	}
	for key := range oldEntries {
		if _, exists := newEntries[key]; !exists {
			diff.Changes = append(diff.Changes, Change{Type: ChangeTypeRemoved, Key: key})
			diff.Removed++
		}
	}

	sort.Slice(diff.Changes, func(i, j int) bool {
		return diff.Changes[i].Key < diff.Changes[j].Key
	})
	return diff
}

func entryChanges(old, new Entry) []string {
	changes := []string{}
	if old.DefaultClass != new.DefaultClass {
		changes = append(changes, fmt.Sprintf("defaultClass: %q → %q", old.DefaultClass, new.DefaultClass))
	}
	if old.RemoteURL != new.RemoteURL {
		changes = append(changes, fmt.Sprintf("remoteUrl: %s → %s", old.RemoteURL, new.RemoteURL))
	}
	if old.RelativePath != new.RelativePath {
		changes = append(changes, fmt.Sprintf("relativePath: %s → %s", old.RelativePath, new.RelativePath))
	}
	if old.ID != new.ID {
		changes = append(changes, fmt.Sprintf("id: %s → %s", old.ID, new.ID))
	}
	return changes
}
