package bricks

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNoSections is returned when there is nothing to merge.
var ErrNoSections = errors.New("no sections to merge")

// Collision records one id that appears more than once after a merge.
type Collision struct {
	Kind     string
	ID       string
	Sections []int
}

// CollisionError reports duplicate ids in a merged document.
type CollisionError struct {
	Collisions []Collision
}

func (e *CollisionError) Error() string {
	parts := make([]string, 0, len(e.Collisions))
	for _, c := range e.Collisions {
		idx := make([]string, len(c.Sections))
		for i, s := range c.Sections {
			idx[i] = fmt.Sprintf("%d", s+1)
		}
		parts = append(parts, fmt.Sprintf("%s id %q in sections %s", c.Kind, c.ID, strings.Join(idx, ",")))
	}
	return fmt.Sprintf("merged export has %d duplicate id(s): %s", len(e.Collisions), strings.Join(parts, "; "))
}

// Merge combines independently renamed sections. A single section is
// returned as is; several are concatenated in input order and stamped with
// the given provenance.
func Merge(sections []*Document, prov Provenance) (*Document, error) {
	switch len(sections) {
	case 0:
		return nil, ErrNoSections
	case 1:
		return sections[0], nil
	}

	merged := &Document{
		Content:           []Element{},
		GlobalClasses:     []ClassDefinition{},
		GlobalElements:    []json.RawMessage{},
		Provenance:        prov,
		hasContent:        true,
		hasGlobalClasses:  true,
		hasGlobalElements: true,
	}
	for _, doc := range sections {
		src := doc.Clone()
		merged.Content = append(merged.Content, src.Content...)
		merged.GlobalClasses = append(merged.GlobalClasses, src.GlobalClasses...)
		merged.GlobalElements = append(merged.GlobalElements, src.GlobalElements...)
	}

	if err := checkUnique(sections); err != nil {
		return nil, err
	}
	return merged, nil
}

func checkUnique(sections []*Document) error {
	elements := map[string][]int{}
	classes := map[string][]int{}
	for i, doc := range sections {
		for id := range doc.ElementIDs() {
			elements[id] = append(elements[id], i)
		}
		for id := range doc.ClassIDs() {
			classes[id] = append(classes[id], i)
		}
	}

	var collisions []Collision
	collect := func(kind string, seen map[string][]int) {
		for id, owners := range seen {
			if len(owners) > 1 {
				collisions = append(collisions, Collision{Kind: kind, ID: id, Sections: owners})
			}
		}
	}
	collect("element", elements)
	collect("class", classes)
	if len(collisions) == 0 {
		return nil
	}
	sort.Slice(collisions, func(i, j int) bool {
		if collisions[i].Kind != collisions[j].Kind {
			return collisions[i].Kind < collisions[j].Kind
		}
		return collisions[i].ID < collisions[j].ID
	})
	return &CollisionError{Collisions: collisions}
}
