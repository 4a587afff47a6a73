package rename

import (
	"github.com/brixies/brix-cli/internal/bricks"
)

// Mapping holds the old → new tables of one rename operation.
type Mapping struct {
	ClassNames map[string]string `json:"classNames"`
	ClassIDs   map[string]string `json:"classIds"`
	ElementIDs map[string]string `json:"elementIds"`
}

// NewMapping returns a mapping with empty tables.
func NewMapping() Mapping {
	return Mapping{
		ClassNames: map[string]string{},
		ClassIDs:   map[string]string{},
		ElementIDs: map[string]string{},
	}
}

func lookup(table map[string]string, old string) string {
	if v, ok := table[old]; ok && v != "" {
		return v
	}
	return old
}

// Remap returns a copy of doc with every id reference translated through m.
// Unmapped references are kept as they are; nothing is ever dropped.
func Remap(doc *bricks.Document, m Mapping) (*bricks.Document, error) {
	out := doc.Clone()
	err := bricks.Walk(out, bricks.VisitorFuncs{
		Element: func(_ int, el *bricks.Element) error {
			el.ID = lookup(m.ElementIDs, el.ID)
			if parent, ok := el.ParentID(); ok {
				if mapped, found := m.ElementIDs[parent]; found {
					el.SetParentID(mapped)
				}
			}
			for i, child := range el.Children {
				el.Children[i] = lookup(m.ElementIDs, child)
			}
			if el.Settings.Has(bricks.KeyGlobalClasses) {
				refs := el.Settings.GlobalClasses()
				if refs == nil {
					return nil
				}
				for i, id := range refs {
					refs[i] = lookup(m.ClassIDs, id)
				}
				return el.Settings.SetGlobalClasses(refs)
			}
			return nil
		},
		Class: func(_ int, cls *bricks.ClassDefinition) error {
			cls.ID = lookup(m.ClassIDs, cls.ID)
			cls.Name = lookup(m.ClassNames, cls.Name)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
