package rename

import (
	"fmt"
	"strings"

	"github.com/brixies/brix-cli/internal/bricks"
	"github.com/brixies/brix-cli/internal/ident"
)

// Options configures one rename operation.
type Options struct {
	// Prefix replaces the section root class. Required.
	Prefix string
	// Root is the section's original root class; detected from the first
	// global class when empty.
	Root string
	// Allocator hands out the new class and element ids. Sharing one
	// allocator between sections keeps merged output collision free.
	Allocator *ident.Allocator
	// Label names the section in warnings.
	Label string
}

// WarningKind classifies a non-fatal finding.
type WarningKind string

const (
	WarnPatched          WarningKind = "custom_code_patched"
	WarnResidual         WarningKind = "ambiguous_reference"
	WarnHexLikeID        WarningKind = "hex_like_id"
	WarnDanglingClass    WarningKind = "dangling_class_reference"
	WarnMissingReference WarningKind = "missing_element_reference"
)

// Warning is a structural finding attached to a rename result.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Section string      `json:"section,omitempty"`
	Element string      `json:"element,omitempty"`
	Field   string      `json:"field,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	if w.Section == "" {
		return w.Message
	}
	return fmt.Sprintf("section %q: %s", w.Section, w.Message)
}

// Result is the outcome of Rename.
type Result struct {
	Document *bricks.Document
	Root     string
	Mapping  Mapping
	Warnings []Warning
}

// Rename re-prefixes a section document. The input is never modified.
func Rename(doc *bricks.Document, opts Options) (*Result, error) {
	if err := ValidatePrefix(opts.Prefix); err != nil {
		return nil, err
	}
	root := opts.Root
	if root == "" {
		root = DetectRoot(doc)
	}
	alloc := opts.Allocator
	if alloc == nil {
		alloc = ident.NewAllocator(ident.NewRandom())
	}

	res := &Result{Root: root, Mapping: NewMapping()}
	res.Warnings = append(res.Warnings, integrityWarnings(doc, opts.Label)...)

	// Old ids stay reserved so a new id can never alias an unmapped reference.
	for id := range doc.ElementIDs() {
		alloc.Reserve(id)
	}
	for id := range doc.ClassIDs() {
		alloc.Reserve(id)
	}

	for _, cls := range doc.GlobalClasses {
		newName, err := RewriteWithin(cls.Name, root, opts.Prefix)
		if err != nil {
			return nil, err
		}
		if cls.Name != "" && newName != cls.Name {
			res.Mapping.ClassNames[cls.Name] = newName
		}
		if cls.ID == "" {
			continue
		}
		if _, done := res.Mapping.ClassIDs[cls.ID]; done {
			continue
		}
		newID, err := alloc.Next(newName)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", cls.Name, err)
		}
		res.Mapping.ClassIDs[cls.ID] = newID
	}

	for _, el := range doc.Content {
		if el.ID == "" {
			continue
		}
		if _, done := res.Mapping.ElementIDs[el.ID]; done {
			continue
		}
		newID, err := alloc.Next(el.ID)
		if err != nil {
			return nil, fmt.Errorf("element %s: %w", el.ID, err)
		}
		res.Mapping.ElementIDs[el.ID] = newID
	}

	out, err := Remap(doc, res.Mapping)
	if err != nil {
		return nil, err
	}

	patcher := NewPatcher(res.Mapping.ClassNames, res.Mapping.ElementIDs)
	err = bricks.Walk(out, bricks.VisitorFuncs{
		Element: func(_ int, el *bricks.Element) error {
			for _, key := range bricks.ElementSnippetKeys {
				if err := patchSetting(&el.Settings, key, patcher, res, opts.Label, el.ID); err != nil {
					return err
				}
			}
			return nil
		},
		Class: func(_ int, cls *bricks.ClassDefinition) error {
			return patchSetting(&cls.Settings, bricks.KeyCSSCustom, patcher, res, opts.Label, "class "+cls.Name)
		},
	})
	if err != nil {
		return nil, err
	}

	res.Document = out
	return res, nil
}

func patchSetting(s *bricks.Settings, key string, p *Patcher, res *Result, label, owner string) error {
	snippet, ok := s.Snippet(key)
	if !ok || snippet == "" {
		return nil
	}
	patched, report := p.PatchWithReport(snippet)
	if report.Changed() {
		if err := s.SetSnippet(key, patched); err != nil {
			return err
		}
		res.Warnings = append(res.Warnings, Warning{
			Kind:    WarnPatched,
			Section: label,
			Element: owner,
			Field:   key,
			Message: fmt.Sprintf("custom code in %s (%s) was textually patched (%d replacement(s)); verify manually", owner, key, report.Replacements),
		})
	}
	if len(report.Residual) > 0 {
		res.Warnings = append(res.Warnings, Warning{
			Kind:    WarnResidual,
			Section: label,
			Element: owner,
			Field:   key,
			Message: fmt.Sprintf("custom code in %s (%s) still mentions %s in a context that could not be rewritten safely", owner, key, strings.Join(report.Residual, ", ")),
		})
	}
	if len(report.HexLikeIDs) > 0 {
		res.Warnings = append(res.Warnings, Warning{
			Kind:    WarnHexLikeID,
			Section: label,
			Element: owner,
			Field:   key,
			Message: fmt.Sprintf("custom code in %s (%s): rewritten id selector(s) %s also read as hex colours; check colour values", owner, key, strings.Join(report.HexLikeIDs, ", ")),
		})
	}
	return nil
}

func integrityWarnings(doc *bricks.Document, label string) []Warning {
	var warnings []Warning
	for _, ref := range doc.DanglingClassRefs() {
		warnings = append(warnings, Warning{
			Kind:    WarnDanglingClass,
			Section: label,
			Element: ref.Element,
			Field:   ref.Field,
			Message: fmt.Sprintf("element %s references global class %s which is not defined", ref.Element, ref.Target),
		})
	}
	for _, ref := range doc.MissingElementRefs() {
		warnings = append(warnings, Warning{
			Kind:    WarnMissingReference,
			Section: label,
			Element: ref.Element,
			Field:   ref.Field,
			Message: fmt.Sprintf("element %s %s reference %s is not part of the section; kept unchanged", ref.Element, ref.Field, ref.Target),
		})
	}
	return warnings
}
