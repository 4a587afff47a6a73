// Package schema validates section documents against the embedded export
// schema and the reference rules of the page builder.
package schema

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"

	"github.com/brixies/brix-cli/internal/bricks"
)

//go:embed section.schema.json
var sectionSchema []byte

var (
	compileOnce sync.Once
	compiled    *gojsonschema.Schema
	compileErr  error
)

func loadSchema() (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled, compileErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(sectionSchema))
	})
	return compiled, compileErr
}

// Result is the outcome for a single document.
type Result struct {
	// Errors are schema violations and duplicate ids; the document is unusable.
	Errors []string `json:"errors,omitempty"`
	// Warnings are broken references the renamer tolerates.
	Warnings []string `json:"warnings,omitempty"`
}

// Valid reports whether no errors were found.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Summary aggregates validation results.
type Summary struct {
	Total      int               `json:"total"`
	Valid      int               `json:"valid"`
	Invalid    int               `json:"invalid"`
	ErrorCount map[string]int    `json:"error_counts"`
	Results    map[string]Result `json:"results"`
}

// Paths returns the validated paths in sorted order.
func (s *Summary) Paths() []string {
	paths := make([]string, 0, len(s.Results))
	for p := range s.Results {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Validator checks section documents.
type Validator struct {
	log *logrus.Entry
}

// New creates a validator logging through logger.
func New(logger *logrus.Logger) *Validator {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Validator{log: logger.WithField("component", "schema")}
}

// Validate checks raw document bytes. The error is reserved for input that
// is not JSON at all.
func Validate(data []byte) (Result, error) {
	return New(nil).Validate(data)
}

// Validate checks raw document bytes.
func (v *Validator) Validate(data []byte) (Result, error) {
	s, err := loadSchema()
	if err != nil {
		return Result{}, fmt.Errorf("section schema: %w", err)
	}
	outcome, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return Result{}, fmt.Errorf("document is not valid JSON: %w", err)
	}

	res := Result{}
	if !outcome.Valid() {
		for _, desc := range outcome.Errors() {
			res.Errors = append(res.Errors, desc.String())
		}
		return res, nil
	}

	doc, err := bricks.Parse(data)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res, nil
	}
	res.Errors = append(res.Errors, duplicateIDs(doc)...)
	for _, ref := range doc.DanglingClassRefs() {
		res.Warnings = append(res.Warnings, fmt.Sprintf("element %s references undefined global class %s", ref.Element, ref.Target))
	}
	for _, ref := range doc.MissingElementRefs() {
		res.Warnings = append(res.Warnings, fmt.Sprintf("element %s %s reference %s is not part of the document", ref.Element, ref.Field, ref.Target))
	}
	return res, nil
}

// ValidateFiles validates every file and aggregates the results. Unreadable
// files count as invalid.
func (v *Validator) ValidateFiles(paths []string) *Summary {
	summary := &Summary{
		ErrorCount: map[string]int{},
		Results:    map[string]Result{},
	}
	for _, path := range paths {
		res := v.validateFile(path)
		summary.Results[path] = res
		if res.Valid() {
			summary.Valid++
		} else {
			summary.Invalid++
			summary.ErrorCount[path] = len(res.Errors)
		}
	}
	summary.Total = len(summary.Results)

	if summary.Invalid > 0 {
		v.log.WithField("invalid", summary.Invalid).Warn("Validation found issues")
	} else {
		v.log.WithField("total", summary.Total).Info("Validation passed")
	}
	return summary
}

func (v *Validator) validateFile(path string) Result {
	// #nosec G304 -- paths are provided on the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Errors: []string{fmt.Sprintf("failed to read file: %v", err)}}
	}
	res, err := v.Validate(data)
	if err != nil {
		return Result{Errors: []string{err.Error()}}
	}
	return res
}

func duplicateIDs(doc *bricks.Document) []string {
	var errs []string
	seen := map[string]bool{}
	for _, el := range doc.Content {
		if seen[el.ID] {
			errs = append(errs, fmt.Sprintf("duplicate element id %s", el.ID))
		}
		seen[el.ID] = true
	}
	seenClass := map[string]bool{}
	seenName := map[string]bool{}
	for _, cls := range doc.GlobalClasses {
		if seenClass[cls.ID] {
			errs = append(errs, fmt.Sprintf("duplicate global class id %s", cls.ID))
		}
		seenClass[cls.ID] = true
		if cls.Name != "" && seenName[cls.Name] {
			errs = append(errs, fmt.Sprintf("duplicate global class name %s", cls.Name))
		}
		seenName[cls.Name] = true
	}
	return errs
}
