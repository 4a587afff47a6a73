// Package session holds the state of one export: the sections picked by the
// user, their target classes and their order, plus the issues raised while
// resolving and generating them.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/brixies/brix-cli/internal/bricks"
	"github.com/brixies/brix-cli/internal/catalog"
	"github.com/brixies/brix-cli/internal/fetch"
	"github.com/brixies/brix-cli/internal/ident"
	"github.com/brixies/brix-cli/internal/rename"
)

var (
	// ErrNoSections is returned by Generate when no section survived intake.
	ErrNoSections = errors.New("no sections in session")
	// ErrNothingGenerated is returned when every section failed generation.
	ErrNothingGenerated = errors.New("no section could be generated")
	// ErrIndexOutOfRange is returned for a position outside the session.
	ErrIndexOutOfRange = errors.New("section index out of range")
	// ErrUnknownSection is returned when a name is not part of the session.
	ErrUnknownSection = errors.New("section not in session")
)

// Phase scopes an issue to the step that raised it.
type Phase string

const (
	PhaseIntake     Phase = "intake"
	PhaseGeneration Phase = "generation"
)

// Kind classifies an issue.
type Kind string

const (
	KindValidation Kind = "validation"
	KindLookup     Kind = "lookup"
	KindFetch      Kind = "fetch"
	KindStructural Kind = "structural"
)

// Issue is a per item problem. Issues are collected, never returned as errors.
type Issue struct {
	Phase   Phase  `json:"phase"`
	Kind    Kind   `json:"kind"`
	Section string `json:"section,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Section == "" {
		return fmt.Sprintf("%s: %s", i.Kind, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", i.Kind, i.Section, i.Message)
}

// Section is one resolved entry of the session.
type Section struct {
	Name          string        `json:"name"`
	Entry         catalog.Entry `json:"entry"`
	Location      string        `json:"location"`
	OriginalClass string        `json:"originalClass"`
	CustomClass   string        `json:"customClass,omitempty"`
	Fetched       bool          `json:"fetched"`

	doc *bricks.Document
}

// TargetClass is the class the section will be renamed to.
func (s Section) TargetClass() string {
	if c := strings.TrimSpace(s.CustomClass); c != "" {
		return c
	}
	return strings.TrimSpace(s.OriginalClass)
}

// Catalog resolves section names.
type Catalog interface {
	Lookup(name string) (catalog.Entry, error)
}

// Options configures a Session.
type Options struct {
	Catalog    Catalog
	Fetcher    *fetch.Fetcher
	BaseURL    string
	IDMode     ident.Mode
	Provenance bricks.Provenance
	Logger     *logrus.Logger
}

// Session is not safe for concurrent use.
type Session struct {
	opts     Options
	sections []*Section
	issues   []Issue
	log      *logrus.Entry
}

// New creates an empty session.
func New(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	if opts.Fetcher == nil {
		opts.Fetcher = fetch.New(fetch.FileSource{}, fetch.WithLogger(logger))
	}
	return &Session{opts: opts, log: logger.WithField("component", "session")}
}

// Intake replaces the session content with the sections named in input.
// Only an unparsable or empty input is returned as an error; unknown names
// and failed fetches are recorded as intake issues.
func (s *Session) Intake(ctx context.Context, input string) error {
	s.sections = nil
	s.dropIssues(PhaseIntake)
	s.dropIssues(PhaseGeneration)

	names, err := ParseNames(input)
	if err != nil {
		s.record(PhaseIntake, KindValidation, "", err.Error())
		return err
	}

	var reqs []fetch.Request
	var pending []*Section
	for _, name := range names {
		entry, err := s.opts.Catalog.Lookup(name)
		if err != nil {
			s.record(PhaseIntake, KindLookup, name, err.Error())
			continue
		}
		sec := &Section{Name: name, Entry: entry, OriginalClass: entry.DefaultClass}
		location, err := catalog.ResolveURL(entry, s.opts.BaseURL)
		if err != nil {
			s.record(PhaseIntake, KindLookup, name, err.Error())
			continue
		}
		sec.Location = location
		pending = append(pending, sec)
		reqs = append(reqs, fetch.Request{Key: name, Location: location})
	}

	for i, res := range s.opts.Fetcher.FetchAll(ctx, reqs) {
		sec := pending[i]
		s.sections = append(s.sections, sec)
		if res.Err != nil {
			s.record(PhaseIntake, KindFetch, sec.Name, res.Err.Error())
			continue
		}
		s.attach(PhaseIntake, sec, res)
	}

	s.log.WithFields(logrus.Fields{
		"requested": len(names),
		"resolved":  len(s.sections),
		"issues":    len(s.issues),
	}).Info("intake finished")
	return nil
}

// attach decodes a fetched document onto sec and takes its root class as
// the original class. Reference warnings are left to the renamer, which
// reports them once per generation.
func (s *Session) attach(phase Phase, sec *Section, res fetch.Result) bool {
	doc, warnings, err := s.opts.Fetcher.Decode(res.Location, res.Data)
	for _, w := range warnings {
		s.log.WithFields(logrus.Fields{"phase": phase, "section": sec.Name}).Debug(w)
	}
	if err != nil {
		s.record(phase, KindFetch, sec.Name, err.Error())
		return false
	}
	sec.doc = doc
	sec.Fetched = true
	if root := rename.DetectRoot(doc); root != "" {
		sec.OriginalClass = root
	}
	return true
}

// Sections returns a copy of the current sections in output order.
func (s *Session) Sections() []Section {
	out := make([]Section, len(s.sections))
	for i, sec := range s.sections {
		out[i] = *sec
		out[i].doc = nil
	}
	return out
}

// Len returns the number of sections.
func (s *Session) Len() int {
	return len(s.sections)
}

// Issues returns the issues of phase, or all of them when phase is empty.
func (s *Session) Issues(phase Phase) []Issue {
	var out []Issue
	for _, issue := range s.issues {
		if phase == "" || issue.Phase == phase {
			out = append(out, issue)
		}
	}
	return out
}

// SetClass sets the custom class of the section at index i. An empty class
// restores the original class.
func (s *Session) SetClass(i int, class string) error {
	if i < 0 || i >= len(s.sections) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	class = strings.TrimSpace(class)
	if class != "" {
		if err := rename.ValidatePrefix(class); err != nil {
			return err
		}
	}
	s.sections[i].CustomClass = class
	return nil
}

// SetClassByName sets the custom class of every section called name.
func (s *Session) SetClassByName(name, class string) error {
	found := false
	for i, sec := range s.sections {
		if !strings.EqualFold(sec.Name, name) {
			continue
		}
		if err := s.SetClass(i, class); err != nil {
			return err
		}
		found = true
	}
	if !found {
		return fmt.Errorf("%w: %q", ErrUnknownSection, name)
	}
	return nil
}

// Move relocates the section at from to position to, shifting the others.
func (s *Session) Move(from, to int) error {
	n := len(s.sections)
	if from < 0 || from >= n {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, from)
	}
	if to < 0 || to >= n {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, to)
	}
	if from == to {
		return nil
	}
	sec := s.sections[from]
	rest := append(s.sections[:from:from], s.sections[from+1:]...)
	s.sections = append(rest[:to:to], append([]*Section{sec}, rest[to:]...)...)
	return nil
}

// Output is the result of Generate.
type Output struct {
	ExportID string             `json:"exportId"`
	Document *bricks.Document   `json:"document"`
	Sections []GeneratedSection `json:"sections"`
	Warnings []rename.Warning   `json:"warnings,omitempty"`
	Issues   []Issue            `json:"issues,omitempty"`
}

// GeneratedSection summarises one renamed section.
type GeneratedSection struct {
	Name    string `json:"name"`
	Root    string `json:"root"`
	Class   string `json:"class"`
	Classes int    `json:"classes"`
	Element int    `json:"elements"`
}

// Generate renames every section to its target class and merges the
// results in session order. Sections that cannot be generated are skipped
// with a generation issue; a merge collision is returned as an error.
func (s *Session) Generate(ctx context.Context) (*Output, error) {
	s.dropIssues(PhaseGeneration)
	if len(s.sections) == 0 {
		return nil, ErrNoSections
	}

	s.refetch(ctx)

	alloc := ident.NewAllocator(ident.New(s.opts.IDMode))
	out := &Output{}
	var docs []*bricks.Document
	for _, sec := range s.sections {
		if sec.doc == nil {
			continue
		}
		target := sec.TargetClass()
		if target == "" {
			s.record(PhaseGeneration, KindLookup, sec.Name, "empty target prefix")
			continue
		}
		res, err := rename.Rename(sec.doc, rename.Options{
			Prefix:    target,
			Allocator: alloc,
			Label:     sec.Name,
		})
		if err != nil {
			s.record(PhaseGeneration, KindValidation, sec.Name, err.Error())
			continue
		}
		for _, w := range res.Warnings {
			s.record(PhaseGeneration, KindStructural, sec.Name, w.Message)
		}
		out.Warnings = append(out.Warnings, res.Warnings...)
		out.Sections = append(out.Sections, GeneratedSection{
			Name:    sec.Name,
			Root:    res.Root,
			Class:   target,
			Classes: len(res.Document.GlobalClasses),
			Element: len(res.Document.Content),
		})
		docs = append(docs, res.Document)
	}
	out.Issues = s.Issues(PhaseGeneration)

	if len(docs) == 0 {
		return out, ErrNothingGenerated
	}
	merged, err := bricks.Merge(docs, s.opts.Provenance)
	if err != nil {
		return out, err
	}
	out.Document = merged
	out.ExportID = uuid.NewString()

	s.log.WithFields(logrus.Fields{
		"export":   out.ExportID,
		"sections": len(docs),
		"warnings": len(out.Warnings),
	}).Info("export generated")
	return out, nil
}

func (s *Session) refetch(ctx context.Context) {
	var reqs []fetch.Request
	var missing []*Section
	for _, sec := range s.sections {
		if sec.doc == nil {
			missing = append(missing, sec)
			reqs = append(reqs, fetch.Request{Key: sec.Name, Location: sec.Location})
		}
	}
	if len(reqs) == 0 {
		return
	}
	for i, res := range s.opts.Fetcher.FetchAll(ctx, reqs) {
		if res.Err != nil {
			s.record(PhaseGeneration, KindFetch, missing[i].Name, res.Err.Error())
			continue
		}
		// A class chosen by the user survives the late fetch.
		s.attach(PhaseGeneration, missing[i], res)
	}
}

func (s *Session) record(phase Phase, kind Kind, section, message string) {
	s.issues = append(s.issues, Issue{Phase: phase, Kind: kind, Section: section, Message: message})
	s.log.WithFields(logrus.Fields{
		"phase":   phase,
		"kind":    kind,
		"section": section,
	}).Warn(message)
}

func (s *Session) dropIssues(phase Phase) {
	kept := s.issues[:0]
	for _, issue := range s.issues {
		if issue.Phase != phase {
			kept = append(kept, issue)
		}
	}
	s.issues = kept
}
