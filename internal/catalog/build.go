package catalog

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brixies/brix-cli/internal/bricks"
	"github.com/brixies/brix-cli/internal/util"
)

// Skipped records a file the builder could not index.
type Skipped struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Builder generates a frameworks-layout index from a directory tree of
// <framework>/<category>/<section>.json files.
type Builder struct {
	Root string
	// PathPrefix is prepended to every relativePath, e.g. "/sections".
	PathPrefix string
	Now        func() time.Time

	log *logrus.Entry
}

// NewBuilder constructs a builder for root.
func NewBuilder(root string, logger *logrus.Logger) *Builder {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Builder{
		Root: root,
		Now:  time.Now,
		log:  logger.WithField("component", "catalog"),
	}
}

// Build walks the tree and returns the index plus any skipped files.
func (b *Builder) Build() (*Index, []Skipped, error) {
	frameworks, err := subdirs(b.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read catalog root: %w", err)
	}

	idx := &Index{Frameworks: map[string]map[string]map[string]Entry{}}
	var skipped []Skipped

	for _, framework := range frameworks {
		fwDir := filepath.Join(b.Root, framework)
		categories, err := subdirs(fwDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read framework %s: %w", framework, err)
		}
		idx.Frameworks[framework] = map[string]map[string]Entry{}
		for _, category := range categories {
			catDir := filepath.Join(fwDir, category)
			files, err := jsonFiles(catDir)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to read category %s/%s: %w", framework, category, err)
			}
			sections := map[string]Entry{}
			for _, file := range files {
				name := strings.TrimSuffix(file, filepath.Ext(file))
				entry, err := b.entry(framework, category, file)
				if err != nil {
					rel := filepath.ToSlash(filepath.Join(framework, category, file))
					b.log.WithError(err).WithField("path", rel).Warn("skipping section")
					skipped = append(skipped, Skipped{Path: rel, Reason: err.Error()})
					continue
				}
				sections[name] = entry
			}
			idx.Frameworks[framework][category] = sections
			b.log.WithFields(logrus.Fields{"framework": framework, "category": category, "sections": len(sections)}).Debug("indexed category")
		}
	}

	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	idx.LastUpdated = now().UTC().Format(time.RFC3339)
	return idx, skipped, nil
}

func (b *Builder) entry(framework, category, file string) (Entry, error) {
	// #nosec G304 -- path is built from a directory listing under the catalog root
	data, err := os.ReadFile(filepath.Join(b.Root, framework, category, file))
	if err != nil {
		return Entry{}, err
	}
	doc, err := bricks.Parse(data)
	if err != nil {
		return Entry{}, err
	}
	name := strings.TrimSuffix(file, filepath.Ext(file))
	return Entry{
		ID:           name,
		Category:     category,
		DefaultClass: DefaultClass(doc, name),
		RelativePath: path.Join("/", b.PathPrefix, framework, category, file),
	}, nil
}

// DefaultClass is the first global class name of doc, or brixies-<slug>
// when the section defines no classes.
func DefaultClass(doc *bricks.Document, name string) string {
	if doc != nil && len(doc.GlobalClasses) > 0 && doc.GlobalClasses[0].Name != "" {
		return doc.GlobalClasses[0].Name
	}
	return "brixies-" + util.Slugify(name)
}

func subdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

func jsonFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}
