package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/brixies/brix-cli/internal/catalog"
	"github.com/brixies/brix-cli/internal/config"
)

// HeroBannerJSON is a two element section whose root class is hero-04.
const HeroBannerJSON = `{
  "content": [
    {"id": "hro001", "name": "section", "parent": 0, "children": ["hro002"], "settings": {
      "_cssGlobalClasses": ["hcl001"],
      "cssCode": "#brxe-hro001 .hero-04__title { letter-spacing: 0 }"
    }},
    {"id": "hro002", "name": "heading", "parent": "hro001", "children": [], "settings": {
      "_cssGlobalClasses": ["hcl002"],
      "text": "Welcome"
    }}
  ],
  "globalClasses": [
    {"id": "hcl001", "name": "hero-04", "settings": {"_cssCustom": ".hero-04 { min-height: 60vh }"}},
    {"id": "hcl002", "name": "hero-04__title"}
  ],
  "globalElements": []
}`

// FooterSimpleJSON is a one element section whose root class is footer-02.
const FooterSimpleJSON = `{
  "content": [
    {"id": "ftr001", "name": "section", "parent": 0, "children": [], "settings": {
      "_cssGlobalClasses": ["fcl001", "fcl002"]
    }}
  ],
  "globalClasses": [
    {"id": "fcl001", "name": "footer-02"},
    {"id": "fcl002", "name": "card-footer-02"}
  ],
  "globalElements": []
}`

// DividerJSON is a section without global classes.
const DividerJSON = `{
  "content": [
    {"id": "dvd001", "name": "divider", "parent": 0, "children": [], "settings": {}}
  ],
  "globalClasses": [],
  "globalElements": []
}`

// IndexJSON lists the fixture sections. "Pricing Table" points at a file
// that does not exist.
const IndexJSON = `{
  "frameworks": {
    "brixies": {
      "hero": {
        "Hero Banner": {"id": "hero-banner", "category": "hero", "defaultClass": "brixies-hero-banner", "relativePath": "/brixies/hero/hero-banner.json"}
      },
      "footer": {
        "Footer Simple": {"id": "footer-simple", "category": "footer", "defaultClass": "brixies-footer-simple", "relativePath": "/brixies/footer/footer-simple.json"}
      },
      "divider": {
        "Blank Divider": {"id": "blank-divider", "category": "divider", "relativePath": "/brixies/divider/blank-divider.json"}
      },
      "pricing": {
        "Pricing Table": {"id": "pricing-table", "category": "pricing", "defaultClass": "brixies-pricing-table", "relativePath": "/brixies/pricing/pricing-table.json"}
      }
    }
  },
  "lastUpdated": "2024-05-01T00:00:00Z"
}`

// Fixture is a temporary catalog directory with section documents and a
// settings file pointing at it.
type Fixture struct {
	Root string
}

// NewFixture writes the fixture catalog into a fresh temp directory.
func NewFixture(t *testing.T) *Fixture {
	t.Helper()
	f := &Fixture{Root: t.TempDir()}

	files := map[string]string{
		"metadata-index.json":                IndexJSON,
		"brixies/hero/hero-banner.json":      HeroBannerJSON,
		"brixies/footer/footer-simple.json":  FooterSimpleJSON,
		"brixies/divider/blank-divider.json": DividerJSON,
	}
	for rel, body := range files {
		f.WriteFile(t, filepath.Join("catalog", filepath.FromSlash(rel)), []byte(body))
	}

	settings := fmt.Sprintf("catalog: %q\nbase_url: %q\nids: hash\ntimeout: 5s\n",
		f.CatalogPath(), f.BaseDir())
	f.WriteFile(t, "brix.yaml", []byte(settings))
	return f
}

// Options returns cli options initialised from the fixture settings file.
func (f *Fixture) Options(t *testing.T, jsonOut, verbose, dry bool) *config.Options {
	t.Helper()
	opts := config.New()
	if err := opts.Init(f.ConfigPath(), jsonOut, verbose, dry, ""); err != nil {
		t.Fatalf("failed to init options: %v", err)
	}
	return opts
}

// Index parses the fixture metadata index.
func (f *Fixture) Index(t *testing.T) *catalog.Index {
	t.Helper()
	idx, err := catalog.Parse([]byte(IndexJSON))
	if err != nil {
		t.Fatalf("failed to parse fixture index: %v", err)
	}
	return idx
}

// Serve exposes the catalog directory over HTTP until the test ends.
func (f *Fixture) Serve(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.FileServer(http.Dir(f.BaseDir())))
	t.Cleanup(srv.Close)
	return srv
}

// WriteFile writes a file relative to the fixture root.
func (f *Fixture) WriteFile(t *testing.T, relative string, data []byte) {
	t.Helper()
	path := f.Path(relative)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

// Path resolves a path relative to the fixture root.
func (f *Fixture) Path(parts ...string) string {
	return filepath.Join(append([]string{f.Root}, parts...)...)
}

// BaseDir is the directory catalog relative paths resolve against.
func (f *Fixture) BaseDir() string {
	return f.Path("catalog")
}

// CatalogPath is the fixture metadata index file.
func (f *Fixture) CatalogPath() string {
	return f.Path("catalog", "metadata-index.json")
}

// ConfigPath is the fixture settings file.
func (f *Fixture) ConfigPath() string {
	return f.Path("brix.yaml")
}
