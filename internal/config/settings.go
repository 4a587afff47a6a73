package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/brixies/brix-cli/internal/bricks"
	"github.com/brixies/brix-cli/internal/ident"
)

// Defaults used when the settings file leaves a value empty.
const (
	DefaultCatalogURL  = "https://raw.githubusercontent.com/ZMDx4/brixies-sections-data-cf/main/metadata-index.json"
	DefaultBaseURL     = "https://raw.githubusercontent.com/ZMDx4/brixies-sections-data-cf/main/"
	DefaultTimeout     = 15 * time.Second
	DefaultConcurrency = 4
	DefaultSource      = "bricksCopiedElements"
	DefaultSourceURL   = "https://brixies.co"
	DefaultVersion     = "1.12.3"
)

// TokenEnv is read when the settings leave github_token empty.
const TokenEnv = "BRIX_GITHUB_TOKEN"

// SettingsFileNames are probed in the working directory when no --config is given.
var SettingsFileNames = []string{"brix.yaml", "brix.yml", "brix.toml"}

// Settings is the on-disk configuration of the CLI.
type Settings struct {
	// Catalog is the location of the metadata index: an http(s) URL, a
	// github://owner/repo/path URL or a local file.
	Catalog string `yaml:"catalog" toml:"catalog"`
	// BaseURL resolves catalog entries that only carry a relative path.
	BaseURL     string `yaml:"base_url" toml:"base_url"`
	Timeout     string `yaml:"timeout" toml:"timeout"`
	Concurrency int    `yaml:"concurrency" toml:"concurrency"`
	// IDs selects how new element and class ids are produced: random or hash.
	IDs         string            `yaml:"ids" toml:"ids"`
	GitHubToken string            `yaml:"github_token" toml:"github_token"`
	Provenance  bricks.Provenance `yaml:"provenance" toml:"provenance"`
}

// DefaultSettings returns the settings used without a config file.
func DefaultSettings() *Settings {
	s := &Settings{}
	s.applyDefaults()
	return s
}

func (s *Settings) applyDefaults() {
	if s.Catalog == "" {
		s.Catalog = DefaultCatalogURL
	}
	if s.BaseURL == "" {
		s.BaseURL = DefaultBaseURL
	}
	if s.Timeout == "" {
		s.Timeout = DefaultTimeout.String()
	}
	if s.Concurrency <= 0 {
		s.Concurrency = DefaultConcurrency
	}
	if s.IDs == "" {
		s.IDs = string(ident.ModeRandom)
	}
	if s.GitHubToken == "" {
		s.GitHubToken = os.Getenv(TokenEnv)
	}
	if s.Provenance.Source == "" {
		s.Provenance.Source = DefaultSource
	}
	if s.Provenance.SourceURL == "" {
		s.Provenance.SourceURL = DefaultSourceURL
	}
	if s.Provenance.Version == "" {
		s.Provenance.Version = DefaultVersion
	}
}

// Validate checks values that cannot be defaulted.
func (s *Settings) Validate() error {
	if _, err := s.FetchTimeout(); err != nil {
		return err
	}
	if _, err := s.IDMode(); err != nil {
		return err
	}
	return nil
}

// FetchTimeout parses the per-fetch timeout.
func (s *Settings) FetchTimeout() (time.Duration, error) {
	if s.Timeout == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", s.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid timeout %q: must be positive", s.Timeout)
	}
	return d, nil
}

// IDMode parses the configured id mode.
func (s *Settings) IDMode() (ident.Mode, error) {
	return ident.ParseMode(s.IDs)
}

// LoadSettings reads the settings file at path. An empty path probes
// SettingsFileNames in the working directory and falls back to defaults.
// The returned path is the file that was read, if any.
func LoadSettings(path string) (*Settings, string, error) {
	if path == "" {
		for _, name := range SettingsFileNames {
			if info, err := os.Stat(name); err == nil && !info.IsDir() {
				path = name
				break
			}
		}
		if path == "" {
			return DefaultSettings(), "", nil
		}
	}

	// #nosec G304 -- settings path provided via command flag
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("config file %s not found: %w", path, err)
		}
		return nil, "", fmt.Errorf("failed to read config file: %w", err)
	}

	s, err := ParseSettings(data, filepath.Ext(path))
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return s, path, nil
}

// ParseSettings decodes settings in the format named by ext (.yaml, .yml or .toml).
func ParseSettings(data []byte, ext string) (*Settings, error) {
	var s Settings
	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.Unmarshal(data, &s); err != nil {
			return nil, err
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
