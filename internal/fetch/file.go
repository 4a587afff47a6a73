package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// FileSource reads documents from disk. Relative paths resolve against Root.
type FileSource struct {
	Root string
}

// Fetch implements Source.
func (s FileSource) Fetch(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.resolve(location)
	if err != nil {
		return nil, err
	}
	// #nosec G304 -- reading user-selected catalog and section files is the purpose of this source
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &StatusError{Location: location, StatusCode: 404}
		}
		return nil, fmt.Errorf("reading %s: %w", location, err)
	}
	if len(data) > MaxDocumentSize {
		return nil, fmt.Errorf("reading %s: document exceeds %d bytes", location, MaxDocumentSize)
	}
	return data, nil
}

func (s FileSource) resolve(location string) (string, error) {
	path := location
	if strings.HasPrefix(location, "file://") {
		u, err := url.Parse(location)
		if err != nil {
			return "", fmt.Errorf("invalid file location %q: %w", location, err)
		}
		path = u.Path
	}
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrUnsupportedLocation)
	}
	path = filepath.FromSlash(path)
	if !filepath.IsAbs(path) && s.Root != "" {
		path = filepath.Join(s.Root, path)
	}
	return path, nil
}
