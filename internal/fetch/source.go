// Package fetch retrieves catalog and section documents from HTTP servers,
// GitHub repositories and the local file system.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// MaxDocumentSize bounds how much of a response body is read.
const MaxDocumentSize = 32 << 20

// ErrUnsupportedLocation is returned when no source handles a location.
var ErrUnsupportedLocation = errors.New("unsupported location")

// Source loads the raw bytes behind a location.
type Source interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, location string) ([]byte, error)

// Fetch implements Source.
func (f SourceFunc) Fetch(ctx context.Context, location string) ([]byte, error) {
	return f(ctx, location)
}

// StatusError reports a non-success response.
type StatusError struct {
	Location   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetching %s: HTTP %d", e.Location, e.StatusCode)
}

// NotFound reports whether the server answered 404.
func (e *StatusError) NotFound() bool {
	return e.StatusCode == 404
}

// Router dispatches locations to a source by scheme: http and https go to
// HTTP, github to GitHub, file and plain paths to File.
type Router struct {
	HTTP   Source
	GitHub Source
	File   Source
}

// Fetch implements Source.
func (r *Router) Fetch(ctx context.Context, location string) ([]byte, error) {
	src := r.pick(location)
	if src == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLocation, location)
	}
	return src.Fetch(ctx, location)
}

func (r *Router) pick(location string) Source {
	switch scheme(location) {
	case "http", "https":
		return r.HTTP
	case GitHubScheme:
		return r.GitHub
	case "", "file":
		return r.File
	default:
		return nil
	}
}

func scheme(location string) string {
	i := strings.Index(location, "://")
	if i <= 0 {
		return ""
	}
	u, err := url.Parse(location)
	if err != nil {
		return strings.ToLower(location[:i])
	}
	return strings.ToLower(u.Scheme)
}
