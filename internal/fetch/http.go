package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/brixies/brix-cli/internal/version"
)

// HTTPSource performs plain GET requests.
type HTTPSource struct {
	client    *http.Client
	userAgent string
}

// NewHTTPSource returns a source backed by client, or a fresh client when nil.
func NewHTTPSource(client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	}
	return &HTTPSource{client: client, userAgent: "brix/" + version.Current}
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid request for %s: %w", location, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// #nosec G104 -- drain so the connection can be reused
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Location: location, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", location, err)
	}
	if len(data) > MaxDocumentSize {
		return nil, fmt.Errorf("reading %s: document exceeds %d bytes", location, MaxDocumentSize)
	}
	return data, nil
}

// Close releases idle connections.
func (s *HTTPSource) Close() {
	s.client.CloseIdleConnections()
}
