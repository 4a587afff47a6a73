package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v60/github"
)

// GitHubScheme selects the GitHub contents API:
// github://owner/repo/path/to/file.json?ref=branch
const GitHubScheme = "github"

// GitHubLocation is a parsed github:// location.
type GitHubLocation struct {
	Owner string
	Repo  string
	Path  string
	Ref   string
}

// ParseGitHubLocation splits a github:// location.
func ParseGitHubLocation(location string) (GitHubLocation, error) {
	u, err := url.Parse(location)
	if err != nil {
		return GitHubLocation{}, fmt.Errorf("invalid github location %q: %w", location, err)
	}
	if u.Scheme != GitHubScheme {
		return GitHubLocation{}, fmt.Errorf("invalid github location %q: scheme must be %s://", location, GitHubScheme)
	}
	parts := strings.SplitN(strings.Trim(u.Path, "/"), "/", 2)
	if u.Host == "" || len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return GitHubLocation{}, fmt.Errorf("invalid github location %q: expected github://owner/repo/path", location)
	}
	return GitHubLocation{
		Owner: u.Host,
		Repo:  parts[0],
		Path:  parts[1],
		Ref:   u.Query().Get("ref"),
	}, nil
}

// GitHubSource reads files through the GitHub contents API.
type GitHubSource struct {
	client *github.Client
}

// NewGitHubSource returns a source using httpClient (nil for the default).
// A non-empty token authenticates requests.
func NewGitHubSource(httpClient *http.Client, token string) *GitHubSource {
	client := github.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &GitHubSource{client: client}
}

// SetBaseURL points the client at another API endpoint, e.g. GitHub
// Enterprise or a test server.
func (s *GitHubSource) SetBaseURL(base string) error {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("invalid github api url %q: %w", base, err)
	}
	s.client.BaseURL = u
	return nil
}

// Fetch implements Source.
func (s *GitHubSource) Fetch(ctx context.Context, location string) ([]byte, error) {
	loc, err := ParseGitHubLocation(location)
	if err != nil {
		return nil, err
	}
	opts := &github.RepositoryContentGetOptions{Ref: loc.Ref}

	file, dir, _, err := s.client.Repositories.GetContents(ctx, loc.Owner, loc.Repo, loc.Path, opts)
	if err != nil {
		return nil, s.wrap(location, err)
	}
	if file == nil {
		return nil, fmt.Errorf("fetching %s: path is a directory with %d entries", location, len(dir))
	}

	// Files over 1MB come back without inline content.
	if file.GetEncoding() == "none" || (file.Content == nil && file.GetSize() > 0) {
		return s.download(ctx, location, loc, opts)
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", location, err)
	}
	return []byte(content), nil
}

func (s *GitHubSource) download(ctx context.Context, location string, loc GitHubLocation, opts *github.RepositoryContentGetOptions) ([]byte, error) {
	rc, _, err := s.client.Repositories.DownloadContents(ctx, loc.Owner, loc.Repo, loc.Path, opts)
	if err != nil {
		return nil, s.wrap(location, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", location, err)
	}
	if len(data) > MaxDocumentSize {
		return nil, fmt.Errorf("reading %s: document exceeds %d bytes", location, MaxDocumentSize)
	}
	return data, nil
}

func (s *GitHubSource) wrap(location string, err error) error {
	var apiErr *github.ErrorResponse
	if errors.As(err, &apiErr) && apiErr.Response != nil {
		return &StatusError{Location: location, StatusCode: apiErr.Response.StatusCode}
	}
	return fmt.Errorf("fetching %s: %w", location, err)
}

// Close releases idle connections of the underlying client.
func (s *GitHubSource) Close() {
	s.client.Client().CloseIdleConnections()
}
