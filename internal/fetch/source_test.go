package fetch

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/hero.json":
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "brix/"))
			_, _ = w.Write([]byte(`{"content":[]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := NewHTTPSource(nil)
	defer src.Close()

	data, err := src.Fetch(context.Background(), srv.URL+"/hero.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":[]}`, string(data))

	_, err = src.Fetch(context.Background(), srv.URL+"/missing.json")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.True(t, statusErr.NotFound())
	assert.Contains(t, err.Error(), "HTTP 404")

	_, err = src.Fetch(context.Background(), "http://%zz")
	assert.Error(t, err)
}

func githubServer(t *testing.T) *httptest.Server {
	t.Helper()
	body := `{"content":[{"id":"abc123","children":[]}]}`
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/brixies/data/contents/sections/hero.json":
			assert.Equal(t, "main", r.URL.Query().Get("ref"))
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"type":     "file",
				"name":     "hero.json",
				"path":     "sections/hero.json",
				"encoding": "base64",
				"size":     len(body),
				"content":  base64.StdEncoding.EncodeToString([]byte(body)),
			})
		case "/repos/brixies/data/contents/sections":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"type":"file","name":"hero.json","path":"sections/hero.json"}]`))
		default:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))
		}
	}))
}

func TestGitHubSource(t *testing.T) {
	srv := githubServer(t)
	defer srv.Close()

	src := NewGitHubSource(srv.Client(), "")
	require.NoError(t, src.SetBaseURL(srv.URL))
	defer src.Close()

	data, err := src.Fetch(context.Background(), "github://brixies/data/sections/hero.json?ref=main")
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":[{"id":"abc123","children":[]}]}`, string(data))

	_, err = src.Fetch(context.Background(), "github://brixies/data/sections?ref=main")
	assert.ErrorContains(t, err, "directory")

	_, err = src.Fetch(context.Background(), "github://brixies/data/missing.json")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestGitHubSourceSendsToken(t *testing.T) {
	auth := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case auth <- r.Header.Get("Authorization"):
		default:
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	src := NewGitHubSource(srv.Client(), "s3cret")
	require.NoError(t, src.SetBaseURL(srv.URL+"/"))
	defer src.Close()

	_, err := src.Fetch(context.Background(), "github://brixies/data/x.json")
	assert.Error(t, err)
	assert.Contains(t, <-auth, "s3cret")
}

func TestParseGitHubLocation(t *testing.T) {
	loc, err := ParseGitHubLocation("github://ZMDx4/brixies-sections-data-cf/metadata-index.json?ref=main")
	require.NoError(t, err)
	assert.Equal(t, GitHubLocation{Owner: "ZMDx4", Repo: "brixies-sections-data-cf", Path: "metadata-index.json", Ref: "main"}, loc)

	for _, bad := range []string{
		"https://github.com/owner/repo/file.json",
		"github://owner",
		"github://owner/repo",
		"github:///repo/file.json",
	} {
		_, err := ParseGitHubLocation(bad)
		assert.Error(t, err, bad)
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sections", "hero.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{"content":[]}`), 0o600))

	src := FileSource{Root: dir}
	ctx := context.Background()

	data, err := src.Fetch(ctx, "sections/hero.json")
	require.NoError(t, err)
	assert.Equal(t, `{"content":[]}`, string(data))

	data, err = src.Fetch(ctx, "file://"+filepath.ToSlash(path))
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	_, err = src.Fetch(ctx, "sections/missing.json")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.True(t, statusErr.NotFound())

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = src.Fetch(cancelled, "sections/hero.json")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRouter(t *testing.T) {
	tag := func(name string) Source {
		return SourceFunc(func(_ context.Context, location string) ([]byte, error) {
			return []byte(name + ":" + location), nil
		})
	}
	r := &Router{HTTP: tag("http"), GitHub: tag("github"), File: tag("file")}
	ctx := context.Background()

	cases := map[string]string{
		"https://example.test/a.json": "http",
		"HTTP://example.test/a.json":  "http",
		"github://owner/repo/a.json":  "github",
		"file:///tmp/a.json":          "file",
		"catalog/metadata-index.json": "file",
		"/abs/catalog/metadata.json":  "file",
	}
	for location, want := range cases {
		data, err := r.Fetch(ctx, location)
		require.NoError(t, err, location)
		assert.Equal(t, want+":"+location, string(data))
	}

	_, err := r.Fetch(ctx, "ftp://example.test/a.json")
	assert.ErrorIs(t, err, ErrUnsupportedLocation)

	_, err = (&Router{}).Fetch(ctx, "https://example.test")
	assert.ErrorIs(t, err, ErrUnsupportedLocation)
}
