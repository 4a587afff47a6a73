package fetch

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/brixies/brix-cli/internal/bricks"
	"github.com/brixies/brix-cli/internal/schema"
)

// Defaults for a Fetcher.
const (
	DefaultTimeout     = 15 * time.Second
	DefaultConcurrency = 4
)

// Request names one document to fetch.
type Request struct {
	Key      string
	Location string
}

// Result is the outcome of one request. Exactly one of Data and Err is set.
type Result struct {
	Key      string
	Location string
	Data     []byte
	Err      error
	Elapsed  time.Duration
}

// Fetcher runs fetches against a Source with a per-fetch timeout.
type Fetcher struct {
	source      Source
	timeout     time.Duration
	concurrency int
	validator   *schema.Validator
	log         *logrus.Entry
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout bounds every single fetch.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithConcurrency limits how many fetches run at once.
func WithConcurrency(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithLogger routes fetch logs to logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.log = logger.WithField("component", "fetch")
			f.validator = schema.New(logger)
		}
	}
}

// New constructs a fetcher for source.
func New(source Source, opts ...Option) *Fetcher {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	f := &Fetcher{
		source:      source,
		timeout:     DefaultTimeout,
		concurrency: DefaultConcurrency,
		validator:   schema.New(quiet),
		log:         quiet.WithField("component", "fetch"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves one location within the configured timeout.
func (f *Fetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	data, err := f.source.Fetch(ctx, location)
	entry := f.log.WithFields(logrus.Fields{"location": location, "elapsed": time.Since(start).String()})
	if err != nil {
		entry.WithError(err).Warn("fetch failed")
		return nil, err
	}
	entry.WithField("bytes", len(data)).Debug("fetched")
	return data, nil
}

// FetchAll runs every request concurrently. Results keep the order of reqs;
// a failed request never cancels the others.
func (f *Fetcher) FetchAll(ctx context.Context, reqs []Request) []Result {
	results := make([]Result, len(reqs))

	var g errgroup.Group
	g.SetLimit(f.concurrency)
	for i, req := range reqs {
		g.Go(func() error {
			start := time.Now()
			data, err := f.Fetch(ctx, req.Location)
			results[i] = Result{
				Key:      req.Key,
				Location: req.Location,
				Data:     data,
				Err:      err,
				Elapsed:  time.Since(start),
			}
			return nil
		})
	}
	// Workers report through results and always return nil.
	_ = g.Wait()
	return results
}

// InvalidDocumentError reports a fetched document that fails the section schema.
type InvalidDocumentError struct {
	Location   string
	Violations []string
}

func (e *InvalidDocumentError) Error() string {
	return fmt.Sprintf("%s is not a valid section document: %s", e.Location, joinViolations(e.Violations))
}

// Document fetches, validates and decodes a section document. Reference
// problems the renamer tolerates are returned as warnings.
func (f *Fetcher) Document(ctx context.Context, location string) (*bricks.Document, []string, error) {
	data, err := f.Fetch(ctx, location)
	if err != nil {
		return nil, nil, err
	}
	return f.Decode(location, data)
}

// Decode validates and decodes already fetched bytes.
func (f *Fetcher) Decode(location string, data []byte) (*bricks.Document, []string, error) {
	res, err := f.validator.Validate(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", location, err)
	}
	if !res.Valid() {
		return nil, res.Warnings, &InvalidDocumentError{Location: location, Violations: res.Errors}
	}
	doc, err := bricks.Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", location, err)
	}
	return doc, res.Warnings, nil
}

func joinViolations(v []string) string {
	const max = 3
	if len(v) <= max {
		return fmt.Sprintf("%v", v)
	}
	return fmt.Sprintf("%v and %d more", v[:max], len(v)-max)
}
