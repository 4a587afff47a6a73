package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brixies/brix-cli/internal/bricks"
	"github.com/brixies/brix-cli/internal/catalog"
	"github.com/brixies/brix-cli/internal/config"
	"github.com/brixies/brix-cli/internal/fetch"
	"github.com/brixies/brix-cli/internal/rename"
	"github.com/brixies/brix-cli/internal/session"
	"github.com/brixies/brix-cli/internal/util"
)

var errInvalidFlag = errors.New("invalid flag value")

// options returns the settings stored on the command context by the root
// command, falling back to the process wide options.
func options(cmd *cobra.Command) (*config.Options, error) {
	if ctx := cmd.Context(); ctx != nil {
		return config.FromContext(ctx)
	}
	return config.Current()
}

func respond(cmd *cobra.Command, opts *config.Options, success bool, message string, data interface{}) error {
	if opts.JSONOutput {
		payload := util.StructuredResult(success, message, data)
		return util.PrintJSON(cmd.OutOrStdout(), payload)
	}
	if message != "" {
		fmt.Fprintln(cmd.OutOrStdout(), message)
	}
	return nil
}

// newFetcher builds a fetcher routing http(s), github:// and local
// locations. The returned func releases idle connections.
func newFetcher(opts *config.Options) (*fetch.Fetcher, func(), error) {
	timeout, err := opts.Settings.FetchTimeout()
	if err != nil {
		return nil, nil, WrapCLIError(ExitCodeValidation, err)
	}
	httpSrc := fetch.NewHTTPSource(nil)
	ghSrc := fetch.NewGitHubSource(nil, opts.Settings.GitHubToken)
	router := &fetch.Router{HTTP: httpSrc, GitHub: ghSrc, File: fetch.FileSource{}}
	f := fetch.New(router,
		fetch.WithTimeout(timeout),
		fetch.WithConcurrency(opts.Settings.Concurrency),
		fetch.WithLogger(opts.Logger()),
	)
	return f, func() {
		httpSrc.Close()
		ghSrc.Close()
	}, nil
}

func loadCatalog(ctx context.Context, f *fetch.Fetcher, location string) (*catalog.Index, error) {
	data, err := f.Fetch(ctx, location)
	if err != nil {
		return nil, WrapCLIError(ExitCodeFetch, fmt.Errorf("failed to load metadata index: %w", err))
	}
	idx, err := catalog.Parse(data)
	if err != nil {
		return nil, WrapCLIError(ExitCodeSchema, err)
	}
	return idx, nil
}

// readInput returns the names given as args, or the content of file when
// set; "-" reads standard input.
func readInput(cmd *cobra.Command, args []string, file string) (string, error) {
	if file == "" {
		return strings.Join(args, "\n"), nil
	}
	var data []byte
	var err error
	if file == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		// #nosec G304 -- input path provided via command flag
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", WrapCLIError(ExitCodeFilesystem, fmt.Errorf("failed to read input: %w", err))
	}
	return string(data), nil
}

// readDocument loads a section document from a location or "-".
func readDocument(ctx context.Context, cmd *cobra.Command, f *fetch.Fetcher, location string) (*bricks.Document, []string, error) {
	if location != "-" {
		return f.Document(ctx, location)
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, nil, err
	}
	return f.Decode("stdin", data)
}

// exitCodeFor maps domain errors onto process exit codes.
func exitCodeFor(err error) int {
	var (
		statusErr    *fetch.StatusError
		invalidErr   *fetch.InvalidDocumentError
		collisionErr *bricks.CollisionError
		pathErr      *fs.PathError
	)
	switch {
	case errors.As(err, &collisionErr):
		return ExitCodeCollision
	case errors.As(err, &invalidErr):
		return ExitCodeSchema
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, session.ErrUnknownSection):
		return ExitCodeNotFound
	case errors.Is(err, rename.ErrEmptyPrefix), errors.Is(err, rename.ErrInvalidPrefix),
		errors.Is(err, session.ErrNoNames), errors.Is(err, session.ErrIndexOutOfRange),
		errors.Is(err, util.ErrPromptAborted), errors.Is(err, errInvalidFlag):
		return ExitCodeValidation
	case errors.As(err, &statusErr), errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, fetch.ErrUnsupportedLocation), errors.Is(err, session.ErrNothingGenerated):
		return ExitCodeFetch
	case errors.As(err, &pathErr):
		return ExitCodeFilesystem
	}
	return ExitCodeUnknown
}

func wrapDomainError(err error) error {
	if err == nil {
		return nil
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}
	return WrapCLIError(exitCodeFor(err), err)
}

// writeDocument encodes v as an indented export and writes it atomically
// unless this is a dry run.
func writeDocument(opts *config.Options, path string, v interface{}) error {
	if opts.DryRun {
		return nil
	}
	if err := util.WriteJSONFileAtomic(path, v, 0o644); err != nil {
		return WrapCLIError(ExitCodeFilesystem, err)
	}
	return nil
}

// writeOutput writes data to path atomically unless this is a dry run.
func writeOutput(opts *config.Options, path string, data []byte) error {
	if opts.DryRun {
		return nil
	}
	if err := util.WriteFileAtomic(path, append(data, '\n'), 0o644); err != nil {
		return WrapCLIError(ExitCodeFilesystem, err)
	}
	return nil
}

func printIssues(w io.Writer, issues []session.Issue) {
	for _, issue := range issues {
		fmt.Fprintf(w, "! %s\n", issue)
	}
}

func printWarnings(w io.Writer, warnings []rename.Warning) {
	for _, warning := range warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
}
