package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brixies/brix-cli/internal/config"
	"github.com/brixies/brix-cli/internal/fetch"
	"github.com/brixies/brix-cli/internal/session"
	"github.com/brixies/brix-cli/internal/util"
)

type sessionFlags struct {
	file    string
	catalog string
	baseURL string
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Read section names from a file (JSON array or one per line, - for stdin)")
	cmd.Flags().StringVar(&f.catalog, "catalog", "", "Metadata index location (overrides the settings file)")
	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "Base location for catalog entries with relative paths")
}

// open runs the intake phase for the names given on the command line.
func (f *sessionFlags) open(cmd *cobra.Command, opts *config.Options, fetcher *fetch.Fetcher, args []string) (*session.Session, error) {
	input, err := readInput(cmd, args, f.file)
	if err != nil {
		return nil, err
	}
	if _, err := session.ParseNames(input); err != nil {
		return nil, WrapCLIError(ExitCodeValidation, err)
	}

	location := f.catalog
	if location == "" {
		location = opts.Settings.Catalog
	}
	base := f.baseURL
	if base == "" {
		base = opts.Settings.BaseURL
	}
	idx, err := loadCatalog(cmd.Context(), fetcher, location)
	if err != nil {
		return nil, err
	}
	mode, err := opts.Settings.IDMode()
	if err != nil {
		return nil, WrapCLIError(ExitCodeValidation, err)
	}

	s := session.New(session.Options{
		Catalog:    idx,
		Fetcher:    fetcher,
		BaseURL:    base,
		IDMode:     mode,
		Provenance: opts.Settings.Provenance,
		Logger:     opts.Logger(),
	})
	if err := s.Intake(cmd.Context(), input); err != nil {
		return nil, WrapCLIError(ExitCodeValidation, err)
	}
	return s, nil
}

func newGenerateCommand() *cobra.Command {
	var (
		sf          sessionFlags
		classes     []string
		moves       []string
		interactive bool
		output      string
		download    bool
		dir         string
	)

	cmd := &cobra.Command{
		Use:   "generate [section names...]",
		Short: "Rename and merge sections into one Bricks export",
		Long: `Looks up every named section in the metadata index, fetches its export,
renames its classes and ids to the chosen class (the section's own root class
by default) and merges the results in order into a single paste-ready export.`,
		Example: `  brix generate "Hero Banner" "Footer Simple" --class "Hero Banner=landing"
  brix generate -f sections.json --download
  brix generate -f - --interactive < names.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := options(cmd)
			if err != nil {
				return err
			}
			fetcher, release, err := newFetcher(opts)
			if err != nil {
				return err
			}
			defer release()

			s, err := sf.open(cmd, opts, fetcher, args)
			if err != nil {
				return err
			}
			if s.Len() == 0 {
				printIssues(cmd.ErrOrStderr(), s.Issues(""))
				return NewCLIError(ExitCodeNotFound, "none of the requested sections could be resolved")
			}

			if err := applyClasses(s, classes); err != nil {
				return wrapDomainError(err)
			}
			if err := applyMoves(s, moves); err != nil {
				return wrapDomainError(err)
			}
			if interactive {
				proceed, err := promptClasses(util.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()), s)
				if err != nil {
					return wrapDomainError(err)
				}
				if !proceed {
					return respond(cmd, opts, false, "generation cancelled", nil)
				}
			}

			out, err := s.Generate(cmd.Context())
			if err != nil {
				printIssues(cmd.ErrOrStderr(), s.Issues(""))
				return wrapDomainError(err)
			}
			data, err := util.MarshalJSON(out.Document)
			if err != nil {
				return WrapCLIError(ExitCodeUnknown, err)
			}

			target := output
			if download {
				target = filepath.Join(dir, util.ExportFileName(out.ExportID))
			}
			written := target != "" && target != "-"
			if written {
				if err := writeDocument(opts, target, out.Document); err != nil {
					return err
				}
			}

			if opts.JSONOutput {
				payload := map[string]interface{}{
					"exportId": out.ExportID,
					"sections": out.Sections,
					"warnings": out.Warnings,
					"issues":   s.Issues(""),
					"written":  written && !opts.DryRun,
				}
				if written {
					payload["path"] = target
				} else {
					payload["document"] = json.RawMessage(data)
				}
				return respond(cmd, opts, true, "export generated", payload)
			}

			printIssues(cmd.ErrOrStderr(), s.Issues(""))
			if !written {
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			message := fmt.Sprintf("Export with %d section(s) written to %s", len(out.Sections), target)
			if opts.DryRun {
				message = fmt.Sprintf("Dry-run: export with %d section(s) would be written to %s", len(out.Sections), target)
			}
			return respond(cmd, opts, true, message, nil)
		},
	}

	sf.register(cmd)
	cmd.Flags().StringArrayVar(&classes, "class", nil, "Target class for a section as NAME=CLASS or POSITION=CLASS (repeatable)")
	cmd.Flags().StringArrayVar(&moves, "move", nil, "Reorder sections as FROM:TO, 1-based (repeatable)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Prompt for the class of every section")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the export to a file (default: stdout)")
	cmd.Flags().BoolVar(&download, "download", false, "Write the export to brixies-export-<id>.json")
	cmd.Flags().StringVar(&dir, "dir", ".", "Directory for --download")
	return cmd
}

// applyClasses applies NAME=CLASS assignments. A numeric name selects the
// section by its 1-based position.
func applyClasses(s *session.Session, assignments []string) error {
	for _, assignment := range assignments {
		name, class, ok := strings.Cut(assignment, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return fmt.Errorf("%w: --class %q, expected NAME=CLASS", errInvalidFlag, assignment)
		}
		if pos, err := strconv.Atoi(name); err == nil {
			if err := s.SetClass(pos-1, class); err != nil {
				return err
			}
			continue
		}
		if err := s.SetClassByName(name, class); err != nil {
			return err
		}
	}
	return nil
}

func applyMoves(s *session.Session, moves []string) error {
	for _, move := range moves {
		from, to, ok := strings.Cut(move, ":")
		fromPos, ferr := strconv.Atoi(strings.TrimSpace(from))
		toPos, terr := strconv.Atoi(strings.TrimSpace(to))
		if !ok || ferr != nil || terr != nil {
			return fmt.Errorf("%w: --move %q, expected FROM:TO", errInvalidFlag, move)
		}
		if err := s.Move(fromPos-1, toPos-1); err != nil {
			return err
		}
	}
	return nil
}

// promptClasses asks for the class of every section and confirms the run.
func promptClasses(p *util.Prompter, s *session.Session) (bool, error) {
	for i, sec := range s.Sections() {
		for {
			answer, err := p.Ask(fmt.Sprintf("%d. Class for %q", i+1, sec.Name), sec.TargetClass())
			if err != nil {
				return false, err
			}
			if err := s.SetClass(i, answer); err != nil {
				fmt.Fprintf(p.Out, "   %v\n", err)
				continue
			}
			break
		}
	}
	ok, err := p.Confirm(fmt.Sprintf("Generate export for %d section(s)?", s.Len()))
	if errors.Is(err, util.ErrPromptAborted) {
		return false, nil
	}
	return ok, err
}
