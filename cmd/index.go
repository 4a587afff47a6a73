package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brixies/brix-cli/internal/catalog"
	"github.com/brixies/brix-cli/internal/util"
)

func newIndexCommand() *cobra.Command {
	var (
		format     string
		output     string
		previous   string
		pathPrefix string
		verbosity  int
		quiet      bool
	)

	cmd := &cobra.Command{
		Use:   "index <sections-dir>",
		Short: "Generate the metadata index from a sections tree",
		Long: `Walks <sections-dir>/<framework>/<category>/*.json and writes the metadata
index used to look sections up. When the previous index is available the
changes since then are reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := options(cmd)
			if err != nil {
				return err
			}
			format = strings.ToLower(format)

			builder := catalog.NewBuilder(args[0], opts.Logger())
			builder.PathPrefix = pathPrefix
			idx, skipped, err := builder.Build()
			if err != nil {
				return WrapCLIError(ExitCodeFilesystem, err)
			}
			content, err := catalog.Render(idx, format)
			if err != nil {
				return WrapCLIError(ExitCodeValidation, err)
			}

			target := output
			if previous == "" && target != "" && target != "-" && (format == "" || format == catalog.FormatJSON) {
				if _, err := os.Stat(target); err == nil {
					previous = target
				}
			}
			var diff *catalog.Diff
			if previous != "" {
				fetcher, release, err := newFetcher(opts)
				if err != nil {
					return err
				}
				old, err := loadCatalog(cmd.Context(), fetcher, previous)
				release()
				if err != nil {
					opts.Logger().WithField("component", "index").WithError(err).Warn("previous index unavailable")
				}
				diff = catalog.ComputeDiff(old, idx)
			}

			for _, s := range skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %s\n", s.Path, s.Reason)
			}

			written := target != "" && target != "-"
			if written {
				if err := writeOutput(opts, target, []byte(strings.TrimRight(content, "\n"))); err != nil {
					return err
				}
			}

			if opts.JSONOutput {
				payload := map[string]interface{}{
					"format":  format,
					"total":   idx.Len(),
					"skipped": skipped,
					"written": written && !opts.DryRun,
				}
				if diff != nil {
					payload["changes"] = diff
				}
				if written {
					payload["path"] = target
				} else {
					payload["content"] = content
				}
				return respond(cmd, opts, true, "index generated", payload)
			}

			if !written {
				fmt.Fprint(cmd.OutOrStdout(), content)
				return nil
			}
			if opts.DryRun {
				return respond(cmd, opts, true, fmt.Sprintf("Dry-run: index would be written to %s", target), nil)
			}
			if quiet && diff != nil && !diff.HasChanges() {
				return nil
			}

			color := false
			if f, ok := cmd.OutOrStdout().(*os.File); ok {
				color = util.IsTerminal(f)
			}
			message := util.ColorizeSummary(formatIndexOutput(diff, idx, target, verbosity), color)
			return respond(cmd, opts, true, message, nil)
		},
	}

	cmd.Flags().StringVar(&format, "format", catalog.FormatJSON, "Index format: json, md, html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output destination (default: stdout)")
	cmd.Flags().StringVar(&previous, "previous", "", "Previous index to diff against (default: the existing output file)")
	cmd.Flags().StringVar(&pathPrefix, "path-prefix", "", "Prefix for every relativePath, e.g. /sections")
	cmd.Flags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity level (-v)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only output if there are changes")
	return cmd
}

// formatIndexOutput formats the output message based on verbosity level and changes
func formatIndexOutput(diff *catalog.Diff, idx *catalog.Index, path string, verbosity int) string {
	var b strings.Builder

	if diff == nil {
		b.WriteString(fmt.Sprintf("Index written to %s (%d sections)", path, idx.Len()))
		return b.String()
	}

	if verbosity == 0 {
		if !diff.HasChanges() {
			b.WriteString(fmt.Sprintf("✓ No changes (%d sections indexed)\n", idx.Len()))
		} else {
			b.WriteString(fmt.Sprintf("✓ %s\n", diff.FormatSummary()))
			b.WriteString(categoryLine(idx))
		}
		b.WriteString(fmt.Sprintf("\nIndex written to %s", path))
		return b.String()
	}

	if !diff.HasChanges() {
		b.WriteString(fmt.Sprintf("✓ No changes detected (%d sections indexed)\n\n", idx.Len()))
	} else {
		b.WriteString(fmt.Sprintf("✓ Changes detected: %s\n\n", diff.FormatSummary()))
		b.WriteString(diff.FormatVerbose())
		b.WriteString("\n\n")
	}
	b.WriteString(categoryLine(idx))
	b.WriteString(fmt.Sprintf("Index written to %s", path))
	return b.String()
}

func categoryLine(idx *catalog.Index) string {
	counts := catalog.CategoryCounts(idx.Entries())
	categories := make([]string, 0, len(counts))
	for category := range counts {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	parts := make([]string, 0, len(counts))
	for _, category := range categories {
		parts = append(parts, fmt.Sprintf("%d %s", counts[category], category))
	}
	return fmt.Sprintf("Total: %d sections (%s)\n", idx.Len(), strings.Join(parts, ", "))
}
