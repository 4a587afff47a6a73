package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brixies/brix-cli/internal/bricks"
	"github.com/brixies/brix-cli/internal/fetch"
	"github.com/brixies/brix-cli/internal/session"
	"github.com/brixies/brix-cli/internal/util"
)

func newMergeCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "merge <file|url>...",
		Short: "Combine already renamed section exports into one",
		Long: `Concatenates the content, global classes and global elements of the given
exports in order. Element and class ids must not repeat across inputs; run
rename first so every section gets fresh ids. Inputs that cannot be fetched
or decoded are reported and left out.`,
		Args: cobra.MinimumNArgs(1),
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

			reqs := make([]fetch.Request, len(args))
			for i, location := range args {
				reqs[i] = fetch.Request{Key: location, Location: location}
			}
			docs := make([]*bricks.Document, 0, len(args))
			var issues []session.Issue
			var firstErr error
			skip := func(location string, kind session.Kind, err error) {
				if firstErr == nil {
					firstErr = err
				}
				issues = append(issues, session.Issue{Phase: session.PhaseGeneration, Kind: kind, Section: location, Message: err.Error()})
			}
			for _, res := range fetcher.FetchAll(cmd.Context(), reqs) {
				if res.Err != nil {
					skip(res.Location, session.KindFetch, res.Err)
					continue
				}
				doc, problems, err := fetcher.Decode(res.Location, res.Data)
				if err != nil {
					skip(res.Location, session.KindStructural, err)
					continue
				}
				for _, p := range problems {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %s\n", res.Location, p)
				}
				docs = append(docs, doc)
			}
			printIssues(cmd.ErrOrStderr(), issues)
			if len(docs) == 0 {
				return wrapDomainError(fmt.Errorf("no section could be merged: %w", firstErr))
			}

			merged, err := bricks.Merge(docs, opts.Settings.Provenance)
			if err != nil {
				return wrapDomainError(err)
			}
			data, err := util.MarshalJSON(merged)
			if err != nil {
				return WrapCLIError(ExitCodeUnknown, err)
			}

			written := output != "" && output != "-"
			if written {
				if err := writeDocument(opts, output, merged); err != nil {
					return err
				}
			}

			if opts.JSONOutput {
				payload := map[string]interface{}{
					"sections":      len(docs),
					"elements":      len(merged.Content),
					"globalClasses": len(merged.GlobalClasses),
					"written":       written && !opts.DryRun,
					"issues":        issues,
				}
				if written {
					payload["path"] = output
				} else {
					payload["document"] = json.RawMessage(data)
				}
				return respond(cmd, opts, true, "sections merged", payload)
			}

			if !written {
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			message := fmt.Sprintf("Merged %d section(s) into %s", len(docs), output)
			if opts.DryRun {
				message = fmt.Sprintf("Dry-run: %d section(s) would be merged into %s", len(docs), output)
			}
			return respond(cmd, opts, true, message, nil)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the merged export to a file (default: stdout)")
	return cmd
}
