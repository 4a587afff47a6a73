package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brixies/brix-cli/internal/ident"
	"github.com/brixies/brix-cli/internal/rename"
	"github.com/brixies/brix-cli/internal/util"
)

func newRenameCommand() *cobra.Command {
	var (
		prefix string
		root   string
		ids    string
		output string
	)

	cmd := &cobra.Command{
		Use:   "rename <file|url|->",
		Short: "Re-prefix a single section export",
		Long: `Renames the root class of a section export to --prefix, gives every class
and element a fresh id and patches custom CSS and JavaScript to match.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := options(cmd)
			if err != nil {
				return err
			}
			if err := rename.ValidatePrefix(prefix); err != nil {
				return WrapCLIError(ExitCodeValidation, err)
			}
			if ids == "" {
				ids = opts.Settings.IDs
			}
			mode, err := ident.ParseMode(ids)
			if err != nil {
				return WrapCLIError(ExitCodeValidation, err)
			}

			fetcher, release, err := newFetcher(opts)
			if err != nil {
				return err
			}
			defer release()

			doc, problems, err := readDocument(cmd.Context(), cmd, fetcher, args[0])
			if err != nil {
				return wrapDomainError(err)
			}
			res, err := rename.Rename(doc, rename.Options{
				Prefix:    prefix,
				Root:      root,
				Allocator: ident.NewAllocator(ident.New(mode)),
			})
			if err != nil {
				return wrapDomainError(err)
			}
			data, err := util.MarshalJSON(res.Document)
			if err != nil {
				return WrapCLIError(ExitCodeUnknown, err)
			}

			written := output != "" && output != "-"
			if written {
				if err := writeDocument(opts, output, res.Document); err != nil {
					return err
				}
			}

			if opts.JSONOutput {
				payload := map[string]interface{}{
					"root":     res.Root,
					"prefix":   prefix,
					"mapping":  res.Mapping,
					"warnings": res.Warnings,
					"problems": problems,
					"written":  written && !opts.DryRun,
				}
				if written {
					payload["path"] = output
				} else {
					payload["document"] = json.RawMessage(data)
				}
				return respond(cmd, opts, true, "section renamed", payload)
			}

			for _, p := range problems {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", p)
			}
			printWarnings(cmd.ErrOrStderr(), res.Warnings)
			if !written {
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			message := fmt.Sprintf("Renamed %s to %s in %s", res.Root, prefix, output)
			if opts.DryRun {
				message = fmt.Sprintf("Dry-run: renamed %s to %s, %s not written", res.Root, prefix, output)
			}
			return respond(cmd, opts, true, message, nil)
		},
	}

	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "New root class (required)")
	cmd.Flags().StringVar(&root, "root", "", "Original root class (default: detected from the first global class)")
	cmd.Flags().StringVar(&ids, "ids", "", "Id generation: random or hash (default from settings)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the renamed export to a file (default: stdout)")
	_ = cmd.MarkFlagRequired("prefix")
	return cmd
}
