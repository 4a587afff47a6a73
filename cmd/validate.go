package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brixies/brix-cli/internal/schema"
)

func newValidateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate section exports against the section schema",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := options(cmd)
			if err != nil {
				return err
			}

			summary := schema.New(opts.Logger()).ValidateFiles(args)
			failed := summary.Invalid
			if strict {
				failed = 0
				for _, res := range summary.Results {
					if !res.Valid() || len(res.Warnings) > 0 {
						failed++
					}
				}
			}

			if opts.JSONOutput {
				payload := map[string]interface{}{
					"total":   summary.Total,
					"valid":   summary.Valid,
					"invalid": summary.Invalid,
					"strict":  strict,
					"results": summary.Results,
				}
				if err := respond(cmd, opts, failed == 0, "validation complete", payload); err != nil {
					return err
				}
				if failed > 0 {
					return NewCLIError(ExitCodeSchema, fmt.Sprintf("validation failed for %d file(s)", failed))
				}
				return nil
			}

			printSummary(cmd, summary)
			if failed > 0 {
				return NewCLIError(ExitCodeSchema, fmt.Sprintf("validation failed for %d file(s)", failed))
			}
			return respond(cmd, opts, true, fmt.Sprintf("Validated %d file(s)", summary.Total), nil)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Treat reference warnings as failures")
	return cmd
}

func printSummary(cmd *cobra.Command, summary *schema.Summary) {
	out := cmd.OutOrStdout()
	for _, path := range summary.Paths() {
		res := summary.Results[path]
		if res.Valid() && len(res.Warnings) == 0 {
			continue
		}
		fmt.Fprintf(out, "%s:\n", path)
		for _, msg := range res.Errors {
			fmt.Fprintf(out, "  - %s\n", msg)
		}
		for _, msg := range res.Warnings {
			fmt.Fprintf(out, "  ~ %s\n", msg)
		}
	}
}
