package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brixies/brix-cli/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := options(cmd)
			if err != nil {
				return err
			}

			payload := map[string]interface{}{
				"version":    version.Current,
				"provenance": opts.Settings.Provenance,
			}

			if opts.JSONOutput {
				return respond(cmd, opts, true, "version", payload)
			}

			fmt.Fprintln(cmd.OutOrStdout(), version.Current)
			return nil
		},
	}
}
