package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/brixies/brix-cli/internal/config"
)

var (
	rootCmd = &cobra.Command{
		Use:           "brix",
		Short:         "Re-prefix and combine Bricks section exports",
		Long:          "brix looks up sections in the Brixies metadata index, renames their classes and ids to a prefix of your choice and merges them into one paste-ready Bricks export.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Current(); err == nil {
				return nil
			}
			opts := config.New()
			if err := opts.Init(flagConfig, flagJSON, flagVerbose, flagDryRun, flagLogFile); err != nil {
				return WrapCLIError(ExitCodeValidation, err)
			}
			cmd.SetContext(opts.WithContext(cmd.Context()))
			return nil
		},
	}

	flagJSON    bool
	flagVerbose bool
	flagDryRun  bool
	flagConfig  string
	flagLogFile string
)

// Execute runs the root command.
func Execute() error {
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		return err
	}
	opts, err := config.Current()
	if err == nil {
		if cerr := opts.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "failed to close resources: %v\n", cerr)
		}
	}
	return nil
}

// RootCommand returns the configured root command; primarily for testing scenarios.
func RootCommand() *cobra.Command {
	registerCommands()
	return rootCmd
}

// registerCommands ensures all subcommands are attached before execution.
func registerCommands() {
	if len(rootCmd.Commands()) > 0 {
		return
	}
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output machine-readable JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&flagDryRun, "dry-run", false, "Simulate actions without writing files")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Settings file (default: brix.yaml, brix.yml or brix.toml in the current directory)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "File to write verbose logs")

	rootCmd.AddCommand(newGenerateCommand())
	rootCmd.AddCommand(newResolveCommand())
	rootCmd.AddCommand(newRenameCommand())
	rootCmd.AddCommand(newMergeCommand())
	rootCmd.AddCommand(newIndexCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newVersionCommand())
}
