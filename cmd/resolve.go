package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newResolveCommand() *cobra.Command {
	var sf sessionFlags

	cmd := &cobra.Command{
		Use:   "resolve [section names...]",
		Short: "Look up sections and show their original classes",
		Args:  cobra.ArbitraryArgs,
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
			sections := s.Sections()
			issues := s.Issues("")

			if opts.JSONOutput {
				payload := map[string]interface{}{
					"sections": sections,
					"issues":   issues,
				}
				message := fmt.Sprintf("%d section(s) resolved", len(sections))
				if err := respond(cmd, opts, len(sections) > 0, message, payload); err != nil {
					return err
				}
			} else {
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "#\tSECTION\tCLASS\tFETCHED\tLOCATION")
				for i, sec := range sections {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%s\n", i+1, sec.Name, sec.OriginalClass, sec.Fetched, sec.Location)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				printIssues(cmd.ErrOrStderr(), issues)
			}

			if len(sections) == 0 {
				return NewCLIError(ExitCodeNotFound, "none of the requested sections could be resolved")
			}
			return nil
		},
	}

	sf.register(cmd)
	return cmd
}
