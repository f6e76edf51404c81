package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mbounthavong/immortaltime/oscars"
	"github.com/mbounthavong/immortaltime/report"
)

func newRunCommand(cc *commandContext) *cobra.Command {

	var showCox bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the paired naive/time-varying analysis and print the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {

			logger := cc.logger()

			cfg, err := cc.loadConfig()
			if err != nil {
				return err
			}

			subjects, err := cc.loadSubjects(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			cmp, err := oscars.Analyze(subjects, cfg.Horizon)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			report.Write(out, cmp)

			if showCox {
				fmt.Fprintf(out, "\n%s\n\n%s\n", cmp.Naive.Cox.Summary(), cmp.Adjusted.Cox.Summary())
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&showCox, "cox", false, "also print the full Cox regression summaries")

	return cmd
}
