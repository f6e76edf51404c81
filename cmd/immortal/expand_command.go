package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mbounthavong/immortaltime/oscars"
)

func newExpandCommand(cc *commandContext) *cobra.Command {

	var out string

	cmd := &cobra.Command{
		Use:   "expand",
		Short: "Write the person-period (one row per subject-year) table as CSV",
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

			lt, err := oscars.Expand(oscars.FilterNominees(subjects))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				fid, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer fid.Close()
				w = fid
			}

			if err := lt.WriteCSV(w); err != nil {
				return fmt.Errorf("write person-period table: %w", err)
			}

			logger.Debug("expanded cohort", "rows", lt.NumRows())
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "write to a file instead of stdout")

	return cmd
}
