package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mbounthavong/immortaltime/oscars"
	"github.com/mbounthavong/immortaltime/survival"
)

func newPlotCommand(cc *commandContext) *cobra.Command {

	return &cobra.Command{
		Use:   "plot",
		Short: "Render Kaplan-Meier figures for both treatment definitions",
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

			if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
				return fmt.Errorf("ensure output dir: %w", err)
			}

			arms := []struct {
				fname string
				title string
				arm   oscars.ArmResult
			}{
				{"km_naive.png", "Ever-winner grouping (naive)", cmp.Naive},
				{"km_adjusted.png", "Time-varying winner grouping (adjusted)", cmp.Adjusted},
			}

			for _, a := range arms {
				path := filepath.Join(cfg.OutputDir, a.fname)
				sp := survival.NewSurvfuncPlotter(a.title).
					Width(cfg.PlotWidth).
					Height(cfg.PlotHeight).
					Add(a.arm.KMControl, "Controls").
					Add(a.arm.KMWinner, "Winners")
				if err := sp.Save(path); err != nil {
					return fmt.Errorf("save %s: %w", path, err)
				}
				logger.Info("wrote figure", "path", path)
			}

			return nil
		},
	}
}
