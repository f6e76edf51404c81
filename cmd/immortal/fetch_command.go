package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mbounthavong/immortaltime/datacache"
	"github.com/mbounthavong/immortaltime/oscars"
)

func newFetchCommand(cc *commandContext) *cobra.Command {

	return &cobra.Command{
		Use:   "fetch",
		Short: "Download the dataset and store it in the local cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {

			logger := cc.logger()

			cfg, err := cc.loadConfig()
			if err != nil {
				return err
			}

			subjects, err := oscars.Fetch(cmd.Context(), cfg.SourceURL)
			if err != nil {
				return err
			}

			store, err := datacache.Open(cfg.CachePath)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer store.Close()

			if err := store.Store(cmd.Context(), cfg.SourceURL, subjects); err != nil {
				return fmt.Errorf("cache dataset: %w", err)
			}

			logger.Info("dataset cached",
				"url", cfg.SourceURL,
				"path", store.Path(),
				"subjects", len(subjects))

			return nil
		},
	}
}
