package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mbounthavong/immortaltime/config"
	"github.com/mbounthavong/immortaltime/datacache"
	"github.com/mbounthavong/immortaltime/oscars"
)

type commandContext struct {
	configFlag *string
	dataFlag   *string
	verbose    *bool
}

func newRootCommand() *cobra.Command {

	root := &cobra.Command{
		Use:   "immortal",
		Short: "Reanalysis of the Academy Award winners survival data",
		Long: "immortal reanalyzes the Academy Award winners survival dataset to\n" +
			"demonstrate immortal time bias: the same four estimators are run with a\n" +
			"static ever-winner flag and with a time-varying winner flag on\n" +
			"person-period data, and the results are reported side by side.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cc := &commandContext{
		configFlag: root.PersistentFlags().StringP("config", "c", "", "path to a TOML config file"),
		dataFlag:   root.PersistentFlags().String("data", "", "read subjects from a local CSV instead of the cache"),
		verbose:    root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging"),
	}

	root.AddCommand(
		newFetchCommand(cc),
		newRunCommand(cc),
		newExpandCommand(cc),
		newPlotCommand(cc),
	)

	return root
}

func (cc *commandContext) logger() *slog.Logger {

	level := slog.LevelInfo
	if cc.verbose != nil && *cc.verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func (cc *commandContext) loadConfig() (*config.Config, error) {

	var path string
	if cc.configFlag != nil {
		path = *cc.configFlag
	}

	return config.Load(path)
}

// loadSubjects returns the raw cohort, preferring in order: a local CSV
// given with --data, the cache, a fresh fetch (which populates the
// cache).
func (cc *commandContext) loadSubjects(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]oscars.Subject, error) {

	if cc.dataFlag != nil && *cc.dataFlag != "" {
		logger.Debug("reading subjects from local file", "path", *cc.dataFlag)
		return oscars.ReadFile(*cc.dataFlag)
	}

	store, err := datacache.Open(cfg.CachePath)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	subjects, found, err := store.Lookup(ctx, cfg.SourceURL)
	if err != nil {
		return nil, err
	}
	if found {
		logger.Debug("using cached dataset", "url", cfg.SourceURL, "subjects", len(subjects))
		return subjects, nil
	}

	logger.Info("fetching dataset", "url", cfg.SourceURL)
	subjects, err = oscars.Fetch(ctx, cfg.SourceURL)
	if err != nil {
		return nil, err
	}

	if err := store.Store(ctx, cfg.SourceURL, subjects); err != nil {
		return nil, fmt.Errorf("cache dataset: %w", err)
	}
	logger.Debug("cached dataset", "path", store.Path(), "subjects", len(subjects))

	return subjects, nil
}
