// Package config loads the analysis configuration from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the settings for the reanalysis.
type Config struct {

	// SourceURL is the location of the subject-level dataset.
	SourceURL string `toml:"source_url"`

	// CachePath is the SQLite file in which fetched data are kept.
	CachePath string `toml:"cache_path"`

	// Horizon is the restricted mean survival time horizon in
	// years.  Zero selects the largest observed follow-up time.
	Horizon float64 `toml:"horizon"`

	// OutputDir is where figures and exported tables are written.
	OutputDir string `toml:"output_dir"`

	// Plot dimensions in inches.
	PlotWidth  float64 `toml:"plot_width"`
	PlotHeight float64 `toml:"plot_height"`
}

// Default returns the built-in configuration.
func Default() *Config {

	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = "."
	}

	return &Config{
		SourceURL:  "https://raw.githubusercontent.com/mbounthavong/Survival-analysis-and-immortal-time-bias/master/Data/actors.csv",
		CachePath:  filepath.Join(cacheDir, "immortaltime", "data.db"),
		Horizon:    0,
		OutputDir:  ".",
		PlotWidth:  5,
		PlotHeight: 4,
	}
}

// Load reads the configuration from the given path, falling back to the
// defaults when the path is empty or the file does not exist.
func Load(path string) (*Config, error) {

	cfg := Default()

	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config file %s not found", path)
	} else if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {

	if strings.TrimSpace(c.SourceURL) == "" {
		return errors.New("source_url must not be empty")
	}
	if strings.TrimSpace(c.CachePath) == "" {
		return errors.New("cache_path must not be empty")
	}
	if c.Horizon < 0 {
		return fmt.Errorf("horizon cannot be negative, got %v", c.Horizon)
	}
	if c.PlotWidth <= 0 || c.PlotHeight <= 0 {
		return errors.New("plot dimensions must be positive")
	}

	return nil
}
