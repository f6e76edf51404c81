package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {

	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Errorf("default configuration does not validate: %v", err)
	}
	if cfg.SourceURL == "" || cfg.CachePath == "" {
		t.Errorf("default configuration is missing required fields: %+v", cfg)
	}
}

func TestLoadEmpty(t *testing.T) {

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if *cfg != *Default() {
		t.Errorf("empty path should load the defaults")
	}
}

func TestLoadFile(t *testing.T) {

	src := `
source_url = "https://example.com/actors.csv"
horizon = 30
plot_width = 6.5
`
	path := filepath.Join(t.TempDir(), "immortal.toml")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.SourceURL != "https://example.com/actors.csv" {
		t.Errorf("source_url: got %q", cfg.SourceURL)
	}
	if cfg.Horizon != 30 {
		t.Errorf("horizon: got %v", cfg.Horizon)
	}
	if cfg.PlotWidth != 6.5 {
		t.Errorf("plot_width: got %v", cfg.PlotWidth)
	}

	// Unset keys keep their defaults.
	if cfg.CachePath != Default().CachePath {
		t.Errorf("cache_path should keep its default, got %q", cfg.CachePath)
	}
	if cfg.PlotHeight != Default().PlotHeight {
		t.Errorf("plot_height should keep its default, got %v", cfg.PlotHeight)
	}
}

func TestLoadMissingFile(t *testing.T) {

	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}

func TestLoadInvalid(t *testing.T) {

	cases := []struct {
		name string
		src  string
	}{
		{"bad syntax", "source_url = \n"},
		{"empty source", `source_url = ""` + "\n"},
		{"negative horizon", "horizon = -5\n"},
		{"bad plot size", "plot_width = 0.0\n"},
	}

	for _, c := range cases {
		path := filepath.Join(t.TempDir(), "immortal.toml")
		if err := os.WriteFile(path, []byte(c.src), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected an error", c.name)
		}
	}
}
