// Package config manages application configuration from files and environment.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/klytics/sheetcanvas/internal/engine"
	"github.com/klytics/sheetcanvas/internal/geometry"
	"github.com/klytics/sheetcanvas/internal/logging"
	"github.com/klytics/sheetcanvas/internal/textfit"
)

// Config holds the application configuration.
type Config struct {
	Units struct {
		CharPixelWidth   float64 `mapstructure:"char_pixel_width"`
		ColumnPadding    float64 `mapstructure:"column_padding"`
		DefaultColWidth  float64 `mapstructure:"default_col_width"`
		DefaultRowHeight float64 `mapstructure:"default_row_height"`
	} `mapstructure:"units"`
	Anchors struct {
		MinPixels   float64 `mapstructure:"min_pixels"`
		MaxExtentPx float64 `mapstructure:"max_extent_px"`
	} `mapstructure:"anchors"`
	Text struct {
		BasePt    int     `mapstructure:"base_pt"`
		MinPt     int     `mapstructure:"min_pt"`
		PaddingPx float64 `mapstructure:"padding_px"`
		Tolerance float64 `mapstructure:"tolerance"`
		FontFile  string  `mapstructure:"font_file"`
	} `mapstructure:"text"`
	Fit struct {
		BasePadding     float64 `mapstructure:"base_padding"`
		MaxExtraPadding float64 `mapstructure:"max_extra_padding"`
		ExtremeAspect   float64 `mapstructure:"extreme_aspect"`
		SubpixelTrim    float64 `mapstructure:"subpixel_trim"`
	} `mapstructure:"fit"`
	Scan struct {
		MaxCells  int `mapstructure:"max_cells"`
		GridSlack int `mapstructure:"grid_slack"`
	} `mapstructure:"scan"`
	Output struct {
		Format string `mapstructure:"format"`
		Color  bool   `mapstructure:"color"`
	} `mapstructure:"output"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// setting is one known key with its default.
type setting struct {
	key   string
	value any
}

// settings lists every known key in display order.
var settings = []setting{
	{"units.char_pixel_width", geometry.DefaultCharPixelWidth},
	{"units.column_padding", geometry.DefaultColumnPadding},
	{"units.default_col_width", geometry.DefaultColWidth},
	{"units.default_row_height", geometry.DefaultRowHeight},
	{"anchors.min_pixels", 2.0},
	{"anchors.max_extent_px", 1_000_000.0},
	{"text.base_pt", 11},
	{"text.min_pt", 6},
	{"text.padding_px", 2.0},
	{"text.tolerance", 0.02},
	{"text.font_file", ""},
	{"fit.base_padding", 2.0},
	{"fit.max_extra_padding", 6.0},
	{"fit.extreme_aspect", 3.0},
	{"fit.subpixel_trim", 0.5},
	{"scan.max_cells", 250_000},
	{"scan.grid_slack", 256},
	{"output.format", "json"},
	{"output.color", true},
	{"log.level", "info"},
}

// Load reads the configuration from ~/.sheetcanvas/config.yaml and environment variables.
func Load() (*Config, error) {
	configDir := configDir()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)

	setDefaults()

	// Environment variable overrides, e.g. SHEETCANVAS_TEXT_MIN_PT
	viper.SetEnvPrefix("SHEETCANVAS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file (non-fatal if missing)
	_ = viper.ReadInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	for _, s := range settings {
		viper.SetDefault(s.key, s.value)
	}
}

// EngineOptions converts the configuration into engine options.
func (c *Config) EngineOptions() engine.Options {
	opts := engine.DefaultOptions()
	opts.Units = geometry.Units{CharPixelWidth: c.Units.CharPixelWidth, ColumnPadding: c.Units.ColumnPadding}
	opts.DefaultColWidth = c.Units.DefaultColWidth
	opts.DefaultRowHeight = c.Units.DefaultRowHeight
	opts.Anchors.MinPixels = c.Anchors.MinPixels
	opts.Anchors.MaxExtentPx = c.Anchors.MaxExtentPx
	opts.Text = engine.TextOptions{
		BasePt:    c.Text.BasePt,
		MinPt:     c.Text.MinPt,
		PaddingPx: c.Text.PaddingPx,
		Tolerance: c.Text.Tolerance,
	}
	opts.Fit = engine.FitOptions{
		BasePadding:     c.Fit.BasePadding,
		MaxExtraPadding: c.Fit.MaxExtraPadding,
		ExtremeAspect:   c.Fit.ExtremeAspect,
		SubpixelTrim:    c.Fit.SubpixelTrim,
	}
	opts.MaxCells = c.Scan.MaxCells
	opts.GridSlack = c.Scan.GridSlack
	return opts
}

// NewEngine builds an engine from the configuration. Without a font file
// text is measured against the embedded Go Regular face.
func (c *Config) NewEngine(logger *log.Logger) (*engine.Engine, error) {
	m, err := textfit.NewFontMeasurer(c.Text.FontFile)
	if err != nil {
		return nil, err
	}
	return engine.New(m, c.EngineOptions(), logger), nil
}

// LoadEngine loads the configuration and builds an engine logging to the
// logger carried by ctx.
func LoadEngine(ctx context.Context) (*Config, *engine.Engine, error) {
	cfg, err := Load()
	if err != nil {
		return nil, nil, fmt.Errorf("could not load config: %w", err)
	}
	e, err := cfg.NewEngine(logging.FromContext(ctx))
	if err != nil {
		return nil, nil, err
	}
	return cfg, e, nil
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sheetcanvas"
	}
	return filepath.Join(home, ".sheetcanvas")
}
