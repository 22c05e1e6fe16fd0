package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ConfigIssue represents a validation finding.
type ConfigIssue struct {
	Key      string `json:"key"`
	Severity string `json:"severity"` // "error", "warning", "info"
	Message  string `json:"message"`
	Fix      string `json:"fix"`
}

// Keys returns every known configuration key in display order.
func Keys() []string {
	keys := make([]string, len(settings))
	for i, s := range settings {
		keys[i] = s.key
	}
	return keys
}

// Init writes a config file holding the defaults.
func Init() error {
	setDefaults()
	for _, s := range settings {
		viper.Set(s.key, s.value)
	}
	return SaveConfig()
}

// Validate checks config values and returns a list of issues.
func Validate() []ConfigIssue {
	var issues []ConfigIssue
	add := func(key, severity, msg, fix string) {
		issues = append(issues, ConfigIssue{Key: key, Severity: severity, Message: msg, Fix: fix})
	}

	for _, key := range []string{"units.char_pixel_width", "units.default_col_width", "units.default_row_height"} {
		if viper.GetFloat64(key) <= 0 {
			add(key, "error", fmt.Sprintf("%s must be positive", key), fmt.Sprintf("sheetcanvas config set %s <value>", key))
		}
	}

	base, minPt := viper.GetInt("text.base_pt"), viper.GetInt("text.min_pt")
	if minPt <= 0 {
		add("text.min_pt", "error", "text.min_pt must be at least 1", "sheetcanvas config set text.min_pt 6")
	}
	if base < minPt {
		add("text.base_pt", "warning", fmt.Sprintf("text.base_pt (%d) is below text.min_pt (%d); text is never shrunk", base, minPt), "")
	}
	if t := viper.GetFloat64("text.tolerance"); t < 0 || t >= 1 {
		add("text.tolerance", "error", "text.tolerance must be in [0, 1)", "sheetcanvas config set text.tolerance 0.02")
	}
	if path := viper.GetString("text.font_file"); path != "" {
		if _, err := os.Stat(path); err != nil {
			add("text.font_file", "error", fmt.Sprintf("font file %s is not readable", path), "sheetcanvas config set text.font_file \"\"")
		} else {
			add("text.font_file", "info", "Measuring text with "+filepath.Base(path), "")
		}
	}

	if a := viper.GetFloat64("fit.extreme_aspect"); a <= 1 {
		add("fit.extreme_aspect", "warning", "fit.extreme_aspect is not above 1; extra padding and trimming are disabled", "")
	}
	if viper.GetFloat64("anchors.max_extent_px") <= 0 {
		add("anchors.max_extent_px", "warning", "anchors.max_extent_px is not positive; implausible anchors are kept", "")
	}
	if viper.GetInt("scan.max_cells") <= 0 {
		add("scan.max_cells", "info", "Cell scan is unlimited", "")
	}
	if viper.GetInt("scan.grid_slack") < 0 {
		add("scan.grid_slack", "warning", "scan.grid_slack is negative; anchors past the sheet extent are clamped to it", "sheetcanvas config set scan.grid_slack 256")
	}

	switch f := viper.GetString("output.format"); f {
	case "json", "yaml", "text":
	default:
		add("output.format", "error", fmt.Sprintf("unknown output format %q", f), "sheetcanvas config set output.format json")
	}
	switch l := strings.ToLower(viper.GetString("log.level")); l {
	case "debug", "info", "warn", "warning", "error":
	default:
		add("log.level", "warning", fmt.Sprintf("unknown log level %q, using info", l), "sheetcanvas config set log.level info")
	}

	return issues
}

// ToEnv returns all config values as a map of env var name -> value.
func ToEnv() map[string]string {
	env := make(map[string]string, len(settings))
	for _, s := range settings {
		name := "SHEETCANVAS_" + strings.ToUpper(strings.ReplaceAll(s.key, ".", "_"))
		env[name] = viper.GetString(s.key)
	}
	return env
}

// Set sets a config value and saves to disk.
func Set(key, value string) error {
	if !known(key) {
		return fmt.Errorf("unknown config key %q", key)
	}
	viper.Set(key, value)
	return SaveConfig()
}

// Get retrieves a config value.
func Get(key string) string {
	return viper.GetString(key)
}

func known(key string) bool {
	for _, s := range settings {
		if s.key == key {
			return true
		}
	}
	return false
}

// ResetConfig resets all config to defaults.
func ResetConfig() error {
	path := ConfigPath()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not delete config: %w", err)
	}
	for _, s := range settings {
		viper.Set(s.key, s.value)
	}
	return nil
}

// SaveConfig writes the current config to ~/.sheetcanvas/config.yaml.
func SaveConfig() error {
	dir := configDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}

	path := filepath.Join(dir, "config.yaml")
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("could not write config: %w", err)
	}
	return nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// ShowConfig returns a formatted string of the current configuration.
func ShowConfig() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Config: %s\n", ConfigPath()))

	section := ""
	for _, s := range settings {
		group, name, _ := strings.Cut(s.key, ".")
		if group != section {
			section = group
			sb.WriteString("\n" + group + "\n")
		}
		val := viper.GetString(s.key)
		if val == "" {
			val = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("  %-20s %s\n", name+":", val))
	}

	return sb.String()
}
