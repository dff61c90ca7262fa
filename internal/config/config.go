// Package config provides configuration types, defaults and persistence for
// redraft.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/viper"

	"github.com/zjrosen/redraft/internal/flags"
	"github.com/zjrosen/redraft/internal/log"
	"github.com/zjrosen/redraft/internal/tracing"
)

// Config holds all configuration options for redraft.
type Config struct {
	History HistoryConfig  `mapstructure:"history"`
	Editor  EditorConfig   `mapstructure:"editor"`
	UI      UIConfig       `mapstructure:"ui"`
	Log     LogConfig      `mapstructure:"log"`
	Tracing tracing.Config `mapstructure:"tracing"`
	// Flags switches optional features on or off by name.
	Flags map[string]bool `mapstructure:"flags"`
}

// HistoryConfig controls the undo/redo stacks.
type HistoryConfig struct {
	// MaxDepth caps the undo stack. 0 means unlimited.
	MaxDepth int `mapstructure:"max_depth"`
}

// EditorConfig controls the document a session starts with.
type EditorConfig struct {
	// InitialText is loaded into the document before history tracking begins.
	InitialText string `mapstructure:"initial_text"`
}

// UIConfig holds interactive editor options.
type UIConfig struct {
	ShowStatusBar bool        `mapstructure:"show_status_bar"`
	ShowCursor    bool        `mapstructure:"show_cursor"`
	Theme         ThemeConfig `mapstructure:"theme"`
}

// ThemeConfig holds hex colors for the interactive editor.
type ThemeConfig struct {
	Text      string `mapstructure:"text" yaml:"text"`
	Cursor    string `mapstructure:"cursor" yaml:"cursor"`
	Status    string `mapstructure:"status" yaml:"status"`
	Recording string `mapstructure:"recording" yaml:"recording"`
}

// LogConfig controls debug logging.
type LogConfig struct {
	// Level is the minimum level written: debug, info, warn or error.
	Level string `mapstructure:"level"`
	// Path is the debug log file used when --debug is set.
	Path string `mapstructure:"path"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		History: HistoryConfig{MaxDepth: 0},
		UI: UIConfig{
			ShowStatusBar: true,
			ShowCursor:    true,
			Theme:         DefaultTheme(),
		},
		Log: LogConfig{
			Level: "debug",
			Path:  "debug.log",
		},
		Tracing: tracing.DefaultConfig(),
		Flags:   flags.Defaults(),
	}
}

// DefaultTheme returns the default editor colors.
func DefaultTheme() ThemeConfig {
	return ThemeConfig{
		Text:      "#E0E0E0",
		Cursor:    "#7D56F4",
		Status:    "#8A8A8A",
		Recording: "#FF5F87",
	}
}

// DefaultTracesFilePath returns ~/.config/redraft/traces/traces.jsonl, or a
// relative path when the home directory is unknown.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".redraft", "traces", "traces.jsonl")
	}
	return filepath.Join(home, ".config", "redraft", "traces", "traces.jsonl")
}

// SetDefaults registers Defaults() on v so unset keys fall back to them.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("history.max_depth", d.History.MaxDepth)
	v.SetDefault("editor.initial_text", d.Editor.InitialText)
	v.SetDefault("ui.show_status_bar", d.UI.ShowStatusBar)
	v.SetDefault("ui.show_cursor", d.UI.ShowCursor)
	v.SetDefault("ui.theme.text", d.UI.Theme.Text)
	v.SetDefault("ui.theme.cursor", d.UI.Theme.Cursor)
	v.SetDefault("ui.theme.status", d.UI.Theme.Status)
	v.SetDefault("ui.theme.recording", d.UI.Theme.Recording)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.path", d.Log.Path)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	for name, on := range d.Flags {
		v.SetDefault("flags."+name, on)
	}
}

// Load decodes v into a Config and validates it. Defaults must already be
// registered with SetDefaults.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Tracing.Enabled && cfg.Tracing.Exporter == tracing.ExporterFile && cfg.Tracing.FilePath == "" {
		cfg.Tracing.FilePath = DefaultTracesFilePath()
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate checks every section and joins all problems found.
func Validate(cfg Config) error {
	var errs []error
	if cfg.History.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("history.max_depth must be >= 0, got %d", cfg.History.MaxDepth))
	}
	if _, err := log.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if err := ValidateTheme(cfg.UI.Theme); err != nil {
		errs = append(errs, err)
	}
	if err := cfg.Tracing.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ValidateTheme checks that every non-empty color is a hex color.
func ValidateTheme(theme ThemeConfig) error {
	colors := []struct {
		key, value string
	}{
		{"text", theme.Text},
		{"cursor", theme.Cursor},
		{"status", theme.Status},
		{"recording", theme.Recording},
	}
	for _, c := range colors {
		if c.value != "" && !hexColor.MatchString(c.value) {
			return fmt.Errorf("ui.theme.%s: invalid hex color %q", c.key, c.value)
		}
	}
	return nil
}

// DefaultConfigTemplate returns the commented config written on first run.
func DefaultConfigTemplate() string {
	return `# redraft configuration

history:
  max_depth: 0            # Undo entries kept; 0 keeps everything

editor:
  # initial_text: "Hello"  # Preloaded text, not part of the undo history

ui:
  show_status_bar: true
  show_cursor: true
  theme:
    text: "#E0E0E0"
    cursor: "#7D56F4"
    status: "#8A8A8A"
    recording: "#FF5F87"

log:
  level: debug            # debug, info, warn, error (only with --debug)
  path: debug.log

tracing:
  enabled: false
  exporter: file          # none, file, stdout, otlp
  # file_path: ~/.config/redraft/traces/traces.jsonl
  otlp_endpoint: localhost:4317
  sample_rate: 1.0
  service_name: redraft

flags:
  macro-recording: true   # ctrl+r records macros in the editor
  log-tail: false         # show the latest debug log line (with --debug)
`
}

// WriteDefaultConfig writes DefaultConfigTemplate to configPath, creating
// parent directories.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
