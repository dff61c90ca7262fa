package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/redraft/internal/flags"
	"github.com/zjrosen/redraft/internal/tracing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	require.Equal(t, 0, cfg.History.MaxDepth)
	require.Empty(t, cfg.Editor.InitialText)
	require.True(t, cfg.UI.ShowStatusBar)
	require.True(t, cfg.UI.ShowCursor)
	require.Equal(t, DefaultTheme(), cfg.UI.Theme)
	require.Equal(t, "debug", cfg.Log.Level)
	require.False(t, cfg.Tracing.Enabled)
	require.NoError(t, Validate(cfg))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"negative depth", func(c *Config) { c.History.MaxDepth = -1 }, "history.max_depth"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad color", func(c *Config) { c.UI.Theme.Cursor = "purple" }, "ui.theme.cursor"},
		{"short hex ok", func(c *Config) { c.UI.Theme.Text = "#fff" }, ""},
		{"empty color ok", func(c *Config) { c.UI.Theme.Status = "" }, ""},
		{"bad exporter", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.Exporter = "zipkin"
		}, "unsupported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidate_JoinsErrors(t *testing.T) {
	cfg := Defaults()
	cfg.History.MaxDepth = -2
	cfg.Log.Level = "nope"

	err := Validate(cfg)
	require.ErrorContains(t, err, "history.max_depth")
	require.ErrorContains(t, err, "log.level")
}

func TestLoad_FromYAML(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
history:
  max_depth: 25
editor:
  initial_text: "Hello"
ui:
  show_cursor: false
  theme:
    cursor: "#00FF00"
`)))

	cfg, err := Load(v)
	require.NoError(t, err)
	require.Equal(t, 25, cfg.History.MaxDepth)
	require.Equal(t, "Hello", cfg.Editor.InitialText)
	require.False(t, cfg.UI.ShowCursor)
	require.True(t, cfg.UI.ShowStatusBar, "unset keys keep defaults")
	require.Equal(t, "#00FF00", cfg.UI.Theme.Cursor)
	require.Equal(t, DefaultTheme().Text, cfg.UI.Theme.Text)
	require.True(t, cfg.Flags[flags.FlagMacroRecording])
}

func TestLoad_FlagsMergeWithDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader("flags:\n  log-tail: true\n")))

	cfg, err := Load(v)
	require.NoError(t, err)
	require.True(t, cfg.Flags[flags.FlagLogTail])
	require.True(t, cfg.Flags[flags.FlagMacroRecording])
}

func TestLoad_FileTracingGetsDefaultPath(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("tracing.enabled", true)

	cfg, err := Load(v)
	require.NoError(t, err)
	require.Equal(t, tracing.ExporterFile, cfg.Tracing.Exporter)
	require.Equal(t, DefaultTracesFilePath(), cfg.Tracing.FilePath)
}

func TestLoad_Invalid(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("history.max_depth", -5)

	_, err := Load(v)
	require.ErrorContains(t, err, "history.max_depth")
}

func TestDefaultConfigTemplate_MatchesDefaults(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(DefaultConfigTemplate())))

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	d := Defaults()
	require.Equal(t, d.History, cfg.History)
	require.Equal(t, d.UI, cfg.UI)
	require.Equal(t, d.Log, cfg.Log)
	require.Equal(t, d.Tracing, cfg.Tracing)
	require.Equal(t, d.Flags, cfg.Flags)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "redraft", "config.yaml")

	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))
}
