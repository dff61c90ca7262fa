package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/redraft/internal/config"
	"github.com/zjrosen/redraft/internal/editor"
	"github.com/zjrosen/redraft/internal/history"
	"github.com/zjrosen/redraft/internal/log"
	"github.com/zjrosen/redraft/internal/tracing"
)

func init() {
	// Query the terminal background before Bubble Tea owns stdin so the OSC 11
	// reply does not leak into the editor as typed text.
	_ = lipgloss.HasDarkBackground()
}

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool

	cfg        config.Config
	configPath string
	tracer     *tracing.Provider
	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "redraft",
	Short: "A terminal text editor with undo, redo and macros",
	Long: `redraft is a small terminal text editor built around a command history.
Every edit can be undone and redone, and edits can be grouped into macros
that undo as one step. Edit scripts replay a sequence of edits in batch.`,
	Version:            version,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
	RunE:               runEdit,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/redraft/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write debug logs (also enabled by REDRAFT_DEBUG)")
}

// setup initializes logging, configuration and tracing for every command.
func setup(cmd *cobra.Command, _ []string) error {
	if debugFlag || os.Getenv("REDRAFT_DEBUG") != "" {
		logPath := os.Getenv("REDRAFT_LOG")
		if logPath == "" {
			logPath = "debug.log"
		}
		cleanup, err := log.InitWithTeaLog(logPath, "redraft")
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		logCleanup = cleanup
		log.Info(log.CatConfig, "redraft starting", "version", version, "logPath", logPath)
	}

	v := viper.New()
	loaded, path, err := loadConfig(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded
	configPath = path

	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		log.SetMinLevel(level)
	}

	tracer, err = tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	log.Debug(log.CatConfig, "command ready", "cmd", cmd.Name(), "config", configPath)
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	var err error
	if tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = tracer.Shutdown(ctx)
		tracer = nil
	}
	if logCleanup != nil {
		logCleanup()
		logCleanup = nil
	}
	return err
}

// loadConfig resolves and reads the config file into a validated Config.
//
// Lookup order when path is empty:
//  1. .redraft/config.yaml (current directory)
//  2. ~/.config/redraft/config.yaml, written with defaults when missing
//
// REDRAFT_* environment variables override file values, for example
// REDRAFT_HISTORY_MAX_DEPTH=50.
func loadConfig(v *viper.Viper, path string) (config.Config, string, error) {
	config.SetDefaults(v)
	v.SetEnvPrefix("redraft")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = defaultConfigPath()
	}
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound), errors.Is(err, os.ErrNotExist):
			if writeErr := config.WriteDefaultConfig(path); writeErr != nil {
				log.Warn(log.CatConfig, "Continuing with built-in defaults", "error", writeErr)
			}
		default:
			return config.Config{}, "", fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	loaded, err := config.Load(v)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return loaded, path, nil
}

func defaultConfigPath() string {
	local := filepath.Join(".redraft", "config.yaml")
	if _, err := os.Stat(local); err == nil {
		return local
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return local
	}
	return filepath.Join(home, ".config", "redraft", "config.yaml")
}

// newSession builds a session wired to the configured history depth and
// tracer.
func newSession(c config.Config, p *tracing.Provider) *editor.Session {
	opts := []history.Option{history.WithMaxDepth(c.History.MaxDepth)}
	if p != nil {
		opts = append(opts, history.WithTracer(p.Tracer()))
	}
	return editor.New(
		editor.WithInitialText(c.Editor.InitialText),
		editor.WithHistory(history.New(opts...)),
	)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
