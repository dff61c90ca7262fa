package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/redraft/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), configPath)
		return err
	},
}

var themeFlags config.ThemeConfig

var configThemeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Set editor colors in the config file",
	Long: `Set editor colors in the config file. Only the given colors change;
comments and other settings in the file are kept.

Example:
  redraft config theme --cursor "#FF8700" --recording "#D70000"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		theme := cfg.UI.Theme
		if cmd.Flags().Changed("text") {
			theme.Text = themeFlags.Text
		}
		if cmd.Flags().Changed("cursor") {
			theme.Cursor = themeFlags.Cursor
		}
		if cmd.Flags().Changed("status") {
			theme.Status = themeFlags.Status
		}
		if cmd.Flags().Changed("recording") {
			theme.Recording = themeFlags.Recording
		}

		if err := config.SaveTheme(configPath, theme); err != nil {
			return fmt.Errorf("saving theme: %w", err)
		}
		cfg.UI.Theme = theme
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Saved theme to %s\n", configPath)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd, configThemeCmd)

	f := configThemeCmd.Flags()
	f.StringVar(&themeFlags.Text, "text", "", "document text color")
	f.StringVar(&themeFlags.Cursor, "cursor", "", "cursor color")
	f.StringVar(&themeFlags.Status, "status", "", "status bar color")
	f.StringVar(&themeFlags.Recording, "recording", "", "macro recording indicator color")
}
