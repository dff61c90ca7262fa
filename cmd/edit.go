package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/zjrosen/redraft/internal/flags"
	uieditor "github.com/zjrosen/redraft/internal/ui/editor"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the interactive editor",
	Long: `Open the interactive editor. Type to insert text, backspace deletes,
ctrl+z undoes, ctrl+y redoes, ctrl+r starts and stops macro recording and
ctrl+l clears the history. Press esc to quit.`,
	Args: cobra.NoArgs,
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	s := newSession(cfg, tracer)
	defer s.Close()

	model := uieditor.New(ctx, s, cfg.UI, uieditor.WithFlags(flags.New(cfg.Flags)))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running editor: %w", err)
	}

	snap := s.Snapshot()
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), snap.Content)
	return nil
}
