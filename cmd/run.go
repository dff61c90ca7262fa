package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/redraft/internal/editor"
	"github.com/zjrosen/redraft/internal/log"
	"github.com/zjrosen/redraft/internal/render"
	"github.com/zjrosen/redraft/internal/script"
	"github.com/zjrosen/redraft/internal/watcher"
)

var (
	runDiff  bool
	runWatch bool
)

var runCmd = &cobra.Command{
	Use:   "run <script.yaml>",
	Short: "Run an edit script",
	Long: `Run an edit script and print the editor state after each step.

Example script:
  name: greeting
  steps:
    - insert: "Hello"
    - insert: " World"
    - delete: 6
    - undo: 1
    - expect: {content: "Hello World", cursor: 11}`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if runWatch {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watchScript(ctx, cmd.OutOrStdout(), args[0], runDiff)
		}
		return loadAndRun(cmd.Context(), cmd.OutOrStdout(), args[0], runDiff)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runDiff, "diff", false, "show the content change made by each step")
	runCmd.Flags().BoolVarP(&runWatch, "watch", "w", false, "run again on a fresh session each time the script is saved")
}

func loadAndRun(ctx context.Context, w io.Writer, path string, showDiff bool) error {
	sc, err := script.Load(path)
	if err != nil {
		return err
	}
	return runScript(ctx, w, sc, showDiff)
}

// watchScript runs the script now and after every save until ctx is done.
// Failures are printed rather than returned so watching continues.
func watchScript(ctx context.Context, w io.Writer, path string, showDiff bool) error {
	fw, err := watcher.Watch(ctx, watcher.DefaultConfig(path))
	if err != nil {
		return err
	}
	defer func() { _ = fw.Close() }()

	for {
		if err := loadAndRun(ctx, w, path, showDiff); err != nil {
			_, _ = fmt.Fprintf(w, "error: %v\n", err)
		}
		_, _ = fmt.Fprintf(w, "watching %s for changes (ctrl+c to stop)\n\n", path)

		select {
		case <-ctx.Done():
			return nil
		case save, ok := <-fw.Saves():
			if !ok {
				return nil
			}
			log.Debug(log.CatScript, "Script saved, running again", "path", save.Path, "seq", save.Seq)
		}
	}
}

// runScript executes sc on a fresh session and prints every editing step.
func runScript(ctx context.Context, w io.Writer, sc script.Script, showDiff bool) error {
	s := newSession(cfg, tracer)
	defer s.Close()

	r := render.New(render.StylesFromTheme(cfg.UI.Theme))
	_, _ = fmt.Fprintf(w, "=== %s ===\n\n", sc.Name)

	obs := script.ObserverFunc(func(i int, step script.Step, before, after editor.Snapshot) {
		if step.Op == script.OpExpect {
			return
		}
		_, _ = fmt.Fprintln(w, r.Step(i, step.String(), before, after, showDiff))
		_, _ = fmt.Fprintln(w)
	})

	if err := script.Run(ctx, s, sc, obs); err != nil {
		return fmt.Errorf("script %s: %w", sc.Name, err)
	}

	_, _ = fmt.Fprintf(w, "=== done: %d steps ===\n", len(sc.Steps))
	return nil
}
