package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/redraft/internal/script"
)

var demoDiff bool

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the built-in walkthrough",
	Long: `Run the built-in walkthrough: type "Hello" and " World", delete six
characters, undo twice, redo once and finish with a three-step macro.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runScript(cmd.Context(), cmd.OutOrStdout(), script.Demo(), demoDiff)
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().BoolVar(&demoDiff, "diff", false, "show the content change made by each step")
}
