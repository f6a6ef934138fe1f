package main

import (
	"context"
	"os"

	"github.com/aretw0/automaton/internal/cli"
	"github.com/spf13/cobra"
)

var stepCmd = &cobra.Command{
	Use:   "step <automaton-id>",
	Short: "Feed symbols interactively, one line at a time",
	Long: `Opens a session and feeds each line read from stdin, printing every transition.
Type :state to show the current state and :done (or exit) to finish.
With --session the session is persisted and resumed on the next run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")
		jsonMode, _ := cmd.Flags().GetBool("json")
		confirm, _ := cmd.Flags().GetBool("confirm")
		if !cmd.Flags().Changed("confirm") {
			confirm = cli.IsTerminal(os.Stdin)
		}

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		_, err := cli.RunStep(ctx, cli.StepOptions{
			EngineOptions: engineOptions(cmd),
			AutomatonID:   args[0],
			SessionID:     sessionID,
			Fresh:         fresh,
			JSON:          jsonMode,
			Confirm:       confirm,
		}, os.Stdin, cmd.OutOrStdout())
		return err
	},
}

func init() {
	rootCmd.AddCommand(stepCmd)

	stepCmd.Flags().StringP("session", "s", "", "Persist the session under this ID and resume it if it exists")
	stepCmd.Flags().Bool("fresh", false, "Discard the stored session before starting")
	stepCmd.Flags().Bool("json", false, "Read JSON strings and write one JSON update per line")
	stepCmd.Flags().Bool("confirm", false, "Ask before feeding symbols outside the alphabet (default: on for terminals)")
}
