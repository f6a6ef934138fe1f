package main

import (
	"context"

	"github.com/aretw0/automaton/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [automaton-id...]",
	Short: "Check that definitions describe complete DFAs",
	Long: `Validates every definition (or the given ones) and reports all violations at once:
unknown initial or final states, symbols that are not one character, missing or
dangling transitions. Valid automata are also checked for unreachable and dead states.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool("watch")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		return cli.Validate(ctx, cli.ValidateOptions{
			EngineOptions: engineOptions(cmd),
			IDs:           args,
			Watch:         watch,
		}, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolP("watch", "w", false, "Re-validate whenever a definition changes")
}
