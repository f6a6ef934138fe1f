package main

import (
	"os"

	"github.com/aretw0/automaton/internal/cli"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <automaton-id> [input...]",
	Short: "Run input strings through an automaton",
	Long: `Runs every input through the automaton and prints one verdict per input:
accepted, rejected, or invalid_input when a symbol outside the alphabet halts the run.
Inputs come from the arguments and, with --file, one per line from a file ("-" for stdin).
Pass "" to test the empty string.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		jsonMode, _ := cmd.Flags().GetBool("json")
		report, _ := cmd.Flags().GetBool("report")
		graph, _ := cmd.Flags().GetString("graph")
		workers, _ := cmd.Flags().GetInt("workers")
		strict, _ := cmd.Flags().GetBool("strict")

		summary, err := cli.Simulate(cmd.Context(), cli.SimulateOptions{
			EngineOptions: engineOptions(cmd),
			AutomatonID:   args[0],
			Inputs:        args[1:],
			File:          file,
			JSON:          jsonMode,
			Report:        report,
			Graph:         graph,
			Workers:       workers,
		}, cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if strict && !summary.AllAccepted() {
			os.Exit(2)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringP("file", "f", "", "Read inputs from a file, one per line (\"-\" for stdin)")
	simulateCmd.Flags().Bool("json", false, "Print one JSON result per line")
	simulateCmd.Flags().Bool("report", false, "Print a markdown report with the full trace")
	simulateCmd.Flags().String("graph", "", "Also print the highlighted graph: mermaid or dot")
	simulateCmd.Flags().Int("workers", 0, "Parallel runs (default: GOMAXPROCS)")
	simulateCmd.Flags().Bool("strict", false, "Exit with status 2 unless every input is accepted")
}
