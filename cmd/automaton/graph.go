package main

import (
	"github.com/aretw0/automaton/internal/cli"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <automaton-id>",
	Short: "Render the transition graph",
	Long:  `Prints the transition graph as Mermaid, Graphviz DOT or JSON. With --input the path taken by that input is highlighted.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		opts := cli.GraphOptions{
			EngineOptions: engineOptions(cmd),
			AutomatonID:   args[0],
			Format:        format,
		}
		if cmd.Flags().Changed("input") {
			input, _ := cmd.Flags().GetString("input")
			opts.Input = &input
		}
		return cli.Graph(cmd.Context(), opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("format", "mermaid", "Output format: mermaid, dot or json")
	graphCmd.Flags().StringP("input", "i", "", "Highlight the path taken by this input")
}
