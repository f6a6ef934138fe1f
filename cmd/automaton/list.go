package main

import (
	"github.com/aretw0/automaton/internal/cli"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the available automata",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.List(engineOptions(cmd), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
