package main

import (
	"fmt"

	"github.com/aretw0/automaton"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of automaton",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "automaton version %s\n", automaton.VersionString())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
