package main

import (
	"fmt"
	"os"

	"github.com/aretw0/automaton/internal/cli"
	"github.com/spf13/cobra"
)

const (
	// EnvRedisURL provides the default for --redis.
	EnvRedisURL = "AUTOMATON_REDIS_URL"
	// EnvSessionKeys seals persisted sessions: comma separated 32-byte keys, hex or base64, active first.
	EnvSessionKeys = "AUTOMATON_SESSION_KEYS"
)

var rootCmd = &cobra.Command{
	Use:   "automaton",
	Short: "Automaton simulates deterministic finite automata",
	Long: `Automaton validates DFA definitions (YAML, JSON or Markdown front matter),
runs input strings through them and reports the verdict with the full trace.
Without --dir the built-in catalog (regex-1, regex-2) is used.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", "", "Directory of automaton definitions (default: built-in catalog)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().Int("max-steps", 0, "Abort runs longer than this many symbols (0 = unlimited)")
	rootCmd.PersistentFlags().String("redis", os.Getenv(EnvRedisURL), "Redis URL for persistent sessions (default: JSON files under <dir>/.automaton/sessions)")
}

func engineOptions(cmd *cobra.Command) cli.EngineOptions {
	dir, _ := cmd.Flags().GetString("dir")
	debug, _ := cmd.Flags().GetBool("debug")
	maxSteps, _ := cmd.Flags().GetInt("max-steps")
	redisURL, _ := cmd.Flags().GetString("redis")

	return cli.EngineOptions{
		RepoPath: dir,
		Debug:    debug,
		MaxSteps: maxSteps,
		RedisURL: redisURL,

		SessionKeys: os.Getenv(EnvSessionKeys),
	}
}
