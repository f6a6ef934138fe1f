package main

import (
	"context"

	"github.com/aretw0/automaton/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes the engine as a JSON API over HTTP: simulation, batch runs, graphs,
definition validation, incremental sessions with SSE updates, and Prometheus metrics.
The OpenAPI document is served at /openapi.yaml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		persist, _ := cmd.Flags().GetBool("persist")
		logFormat, _ := cmd.Flags().GetString("log-format")
		logLevel, _ := cmd.Flags().GetString("log-level")

		opts := engineOptions(cmd)
		opts.Persist = persist || opts.RedisURL != ""

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		return cli.Serve(ctx, cli.ServeOptions{
			EngineOptions: opts,
			Port:          port,
			LogFormat:     logFormat,
			LogLevel:      logLevel,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().Bool("persist", false, "Keep sessions on disk instead of in memory")
	serveCmd.Flags().String("log-format", "text", "Log format: text or json")
	serveCmd.Flags().String("log-level", "info", "Log level: debug, info, warn or error")
}
