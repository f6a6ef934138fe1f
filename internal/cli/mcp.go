package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/automaton/internal/logging"
	"github.com/aretw0/automaton/pkg/adapters/mcp"
)

// MCPOptions configures the MCP server.
type MCPOptions struct {
	EngineOptions
	// Transport is "stdio" (default) or "sse".
	Transport string
	Port      int
}

// ServeMCP exposes the engine as MCP tools. Logs always go to Stderr so they
// never corrupt the JSON-RPC stream on Stdout.
func ServeMCP(ctx context.Context, opts MCPOptions) error {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	logger := logging.NewJSON(os.Stderr, level)
	slog.SetDefault(logger)

	engine, err := createEngine(opts.EngineOptions, logger)
	if err != nil {
		return err
	}
	srv := mcp.NewServer(engine)

	switch opts.Transport {
	case "", "stdio":
		logger.Info("Starting Automaton MCP Server (Stdio)")
		return srv.ServeStdio()
	case "sse":
		logger.Info("Starting Automaton MCP Server (SSE)", "port", opts.Port)
		if err := srv.ServeSSE(ctx, opts.Port); err != nil {
			return err
		}
		logger.Info("MCP Server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", opts.Transport)
	}
}
