package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/automaton"
	"github.com/aretw0/automaton/internal/compiler"
	"github.com/aretw0/automaton/internal/presentation/graph"
	"github.com/aretw0/automaton/internal/validator"
	"github.com/aretw0/automaton/pkg/domain"
	"github.com/aretw0/automaton/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CatalogURI is the resource listing every known definition.
const CatalogURI = "automaton://catalog"

// SimulateArgs are the arguments of the simulate tool.
type SimulateArgs struct {
	AutomatonID string `json:"automaton_id"`
	Input       string `json:"input"`
}

// SimulateResponse aligns with the HTTP Result schema so both adapters answer alike.
type SimulateResponse struct {
	AutomatonID string            `json:"automaton_id" jsonschema_description:"The automaton that ran"`
	Input       string            `json:"input" jsonschema_description:"The input as received"`
	Verdict     domain.Verdict    `json:"verdict" jsonschema_description:"accepted, rejected or invalid_input"`
	Accepted    bool              `json:"accepted"`
	FinalState  string            `json:"final_state" jsonschema_description:"State the run ended or halted in"`
	Trace       []domain.Step     `json:"trace" jsonschema_description:"Transitions taken, in order"`
	Rejected    *domain.Rejection `json:"rejected,omitempty" jsonschema_description:"First symbol outside the alphabet, if any"`
}

// ValidateArgs are the arguments of the validate_definition tool.
type ValidateArgs struct {
	Definition string `json:"definition"`
}

// ValidateResponse reports whether a definition is a DFA, and what is odd about it if so.
type ValidateResponse struct {
	Valid      bool               `json:"valid"`
	Violations []domain.Violation `json:"violations,omitempty" jsonschema_description:"Every broken invariant"`
	Warnings   []string           `json:"warnings,omitempty" jsonschema_description:"Unreachable or dead states, empty language"`
}

// Engine defines the interface required by the MCP server. *automaton.Engine satisfies it.
type Engine interface {
	List() ([]string, error)
	Automaton(id string) (*domain.Automaton, error)
	Simulate(ctx context.Context, id, input string) (*domain.Result, error)
}

// Server wraps the Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	parser    *compiler.Parser
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine) *Server {
	s := &Server{
		engine:    engine,
		parser:    compiler.NewParser(),
		mcpServer: server.NewMCPServer("automaton-mcp", strings.TrimSpace(automaton.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		slog.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("CORS Middleware", "method", r.Method, "path", r.URL.Path)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: list_automata
	s.mcpServer.AddTool(mcp.NewTool("list_automata",
		mcp.WithDescription("List the automata that can be simulated, with their alphabet and size."),
	), s.handleListAutomata)

	// TOOL: simulate
	simulateTool := mcp.NewTool("simulate",
		mcp.WithDescription("Run an input string through an automaton and report the verdict and the transitions taken."),
		mcp.WithString("automaton_id", mcp.Required(), mcp.Description("ID of the automaton (see list_automata)")),
		mcp.WithString("input", mcp.Required(), mcp.Description("Input string; every character is one symbol")),
		mcp.WithOutputSchema[SimulateResponse](),
	)
	s.mcpServer.AddTool(simulateTool, mcp.NewStructuredToolHandler(s.handleSimulate))

	// TOOL: get_graph
	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Render the transition graph of an automaton, optionally highlighting the path an input takes."),
		mcp.WithString("automaton_id", mcp.Required(), mcp.Description("ID of the automaton")),
		mcp.WithString("input", mcp.Description("Input whose path is highlighted (optional)")),
		mcp.WithString("format", mcp.Description("mermaid (default), dot or json"), mcp.Enum("mermaid", "dot", "json")),
	), s.handleGetGraph)

	// TOOL: validate_definition
	validateTool := mcp.NewTool("validate_definition",
		mcp.WithDescription("Check whether a definition (JSON or YAML) describes a complete DFA."),
		mcp.WithString("definition", mcp.Required(), mcp.Description("The definition document")),
		mcp.WithOutputSchema[ValidateResponse](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))
}

type automatonSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Alphabet    []string `json:"alphabet"`
	States      int      `json:"states"`
}

func (s *Server) summaries() ([]automatonSummary, error) {
	ids, err := s.engine.List()
	if err != nil {
		return nil, err
	}
	out := make([]automatonSummary, 0, len(ids))
	for _, id := range ids {
		a, err := s.engine.Automaton(id)
		if err != nil {
			return nil, err
		}
		out = append(out, automatonSummary{
			ID:          a.ID(),
			Name:        a.Name(),
			Description: a.Description(),
			Alphabet:    a.Alphabet(),
			States:      len(a.States()),
		})
	}
	return out, nil
}

func (s *Server) handleListAutomata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.summaries()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(list)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleSimulate(ctx context.Context, request mcp.CallToolRequest, args SimulateArgs) (SimulateResponse, error) {
	input, err := runner.SanitizeInput(args.Input)
	if err != nil {
		slog.Warn("MCP Simulate: Input rejected", "error", err, "size", len(args.Input))
		return SimulateResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	res, err := s.engine.Simulate(ctx, args.AutomatonID, input)
	if err != nil {
		return SimulateResponse{}, fmt.Errorf("simulate failed: %w", err)
	}

	return SimulateResponse{
		AutomatonID: res.AutomatonID,
		Input:       res.Input,
		Verdict:     res.Verdict(),
		Accepted:    res.Accepted,
		FinalState:  res.FinalState,
		Trace:       res.Trace,
		Rejected:    res.Rejected,
	}, nil
}

func (s *Server) handleGetGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("automaton_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	a, err := s.engine.Automaton(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get graph failed: %v", err)), nil
	}
	g := a.Graph()

	if input, ok := request.GetArguments()["input"].(string); ok {
		clean, err := runner.SanitizeInput(input)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("input rejected: %v", err)), nil
		}
		res, err := s.engine.Simulate(ctx, id, clean)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("simulate failed: %v", err)), nil
		}
		g = res.Graph()
	}

	switch format := request.GetString("format", "mermaid"); format {
	case "mermaid":
		return mcp.NewToolResultText(graph.GenerateMermaid(g)), nil
	case "dot":
		return mcp.NewToolResultText(graph.GenerateDOT(g)), nil
	case "json":
		jsonBytes, _ := json.Marshal(g)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown format %q", format)), nil
	}
}

// handleValidate reports a malformed definition in the response, not as a tool error.
func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args ValidateArgs) (ValidateResponse, error) {
	def, err := s.parser.Parse([]byte(args.Definition))
	if err != nil {
		return ValidateResponse{}, fmt.Errorf("cannot parse definition: %w", err)
	}

	a, err := domain.NewAutomaton(*def)
	if err != nil {
		if vs := domain.Violations(err); vs != nil {
			return ValidateResponse{Valid: false, Violations: vs}, nil
		}
		return ValidateResponse{}, err
	}

	return ValidateResponse{Valid: true, Warnings: validator.Analyze(a).Warnings()}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: automaton://catalog
	s.mcpServer.AddResource(mcp.NewResource(CatalogURI, "Known automata",
		mcp.WithResourceDescription("Every automaton definition the server can simulate"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.engine.List()
		if err != nil {
			return nil, fmt.Errorf("failed to list automata: %w", err)
		}
		defs := make([]domain.Definition, 0, len(ids))
		for _, id := range ids {
			a, err := s.engine.Automaton(id)
			if err != nil {
				return nil, fmt.Errorf("failed to load automaton %s: %w", id, err)
			}
			defs = append(defs, a.Definition())
		}
		jsonBytes, _ := json.Marshal(defs)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      CatalogURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
