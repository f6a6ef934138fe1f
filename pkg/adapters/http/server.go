package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/automaton"
	"github.com/aretw0/automaton/internal/compiler"
	"github.com/aretw0/automaton/internal/presentation/graph"
	"github.com/aretw0/automaton/internal/runtime"
	"github.com/aretw0/automaton/internal/validator"
	"github.com/aretw0/automaton/pkg/domain"
	"github.com/aretw0/automaton/pkg/runner"
	"github.com/aretw0/automaton/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodySize bounds every request body. Inputs are further bounded by runner.SanitizeInput.
const maxBodySize = 1 << 20

// Engine defines the interface for the automaton engine the API serves.
// *automaton.Engine satisfies it.
type Engine interface {
	List() ([]string, error)
	Automaton(id string) (*domain.Automaton, error)
	Simulate(ctx context.Context, id, input string) (*domain.Result, error)
	SimulateBatch(ctx context.Context, id string, inputs []string, workers int) ([]*domain.Result, error)

	Start(ctx context.Context, id, sessionID string) (*domain.Session, error)
	Feed(ctx context.Context, sessionID, symbols string) (*domain.Session, error)
	Finish(ctx context.Context, sessionID string) (*domain.Result, error)
	Session(ctx context.Context, sessionID string) (*domain.Session, error)
	Sessions(ctx context.Context) ([]string, error)
	DeleteSession(ctx context.Context, sessionID string) error

	Watch(ctx context.Context) (<-chan struct{}, error)
}

// Server holds the handlers of the HTTP API.
type Server struct {
	Engine  Engine
	Streams *StreamManager

	parser   *compiler.Parser
	gatherer prometheus.Gatherer
}

// Option configures the Server.
type Option func(*Server)

// WithGatherer sets the registry exposed on /metrics. Defaults to prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	server := &Server{
		Engine:   engine,
		Streams:  NewStreamManager(),
		parser:   compiler.NewParser(),
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()

	// Swagger UI
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec())
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Handle("/metrics", promhttp.HandlerFor(server.gatherer, promhttp.HandlerOpts{}))
	r.Get("/events", server.SubscribeEvents)

	r.Post("/validate", server.ValidateDefinition)

	r.Route("/automata", func(r chi.Router) {
		r.Get("/", server.ListAutomata)
		r.Get("/{id}", server.GetAutomaton)
		r.Post("/{id}/simulate", server.Simulate)
		r.Post("/{id}/batch", server.SimulateBatch)
		r.Get("/{id}/graph", server.GetGraph)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", server.ListSessions)
		r.Post("/", server.StartSession)
		r.Get("/{sid}", server.GetSession)
		r.Delete("/{sid}", server.DeleteSession)
		r.Post("/{sid}/feed", server.FeedSession)
		r.Get("/{sid}/result", server.GetSessionResult)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Automaton API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// -- Request / response bodies --

type simulateRequest struct {
	Input *string `json:"input"`
}

type batchRequest struct {
	Inputs  []string `json:"inputs"`
	Workers int      `json:"workers"`
}

type startSessionRequest struct {
	AutomatonID string `json:"automaton_id"`
	SessionID   string `json:"session_id"`
}

type feedRequest struct {
	Symbols *string `json:"symbols"`
}

// resultResponse is a Result with its verdict spelled out.
type resultResponse struct {
	*domain.Result
	Outcome domain.Verdict `json:"verdict"`
}

func newResultResponse(res *domain.Result) resultResponse {
	return resultResponse{Result: res, Outcome: res.Verdict()}
}

type validationResponse struct {
	validator.Report
	Warnings []string `json:"warnings,omitempty"`
}

type errorResponse struct {
	Error      string             `json:"error"`
	Violations []domain.Violation `json:"violations,omitempty"`
}

// -- Handlers --

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	} else if err != nil {
		slog.Error("Failed to load OpenAPI spec", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "automaton-http",
		"version":     strings.TrimSpace(automaton.Version),
		"api_version": apiVersion,
	})
}

// ListAutomata handles the GET /automata request.
func (s *Server) ListAutomata(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Engine.List()
	if err != nil {
		s.fail(w, "ListAutomata", err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

// GetAutomaton handles the GET /automata/{id} request.
func (s *Server) GetAutomaton(w http.ResponseWriter, r *http.Request) {
	a, err := s.Engine.Automaton(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "GetAutomaton", err)
		return
	}
	writeJSON(w, http.StatusOK, a.Definition())
}

// Simulate handles the POST /automata/{id}/simulate request.
func (s *Server) Simulate(w http.ResponseWriter, r *http.Request) {
	var body simulateRequest
	if !s.decode(w, r, "Simulate", &body) {
		return
	}
	if body.Input == nil {
		s.badRequest(w, "Simulate", "input is required")
		return
	}

	input, err := runner.SanitizeInput(*body.Input)
	if err != nil {
		s.fail(w, "Simulate", err)
		return
	}

	res, err := s.Engine.Simulate(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		s.fail(w, "Simulate", err)
		return
	}
	writeJSON(w, http.StatusOK, newResultResponse(res))
}

// SimulateBatch handles the POST /automata/{id}/batch request.
func (s *Server) SimulateBatch(w http.ResponseWriter, r *http.Request) {
	var body batchRequest
	if !s.decode(w, r, "SimulateBatch", &body) {
		return
	}
	if body.Inputs == nil {
		s.badRequest(w, "SimulateBatch", "inputs is required")
		return
	}

	for i, input := range body.Inputs {
		if _, err := runner.SanitizeInput(input); err != nil {
			s.fail(w, "SimulateBatch", fmt.Errorf("inputs[%d]: %w", i, err))
			return
		}
	}

	results, err := s.Engine.SimulateBatch(r.Context(), chi.URLParam(r, "id"), body.Inputs, body.Workers)
	if err != nil {
		s.fail(w, "SimulateBatch", err)
		return
	}

	resp := make([]resultResponse, len(results))
	for i, res := range results {
		resp[i] = newResultResponse(res)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetGraph handles the GET /automata/{id}/graph request.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	query := r.URL.Query()

	format := query.Get("format")
	switch format {
	case "", "json", "mermaid", "dot":
	default:
		s.badRequest(w, "GetGraph", fmt.Sprintf("unknown format %q (want json, mermaid or dot)", format))
		return
	}

	a, err := s.Engine.Automaton(id)
	if err != nil {
		s.fail(w, "GetGraph", err)
		return
	}
	g := a.Graph()

	if query.Has("input") {
		input, err := runner.SanitizeInput(query.Get("input"))
		if err != nil {
			s.fail(w, "GetGraph", err)
			return
		}
		res, err := s.Engine.Simulate(r.Context(), id, input)
		if err != nil {
			s.fail(w, "GetGraph", err)
			return
		}
		g = res.Graph()
	}

	switch format {
	case "mermaid":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, graph.GenerateMermaid(g))
	case "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		io.WriteString(w, graph.GenerateDOT(g))
	default:
		writeJSON(w, http.StatusOK, g)
	}
}

// ValidateDefinition handles the POST /validate request. The body is a
// definition in JSON or YAML.
func (s *Server) ValidateDefinition(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.fail(w, "ValidateDefinition", err)
		return
	}

	def, err := s.parser.Parse(data)
	if err != nil {
		s.badRequest(w, "ValidateDefinition", err.Error())
		return
	}

	a, err := domain.NewAutomaton(*def)
	if err != nil {
		s.fail(w, "ValidateDefinition", err)
		return
	}

	report := validator.Analyze(a)
	writeJSON(w, http.StatusOK, validationResponse{Report: report, Warnings: report.Warnings()})
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Engine.Sessions(r.Context())
	if err != nil {
		s.fail(w, "ListSessions", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

// StartSession handles the POST /sessions request.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	var body startSessionRequest
	if !s.decode(w, r, "StartSession", &body) {
		return
	}
	if body.AutomatonID == "" {
		s.badRequest(w, "StartSession", "automaton_id is required")
		return
	}

	sess, err := s.Engine.Start(r.Context(), body.AutomatonID, body.SessionID)
	if err != nil {
		s.fail(w, "StartSession", err)
		return
	}
	slog.Debug("StartSession: Session created", "session_id", sess.ID, "automaton", sess.AutomatonID)
	writeJSON(w, http.StatusCreated, sess)
}

// GetSession handles the GET /sessions/{sid} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Engine.Session(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		s.fail(w, "GetSession", err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// DeleteSession handles the DELETE /sessions/{sid} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.DeleteSession(r.Context(), chi.URLParam(r, "sid")); err != nil {
		s.fail(w, "DeleteSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FeedSession handles the POST /sessions/{sid}/feed request and broadcasts the
// transitions taken to the session's event subscribers.
func (s *Server) FeedSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sid")

	var body feedRequest
	if !s.decode(w, r, "FeedSession", &body) {
		return
	}
	if body.Symbols == nil {
		s.badRequest(w, "FeedSession", "symbols is required")
		return
	}

	symbols, err := runner.SanitizeInput(*body.Symbols)
	if err != nil {
		s.fail(w, "FeedSession", err)
		return
	}

	next, err := s.Engine.Feed(r.Context(), sessionID, symbols)
	if err != nil {
		s.fail(w, "FeedSession", err)
		return
	}

	update := runner.Update{Session: next, Steps: fedSteps(next, symbols)}
	if bytes, err := json.Marshal(update); err == nil {
		s.Streams.Broadcast(sessionID, string(bytes))
	}

	writeJSON(w, http.StatusOK, next)
}

// fedSteps returns the steps that feeding symbols appended to next.Trace.
// Every recognized symbol yields one step, and a halting feed stops at the first
// occurrence of the rejected rune, so the count follows from symbols alone.
func fedSteps(next *domain.Session, symbols string) []domain.Step {
	n := utf8.RuneCountInString(symbols)
	if next.Rejected != nil {
		if i := strings.Index(symbols, next.Rejected.Symbol); i >= 0 {
			n = utf8.RuneCountInString(symbols[:i])
		}
	}
	n = min(n, len(next.Trace))
	return next.Trace[len(next.Trace)-n:]
}

// GetSessionResult handles the GET /sessions/{sid}/result request.
func (s *Server) GetSessionResult(w http.ResponseWriter, r *http.Request) {
	res, err := s.Engine.Finish(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		s.fail(w, "GetSessionResult", err)
		return
	}
	writeJSON(w, http.StatusOK, newResultResponse(res))
}

// SubscribeEvents handles the GET /events request (SSE).
// Without session_id it streams definition reloads; with it, the updates of that session.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		slog.Error("SubscribeEvents: Streaming not supported")
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		s.streamReloads(w, r, flusher)
		return
	}

	slog.Info("SSE: Subscribing to Session Updates", "session_id", sessionID)

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	writeEventHeaders(w)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			slog.Info("SSE Client Disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: update\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) streamReloads(w http.ResponseWriter, r *http.Request, flusher http.Flusher) {
	slog.Info("SSE: Subscribing to definition reloads")
	events, err := s.Engine.Watch(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Watch error: %v", err), http.StatusNotImplemented)
		slog.Warn("SubscribeEvents: Watch unavailable", "error", err)
		return
	}

	writeEventHeaders(w)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: reload\ndata: definitions changed\n\n")
			flusher.Flush()
		}
	}
}

// -- Helpers --

func writeEventHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}

// decode reads a JSON body into v, answering the request itself on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, op string, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, op, err)
			return false
		}
		s.badRequest(w, op, "Invalid request body")
		slog.Warn(op+": Invalid request body", "error", err)
		return false
	}
	return true
}

func (s *Server) badRequest(w http.ResponseWriter, op, msg string) {
	slog.Warn(op+": Bad request", "reason", msg)
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// fail maps err to a status code and writes it as an errorResponse.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error(op+" failed", "error", err)
	} else {
		slog.Warn(op+": Request rejected", "error", err, "status", status)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Violations: domain.Violations(err)})
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrDefinitionNotFound), errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrMalformedAutomaton):
		return http.StatusUnprocessableEntity
	case errors.Is(err, runner.ErrInputTooLarge), errors.Is(err, runtime.ErrInputTooLong), errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, runner.ErrInvalidUTF8):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrSessionExists), errors.Is(err, runtime.ErrSessionHalted), errors.Is(err, runtime.ErrAutomatonMismatch),
		errors.Is(err, runtime.ErrSessionCorrupt):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
