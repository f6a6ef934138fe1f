package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/automaton"
	"github.com/aretw0/automaton/pkg/adapters/memory"
	"github.com/aretw0/automaton/pkg/catalog"
	"github.com/aretw0/automaton/pkg/domain"
	"github.com/aretw0/automaton/pkg/observability"
	"github.com/aretw0/automaton/pkg/runner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, opts ...automaton.Option) http.Handler {
	t.Helper()
	eng, err := automaton.New("", opts...)
	require.NoError(t, err)
	return NewHandler(eng, WithGatherer(prometheus.NewRegistry()))
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestGetSwagger(t *testing.T) {
	doc, err := GetSwagger()
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", doc.Info.Version)
	assert.NotNil(t, doc.Paths.Find("/automata/{id}/simulate"))
}

func TestGetInfo(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "GET", "/info", "")
	require.Equal(t, http.StatusOK, w.Code)

	info := decodeJSON[map[string]string](t, w)
	assert.Equal(t, "automaton-http", info["app"])
	assert.Equal(t, strings.TrimSpace(automaton.Version), info["version"])
	assert.Equal(t, "1.0.0", info["api_version"])

	w = do(t, h, "GET", "/openapi.yaml", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")

	w = do(t, h, "GET", "/health", "")
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCORS(t *testing.T) {
	w := do(t, newTestHandler(t), "OPTIONS", "/automata", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAutomata(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "GET", "/automata", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{catalog.RegexAB, catalog.RegexBinary}, decodeJSON[[]string](t, w))

	w = do(t, h, "GET", "/automata/regex-2", "")
	require.Equal(t, http.StatusOK, w.Code)
	def := decodeJSON[domain.Definition](t, w)
	assert.Equal(t, "0", def.Initial)
	assert.Equal(t, []string{"5"}, def.Finals)
	assert.Len(t, def.States, 9)

	w = do(t, h, "GET", "/automata/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSimulate(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name    string
		body    string
		status  int
		verdict string
	}{
		{"Accepted", `{"input":"00101"}`, http.StatusOK, "accepted"},
		{"Rejected", `{"input":"01"}`, http.StatusOK, "rejected"},
		{"Empty String", `{"input":""}`, http.StatusOK, "rejected"},
		{"Unrecognized Symbol", `{"input":"0x1"}`, http.StatusOK, "invalid_input"},
		{"Missing Input", `{}`, http.StatusBadRequest, ""},
		{"Invalid Body", `{"input":`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, "POST", "/automata/regex-2/simulate", tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.verdict != "" {
				resp := decodeJSON[map[string]any](t, w)
				assert.Equal(t, tt.verdict, resp["verdict"])
			}
		})
	}

	w := do(t, h, "POST", "/automata/regex-2/simulate", `{"input":"0x1"}`)
	var res domain.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotNil(t, res.Rejected)
	assert.Equal(t, 1, res.Rejected.Index)
	assert.Equal(t, "x", res.Rejected.Symbol)
	assert.Equal(t, "1", res.FinalState)

	w = do(t, h, "POST", "/automata/missing/simulate", `{"input":"0"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSimulate_InputTooLarge(t *testing.T) {
	t.Setenv(runner.EnvMaxInputSize, "4")
	h := newTestHandler(t)

	w := do(t, h, "POST", "/automata/regex-2/simulate", `{"input":"000000"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = do(t, h, "POST", "/automata/regex-2/batch", `{"inputs":["0","000000"]}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "inputs[1]")
}

func TestSimulate_StepLimit(t *testing.T) {
	h := newTestHandler(t, automaton.WithMaxSteps(3))

	w := do(t, h, "POST", "/automata/regex-2/simulate", `{"input":"0000"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestSimulateBatch(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "POST", "/automata/regex-2/batch", `{"inputs":["00101","01",""],"workers":2}`)
	require.Equal(t, http.StatusOK, w.Code)

	results := decodeJSON[[]map[string]any](t, w)
	require.Len(t, results, 3)
	assert.Equal(t, "accepted", results[0]["verdict"])
	assert.Equal(t, "01", results[1]["input"])
	assert.Equal(t, "rejected", results[2]["verdict"])

	w = do(t, h, "POST", "/automata/regex-2/batch", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetGraph(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "GET", "/automata/regex-2/graph", "")
	require.Equal(t, http.StatusOK, w.Code)
	g := decodeJSON[domain.Graph](t, w)
	assert.Len(t, g.Nodes, 9)
	assert.Len(t, g.Edges, 18)
	assert.Empty(t, g.HighlightedPath)

	w = do(t, h, "GET", "/automata/regex-2/graph?input=00101", "")
	require.Equal(t, http.StatusOK, w.Code)
	g = decodeJSON[domain.Graph](t, w)
	assert.Len(t, g.HighlightedPath, 5)
	assert.Equal(t, "5", g.FinalState)
	assert.True(t, g.Accepted)

	w = do(t, h, "GET", "/automata/regex-2/graph?format=mermaid&input=00", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "graph LR"))
	assert.Contains(t, w.Body.String(), "linkStyle")

	w = do(t, h, "GET", "/automata/regex-2/graph?format=dot", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `digraph "regex-2"`)

	w = do(t, h, "GET", "/automata/regex-2/graph?format=svg", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateDefinition(t *testing.T) {
	h := newTestHandler(t)

	valid := `
id: parity
states: [even, odd, trap]
alphabet: ["0", "1"]
initial: even
finals: [even]
transitions:
  even: {"0": even, "1": odd}
  odd: {"0": odd, "1": even}
  trap: {"0": trap, "1": trap}
`
	w := do(t, h, "POST", "/validate", valid)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decodeJSON[map[string]any](t, w)
	assert.Equal(t, []any{"trap"}, report["unreachable"])
	assert.Contains(t, report["warnings"], `state "trap" is unreachable from the initial state`)

	malformed := `{"states":["q0"],"alphabet":["a","b"],"initial":"q0","finals":["q1"],"transitions":{"q0":{"a":"q0"}}}`
	w = do(t, h, "POST", "/validate", malformed)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	codes := make([]domain.ViolationCode, len(resp.Violations))
	for i, v := range resp.Violations {
		codes[i] = v.Code
	}
	assert.ElementsMatch(t, []domain.ViolationCode{domain.CodeUnknownFinal, domain.CodeMissingTransition}, codes)

	w = do(t, h, "POST", "/validate", "states: [")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessions(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "POST", "/sessions", `{"automaton_id":"regex-2","session_id":"s1"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	s := decodeJSON[domain.Session](t, w)
	assert.Equal(t, "0", s.CurrentState)

	w = do(t, h, "POST", "/sessions", `{"automaton_id":"regex-2","session_id":"s1"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, "POST", "/sessions", `{"automaton_id":"missing"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, "POST", "/sessions", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "POST", "/sessions/s1/feed", `{"symbols":"001"}`)
	require.Equal(t, http.StatusOK, w.Code)
	s = decodeJSON[domain.Session](t, w)
	assert.Equal(t, "2", s.CurrentState)
	assert.Equal(t, "001", s.Consumed)

	w = do(t, h, "GET", "/sessions", "")
	assert.Equal(t, []string{"s1"}, decodeJSON[[]string](t, w))

	w = do(t, h, "GET", "/sessions/s1/result", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rejected", decodeJSON[map[string]any](t, w)["verdict"])

	w = do(t, h, "POST", "/sessions/s1/feed", `{"symbols":"x"}`)
	require.Equal(t, http.StatusOK, w.Code)
	s = decodeJSON[domain.Session](t, w)
	assert.Equal(t, domain.SessionHalted, s.Status)

	w = do(t, h, "POST", "/sessions/s1/feed", `{"symbols":"1"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, "DELETE", "/sessions/s1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, "GET", "/sessions/s1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, "POST", "/sessions/s1/feed", `{"symbols":"1"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	eng, err := automaton.New("", automaton.WithLifecycleHooks(metrics.Hooks()))
	require.NoError(t, err)
	h := NewHandler(eng, WithGatherer(reg))

	do(t, h, "POST", "/automata/regex-2/simulate", `{"input":"00101"}`)

	w := do(t, h, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `automaton_runs_total{automaton="regex-2",verdict="accepted"} 1`)
}

// readEvent reads lines until a blank line and returns the event name and data.
func readEvent(t *testing.T, r *bufio.Reader) (event, data string) {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			return event, data
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func subscribe(t *testing.T, ctx context.Context, url string) *bufio.Reader {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	return bufio.NewReader(resp.Body)
}

func TestFeedSession_UnknownState(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Save(context.Background(), "s2", &domain.Session{
		ID:           "s2",
		AutomatonID:  catalog.RegexAB,
		CurrentState: "ghost",
		Status:       domain.SessionActive,
	}))
	h := newTestHandler(t, automaton.WithSessionStore(store))

	w := do(t, h, "POST", "/sessions/s2/feed", `{"symbols":"a"}`)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestFedSteps(t *testing.T) {
	trace := domain.Trace{
		{Index: 0, From: "0", Symbol: "0", To: "1"},
		{Index: 1, From: "1", Symbol: "0", To: "2"},
		{Index: 2, From: "2", Symbol: "1", To: "3"},
	}

	tests := []struct {
		name    string
		session domain.Session
		symbols string
		want    domain.Trace
	}{
		{"All Consumed", domain.Session{Trace: trace}, "01", trace[1:]},
		{"Halted Midway", domain.Session{Trace: trace, Rejected: &domain.Rejection{Index: 3, Symbol: "x"}}, "1x0", trace[2:]},
		{"Halted First", domain.Session{Trace: trace, Rejected: &domain.Rejection{Index: 3, Symbol: "x"}}, "x", trace[3:]},
		{"Multibyte", domain.Session{Trace: trace, Rejected: &domain.Rejection{Index: 3, Symbol: "é"}}, "01é", trace[1:]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.Trace(fedSteps(&tt.session, tt.symbols)))
		})
	}
}

func TestSubscribeEvents_Session(t *testing.T) {
	srv := httptest.NewServer(newTestHandler(t))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := http.Post(srv.URL+"/sessions", "application/json", strings.NewReader(`{"automaton_id":"regex-2","session_id":"sess-1"}`))
	require.NoError(t, err)
	resp.Body.Close()

	stream := subscribe(t, ctx, srv.URL+"/events?session_id=sess-1")
	event, data := readEvent(t, stream)
	assert.Equal(t, "ping", event)
	assert.Equal(t, "connected", data)

	resp, err = http.Post(srv.URL+"/sessions/sess-1/feed", "application/json", strings.NewReader(`{"symbols":"00"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	event, data = readEvent(t, stream)
	assert.Equal(t, "update", event)

	var update runner.Update
	require.NoError(t, json.Unmarshal([]byte(data), &update))
	assert.Equal(t, "2", update.Session.CurrentState)
	require.Len(t, update.Steps, 2)
	assert.Equal(t, domain.Step{Index: 1, From: "1", Symbol: "0", To: "2"}, update.Steps[1])
}

func TestSubscribeEvents_Reload(t *testing.T) {
	loader, err := memory.NewFromDefinitions(catalog.Definitions()...)
	require.NoError(t, err)

	srv := httptest.NewServer(newTestHandler(t, automaton.WithLoader(loader)))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream := subscribe(t, ctx, srv.URL+"/events")
	event, _ := readEvent(t, stream)
	assert.Equal(t, "ping", event)

	def, _ := catalog.Get(catalog.RegexBinary)
	def.ID = "copy"
	require.NoError(t, loader.Put(def))

	event, data := readEvent(t, stream)
	assert.Equal(t, "reload", event)
	assert.Equal(t, "definitions changed", data)
}

func TestStreamManager(t *testing.T) {
	sm := NewStreamManager()
	ch, unsubscribe := sm.Subscribe("s")
	assert.Equal(t, 1, sm.Subscribers("s"))

	sm.Broadcast("s", "hello")
	sm.Broadcast("other", "ignored")
	assert.Equal(t, "hello", <-ch)

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, sm.Subscribers("s"))
	_, open := <-ch
	assert.False(t, open)
}
