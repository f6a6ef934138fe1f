package cli

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/automaton/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeHandler_RecordsMetrics(t *testing.T) {
	handler, err := newServeHandler(ServeOptions{Port: "0"}, logging.NewNop())
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/automata/regex-2/simulate", "application/json", strings.NewReader(`{"input":"00101"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `automaton_runs_total{automaton="regex-2",verdict="accepted"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestServeOptions_Logger(t *testing.T) {
	assert.NotNil(t, ServeOptions{LogFormat: "json", LogLevel: "warn"}.logger())
	assert.NotNil(t, ServeOptions{EngineOptions: EngineOptions{Debug: true}}.logger())
}

func TestServeMCP_UnknownTransport(t *testing.T) {
	err := ServeMCP(t.Context(), MCPOptions{Transport: "carrier-pigeon"})
	assert.ErrorContains(t, err, "unknown transport")
}
