package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"naijacare/internal/platform/config"
	"naijacare/pkg/platform/privacy"
)

// The app registers metrics on the default registry, so it is built once.
func TestAppEndToEnd(t *testing.T) {
	cfg := config.Server{
		ConsentBackend: config.BackendMemory,
		AuditBackend:   config.BackendMemory,
		LogFormat:      "json",
	}
	a, err := buildApp(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(a.Close)
	srv := httptest.NewServer(a.Router())
	t.Cleanup(srv.Close)

	post := func(path, body string) *http.Response {
		resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}
	getJSON := func(path string, dst any) *http.Response {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		if dst != nil {
			require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
		}
		return resp
	}

	resp := post("/api/route", `{"sender":"clinic_001","text":"Patient unconscious after fall"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var denied map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&denied))
	assert.Equal(t, "NON_CLINICAL", denied["decision"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp = post("/api/consent/clinic_001/grant", `{"age_years":34,"scopes":["data_collection","ai_processing"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var valid map[string]any
	getJSON("/api/consent/clinic_001/validate", &valid)
	assert.Equal(t, true, valid["valid"])

	resp = post("/api/route", `{"sender":"clinic_001","text":"Patient unconscious after fall"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var routed map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&routed))
	assert.Equal(t, "ESCALATE_IMMEDIATELY", routed["decision"])
	assert.Equal(t, []any{"unconscious"}, routed["flags"])

	var entries []map[string]any
	getJSON("/api/audit", &entries)
	require.Len(t, entries, 2)
	assert.Equal(t, privacy.HashSubjectID("clinic_001"), entries[1]["clinic_id_hash"])
	assert.Equal(t, true, entries[1]["has_emergency_flag"])

	var stats map[string]any
	getJSON("/api/stats", &stats)
	assert.Equal(t, float64(2), stats["total_messages"])
	assert.Equal(t, float64(1), stats["emergency_count"])

	resp = post("/api/consent/clinic_001/anonymize", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, http.StatusNotFound, getJSON("/api/consent/clinic_001", nil).StatusCode)

	assert.Equal(t, http.StatusOK, getJSON("/healthz", nil).StatusCode)

	metricsResp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	body, err := io.ReadAll(metricsResp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "naijacare_routing_decisions_total")
	assert.Contains(t, string(body), "naijacare_http_request_duration_seconds")
}
