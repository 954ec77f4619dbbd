package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radarcli/internal/config"
	"radarcli/internal/session"
	"radarcli/internal/shared/testutil"
	"radarcli/pkg/contracts/events"
)

func newTestApplication(t *testing.T) *Application {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Security.RateLimit.Enabled = false
	cfg.Security.AllowedOrigins = []string{"*"}

	logger, _ := testutil.NewQuietTestLogger()
	app, err := New(cfg, logger)
	require.NoError(t, err)
	return app
}

func newTestServer(t *testing.T) (*Application, *httptest.Server) {
	t.Helper()
	app := newTestApplication(t)
	app.WebSocketHub.Start()
	srv := httptest.NewServer(app.Router)
	t.Cleanup(func() {
		srv.Close()
		app.WebSocketHub.Stop()
	})
	return app, srv
}

func doJSON(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestNew(t *testing.T) {
	app := newTestApplication(t)

	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.Server)
	assert.NotNil(t, app.Store)
	assert.NotNil(t, app.ChartService)
	assert.NotNil(t, app.HealthService)
	assert.NotNil(t, app.WebSocketHub)
	assert.NotNil(t, app.OTelProviders.PrometheusHTTP)
	assert.Equal(t, ":0", app.Server.Addr)
}

func TestApplication_Routes(t *testing.T) {
	_, srv := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"health", http.MethodGet, "/api/health", http.StatusOK},
		{"liveness", http.MethodGet, "/api/health/live", http.StatusOK},
		{"readiness", http.MethodGet, "/api/health/ready", http.StatusOK},
		{"version", http.MethodGet, "/api/version", http.StatusOK},
		{"sessions", http.MethodGet, "/api/sessions", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"unknown route", http.MethodGet, "/api/nope", http.StatusNotFound},
		{"websocket without session", http.MethodGet, "/ws", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, tt.method, srv.URL+tt.path, nil)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
		})
	}
}

func TestApplication_SecurityHeadersAndCORS(t *testing.T) {
	_, srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/sessions", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.test")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://example.test", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "PATCH")

	health := doJSON(t, http.MethodGet, srv.URL+"/api/health", nil)
	assert.Equal(t, "nosniff", health.Header.Get("X-Content-Type-Options"))
}

func TestApplication_SessionStreamsOverWebSocket(t *testing.T) {
	app, srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/sessions", map[string]string{"data": testutil.SampleTSV})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created session.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?session=" + created.ID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() events.WebSocketMessage {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var msg events.WebSocketMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	}

	assert.Equal(t, events.MessageTypeConnect, read().Type)
	initial := read()
	assert.Equal(t, events.MessageTypeSessionSnapshot, initial.Type)
	assert.Equal(t, created.ID, initial.SessionID)

	require.Eventually(t, func() bool {
		return app.WebSocketHub.SessionClientCount(created.ID) == 1
	}, time.Second, 10*time.Millisecond)

	patch := doJSON(t, http.MethodPatch, srv.URL+"/api/sessions/"+created.ID+"/settings",
		map[string]bool{"integer_mode": true})
	require.Equal(t, http.StatusOK, patch.StatusCode)

	update := read()
	require.Equal(t, events.MessageTypeSessionSnapshot, update.Type)
	data, err := json.Marshal(update.Data)
	require.NoError(t, err)
	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, created.Revision+1, snap.Revision)
	assert.True(t, snap.Settings.IntegerMode)

	del := doJSON(t, http.MethodDelete, srv.URL+"/api/sessions/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, del.StatusCode)
	assert.Equal(t, events.MessageTypeSessionDeleted, read().Type)
}

func TestApplication_MetricsRecordRequests(t *testing.T) {
	_, srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/sessions", map[string]string{"data": testutil.SampleCSV})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	metrics := doJSON(t, http.MethodGet, srv.URL+"/metrics", nil)
	body, err := io.ReadAll(metrics.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "http_requests_total")
}

func TestApplication_RunAndStop(t *testing.T) {
	app := newTestApplication(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	// Let the server start listening before shutting down
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("application did not stop")
	}

	assert.Equal(t, "not_ready", app.HealthService.ReadinessCheck(context.Background()).Status)
}
