package api_gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inventory-sales-ledger/internal/api_gateway/middleware"
	"github.com/inventory-sales-ledger/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	cfg := &config.Config{
		Application: config.ApplicationConfig{Env: "test"},
		Server: config.ServerConfig{
			Port:            0,
			ShutdownTimeout: time.Second,
			RequestTimeout:  time.Second,
		},
	}
	// Services are nil: the requests below are answered before any service call.
	return NewServer(logger, cfg, nil, nil, nil)
}

func TestRouter_Health(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(middleware.CorrelationIDHeader))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_Routes(t *testing.T) {
	srv := newTestServer(t)

	registered := make(map[string]bool)
	for _, r := range srv.httpRouter.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, route := range []string{
		"POST /api/v1/items",
		"GET /api/v1/items",
		"GET /api/v1/items/sold",
		"GET /api/v1/items/:id",
		"PATCH /api/v1/items/:id",
		"DELETE /api/v1/items/:id",
		"POST /api/v1/items/:id/sell",
		"GET /api/v1/items/:id/sales",
		"GET /api/v1/sales",
		"POST /api/v1/checkouts",
		"GET /api/v1/reports/sales-summary",
		"GET /api/v1/reports/sales/:id",
		"GET /api/v1/reports/rejections",
		"GET /health",
	} {
		assert.True(t, registered[route], route)
	}
}

func TestRouter_RejectsBadItemIDBeforeServices(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/items/abc/sell", nil)
	req.Header.Set(middleware.CorrelationIDHeader, "corr-9")
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "corr-9", body["correlation_id"])
}
