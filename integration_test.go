package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/otomono/jersey-orders-api/routes"
	"github.com/otomono/jersey-orders-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRouter builds the application router on an in-memory database with a mock admin
func setupRouter(t *testing.T, scopes ...string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	container, _ := testutil.NewTestContainer(t)
	return routes.SetupRouter(container.Config, container, testutil.MockAdminAuth(scopes...)...)
}

func serve(router *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouting(t *testing.T) {
	router := setupRouter(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/v1/health", http.StatusOK},
		{http.MethodPost, "/api/v1/health", http.StatusNotFound},
		{http.MethodDelete, "/api/v1/health", http.StatusNotFound},
		{http.MethodGet, "/health", http.StatusNotFound},
		{http.MethodGet, "/api/v1/database/status", http.StatusOK},
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := serve(router, tt.method, tt.path, nil)
		assert.Equal(t, tt.want, w.Code, "%s %s", tt.method, tt.path)
	}
}

func TestDatabaseStatusEndpoint(t *testing.T) {
	w := serve(setupRouter(t), http.MethodGet, "/api/v1/database/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Success bool     `json:"success"`
		Tables  []string `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)
	for _, table := range []string{"orders", "jerseys", "jersey_drafts", "customers", "notifications"} {
		assert.Contains(t, response.Tables, table)
	}
}

func TestAdminRoutesRequireScope(t *testing.T) {
	w := serve(setupRouter(t, "read:profile"), http.MethodGet, "/api/v1/orders", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "INSUFFICIENT_SCOPE")

	w = serve(setupRouter(t, testutil.AdminScope), http.MethodGet, "/api/v1/orders", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPortalRoutesSkipAdminAuth(t *testing.T) {
	w := serve(setupRouter(t), http.MethodGet, "/customer?orderId=missing&token=nope", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_LINK")
}

func TestCORSHeaders(t *testing.T) {
	router := setupRouter(t)

	w := serve(router, http.MethodGet, "/api/v1/health", http.Header{"Origin": {"http://localhost:3000"}})
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Expose-Headers")), "x-report-id")

	w = serve(router, http.MethodGet, "/api/v1/health", http.Header{"Origin": {"https://evil.example"}})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
