package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userdata/internal/users"
)

type staticDegraded map[string]string

func (d staticDegraded) Map() map[string]string { return d }

func TestHandleListUsersSingleUser(t *testing.T) {
	srv := newTestServer(t, users.Single(), nil)

	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "false", rec.Body.String())
}

func TestHandleListUsersMultiUser(t *testing.T) {
	srv := newTestServer(t, users.FromMap(map[string]string{"alice": "Alice", "bob": "Bob"}), nil)

	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"alice":"Alice","bob":"Bob"}`, rec.Body.String())
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, users.Single(), nil)

	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.MultiUser)
	assert.Equal(t, 1, resp.Users)
	assert.Empty(t, resp.Degraded)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestHandleHealthReportsDegradedComponents(t *testing.T) {
	engine := NewRouter(RouterDeps{
		Registry: users.FromMap(map[string]string{"alice": "Alice"}),
		Degraded: staticDegraded{"tracing": "exporter unreachable"},
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.True(t, resp.MultiUser)
	assert.Equal(t, map[string]string{"tracing": "exporter unreachable"}, resp.Degraded)
}
