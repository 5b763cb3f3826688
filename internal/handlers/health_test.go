package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHealthHandler(t *testing.T) {
	t.Run("healthy without checks", func(t *testing.T) {
		h := NewHealthHandler(zap.NewNop(), "test")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp HealthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "test", resp.Version)
		assert.Empty(t, resp.Checks)
	})

	t.Run("failing check", func(t *testing.T) {
		h := NewHealthHandler(zap.NewNop(), "test")
		h.AddCheck("database", func(ctx context.Context) error { return nil })
		h.AddCheck("redis", func(ctx context.Context) error { return errors.New("connection refused") })

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		var resp HealthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Equal(t, map[string]string{"database": "ok", "redis": "connection refused"}, resp.Checks)
	})
}
