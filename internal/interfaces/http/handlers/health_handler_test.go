package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	redisUp := true
	h := NewHealthHandler(map[string]HealthCheck{
		"database": func(context.Context) error { return nil },
		"redis": func(context.Context) error {
			if redisUp {
				return nil
			}
			return errors.New("connection refused")
		},
	})
	r := newTestRouter()
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)

	w := doJSON(r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	w = doJSON(r, http.MethodGet, "/ready", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"database": "ok", "redis": "ok"}, decode(t, w)["checks"])

	redisUp = false
	w = doJSON(r, http.MethodGet, "/ready", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode(t, w)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "connection refused", body["checks"].(map[string]interface{})["redis"])
}
