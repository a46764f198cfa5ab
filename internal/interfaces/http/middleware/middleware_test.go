package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"payment-broker.backend/internal/domain/entities"
	"payment-broker.backend/pkg/jwt"
	"payment-broker.backend/pkg/logger"
	"payment-broker.backend/pkg/metrics"
)

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := jwt.NewJWTService("secret", time.Minute)

	r := gin.New()
	r.Use(AdminAuthMiddleware(svc))
	r.GET("/admin", func(c *gin.Context) {
		subject, ok := GetAdminSubject(c)
		require.True(t, ok)
		c.String(http.StatusOK, subject)
	})

	adminToken, err := svc.GenerateToken("ops", jwt.RoleAdmin)
	require.NoError(t, err)
	viewerToken, err := svc.GenerateToken("viewer", "viewer")
	require.NoError(t, err)
	expired, err := jwt.NewJWTService("secret", -time.Second).GenerateToken("ops", jwt.RoleAdmin)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, "Authorization header is required"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "Invalid authorization format"},
		{"garbage token", "Bearer nope", http.StatusUnauthorized, "Invalid token"},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized, "Token has expired"},
		{"non admin role", "Bearer " + viewerToken, http.StatusForbidden, "Admin role required"},
		{"admin", "Bearer " + adminToken, http.StatusOK, "ops"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tc.header != "" {
				req.Header.Set(AuthorizationHeader, tc.header)
			}
			w := serve(r, req)
			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), tc.body)
		})
	}
}

type resolverFunc func(ctx context.Context, key string) (*entities.Tenant, error)

func (f resolverFunc) ValidateByApiKey(ctx context.Context, key string) (*entities.Tenant, error) {
	return f(ctx, key)
}

func TestApiKeyAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	active := &entities.Tenant{ID: uuid.New(), IsActive: true}
	inactive := &entities.Tenant{ID: uuid.New()}

	resolver := resolverFunc(func(_ context.Context, key string) (*entities.Tenant, error) {
		switch key {
		case "good":
			return active, nil
		case "inactive":
			return inactive, nil
		case "broken":
			return nil, errors.New("db down")
		}
		return nil, nil
	})

	r := gin.New()
	r.Use(ApiKeyAuthMiddleware(resolver))
	r.GET("/pay", func(c *gin.Context) {
		tenant, ok := GetTenant(c)
		require.True(t, ok)
		assert.Equal(t, tenant.ID.String(), c.Request.Context().Value(logger.TenantIDKey))
		c.String(http.StatusOK, tenant.ID.String())
	})

	cases := []struct {
		key    string
		status int
	}{
		{"", http.StatusUnauthorized},
		{"unknown", http.StatusUnauthorized},
		{"inactive", http.StatusUnauthorized},
		{"broken", http.StatusInternalServerError},
		{"good", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/pay", nil)
		if tc.key != "" {
			req.Header.Set(ApiKeyHeader, tc.key)
		}
		w := serve(r, req)
		assert.Equal(t, tc.status, w.Code, "key %q", tc.key)
	}
}

func TestKeyedLimiter(t *testing.T) {
	l := NewKeyedLimiter(1, 2)
	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"), "burst exhausted")
	assert.True(t, l.Allow("b"), "buckets are per key")

	disabled := NewKeyedLimiter(0, 0)
	for i := 0; i < 10; i++ {
		assert.True(t, disabled.Allow("a"))
	}

	var nilLimiter *KeyedLimiter
	assert.True(t, nilLimiter.Allow("a"))
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.NewNop()

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(TenantIDKey, c.GetHeader("X-Tenant"))
		c.Next()
	})
	r.Use(RateLimitMiddleware(NewKeyedLimiter(0.001, 1), m))
	r.GET("/pay", func(c *gin.Context) { c.Status(http.StatusOK) })

	request := func(tenant string) int {
		req := httptest.NewRequest(http.MethodGet, "/pay", nil)
		req.Header.Set("X-Tenant", tenant)
		return serve(r, req).Code
	}

	assert.Equal(t, http.StatusOK, request("t1"))
	assert.Equal(t, http.StatusTooManyRequests, request("t1"))
	assert.Equal(t, http.StatusOK, request("t2"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited))
}

func TestRequestIDAndLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	logger.SetLogger(zap.New(core))
	t.Cleanup(func() { logger.SetLogger(zap.NewNop()) })

	r := gin.New()
	r.Use(RequestIDMiddleware(), LoggerMiddleware())
	r.GET("/items/:id", func(c *gin.Context) {
		assert.Equal(t, "req-42", c.GetString(RequestIDKey))
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/items/7?secretId=abc", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := serve(r, req)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))

	entries := logs.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "/items/:id", fields["path"])
	assert.Equal(t, int64(http.StatusNoContent), fields["status"])

	// generated when absent
	w = serve(r, httptest.NewRequest(http.MethodGet, "/items/8", nil))
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
}
