package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"payment-broker.backend/internal/domain/entities"
	"payment-broker.backend/internal/interfaces/http/response"
	"payment-broker.backend/pkg/logger"
)

const (
	// ApiKeyHeader carries the tenant API key
	ApiKeyHeader = "X-Api-Key"
	// TenantKey is the context key for the resolved tenant
	TenantKey = "tenant"
	// TenantIDKey is the context key for the resolved tenant id
	TenantIDKey = "tenant_id"
)

// TenantResolver finds the tenant owning an API key; nil means no match
type TenantResolver interface {
	ValidateByApiKey(ctx context.Context, key string) (*entities.Tenant, error)
}

// ApiKeyAuthMiddleware authenticates tenants by the X-Api-Key header
func ApiKeyAuthMiddleware(resolver TenantResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(ApiKeyHeader))
		if key == "" {
			reject(c, http.StatusUnauthorized, "API key is required")
			return
		}

		tenant, err := resolver.ValidateByApiKey(c.Request.Context(), key)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if tenant == nil {
			reject(c, http.StatusUnauthorized, "Invalid API key")
			return
		}
		if !tenant.IsActive {
			reject(c, http.StatusUnauthorized, "Tenant is inactive")
			return
		}

		tenantID := tenant.ID.String()
		c.Set(TenantKey, tenant)
		c.Set(TenantIDKey, tenantID)
		c.Request = c.Request.WithContext(logger.WithTenantID(c.Request.Context(), tenantID))

		c.Next()
	}
}

// GetTenant gets the authenticated tenant from context
func GetTenant(c *gin.Context) (*entities.Tenant, bool) {
	v, exists := c.Get(TenantKey)
	if !exists {
		return nil, false
	}
	tenant, ok := v.(*entities.Tenant)
	return tenant, ok
}
