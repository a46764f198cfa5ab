package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"payment-broker.backend/internal/interfaces/http/handlers"
	"payment-broker.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	tenantHandler   *handlers.TenantHandler
	terminalHandler *handlers.TerminalHandler
	secretHandler   *handlers.SecretHandler
	paymentHandler  *handlers.PaymentHandler
	adminAuth       gin.HandlerFunc
	apiKeyAuth      gin.HandlerFunc
	rateLimit       gin.HandlerFunc
}

// applyCORSMiddleware echoes Origin only when it is in allowedOrigins
func applyCORSMiddleware(r *gin.Engine, allowedOrigins []string) {
	allowAny := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			allowAny = true
		}
		if o != "" {
			allowed[o] = struct{}{}
		}
	}

	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.Header("Vary", "Origin")
			if _, ok := allowed[origin]; ok || allowAny {
				c.Header("Access-Control-Allow-Origin", origin)
			}
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Api-Key, Idempotency-Key, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerSystemRoutes(r *gin.Engine, health *handlers.HealthHandler, reg *prometheus.Registry) {
	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Tenant routes (API key)
		payments := v1.Group("/payments")
		payments.Use(d.apiKeyAuth, d.rateLimit)
		{
			payments.POST("", middleware.IdempotencyMiddleware(), d.paymentHandler.ProcessPayment)
			payments.POST("/query", d.paymentHandler.QueryTransactions)
		}

		transactions := v1.Group("/transactions")
		transactions.Use(d.apiKeyAuth, d.rateLimit)
		{
			transactions.GET("", d.paymentHandler.ListTransactions)
			transactions.GET("/:id", d.paymentHandler.GetTransaction)
		}

		// Admin routes (admin JWT)
		admin := v1.Group("/admin")
		admin.Use(d.adminAuth)
		{
			admin.POST("/tenants", d.tenantHandler.CreateTenant)
			admin.GET("/tenants", d.tenantHandler.ListTenants)
			admin.GET("/tenants/:id", d.tenantHandler.GetTenant)
			admin.PUT("/tenants/:id", d.tenantHandler.UpdateTenant)
			admin.POST("/tenants/:id/activate", d.tenantHandler.ActivateTenant)
			admin.POST("/tenants/:id/deactivate", d.tenantHandler.DeactivateTenant)
			admin.POST("/tenants/:id/api-keys", d.tenantHandler.AddApiKey)

			admin.POST("/terminals", d.terminalHandler.CreateTerminal)
			admin.POST("/terminals/lookup", d.terminalHandler.LookupTerminal)
			admin.GET("/terminals/:id", d.terminalHandler.GetTerminal)
			admin.PUT("/terminals/:id", d.terminalHandler.UpdateTerminal)
			admin.POST("/terminals/:id/sync-secret", d.terminalHandler.SyncSecret)

			admin.GET("/secrets", d.secretHandler.ListSecrets)
			admin.POST("/secrets", d.secretHandler.CreateSecret)
			admin.GET("/secrets/:id", d.secretHandler.GetSecret)
			admin.PUT("/secrets/:id", d.secretHandler.UpdateSecret)
		}
	}
}
