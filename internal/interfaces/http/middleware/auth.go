package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	domainerrors "payment-broker.backend/internal/domain/errors"
	"payment-broker.backend/internal/interfaces/http/response"
	"payment-broker.backend/pkg/jwt"
	"payment-broker.backend/pkg/logger"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// AdminSubjectKey is the context key for the token subject
	AdminSubjectKey = "adminSubject"
	// AdminRoleKey is the context key for the token role
	AdminRoleKey = "adminRole"
)

// AdminAuthMiddleware only lets through bearer tokens carrying the admin role
func AdminAuthMiddleware(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			reject(c, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			reject(c, http.StatusUnauthorized, "Invalid authorization format. Use: Bearer <token>")
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimPrefix(authHeader, BearerPrefix))
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				reject(c, http.StatusUnauthorized, "Token has expired")
				return
			}
			reject(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		if claims.Role != jwt.RoleAdmin {
			reject(c, http.StatusForbidden, "Admin role required")
			return
		}

		c.Set(AdminSubjectKey, claims.Subject)
		c.Set(AdminRoleKey, claims.Role)

		c.Next()
	}
}

// GetAdminSubject gets the authenticated admin from context
func GetAdminSubject(c *gin.Context) (string, bool) {
	subject, exists := c.Get(AdminSubjectKey)
	if !exists {
		return "", false
	}
	s, ok := subject.(string)
	return s, ok
}

func reject(c *gin.Context, status int, message string) {
	logger.Warn(c.Request.Context(), "Request rejected",
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", status),
		zap.String("reason", message),
	)
	response.ErrorWithError(c, status, domainerrors.CodeUnauthorized, message)
	c.Abort()
}
