package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	domainerrors "payment-broker.backend/internal/domain/errors"
	"payment-broker.backend/pkg/logger"
	"payment-broker.backend/pkg/utils"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Paginated sends one page of items with its metadata
func Paginated(c *gin.Context, items interface{}, meta utils.PaginationMeta) {
	c.JSON(http.StatusOK, gin.H{"items": items, "meta": meta})
}

// Error maps err to its HTTP status and sends it
func Error(c *gin.Context, err error) {
	appErr := toAppError(err)

	if appErr.Status >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "Request failed",
			zap.String("code", appErr.Code),
			zap.Error(err),
		)
	}

	body := gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
		"error":   appErr.Message,
	}
	if len(appErr.Fields) > 0 {
		body["fields"] = appErr.Fields
	}
	c.JSON(appErr.Status, body)
}

// ErrorWithError sends an error response with a specific status and message
func ErrorWithError(c *gin.Context, status int, code string, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}

func toAppError(err error) *domainerrors.AppError {
	if appErr, ok := domainerrors.As(err); ok {
		return appErr
	}
	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		return domainerrors.NotFound(err.Error())
	case errors.Is(err, domainerrors.ErrAlreadyExists):
		return domainerrors.Conflict(err.Error())
	case errors.Is(err, domainerrors.ErrUnauthorized):
		return domainerrors.Unauthorized(err.Error())
	case errors.Is(err, domainerrors.ErrInvalidInput):
		return domainerrors.Validation(err.Error(), nil)
	case errors.Is(err, domainerrors.ErrTransient):
		return domainerrors.Transient("upstream service unavailable", err)
	case errors.Is(err, domainerrors.ErrInconsistent):
		return domainerrors.Consistency("inconsistent state between systems", err)
	default:
		return domainerrors.InternalError(err)
	}
}
