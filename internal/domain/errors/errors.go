package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrTransient     = errors.New("upstream service unavailable")
	ErrInconsistent  = errors.New("inconsistent state between systems")
	ErrInternal      = errors.New("internal error")
)

// Error codes surfaced to API clients
const (
	CodeUnauthorized = "ERR_UNAUTHORIZED"
	CodeValidation   = "ERR_VALIDATION"
	CodeNotFound     = "ERR_NOT_FOUND"
	CodeConflict     = "ERR_CONFLICT"
	CodeTransient    = "ERR_UPSTREAM"
	CodeConsistency  = "ERR_CONSISTENCY"
	CodeInternal     = "ERR_INTERNAL"
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int               `json:"-"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

// Unwrap lets errors.Is match both the sentinel kind and the wrapped cause.
func (e *AppError) Unwrap() []error {
	kind := kindOf(e.Code)
	if e.Err == nil || e.Err == kind {
		return []error{kind}
	}
	return []error{kind, e.Err}
}

func kindOf(code string) error {
	switch code {
	case CodeUnauthorized:
		return ErrUnauthorized
	case CodeValidation:
		return ErrInvalidInput
	case CodeNotFound:
		return ErrNotFound
	case CodeConflict:
		return ErrAlreadyExists
	case CodeTransient:
		return ErrTransient
	case CodeConsistency:
		return ErrInconsistent
	default:
		return ErrInternal
	}
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Unauthorized is returned when a tenant, API key or terminal cannot authenticate a call.
func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, nil)
}

// Validation carries field-level detail.
func Validation(message string, fields map[string]string) *AppError {
	e := NewAppError(http.StatusBadRequest, CodeValidation, message, nil)
	e.Fields = fields
	return e
}

// FieldError is a shorthand for a single-field validation failure.
func FieldError(field, message string) *AppError {
	return Validation(message, map[string]string{field: message})
}

func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, nil)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, nil)
}

// Transient wraps a network or upstream service failure. It is never retried here.
func Transient(message string, err error) *AppError {
	return NewAppError(http.StatusBadGateway, CodeTransient, message, err)
}

// Consistency reports a two-system update where only one side succeeded.
func Consistency(message string, err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeConsistency, message, err)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternal, "internal server error", err)
}

// As extracts an *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
