package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	domainerrors "payment-broker.backend/internal/domain/errors"
	"payment-broker.backend/internal/interfaces/http/response"
	"payment-broker.backend/pkg/logger"
	"payment-broker.backend/pkg/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	// LockDuration is the time we hold the lock while processing
	LockDuration = 30 * time.Second
	// RetentionDuration is how long we keep the response
	RetentionDuration = 24 * time.Hour

	CodeIdempotencyConflict = "ERR_IDEMPOTENCY_CONFLICT"

	processingMarker = "processing"
)

var (
	redisGet   = redis.Get
	redisSet   = redis.Set
	redisSetNX = redis.SetNX
	redisDel   = redis.Del
)

type storedResponse struct {
	RequestHash string `json:"requestHash"`
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        string `json:"body"`
}

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored reply of a request already
// processed for the same tenant and Idempotency-Key. The key is bound to a
// fingerprint of method, path and body; reusing it for a different request
// is rejected. Only 2xx replies are kept; a failed request releases the key
// so it can be retried.
func IdempotencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		storageKey := fmt.Sprintf("idempotency:%s:%s", c.GetString(TenantIDKey), key)
		ctx := c.Request.Context()

		requestHash, err := fingerprint(c)
		if err != nil {
			response.ErrorWithError(c, http.StatusBadRequest, domainerrors.CodeValidation, "Failed to read request body")
			c.Abort()
			return
		}

		val, err := redisGet(ctx, storageKey)
		switch {
		case err == nil:
			if hash, ok := processingHash(val); ok {
				if hash != "" && hash != requestHash {
					rejectMismatch(c)
					return
				}
				response.ErrorWithError(c, http.StatusConflict, CodeIdempotencyConflict, "Request already in progress")
				c.Abort()
				return
			}
			replay(c, val, requestHash)
			return
		case !errors.Is(err, redis.Nil):
			// without redis the request still runs, just unprotected
			logger.Warn(ctx, "Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}

		acquired, err := redisSetNX(ctx, storageKey, processingMarker+":"+requestHash, LockDuration)
		if err != nil || !acquired {
			response.ErrorWithError(c, http.StatusConflict, CodeIdempotencyConflict, "Request already in progress")
			c.Abort()
			return
		}

		w := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			stored, _ := json.Marshal(storedResponse{
				RequestHash: requestHash,
				Status:      status,
				ContentType: c.Writer.Header().Get("Content-Type"),
				Body:        w.body.String(),
			})
			if err := redisSet(ctx, storageKey, string(stored), RetentionDuration); err != nil {
				logger.Warn(ctx, "Failed to store idempotent response", zap.Error(err))
			}
			return
		}
		_ = redisDel(ctx, storageKey)
	}
}

// fingerprint hashes method|path|body and restores the body for the handler
func fingerprint(c *gin.Context) (string, error) {
	var body []byte
	if c.Request.Body != nil {
		var err error
		body, err = io.ReadAll(c.Request.Body)
		if err != nil {
			return "", err
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}

	h := sha256.New()
	h.Write([]byte(c.Request.Method + "|" + c.Request.URL.Path + "|"))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// processingHash reports whether val is an in-flight marker and the
// fingerprint it carries, if any
func processingHash(val string) (string, bool) {
	if val == processingMarker {
		return "", true
	}
	hash, ok := strings.CutPrefix(val, processingMarker+":")
	return hash, ok
}

func rejectMismatch(c *gin.Context) {
	response.ErrorWithError(c, http.StatusUnprocessableEntity, CodeIdempotencyConflict,
		"Idempotency-Key was already used for a different request")
	c.Abort()
}

func replay(c *gin.Context, val, requestHash string) {
	var stored storedResponse
	if err := json.Unmarshal([]byte(val), &stored); err != nil || stored.Status == 0 {
		stored = storedResponse{Status: http.StatusOK, ContentType: "application/json", Body: val}
	}
	if stored.RequestHash != "" && stored.RequestHash != requestHash {
		rejectMismatch(c)
		return
	}
	if stored.ContentType == "" {
		stored.ContentType = "application/json"
	}

	c.Header("X-Idempotency-Hit", "true")
	c.Data(stored.Status, stored.ContentType, []byte(stored.Body))
	c.Abort()
}
