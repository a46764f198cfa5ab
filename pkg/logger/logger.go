package logger

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log  *zap.Logger
	once sync.Once

	buildLogger = func(cfg zap.Config) (*zap.Logger, error) {
		return cfg.Build(zap.AddCallerSkip(1))
	}
)

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	TenantIDKey  ContextKey = "tenant_id"
)

// Init builds the process logger. env "development" switches to the console
// encoder; level overrides the default level when it parses.
func Init(env, level string) {
	once.Do(func() {
		config := zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

		if env == "development" {
			config = zap.NewDevelopmentConfig()
			config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		if lvl, err := zap.ParseAtomicLevel(level); err == nil && level != "" {
			config.Level = lvl
		}

		var err error
		log, err = buildLogger(config)
		if err != nil {
			panic(err)
		}
	})
}

// GetLogger returns the underlying zap logger, a no-op one before Init
func GetLogger() *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

// SetLogger replaces the package logger; used by tests to observe output
func SetLogger(l *zap.Logger) {
	log = l
}

// Sync flushes buffered entries
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

// WithRequestID tags ctx so every entry logged with it carries request_id
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// WithTenantID tags ctx so every entry logged with it carries tenant_id
func WithTenantID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, TenantIDKey, id)
}

// WithContext returns the logger enriched with the ids carried by ctx
func WithContext(ctx context.Context) *zap.Logger {
	base := GetLogger()
	if ctx == nil {
		return base
	}

	fields := make([]zap.Field, 0, 2)
	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		fields = append(fields, zap.String(string(RequestIDKey), id))
	}
	if id, ok := ctx.Value(TenantIDKey).(string); ok && id != "" {
		fields = append(fields, zap.String(string(TenantIDKey), id))
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

// Info logs a message at InfoLevel
func Info(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Info(msg, fields...)
}

// Error logs a message at ErrorLevel
func Error(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Error(msg, fields...)
}

// Debug logs a message at DebugLevel
func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Debug(msg, fields...)
}

// Warn logs a message at WarnLevel
func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Warn(msg, fields...)
}

// RequestEntry describes one served HTTP request
type RequestEntry struct {
	Method   string
	Path     string
	Status   int
	Latency  time.Duration
	ClientIP string
	Bytes    int
}

// LogRequest writes the access log line. Server errors log at error level,
// client errors at warn.
func LogRequest(ctx context.Context, e RequestEntry) {
	l := WithContext(ctx)
	fields := []zap.Field{
		zap.String("method", e.Method),
		zap.String("path", e.Path),
		zap.Int("status", e.Status),
		zap.Duration("latency", e.Latency),
		zap.String("client_ip", e.ClientIP),
		zap.Int("bytes", e.Bytes),
	}

	switch {
	case e.Status >= 500:
		l.Error("HTTP Request", fields...)
	case e.Status >= 400:
		l.Warn("HTTP Request", fields...)
	default:
		l.Info("HTTP Request", fields...)
	}
}
