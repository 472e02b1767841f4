// Package logger is the service's zap logger. Request-scoped fields (trace,
// request and user ids) are pulled from the context on every call, so call
// sites only pass what is specific to the event.
package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appctx "datacatalog/internal/core/context"
)

// Logger is a sugared zap logger.
type Logger struct {
	*zap.SugaredLogger
}

type loggerKey struct{}

// Config selects level, encoding and sinks.
type Config struct {
	Level       string // debug, info, warn, error; anything else means info
	Development bool   // console encoding with colored levels
	OutputPaths []string
	Service     string // added as "service" to every entry when set
}

// New builds a Logger from cfg.
func New(cfg Config) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if len(cfg.OutputPaths) > 0 {
		zc.OutputPaths = cfg.OutputPaths
	}
	if cfg.Service != "" {
		zc.InitialFields = map[string]any{"service": cfg.Service}
	}

	zl, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &Logger{zl.Sugar()}, nil
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}

var fallback = sync.OnceValue(func() *Logger {
	l, err := New(Config{Level: "info", OutputPaths: []string{"stdout"}})
	if err != nil {
		return Nop()
	}
	return l
})

// WithContext returns l annotated with the request fields found in ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	fields := contextFields(ctx)
	if len(fields) == 0 {
		return l
	}
	return &Logger{l.SugaredLogger.With(fields...)}
}

// WithComponent tags entries with the emitting component.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{l.SugaredLogger.With("component", name)}
}

func contextFields(ctx context.Context) []any {
	var fields []any
	if t := appctx.GetTrace(ctx); t != nil {
		fields = append(fields, "trace_id", t.TraceID, "request_id", t.RequestID)
	}
	if u := appctx.GetUser(ctx); u != nil {
		fields = append(fields, "user_id", u.UserID, "role", u.Role)
	}
	return fields
}

// WithLogger stores l in ctx.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the logger stored in ctx, or a stdout logger, with
// the request fields of ctx attached.
func FromContext(ctx context.Context) *Logger {
	l, ok := ctx.Value(loggerKey{}).(*Logger)
	if !ok {
		l = fallback()
	}
	return l.WithContext(ctx)
}

func Info(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Infow(msg, keysAndValues...)
}

func Warn(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Warnw(msg, keysAndValues...)
}

func Error(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Errorw(msg, keysAndValues...)
}
