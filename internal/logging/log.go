package logging

import (
	"context"
	"crypto/rand"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultLogLevel = "info"

var (
	mu            sync.RWMutex
	defaultLogger *zap.Logger
)

func init() {
	logger, err := NewLogger(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logger = zap.NewNop()
	}
	defaultLogger = logger
}

// NewLogger builds a JSON zap logger. Unknown or empty levels fall back to info;
// "warning" is accepted as an alias of warn.
func NewLogger(level string) (*zap.Logger, error) {
	atomicLevel := zap.NewAtomicLevel()
	normalized := strings.ToLower(strings.TrimSpace(level))
	if normalized == "warning" {
		normalized = "warn"
	}
	if err := atomicLevel.UnmarshalText([]byte(normalized)); err != nil || normalized == "" {
		_ = atomicLevel.UnmarshalText([]byte(defaultLogLevel))
	}

	encoderCfg := zapcore.EncoderConfig{
		MessageKey: "message",
		TimeKey:    "timestamp",
		LevelKey:   "severity",
		EncodeTime: zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(strings.ToUpper(level.String()))
		},
		EncodeDuration: zapcore.MillisDurationEncoder,
		CallerKey:      "caller",
		EncodeCaller:   zapcore.ShortCallerEncoder,
		StacktraceKey:  "stacktrace",
	}

	cfg := zap.Config{
		Level:             atomicLevel,
		Encoding:          "json",
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: true,
	}

	return cfg.Build()
}

// SetLogger replaces the package logger, e.g. after configuration is loaded
func SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	mu.Lock()
	defaultLogger = logger
	mu.Unlock()
}

// L returns the package logger for components that take a *zap.Logger
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// sugar skips the package-level wrapper frame so callers are reported correctly
func sugar() *zap.SugaredLogger {
	return L().WithOptions(zap.AddCallerSkip(1)).Sugar()
}

// IsDebugEnabled returns true if debug logging is enabled
func IsDebugEnabled() bool {
	return L().Core().Enabled(zapcore.DebugLevel)
}

// Debug logs debug messages (only if debug is enabled)
func Debug(format string, args ...interface{}) {
	sugar().Debugf(format, args...)
}

// Info logs info messages
func Info(format string, args ...interface{}) {
	sugar().Infof(format, args...)
}

// Warn logs warning messages
func Warn(format string, args ...interface{}) {
	sugar().Warnf(format, args...)
}

// Error logs error messages
func Error(format string, args ...interface{}) {
	sugar().Errorf(format, args...)
}

type ctxKey struct{}

// NewRequestID creates a sortable correlation id for one request
func NewRequestID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// WithRequest returns a child context carrying a logger tagged with the request id
func WithRequest(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, L().With(zap.String("request_id", requestID)))
}

// FromContext retrieves the request logger, defaulting to the package logger
func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && logger != nil {
			return logger
		}
	}
	return L()
}
