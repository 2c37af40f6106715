package logger

import (
	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap sugared logger so callers get structured, levelled
// logging without importing zap directly.
type Logger struct {
	*zap.SugaredLogger
}

// NewLogger creates a logger honouring the configured log level.
func NewLogger(cfg *config.Configuration) (*Logger, error) {
	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel(cfg.Logging.Level))
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"

	l, err := zapConfig.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	return &Logger{l.Sugar()}, nil
}

// GetLogger returns a development logger. Intended for tests and early
// startup paths that run before configuration is loaded.
func GetLogger() *Logger {
	l, _ := zap.NewDevelopment(zap.AddCallerSkip(1))
	return &Logger{l.Sugar()}
}

func zapLevel(level types.LogLevel) zapcore.Level {
	switch level {
	case types.LogLevelDebug:
		return zapcore.DebugLevel
	case types.LogLevelInfo:
		return zapcore.InfoLevel
	case types.LogLevelWarn:
		return zapcore.WarnLevel
	case types.LogLevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// With returns a child logger with the given structured context attached.
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{l.SugaredLogger.With(args...)}
}
