package types

import (
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/samber/lo"
)

// LogLevel is the logging verbosity for the application
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

func (l LogLevel) Validate() error {
	allowed := []LogLevel{LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError}
	if !lo.Contains(allowed, l) {
		return ierr.NewError("invalid log level").
			WithHintf("Log level %s is not valid", l).
			Mark(ierr.ErrValidation)
	}
	return nil
}
