// Package logging creates the structured loggers used throughout the
// module. Loggers are go-logr Loggers backed by zap.
package logging

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels passed to logr.Logger.V
const (
	DEFAULT = 0
	VERBOSE = 1
	DEBUG   = 2
)

// New returns a production Logger that emits messages logged at
// verbosity at most level, which must be non-negative
func New(level int) (logr.Logger, error) {
	if level < 0 {
		return logr.Discard(), fmt.Errorf("new: invalid log level %d", level)
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.Level(-level))
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zapLog, err := config.Build(zap.AddCaller())
	if err != nil {
		return logr.Discard(), fmt.Errorf("new: could not build logger: %v",
			err)
	}
	return zapr.NewLogger(zapLog), nil
}

// NewTestLogger creates a new Zap logger using the dev mode, emitting
// messages at all verbosities up to DEBUG.
func NewTestLogger() logr.Logger {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.Level(-DEBUG))

	zapLog, err := config.Build(zap.AddCaller())
	if err != nil {
		return logr.Discard()
	}
	return zapr.NewLogger(zapLog)
}
