// Package logger holds the process-wide structured logger.
//
// The logger starts as a no-op so that library code can log before (or
// without) Initialize being called.
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Standard field names used across packages.
const (
	FieldModel     = "model"
	FieldTable     = "table"
	FieldOwnerID   = "owner_id"
	FieldVersion   = "version"
	FieldCount     = "count"
	FieldAttribute = "attribute"
	FieldError     = "error"
)

var (
	// Logger is the global logger instance
	Logger *zap.SugaredLogger
	// JSONOutput records whether Initialize selected JSON encoding
	JSONOutput bool
)

func init() {
	Logger = zap.NewNop().Sugar()
}

// Initialize replaces the global logger. level is one of debug, info, warn
// or error; anything else falls back to info.
func Initialize(level string, jsonOutput bool) error {
	JSONOutput = jsonOutput

	var config zap.Config
	if jsonOutput {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.DisableStacktrace = true
	}
	config.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	config.OutputPaths = []string{"stderr"}

	zapLogger, err := config.Build()
	if err != nil {
		return err
	}

	Logger = zapLogger.Sugar()
	return nil
}

// ParseLevel maps a level name to a zap level
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Named returns a child of the global logger tagged with a component name
func Named(component string) *zap.SugaredLogger {
	return Logger.Named(component)
}

// Cleanup flushes any buffered log entries
func Cleanup() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}
