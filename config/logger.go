package config

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var globalLogger *zap.Logger

// InitLogger builds the process-wide Zap logger at the requested level.
// Every subsystem derives its named logger from this one.
func InitLogger(logLevelStr string) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(parseLevel(logLevelStr))

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	logger = logger.Named("audit")

	// Store for cleanup purposes
	globalLogger = logger

	return logger, nil
}

func parseLevel(logLevelStr string) zapcore.Level {
	switch strings.ToLower(logLevelStr) {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warn", "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	case "fatal":
		return zap.FatalLevel
	default:
		return zap.InfoLevel
	}
}

// Cleanup flushes any buffered log entries
func Cleanup() {
	if globalLogger != nil {
		globalLogger.Sync()
	}
}
