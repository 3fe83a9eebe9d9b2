// Package logger provides the process-wide structured logger for planograph.
//
// It wraps go.uber.org/zap. The global Logger starts as a no-op so packages
// can log at load time without a nil check; Initialize swaps in the real
// logger once the caller knows whether it wants human or machine output.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the global logger instance. Components derive named
	// sub-loggers from it: logger.Logger.Named("graph.store").
	Logger *zap.SugaredLogger

	// JSONOutput tracks whether Initialize selected JSON output.
	JSONOutput bool
)

func init() {
	// Safe no-op until Initialize is called
	Logger = zap.NewNop().Sugar()
}

// Initialize sets up the global logger. With jsonOutput the logger emits
// production JSON for machine consumption; otherwise a human-readable
// console encoder writes to stdout. A verbosity count above zero
// overrides the level from the environment.
func Initialize(jsonOutput bool, verbosity int) error {
	JSONOutput = jsonOutput

	level := levelFromEnv()
	if verbosity > VerbosityUser {
		level = VerbosityToLevel(verbosity)
	}

	var zapLogger *zap.Logger
	var err error

	if jsonOutput {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(level)
		zapLogger, err = config.Build()
		if err != nil {
			return err
		}
	} else {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapLogger = zap.New(
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(encoderConfig),
				zapcore.AddSync(os.Stdout),
				level,
			),
		)
	}

	Logger = zapLogger.Sugar()
	return nil
}

// levelFromEnv reads PLANOGRAPH_LOG_LEVEL, defaulting to info.
func levelFromEnv() zapcore.Level {
	switch os.Getenv("PLANOGRAPH_LOG_LEVEL") {
	case "debug":
		return zap.DebugLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// Sync flushes buffered log entries. Callers should invoke it on shutdown.
func Sync() {
	_ = Logger.Sync()
}
