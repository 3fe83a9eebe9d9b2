package logger

import "go.uber.org/zap/zapcore"

// Verbosity flag counts from the CLI (-v, -vv, -vvv).
const (
	VerbosityUser  = 0 // results and errors only
	VerbosityInfo  = 1 // -v: progress and operation summaries
	VerbosityDebug = 2 // -vv: query details, timing, watcher activity
	VerbosityTrace = 3 // -vvv: everything, including per-client hub traffic
)

// VerbosityToLevel maps a -v flag count to a zap log level. The env var
// read by levelFromEnv still wins when the count is zero.
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch {
	case verbosity <= VerbosityUser:
		return zapcore.WarnLevel
	case verbosity == VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}
