// Package logging provides the process-wide structured logger used across
// the janitor: a small singleton wrapper over zap, configured once at
// startup from the verbosity and log-file flags.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global *zap.Logger

// Init configures the global logger. verboseCount is the number of times
// -v was repeated on the command line: 0 yields INFO level, 1 yields DEBUG.
// When logFile is non-empty, logs are written to both stderr and the file.
func Init(verboseCount int, logFile string) error {
	level := zapcore.InfoLevel
	if verboseCount > 0 {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewConsoleEncoder(encoderCfg)

	sinks := []zapcore.WriteSyncer{zapcore.Lock(zapcore.AddSync(os.Stderr))}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("logging: opening log file %s: %w", logFile, err)
		}
		sinks = append(sinks, zapcore.Lock(zapcore.AddSync(f)))
		closeFile = f.Close
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)
	global = zap.New(core)
	return nil
}

var closeFile func() error

// Close flushes and closes any open log file. Safe to call even if Init was
// never called or no log file was configured.
func Close() error {
	if global != nil {
		_ = global.Sync()
	}
	if closeFile != nil {
		err := closeFile()
		closeFile = nil
		return err
	}
	return nil
}

// L returns the global logger, falling back to a no-op logger if Init has
// not been called (e.g. in tests).
func L() *zap.Logger {
	if global == nil {
		global = zap.NewNop()
	}
	return global
}

// Debug logs a debug-level message with structured fields.
func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }

// Info logs an informational message with structured fields.
func Info(msg string, fields ...zap.Field) { L().Info(msg, fields...) }

// Warn logs a warning message with structured fields.
func Warn(msg string, fields ...zap.Field) { L().Warn(msg, fields...) }

// Error logs an error message with structured fields.
func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }

// FileError logs a failed deletion for a specific cache file.
func FileError(path string, err error) {
	Error("delete failed", zap.String("path", path), zap.Error(err))
}

// FileWarning logs a non-fatal issue encountered while processing a
// specific cache file.
func FileWarning(path string, reason string) {
	Warn("skipped file", zap.String("path", path), zap.String("reason", reason))
}
