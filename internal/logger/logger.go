// Package logger provides a lightweight, centralized logging facility
// with configurable verbosity levels.
//
// Design goals:
//   - Simple API (Errorf, Warnf, Infof, Debugf, Tracef)
//   - Centralized verbosity control
//   - Zero formatting logic at call sites
//
// Verbosity levels (in increasing order):
//
//	Error < Info < Debug < Trace
//
// Example usage:
//
//	logger.SetVerbosity(2) // Debug
//	logger.Infof("pricing started")
//	logger.Debugf("spot=%f vol=%f", spot, vol)
package logger

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// Level represents a logging verbosity level.
// Higher values mean more verbose logging.
type Level int

const (
	Error Level = iota // Error logs only critical failures.
	Info               // Info logs high-level application progress.
	Debug              // Debug logs detailed diagnostic information.
	Trace              // Trace logs very fine-grained execution details.
)

var std = log.New()

// init configures the logger used by this package.
//
// All output goes to stderr so logs stay separated from the
// pricing report written to stdout.
//
// Example output:
//
//	time="2026-01-25T15:42:10Z" level=info msg="pricing started"
func init() {
	std.SetOutput(os.Stderr)
	std.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	SetVerbosity(int(Info))
}

// SetVerbosity sets the global logging verbosity.
// Typically called once during application startup
// (e.g. after parsing CLI flags). Values outside 0..3 are clamped.
func SetVerbosity(v int) {
	switch {
	case v <= int(Error):
		std.SetLevel(log.ErrorLevel)
	case v == int(Info):
		std.SetLevel(log.InfoLevel)
	case v == int(Debug):
		std.SetLevel(log.DebugLevel)
	default:
		std.SetLevel(log.TraceLevel)
	}
}

// Verbosity reports the active verbosity level.
func Verbosity() Level {
	switch std.GetLevel() {
	case log.TraceLevel:
		return Trace
	case log.DebugLevel:
		return Debug
	case log.InfoLevel, log.WarnLevel:
		return Info
	default:
		return Error
	}
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// Errorf logs an error-level message.
// Use this for failures that require attention.
func Errorf(format string, args ...any) {
	std.Errorf(format, args...)
}

// Warnf logs a warning. Warnings are shown from Info verbosity up.
func Warnf(format string, args ...any) {
	std.Warnf(format, args...)
}

// Infof logs an informational message.
// Use this for major lifecycle events.
func Infof(format string, args ...any) {
	std.Infof(format, args...)
}

// Debugf logs debugging information.
func Debugf(format string, args ...any) {
	std.Debugf(format, args...)
}

// Tracef logs very detailed execution traces.
// Use this sparingly due to high volume.
func Tracef(format string, args ...any) {
	std.Tracef(format, args...)
}
