// Package logging provides a small leveled logger shared across every
// component of the duplicate-detection pipeline.
package logging

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

// Level is the severity of a log message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	currentLevel = LevelInfo
	useColors    = isatty.IsTerminal(os.Stderr.Fd())
)

// SetLevel sets the minimum level that will be printed.
func SetLevel(level Level) {
	currentLevel = level
}

// SetVerbose switches to debug-level logging when verbose is true.
func SetVerbose(verbose bool) {
	if verbose {
		currentLevel = LevelDebug
	}
}

// SetQuiet restricts output to errors only when quiet is true.
func SetQuiet(quiet bool) {
	if quiet {
		currentLevel = LevelError
	}
}

// SetColors forces colorized output on or off, overriding TTY detection.
func SetColors(enabled bool) {
	useColors = enabled
}

func colorize(color, text string) string {
	if !useColors {
		return text
	}
	return color + text + "\033[0m"
}

func timestamp() string {
	return time.Now().Format("15:04:05")
}

// Debug logs a debug-level message.
func Debug(format string, args ...interface{}) {
	if currentLevel <= LevelDebug {
		fmt.Fprintf(os.Stderr, "%s [DEBUG] %s\n", colorize("\033[90m", timestamp()), fmt.Sprintf(format, args...))
	}
}

// Info logs an info-level message.
func Info(format string, args ...interface{}) {
	if currentLevel <= LevelInfo {
		fmt.Fprintf(os.Stderr, "%s [INFO]  %s\n", colorize("\033[36m", timestamp()), fmt.Sprintf(format, args...))
	}
}

// Warn logs a warning-level message.
func Warn(format string, args ...interface{}) {
	if currentLevel <= LevelWarn {
		fmt.Fprintf(os.Stderr, "%s [WARN]  %s\n", colorize("\033[33m", timestamp()), fmt.Sprintf(format, args...))
	}
}

// Error logs an error-level message.
func Error(format string, args ...interface{}) {
	if currentLevel <= LevelError {
		fmt.Fprintf(os.Stderr, "%s [ERROR] %s\n", colorize("\033[31m", timestamp()), fmt.Sprintf(format, args...))
	}
}

// Success logs a success message at info level, visually distinguished.
func Success(format string, args ...interface{}) {
	if currentLevel <= LevelInfo {
		fmt.Fprintf(os.Stderr, "%s [OK]    %s\n", colorize("\033[32m", timestamp()), fmt.Sprintf(format, args...))
	}
}
