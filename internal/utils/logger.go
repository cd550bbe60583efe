package utils

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"
)

// LogLevel represents different logging levels
type LogLevel int32

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	DISABLED
)

// String returns the string representation of log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case DISABLED:
		return "DISABLED"
	default:
		return "UNKNOWN"
	}
}

// Logger provides leveled logging with a component prefix
type Logger struct {
	level int32 // atomic access
	name  string
}

// Global logger instance
var globalLogger *Logger

func init() {
	globalLogger = NewLogger("")
	globalLogger.SetLevel(levelFromEnv())
}

func levelFromEnv() LogLevel {
	switch os.Getenv("LOG_LEVEL") {
	case "DEBUG":
		return DEBUG
	case "WARN":
		return WARN
	case "ERROR":
		return ERROR
	case "DISABLED":
		return DISABLED
	default:
		return INFO
	}
}

// NewLogger creates a new logger with the given component name
func NewLogger(name string) *Logger {
	return &Logger{
		level: int32(INFO),
		name:  name,
	}
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level LogLevel) {
	atomic.StoreInt32(&l.level, int32(level))
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() LogLevel {
	return LogLevel(atomic.LoadInt32(&l.level))
}

func (l *Logger) shouldLog(level LogLevel) bool {
	return LogLevel(atomic.LoadInt32(&l.level)) <= level
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.shouldLog(DEBUG) {
		l.logf(DEBUG, format, args...)
	}
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	if l.shouldLog(INFO) {
		l.logf(INFO, format, args...)
	}
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.shouldLog(WARN) {
		l.logf(WARN, format, args...)
	}
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	if l.shouldLog(ERROR) {
		l.logf(ERROR, format, args...)
	}
}

func (l *Logger) logf(level LogLevel, format string, args ...interface{}) {
	var prefix string
	if l.name != "" {
		prefix = fmt.Sprintf("[%s:%s] ", l.name, level.String())
	} else {
		prefix = fmt.Sprintf("[%s] ", level.String())
	}

	log.Printf(prefix+format, args...)
}

// SetGlobalLevel sets the global logger level
func SetGlobalLevel(level LogLevel) {
	globalLogger.SetLevel(level)
}

func logAs(component string, level LogLevel, format string, args ...interface{}) {
	if !globalLogger.shouldLog(level) {
		return
	}
	prefix := fmt.Sprintf("[%s:%s] ", component, level.String())
	log.Printf(prefix+format, args...)
}

// Convenience functions for common logging patterns

func LogDebug(component, format string, args ...interface{}) {
	logAs(component, DEBUG, format, args...)
}

func LogInfo(component, format string, args ...interface{}) {
	logAs(component, INFO, format, args...)
}

func LogWarn(component, format string, args ...interface{}) {
	logAs(component, WARN, format, args...)
}

func LogError(component, format string, args ...interface{}) {
	logAs(component, ERROR, format, args...)
}
