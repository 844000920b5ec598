// Package logging provides config-driven categorized file-based logging for nastrun.
// Logs are written to <dir>/.nastrun/logs/ with separate files per category.
// Logging is a silent no-op unless debug mode is enabled via Configure.
package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryBoot        Category = "boot"        // Startup, config loading
	CategoryWorkspace   Category = "workspace"   // Scratch directory lifecycle
	CategoryInvoke      Category = "invoke"      // Engine invocation, process management
	CategoryDecode      Category = "decode"      // Report decoding
	CategoryRun         Category = "run"         // Run coordination
	CategoryArchive     Category = "archive"     // Run archive store
	CategoryWatch       Category = "watch"       // Deck file watcher
	CategoryPerformance Category = "performance" // Timing, slow operations
)

// Options controls logger behavior. Populated from the nastrun config
// file by the CLI layer; the zero value disables all logging.
type Options struct {
	DebugMode  bool
	Level      string // debug, info, warn, error
	JSONFormat bool
	Categories map[string]bool // nil = all categories enabled
}

// StructuredLogEntry is the JSON log record shape.
type StructuredLogEntry struct {
	Timestamp int64                  `json:"ts"` // Unix milliseconds
	Category  string                 `json:"cat"`
	Level     string                 `json:"lvl"`
	Message   string                 `json:"msg"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Logger wraps a standard logger with category and file output.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	opts      Options
	optsMu    sync.RWMutex
	logLevel  int
)

// Log levels.
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Configure sets up the logging directory and options.
// Should be called once at startup; dir is the base directory under
// which .nastrun/logs is created.
func Configure(dir string, o Options) error {
	optsMu.Lock()
	opts = o
	switch o.Level {
	case "debug":
		logLevel = LevelDebug
	case "warn", "warning":
		logLevel = LevelWarn
	case "error":
		logLevel = LevelError
	default:
		logLevel = LevelInfo
	}
	optsMu.Unlock()

	if !o.DebugMode {
		return nil // silent no-op in production mode
	}

	if dir == "" {
		return fmt.Errorf("logging directory required when debug mode is enabled")
	}
	logsDir = filepath.Join(dir, ".nastrun", "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== nastrun logging initialized ===")
	boot.Info("Logs directory: %s", logsDir)
	boot.Info("Log level: %s", o.Level)
	return nil
}

// IsDebugMode reports whether debug logging is enabled.
func IsDebugMode() bool {
	optsMu.RLock()
	defer optsMu.RUnlock()
	return opts.DebugMode
}

// IsCategoryEnabled reports whether a specific category is enabled.
func IsCategoryEnabled(category Category) bool {
	optsMu.RLock()
	defer optsMu.RUnlock()
	if !opts.DebugMode {
		return false
	}
	if opts.Categories == nil {
		return true
	}
	enabled, exists := opts.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode or the category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) || logsDir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	// Date prefix keeps rotation trivial.
	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

func (l *Logger) logJSON(level, msg string) {
	entry := StructuredLogEntry{
		Timestamp: time.Now().UnixMilli(),
		Category:  string(l.category),
		Level:     level,
		Message:   msg,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		l.logger.Printf("[%s] %s", level, msg)
		return
	}
	l.logger.Printf("%s", data)
}

func (l *Logger) write(level int, tag, format string, args ...interface{}) {
	if l.logger == nil || logLevel > level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	optsMu.RLock()
	jsonFmt := opts.JSONFormat
	optsMu.RUnlock()
	if jsonFmt {
		l.logJSON(tag, msg)
	} else {
		l.logger.Printf("[%s] %s", tag, msg)
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.write(LevelDebug, "DEBUG", format, args...)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.write(LevelInfo, "INFO", format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.write(LevelWarn, "WARN", format, args...)
}

// Error logs an error message (always logged if logger exists).
func (l *Logger) Error(format string, args ...interface{}) {
	l.write(LevelError, "ERROR", format, args...)
}

// CloseAll closes all open log files (call at shutdown).
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// These are no-ops if the category is disabled
// =============================================================================

// Boot logs to the boot category.
func Boot(format string, args ...interface{}) { Get(CategoryBoot).Info(format, args...) }

// BootDebug logs debug to the boot category.
func BootDebug(format string, args ...interface{}) { Get(CategoryBoot).Debug(format, args...) }

// BootError logs error to the boot category.
func BootError(format string, args ...interface{}) { Get(CategoryBoot).Error(format, args...) }

// Workspace logs to the workspace category.
func Workspace(format string, args ...interface{}) { Get(CategoryWorkspace).Info(format, args...) }

// WorkspaceDebug logs debug to the workspace category.
func WorkspaceDebug(format string, args ...interface{}) {
	Get(CategoryWorkspace).Debug(format, args...)
}

// WorkspaceWarn logs warning to the workspace category.
func WorkspaceWarn(format string, args ...interface{}) { Get(CategoryWorkspace).Warn(format, args...) }

// Invoke logs to the invoke category.
func Invoke(format string, args ...interface{}) { Get(CategoryInvoke).Info(format, args...) }

// InvokeDebug logs debug to the invoke category.
func InvokeDebug(format string, args ...interface{}) { Get(CategoryInvoke).Debug(format, args...) }

// InvokeWarn logs warning to the invoke category.
func InvokeWarn(format string, args ...interface{}) { Get(CategoryInvoke).Warn(format, args...) }

// InvokeError logs error to the invoke category.
func InvokeError(format string, args ...interface{}) { Get(CategoryInvoke).Error(format, args...) }

// Decode logs to the decode category.
func Decode(format string, args ...interface{}) { Get(CategoryDecode).Info(format, args...) }

// DecodeDebug logs debug to the decode category.
func DecodeDebug(format string, args ...interface{}) { Get(CategoryDecode).Debug(format, args...) }

// DecodeWarn logs warning to the decode category.
func DecodeWarn(format string, args ...interface{}) { Get(CategoryDecode).Warn(format, args...) }

// Run logs to the run category.
func Run(format string, args ...interface{}) { Get(CategoryRun).Info(format, args...) }

// RunDebug logs debug to the run category.
func RunDebug(format string, args ...interface{}) { Get(CategoryRun).Debug(format, args...) }

// RunWarn logs warning to the run category.
func RunWarn(format string, args ...interface{}) { Get(CategoryRun).Warn(format, args...) }

// RunError logs error to the run category.
func RunError(format string, args ...interface{}) { Get(CategoryRun).Error(format, args...) }

// Archive logs to the archive category.
func Archive(format string, args ...interface{}) { Get(CategoryArchive).Info(format, args...) }

// ArchiveDebug logs debug to the archive category.
func ArchiveDebug(format string, args ...interface{}) { Get(CategoryArchive).Debug(format, args...) }

// ArchiveError logs error to the archive category.
func ArchiveError(format string, args ...interface{}) { Get(CategoryArchive).Error(format, args...) }

// Watch logs to the watch category.
func Watch(format string, args ...interface{}) { Get(CategoryWatch).Info(format, args...) }

// WatchDebug logs debug to the watch category.
func WatchDebug(format string, args ...interface{}) { Get(CategoryWatch).Debug(format, args...) }

// WatchWarn logs warning to the watch category.
func WatchWarn(format string, args ...interface{}) { Get(CategoryWatch).Warn(format, args...) }

// =============================================================================
// TIMING HELPERS - For performance logging
// =============================================================================

// Timer helps measure operation duration.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs a warning if duration exceeds threshold.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
