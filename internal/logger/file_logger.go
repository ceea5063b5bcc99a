package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger represents a file logger for the regime-streaming pipeline.
type Logger struct {
	symbol    string
	interval  string
	logFile   *os.File
	logger    *log.Logger
	mu        sync.Mutex
	logDir    string
	debugMode bool
}

// LogLevel represents different types of log entries
type LogLevel string

const (
	LogLevelInfo     LogLevel = "INFO"
	LogLevelWarning  LogLevel = "WARN"
	LogLevelError    LogLevel = "ERROR"
	LogLevelStatus   LogLevel = "STATUS"
	LogLevelDebug    LogLevel = "DEBUG"
	LogLevelStrategy LogLevel = "STRATEGY"
	LogLevelWindow   LogLevel = "WINDOW"
)

// NewLogger creates a new file logger for the specified symbol and interval
func NewLogger(symbol, interval string) (*Logger, error) {
	return NewLoggerWithDebug(symbol, interval, false)
}

// NewLoggerWithDebug creates a new file logger with debug mode control
func NewLoggerWithDebug(symbol, interval string, debugMode bool) (*Logger, error) {
	// Create log directory if it doesn't exist
	logDir := "logs"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Create log filename with timestamp
	timestamp := time.Now().Format("2006-01-02")
	filename := fmt.Sprintf("%s_%s_%s.log", symbol, interval, timestamp)
	logPath := filepath.Join(logDir, filename)

	// Open or create log file
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	// Create logger with no prefix and no flags; each entry carries its own
	// timestamp (we add our own formatting)
	logger := log.New(file, "", 0)

	l := &Logger{
		symbol:    symbol,
		interval:  interval,
		logFile:   file,
		logger:    logger,
		logDir:    logDir,
		debugMode: debugMode,
	}

	// Write session start header
	l.writeSessionHeader()

	return l, nil
}

// writeSessionHeader writes a session start header to the log
func (l *Logger) writeSessionHeader() {
	l.mu.Lock()
	defer l.mu.Unlock()

	header := fmt.Sprintf(`
================================================================================
REGIME STREAMING SESSION STARTED
================================================================================
Symbol: %s | Interval: %s
Started: %s
Log File: %s_%s_%s.log
================================================================================
`, l.symbol, l.interval, time.Now().Format("2006-01-02 15:04:05"),
		l.symbol, l.interval, time.Now().Format("2006-01-02"))

	l.logger.Print(header)
}

// Log writes a formatted log entry with the specified level
func (l *Logger) Log(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	message := fmt.Sprintf(format, args...)
	logEntry := fmt.Sprintf("[%s] [%s] %s", timestamp, level, message)

	l.logger.Println(logEntry)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.Log(LogLevelInfo, format, args...)
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.Log(LogLevelWarning, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.Log(LogLevelError, format, args...)
}

// Status logs a periodic detector status line.
func (l *Logger) Status(format string, args ...interface{}) {
	l.Log(LogLevelStatus, format, args...)
}

// LogBarStatus logs the detector's state after processing one bar.
func (l *Logger) LogBarStatus(barTime time.Time, close float64, mapState int, p0, p1 float64, windowOpen bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")

	statusLog := fmt.Sprintf(`
[%s] [STATUS] ==================== BAR PROCESSED ====================
Bar Time: %s | Close: %.6f
MAP State: %d | P0: %.4f | P1: %.4f
Window Open: %t`,
		timestamp, barTime.Format("2006-01-02 15:04:05"), close, mapState, p0, p1, windowOpen)

	statusLog += "\n=========================================================="

	l.logger.Println(statusLog)
}

// LogWindowEvent logs a window OPEN or CLOSE transition.
func (l *Logger) LogWindowEvent(kind string, label string, t time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")

	windowLog := fmt.Sprintf(`
[%s] [WINDOW] ==================== WINDOW %s ====================
Label: %s
At: %s
=============================================================`,
		timestamp, kind, label, t.Format("2006-01-02 15:04:05"))

	l.logger.Println(windowLog)
}

// LogError logs error with context
func (l *Logger) LogError(context string, err error) {
	l.Error("%s: %v", context, err)
}

// LogWarning logs warning with context
func (l *Logger) LogWarning(context string, message string, args ...interface{}) {
	fullMessage := fmt.Sprintf(context+": "+message, args...)
	l.Warning("%s", fullMessage)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.Log(LogLevelDebug, format, args...)
}

// Strategy logs detector-configuration related information
func (l *Logger) Strategy(format string, args ...interface{}) {
	l.Log(LogLevelStrategy, format, args...)
}

// LogErrorWithContext logs detailed error information with context
func (l *Logger) LogErrorWithContext(context string, err error, additionalInfo map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")

	errorLog := fmt.Sprintf(`
[%s] [ERROR] ==================== ERROR DETAILS ====================
Context: %s
Error: %v`, timestamp, context, err)

	if len(additionalInfo) > 0 {
		errorLog += "\nAdditional Info:"
		for key, value := range additionalInfo {
			errorLog += fmt.Sprintf(`
  • %s: %v`, key, value)
		}
	}

	errorLog += "\n============================================================="

	l.logger.Println(errorLog)
}

// LogPerformanceMetrics logs performance and timing information
func (l *Logger) LogPerformanceMetrics(operation string, duration time.Duration, details map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")

	perfLog := fmt.Sprintf(`
[%s] [DEBUG] ==================== PERFORMANCE METRICS ====================
Operation: %s | Duration: %v`, timestamp, operation, duration)

	if len(details) > 0 {
		perfLog += "\nDetails:"
		for key, value := range details {
			perfLog += fmt.Sprintf(`
  • %s: %v`, key, value)
		}
	}

	perfLog += "\n============================================================="

	l.logger.Println(perfLog)
}

// LogStateChange logs important state changes, only while in debug mode.
func (l *Logger) LogStateChange(component string, oldState, newState interface{}, reason string) {
	if !l.debugMode {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")

	stateLog := fmt.Sprintf(`
[%s] [DEBUG] ==================== STATE CHANGE ====================
Component: %s
Old State: %v
New State: %v
Reason: %s
=============================================================`,
		timestamp, component, oldState, newState, reason)

	l.logger.Println(stateLog)
}

// SetDebugMode enables or disables debug logging
func (l *Logger) SetDebugMode(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debugMode = enabled
}

// IsDebugMode returns whether debug mode is enabled
func (l *Logger) IsDebugMode() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debugMode
}

// LogDebugOnly logs only when debug mode is enabled
func (l *Logger) LogDebugOnly(format string, args ...interface{}) {
	if l.debugMode {
		l.Debug(format, args...)
	}
}

// Close closes the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile != nil {
		// Write session end header
		timestamp := time.Now().Format("2006-01-02 15:04:05")
		footer := fmt.Sprintf(`
================================================================================
REGIME STREAMING SESSION ENDED
================================================================================
Ended: %s
================================================================================

`, timestamp)
		l.logger.Print(footer)

		return l.logFile.Close()
	}
	return nil
}

// GetLogPath returns the current log file path
func (l *Logger) GetLogPath() string {
	timestamp := time.Now().Format("2006-01-02")
	filename := fmt.Sprintf("%s_%s_%s.log", l.symbol, l.interval, timestamp)
	return filepath.Join(l.logDir, filename)
}
