package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"facegreeter/internal/config"
)

// Level names double as log file names: info.log, warning.log, error.log.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Logger provides leveled logging (info/warning/error) to files and stdout/stderr.
type Logger struct {
	infoLog    *log.Logger
	warningLog *log.Logger
	errorLog   *log.Logger
	files      []*os.File
	logDir     string
	mu         sync.Mutex
}

// NewLogger creates a Logger in the configured log directory and exits if it cannot.
func NewLogger(cfg *config.Config) *Logger {
	l, err := New(cfg.LogDirectory)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	return l
}

// New creates a Logger writing into dir, creating it when missing.
func New(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	l := &Logger{logDir: dir}
	if err := l.setupLoggers(); err != nil {
		l.Close()
		return nil, err
	}
	return l, nil
}

// setupLoggers initializes writers and per-level loggers.
func (l *Logger) setupLoggers() error {
	infoFile, err := l.openLogFile(FileName(LevelInfo))
	if err != nil {
		return err
	}
	warningFile, err := l.openLogFile(FileName(LevelWarning))
	if err != nil {
		return err
	}
	errorFile, err := l.openLogFile(FileName(LevelError))
	if err != nil {
		return err
	}

	flags := log.Ldate | log.Ltime | log.Lshortfile
	l.infoLog = log.New(io.MultiWriter(os.Stdout, infoFile), "INFO    ", flags)
	l.warningLog = log.New(io.MultiWriter(os.Stdout, warningFile), "WARNING ", flags)
	l.errorLog = log.New(io.MultiWriter(os.Stderr, errorFile), "ERROR   ", flags)
	return nil
}

// openLogFile opens or creates a log file for appending.
func (l *Logger) openLogFile(name string) (*os.File, error) {
	file, err := os.OpenFile(filepath.Join(l.logDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", name, err)
	}
	l.files = append(l.files, file)
	return file, nil
}

// FileName maps a level to its log file name.
func FileName(level string) string {
	return level + ".log"
}

// Dir returns the directory holding the log files.
func (l *Logger) Dir() string {
	return l.logDir
}

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infoLog.Output(2, fmt.Sprintf(format, v...))
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warningLog.Output(2, fmt.Sprintf(format, v...))
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errorLog.Output(2, fmt.Sprintf(format, v...))
}

// CleanLogs truncates the specified log file.
func (l *Logger) CleanLogs(fileName string) error {
	filePath := filepath.Join(l.logDir, filepath.Base(fileName))
	if err := os.Truncate(filePath, 0); err != nil {
		l.Error("Error truncating %s: %v", fileName, err)
		return err
	}

	l.Info("%s has been cleared", fileName)
	return nil
}

// Close closes the underlying log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	for _, f := range l.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.files = nil
	return firstErr
}
