// Package logger provides centralized logging for Traffic Silencer.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// FileName is the name of the log file inside the log directory.
const FileName = "traffic-silencer.log"

var (
	logFile   *os.File
	logMutex  sync.Mutex
	logPath   string
	echo      io.Writer
	debugOn   atomic.Bool
	listeners []func(string)
	listMutex sync.RWMutex
)

// Options controls where and how much is logged.
type Options struct {
	// Dir overrides the log directory. Empty means next to the executable.
	Dir string
	// Debug enables DEBUG lines.
	Debug bool
	// RedirectStderr sends panics and runtime output to the log file.
	RedirectStderr bool
}

// Init initializes the logger.
func Init(opts Options) error {
	logMutex.Lock()
	defer logMutex.Unlock()

	dir := opts.Dir
	if dir == "" {
		dir = getLogDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	logPath = filepath.Join(dir, FileName)

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	debugOn.Store(opts.Debug)

	if opts.RedirectStderr {
		redirectStderr(f)
	}

	return nil
}

// Close closes the log file
func Close() {
	logMutex.Lock()
	defer logMutex.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// SetDebug toggles DEBUG output at runtime.
func SetDebug(enabled bool) {
	debugOn.Store(enabled)
}

// SetEcho mirrors every log line to w in addition to the log file.
// Pass nil to stop mirroring.
func SetEcho(w io.Writer) {
	logMutex.Lock()
	defer logMutex.Unlock()
	echo = w
}

// AddListener adds a callback that receives log messages
func AddListener(fn func(string)) {
	listMutex.Lock()
	defer listMutex.Unlock()
	listeners = append(listeners, fn)
}

// Log writes a log message
func Log(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	line := fmt.Sprintf("[%s] %s", timestamp, message)

	logMutex.Lock()
	if logFile != nil {
		logFile.WriteString(line + "\n")
	}
	if echo != nil {
		io.WriteString(echo, line+"\n")
	}
	logMutex.Unlock()

	listMutex.RLock()
	for _, fn := range listeners {
		go fn(line)
	}
	listMutex.RUnlock()
}

// Info logs an info message
func Info(format string, args ...interface{}) {
	Log("INFO: "+format, args...)
}

// Error logs an error message
func Error(format string, args ...interface{}) {
	Log("ERROR: "+format, args...)
}

// Debug logs a debug message if debug output is enabled.
func Debug(format string, args ...interface{}) {
	if !debugOn.Load() {
		return
	}
	Log("DEBUG: "+format, args...)
}

// Warning logs a warning message
func Warning(format string, args ...interface{}) {
	Log("WARN: "+format, args...)
}

// Rule logs a firewall rule change.
func Rule(format string, args ...interface{}) {
	Log("RULE: "+format, args...)
}

// GetLogPath returns the path to the log file
func GetLogPath() string {
	logMutex.Lock()
	defer logMutex.Unlock()
	return logPath
}

// Recover should be deferred at the top of every goroutine to catch panics.
// Usage: go func() { defer logger.Recover("myGoroutine"); ... }()
func Recover(name string) {
	if r := recover(); r != nil {
		stack := string(debug.Stack())
		Error("PANIC in %s: %v\n%s", name, r, stack)
		logMutex.Lock()
		if logFile != nil {
			logFile.Sync()
		}
		logMutex.Unlock()
	}
}

// SafeGo launches a goroutine with panic recovery.
func SafeGo(name string, fn func()) {
	go func() {
		defer Recover(name)
		fn()
	}()
}

// ReadLogs reads the log file contents
func ReadLogs() (string, error) {
	path := GetLogPath()
	if path == "" {
		path = filepath.Join(getLogDir(), FileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ClearLogs truncates the log file
func ClearLogs() error {
	logMutex.Lock()
	defer logMutex.Unlock()

	if logPath == "" {
		return fmt.Errorf("logger not initialized")
	}
	if logFile != nil {
		logFile.Close()
	}

	f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logFile = nil
		return err
	}
	logFile = f
	return nil
}
