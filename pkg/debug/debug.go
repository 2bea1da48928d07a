// Package debug provides conditional debug logging for tsc-err-dirs.
//
// Debug logging is enabled by setting the TSC_ERR_DIRS_DEBUG environment
// variable or passing --debug:
//
//	TSC_ERR_DIRS_DEBUG=1 tsc-err-dirs ./packages/app
//
// The prompt owns the terminal, so messages go to a log file
// (TSC_ERR_DIRS_DEBUG_FILE, or debug.log in the state directory) and only
// fall back to stderr when no file can be opened. When disabled (default),
// all functions are no-ops.
//
// Usage:
//
//	debug.Log("loaded %d diagnostics", n)
//	defer debug.LogEnterExit("compile")()
package debug

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// EnvEnable turns debug logging on when non-empty.
	EnvEnable = "TSC_ERR_DIRS_DEBUG"
	// EnvFile overrides the log file location.
	EnvFile = "TSC_ERR_DIRS_DEBUG_FILE"
)

var (
	mu      sync.Mutex
	enabled bool
	logger  *zap.SugaredLogger
	base    *zap.Logger
)

func init() {
	if os.Getenv(EnvEnable) != "" {
		SetEnabled(true)
	}
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// SetEnabled allows programmatic control of debug logging. The logger is
// built on first enable.
func SetEnabled(e bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = e
	if e && logger == nil {
		base = newLogger(logPath())
		logger = base.Sugar()
	}
}

// SetOutput routes debug output to the given path, replacing any previous
// destination. Mostly useful in tests.
func SetOutput(path string) {
	mu.Lock()
	defer mu.Unlock()
	if base != nil {
		_ = base.Sync()
	}
	base = newLogger(path)
	logger = base.Sugar()
}

func logPath() string {
	if p := os.Getenv(EnvFile); p != "" {
		return p
	}
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "tsc-err-dirs", "debug.log")
}

func newLogger(path string) *zap.Logger {
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000000")
	encoderCfg.ConsoleSeparator = " "

	var sink zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
			if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
				sink = zapcore.Lock(f)
			}
		}
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), sink, zap.DebugLevel)
	return zap.New(core).Named("TSC_ERR_DIRS_DEBUG")
}

func sugared() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	if !enabled {
		return nil
	}
	return logger
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if l := sugared(); l != nil {
		l.Debugf(format, args...)
	}
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if l := sugared(); l != nil {
		l.Debugw("timing", "op", name, "took", d)
	}
}

// LogEnterExit logs function entry and exit with timing.
//
//	func compile() {
//	    defer debug.LogEnterExit("compile")()
//	}
func LogEnterExit(name string) func() {
	l := sugared()
	if l == nil {
		return func() {}
	}
	l.Debugf("-> %s", name)
	start := time.Now()
	return func() {
		l.Debugf("<- %s (%v)", name, time.Since(start))
	}
}

// Section logs a section header for visual organization in debug output.
func Section(name string) {
	if l := sugared(); l != nil {
		l.Debugf("=== %s ===", name)
	}
}

// Sync flushes buffered entries. Call before exit.
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	if base != nil {
		_ = base.Sync()
	}
}
