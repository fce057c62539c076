package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/streakline/internal/constants"
)

var (
	// Logger is the global logger instance
	Logger *log.Logger

	sink *lumberjack.Logger
)

// Config holds logger configuration
type Config struct {
	Debug     bool
	ConfigDir string
}

// Init initializes the global logger. Output goes to a rotating file under
// <ConfigDir>/logs and, in debug mode, to stderr as well.
func Init(cfg Config) error {
	logDir := filepath.Join(cfg.ConfigDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	sink = &lumberjack.Logger{
		Filename:   filepath.Join(logDir, constants.AppName+".log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	level := log.WarnLevel
	var writer io.Writer = sink
	if cfg.Debug {
		level = log.DebugLevel
		writer = io.MultiWriter(os.Stderr, sink)
	}

	Logger = log.NewWithOptions(writer, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          constants.AppName,
	})

	return nil
}

// DetachStderr stops mirroring log output to stderr. The dashboard calls it
// before taking over the terminal; records still reach the log file.
func DetachStderr() {
	if Logger == nil || sink == nil {
		return
	}
	Logger.SetOutput(sink)
}

// Scope is a logger carrying fixed key/value pairs, such as the request id
// of an API call or the habit and day of a toggle. The zero Scope discards.
type Scope struct {
	l *log.Logger
}

// With returns a Scope that prefixes every record with keyvals.
func With(keyvals ...interface{}) Scope {
	if Logger == nil {
		return Scope{}
	}
	return Scope{l: Logger.With(keyvals...)}
}

func (s Scope) Debug(msg string, keyvals ...interface{}) {
	if s.l != nil {
		s.l.Debug(msg, keyvals...)
	}
}

func (s Scope) Info(msg string, keyvals ...interface{}) {
	if s.l != nil {
		s.l.Info(msg, keyvals...)
	}
}

func (s Scope) Error(msg string, keyvals ...interface{}) {
	if s.l != nil {
		s.l.Error(msg, keyvals...)
	}
}

// Close flushes and closes the log file, if one is open.
func Close() error {
	if sink == nil {
		return nil
	}
	err := sink.Close()
	sink = nil
	return err
}

// Debug logs a debug message
func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

// Info logs an info message
func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

// Warn logs a warning message
func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

// Error logs an error message
func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}

// Fatal logs a fatal error and exits
func Fatal(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Fatal(msg, keyvals...)
	}
	os.Exit(1)
}
