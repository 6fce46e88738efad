package applog

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

type LogLevel uint8

const (
	LogLevelOff LogLevel = iota
	LogLevelDebug
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

var logLevelNames = []string{"OFF", "DEBUG", "INFO", "WARN", "ERROR"}

func (l LogLevel) String() string {
	if l > LogLevelError {
		return ""
	}

	return logLevelNames[l]
}

func ParseLevel(name string) (LogLevel, error) {
	for i, n := range logLevelNames {
		if strings.EqualFold(name, n) {
			return LogLevel(i), nil
		}
	}

	return LogLevelOff, fmt.Errorf("unknown log level %q", name)
}

type Logger struct {
	pkg string
}

type LogHandler interface {
	Log(LogLevel, time.Time, string, string, ...any)
}

// DefaultLogHandler writes to stderr, keeping stdout free for scan records.
type DefaultLogHandler struct {
	level LogLevel
}

func NewDefaultHandler(level LogLevel) *DefaultLogHandler {
	return &DefaultLogHandler{level: level}
}

func (h *DefaultLogHandler) Log(level LogLevel, when time.Time, pkg string, msg string, args ...any) {
	if h.level == LogLevelOff || level < h.level {
		return
	}

	prefix := []any{when.Format(time.RFC3339), level.String(), pkg}

	fmt.Fprintf(os.Stderr, "%s [%s] %s "+msg+"\n", append(prefix, args...)...)
}

var logHandler LogHandler = &DefaultLogHandler{level: LogLevelInfo}
var logMutex sync.RWMutex

func SetLogHandler(h LogHandler) {
	logMutex.Lock()
	defer logMutex.Unlock()
	logHandler = h
}

func New(pkg string) *Logger {
	return &Logger{pkg: pkg}
}

func (l *Logger) emit(level LogLevel, msg string, args ...any) {
	logMutex.RLock()
	defer logMutex.RUnlock()

	logHandler.Log(level, time.Now(), l.pkg, msg, args...)
}

func (l *Logger) Debug(msg string)               { l.emit(LogLevelDebug, "%s", msg) }
func (l *Logger) Debugf(msg string, args ...any) { l.emit(LogLevelDebug, msg, args...) }
func (l *Logger) Info(msg string)                { l.emit(LogLevelInfo, "%s", msg) }
func (l *Logger) Infof(msg string, args ...any)  { l.emit(LogLevelInfo, msg, args...) }
func (l *Logger) Warn(msg string)                { l.emit(LogLevelWarn, "%s", msg) }
func (l *Logger) Warnf(msg string, args ...any)  { l.emit(LogLevelWarn, msg, args...) }
func (l *Logger) Error(msg string)               { l.emit(LogLevelError, "%s", msg) }
func (l *Logger) Errorf(msg string, args ...any) { l.emit(LogLevelError, msg, args...) }
