package log

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/debug"
	"time"
)

type LogLevel string

const (
	FatalLevel    LogLevel = "fatal"
	ErrorLevel    LogLevel = "error"
	WarningLevel  LogLevel = "warn"
	InfoLevel     LogLevel = "info"
	DebugLevel    LogLevel = "debug"
	TraceLevel    LogLevel = "trace"
	DisabledLevel LogLevel = "disabled"
)

var severity = map[LogLevel]int{
	TraceLevel:    5,
	DebugLevel:    4,
	InfoLevel:     3,
	WarningLevel:  2,
	ErrorLevel:    1,
	FatalLevel:    0,
	DisabledLevel: -1,
}

type sink struct {
	log   *log.Logger
	level LogLevel
}

func (s *sink) println(level LogLevel, args ...any) {
	if !ShouldLog(level, s.level) {
		return
	}
	ts := time.Now().Local()
	stamp := fmt.Sprintf("%s.%03d", ts.Format("2006-01-02 15:04:05"), ts.Nanosecond()/1000000)
	all := append([]any{stamp, fmt.Sprintf("- %5s -", level)}, args...)
	s.log.Println(all...)
}

func (s *sink) printf(level LogLevel, format string, args ...any) {
	if !ShouldLog(level, s.level) {
		return
	}
	s.println(level, fmt.Sprintf(format, args...))
}

var (
	stdout = sink{log.New(os.Stdout, "", 0), InfoLevel}
	stderr = sink{log.New(os.Stderr, "", 0), InfoLevel}
)

// Set the log level of both the stdout and stderr sinks.
func SetLevel(level LogLevel) error {
	if !ValidLogLevel(level) {
		return fmt.Errorf("No such log level %s", level)
	}
	stdout.level = level
	stderr.level = level
	return nil
}

func ValidLogLevel(level LogLevel) bool {
	_, ok := severity[level]
	return ok
}

func ShouldLog(level, enabled LogLevel) bool {
	if !ValidLogLevel(level) || !ValidLogLevel(enabled) {
		return false
	}
	return severity[level] <= severity[enabled]
}

func Trace(args ...any) {
	stdout.println(TraceLevel, args...)
}

func Debug(args ...any) {
	stdout.println(DebugLevel, args...)
}

func Info(args ...any) {
	stdout.println(InfoLevel, args...)
}

func Warn(args ...any) {
	stderr.println(WarningLevel, args...)
}

func Error(args ...any) {
	stderr.println(ErrorLevel, args...)
}

func Fatal(args ...any) {
	stderr.println(FatalLevel, args...)
	debug.PrintStack()
	os.Exit(1)
}

func Tracef(format string, args ...any) {
	stdout.printf(TraceLevel, format, args...)
}

func Debugf(format string, args ...any) {
	stdout.printf(DebugLevel, format, args...)
}

func Infof(format string, args ...any) {
	stdout.printf(InfoLevel, format, args...)
}

func Warnf(format string, args ...any) {
	stderr.printf(WarningLevel, format, args...)
}

func Errorf(format string, args ...any) {
	stderr.printf(ErrorLevel, format, args...)
}

func Fatalf(format string, args ...any) {
	stderr.printf(FatalLevel, format, args...)
	debug.PrintStack()
	os.Exit(1)
}

type writeFunc func([]byte) (int, error)

func (fn writeFunc) Write(data []byte) (int, error) {
	return fn(data)
}

// An io.Writer that forwards written data to the log at the given level.
func NewLogWriter(level LogLevel) io.Writer {
	return writeFunc(func(data []byte) (int, error) {
		stdout.printf(level, "%s", data)
		return len(data), nil
	})
}

// Log an error and its unwrapped causes at debug level.
func DebugError(err error) {
	indent := 1

	Debug(err.Error())

	for {
		if err = errors.Unwrap(err); err == nil {
			break
		}

		Debugf("| %d: %s", indent, err.Error())
		indent += 1
	}
}
