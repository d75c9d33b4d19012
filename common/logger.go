// Basic leveled logging shared by all verbs.  The default logger prints to
// stderr; the daemon installs a syslog writer underneath it at startup.

package common

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// LogLevel indicates the severity of a message.

type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarning
	LogLevelError
	LogLevelCritical
)

// Implementations of this must be thread-safe.
type Logger interface {
	// Print only messages at level l or above
	SetLevel(l LogLevel)

	// Lower the log level at least to l
	LowerLevelTo(l LogLevel)

	// Print on this stream, if installed
	SetStderr(w io.Writer)

	// Print on this underlying (simpler) logger, if installed - often syslog.
	SetUnderlying(w UnderlyingLogger)

	// Print at various levels.  None of these exit or panic, the name indicates
	// the log level only.
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warningf(format string, args ...any)
	Errorf(format string, args ...any)
	Criticalf(format string, args ...any)
}

// Typically the underlying logger is a syslog thing; log/syslog implements
// UnderlyingLogger.  An underlying logger must be thread-safe.
type UnderlyingLogger interface {
	Debug(m string) error
	Info(m string) error
	Warning(m string) error
	Err(m string) error
	Crit(m string) error
}

type StandardLogger struct {
	sync.Mutex
	level      LogLevel
	stderr     io.Writer
	underlying UnderlyingLogger
}

// MT: Constant after initialization; thread-safe
var Log Logger = &StandardLogger{
	level:  LogLevelError,
	stderr: os.Stderr,
}

func (sl *StandardLogger) SetLevel(l LogLevel) {
	sl.Lock()
	defer sl.Unlock()

	sl.level = l
}

func (sl *StandardLogger) LowerLevelTo(l LogLevel) {
	sl.Lock()
	defer sl.Unlock()

	if sl.level > l {
		sl.level = l
	}
}

func (sl *StandardLogger) SetStderr(stderr io.Writer) {
	sl.Lock()
	defer sl.Unlock()

	sl.stderr = stderr
}

func (sl *StandardLogger) SetUnderlying(underlying UnderlyingLogger) {
	sl.Lock()
	defer sl.Unlock()

	sl.underlying = underlying
}

func (sl *StandardLogger) emit(l LogLevel, s string) {
	if sl.stderr != nil {
		fmt.Fprintln(sl.stderr, s)
	}
	if sl.underlying != nil {
		switch l {
		case LogLevelDebug:
			sl.underlying.Debug(s)
		case LogLevelInfo:
			sl.underlying.Info(s)
		case LogLevelWarning:
			sl.underlying.Warning(s)
		case LogLevelError:
			sl.underlying.Err(s)
		default:
			sl.underlying.Crit(s)
		}
	}
}

func (sl *StandardLogger) Debugf(format string, args ...any) {
	sl.Lock()
	defer sl.Unlock()

	if sl.level <= LogLevelDebug {
		sl.emit(LogLevelDebug, fmt.Sprintf(format, args...))
	}
}

func (sl *StandardLogger) Infof(format string, args ...any) {
	sl.Lock()
	defer sl.Unlock()

	if sl.level <= LogLevelInfo {
		sl.emit(LogLevelInfo, fmt.Sprintf(format, args...))
	}
}

func (sl *StandardLogger) Warningf(format string, args ...any) {
	sl.Lock()
	defer sl.Unlock()

	if sl.level <= LogLevelWarning {
		sl.emit(LogLevelWarning, fmt.Sprintf(format, args...))
	}
}

func (sl *StandardLogger) Errorf(format string, args ...any) {
	sl.Lock()
	defer sl.Unlock()

	if sl.level <= LogLevelError {
		sl.emit(LogLevelError, fmt.Sprintf(format, args...))
	}
}

func (sl *StandardLogger) Criticalf(format string, args ...any) {
	sl.Lock()
	defer sl.Unlock()

	sl.emit(LogLevelCritical, fmt.Sprintf(format, args...))
}
