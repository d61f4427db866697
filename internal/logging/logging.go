/*
NAME
  logging.go

DESCRIPTION
  logging.go provides a small leveled logging facade used by the modem
  packages to trace mode trials, synchronization results and FEC outcomes
  without forcing a particular logging backend on callers.

LICENSE
  This software is Copyright (C) 2024 the SpectraChirp Authors.
*/

// Package logging provides a minimal leveled logger interface and a default
// implementation backed by an io.Writer, in the style of the netsender
// client loggers used elsewhere in this module's lineage.
package logging

import (
	"fmt"
	"io"
	"log"
	"sync"
)

// Level is a logging verbosity level.
type Level int

// Recognised logging levels, lowest to highest severity.
const (
	Debug Level = iota
	Info
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is the leveled logger the modem packages use for diagnostic tracing.
// A nil *Logger is valid and silently discards all calls, so callers that
// don't care about logging can pass nil rather than a no-op implementation.
type Logger struct {
	mu  sync.Mutex
	lvl Level
	out *log.Logger
}

// New returns a Logger that writes messages at or above lvl to w.
func New(lvl Level, w io.Writer) *Logger {
	return &Logger{lvl: lvl, out: log.New(w, "", log.LstdFlags)}
}

func (l *Logger) log(lvl Level, msg string, kv ...interface{}) {
	if l == nil || lvl < l.lvl {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Print(format(lvl, msg, kv))
}

func format(lvl Level, msg string, kv []interface{}) string {
	s := fmt.Sprintf("[%s] %s", lvl, msg)
	for i := 0; i+1 < len(kv); i += 2 {
		s += fmt.Sprintf(" %v=%v", kv[i], kv[i+1])
	}
	return s
}

// Debug logs a low-severity diagnostic message with optional key-value pairs.
func (l *Logger) Debug(msg string, kv ...interface{}) { l.log(Debug, msg, kv...) }

// Info logs a normal-operation message with optional key-value pairs.
func (l *Logger) Info(msg string, kv ...interface{}) { l.log(Info, msg, kv...) }

// Warning logs a recoverable-problem message with optional key-value pairs.
func (l *Logger) Warning(msg string, kv ...interface{}) { l.log(Warning, msg, kv...) }

// Error logs a failure message with optional key-value pairs.
func (l *Logger) Error(msg string, kv ...interface{}) { l.log(Error, msg, kv...) }
