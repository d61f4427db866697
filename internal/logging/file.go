package logging

import (
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// File logging defaults, matching the rotation policy used elsewhere in
// this module's lineage (see cmd/speaker in the teacher repository).
const (
	maxSizeMB  = 50
	maxBackups = 5
	maxAgeDays = 28
)

// NewFile returns a Logger that writes rotating log files at path using
// lumberjack, for long-running callers (e.g. a batch decode job) that want
// persistent diagnostics rather than the bare stderr logger New provides.
func NewFile(lvl Level, path string) *Logger {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}
	return New(lvl, w)
}
