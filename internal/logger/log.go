// SPDX-FileCopyrightText: The roadreport developers
//
// SPDX-License-Identifier: MIT

// Package logger provides a thin wrapper around log/slog.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps a slog.Logger.
type Logger struct {
	*slog.Logger
}

// New returns a new Logger writing to STDERR at the given level.
func New(level slog.Level) *Logger {
	return NewLogger(level, os.Stderr)
}

// NewLogger returns a new Logger writing to the given writer at the given
// level.
func NewLogger(level slog.Level, w io.Writer) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{slog.New(handler)}
}

// Err wraps an error into a slog.Attr with the key "error".
func Err(err error) slog.Attr {
	return slog.String("error", err.Error())
}
