// SPDX-FileCopyrightText: The roadreport developers
//
// SPDX-License-Identifier: MIT

package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("new should successfully create a logger", func(t *testing.T) {
		l := New(slog.LevelInfo)
		if l == nil {
			t.Fatal("expected logger to be non-nil")
		}
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("logger logs successfully with different levels", func(t *testing.T) {
		tests := []struct {
			name        string
			level       slog.Level
			shouldDebug bool
			shouldInfo  bool
			shouldWarn  bool
			shouldError bool
		}{
			{"DEBUG", slog.LevelDebug, true, true, true, true},
			{"INFO", slog.LevelInfo, false, true, true, true},
			{"WARN", slog.LevelWarn, false, false, true, true},
			{"ERROR", slog.LevelError, false, false, false, true},
		}

		for _, tc := range tests {
			buf := bytes.NewBuffer(nil)
			t.Run(tc.name, func(t *testing.T) {
				l := NewLogger(tc.level, buf)
				l.Debug("debug")
				l.Info("info")
				l.Warn("warn")
				l.Error("error")

				if tc.shouldDebug != bytes.Contains(buf.Bytes(), []byte("msg=debug")) {
					t.Errorf("debug logging mismatch for level %s", tc.level)
				}
				if tc.shouldInfo != bytes.Contains(buf.Bytes(), []byte("msg=info")) {
					t.Errorf("info logging mismatch for level %s", tc.level)
				}
				if tc.shouldWarn != bytes.Contains(buf.Bytes(), []byte("msg=warn")) {
					t.Errorf("warn logging mismatch for level %s", tc.level)
				}
				if tc.shouldError != bytes.Contains(buf.Bytes(), []byte("msg=error")) {
					t.Errorf("error logging mismatch for level %s", tc.level)
				}
			})
		}
	})
}

func TestErr(t *testing.T) {
	t.Run("error attributes should be logged", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		l := NewLogger(slog.LevelDebug, buf)
		want := "intentionally failing"
		err := errors.New(want)
		l.Error("this is a test", Err(err))

		if !bytes.Contains(buf.Bytes(), []byte(`error="`+want+`"`)) {
			t.Errorf("expected error message to contain %q, got: %q", want, buf.String())
		}
	})
}
