// SPDX-FileCopyrightText: The roadreport developers
//
// SPDX-License-Identifier: MIT

// Package testhelper provides shared scaffolding for tests.
package testhelper

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"

	"github.com/roadsauthority/roadreport/internal/logger"
)

// IntegrationTestEnv is the environment variable that enables tests hitting
// live external APIs.
const IntegrationTestEnv = "ROADREPORT_INTEGRATION_TESTS"

// MockRoundTripper replaces an HTTP client's transport with a function, so
// tests can serve canned responses without a network.
type MockRoundTripper struct {
	Fn func(req *http.Request) (*http.Response, error)
}

// RoundTrip implements the http.RoundTripper interface.
func (m MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.Fn(req)
}

// DiscardLogger returns a logger that swallows all output.
func DiscardLogger() *logger.Logger {
	return logger.NewLogger(slog.LevelError, io.Discard)
}

// PerformIntegrationTests skips the calling test unless integration tests
// are explicitly enabled.
func PerformIntegrationTests(t *testing.T) {
	t.Helper()
	if os.Getenv(IntegrationTestEnv) == "" {
		t.Skipf("skipping integration test, set %s to enable", IntegrationTestEnv)
	}
}
