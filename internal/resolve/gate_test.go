// SPDX-FileCopyrightText: The roadreport developers
//
// SPDX-License-Identifier: MIT

package resolve

import (
	"errors"
	"testing"

	"github.com/roadsauthority/roadreport/internal/geo"
)

func TestSession_SetPin(t *testing.T) {
	t.Run("pin updates are provisional and never validated", func(t *testing.T) {
		sess := NewSession(testConfig())
		sess.SetCurrent(windhoek)

		// Dragging the pin outside the service area must not fail; only the
		// confirmation runs the gate.
		sess.SetPin(abroad)
		selected, _ := sess.Selected()
		if selected.Source != SourceMapSelected || selected.Coordinate != abroad {
			t.Errorf("expected the provisional pin to be stored, got %+v", selected)
		}
	})
}

func TestSession_ConfirmPin(t *testing.T) {
	t.Run("confirming without a selection fails", func(t *testing.T) {
		sess := NewSession(testConfig())
		if err := sess.ConfirmPin(); !errors.Is(err, ErrNoLocationChosen) {
			t.Errorf("expected ErrNoLocationChosen, got %v", err)
		}
	})
	t.Run("confirming an out-of-area pin fails", func(t *testing.T) {
		sess := NewSession(testConfig())
		sess.SetCurrent(windhoek)
		sess.SetPin(abroad)
		if err := sess.ConfirmPin(); !errors.Is(err, ErrOutsideServiceArea) {
			t.Errorf("expected ErrOutsideServiceArea, got %v", err)
		}
	})
	t.Run("confirming a pin beyond the anti-fraud radius fails", func(t *testing.T) {
		sess := NewSession(testConfig())
		sess.SetCurrent(windhoek)
		// Roughly 149 km south of Windhoek, well within Namibia.
		sess.SetPin(geo.Coordinate{Latitude: -23.9, Longitude: 17.0658})
		if err := sess.ConfirmPin(); !errors.Is(err, ErrTooFarFromReporter) {
			t.Errorf("expected ErrTooFarFromReporter, got %v", err)
		}
	})
	t.Run("confirming a pin within the radius succeeds", func(t *testing.T) {
		sess := NewSession(testConfig())
		sess.SetCurrent(windhoek)
		// Roughly 49 km south of Windhoek.
		sess.SetPin(geo.Coordinate{Latitude: -23.0, Longitude: 17.0658})
		if err := sess.ConfirmPin(); err != nil {
			t.Errorf("expected confirmation to succeed, got %v", err)
		}
	})
	t.Run("radius check is skipped without a live position", func(t *testing.T) {
		sess := NewSession(testConfig())
		// No SetCurrent: any in-bounds point may be confirmed.
		sess.SetPin(geo.Coordinate{Latitude: -26.6, Longitude: 15.15})
		if err := sess.ConfirmPin(); err != nil {
			t.Errorf("expected confirmation to succeed, got %v", err)
		}
	})
	t.Run("failed confirmation leaves the pin provisional", func(t *testing.T) {
		sess := NewSession(testConfig())
		sess.SetCurrent(windhoek)
		sess.SetPin(abroad)
		_ = sess.ConfirmPin()

		selected, ok := sess.Selected()
		if !ok || selected.Coordinate != abroad {
			t.Error("expected the rejected pin to stay in place for re-selection")
		}
	})
	t.Run("radius limit is configurable", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxReportDistanceKm = 300
		sess := NewSession(cfg)
		sess.SetCurrent(windhoek)
		sess.SetPin(swakopmund)
		if err := sess.ConfirmPin(); err != nil {
			t.Errorf("expected a 261 km pin to pass a 300 km limit, got %v", err)
		}
	})
}
