// SPDX-FileCopyrightText: The roadreport developers
//
// SPDX-License-Identifier: MIT

package resolve

import (
	"fmt"

	"github.com/roadsauthority/roadreport/internal/geo"
)

// SetPin updates the provisional map selection. Every tap or drag lands here
// and only moves the pin; validation happens exclusively at confirmation
// time. Callers typically follow up with a cosmetic reverse geocode.
func (s *Session) SetPin(c geo.Coordinate) {
	s.SetSelected(Candidate{Coordinate: c, Source: SourceMapSelected})
}

// ConfirmPin runs the manual override gate on the provisional selection. The
// checks run in order: a location must be chosen, it must lie within the
// service area, and, when a live position exists, it must be within the
// anti-fraud radius of the reporter. When the live position is unknown the
// radius check is skipped since there is no baseline to measure against.
//
// On success the provisional pin is final and the map may close. On failure
// the returned error wraps the specific taxonomy value and the selection
// stays provisional so the user can pick again.
func (s *Session) ConfirmPin() error {
	selected, ok := s.Selected()
	if !ok {
		return ErrNoLocationChosen
	}

	if !s.cfg.ServiceArea.Contains(selected.Coordinate) {
		return fmt.Errorf("%w: %s", ErrOutsideServiceArea, selected.Coordinate)
	}

	if current, haveCurrent := s.Current(); haveCurrent {
		d := geo.Distance(current, selected.Coordinate)
		if d > s.cfg.MaxReportDistanceKm {
			return &TooFarError{DistanceKm: d, LimitKm: s.cfg.MaxReportDistanceKm}
		}
	}

	return nil
}
