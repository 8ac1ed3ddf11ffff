// SPDX-FileCopyrightText: The roadreport developers
//
// SPDX-License-Identifier: MIT

package resolve

import (
	"errors"
	"fmt"
)

var (
	// ErrNoLocationChosen is returned when the map pin is confirmed before any
	// point has been selected.
	ErrNoLocationChosen = errors.New("no location has been chosen")

	// ErrOutsideServiceArea is returned when a candidate that is about to become
	// authoritative lies outside the configured service area.
	ErrOutsideServiceArea = errors.New("location is outside the service area")

	// ErrTooFarFromReporter is returned when a manually picked point exceeds the
	// maximum report distance from the reporter's live position.
	ErrTooFarFromReporter = errors.New("location is too far from the reporter's position")

	// ErrNoCurrentPosition is returned when a choice requires the live position
	// but none has been acquired.
	ErrNoCurrentPosition = errors.New("no live position available")

	// ErrNoPhotoLocation is returned when a choice requires the photo location
	// but the photo carried no usable geotag.
	ErrNoPhotoLocation = errors.New("no photo location available")
)

// TooFarError carries the measured and permitted distances of a failed
// anti-fraud radius check. It wraps ErrTooFarFromReporter.
type TooFarError struct {
	DistanceKm float64
	LimitKm    float64
}

func (e *TooFarError) Error() string {
	return fmt.Sprintf("%s: selected point is %.0f km away, limit is %.0f km",
		ErrTooFarFromReporter, e.DistanceKm, e.LimitKm)
}

func (e *TooFarError) Unwrap() error {
	return ErrTooFarFromReporter
}
