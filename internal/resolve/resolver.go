// SPDX-FileCopyrightText: The roadreport developers
//
// SPDX-License-Identifier: MIT

package resolve

import (
	"fmt"

	"github.com/roadsauthority/roadreport/internal/geo"
)

// Outcome is the kind of decision the resolver hands back to the caller.
type Outcome int

const (
	// OutcomeAutoAccepted means the photo location became the authoritative
	// candidate without user interaction.
	OutcomeAutoAccepted Outcome = iota

	// OutcomeNeedsChoice means the photo and live locations conflict and the
	// user has to pick one of the offered options.
	OutcomeNeedsChoice

	// OutcomeNeedsManual means no candidate could be accepted automatically
	// and the location must be confirmed on the map.
	OutcomeNeedsManual
)

// Choice is one of the options offered to the user when photo and live
// locations conflict.
type Choice int

const (
	ChoicePhotoLocation Choice = iota
	ChoiceCurrentLocation
	ChoicePickOnMap
)

// Decision is the resolver's verdict on a newly extracted photo coordinate.
// It is a plain value; the caller drives any user interaction and reports the
// user's pick back via ApplyChoice.
type Decision struct {
	Outcome Outcome

	// DistanceKm is the great-circle distance between the live position and
	// the photo location. Only meaningful when both existed at decision time.
	DistanceKm float64

	// Options lists the offered choices for OutcomeNeedsChoice.
	Options []Choice

	// Hint carries the out-of-area photo coordinate for OutcomeNeedsManual so
	// the map can surface it as a marker. It is never auto-applied.
	Hint *geo.Coordinate
}

// ManualDecision returns the decision used when no photo geotag exists at
// all: the location must be confirmed on the map, with no hint to show.
func ManualDecision() Decision {
	return Decision{Outcome: OutcomeNeedsManual}
}

// ResolvePhoto arbitrates a newly extracted photo coordinate against the
// session state. It is invoked exactly once per extracted coordinate, with
// the photo candidate already stored. In priority order:
//
//  1. A photo taken outside the service area is never auto-selected; the map
//     must be opened and the coordinate is surfaced only as a hint.
//  2. Without a live position there is nothing to conflict with, so the photo
//     location is accepted as authoritative.
//  3. A photo taken further than the configured threshold from the live
//     position triggers a three-way user choice. Closer photos are accepted
//     with an informational distance.
//
// A pending live-position fetch counts as "no live position"; resolution is
// never re-run when the fix arrives later.
func (s *Session) ResolvePhoto(photo geo.Coordinate) Decision {
	if !s.cfg.ServiceArea.Contains(photo) {
		hint := photo
		return Decision{Outcome: OutcomeNeedsManual, Hint: &hint}
	}

	current, ok := s.Current()
	if !ok {
		s.SetSelected(Candidate{Coordinate: photo, Source: SourcePhotoEXIF})
		return Decision{Outcome: OutcomeAutoAccepted}
	}

	d := geo.Distance(current, photo)
	if d > s.cfg.PhotoDistanceThresholdKm {
		return Decision{
			Outcome:    OutcomeNeedsChoice,
			DistanceKm: d,
			Options:    []Choice{ChoicePhotoLocation, ChoiceCurrentLocation, ChoicePickOnMap},
		}
	}

	s.SetSelected(Candidate{Coordinate: photo, Source: SourcePhotoEXIF})
	return Decision{Outcome: OutcomeAutoAccepted, DistanceKm: d}
}

// ApplyChoice resolves a three-way conflict decision with the user's pick.
// Picking the photo or live location selects it with the matching source;
// picking the map leaves the selection to the manual override gate. In every
// case the caller is expected to open the map afterwards for fine-tuning.
func (s *Session) ApplyChoice(choice Choice) error {
	switch choice {
	case ChoicePhotoLocation:
		photo, ok := s.Photo()
		if !ok {
			return ErrNoPhotoLocation
		}
		s.SetSelected(Candidate{Coordinate: photo, Source: SourcePhotoEXIF})
	case ChoiceCurrentLocation:
		current, ok := s.Current()
		if !ok {
			return ErrNoCurrentPosition
		}
		s.SetSelected(Candidate{Coordinate: current, Source: SourceCurrentGPS})
	case ChoicePickOnMap:
		// Nothing to select yet, the map pin confirmation takes over.
	default:
		return fmt.Errorf("unknown choice: %d", choice)
	}
	return nil
}
