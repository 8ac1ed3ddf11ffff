// SPDX-FileCopyrightText: The roadreport developers
//
// SPDX-License-Identifier: MIT

// Package resolve implements the location resolution engine for a single
// report-authoring session. It reconciles up to three independent sources of
// a damage location (live position, photo geotag, manual map pick) into one
// authoritative candidate and enforces the service-area and anti-fraud
// invariants on the way there.
package resolve

import (
	"sync"

	"github.com/roadsauthority/roadreport/internal/geo"
)

// Source tags a location candidate with the source that produced it. The
// string values double as the wire representation in the submitted report.
type Source string

const (
	SourceCurrentGPS  Source = "current_gps"
	SourcePhotoEXIF   Source = "photo_exif"
	SourceMapSelected Source = "map_selected"
)

// Label returns a human-readable label key for the source. The key is meant
// to be passed through the localizer before display.
func (s Source) Label() string {
	switch s {
	case SourceCurrentGPS:
		return "Current Location"
	case SourcePhotoEXIF:
		return "Photo Location"
	case SourceMapSelected:
		return "Manual Selection"
	}
	return "Unknown"
}

// Candidate pairs a coordinate with its provenance.
type Candidate struct {
	Coordinate geo.Coordinate
	Source     Source
}

// Config holds the tunables of the resolution engine. All values are
// injected at session construction so tests can vary them freely.
type Config struct {
	// MaxReportDistanceKm is the anti-fraud radius: a manually confirmed
	// location must lie within this distance of the reporter's live position.
	MaxReportDistanceKm float64

	// PhotoDistanceThresholdKm separates minor GPS drift from "photo was
	// plausibly taken elsewhere" when a geotagged photo arrives.
	PhotoDistanceThresholdKm float64

	// ServiceArea is the national bounding box a report location must fall in.
	ServiceArea geo.Bounds
}

// Session is the engine's working memory for one report-authoring session.
// The live and photo candidates are written by independent acquisition flows,
// so access is guarded even though the session has a single logical owner.
type Session struct {
	cfg Config

	mu       sync.RWMutex
	current  *geo.Coordinate
	photo    *geo.Coordinate
	selected *Candidate
	address  string
}

// NewSession creates a fresh session with the given engine configuration.
// Sessions are not reused across reports.
func NewSession(cfg Config) *Session {
	return &Session{cfg: cfg}
}

// Config returns the engine configuration the session was created with.
func (s *Session) Config() Config {
	return s.cfg
}

// firstFixBecomesDefault is the policy deciding whether a fresh live fix
// should be adopted as the authoritative candidate: it is, as long as nothing
// else has been selected yet.
func firstFixBecomesDefault(selected *Candidate) bool {
	return selected == nil
}

// SetCurrent stores the reporter's live position. The first fix also becomes
// the authoritative candidate; later corrections never touch the selection.
func (s *Session) SetCurrent(c geo.Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &c
	if firstFixBecomesDefault(s.selected) {
		s.selected = &Candidate{Coordinate: c, Source: SourceCurrentGPS}
	}
}

// SetPhoto stores the photo geotag candidate, or clears it when the chosen
// photo carries no usable geotag. A new photo always replaces the previous
// candidate wholesale. The selection is left alone; arbitration is
// ResolvePhoto's job.
func (s *Session) SetPhoto(c *geo.Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c == nil {
		s.photo = nil
		return
	}
	coord := *c
	s.photo = &coord
}

// SetSelected overwrites the authoritative candidate unconditionally. Callers
// are responsible for any validation; the store itself never rejects.
func (s *Session) SetSelected(cand Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = &cand
}

// Current returns the live position candidate, if one has been acquired.
func (s *Session) Current() (geo.Coordinate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return geo.Coordinate{}, false
	}
	return *s.current, true
}

// Photo returns the photo geotag candidate, if the current photo has one.
func (s *Session) Photo() (geo.Coordinate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.photo == nil {
		return geo.Coordinate{}, false
	}
	return *s.photo, true
}

// Selected returns the authoritative candidate, if any.
func (s *Session) Selected() (Candidate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return Candidate{}, false
	}
	return *s.selected, true
}

// SetAddress stores the cosmetic display address for the selected location.
// The address never participates in validation or arbitration.
func (s *Session) SetAddress(addr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.address = addr
}

// Address returns the cosmetic display address, which may be stale or empty.
func (s *Session) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.address
}

// MapSeed returns the coordinate the map picker should initially center on:
// the selected location if any, otherwise the photo location, otherwise the
// live position. The second return value is false when no candidate exists
// at all and the caller should fall back to its own default region.
func (s *Session) MapSeed() (geo.Coordinate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.selected != nil:
		return s.selected.Coordinate, true
	case s.photo != nil:
		return *s.photo, true
	case s.current != nil:
		return *s.current, true
	}
	return geo.Coordinate{}, false
}
