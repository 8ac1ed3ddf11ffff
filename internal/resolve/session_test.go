// SPDX-FileCopyrightText: The roadreport developers
//
// SPDX-License-Identifier: MIT

package resolve

import (
	"testing"

	"github.com/roadsauthority/roadreport/internal/geo"
)

var (
	windhoek   = geo.Coordinate{Latitude: -22.5609, Longitude: 17.0658}
	swakopmund = geo.Coordinate{Latitude: -22.6792, Longitude: 14.5272}
	nearby     = geo.Coordinate{Latitude: -22.5650, Longitude: 17.0700}
	abroad     = geo.Coordinate{Latitude: 10.0, Longitude: 30.0}
)

func testConfig() Config {
	return Config{
		MaxReportDistanceKm:      100,
		PhotoDistanceThresholdKm: 5,
		ServiceArea:              geo.Bounds{MinLat: -28.97, MaxLat: -16.96, MinLng: 11.73, MaxLng: 25.27},
	}
}

func TestSession_SetCurrent(t *testing.T) {
	t.Run("first fix becomes the default selection", func(t *testing.T) {
		sess := NewSession(testConfig())
		sess.SetCurrent(windhoek)

		selected, ok := sess.Selected()
		if !ok {
			t.Fatal("expected a selected candidate after the first fix")
		}
		if selected.Source != SourceCurrentGPS {
			t.Errorf("expected source %q, got %q", SourceCurrentGPS, selected.Source)
		}
		if selected.Coordinate != windhoek {
			t.Errorf("expected selected coordinate %s, got %s", windhoek, selected.Coordinate)
		}
	})
	t.Run("a later fix corrects current but not the selection", func(t *testing.T) {
		sess := NewSession(testConfig())
		sess.SetCurrent(windhoek)
		sess.SetSelected(Candidate{Coordinate: nearby, Source: SourceMapSelected})
		sess.SetCurrent(swakopmund)

		current, ok := sess.Current()
		if !ok || current != swakopmund {
			t.Errorf("expected current to be corrected to %s, got %s", swakopmund, current)
		}
		selected, _ := sess.Selected()
		if selected.Coordinate != nearby || selected.Source != SourceMapSelected {
			t.Error("expected the selection to survive a live position correction")
		}
	})
}

func TestSession_SetPhoto(t *testing.T) {
	t.Run("setting a photo candidate does not touch the selection", func(t *testing.T) {
		sess := NewSession(testConfig())
		sess.SetCurrent(windhoek)
		sess.SetPhoto(&swakopmund)

		selected, _ := sess.Selected()
		if selected.Source != SourceCurrentGPS {
			t.Errorf("expected selection to stay %q, got %q", SourceCurrentGPS, selected.Source)
		}
		photo, ok := sess.Photo()
		if !ok || photo != swakopmund {
			t.Errorf("expected photo candidate %s, got %s", swakopmund, photo)
		}
	})
	t.Run("a new photo replaces the previous candidate wholesale", func(t *testing.T) {
		sess := NewSession(testConfig())
		sess.SetPhoto(&swakopmund)
		sess.SetPhoto(&nearby)

		photo, ok := sess.Photo()
		if !ok || photo != nearby {
			t.Errorf("expected photo candidate %s, got %s", nearby, photo)
		}
	})
	t.Run("nil clears the photo candidate", func(t *testing.T) {
		sess := NewSession(testConfig())
		sess.SetPhoto(&swakopmund)
		sess.SetPhoto(nil)

		if _, ok := sess.Photo(); ok {
			t.Error("expected photo candidate to be cleared")
		}
	})
}

func TestSession_Address(t *testing.T) {
	t.Run("address is cosmetic and independent of candidates", func(t *testing.T) {
		sess := NewSession(testConfig())
		sess.SetAddress("Sam Nujoma Drive, Windhoek, Khomas")
		if sess.Address() != "Sam Nujoma Drive, Windhoek, Khomas" {
			t.Errorf("unexpected address: %q", sess.Address())
		}
		if _, ok := sess.Selected(); ok {
			t.Error("setting an address must not create a selection")
		}
	})
}

func TestSession_MapSeed(t *testing.T) {
	t.Run("no candidates means no seed", func(t *testing.T) {
		sess := NewSession(testConfig())
		if _, ok := sess.MapSeed(); ok {
			t.Error("expected no map seed on an empty session")
		}
	})
	t.Run("photo seeds the map when nothing is selected", func(t *testing.T) {
		sess := NewSession(testConfig())
		sess.SetPhoto(&swakopmund)

		seed, ok := sess.MapSeed()
		if !ok || seed != swakopmund {
			t.Errorf("expected photo as seed, got %s", seed)
		}
	})
	t.Run("seed priority is selected, photo, current", func(t *testing.T) {
		sess := NewSession(testConfig())
		sess.SetCurrent(windhoek)

		seed, _ := sess.MapSeed()
		if seed != windhoek {
			t.Errorf("expected current as seed, got %s", seed)
		}

		sess.SetPhoto(&swakopmund)
		sess.SetSelected(Candidate{Coordinate: nearby, Source: SourceMapSelected})
		seed, _ = sess.MapSeed()
		if seed != nearby {
			t.Errorf("expected selected as seed, got %s", seed)
		}
	})
}
