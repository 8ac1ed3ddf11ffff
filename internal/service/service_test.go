// SPDX-FileCopyrightText: The roadreport developers
//
// SPDX-License-Identifier: MIT

package service

import (
	"errors"
	"testing"

	"github.com/roadsauthority/roadreport/internal/config"
	"github.com/roadsauthority/roadreport/internal/geo"
	"github.com/roadsauthority/roadreport/internal/report"
	"github.com/roadsauthority/roadreport/internal/resolve"
	"github.com/roadsauthority/roadreport/internal/testhelper"
)

var (
	windhoek = geo.Coordinate{Latitude: -22.5609, Longitude: 17.0658}
	nearby   = geo.Coordinate{Latitude: -22.5650, Longitude: 17.0700}
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	conf, err := config.New()
	if err != nil {
		t.Fatalf("failed to load config: %s", err)
	}
	conf.Position.DisableGeoClue = true
	conf.Position.DisableGPSD = true
	conf.Position.DisableWiFi = true
	conf.Position.DisableGeoIP = true
	conf.Geocode.Disable = true
	conf.Conditions.Disable = true
	return conf
}

func testService(t *testing.T) *Service {
	t.Helper()
	svc, err := New(testConfig(t), testhelper.DiscardLogger())
	if err != nil {
		t.Fatalf("failed to create service: %s", err)
	}
	return svc
}

func TestNew(t *testing.T) {
	t.Run("creating a service succeeds", func(t *testing.T) {
		svc := testService(t)
		if svc.Session() == nil {
			t.Fatal("expected a non-nil session")
		}
	})
	t.Run("disabled subsystems stay nil", func(t *testing.T) {
		svc := testService(t)
		if svc.geocoder != nil {
			t.Error("expected geocoder to be disabled")
		}
		if svc.observer != nil {
			t.Error("expected weather observer to be disabled")
		}
	})
}

func TestService_StartShutdown(t *testing.T) {
	svc := testService(t)
	if err := svc.Start(t.Context()); err != nil {
		t.Fatalf("failed to start service: %s", err)
	}
	// All position providers are disabled, so no fix can exist.
	if _, ok := svc.LastFix(); ok {
		t.Error("expected no position fix with all providers disabled")
	}
	if err := svc.Shutdown(); err != nil {
		t.Errorf("failed to shut down service: %s", err)
	}
}

func TestService_ManualFlow(t *testing.T) {
	t.Run("pin confirmation within the radius succeeds", func(t *testing.T) {
		svc := testService(t)
		svc.Session().SetCurrent(windhoek)
		svc.PickPin(nearby)
		if err := svc.ConfirmLocation(t.Context()); err != nil {
			t.Fatalf("failed to confirm location: %s", err)
		}
		selected, ok := svc.Session().Selected()
		if !ok || selected.Source != resolve.SourceMapSelected {
			t.Errorf("expected a map selection, got %+v", selected)
		}
	})
	t.Run("pin confirmation beyond the radius fails", func(t *testing.T) {
		svc := testService(t)
		svc.Session().SetCurrent(windhoek)
		svc.PickPin(geo.Coordinate{Latitude: -23.9, Longitude: 17.0658})

		err := svc.ConfirmLocation(t.Context())
		var tooFar *resolve.TooFarError
		if !errors.As(err, &tooFar) {
			t.Fatalf("expected a TooFarError, got %v", err)
		}
		if tooFar.LimitKm != 100 {
			t.Errorf("expected the configured limit of 100 km, got %f", tooFar.LimitKm)
		}
	})
	t.Run("map seed follows the live position before any selection", func(t *testing.T) {
		svc := testService(t)
		svc.Session().SetCurrent(windhoek)
		// The first fix becomes the default selection, which also seeds the map.
		if seed := svc.MapSeed(); seed != windhoek {
			t.Errorf("expected map seed %s, got %s", windhoek, seed)
		}
	})
	t.Run("map seed falls back to Windhoek without any candidate", func(t *testing.T) {
		svc := testService(t)
		if seed := svc.MapSeed(); seed != defaultMapSeed {
			t.Errorf("expected the default map seed %s, got %s", defaultMapSeed, seed)
		}
	})
	t.Run("address search is rejected while geocoding is disabled", func(t *testing.T) {
		svc := testService(t)
		if _, err := svc.PickAddress(t.Context(), "Independence Avenue, Windhoek"); err == nil {
			t.Error("expected address search to fail, but didn't")
		}
	})
}

func TestService_Submit(t *testing.T) {
	t.Run("pre-flight failures surface as missing field errors", func(t *testing.T) {
		svc := testService(t)
		_, err := svc.Submit(t.Context(), report.Form{}, "pothole.jpg")
		var missing *report.MissingFieldError
		if !errors.As(err, &missing) {
			t.Fatalf("expected a MissingFieldError, got %v", err)
		}
		if missing.Field != report.MissingLocation {
			t.Errorf("expected the location check to fail first, got %s", missing.Field)
		}
	})
}
