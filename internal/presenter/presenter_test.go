// SPDX-FileCopyrightText: The roadreport developers
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"errors"
	"strings"
	"testing"

	"github.com/roadsauthority/roadreport/internal/geo"
	"github.com/roadsauthority/roadreport/internal/report"
	"github.com/roadsauthority/roadreport/internal/resolve"
)

func testPresenter(t *testing.T, loc string) *Presenter {
	t.Helper()
	p, err := New(loc)
	if err != nil {
		t.Fatalf("failed to create presenter: %s", err)
	}
	return p
}

func TestPresenter_ChoiceLabel(t *testing.T) {
	t.Run("english labels", func(t *testing.T) {
		p := testPresenter(t, "en")
		tests := []struct {
			choice resolve.Choice
			want   string
		}{
			{resolve.ChoicePhotoLocation, "Photo Location"},
			{resolve.ChoiceCurrentLocation, "Current Location"},
			{resolve.ChoicePickOnMap, "Pick on Map"},
		}
		for _, tt := range tests {
			if got := p.ChoiceLabel(tt.choice); got != tt.want {
				t.Errorf("expected label to be %q, got %q", tt.want, got)
			}
		}
	})
	t.Run("german labels", func(t *testing.T) {
		p := testPresenter(t, "de")
		if got := p.ChoiceLabel(resolve.ChoicePhotoLocation); got != "Foto-Standort" {
			t.Errorf("expected german label, got %q", got)
		}
	})
}

func TestPresenter_Decision(t *testing.T) {
	p := testPresenter(t, "en")
	t.Run("auto accepted photo", func(t *testing.T) {
		got := p.Decision(resolve.Decision{Outcome: resolve.OutcomeAutoAccepted})
		if got != "Photo location accepted." {
			t.Errorf("unexpected message: %q", got)
		}
	})
	t.Run("conflict includes the distance", func(t *testing.T) {
		got := p.Decision(resolve.Decision{Outcome: resolve.OutcomeNeedsChoice, DistanceKm: 12.34})
		if !strings.Contains(got, "12.3 km") {
			t.Errorf("expected message to contain the distance, got %q", got)
		}
	})
	t.Run("manual without hint mentions missing location data", func(t *testing.T) {
		got := p.Decision(resolve.ManualDecision())
		if !strings.Contains(got, "no location data") {
			t.Errorf("unexpected message: %q", got)
		}
	})
	t.Run("manual with hint mentions the service area", func(t *testing.T) {
		hint := geo.Coordinate{Latitude: 10, Longitude: 30}
		got := p.Decision(resolve.Decision{Outcome: resolve.OutcomeNeedsManual, Hint: &hint})
		if !strings.Contains(got, "outside Namibia") {
			t.Errorf("unexpected message: %q", got)
		}
	})
}

func TestPresenter_Menu(t *testing.T) {
	p := testPresenter(t, "en")
	entries := []MenuEntry{
		{Choice: resolve.ChoicePhotoLocation, Detail: "-22.679200, 14.527200"},
		{Choice: resolve.ChoiceCurrentLocation, Detail: "-22.560900, 17.065800"},
		{Choice: resolve.ChoicePickOnMap},
	}
	lines := p.Menu(entries)
	if len(lines) != 3 {
		t.Fatalf("expected 3 menu lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "[1] Photo Location") {
		t.Errorf("unexpected first line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "-22.560900, 17.065800") {
		t.Errorf("expected detail column in second line: %q", lines[1])
	}
	// Details start in the same column regardless of label width.
	first := strings.Index(lines[0], "-22.679200")
	second := strings.Index(lines[1], "-22.560900")
	if first != second {
		t.Errorf("expected aligned detail columns, got %d and %d", first, second)
	}
}

func TestPresenter_Error(t *testing.T) {
	p := testPresenter(t, "en")
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"too far carries both distances",
			&resolve.TooFarError{DistanceKm: 149, LimitKm: 100},
			"The chosen location is 149 km away from you. Reports must be filed within 100 km of your position."},
		{"no location chosen",
			resolve.ErrNoLocationChosen,
			"Please choose a location for the report before submitting."},
		{"outside service area",
			resolve.ErrOutsideServiceArea,
			"The chosen location is outside Namibia. Reports can only be filed inside the service area."},
		{"missing photo",
			&report.MissingFieldError{Field: report.MissingPhoto},
			"Please attach a photo of the road damage."},
		{"missing road name",
			&report.MissingFieldError{Field: report.MissingRoadName},
			"Please enter the road name."},
		{"missing location",
			&report.MissingFieldError{Field: report.MissingLocation},
			"Please choose a location for the report before submitting."},
		{"unknown errors pass through",
			errors.New("intentionally failing"),
			"intentionally failing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Error(tt.err); got != tt.want {
				t.Errorf("expected message %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPresenter_Submitted(t *testing.T) {
	t.Run("english", func(t *testing.T) {
		p := testPresenter(t, "en")
		got := p.Submitted("RA-PT-20260828-A1B2C3")
		if got != "Report submitted. Your reference code is RA-PT-20260828-A1B2C3." {
			t.Errorf("unexpected message: %q", got)
		}
	})
	t.Run("german", func(t *testing.T) {
		p := testPresenter(t, "de")
		got := p.Submitted("RA-PT-20260828-A1B2C3")
		if !strings.Contains(got, "Referenzcode") {
			t.Errorf("expected german message, got %q", got)
		}
	})
}
