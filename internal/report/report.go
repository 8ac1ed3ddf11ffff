// SPDX-FileCopyrightText: The roadreport developers
//
// SPDX-License-Identifier: MIT

// Package report defines the damage report draft and the submission
// pre-flight gate that assembles it from a resolution session.
package report

import (
	"fmt"
	"strings"

	"github.com/roadsauthority/roadreport/internal/conditions"
	"github.com/roadsauthority/roadreport/internal/geo"
	"github.com/roadsauthority/roadreport/internal/resolve"
)

// Severity classifies the reported road damage.
type Severity string

const (
	SeverityLow       Severity = "low"
	SeverityMedium    Severity = "medium"
	SeverityHigh      Severity = "high"
	SeverityDangerous Severity = "dangerous"
)

// ParseSeverity parses a severity value, case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityLow:
		return SeverityLow, nil
	case SeverityMedium:
		return SeverityMedium, nil
	case SeverityHigh:
		return SeverityHigh, nil
	case SeverityDangerous:
		return SeverityDangerous, nil
	}
	return "", fmt.Errorf("invalid severity: %q", s)
}

// MissingField identifies the field a failed pre-flight check is about. The
// caller is expected to render a targeted message, never a generic one.
type MissingField string

const (
	MissingLocation MissingField = "location"
	MissingPhoto    MissingField = "photo"
	MissingRoadName MissingField = "road_name"
)

// MissingFieldError reports a failed submission pre-flight check.
type MissingFieldError struct {
	Field MissingField
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// Form holds the user-entered report fields that live outside the location
// resolution session.
type Form struct {
	PhotoAttached bool
	RoadName      string
	Severity      Severity
	Description   string
}

// Draft is the assembled report handed to the submission service. The photo
// and live candidates are carried along as an audit trail even when they were
// not selected.
type Draft struct {
	Location        geo.Coordinate       `json:"location"`
	LocationSource  resolve.Source       `json:"locationSource"`
	PhotoLocation   *geo.Coordinate      `json:"photoLocation,omitempty"`
	CurrentLocation *geo.Coordinate      `json:"currentLocation,omitempty"`
	LocationAddress string               `json:"locationAddress,omitempty"`
	RoadName        string               `json:"roadName"`
	Severity        Severity             `json:"severity"`
	Description     string               `json:"description,omitempty"`
	Weather         *conditions.Snapshot `json:"weather,omitempty"`
}

// BuildDraft runs the submission pre-flight checks and assembles the draft
// from the session and the form. The checks run in a fixed order: location,
// then photo, then road name; the first failure is returned as a
// *MissingFieldError. The check has no side effects, so re-running it on
// unchanged state yields the same result.
func BuildDraft(sess *resolve.Session, form Form) (*Draft, error) {
	selected, ok := sess.Selected()
	if !ok {
		return nil, &MissingFieldError{Field: MissingLocation}
	}
	if !form.PhotoAttached {
		return nil, &MissingFieldError{Field: MissingPhoto}
	}
	roadName := strings.TrimSpace(form.RoadName)
	if roadName == "" {
		return nil, &MissingFieldError{Field: MissingRoadName}
	}

	draft := &Draft{
		Location:        selected.Coordinate,
		LocationSource:  selected.Source,
		LocationAddress: sess.Address(),
		RoadName:        roadName,
		Severity:        form.Severity,
		Description:     strings.TrimSpace(form.Description),
	}
	if photo, ok := sess.Photo(); ok {
		draft.PhotoLocation = &photo
	}
	if current, ok := sess.Current(); ok {
		draft.CurrentLocation = &current
	}
	return draft, nil
}
