// SPDX-FileCopyrightText: The roadreport developers
//
// SPDX-License-Identifier: MIT

// Package presenter renders decisions, prompts and errors of the reporting
// flow as localized user-facing text. It holds no flow state; every method
// maps a domain value to a string.
package presenter

import (
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/vorlif/humanize"
	"github.com/vorlif/humanize/locale/de"
	"github.com/vorlif/spreak"
	"golang.org/x/text/language"

	"github.com/roadsauthority/roadreport/internal/i18n"
	"github.com/roadsauthority/roadreport/internal/report"
	"github.com/roadsauthority/roadreport/internal/resolve"
)

// MenuEntry is a single selectable option with an optional detail column,
// usually the coordinate behind the option.
type MenuEntry struct {
	Choice resolve.Choice
	Detail string
}

type Presenter struct {
	localizer *spreak.Localizer
	humanizer *humanize.Humanizer
}

// New creates a Presenter for the given locale. An empty locale is detected
// from the environment.
func New(loc string) (*Presenter, error) {
	localizer, tag, err := i18n.New(loc)
	if err != nil {
		return nil, fmt.Errorf("failed to create localizer: %w", err)
	}

	collection, err := humanize.New(humanize.WithLocale(de.New()))
	if err != nil {
		return nil, fmt.Errorf("failed to create humanizer collection: %w", err)
	}

	return &Presenter{
		localizer: localizer,
		humanizer: collection.CreateHumanizer(tag, language.English),
	}, nil
}

// ChoiceLabel returns the localized label of a conflict choice.
func (p *Presenter) ChoiceLabel(choice resolve.Choice) string {
	switch choice {
	case resolve.ChoicePhotoLocation:
		return p.localizer.Get("Photo Location")
	case resolve.ChoiceCurrentLocation:
		return p.localizer.Get("Current Location")
	case resolve.ChoicePickOnMap:
		return p.localizer.Get("Pick on Map")
	}
	return fmt.Sprintf("choice %d", choice)
}

// Decision renders the user-facing message for a photo resolution decision.
// An auto-accepted photo yields a confirmation, a conflict yields the
// question introducing the choice menu and a manual outcome yields the
// instruction to pick on the map.
func (p *Presenter) Decision(d resolve.Decision) string {
	switch d.Outcome {
	case resolve.OutcomeAutoAccepted:
		return p.localizer.Get("Photo location accepted.")
	case resolve.OutcomeNeedsChoice:
		return p.localizer.Getf(
			"The photo was taken %.1f km away from your current location. Which location do you want to use for this report?",
			d.DistanceKm)
	case resolve.OutcomeNeedsManual:
		if d.Hint != nil {
			return p.localizer.Get("The photo location is outside Namibia. Please pick the damage location on the map.")
		}
		return p.localizer.Get("Photo has no location data. Please pick the damage location on the map.")
	}
	return ""
}

// Menu renders numbered menu lines with the label column aligned on display
// width, so the details line up even for translated labels.
func (p *Presenter) Menu(entries []MenuEntry) []string {
	labels := make([]string, len(entries))
	width := 0
	for i, entry := range entries {
		labels[i] = p.ChoiceLabel(entry.Choice)
		if w := runewidth.StringWidth(labels[i]); w > width {
			width = w
		}
	}

	lines := make([]string, len(entries))
	for i, entry := range entries {
		line := fmt.Sprintf("[%d] %s", i+1, runewidth.FillRight(labels[i], width))
		if entry.Detail != "" {
			line += "  " + entry.Detail
		}
		lines[i] = line
	}
	return lines
}

// Error maps a reporting flow error to a localized user-facing message.
// Unknown errors are passed through unchanged.
func (p *Presenter) Error(err error) string {
	var tooFar *resolve.TooFarError
	if errors.As(err, &tooFar) {
		return p.localizer.Getf(
			"The chosen location is %.0f km away from you. Reports must be filed within %.0f km of your position.",
			tooFar.DistanceKm, tooFar.LimitKm)
	}

	var missing *report.MissingFieldError
	if errors.As(err, &missing) {
		switch missing.Field {
		case report.MissingLocation:
			return p.localizer.Get("Please choose a location for the report before submitting.")
		case report.MissingPhoto:
			return p.localizer.Get("Please attach a photo of the road damage.")
		case report.MissingRoadName:
			return p.localizer.Get("Please enter the road name.")
		}
	}

	switch {
	case errors.Is(err, resolve.ErrNoLocationChosen):
		return p.localizer.Get("Please choose a location for the report before submitting.")
	case errors.Is(err, resolve.ErrOutsideServiceArea):
		return p.localizer.Get("The chosen location is outside Namibia. Reports can only be filed inside the service area.")
	}
	return err.Error()
}

// Confirmed renders the confirmation line shown after the manual override
// gate passed, labeled with the reverse-geocoded address or the raw
// coordinate.
func (p *Presenter) Confirmed(label string) string {
	return p.localizer.Getf("Location confirmed: %s", label)
}

// Submitted renders the submission confirmation with the reference code.
func (p *Presenter) Submitted(referenceCode string) string {
	return p.localizer.Getf("Report submitted. Your reference code is %s.", referenceCode)
}

// FixAge renders the age of the last live position fix in natural language.
func (p *Presenter) FixAge(at time.Time) string {
	return p.localizer.Getf("Last position fix: %s", p.humanizer.NaturalTime(at))
}
