// SPDX-FileCopyrightText: The roadreport developers
//
// SPDX-License-Identifier: MIT

// Package conditions captures a weather snapshot at the damage location via
// the Open-Meteo API. The snapshot is audit metadata on the submitted report
// (heavy rainfall is the usual cause of the damage being reported); it never
// participates in location resolution and its failure is never surfaced to
// the user.
package conditions

import (
	"context"
	"fmt"
	"time"

	"github.com/hectormalot/omgo"

	"github.com/roadsauthority/roadreport/internal/geo"
)

// Snapshot is the subset of the current weather attached to a report draft.
type Snapshot struct {
	TemperatureC float64   `json:"temperatureC"`
	WindSpeedKmh float64   `json:"windSpeedKmh"`
	WeatherCode  int       `json:"weatherCode"`
	Condition    string    `json:"condition"`
	ObservedAt   time.Time `json:"observedAt"`
}

// wmoConditions maps the WMO weather codes Open-Meteo returns to short
// descriptions. Codes without a mapping are reported as-is.
var wmoConditions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// Observer fetches weather snapshots for coordinates.
type Observer struct {
	client omgo.Client
}

// NewObserver creates an Observer backed by the public Open-Meteo API.
func NewObserver() (*Observer, error) {
	client, err := omgo.NewClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create Open-Meteo client: %w", err)
	}
	return &Observer{client: client}, nil
}

// Capture fetches the current weather at the given coordinate.
func (o *Observer) Capture(ctx context.Context, c geo.Coordinate) (*Snapshot, error) {
	loc, err := omgo.NewLocation(c.Latitude, c.Longitude)
	if err != nil {
		return nil, fmt.Errorf("failed to create Open-Meteo location: %w", err)
	}
	current, err := o.client.CurrentWeather(ctx, loc, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current weather: %w", err)
	}
	return newSnapshot(current), nil
}

// newSnapshot converts an Open-Meteo current weather reading into the report
// snapshot.
func newSnapshot(current omgo.CurrentWeather) *Snapshot {
	code := int(current.WeatherCode)
	return &Snapshot{
		TemperatureC: current.Temperature,
		WindSpeedKmh: current.WindSpeed,
		WeatherCode:  code,
		Condition:    conditionLabel(code),
		ObservedAt:   current.Time.Time,
	}
}

func conditionLabel(code int) string {
	if label, ok := wmoConditions[code]; ok {
		return label
	}
	return fmt.Sprintf("WMO code %d", code)
}
