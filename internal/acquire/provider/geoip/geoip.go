// SPDX-FileCopyrightText: The roadreport developers
//
// SPDX-License-Identifier: MIT

// Package geoip delivers a coarse device position based on the public IP
// address. It is the fallback of last resort in the provider chain; the
// accuracy is city-level at best.
package geoip

import (
	"context"
	"fmt"
	"time"

	"github.com/roadsauthority/roadreport/internal/geo"
	"github.com/roadsauthority/roadreport/internal/http"
)

const (
	apiEndpoint   = "https://reallyfreegeoip.org/json/"
	lookupTimeout = time.Second * 5
)

// Provider is a position provider backed by a GeoIP API.
type Provider struct {
	http *http.Client
}

// APIResult is the geolocation response of the GeoIP API.
type APIResult struct {
	IP          string  `json:"ip"`
	CountryCode string  `json:"country_code"`
	Country     string  `json:"country_name"`
	RegionCode  string  `json:"region_code,omitempty"`
	Region      string  `json:"region_name,omitempty"`
	City        string  `json:"city,omitempty"`
	ZipCode     string  `json:"zip_code,omitempty"`
	TimeZone    string  `json:"time_zone"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	MetroCode   int     `json:"metro_code"`
}

// New creates a GeoIP position provider.
func New(client *http.Client) *Provider {
	return &Provider{http: client}
}

// Name returns the name of the provider.
func (p *Provider) Name() string {
	return "geoip"
}

// RequestPermission is a no-op, the API has no permission concept.
func (p *Provider) RequestPermission(_ context.Context) error {
	return nil
}

// CurrentPosition resolves the public IP address into a position.
func (p *Provider) CurrentPosition(ctx context.Context) (geo.Coordinate, error) {
	ctxHTTP, cancelHTTP := context.WithTimeout(ctx, lookupTimeout)
	defer cancelHTTP()

	result := new(APIResult)
	if _, err := p.http.Get(ctxHTTP, apiEndpoint, result, nil, nil); err != nil {
		return geo.Coordinate{}, fmt.Errorf("failed to get geolocation data from API: %w", err)
	}

	return geo.Coordinate{Latitude: result.Latitude, Longitude: result.Longitude}, nil
}
