// SPDX-FileCopyrightText: The roadreport developers
//
// SPDX-License-Identifier: MIT

// Package geocode resolves coordinates into human-readable addresses. The
// address is cosmetic: it labels the chosen report location in the UI and
// the submitted report, it never influences which coordinate is chosen.
package geocode

import (
	"context"
	"strings"

	"github.com/roadsauthority/roadreport/internal/geo"
)

type Address struct {
	AddressFound bool
	CacheHit     bool
	Latitude     float64
	Longitude    float64
	DisplayName  string
	Country      string
	State        string
	Municipality string
	CityDistrict string
	Postcode     string
	City         string
	Suburb       string
	Street       string
	HouseNumber  string
}

// Line renders the address as a single "street, city, region" line. Empty
// parts are skipped; an empty line means the address adds nothing useful.
func (a Address) Line() string {
	if !a.AddressFound {
		return ""
	}
	var parts []string
	for _, part := range []string{a.Street, a.City, a.State} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

type Geocoder interface {
	Name() string
	Reverse(ctx context.Context, coords geo.Coordinate) (Address, error)
}

// Searcher finds the coordinate of a free-form address. It drives the
// address-based map picking flow.
type Searcher interface {
	Search(ctx context.Context, address string) (geo.Coordinate, error)
}
