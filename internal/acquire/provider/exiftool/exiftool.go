// SPDX-FileCopyrightText: The roadreport developers
//
// SPDX-License-Identifier: MIT

// Package exiftool extracts the embedded geotag of a photo by shelling out
// to the exiftool binary.
package exiftool

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/roadsauthority/roadreport/internal/geo"
)

const extractTimeout = time.Second * 10

// Provider is a photo metadata provider backed by the exiftool binary.
type Provider struct {
	binary string
}

// New creates an exiftool photo provider using the given binary path.
func New(binary string) *Provider {
	if binary == "" {
		binary = "exiftool"
	}
	return &Provider{binary: binary}
}

// Name returns the name of the provider.
func (p *Provider) Name() string {
	return "exiftool"
}

// ExtractLocation reads the GPS metadata of the given photo. A photo without
// a geotag yields a nil coordinate and no error.
func (p *Provider) ExtractLocation(ctx context.Context, photo string) (*geo.Coordinate, error) {
	ctxCmd, cancelCmd := context.WithTimeout(ctx, extractTimeout)
	defer cancelCmd()

	// -n emits decimal degrees, -T tab-separates the values.
	cmd := exec.CommandContext(ctxCmd, p.binary, "-GPSLatitude", "-GPSLongitude", "-n", "-T", photo)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to run %s on %q: %w", p.binary, photo, err)
	}

	return parseCoordinates(string(output))
}

// parseCoordinates parses the tab-separated exiftool output. Missing tags are
// emitted as a dash and mean the photo carries no geotag.
func parseCoordinates(output string) (*geo.Coordinate, error) {
	fields := strings.Split(strings.TrimSpace(output), "\t")
	if len(fields) != 2 {
		return nil, fmt.Errorf("unexpected exiftool output: %q", strings.TrimSpace(output))
	}

	latField, lngField := strings.TrimSpace(fields[0]), strings.TrimSpace(fields[1])
	if latField == "-" || lngField == "-" || latField == "" || lngField == "" {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(latField, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse latitude %q: %w", latField, err)
	}
	lng, err := strconv.ParseFloat(lngField, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse longitude %q: %w", lngField, err)
	}

	coord := &geo.Coordinate{Latitude: lat, Longitude: lng}
	if !coord.Valid() {
		return nil, fmt.Errorf("geotag out of range: %s", coord)
	}
	return coord, nil
}
