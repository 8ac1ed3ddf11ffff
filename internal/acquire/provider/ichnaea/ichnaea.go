// SPDX-FileCopyrightText: The roadreport developers
//
// SPDX-License-Identifier: MIT

// Package ichnaea delivers the device position by submitting the visible
// WiFi access points to a Mozilla-Ichnaea-compatible geolocation API.
package ichnaea

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mdlayher/wifi"

	"github.com/roadsauthority/roadreport/internal/geo"
	"github.com/roadsauthority/roadreport/internal/http"
)

const (
	apiEndpoint   = "https://api.beacondb.net/v1/geolocate"
	lookupTimeout = time.Second * 5
)

// Provider is a position provider backed by an Ichnaea geolocation API.
type Provider struct {
	http *http.Client
	wlan *wifi.Client

	scanFn func() ([]WirelessNetwork, error)
}

// APIResult is the geolocation response of the Ichnaea API.
type APIResult struct {
	Location struct {
		Latitude  float64 `json:"lat"`
		Longitude float64 `json:"lng"`
	} `json:"location"`
	Accuracy float64 `json:"accuracy"`
}

// WirelessNetwork describes a visible access point in the API request.
type WirelessNetwork struct {
	LastSeen       int64  `json:"age"`
	MACAddress     string `json:"macAddress"`
	SignalStrength int32  `json:"signalStrength"`
}

// New creates an Ichnaea position provider. It fails when the system has no
// WiFi support.
func New(client *http.Client) (*Provider, error) {
	if client == nil {
		return nil, fmt.Errorf("http client is required")
	}
	wlan, err := wifi.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create wifi client: %w", err)
	}

	provider := &Provider{http: client, wlan: wlan}
	provider.scanFn = provider.wifiAccessPoints
	return provider, nil
}

// Name returns the name of the provider.
func (p *Provider) Name() string {
	return "ichnaea"
}

// RequestPermission is a no-op, the API has no permission concept.
func (p *Provider) RequestPermission(_ context.Context) error {
	return nil
}

// CurrentPosition scans the visible access points and resolves them into a
// position via the API. With no access points in sight the API falls back to
// an IP-based estimate.
func (p *Provider) CurrentPosition(ctx context.Context) (geo.Coordinate, error) {
	aps, err := p.scanFn()
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("failed to scan wifi access points: %w", err)
	}

	type request struct {
		ConsiderIP   bool              `json:"considerIp"`
		Accesspoints []WirelessNetwork `json:"wifiAccessPoints,omitempty"`
	}
	req := request{
		ConsiderIP:   true,
		Accesspoints: aps,
	}
	bodyBuffer := bytes.NewBuffer(nil)
	if err = json.NewEncoder(bodyBuffer).Encode(req); err != nil {
		return geo.Coordinate{}, fmt.Errorf("failed to encode wifi list to JSON: %w", err)
	}

	ctxHTTP, cancelHTTP := context.WithTimeout(ctx, lookupTimeout)
	defer cancelHTTP()
	result := new(APIResult)
	if _, err = p.http.Post(ctxHTTP, apiEndpoint, result, bodyBuffer,
		map[string]string{"Content-Type": "application/json"}); err != nil {
		return geo.Coordinate{}, fmt.Errorf("failed to get geolocation data from API: %w", err)
	}

	return geo.Coordinate{
		Latitude:  result.Location.Latitude,
		Longitude: result.Location.Longitude,
	}, nil
}

// wifiAccessPoints lists the access points visible to the station
// interfaces. Hidden networks and networks opted out via the _nomap suffix
// are excluded.
func (p *Provider) wifiAccessPoints() ([]WirelessNetwork, error) {
	var checkIfaces []*wifi.Interface
	var list []WirelessNetwork

	ifaces, err := p.wlan.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}
	for _, iface := range ifaces {
		if iface.Type != wifi.InterfaceTypeStation {
			continue
		}
		checkIfaces = append(checkIfaces, iface)
	}
	if len(checkIfaces) == 0 {
		return nil, nil
	}

	for _, iface := range checkIfaces {
		aps, err := p.wlan.AccessPoints(iface)
		if err != nil {
			continue
		}
		for _, ap := range aps {
			if ap.SSID == "" || ap.SSID[0] == '\x00' || strings.HasSuffix(ap.SSID, "_nomap") {
				continue
			}
			list = append(list, WirelessNetwork{
				SignalStrength: ap.Signal / 100,
				MACAddress:     ap.BSSID.String(),
				LastSeen:       ap.LastSeen.Milliseconds(),
			})
		}
	}

	return list, nil
}
