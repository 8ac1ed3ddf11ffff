// SPDX-FileCopyrightText: The roadreport developers
//
// SPDX-License-Identifier: MIT

// Package gpsd delivers the device position from a local gpsd daemon.
package gpsd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/stratoberry/go-gpsd"

	"github.com/roadsauthority/roadreport/internal/geo"
	"github.com/roadsauthority/roadreport/internal/logger"
)

const fixTimeout = time.Second * 15

// Provider is a position provider backed by a gpsd daemon.
type Provider struct {
	logger *logger.Logger
	host   string
	port   string

	dialFn func(addr string) (session, error)
}

// session is the subset of the gpsd connection the provider uses.
type session interface {
	AddFilter(class string, filter gpsd.Filter)
	Watch() chan bool
}

// New creates a gpsd position provider for the given host and port.
func New(log *logger.Logger, host, port string) *Provider {
	return &Provider{
		logger: log,
		host:   host,
		port:   port,
		dialFn: func(addr string) (session, error) {
			return gpsd.Dial(addr)
		},
	}
}

// Name returns the name of the provider.
func (p *Provider) Name() string {
	return "gpsd"
}

// RequestPermission is a no-op, gpsd has no permission concept.
func (p *Provider) RequestPermission(_ context.Context) error {
	return nil
}

// CurrentPosition connects to gpsd and waits for the first TPV report with at
// least a 2D fix.
func (p *Provider) CurrentPosition(ctx context.Context) (geo.Coordinate, error) {
	addr := net.JoinHostPort(p.host, p.port)
	conn, err := p.dialFn(addr)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("failed to connect to gpsd at %q: %w", addr, err)
	}

	fixes := make(chan geo.Coordinate, 1)
	conn.AddFilter("TPV", func(r interface{}) {
		tpv, ok := r.(*gpsd.TPVReport)
		if !ok {
			return
		}
		if tpv.Mode < gpsd.Mode2D {
			return
		}
		select {
		case fixes <- geo.Coordinate{Latitude: tpv.Lat, Longitude: tpv.Lon}:
		default:
		}
	})

	// Watch returns a channel that closes when the watch ends, e.g. on a
	// lost connection. go-gpsd has no Close(); the connection is torn down
	// when the process exits.
	done := conn.Watch()

	timer := time.NewTimer(fixTimeout)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return geo.Coordinate{}, ctx.Err()
	case <-timer.C:
		return geo.Coordinate{}, errors.New("timed out waiting for a gpsd fix")
	case <-done:
		return geo.Coordinate{}, errors.New("gpsd connection ended before a fix was delivered")
	case fix := <-fixes:
		p.logger.Debug("gpsd fix received", "position", fix.String())
		return fix, nil
	}
}
