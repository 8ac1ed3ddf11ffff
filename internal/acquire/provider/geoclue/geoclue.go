// SPDX-FileCopyrightText: The roadreport developers
//
// SPDX-License-Identifier: MIT

// Package geoclue delivers the device position via the GeoClue2 D-Bus
// service. It is the only position provider with a real permission concept:
// the GeoClue agent can deny the client, which surfaces as a permission
// denial to the acquisition layer.
package geoclue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/roadsauthority/roadreport/internal/acquire"
	"github.com/roadsauthority/roadreport/internal/geo"
	"github.com/roadsauthority/roadreport/internal/logger"
)

const (
	busName       = "org.freedesktop.GeoClue2"
	managerPath   = "/org/freedesktop/GeoClue2/Manager"
	managerIface  = "org.freedesktop.GeoClue2.Manager"
	clientIface   = "org.freedesktop.GeoClue2.Client"
	locationIface = "org.freedesktop.GeoClue2.Location"

	desktopID = "roadreport"

	// GClueAccuracyLevelExact
	requestedAccuracy = uint32(8)

	dbusAccessDenied = "org.freedesktop.DBus.Error.AccessDenied"

	fixTimeout = time.Second * 30
)

// Provider is a position provider backed by GeoClue2.
type Provider struct {
	logger *logger.Logger

	mu      sync.Mutex
	conn    *dbus.Conn
	client  dbus.BusObject
	started bool
}

// New creates a GeoClue2 position provider. The D-Bus connection is
// established lazily on the first permission request.
func New(log *logger.Logger) *Provider {
	return &Provider{logger: log}
}

// Name returns the name of the provider.
func (p *Provider) Name() string {
	return "geoclue"
}

// RequestPermission registers a GeoClue2 client and starts it. A denial by
// the GeoClue agent is reported as acquire.ErrPermissionDenied; any other
// failure is a provider error.
func (p *Provider) RequestPermission(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}

	if err := p.ensureClient(ctx); err != nil {
		return err
	}
	if call := p.client.CallWithContext(ctx, clientIface+".Start", 0); call.Err != nil {
		if isAccessDenied(call.Err) {
			return fmt.Errorf("%w: geoclue agent refused the client", acquire.ErrPermissionDenied)
		}
		return fmt.Errorf("failed to start geoclue client: %w", call.Err)
	}

	p.started = true
	p.logger.Debug("geoclue client started", "desktop_id", desktopID)
	return nil
}

// CurrentPosition reads the active GeoClue2 location. When no fix is
// available yet it waits for the first LocationUpdated signal.
func (p *Provider) CurrentPosition(ctx context.Context) (geo.Coordinate, error) {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return geo.Coordinate{}, errors.New("geoclue client is not started")
	}
	conn, client := p.conn, p.client
	p.mu.Unlock()

	path, err := p.locationPath(client)
	if err != nil {
		return geo.Coordinate{}, err
	}
	if path == dbus.ObjectPath("/") {
		if path, err = p.awaitFix(ctx, conn, client); err != nil {
			return geo.Coordinate{}, err
		}
	}

	return p.readLocation(conn, path)
}

// Close stops the GeoClue2 client and tears down the bus connection.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}

	var err error
	if p.started {
		if call := p.client.Call(clientIface+".Stop", 0); call.Err != nil {
			err = fmt.Errorf("failed to stop geoclue client: %w", call.Err)
		}
	}
	if closeErr := p.conn.Close(); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("failed to close system bus: %w", closeErr))
	}
	p.conn, p.client, p.started = nil, nil, false
	return err
}

// ensureClient connects to the system bus and registers a GeoClue2 client
// object with our desktop id and the requested accuracy. Must be called with
// the mutex held.
func (p *Provider) ensureClient(ctx context.Context) error {
	if p.client != nil {
		return nil
	}

	conn, err := dbus.ConnectSystemBus(dbus.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to connect to system bus: %w", err)
	}

	var clientPath dbus.ObjectPath
	manager := conn.Object(busName, managerPath)
	if err = manager.CallWithContext(ctx, managerIface+".GetClient", 0).Store(&clientPath); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to get geoclue client: %w", err)
	}

	client := conn.Object(busName, clientPath)
	if err = client.SetProperty(clientIface+".DesktopId", dbus.MakeVariant(desktopID)); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to set desktop id: %w", err)
	}
	if err = client.SetProperty(clientIface+".RequestedAccuracyLevel",
		dbus.MakeVariant(requestedAccuracy)); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to set requested accuracy level: %w", err)
	}

	p.conn, p.client = conn, client
	return nil
}

// awaitFix blocks until GeoClue emits its first LocationUpdated signal and
// returns the new location object path.
func (p *Provider) awaitFix(ctx context.Context, conn *dbus.Conn, client dbus.BusObject) (dbus.ObjectPath, error) {
	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface(clientIface),
		dbus.WithMatchMember("LocationUpdated"),
		dbus.WithMatchObjectPath(client.Path()),
	); err != nil {
		return "", fmt.Errorf("failed to subscribe to location updates: %w", err)
	}
	defer func() {
		if err := conn.RemoveMatchSignal(
			dbus.WithMatchInterface(clientIface),
			dbus.WithMatchMember("LocationUpdated"),
			dbus.WithMatchObjectPath(client.Path()),
		); err != nil {
			p.logger.Error("failed to unsubscribe from location updates", logger.Err(err))
		}
	}()

	sigCh := make(chan *dbus.Signal, 8)
	conn.Signal(sigCh)
	defer conn.RemoveSignal(sigCh)

	// The signal might have fired between the property read and the
	// subscription, so re-check the property once.
	if path, err := p.locationPath(client); err == nil && path != dbus.ObjectPath("/") {
		return path, nil
	}

	timer := time.NewTimer(fixTimeout)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
			return "", errors.New("timed out waiting for a geoclue fix")
		case sgn, ok := <-sigCh:
			if !ok {
				return "", errors.New("system bus connection lost")
			}
			if len(sgn.Body) != 2 {
				continue
			}
			path, ok := sgn.Body[1].(dbus.ObjectPath)
			if !ok || path == dbus.ObjectPath("/") {
				continue
			}
			return path, nil
		}
	}
}

func (p *Provider) locationPath(client dbus.BusObject) (dbus.ObjectPath, error) {
	variant, err := client.GetProperty(clientIface + ".Location")
	if err != nil {
		return "", fmt.Errorf("failed to get location property: %w", err)
	}
	path, ok := variant.Value().(dbus.ObjectPath)
	if !ok {
		return "", fmt.Errorf("unexpected location property type: %T", variant.Value())
	}
	return path, nil
}

func (p *Provider) readLocation(conn *dbus.Conn, path dbus.ObjectPath) (geo.Coordinate, error) {
	location := conn.Object(busName, path)

	lat, err := locationProperty(location, "Latitude")
	if err != nil {
		return geo.Coordinate{}, err
	}
	lng, err := locationProperty(location, "Longitude")
	if err != nil {
		return geo.Coordinate{}, err
	}
	return geo.Coordinate{Latitude: lat, Longitude: lng}, nil
}

func locationProperty(location dbus.BusObject, name string) (float64, error) {
	variant, err := location.GetProperty(locationIface + "." + name)
	if err != nil {
		return 0, fmt.Errorf("failed to get location %s: %w", name, err)
	}
	value, ok := variant.Value().(float64)
	if !ok {
		return 0, fmt.Errorf("unexpected type for location %s: %T", name, variant.Value())
	}
	return value, nil
}

func isAccessDenied(err error) bool {
	var dbusErr dbus.Error
	return errors.As(err, &dbusErr) && dbusErr.Name == dbusAccessDenied
}
