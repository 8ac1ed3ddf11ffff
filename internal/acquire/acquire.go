// SPDX-FileCopyrightText: The roadreport developers
//
// SPDX-License-Identifier: MIT

// Package acquire orchestrates the two external location sources of a report
// session: the device's live position and the geotag embedded in the chosen
// photo. Both flows are independent; a failure in one never aborts the
// session, it just leaves that source unavailable.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/roadsauthority/roadreport/internal/geo"
	"github.com/roadsauthority/roadreport/internal/logger"
	"github.com/roadsauthority/roadreport/internal/resolve"
)

var (
	// ErrPermissionDenied is returned when the platform refuses access to the
	// live position. The user may retry or continue manual-only.
	ErrPermissionDenied = errors.New("location permission denied")

	// ErrAcquisitionFailed is returned when a location source could not
	// deliver. The session continues without that source.
	ErrAcquisitionFailed = errors.New("location acquisition failed")

	// ErrSuperseded is returned when a photo extraction finished after a newer
	// photo had already been chosen; its result is discarded.
	ErrSuperseded = errors.New("photo superseded by a newer selection")
)

// PositionProvider delivers the device's live position.
type PositionProvider interface {
	Name() string
	// RequestPermission asks the platform for access to the live position.
	// Providers without a permission concept return nil.
	RequestPermission(ctx context.Context) error
	// CurrentPosition fetches a single live reading.
	CurrentPosition(ctx context.Context) (geo.Coordinate, error)
}

// PhotoProvider extracts the location metadata of a photo. A nil coordinate
// with a nil error means the photo carries no usable geotag.
type PhotoProvider interface {
	Name() string
	ExtractLocation(ctx context.Context, photo string) (*geo.Coordinate, error)
}

// Controller feeds provider results into the resolution session.
type Controller struct {
	logger   *logger.Logger
	session  *resolve.Session
	position PositionProvider
	photos   PhotoProvider

	mu       sync.Mutex
	photoGen uint64
}

// NewController creates a Controller for the given session and providers.
func NewController(log *logger.Logger, session *resolve.Session, position PositionProvider,
	photos PhotoProvider,
) *Controller {
	return &Controller{
		logger:   log,
		session:  session,
		position: position,
		photos:   photos,
	}
}

// AcquirePosition requests permission and fetches one live reading into the
// session. On permission denial the session keeps running without a live
// position; the caller may retry later. An already accepted selection is
// never cleared by a failed acquisition.
func (c *Controller) AcquirePosition(ctx context.Context) error {
	if err := c.position.RequestPermission(ctx); err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			return err
		}
		return fmt.Errorf("%w: %s", ErrPermissionDenied, err)
	}

	pos, err := c.position.CurrentPosition(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrAcquisitionFailed, err)
	}
	if !pos.Valid() {
		return fmt.Errorf("%w: provider %s returned an invalid coordinate", ErrAcquisitionFailed,
			c.position.Name())
	}

	c.session.SetCurrent(pos)
	c.logger.Debug("live position acquired", "provider", c.position.Name(), "position", pos.String())
	return nil
}

// AttachPhoto extracts the location metadata of the given photo, stores the
// candidate and resolves it against the session state. Extraction failures
// and missing geotags are indistinguishable to the caller: both demand a
// manual map confirmation and neither is fatal.
//
// Last photo wins: when a newer photo is attached while this extraction is
// still running, the stale result is discarded and ErrSuperseded returned.
func (c *Controller) AttachPhoto(ctx context.Context, photo string) (resolve.Decision, error) {
	c.mu.Lock()
	c.photoGen++
	gen := c.photoGen
	c.mu.Unlock()

	coord, err := c.photos.ExtractLocation(ctx, photo)
	if err != nil {
		c.logger.Warn("failed to extract photo location, falling back to manual selection",
			logger.Err(err), "photo", photo)
		coord = nil
	}
	if coord != nil && !coord.Valid() {
		c.logger.Warn("photo carried an invalid geotag, falling back to manual selection",
			"photo", photo)
		coord = nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.photoGen {
		return resolve.Decision{}, ErrSuperseded
	}

	c.session.SetPhoto(coord)
	if coord == nil {
		return resolve.ManualDecision(), nil
	}
	return c.session.ResolvePhoto(*coord), nil
}
