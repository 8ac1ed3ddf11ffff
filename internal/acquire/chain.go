// SPDX-FileCopyrightText: The roadreport developers
//
// SPDX-License-Identifier: MIT

package acquire

import (
	"context"
	"errors"
	"fmt"

	"github.com/roadsauthority/roadreport/internal/geo"
	"github.com/roadsauthority/roadreport/internal/logger"
)

// ChainProvider tries a list of position providers in order and delivers the
// first valid fix. A permission denial from a provider stops the chain: the
// user said no, falling through to a provider that does not ask would
// sidestep that decision.
type ChainProvider struct {
	logger    *logger.Logger
	providers []PositionProvider
}

// NewChain creates a ChainProvider over the given providers.
func NewChain(log *logger.Logger, providers ...PositionProvider) *ChainProvider {
	return &ChainProvider{logger: log, providers: providers}
}

// Name returns the name of the provider chain.
func (c *ChainProvider) Name() string {
	return "chain"
}

// RequestPermission asks the first provider with a permission concept. Only
// an explicit denial is an error; provider-internal failures fall through to
// the fetch step.
func (c *ChainProvider) RequestPermission(ctx context.Context) error {
	for _, p := range c.providers {
		err := p.RequestPermission(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrPermissionDenied) {
			return err
		}
		c.logger.Debug("position provider permission check failed, trying next",
			"provider", p.Name(), logger.Err(err))
	}
	return nil
}

// CurrentPosition fetches a fix from the first provider that delivers one.
func (c *ChainProvider) CurrentPosition(ctx context.Context) (geo.Coordinate, error) {
	var lastErr error
	for _, p := range c.providers {
		pos, err := p.CurrentPosition(ctx)
		if err != nil {
			c.logger.Debug("position provider failed, trying next", "provider", p.Name(),
				logger.Err(err))
			lastErr = err
			continue
		}
		if !pos.Valid() {
			lastErr = fmt.Errorf("provider %s returned an invalid coordinate", p.Name())
			continue
		}
		return pos, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no position providers configured")
	}
	return geo.Coordinate{}, lastErr
}
