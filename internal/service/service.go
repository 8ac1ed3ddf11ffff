// SPDX-FileCopyrightText: The roadreport developers
//
// SPDX-License-Identifier: MIT

// Package service wires the location resolution session, the acquisition
// providers and the submission client into the reporting flow driven by the
// command line client.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/roadsauthority/roadreport/internal/acquire"
	"github.com/roadsauthority/roadreport/internal/acquire/provider/exiftool"
	"github.com/roadsauthority/roadreport/internal/acquire/provider/geoclue"
	"github.com/roadsauthority/roadreport/internal/acquire/provider/geoip"
	"github.com/roadsauthority/roadreport/internal/acquire/provider/gpsd"
	"github.com/roadsauthority/roadreport/internal/acquire/provider/ichnaea"
	"github.com/roadsauthority/roadreport/internal/conditions"
	"github.com/roadsauthority/roadreport/internal/config"
	"github.com/roadsauthority/roadreport/internal/geo"
	"github.com/roadsauthority/roadreport/internal/geocode"
	"github.com/roadsauthority/roadreport/internal/geocode/provider/nominatim"
	"github.com/roadsauthority/roadreport/internal/http"
	"github.com/roadsauthority/roadreport/internal/logger"
	"github.com/roadsauthority/roadreport/internal/report"
	"github.com/roadsauthority/roadreport/internal/resolve"
	"github.com/roadsauthority/roadreport/internal/submit"
)

// Service orchestrates a single report authoring session.
type Service struct {
	config     *config.Config
	logger     *logger.Logger
	session    *resolve.Session
	controller *acquire.Controller
	geocoder   geocode.Geocoder
	searcher   geocode.Searcher
	observer   *conditions.Observer
	submitter  *submit.Client
	scheduler  gocron.Scheduler

	fixLock sync.RWMutex
	lastFix time.Time
}

// New creates a Service from the given configuration. Optional subsystems
// that fail to initialize (WiFi geolocation, weather) are logged and left
// out; the reporting flow works without them.
func New(conf *config.Config, log *logger.Logger) (*Service, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	httpClient := http.New(log)
	session := resolve.NewSession(resolve.Config{
		MaxReportDistanceKm:      conf.Resolution.MaxReportDistanceKm,
		PhotoDistanceThresholdKm: conf.Resolution.PhotoDistanceThresholdKm,
		ServiceArea: geo.Bounds{
			MinLat: conf.Resolution.ServiceArea.MinLat,
			MaxLat: conf.Resolution.ServiceArea.MaxLat,
			MinLng: conf.Resolution.ServiceArea.MinLng,
			MaxLng: conf.Resolution.ServiceArea.MaxLng,
		},
	})

	service := &Service{
		config:    conf,
		logger:    log,
		session:   session,
		scheduler: scheduler,
		submitter: submit.New(log, httpClient, conf.Submission.Endpoint, uuid.NewString()),
	}

	position := service.createPositionChain(httpClient)
	photos := exiftool.New(conf.Photo.ExiftoolPath)
	service.controller = acquire.NewController(log, session, position, photos)

	if !conf.Geocode.Disable {
		coder := nominatim.New(httpClient, language.Make(conf.Locale))
		service.geocoder = geocode.NewCachedGeocoder(coder, conf.Geocode.HitTTL, conf.Geocode.MissTTL)
		service.searcher = coder
	}
	if !conf.Conditions.Disable {
		observer, err := conditions.NewObserver()
		if err != nil {
			log.Error("failed to create weather observer, reports will carry no weather snapshot",
				logger.Err(err))
		} else {
			service.observer = observer
		}
	}

	return service, nil
}

// createPositionChain assembles the live position provider chain in fixed
// accuracy order: GeoClue, gpsd, WiFi, GeoIP. Disabled or unavailable
// providers are skipped.
func (s *Service) createPositionChain(httpClient *http.Client) acquire.PositionProvider {
	var providers []acquire.PositionProvider

	if !s.config.Position.DisableGeoClue {
		providers = append(providers, geoclue.New(s.logger))
	}
	if !s.config.Position.DisableGPSD {
		providers = append(providers, gpsd.New(s.logger, s.config.Position.GPSDHost,
			s.config.Position.GPSDPort))
	}
	if !s.config.Position.DisableWiFi {
		wlan, err := ichnaea.New(httpClient)
		if err != nil {
			s.logger.Error("failed to create WiFi position provider", logger.Err(err))
		} else {
			providers = append(providers, wlan)
		}
	}
	if !s.config.Position.DisableGeoIP {
		providers = append(providers, geoip.New(httpClient))
	}

	return acquire.NewChain(s.logger, providers...)
}

// Start performs the initial position acquisition and schedules the periodic
// refresh. A failed or denied acquisition leaves the session in manual-only
// mode; the flow continues.
func (s *Service) Start(ctx context.Context) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.config.Intervals.PositionUpdate),
		gocron.NewTask(s.refreshPosition),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("position_update_job"),
	)
	if err != nil {
		return fmt.Errorf("failed to create position_update_job: %w", err)
	}
	s.scheduler.Start()

	s.refreshPosition(ctx)
	return nil
}

// Shutdown stops the background refresh.
func (s *Service) Shutdown() error {
	return s.scheduler.Shutdown()
}

// Session exposes the resolution session for presentation purposes.
func (s *Service) Session() *resolve.Session {
	return s.session
}

// LastFix reports when the live position was last refreshed.
func (s *Service) LastFix() (time.Time, bool) {
	s.fixLock.RLock()
	defer s.fixLock.RUnlock()
	return s.lastFix, !s.lastFix.IsZero()
}

func (s *Service) refreshPosition(ctx context.Context) {
	if err := s.controller.AcquirePosition(ctx); err != nil {
		if errors.Is(err, acquire.ErrPermissionDenied) {
			s.logger.Warn("location permission denied, continuing in manual-only mode")
			return
		}
		s.logger.Warn("failed to refresh live position", logger.Err(err))
		return
	}
	s.fixLock.Lock()
	s.lastFix = time.Now()
	s.fixLock.Unlock()
}

// AttachPhoto runs the photo location extraction and resolution. When the
// photo was auto-accepted the address annotation is refreshed in the
// background.
func (s *Service) AttachPhoto(ctx context.Context, photo string) (resolve.Decision, error) {
	decision, err := s.controller.AttachPhoto(ctx, photo)
	if err != nil {
		return decision, err
	}
	if decision.Outcome == resolve.OutcomeAutoAccepted {
		go s.annotateAddress(context.WithoutCancel(ctx))
	}
	return decision, nil
}

// Choose applies the user's pick in a photo/live conflict.
func (s *Service) Choose(ctx context.Context, choice resolve.Choice) error {
	if err := s.session.ApplyChoice(choice); err != nil {
		return err
	}
	if choice != resolve.ChoicePickOnMap {
		go s.annotateAddress(context.WithoutCancel(ctx))
	}
	return nil
}

// defaultMapSeed is the Windhoek city center, the fallback map position when
// no location candidate exists at all.
var defaultMapSeed = geo.Coordinate{Latitude: -22.5597, Longitude: 17.0832}

// MapSeed returns the coordinate the map should open at.
func (s *Service) MapSeed() geo.Coordinate {
	if seed, ok := s.session.MapSeed(); ok {
		return seed
	}
	return defaultMapSeed
}

// PickPin moves the provisional map pin.
func (s *Service) PickPin(c geo.Coordinate) {
	s.session.SetPin(c)
}

// PickAddress resolves a free-form address to a coordinate and moves the
// provisional pin there.
func (s *Service) PickAddress(ctx context.Context, address string) (geo.Coordinate, error) {
	if s.searcher == nil {
		return geo.Coordinate{}, errors.New("address search is disabled")
	}
	coords, err := s.searcher.Search(ctx, address)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("failed to find address %q: %w", address, err)
	}
	s.session.SetPin(coords)
	return coords, nil
}

// ConfirmLocation runs the manual override gate on the current selection and,
// on success, refreshes the address annotation.
func (s *Service) ConfirmLocation(ctx context.Context) error {
	if err := s.session.ConfirmPin(); err != nil {
		return err
	}
	s.annotateAddress(ctx)
	return nil
}

// Submit runs the pre-flight checks, assembles the draft and delivers it to
// the reports API. The weather snapshot is best-effort; its absence never
// blocks a report.
func (s *Service) Submit(ctx context.Context, form report.Form, photoPath string) (submit.Receipt, error) {
	draft, err := report.BuildDraft(s.session, form)
	if err != nil {
		return submit.Receipt{}, err
	}

	if s.observer != nil {
		snapshot, err := s.observer.Capture(ctx, draft.Location)
		if err != nil {
			s.logger.Warn("failed to capture weather snapshot", logger.Err(err))
		} else {
			draft.Weather = snapshot
		}
	}

	return s.submitter.Submit(ctx, draft, photoPath)
}

// annotateAddress reverse-geocodes the selected candidate into the session's
// address label. Purely cosmetic: failures are logged and the coordinate
// stays authoritative.
func (s *Service) annotateAddress(ctx context.Context) {
	if s.geocoder == nil {
		return
	}
	selected, ok := s.session.Selected()
	if !ok {
		return
	}

	addr, err := s.geocoder.Reverse(ctx, selected.Coordinate)
	if err != nil {
		s.logger.Debug("failed to reverse geocode selected location", logger.Err(err))
		return
	}
	if line := addr.Line(); line != "" {
		s.session.SetAddress(line)
	}
}
