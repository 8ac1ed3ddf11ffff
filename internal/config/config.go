// SPDX-FileCopyrightText: The roadreport developers
//
// SPDX-License-Identifier: MIT

// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kkyr/fig"
)

const configEnv = "ROADREPORT"

// Config represents the application's configuration structure.
type Config struct {
	Locale   string     `fig:"locale"`
	LogLevel slog.Level `fig:"loglevel" default:"0"`

	Resolution struct {
		// MaxReportDistanceKm limits how far from the reporter's live position a
		// manually picked location may be (anti-spam/fraud control).
		MaxReportDistanceKm float64 `fig:"max_report_distance_km" default:"100"`
		// PhotoDistanceThresholdKm is the distance between photo geotag and live
		// position above which the user has to arbitrate.
		PhotoDistanceThresholdKm float64 `fig:"photo_distance_threshold_km" default:"5"`
		ServiceArea              struct {
			// Namibia approximate bounds
			MinLat float64 `fig:"min_lat" default:"-28.97"`
			MaxLat float64 `fig:"max_lat" default:"-16.96"`
			MinLng float64 `fig:"min_lng" default:"11.73"`
			MaxLng float64 `fig:"max_lng" default:"25.27"`
		} `fig:"service_area"`
	} `fig:"resolution"`

	Position struct {
		DisableGeoClue bool   `fig:"disable_geoclue"`
		DisableGPSD    bool   `fig:"disable_gpsd"`
		DisableWiFi    bool   `fig:"disable_wifi"`
		DisableGeoIP   bool   `fig:"disable_geoip"`
		GPSDHost       string `fig:"gpsd_host" default:"localhost"`
		GPSDPort       string `fig:"gpsd_port" default:"2947"`
	} `fig:"position"`

	Photo struct {
		ExiftoolPath string `fig:"exiftool_path" default:"exiftool"`
	} `fig:"photo"`

	Geocode struct {
		Disable bool          `fig:"disable"`
		HitTTL  time.Duration `fig:"hit_ttl" default:"15m"`
		MissTTL time.Duration `fig:"miss_ttl" default:"1m"`
	} `fig:"geocode"`

	Conditions struct {
		Disable bool `fig:"disable"`
	} `fig:"conditions"`

	Intervals struct {
		// PositionUpdate controls how often the live position is refreshed while
		// a report is being authored.
		PositionUpdate time.Duration `fig:"position_update" default:"2m"`
	} `fig:"intervals"`

	Submission struct {
		Endpoint string `fig:"endpoint" default:"http://localhost:3000/api/pothole-reports"`
	} `fig:"submission"`
}

// NewFromFile reads the Config from the given file.
func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

// New builds the Config from defaults and the environment.
func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

// Validate normalizes the configuration and rejects values the resolution
// engine cannot work with.
func (c *Config) Validate() error {
	if c.Resolution.MaxReportDistanceKm <= 0 {
		return fmt.Errorf("invalid max report distance: %f", c.Resolution.MaxReportDistanceKm)
	}
	if c.Resolution.PhotoDistanceThresholdKm <= 0 {
		return fmt.Errorf("invalid photo distance threshold: %f", c.Resolution.PhotoDistanceThresholdKm)
	}
	area := c.Resolution.ServiceArea
	if area.MinLat >= area.MaxLat || area.MinLng >= area.MaxLng {
		return fmt.Errorf("invalid service area: %+v", area)
	}
	if c.Submission.Endpoint == "" {
		return fmt.Errorf("submission endpoint must not be empty")
	}
	if c.Locale == "" {
		c.Locale = getLocale()
	}

	return nil
}

func getLocale() string {
	locale := os.Getenv("LC_MESSAGES")
	if idx := strings.Index(locale, "."); idx != -1 {
		lang := locale[:idx]
		return strings.ReplaceAll(lang, "_", "-")
	}
	return locale
}
