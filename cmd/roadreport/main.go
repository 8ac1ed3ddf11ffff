// SPDX-FileCopyrightText: The roadreport developers
//
// SPDX-License-Identifier: MIT

//go:build linux

// Package main implements the roadreport command line client.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/roadsauthority/roadreport/internal/config"
	"github.com/roadsauthority/roadreport/internal/geo"
	"github.com/roadsauthority/roadreport/internal/logger"
	"github.com/roadsauthority/roadreport/internal/presenter"
	"github.com/roadsauthority/roadreport/internal/report"
	"github.com/roadsauthority/roadreport/internal/resolve"
	"github.com/roadsauthority/roadreport/internal/service"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGABRT,
		os.Interrupt)
	defer cancel()

	log := logger.New(slog.LevelError)

	confRead := false
	confPath := flag.String("config", "", "path to the config file")
	photoPath := flag.String("photo", "", "path to the photo of the road damage")
	roadName := flag.String("road", "", "name of the damaged road")
	severityVal := flag.String("severity", "medium", "damage severity (low, medium, high, dangerous)")
	description := flag.String("description", "", "optional damage description")
	flag.Parse()

	conf, err := config.New()
	if err != nil {
		log.Error("failed to load config", logger.Err(err))
		os.Exit(1)
	}

	if *confPath != "" {
		file := filepath.Base(*confPath)
		path := filepath.Dir(*confPath)
		conf, err = config.NewFromFile(path, file)
		if err != nil {
			log.Error("failed to load config from file", logger.Err(err))
			os.Exit(1)
		}
		confRead = true
	}
	if path, file := findConfigFile(); !confRead && (path != "" && file != "") {
		conf, err = config.NewFromFile(path, file)
		if err != nil {
			log.Error("failed to load config from file", logger.Err(err))
			os.Exit(1)
		}
	}

	log = logger.New(conf.LogLevel)

	severity, err := report.ParseSeverity(*severityVal)
	if err != nil {
		log.Error("invalid severity", logger.Err(err))
		os.Exit(1)
	}
	if *photoPath == "" {
		log.Error("a photo of the damage is required, use -photo")
		os.Exit(1)
	}

	present, err := presenter.New(conf.Locale)
	if err != nil {
		log.Error("failed to initialize presenter", logger.Err(err))
		os.Exit(1)
	}

	serv, err := service.New(conf, log)
	if err != nil {
		log.Error("failed to initialize roadreport service", logger.Err(err))
		os.Exit(1)
	}
	log.Info("starting roadreport", slog.String("version", version), slog.String("commit", commit),
		slog.String("date", date))
	if err = serv.Start(ctx); err != nil {
		log.Error("failed to start roadreport service", logger.Err(err))
		os.Exit(1)
	}
	defer func() {
		if err := serv.Shutdown(); err != nil {
			log.Error("failed to shut down roadreport service", logger.Err(err))
		}
	}()

	client := &client{
		service:   serv,
		presenter: present,
		logger:    log,
		stdin:     bufio.NewScanner(os.Stdin),
	}
	if err = client.run(ctx, *photoPath, report.Form{
		PhotoAttached: true,
		RoadName:      *roadName,
		Severity:      severity,
		Description:   *description,
	}); err != nil {
		log.Error("report not submitted", logger.Err(err))
		os.Exit(1)
	}
}

// client drives the interactive reporting flow on the terminal.
type client struct {
	service   *service.Service
	presenter *presenter.Presenter
	logger    *logger.Logger
	stdin     *bufio.Scanner
}

func (c *client) run(ctx context.Context, photoPath string, form report.Form) error {
	if at, ok := c.service.LastFix(); ok {
		fmt.Println(c.presenter.FixAge(at))
	}

	decision, err := c.service.AttachPhoto(ctx, photoPath)
	if err != nil {
		return fmt.Errorf("failed to process photo: %w", err)
	}
	fmt.Println(c.presenter.Decision(decision))

	switch decision.Outcome {
	case resolve.OutcomeAutoAccepted:
		// Nothing to do, the photo location is authoritative.
	case resolve.OutcomeNeedsChoice:
		if err = c.resolveConflict(ctx, decision); err != nil {
			return err
		}
	case resolve.OutcomeNeedsManual:
		if err = c.pickOnMap(ctx, decision.Hint); err != nil {
			return err
		}
	}

	for {
		receipt, err := c.service.Submit(ctx, form, photoPath)
		if err != nil {
			var missing *report.MissingFieldError
			if errors.As(err, &missing) {
				fmt.Println(c.presenter.Error(err))
				if missing.Field == report.MissingRoadName {
					form.RoadName = c.prompt("Road name")
					continue
				}
			}
			return err
		}
		fmt.Println(c.presenter.Submitted(receipt.ReferenceCode))
		return nil
	}
}

// resolveConflict renders the three-way choice menu and applies the pick.
func (c *client) resolveConflict(ctx context.Context, decision resolve.Decision) error {
	entries := make([]presenter.MenuEntry, 0, len(decision.Options))
	for _, option := range decision.Options {
		entry := presenter.MenuEntry{Choice: option}
		switch option {
		case resolve.ChoicePhotoLocation:
			if photo, ok := c.service.Session().Photo(); ok {
				entry.Detail = photo.String()
			}
		case resolve.ChoiceCurrentLocation:
			if current, ok := c.service.Session().Current(); ok {
				entry.Detail = current.String()
			}
		}
		entries = append(entries, entry)
	}
	for _, line := range c.presenter.Menu(entries) {
		fmt.Println(line)
	}

	for {
		answer := c.prompt("Choice")
		idx, err := strconv.Atoi(answer)
		if err != nil || idx < 1 || idx > len(decision.Options) {
			continue
		}
		choice := decision.Options[idx-1]
		if err = c.service.Choose(ctx, choice); err != nil {
			return err
		}
		if choice == resolve.ChoicePickOnMap {
			return c.pickOnMap(ctx, nil)
		}
		return nil
	}
}

// pickOnMap runs the manual pin flow: the user enters a coordinate or an
// address, the pin moves, and confirmation runs the override gate. Rejected
// pins keep the loop open.
func (c *client) pickOnMap(ctx context.Context, hint *geo.Coordinate) error {
	fmt.Printf("Map opens at %s\n", c.service.MapSeed())
	if hint != nil {
		fmt.Printf("Photo location marker at %s\n", hint)
	}

	for {
		answer := c.prompt("Location (lat,lng or address, empty to cancel)")
		if answer == "" {
			return resolve.ErrNoLocationChosen
		}

		if point, err := parsePoint(answer); err == nil {
			c.service.PickPin(point)
		} else {
			coords, err := c.service.PickAddress(ctx, answer)
			if err != nil {
				c.logger.Debug("address search failed", logger.Err(err))
				continue
			}
			fmt.Printf("Pin moved to %s\n", coords)
		}

		if err := c.service.ConfirmLocation(ctx); err != nil {
			fmt.Println(c.presenter.Error(err))
			continue
		}
		label := c.service.Session().Address()
		if label == "" {
			selected, _ := c.service.Session().Selected()
			label = selected.Coordinate.String()
		}
		fmt.Println(c.presenter.Confirmed(label))
		return nil
	}
}

func (c *client) prompt(label string) string {
	fmt.Printf("%s: ", label)
	if !c.stdin.Scan() {
		return ""
	}
	return strings.TrimSpace(c.stdin.Text())
}

// parsePoint parses a "lat,lng" pair in decimal degrees.
func parsePoint(s string) (geo.Coordinate, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return geo.Coordinate{}, fmt.Errorf("not a coordinate pair: %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("invalid latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("invalid longitude: %w", err)
	}
	point := geo.Coordinate{Latitude: lat, Longitude: lng}
	if !point.Valid() {
		return geo.Coordinate{}, fmt.Errorf("coordinate out of range: %s", point)
	}
	return point, nil
}

func findConfigFile() (string, string) {
	homedir, err := os.UserHomeDir()
	if err != nil {
		return "", ""
	}
	exts := []string{"toml", "yaml", "yml", "json"}
	for _, ext := range exts {
		path := filepath.Join(homedir, ".config", "roadreport", "config."+ext)
		if _, err = os.Stat(path); err == nil {
			return filepath.Dir(path), filepath.Base(path)
		}
	}
	return "", ""
}
