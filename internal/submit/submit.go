// SPDX-FileCopyrightText: The roadreport developers
//
// SPDX-License-Identifier: MIT

// Package submit delivers an assembled report draft to the Roads Authority
// reports API. The report is sent as a multipart form with the photo file
// and the draft fields; the API answers with a reference code the reporter
// can use to track the report.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/roadsauthority/roadreport/internal/http"
	"github.com/roadsauthority/roadreport/internal/logger"
	"github.com/roadsauthority/roadreport/internal/report"
)

const submitTimeout = time.Second * 30

// Client submits report drafts to the reports API.
type Client struct {
	logger   *logger.Logger
	http     *http.Client
	endpoint string
	deviceID string
}

// Receipt is the confirmation returned by the reports API.
type Receipt struct {
	ReferenceCode string `json:"referenceCode"`
	Status        string `json:"status"`
	CreatedAt     string `json:"createdAt"`
}

type apiResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Report  Receipt `json:"report"`
		Message string  `json:"message"`
	} `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Timestamp string `json:"timestamp"`
}

// New creates a submission client for the given API endpoint. The device id
// identifies the reporting device; the API uses it to group anonymous
// reports.
func New(log *logger.Logger, client *http.Client, endpoint, deviceID string) *Client {
	return &Client{
		logger:   log,
		http:     client,
		endpoint: endpoint,
		deviceID: deviceID,
	}
}

// Submit sends the draft and its photo to the reports API and returns the
// receipt.
func (c *Client) Submit(ctx context.Context, draft *report.Draft, photoPath string) (Receipt, error) {
	body, contentType, err := c.encodeForm(draft, photoPath)
	if err != nil {
		return Receipt{}, err
	}

	headers := map[string]string{
		"Content-Type": contentType,
		"X-Device-ID":  c.deviceID,
	}
	response := new(apiResponse)
	status, err := c.http.PostWithTimeout(ctx, c.endpoint, response, body, headers, submitTimeout)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to submit report: %w", err)
	}
	if !response.Success {
		if response.Error.Message != "" {
			return Receipt{}, fmt.Errorf("report rejected by API (status %d): %s", status,
				response.Error.Message)
		}
		return Receipt{}, fmt.Errorf("report rejected by API (status %d)", status)
	}

	c.logger.Debug("report submitted", "reference_code", response.Data.Report.ReferenceCode,
		"status", response.Data.Report.Status)
	return response.Data.Report, nil
}

// encodeForm builds the multipart request body. The location is sent as a
// JSON part, the remaining draft fields as plain form fields and the photo
// as a file part.
func (c *Client) encodeForm(draft *report.Draft, photoPath string) (*bytes.Buffer, string, error) {
	buffer := bytes.NewBuffer(nil)
	form := multipart.NewWriter(buffer)

	location, err := json.Marshal(struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Source    string  `json:"source"`
	}{
		Latitude:  draft.Location.Latitude,
		Longitude: draft.Location.Longitude,
		Source:    string(draft.LocationSource),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode location to JSON: %w", err)
	}

	fields := map[string]string{
		"location": string(location),
		"roadName": draft.RoadName,
		"severity": string(draft.Severity),
	}
	if draft.Description != "" {
		fields["description"] = draft.Description
	}
	if draft.LocationAddress != "" {
		fields["streetName"] = draft.LocationAddress
	}
	if draft.Weather != nil {
		weather, err := json.Marshal(draft.Weather)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode weather snapshot to JSON: %w", err)
		}
		fields["weather"] = string(weather)
	}
	for name, value := range fields {
		if err := form.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %q: %w", name, err)
		}
	}

	if err := c.attachPhoto(form, photoPath); err != nil {
		return nil, "", err
	}
	if err := form.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart form: %w", err)
	}

	return buffer, form.FormDataContentType(), nil
}

func (c *Client) attachPhoto(form *multipart.Writer, photoPath string) error {
	photo, err := os.Open(photoPath)
	if err != nil {
		return fmt.Errorf("failed to open photo file: %w", err)
	}
	defer func() {
		if err := photo.Close(); err != nil {
			c.logger.Error("failed to close photo file", logger.Err(err))
		}
	}()

	part, err := form.CreateFormFile("photo", filepath.Base(photoPath))
	if err != nil {
		return fmt.Errorf("failed to create photo form part: %w", err)
	}
	if _, err = io.Copy(part, photo); err != nil {
		return fmt.Errorf("failed to copy photo into form: %w", err)
	}
	return nil
}
