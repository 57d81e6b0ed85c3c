package ics

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"meetfinder/internal/models"
)

// FileSource reads events from a local .ics file or an http(s)/webcal URL.
type FileSource struct {
	location   string
	httpClient *http.Client
	logger     *slog.Logger
	tz         *time.Location
}

// NewFileSource creates a source for the given path or URL. Floating times are read in tz.
func NewFileSource(logger *slog.Logger, location string, tz *time.Location) *FileSource {
	return &FileSource{
		location:   location,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		tz:         tz,
	}
}

// Name identifies the source in logs and errors.
func (s *FileSource) Name() string {
	return "ics:" + s.location
}

// Events returns the events that intersect the window.
func (s *FileSource) Events(ctx context.Context, w models.Window) ([]*models.Event, error) {
	rc, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	all, err := Decode(rc, s.Name(), s.tz)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.location, err)
	}

	var events []*models.Event
	for _, e := range all {
		if w.Overlaps(e) {
			events = append(events, e)
		}
	}
	s.logger.Debug("Read iCalendar events", "location", s.location, "total", len(all), "inWindow", len(events))
	return events, nil
}

func (s *FileSource) open(ctx context.Context) (io.ReadCloser, error) {
	url := s.location
	if strings.HasPrefix(url, "webcal://") {
		url = "https://" + strings.TrimPrefix(url, "webcal://")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		f, err := os.Open(s.location)
		if err != nil {
			return nil, fmt.Errorf("failed to open calendar file: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "meetfinder/1.0")
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status fetching %s: %s", s.location, resp.Status)
	}
	return resp.Body, nil
}
