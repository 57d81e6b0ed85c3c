package google

import (
	"context"
	"fmt"

	"meetfinder/internal/models"
)

// CalendarSource reads the events of a fixed set of calendars.
type CalendarSource struct {
	client      *CalendarClient
	calendarIDs []string
}

// NewCalendarSource reads calendarIDs through client.
func NewCalendarSource(client *CalendarClient, calendarIDs []string) *CalendarSource {
	return &CalendarSource{client: client, calendarIDs: calendarIDs}
}

// Name identifies the source by its Google account.
func (s *CalendarSource) Name() string {
	return "google:" + s.client.Account()
}

// Events returns the events of every configured calendar within the window.
func (s *CalendarSource) Events(ctx context.Context, w models.Window) ([]*models.Event, error) {
	var all []*models.Event
	for _, calID := range s.calendarIDs {
		events, err := s.client.EventsBetween(ctx, calID, w.From, w.To)
		if err != nil {
			return nil, fmt.Errorf("calendar %s: %w", calID, err)
		}
		all = append(all, events...)
	}
	return all, nil
}

// FreeBusySource looks up the busy periods of the attendees asked about.
type FreeBusySource struct {
	client *CalendarClient
}

// NewFreeBusySource queries free/busy through client.
func NewFreeBusySource(client *CalendarClient) *FreeBusySource {
	return &FreeBusySource{client: client}
}

// Name identifies the source by its Google account.
func (s *FreeBusySource) Name() string {
	return "google-freebusy:" + s.client.Account()
}

// Events returns one busy event per busy period of the window's attendees.
func (s *FreeBusySource) Events(ctx context.Context, w models.Window) ([]*models.Event, error) {
	return s.client.FreeBusy(ctx, w.Attendees, w.From, w.To)
}
