// Package ics reads calendar events from iCalendar data and writes free slots back out as iCalendar.
package ics

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"meetfinder/internal/models"
)

// ErrNotCalendar is returned when the input does not look like iCalendar data.
var ErrNotCalendar = errors.New("not an iCalendar document")

// Decode parses every VEVENT in r. Floating times are interpreted in loc.
// All-day events and events without a start time are skipped.
func Decode(r io.Reader, source string, loc *time.Location) ([]*models.Event, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar data: %w", err)
	}

	trimmed := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(string(body), "\ufeff")))
	if strings.HasPrefix(trimmed, "<!DOCTYPE") || strings.HasPrefix(trimmed, "<HTML") {
		return nil, fmt.Errorf("%w: received HTML, check whether the URL requires authentication", ErrNotCalendar)
	}
	if !strings.HasPrefix(trimmed, "BEGIN:VCALENDAR") {
		return nil, fmt.Errorf("%w: expected BEGIN:VCALENDAR", ErrNotCalendar)
	}

	decoder := ical.NewDecoder(bytes.NewReader(bytes.TrimLeft(bytes.TrimPrefix(body, []byte("\ufeff")), " \t\r\n")))
	var events []*models.Event
	for {
		cal, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode calendar: %w", err)
		}
		events = append(events, CalendarEvents(cal, source, loc)...)
	}
	return events, nil
}

// CalendarEvents converts the timed VEVENTs of a decoded calendar.
func CalendarEvents(cal *ical.Calendar, source string, loc *time.Location) []*models.Event {
	var events []*models.Event
	for _, comp := range cal.Children {
		if comp.Name != ical.CompEvent {
			continue
		}
		event, ok := EventFromComponent(comp, source, loc)
		if ok {
			events = append(events, event)
		}
	}
	return events
}

// EventFromComponent converts a VEVENT component. It reports false for all-day events
// and events whose start or end cannot be read.
func EventFromComponent(comp *ical.Component, source string, loc *time.Location) (*models.Event, bool) {
	startProp := comp.Props.Get(ical.PropDateTimeStart)
	if startProp == nil || startProp.ValueType() == ical.ValueDate {
		return nil, false
	}

	vevent := ical.Event{Component: comp}
	start, err := vevent.DateTimeStart(loc)
	if err != nil {
		return nil, false
	}
	end, err := vevent.DateTimeEnd(loc)
	if err != nil {
		return nil, false
	}

	event := &models.Event{
		StartTime: start,
		EndTime:   end,
		Source:    source,
	}
	event.UID, _ = comp.Props.Text(ical.PropUID)
	event.Title, _ = comp.Props.Text(ical.PropSummary)

	event.ID = event.UID
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if recurrence := comp.Props.Get(ical.PropRecurrenceID); recurrence != nil {
		event.ID += "/" + recurrence.Value
	}

	if status, _ := comp.Props.Text(ical.PropStatus); status != "" {
		event.Status = strings.ToLower(status)
	}
	if transp, _ := comp.Props.Text(ical.PropTransparency); strings.EqualFold(transp, "TRANSPARENT") {
		event.Transparent = true
	}

	if organizer := comp.Props.Get(ical.PropOrganizer); organizer != nil {
		event.Organizer = models.NormalizeAddress(organizer.Value)
	}
	for _, attendee := range comp.Props.Values(ical.PropAttendee) {
		addr := models.NormalizeAddress(attendee.Value)
		if addr == "" {
			continue
		}
		event.Attendees = append(event.Attendees, addr)
		if strings.EqualFold(attendee.Params.Get(ical.ParamParticipationStatus), "DECLINED") {
			event.Declined = append(event.Declined, addr)
		}
	}
	return event, true
}
