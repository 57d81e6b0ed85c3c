package finder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"meetfinder/internal/meeting"
	"meetfinder/internal/models"
)

// ErrNoSources is returned when a Finder is built without any calendar source.
var ErrNoSources = errors.New("no calendar sources configured")

// Source is a calendar that can report the events inside a window.
type Source interface {
	Name() string
	Events(ctx context.Context, w models.Window) ([]*models.Event, error)
}

// Result is the outcome of a single Find call.
type Result struct {
	Day              time.Time // local midnight of the searched day
	Slots            []meeting.TimeRange
	EventsConsidered int // busy events that fell on the day
}

// Finder looks up calendars and finds the free slots for a meeting on one day.
type Finder struct {
	logger  *slog.Logger
	sources []Source
	loc     *time.Location
}

// NewFinder creates a Finder. Days are computed in loc.
func NewFinder(logger *slog.Logger, sources []Source, loc *time.Location) (*Finder, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Finder{logger: logger, sources: sources, loc: loc}, nil
}

// Location returns the time zone days are computed in.
func (f *Finder) Location() *time.Location {
	return f.loc
}

// Find fetches every source for the given day and returns the slots where the meeting fits.
// Attendee names are matched as normalized e-mail addresses.
func (f *Finder) Find(ctx context.Context, day time.Time, req meeting.MeetingRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req = normalizeRequest(req)

	from := StartOfDay(day, f.loc)
	window := models.Window{
		From:      from,
		To:        from.AddDate(0, 0, 1),
		Attendees: req.Attendees.Union(req.OptionalAttendees).Sorted(),
	}
	f.logger.Info("Starting search.", "day", from.Format(time.DateOnly), "attendees", len(req.Attendees), "optional", len(req.OptionalAttendees), "duration", req.Duration)

	var all []*models.Event
	for _, src := range f.sources {
		events, err := src.Events(ctx, window)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch events from %s: %w", src.Name(), err)
		}
		f.logger.Debug("Fetched events.", "source", src.Name(), "count", len(events))
		all = append(all, events...)
	}

	busy := ProjectDay(all, window.From, window.To)
	slots := meeting.Query(busy, req)
	f.logger.Info("Search finished.", "events", len(busy), "slots", len(slots))

	return &Result{Day: from, Slots: slots, EventsConsidered: len(busy)}, nil
}

func normalizeRequest(req meeting.MeetingRequest) meeting.MeetingRequest {
	return meeting.MeetingRequest{
		Attendees:         normalizeSet(req.Attendees),
		OptionalAttendees: normalizeSet(req.OptionalAttendees),
		Duration:          req.Duration,
	}
}

func normalizeSet(s meeting.Set) meeting.Set {
	out := make(meeting.Set, len(s))
	for name := range s {
		if n := models.NormalizeAddress(name); n != "" {
			out[n] = struct{}{}
		}
	}
	return out
}
