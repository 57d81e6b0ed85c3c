package finder

import (
	"fmt"
	"time"

	"meetfinder/internal/meeting"
	"meetfinder/internal/models"
)

// StartOfDay returns local midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// ParseDay reads a YYYY-MM-DD date in loc. An empty value means the day of now.
func ParseDay(value string, now time.Time, loc *time.Location) (time.Time, error) {
	if value == "" {
		return StartOfDay(now, loc), nil
	}
	day, err := time.ParseInLocation(time.DateOnly, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", value, err)
	}
	return day, nil
}

// ProjectDay converts the busy events that intersect [from, to) into meeting events on
// the clock-minute grid of that day. from and to are consecutive local midnights. Partial
// minutes count as busy; an hour skipped by a clock change stays free.
func ProjectDay(events []*models.Event, from, to time.Time) []meeting.Event {
	window := models.Window{From: from, To: to}
	loc := from.Location()

	var out []meeting.Event
	for _, e := range events {
		if !e.Busy() || !window.Overlaps(e) {
			continue
		}
		participants := e.Participants()
		if len(participants) == 0 {
			continue
		}

		start := e.StartTime
		if start.Before(from) {
			start = from
		}
		end := e.EndTime
		if end.After(to) {
			end = to
		}
		for _, when := range clockRanges(start.In(loc), end.In(loc)) {
			out = append(out, meeting.NewEvent(when, participants...))
		}
	}
	return out
}

// clockRanges maps [start, end) onto wall-clock minutes, splitting it at every
// offset change so a repeated hour is marked in both of its occurrences.
func clockRanges(start, end time.Time) []meeting.TimeRange {
	var out []meeting.TimeRange
	for start.Before(end) {
		segEnd := end
		if _, zoneEnd := start.ZoneBounds(); !zoneEnd.IsZero() && zoneEnd.Before(segEnd) {
			segEnd = zoneEnd
		}

		h, m, sec := start.Clock()
		clock := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
			time.Duration(sec)*time.Second + time.Duration(start.Nanosecond())
		startMin := clampMinute(int(clock / time.Minute))
		endMin := clampMinute(int((clock + segEnd.Sub(start) + time.Minute - 1) / time.Minute))
		if when, err := meeting.FromStartEnd(startMin, endMin); err == nil && !when.Empty() {
			out = append(out, when)
		}
		start = segEnd
	}
	return out
}

func clampMinute(m int) int {
	return max(0, min(m, meeting.MinutesPerDay))
}
