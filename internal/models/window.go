package models

import "time"

// Window is what a calendar source is asked about: a span of time and,
// for sources that look people up directly, the attendees of interest.
type Window struct {
	From      time.Time
	To        time.Time
	Attendees []string
}

// Overlaps reports whether the event intersects [From, To).
func (w Window) Overlaps(e *Event) bool {
	return e.StartTime.Before(w.To) && e.EndTime.After(w.From)
}
