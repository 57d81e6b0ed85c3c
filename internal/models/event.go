package models

import (
	"strings"
	"time"
)

// Event statuses, as reported by iCalendar STATUS and the Google Calendar API.
const (
	StatusConfirmed = "confirmed"
	StatusTentative = "tentative"
	StatusCancelled = "cancelled"
)

// Event represents a calendar event fetched from any source.
// It is independent of the provider it came from.
type Event struct {
	ID          string    // Identifier within the source calendar
	UID         string    // The iCalendar UID, if known
	Title       string    // Summary or title of the event
	StartTime   time.Time // Start time of the event
	EndTime     time.Time // End time of the event
	Organizer   string    // Organizer's email
	Attendees   []string  // Attendee emails, including those who declined
	Declined    []string  // Attendees who declined the invitation
	Status      string    // One of the Status constants, empty when unknown
	Transparent bool      // Event does not block time (TRANSP:TRANSPARENT)
	Source      string    // Where the event came from (e.g. "google-primary", "caldav")
}

// Busy reports whether the event blocks time for its participants.
func (e *Event) Busy() bool {
	return e.Status != StatusCancelled && !e.Transparent && e.EndTime.After(e.StartTime)
}

// Participants returns the normalized addresses of everyone the event keeps busy:
// the organizer and every attendee that has not declined.
func (e *Event) Participants() []string {
	declined := make(map[string]bool, len(e.Declined))
	for _, d := range e.Declined {
		declined[NormalizeAddress(d)] = true
	}

	seen := make(map[string]bool)
	var participants []string
	add := func(addr string) {
		addr = NormalizeAddress(addr)
		if addr == "" || declined[addr] || seen[addr] {
			return
		}
		seen[addr] = true
		participants = append(participants, addr)
	}

	add(e.Organizer)
	for _, a := range e.Attendees {
		add(a)
	}
	return participants
}

// NormalizeAddress lower-cases an attendee address and strips a mailto: prefix.
func NormalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if len(addr) >= len("mailto:") && strings.EqualFold(addr[:len("mailto:")], "mailto:") {
		addr = addr[len("mailto:"):]
	}
	return strings.ToLower(strings.TrimSpace(addr))
}
