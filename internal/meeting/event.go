package meeting

// Event is a busy interval on the day together with the people it occupies.
type Event struct {
	When      TimeRange `json:"when"`
	Attendees Set       `json:"attendees"`
}

// NewEvent is a convenience constructor for an event.
func NewEvent(when TimeRange, attendees ...string) Event {
	return Event{When: when, Attendees: NewSet(attendees...)}
}

// MeetingRequest describes the meeting to place.
// Attendees are mandatory; OptionalAttendees are honoured only when doing so leaves a slot.
type MeetingRequest struct {
	Attendees         Set `json:"attendees"`
	OptionalAttendees Set `json:"optionalAttendees"`
	Duration          int `json:"duration"` // minutes
}

// Validate rejects negative durations. Durations longer than a day are legal
// and simply produce no slots.
func (r MeetingRequest) Validate() error {
	if r.Duration < 0 {
		return ErrInvalidDuration
	}
	return nil
}
