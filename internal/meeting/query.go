// Package meeting finds the times of day at which a meeting can be held.
//
// Times are minutes from local midnight. Query is a pure function: it reads no
// clock and holds no state, so it can be called from any number of goroutines.
package meeting

// Query returns the ranges of the day long enough for the request in which no
// mandatory attendee is busy.
//
// When at least one such range also keeps every optional attendee free, only those
// ranges are returned. With no mandatory attendees the optional attendees are the
// only constraint. The result is sorted, and its ranges neither overlap nor touch.
// It is never nil.
func Query(events []Event, req MeetingRequest) []TimeRange {
	if req.Duration < 0 || req.Duration > MinutesPerDay {
		return []TimeRange{}
	}

	everyone := req.Attendees.Union(req.OptionalAttendees)

	var mandatoryBusy, combinedBusy []TimeRange
	for _, e := range events {
		if e.Attendees.Intersects(req.Attendees) {
			mandatoryBusy = append(mandatoryBusy, e.When)
		}
		if e.Attendees.Intersects(everyone) {
			combinedBusy = append(combinedBusy, e.When)
		}
	}

	combinedFree := freeSlots(combinedBusy, req.Duration)
	if req.Attendees.Len() == 0 || len(combinedFree) > 0 {
		return combinedFree
	}
	return freeSlots(mandatoryBusy, req.Duration)
}

func freeSlots(busy []TimeRange, d int) []TimeRange {
	return FilterByDuration(Invert(Coalesce(busy)), d)
}
