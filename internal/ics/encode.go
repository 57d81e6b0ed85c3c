package ics

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"meetfinder/internal/meeting"
)

// EncodeSlots writes the slots of one day as a feed of transparent "Available" events.
// day must be local midnight of the day the slots belong to.
func EncodeSlots(w io.Writer, day time.Time, slots []meeting.TimeRange, stamp time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//meetfinder//EN")

	for _, slot := range slots {
		ve := ical.NewComponent(ical.CompEvent)
		ve.Props.SetText(ical.PropUID, fmt.Sprintf("%s-%04d@meetfinder", day.Format("20060102"), slot.Start()))
		ve.Props.SetText(ical.PropSummary, "Available")
		ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
		ve.Props.SetDateTime(ical.PropDateTimeStart, clockTime(day, slot.Start()))
		ve.Props.SetDateTime(ical.PropDateTimeEnd, clockTime(day, slot.End()))
		ve.Props.SetText(ical.PropTransparency, "TRANSPARENT")
		cal.Children = append(cal.Children, ve)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode slots to iCal format: %w", err)
	}
	return nil
}

// clockTime returns the wall-clock minute of day. Minute 1440 is the next midnight.
func clockTime(day time.Time, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, minute, 0, 0, day.Location())
}
