package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"meetfinder/internal/finder"
	"meetfinder/internal/ics"
)

// printResult writes the slots of res in the requested format.
func printResult(w io.Writer, format string, res *finder.Result, duration int, now time.Time) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"date":             res.Day.Format(time.DateOnly),
			"timezone":         res.Day.Location().String(),
			"slots":            res.Slots,
			"eventsConsidered": res.EventsConsidered,
		})
	case "ics":
		return ics.EncodeSlots(w, res.Day, res.Slots, now)
	}

	if len(res.Slots) == 0 {
		_, err := fmt.Fprintf(w, "No %d-minute slot on %s (%s).\n", duration, res.Day.Format(time.DateOnly), res.Day.Location())
		return err
	}
	if _, err := fmt.Fprintf(w, "Free %d-minute slots on %s (%s):\n", duration, res.Day.Format(time.DateOnly), res.Day.Location()); err != nil {
		return err
	}
	for _, slot := range res.Slots {
		if _, err := fmt.Fprintf(w, "  %s  (%d min)\n", slot, slot.Duration()); err != nil {
			return err
		}
	}
	return nil
}
