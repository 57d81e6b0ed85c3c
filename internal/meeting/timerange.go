package meeting

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MinutesPerDay is the length of the day window. All ranges live inside [0, MinutesPerDay].
const MinutesPerDay = 24 * 60

var (
	// ErrInvalidRange is returned when a range leaves the day window or ends before it starts.
	ErrInvalidRange = errors.New("invalid time range")

	// ErrInvalidDuration is returned for negative meeting durations.
	ErrInvalidDuration = errors.New("invalid meeting duration")
)

// WholeDay spans the full day window.
var WholeDay = TimeRange{start: 0, end: MinutesPerDay}

// TimeRange is a span of minutes from local midnight. Start is inclusive, end is exclusive.
// The zero value is the empty range [0, 0).
type TimeRange struct {
	start int
	end   int
}

// FromStartEnd builds the range [start, end).
func FromStartEnd(start, end int) (TimeRange, error) {
	if start < 0 || end > MinutesPerDay || end < start {
		return TimeRange{}, fmt.Errorf("%w: [%d, %d)", ErrInvalidRange, start, end)
	}
	return TimeRange{start: start, end: end}, nil
}

// FromStartDuration builds the range [start, start+d).
func FromStartDuration(start, d int) (TimeRange, error) {
	return FromStartEnd(start, start+d)
}

// MustFromStartEnd is like FromStartEnd but panics on invalid bounds.
// It is meant for constants and tests.
func MustFromStartEnd(start, end int) TimeRange {
	r, err := FromStartEnd(start, end)
	if err != nil {
		panic(err)
	}
	return r
}

// Start returns the first minute of the range.
func (r TimeRange) Start() int { return r.start }

// End returns the exclusive end minute.
func (r TimeRange) End() int { return r.end }

// Duration returns the length in minutes.
func (r TimeRange) Duration() int { return r.end - r.start }

// Empty reports whether the range covers no minutes.
func (r TimeRange) Empty() bool { return r.start == r.end }

// Overlaps reports whether the two ranges share at least one minute.
// Touching ranges do not overlap.
func (r TimeRange) Overlaps(o TimeRange) bool {
	return r.start < o.end && o.start < r.end
}

// Contains reports whether o lies entirely within r.
func (r TimeRange) Contains(o TimeRange) bool {
	return r.start <= o.start && o.end <= r.end
}

// String renders the range as "HH:MM-HH:MM".
func (r TimeRange) String() string {
	return fmt.Sprintf("%s-%s", clock(r.start), clock(r.end))
}

func clock(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

type timeRangeJSON struct {
	Start    int  `json:"start"`
	End      int  `json:"end"`
	Duration *int `json:"duration,omitempty"`
}

// MarshalJSON encodes the range as {start, end, duration}.
func (r TimeRange) MarshalJSON() ([]byte, error) {
	d := r.Duration()
	return json.Marshal(timeRangeJSON{Start: r.start, End: r.end, Duration: &d})
}

// UnmarshalJSON decodes {start, end[, duration]} and validates the bounds.
func (r *TimeRange) UnmarshalJSON(data []byte) error {
	var raw timeRangeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := FromStartEnd(raw.Start, raw.End)
	if err != nil {
		return err
	}
	if raw.Duration != nil && *raw.Duration != parsed.Duration() {
		return fmt.Errorf("%w: duration %d does not match [%d, %d)", ErrInvalidRange, *raw.Duration, raw.Start, raw.End)
	}
	*r = parsed
	return nil
}
