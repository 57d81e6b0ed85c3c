package meeting

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	personA = "Person A"
	personB = "Person B"
	personC = "Person C"
)

func at(hours, minutes int) int { return hours*60 + minutes }

func request(duration int, mandatory []string, optional ...string) MeetingRequest {
	return MeetingRequest{
		Attendees:         NewSet(mandatory...),
		OptionalAttendees: NewSet(optional...),
		Duration:          duration,
	}
}

func TestQuery(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
		req    MeetingRequest
		want   []TimeRange
	}{
		{
			name: "no events no attendees",
			req:  request(60, nil),
			want: []TimeRange{WholeDay},
		},
		{
			name: "no events one attendee",
			req:  request(60, []string{personA}),
			want: []TimeRange{WholeDay},
		},
		{
			name: "too long for the day",
			req:  request(MinutesPerDay+1, []string{personA}),
			want: []TimeRange{},
		},
		{
			name: "exactly one day",
			req:  request(MinutesPerDay, []string{personA}),
			want: []TimeRange{WholeDay},
		},
		{
			name:   "event splits the day",
			events: []Event{NewEvent(MustFromStartEnd(480, 540), personA)},
			req:    request(60, []string{personA}),
			want:   ranges(0, 480, 540, MinutesPerDay),
		},
		{
			name: "overlapping events are coalesced",
			events: []Event{
				NewEvent(MustFromStartEnd(480, 540), personA),
				NewEvent(MustFromStartEnd(530, 600), personB),
			},
			req:  request(60, []string{personA, personB}),
			want: ranges(0, 480, 600, MinutesPerDay),
		},
		{
			name:   "duration longer than every gap",
			events: []Event{NewEvent(MustFromStartEnd(480, 540), personA)},
			req:    request(1000, []string{personA}),
			want:   []TimeRange{},
		},
		{
			name: "every attendee is considered",
			events: []Event{
				NewEvent(MustFromStartEnd(at(8, 0), at(8, 30)), personA),
				NewEvent(MustFromStartEnd(at(9, 0), at(9, 30)), personB),
			},
			req:  request(30, []string{personA, personB}),
			want: ranges(0, at(8, 0), at(8, 30), at(9, 0), at(9, 30), MinutesPerDay),
		},
		{
			name: "nested events",
			events: []Event{
				NewEvent(MustFromStartEnd(at(8, 30), at(10, 0)), personA),
				NewEvent(MustFromStartEnd(at(9, 0), at(9, 30)), personB),
			},
			req:  request(30, []string{personA, personB}),
			want: ranges(0, at(8, 30), at(10, 0), MinutesPerDay),
		},
		{
			name: "double booked person",
			events: []Event{
				NewEvent(MustFromStartEnd(at(8, 30), at(9, 0)), personA),
				NewEvent(MustFromStartEnd(at(8, 30), at(9, 30)), personA),
			},
			req:  request(30, []string{personA}),
			want: ranges(0, at(8, 30), at(9, 30), MinutesPerDay),
		},
		{
			name: "just enough room",
			events: []Event{
				NewEvent(MustFromStartEnd(0, at(8, 30)), personA),
				NewEvent(MustFromStartEnd(at(9, 0), MinutesPerDay), personA),
			},
			req:  request(30, []string{personA}),
			want: ranges(at(8, 30), at(9, 0)),
		},
		{
			name: "not enough room",
			events: []Event{
				NewEvent(MustFromStartEnd(0, at(8, 30)), personA),
				NewEvent(MustFromStartEnd(at(9, 0), MinutesPerDay), personA),
			},
			req:  request(60, []string{personA}),
			want: []TimeRange{},
		},
		{
			name: "touching events leave no empty gap",
			events: []Event{
				NewEvent(MustFromStartEnd(at(8, 0), at(9, 0)), personA),
				NewEvent(MustFromStartEnd(at(9, 0), at(10, 0)), personB),
			},
			req:  request(0, []string{personA, personB}),
			want: ranges(0, at(8, 0), at(10, 0), MinutesPerDay),
		},
		{
			name:   "people not attending are ignored",
			events: []Event{NewEvent(MustFromStartEnd(at(8, 0), at(9, 0)), personC)},
			req:    request(30, []string{personA}, personB),
			want:   []TimeRange{WholeDay},
		},
		{
			name:   "events without attendees are ignored",
			events: []Event{NewEvent(MustFromStartEnd(at(8, 0), at(9, 0)))},
			req:    request(30, []string{personA}),
			want:   []TimeRange{WholeDay},
		},
		{
			name:   "zero length event does not shrink availability",
			events: []Event{NewEvent(MustFromStartEnd(at(8, 0), at(8, 0)), personA)},
			req:    request(30, []string{personA}),
			want:   []TimeRange{WholeDay},
		},
		{
			name: "optional attendee dropped when nothing fits",
			events: []Event{
				NewEvent(MustFromStartEnd(0, 720), personA),
				NewEvent(MustFromStartEnd(720, MinutesPerDay), personB),
			},
			req:  request(30, []string{personA}, personB),
			want: ranges(720, MinutesPerDay),
		},
		{
			name: "optional attendee honoured when possible",
			events: []Event{
				NewEvent(MustFromStartEnd(480, 540), personA),
				NewEvent(MustFromStartEnd(600, 660), personB),
			},
			req:  request(30, []string{personA}, personB),
			want: ranges(0, 480, 540, 600, 660, MinutesPerDay),
		},
		{
			name: "optional attendee busy all day is ignored",
			events: []Event{
				NewEvent(MustFromStartEnd(at(8, 0), at(8, 30)), personA),
				NewEvent(MustFromStartEnd(at(9, 0), at(9, 30)), personB),
				NewEvent(WholeDay, personC),
			},
			req:  request(30, []string{personA, personB}, personC),
			want: ranges(0, at(8, 0), at(8, 30), at(9, 0), at(9, 30), MinutesPerDay),
		},
		{
			name: "optional attendee narrows the gaps",
			events: []Event{
				NewEvent(MustFromStartEnd(at(8, 0), at(8, 30)), personA),
				NewEvent(MustFromStartEnd(at(9, 0), at(9, 30)), personB),
				NewEvent(MustFromStartEnd(at(8, 30), at(9, 0)), personC),
			},
			req:  request(30, []string{personA, personB}, personC),
			want: ranges(0, at(8, 0), at(9, 30), MinutesPerDay),
		},
		{
			name: "optional attendee would leave too little room",
			events: []Event{
				NewEvent(MustFromStartEnd(0, at(8, 30)), personA),
				NewEvent(MustFromStartEnd(at(9, 0), MinutesPerDay), personA),
				NewEvent(MustFromStartEnd(at(8, 30), at(8, 45)), personB),
			},
			req:  request(30, []string{personA}, personB),
			want: ranges(at(8, 30), at(9, 0)),
		},
		{
			name: "only optional attendees with gaps",
			events: []Event{
				NewEvent(MustFromStartEnd(0, at(8, 30)), personA),
				NewEvent(MustFromStartEnd(at(9, 0), MinutesPerDay), personB),
			},
			req:  request(30, nil, personA, personB),
			want: ranges(at(8, 30), at(9, 0)),
		},
		{
			name: "only optional attendees without gaps",
			events: []Event{
				NewEvent(MustFromStartEnd(0, at(8, 30)), personA),
				NewEvent(MustFromStartEnd(at(8, 45), MinutesPerDay), personB),
			},
			req:  request(30, nil, personA, personB),
			want: []TimeRange{},
		},
		{
			name:   "only optional attendees unconstrained",
			events: []Event{NewEvent(MustFromStartEnd(at(8, 0), at(9, 0)), personC)},
			req:    request(30, nil, personA),
			want:   []TimeRange{WholeDay},
		},
		{
			name:   "negative duration yields nothing",
			events: []Event{NewEvent(MustFromStartEnd(480, 540), personA)},
			req:    request(-1, []string{personA}),
			want:   []TimeRange{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Query(tt.events, tt.req)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuery_DoesNotModifyEvents(t *testing.T) {
	events := []Event{
		NewEvent(MustFromStartEnd(600, 660), personA),
		NewEvent(MustFromStartEnd(480, 540), personA),
	}
	Query(events, request(30, []string{personA}))

	assert.Equal(t, MustFromStartEnd(600, 660), events[0].When)
	assert.Equal(t, MustFromStartEnd(480, 540), events[1].When)
}

var people = []string{"ann", "ben", "cal", "dee", "eve"}

func randomEvents(rng *rand.Rand) []Event {
	events := make([]Event, rng.IntN(12))
	for i := range events {
		start := rng.IntN(MinutesPerDay + 1)
		end := start + rng.IntN(MinutesPerDay-start+1)
		var who []string
		for _, p := range people {
			if rng.IntN(3) == 0 {
				who = append(who, p)
			}
		}
		events[i] = NewEvent(MustFromStartEnd(start, end), who...)
	}
	return events
}

func randomRequest(rng *rand.Rand) MeetingRequest {
	var mandatory, optional []string
	for _, p := range people {
		switch rng.IntN(3) {
		case 0:
			mandatory = append(mandatory, p)
		case 1:
			optional = append(optional, p)
		}
	}
	return request(rng.IntN(300), mandatory, optional...)
}

func busyFor(events []Event, who Set) []TimeRange {
	var busy []TimeRange
	for _, e := range events {
		if e.Attendees.Intersects(who) {
			busy = append(busy, e.When)
		}
	}
	return busy
}

func TestQuery_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(20, 19))

	for i := 0; i < 2000; i++ {
		events := randomEvents(rng)
		req := randomRequest(rng)
		got := Query(events, req)

		for j, r := range got {
			require.False(t, r.Empty())
			require.True(t, WholeDay.Contains(r))
			require.GreaterOrEqual(t, r.Duration(), req.Duration)
			if j > 0 {
				require.Less(t, got[j-1].End(), r.Start(), "sorted, disjoint, non-touching")
			}
			for _, e := range events {
				if e.Attendees.Intersects(req.Attendees) {
					require.False(t, r.Overlaps(e.When), "mandatory attendee busy in %v", r)
				}
			}
		}

		mandatoryFree := freeByMinute(events, req.Attendees, req.Duration)
		if len(got) > 0 && !assert.ObjectsAreEqual(mandatoryFree, got) {
			// Optional attendees were honoured, so they must be free too.
			for _, r := range got {
				for _, e := range events {
					if e.Attendees.Intersects(req.OptionalAttendees) {
						require.False(t, r.Overlaps(e.When), "optional attendee busy in %v", r)
					}
				}
			}
		}

		combinedFree := freeByMinute(events, req.Attendees.Union(req.OptionalAttendees), req.Duration)
		switch {
		case len(combinedFree) > 0:
			assert.Equal(t, combinedFree, got)
		case req.Attendees.Len() > 0:
			assert.Equal(t, mandatoryFree, got)
		default:
			assert.Empty(t, got)
		}
	}
}

// freeByMinute marks every busy minute of who and collects the free runs of at least duration minutes.
func freeByMinute(events []Event, who Set, duration int) []TimeRange {
	var busy [MinutesPerDay]bool
	for _, r := range busyFor(events, who) {
		for m := r.Start(); m < r.End(); m++ {
			busy[m] = true
		}
	}

	free := []TimeRange{}
	start := -1
	for m := 0; m <= MinutesPerDay; m++ {
		if m < MinutesPerDay && !busy[m] {
			if start < 0 {
				start = m
			}
			continue
		}
		if start >= 0 && m-start >= duration {
			free = append(free, MustFromStartEnd(start, m))
		}
		start = -1
	}
	return free
}

func TestQuery_MonotonicInDuration(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for i := 0; i < 500; i++ {
		events := randomEvents(rng)
		req := randomRequest(rng)
		req.OptionalAttendees = nil

		short := Query(events, req)
		req.Duration += rng.IntN(120)
		long := Query(events, req)

		for _, r := range long {
			contained := false
			for _, s := range short {
				if s.Contains(r) {
					contained = true
					break
				}
			}
			require.True(t, contained, "%v not within any shorter-duration slot", r)
		}
	}
}

func TestCoalesce_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))

	for i := 0; i < 500; i++ {
		var input []TimeRange
		for _, e := range randomEvents(rng) {
			input = append(input, e.When)
		}
		once := Coalesce(input)
		assert.Equal(t, once, Coalesce(once))
	}
}

func TestInvert_CoversDayWithCover(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 1))

	for i := 0; i < 500; i++ {
		var input []TimeRange
		for _, e := range randomEvents(rng) {
			input = append(input, e.When)
		}
		cover := Coalesce(input)
		gaps := Invert(cover)
		for _, g := range gaps {
			require.False(t, g.Empty())
			for _, c := range cover {
				require.False(t, g.Overlaps(c))
			}
		}
		assert.Equal(t, []TimeRange{WholeDay}, Coalesce(append(gaps, cover...)))
	}
}
