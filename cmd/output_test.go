package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetfinder/internal/finder"
	"meetfinder/internal/meeting"
)

func testResult(slots ...meeting.TimeRange) *finder.Result {
	return &finder.Result{
		Day:              time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Slots:            slots,
		EventsConsidered: 2,
	}
}

func TestPrintResult_Text(t *testing.T) {
	var buf bytes.Buffer
	res := testResult(meeting.MustFromStartEnd(0, 480), meeting.MustFromStartEnd(540, 1440))
	require.NoError(t, printResult(&buf, "text", res, 60, time.Now()))

	assert.Equal(t, "Free 60-minute slots on 2026-03-02 (UTC):\n"+
		"  00:00-08:00  (480 min)\n"+
		"  09:00-24:00  (900 min)\n", buf.String())
}

func TestPrintResult_TextEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, "text", testResult(), 60, time.Now()))
	assert.Equal(t, "No 60-minute slot on 2026-03-02 (UTC).\n", buf.String())
}

func TestPrintResult_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, "json", testResult(meeting.MustFromStartEnd(600, 660)), 30, time.Now()))

	assert.JSONEq(t, `{
		"date": "2026-03-02",
		"timezone": "UTC",
		"slots": [{"start": 600, "end": 660, "duration": 60}],
		"eventsConsidered": 2
	}`, buf.String())
}

func TestPrintResult_ICS(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, "ics", testResult(meeting.MustFromStartEnd(600, 660)), 30, time.Now()))

	assert.Contains(t, buf.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, buf.String(), "20260302T100000Z")
	assert.Contains(t, buf.String(), "20260302T110000Z")
	assert.Contains(t, buf.String(), "SUMMARY:Available")
}

func TestSetupLogger(t *testing.T) {
	ctx := context.Background()
	assert.True(t, setupLogger("debug").Enabled(ctx, slog.LevelDebug))
	assert.False(t, setupLogger("warn").Enabled(ctx, slog.LevelInfo))
	assert.True(t, setupLogger("").Enabled(ctx, slog.LevelInfo))
	assert.False(t, setupLogger("").Enabled(ctx, slog.LevelDebug))
}
