package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"meetfinder/internal/finder"
	"meetfinder/internal/meeting"
)

type queryRequest struct {
	Events            []meeting.Event `json:"events"`
	Attendees         meeting.Set     `json:"attendees"`
	OptionalAttendees meeting.Set     `json:"optionalAttendees"`
	Duration          *int            `json:"duration" binding:"required"`
}

type findRequest struct {
	Date              string      `json:"date"` // YYYY-MM-DD, empty for today
	Attendees         meeting.Set `json:"attendees"`
	OptionalAttendees meeting.Set `json:"optionalAttendees"`
	Duration          *int        `json:"duration" binding:"required"`
}

type slotsResponse struct {
	Slots []meeting.TimeRange `json:"slots"`
}

type findResponse struct {
	Date             string              `json:"date"`
	Slots            []meeting.TimeRange `json:"slots"`
	EventsConsidered int                 `json:"eventsConsidered"`
}

// handleQuery runs the availability query over the events in the request body.
func (s *Server) handleQuery(c *gin.Context) {
	var input queryRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	req := meeting.MeetingRequest{
		Attendees:         input.Attendees,
		OptionalAttendees: input.OptionalAttendees,
		Duration:          *input.Duration,
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, slotsResponse{Slots: meeting.Query(input.Events, req)})
}

// handleFind looks the attendees up in the configured calendars.
func (s *Server) handleFind(c *gin.Context) {
	if s.finder == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no calendar sources configured"})
		return
	}

	var input findRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	day, err := finder.ParseDay(input.Date, s.now(), s.finder.Location())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date", "details": err.Error()})
		return
	}

	res, err := s.finder.Find(c.Request.Context(), day, meeting.MeetingRequest{
		Attendees:         input.Attendees,
		OptionalAttendees: input.OptionalAttendees,
		Duration:          *input.Duration,
	})
	if errors.Is(err, meeting.ErrInvalidDuration) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if err != nil {
		s.logger.Error("Find failed", "requestID", c.GetString(requestIDKey), "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to read calendars", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, findResponse{
		Date:             res.Day.Format(time.DateOnly),
		Slots:            res.Slots,
		EventsConsidered: res.EventsConsidered,
	})
}
