// Package caldav reads busy events from a CalDAV calendar such as iCloud.
package caldav

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"

	"meetfinder/internal/ics"
	"meetfinder/internal/models"
)

// DefaultEndpoint is used when no endpoint is configured.
const DefaultEndpoint = "https://caldav.icloud.com/"

// basicAuthTransport adds Basic Auth and a User-Agent to each request.
type basicAuthTransport struct {
	Username  string
	Password  string
	Transport http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.SetBasicAuth(t.Username, t.Password)
	req.Header.Set("User-Agent", "meetfinder/1.0")
	return t.Transport.RoundTrip(req)
}

// Client reads events from one calendar on a CalDAV server.
type Client struct {
	caldavClient *caldav.Client
	logger       *slog.Logger
	endpoint     string
	calendarPath string
	tz           *time.Location
}

// NewClient connects to endpoint and looks up the calendar called calendarName.
// Floating times in the calendar are read in tz.
func NewClient(ctx context.Context, logger *slog.Logger, endpoint, username, password, calendarName string, tz *time.Location) (*Client, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &basicAuthTransport{
			Username:  username,
			Password:  password,
			Transport: http.DefaultTransport,
		},
	}

	caldavClient, err := caldav.NewClient(httpClient, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}

	c := &Client{
		caldavClient: caldavClient,
		logger:       logger,
		endpoint:     endpoint,
		tz:           tz,
	}

	logger.Info("Finding CalDAV calendar", "endpoint", endpoint, "calendarName", calendarName)
	calendarPath, err := c.findCalendar(ctx, calendarName)
	if err != nil {
		return nil, fmt.Errorf("could not find calendar '%s': %w", calendarName, err)
	}
	c.calendarPath = calendarPath
	logger.Info("Successfully found CalDAV calendar", "path", calendarPath)

	return c, nil
}

// Name identifies the source in logs and errors.
func (c *Client) Name() string {
	return "caldav:" + c.calendarPath
}

// Events returns the events of the calendar that intersect the window.
func (c *Client) Events(ctx context.Context, w models.Window) ([]*models.Event, error) {
	objects, err := c.caldavClient.QueryCalendar(ctx, c.calendarPath, eventQuery(w.From, w.To))
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar: %w", err)
	}

	var events []*models.Event
	for _, obj := range objects {
		if obj.Data == nil {
			continue
		}
		for _, e := range ics.CalendarEvents(obj.Data, c.Name(), c.tz) {
			if w.Overlaps(e) {
				events = append(events, e)
			}
		}
	}
	c.logger.Info("Successfully fetched events from CalDAV", "count", len(events), "objects", len(objects))
	return events, nil
}

// eventQuery builds a calendar-query REPORT for the VEVENTs that intersect [from, to).
func eventQuery(from, to time.Time) *caldav.CalendarQuery {
	return &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:     ical.CompCalendar,
			AllProps: true,
			Comps: []caldav.CalendarCompRequest{{
				Name:     ical.CompEvent,
				AllProps: true,
			}},
		},
		CompFilter: caldav.CompFilter{
			Name: ical.CompCalendar,
			Comps: []caldav.CompFilter{{
				Name:  ical.CompEvent,
				Start: from.UTC(),
				End:   to.UTC(),
			}},
		},
	}
}

// findCalendar discovers the user's calendars and returns the path of the one with the matching name.
func (c *Client) findCalendar(ctx context.Context, name string) (string, error) {
	principalPath, err := c.caldavClient.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal path: %w", err)
	}

	homeSetPath, err := c.caldavClient.FindCalendarHomeSet(ctx, principalPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}

	calendars, err := c.caldavClient.FindCalendars(ctx, homeSetPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}

	var names []string
	for _, cal := range calendars {
		if cal.Name == name {
			return cal.Path, nil
		}
		names = append(names, cal.Name)
	}

	return "", fmt.Errorf("no calendar found with name '%s' (available: %s)", name, strings.Join(names, ", "))
}
