package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"meetfinder/internal/models"
)

const (
	credentialsFile = "credentials.json"
)

// CalendarClient provides a client for interacting with the Google Calendar API.
type CalendarClient struct {
	service *calendar.Service
	logger  *slog.Logger
	account string
}

// NewClient creates a new Google Calendar client.
// It handles loading credentials and setting up an authenticated HTTP client.
// Tokens live in files named token-<account>.json, written by the auth command.
func NewClient(ctx context.Context, logger *slog.Logger, clientID, clientSecret, accountName string) (*CalendarClient, error) {
	config, err := getOAuthConfig(clientID, clientSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to get OAuth config: %w", err)
	}

	tokenFile := fmt.Sprintf("token-%s.json", accountName)
	token, err := tokenFromFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("could not load token for account %s: %w. Please run the 'auth' command first", accountName, err)
	}

	client := config.Client(ctx, token)
	service, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return newClientWithService(service, logger, accountName), nil
}

func newClientWithService(service *calendar.Service, logger *slog.Logger, account string) *CalendarClient {
	return &CalendarClient{service: service, logger: logger, account: account}
}

// Account returns the name of the account the client is authenticated as.
func (c *CalendarClient) Account() string {
	return c.account
}

// EventsBetween fetches the events of a calendar that intersect [from, to).
// Recurring events are expanded by the API into single instances.
func (c *CalendarClient) EventsBetween(ctx context.Context, calendarID string, from, to time.Time) ([]*models.Event, error) {
	c.logger.Debug("Fetching events", "calendarID", calendarID, "from", from, "to", to)

	var items []*calendar.Event
	err := c.service.Events.List(calendarID).
		ShowDeleted(false).
		SingleEvents(true).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		OrderBy("startTime").
		Pages(ctx, func(page *calendar.Events) error {
			items = append(items, page.Items...)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve events: %w", err)
	}

	c.logger.Info("Successfully fetched events from Google Calendar", "count", len(items), "calendarID", calendarID)
	return toInternalEvents(items, calendarID), nil
}

// FreeBusy asks Google for the busy periods of the given calendars (usually e-mail addresses).
// Each busy period becomes an event attended only by the calendar it belongs to.
func (c *CalendarClient) FreeBusy(ctx context.Context, calendarIDs []string, from, to time.Time) ([]*models.Event, error) {
	if len(calendarIDs) == 0 {
		return nil, nil
	}

	req := &calendar.FreeBusyRequest{
		TimeMin: from.Format(time.RFC3339),
		TimeMax: to.Format(time.RFC3339),
	}
	for _, id := range calendarIDs {
		req.Items = append(req.Items, &calendar.FreeBusyRequestItem{Id: id})
	}

	resp, err := c.service.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to query free/busy: %w", err)
	}

	for id, cal := range resp.Calendars {
		for _, e := range cal.Errors {
			c.logger.Warn("Free/busy unavailable for calendar", "calendarID", id, "reason", e.Reason)
		}
	}
	events := freeBusyEvents(resp.Calendars)
	c.logger.Info("Successfully fetched free/busy from Google Calendar", "calendars", len(calendarIDs), "busy", len(events))
	return events, nil
}

// toInternalEvents converts Google Calendar events to the internal Event model.
func toInternalEvents(googleEvents []*calendar.Event, calendarID string) []*models.Event {
	var internalEvents []*models.Event
	for _, item := range googleEvents {
		// All-day events carry only a date and do not block meeting time.
		if item.Start == nil || item.Start.DateTime == "" || item.End == nil || item.End.DateTime == "" {
			continue
		}

		startTime, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			continue
		}
		endTime, err := time.Parse(time.RFC3339, item.End.DateTime)
		if err != nil {
			continue
		}

		event := &models.Event{
			ID:          item.Id,
			UID:         item.ICalUID,
			Title:       item.Summary,
			StartTime:   startTime,
			EndTime:     endTime,
			Status:      item.Status,
			Transparent: item.Transparency == "transparent",
			Source:      fmt.Sprintf("google-%s", calendarID),
		}
		if item.Organizer != nil {
			event.Organizer = item.Organizer.Email
		}
		for _, a := range item.Attendees {
			if a.Email == "" || a.Resource {
				continue
			}
			event.Attendees = append(event.Attendees, a.Email)
			if a.ResponseStatus == "declined" {
				event.Declined = append(event.Declined, a.Email)
			}
		}
		// Events on a calendar without an attendee list still keep the calendar's owner busy.
		if len(event.Attendees) == 0 && strings.Contains(calendarID, "@") {
			event.Attendees = []string{calendarID}
		}
		internalEvents = append(internalEvents, event)
	}
	return internalEvents
}

func freeBusyEvents(calendars map[string]calendar.FreeBusyCalendar) []*models.Event {
	ids := make([]string, 0, len(calendars))
	for id := range calendars {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var events []*models.Event
	for _, id := range ids {
		for i, period := range calendars[id].Busy {
			start, err := time.Parse(time.RFC3339, period.Start)
			if err != nil {
				continue
			}
			end, err := time.Parse(time.RFC3339, period.End)
			if err != nil {
				continue
			}
			events = append(events, &models.Event{
				ID:        fmt.Sprintf("freebusy-%s-%d", id, i),
				Title:     "busy",
				StartTime: start,
				EndTime:   end,
				Attendees: []string{id},
				Source:    "google-freebusy",
			})
		}
	}
	return events
}

// GetOAuthConfigForAuthFlow is used by the auth command to get the config for the web flow.
func GetOAuthConfigForAuthFlow(clientID, clientSecret string) (*oauth2.Config, error) {
	return getOAuthConfig(clientID, clientSecret)
}

// getOAuthConfig reads credentials and returns an OAuth2 config.
// It prioritizes explicit client credentials over a local credentials.json file.
func getOAuthConfig(clientID, clientSecret string) (*oauth2.Config, error) {
	if clientID != "" && clientSecret != "" {
		return &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
			Scopes:       []string{calendar.CalendarReadonlyScope},
			Endpoint:     google.Endpoint,
		}, nil
	}

	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		if _, ok := err.(*fs.PathError); ok {
			return nil, fmt.Errorf("credentials.json not found. Please provide GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET env vars or place credentials.json in the working directory")
		}
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	config.RedirectURL = "urn:ietf:wg:oauth:2.0:oob" // For desktop app flow
	return config, nil
}

// TokenFromWeb is called by the auth flow to retrieve a token.
func TokenFromWeb(ctx context.Context, config *oauth2.Config, authCode string) (*oauth2.Token, error) {
	return config.Exchange(ctx, authCode)
}

// SaveToken saves a token to a file path.
func SaveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("unable to create token file: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// tokenFromFile retrieves a token from a local file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// DiscoverCalendars lists the ids of all calendars visible to the authenticated account.
func (c *CalendarClient) DiscoverCalendars(ctx context.Context) ([]string, error) {
	list, err := c.service.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	var calendarIDs []string
	for _, item := range list.Items {
		calendarIDs = append(calendarIDs, item.Id)
	}
	return calendarIDs, nil
}

// GetTokenAccounts lists the accounts that have a token file in the working directory.
func GetTokenAccounts() ([]string, error) {
	return tokenAccounts(".")
}

func tokenAccounts(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var accounts []string
	for _, file := range files {
		name := filepath.Base(file.Name())
		if !file.IsDir() && strings.HasPrefix(name, "token-") && strings.HasSuffix(name, ".json") {
			accountName := strings.TrimSuffix(strings.TrimPrefix(name, "token-"), ".json")
			accounts = append(accounts, accountName)
		}
	}
	return accounts, nil
}
