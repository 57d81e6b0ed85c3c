package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/oauth2"

	"meetfinder/internal/caldav"
	"meetfinder/internal/finder"
	"meetfinder/internal/google"
	"meetfinder/internal/ics"
	"meetfinder/internal/meeting"
	"meetfinder/internal/server"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "meetfinder",
		Usage: "Find the times of day when everyone can meet.",
		Commands: []*cli.Command{
			authCommand(),
			findCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with a Google account to get an API token.",
		Action: func(c *cli.Context) error {
			logger := setupLogger("info")
			logger.Info("Starting Google authentication flow.")

			config, err := google.GetOAuthConfigForAuthFlow(os.Getenv("GOOGLE_CLIENT_ID"), os.Getenv("GOOGLE_CLIENT_SECRET"))
			if err != nil {
				return fmt.Errorf("failed to get google oauth config: %w", err)
			}

			authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
			fmt.Printf("Go to the following link in your browser then type the "+
				"authorization code: \n%v\n", authURL)

			fmt.Print("Enter Authorization Code: ")
			reader := bufio.NewReader(os.Stdin)
			authCode, _ := reader.ReadString('\n')
			authCode = strings.TrimSpace(authCode)

			token, err := google.TokenFromWeb(c.Context, config, authCode)
			if err != nil {
				return fmt.Errorf("unable to retrieve token from web: %w", err)
			}

			fmt.Print("Enter a name for this account (e.g., 'personal', 'work'): ")
			accountName, _ := reader.ReadString('\n')
			accountName = strings.TrimSpace(accountName)
			tokenFile := "token-" + accountName + ".json"

			if err := google.SaveToken(tokenFile, token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			logger.Info("Successfully authenticated and saved token.", "file", tokenFile)
			return nil
		},
	}
}

func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: "ics", Usage: "Read events from an .ics file or URL. Repeatable.", EnvVars: []string{"ICS_SOURCES"}},
		&cli.BoolFlag{Name: "google", Usage: "Read events from the Google calendars in GOOGLE_CALENDAR_IDS (all calendars when unset)."},
		&cli.BoolFlag{Name: "freebusy", Usage: "Ask Google free/busy about every attendee."},
		&cli.BoolFlag{Name: "caldav", Usage: "Read events from the CalDAV calendar configured by CALDAV_* variables."},
	}
}

func findCommand() *cli.Command {
	return &cli.Command{
		Name:  "find",
		Usage: "Print the slots on a day when a meeting fits.",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "date", Usage: "Day to search, YYYY-MM-DD. Defaults to today."},
			&cli.StringSliceFlag{Name: "attendee", Aliases: []string{"a"}, Usage: "Mandatory attendee e-mail. Repeatable."},
			&cli.StringSliceFlag{Name: "optional", Aliases: []string{"o"}, Usage: "Optional attendee e-mail. Repeatable."},
			&cli.IntFlag{Name: "duration", Aliases: []string{"d"}, Value: 30, Usage: "Meeting length in minutes."},
			&cli.StringFlag{Name: "format", Value: "text", Usage: "Output format: text, json or ics."},
		}, sourceFlags()...),
		Action: func(c *cli.Context) error {
			logger := setupLogger(os.Getenv("LOG_LEVEL"))

			format := strings.ToLower(c.String("format"))
			if format != "text" && format != "json" && format != "ics" {
				return fmt.Errorf("unknown format '%s'", c.String("format"))
			}

			loc, err := primaryLocation()
			if err != nil {
				return err
			}

			sources, err := buildSources(c, logger, loc)
			if err != nil {
				return err
			}
			f, err := finder.NewFinder(logger, sources, loc)
			if err != nil {
				return fmt.Errorf("failed to create finder: %w. Pass --ics, --google, --freebusy or --caldav", err)
			}

			day, err := finder.ParseDay(c.String("date"), time.Now(), loc)
			if err != nil {
				return err
			}

			req := meeting.MeetingRequest{
				Attendees:         meeting.NewSet(c.StringSlice("attendee")...),
				OptionalAttendees: meeting.NewSet(c.StringSlice("optional")...),
				Duration:          c.Int("duration"),
			}
			res, err := f.Find(c.Context, day, req)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			return printResult(os.Stdout, format, res, req.Duration, time.Now())
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the meeting finder over HTTP.",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "addr", Value: ":8080", Usage: "Address to listen on.", EnvVars: []string{"LISTEN_ADDR"}},
			&cli.IntFlag{Name: "rate", Value: 120, Usage: "Requests per minute per client IP, 0 to disable.", EnvVars: []string{"RATE_LIMIT_PER_MINUTE"}},
			&cli.StringSliceFlag{Name: "origin", Usage: "Allowed CORS origin. Repeatable. All origins when unset.", EnvVars: []string{"CORS_ORIGINS"}},
		}, sourceFlags()...),
		Action: func(c *cli.Context) error {
			logger := setupLogger(os.Getenv("LOG_LEVEL"))

			loc, err := primaryLocation()
			if err != nil {
				return err
			}

			sources, err := buildSources(c, logger, loc)
			if err != nil {
				return err
			}

			// Without sources only the stateless query endpoint is useful.
			var f server.Finder
			if len(sources) > 0 {
				fnd, err := finder.NewFinder(logger, sources, loc)
				if err != nil {
					return fmt.Errorf("failed to create finder: %w", err)
				}
				f = fnd
			} else {
				logger.Warn("No calendar sources configured, /api/v1/find is disabled.")
			}

			srv := server.New(logger, f, server.Config{
				RatePerMinute:  c.Int("rate"),
				AllowedOrigins: c.StringSlice("origin"),
			})

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx, c.String("addr"))
		},
	}
}

// buildSources creates the calendar sources selected on the command line.
func buildSources(c *cli.Context, logger *slog.Logger, loc *time.Location) ([]finder.Source, error) {
	var sources []finder.Source

	for _, location := range c.StringSlice("ics") {
		sources = append(sources, ics.NewFileSource(logger, location, loc))
	}

	if c.Bool("google") || c.Bool("freebusy") {
		gSources, err := googleSources(c.Context, logger, c.Bool("google"), c.Bool("freebusy"))
		if err != nil {
			return nil, err
		}
		sources = append(sources, gSources...)
	}

	if c.Bool("caldav") {
		client, err := caldav.NewClient(c.Context, logger,
			os.Getenv("CALDAV_ENDPOINT"),
			os.Getenv("CALDAV_USERNAME"),
			os.Getenv("CALDAV_PASSWORD"),
			os.Getenv("CALDAV_CALENDAR_NAME"),
			loc,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create caldav client: %w", err)
		}
		sources = append(sources, client)
	}

	return sources, nil
}

func googleSources(ctx context.Context, logger *slog.Logger, events, freeBusy bool) ([]finder.Source, error) {
	// Load all Google clients for all authenticated accounts
	accounts, err := google.GetTokenAccounts()
	if err != nil {
		return nil, fmt.Errorf("could not find any google accounts, did you run auth command? %w", err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("no google accounts found. Run the 'auth' command first")
	}

	var calendarIDs []string
	for _, id := range strings.Split(os.Getenv("GOOGLE_CALENDAR_IDS"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			calendarIDs = append(calendarIDs, id)
		}
	}

	var sources []finder.Source
	for _, acc := range accounts {
		client, err := google.NewClient(ctx, logger, os.Getenv("GOOGLE_CLIENT_ID"), os.Getenv("GOOGLE_CLIENT_SECRET"), acc)
		if err != nil {
			return nil, fmt.Errorf("failed to create google client for account %s: %w", acc, err)
		}

		if events {
			ids := calendarIDs
			if len(ids) == 0 {
				ids, err = client.DiscoverCalendars(ctx)
				if err != nil {
					return nil, fmt.Errorf("failed to discover calendars for account %s: %w", acc, err)
				}
			}
			sources = append(sources, google.NewCalendarSource(client, ids))
		}
		if freeBusy {
			sources = append(sources, google.NewFreeBusySource(client))
		}
	}
	logger.Info("Initialized Google sources for all accounts.", "accounts", len(accounts), "sources", len(sources))
	return sources, nil
}

func primaryLocation() (*time.Location, error) {
	tzStr := os.Getenv("PRIMARY_TIMEZONE")
	if tzStr == "" {
		tzStr = "UTC"
	}
	loc, err := time.LoadLocation(tzStr)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w", tzStr, err)
	}
	return loc, nil
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
