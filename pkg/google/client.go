package google

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	googleauth "golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Scopes needed to find the calendar and write events to it.
var Scopes = []string{
	calendar.CalendarEventsScope,
	calendar.CalendarReadonlyScope,
}

// NewClient creates a Google Calendar client for the calendar named
// calendarName. Credentials come from Application Default Credentials
// (GOOGLE_APPLICATION_CREDENTIALS or `gcloud auth application-default
// login --scopes=...`), so no token is cached by this program.
func NewClient(ctx context.Context, calendarName string, logger *log.Logger, opts ...option.ClientOption) (*CalendarClient, error) {
	if len(opts) == 0 {
		httpClient, err := googleauth.DefaultClient(ctx, Scopes...)
		if err != nil {
			return nil, fmt.Errorf("loading Google application default credentials: %w", err)
		}
		opts = []option.ClientOption{option.WithHTTPClient(httpClient)}
	}

	srv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Calendar client: %w", err)
	}

	calendarID, err := findCalendar(ctx, srv, calendarName)
	if err != nil {
		return nil, err
	}
	return NewCalendarClient(srv, calendarID, logger), nil
}

func findCalendar(ctx context.Context, srv *calendar.Service, name string) (string, error) {
	calendarList, err := srv.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to retrieve calendar list: %w", err)
	}
	for _, item := range calendarList.Items {
		if item.Summary == name {
			return item.Id, nil
		}
	}
	return "", fmt.Errorf("calendar '%s' not found", name)
}
