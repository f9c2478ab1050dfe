package google

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"google.golang.org/api/calendar/v3"

	"github.com/harrisonrobin/taskmenu/pkg/taskwarrior"
)

// CalendarClient is a Google Calendar API client.
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
	logger     *log.Logger
	now        func() time.Time
}

// NewCalendarClient creates a new Google Calendar client.
func NewCalendarClient(srv *calendar.Service, calendarID string, logger *log.Logger) *CalendarClient {
	if logger == nil {
		logger = log.Default()
	}
	return &CalendarClient{srv: srv, calendarID: calendarID, logger: logger, now: time.Now}
}

// SyncEvent creates the event for task or patches the one already linked
// to it. The link lives on the event itself, so nothing is stored locally.
func (c *CalendarClient) SyncEvent(ctx context.Context, task taskwarrior.Task) (*calendar.Event, error) {
	event, err := ConvertTaskToCalendarEvent(&task, c.now())
	if err != nil {
		return nil, err
	}

	existingEvent, err := c.GetEventByTaskID(ctx, task.UUID.String())
	if err != nil {
		return nil, fmt.Errorf("error searching for event: %w", err)
	}

	if existingEvent != nil {
		patch, err := EventNeedsUpdate(existingEvent, event)
		if err != nil {
			c.logger.Error("could not compare task with its calendar event", "uuid", task.UUID, "err", err)
			return nil, err
		}
		if patch == nil {
			c.logger.Debug("calendar event up to date", "event", existingEvent.Id)
			return existingEvent, nil
		}
		c.logger.Info("patching calendar event", "event", existingEvent.Id, "uuid", task.UUID)
		return c.PatchEvent(ctx, existingEvent.Id, patch)
	}

	c.logger.Info("creating calendar event", "uuid", task.UUID)
	created, err := c.srv.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("creating event: %w", err)
	}
	return created, nil
}

// PatchEvent performs a partial update on an event.
func (c *CalendarClient) PatchEvent(ctx context.Context, eventID string, patch *calendar.Event) (*calendar.Event, error) {
	ev, err := c.srv.Events.Patch(c.calendarID, eventID, patch).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("patching event %s: %w", eventID, err)
	}
	return ev, nil
}

// DeleteEvent deletes an event from the calendar.
func (c *CalendarClient) DeleteEvent(ctx context.Context, eventID string) error {
	if err := c.srv.Events.Delete(c.calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("deleting event %s: %w", eventID, err)
	}
	return nil
}

// Unschedule removes the event linked to task, if there is one.
func (c *CalendarClient) Unschedule(ctx context.Context, task taskwarrior.Task) error {
	existingEvent, err := c.GetEventByTaskID(ctx, task.UUID.String())
	if err != nil {
		return fmt.Errorf("error searching for event: %w", err)
	}
	if existingEvent == nil {
		c.logger.Debug("no calendar event to remove", "uuid", task.UUID)
		return nil
	}
	c.logger.Info("deleting calendar event", "event", existingEvent.Id, "uuid", task.UUID)
	return c.DeleteEvent(ctx, existingEvent.Id)
}

// GetEventByTaskID searches for an event with the given Taskwarrior UUID in extended properties.
func (c *CalendarClient) GetEventByTaskID(ctx context.Context, taskID string) (*calendar.Event, error) {
	events, err := c.srv.Events.List(c.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", TaskIDProperty, taskID)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}
