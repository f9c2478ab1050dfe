package google

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/harrisonrobin/taskmenu/pkg/colors"
	"github.com/harrisonrobin/taskmenu/pkg/taskwarrior"
)

// TaskIDProperty is the private extended property linking an event to a task UUID.
const TaskIDProperty = "taskwarrior_id"

const defaultDuration = 30 * time.Minute

var ErrNoDate = errors.New("task has no date")

var durationPart = regexp.MustCompile(`(\d+)([HMS])`)

// ParseDuration parses ISO 8601 duration format (PT1H30M) from Taskwarrior JSON export
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}

	if len(s) < 2 || s[0] != 'P' {
		return 0, fmt.Errorf("invalid ISO 8601 duration format: %s", s)
	}

	s = s[1:]
	if len(s) == 0 || s[0] != 'T' {
		return 0, fmt.Errorf("invalid ISO 8601 duration (missing T): P%s", s)
	}
	s = s[1:]

	var total time.Duration
	for _, match := range durationPart.FindAllStringSubmatch(s, -1) {
		value, _ := strconv.Atoi(match[1])
		switch match[2] {
		case "H":
			total += time.Duration(value) * time.Hour
		case "M":
			total += time.Duration(value) * time.Minute
		case "S":
			total += time.Duration(value) * time.Second
		}
	}

	if total == 0 {
		return 0, fmt.Errorf("invalid ISO 8601 duration: PT%s", s)
	}
	return total, nil
}

func set(t *taskwarrior.CustomTime) bool {
	return t != nil && !t.IsZero()
}

// ConvertTaskToCalendarEvent builds the event that represents task at time now.
func ConvertTaskToCalendarEvent(task *taskwarrior.Task, now time.Time) (*calendar.Event, error) {
	if task == nil {
		return nil, fmt.Errorf("could not convert nil Task")
	}

	est, _ := ParseDuration(task.Est)
	act, _ := ParseDuration(task.Act)

	prefix := ""
	switch {
	case task.Status == taskwarrior.COMPLETED:
		prefix = "✓"
	case task.Active():
		prefix = "‣"
	case (set(task.Due) && task.Due.Before(now)) || (set(task.Scheduled) && task.Scheduled.Before(now)):
		prefix = "!"
	}

	summary := task.Description
	if prefix != "" {
		summary = prefix + " " + task.Description
	}

	length := defaultDuration
	if est > 0 {
		length = est
	}

	// Completed tasks end when they were done; everything else starts at the
	// first of start, scheduled, due.
	var start, end time.Time
	switch {
	case task.Status == taskwarrior.COMPLETED:
		end = now
		if set(task.End) {
			end = task.End.Time
		}
		spent := defaultDuration
		if act > 0 {
			spent = act
		} else if est > 0 {
			spent = est
		}
		start = end.Add(-spent)
	case task.Active():
		start = task.Start.Time
		end = start.Add(length)
	case set(task.Scheduled):
		start = task.Scheduled.Time
		end = start.Add(length)
	case set(task.Due):
		start = task.Due.Time
		end = start.Add(length)
	default:
		return nil, fmt.Errorf("%w (due, start, scheduled or end): %s", ErrNoDate, task.UUID)
	}

	return &calendar.Event{
		Summary: summary,
		ColorId: colors.ColorID(task.Project),
		Start: &calendar.EventDateTime{
			DateTime: start.UTC().Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: end.UTC().Format(time.RFC3339),
		},
		Description: describe(task, est, act),
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				TaskIDProperty: task.UUID.String(),
			},
		},
	}, nil
}

func describe(task *taskwarrior.Task, est, act time.Duration) string {
	var b strings.Builder

	if len(task.Tags) > 0 {
		for _, tag := range task.Tags {
			fmt.Fprintf(&b, "#%s ", tag)
		}
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "Status: %s\n", task.Status)
	if task.Project != "" {
		fmt.Fprintf(&b, "Project: %s\n", task.Project)
	}
	fmt.Fprintf(&b, "UUID: %s\n", task.UUID)

	b.WriteString("\nAccounting:\n")
	if est > 0 {
		fmt.Fprintf(&b, "• estimated: %s\n", est)
	}

	if task.Active() && set(task.Scheduled) {
		diff := task.Start.Sub(task.Scheduled.Time)
		if diff > time.Minute {
			fmt.Fprintf(&b, "• started late by: %s\n", diff.Round(time.Minute))
		} else if diff < -time.Minute {
			fmt.Fprintf(&b, "• started early by: %s\n", (-diff).Round(time.Minute))
		}
	}

	if task.Status == taskwarrior.COMPLETED {
		var spent time.Duration
		if act > 0 {
			spent = act
		} else if set(task.Start) && set(task.End) {
			spent = task.End.Sub(task.Start.Time)
		}

		if spent > 0 {
			fmt.Fprintf(&b, "• spent: %s\n", spent)
			if est > 0 {
				diff := spent - est
				if diff > 0 {
					fmt.Fprintf(&b, "• over estimate by: %s\n", diff)
				} else if diff < 0 {
					fmt.Fprintf(&b, "• under estimate by: %s\n", -diff)
				}
			}
		}
	}

	if len(task.Annotations) > 0 {
		b.WriteString("\nNotes:\n")
		for _, ann := range task.Annotations {
			fmt.Fprintf(&b, "‣ %s\n", ann.Description)
		}
	}
	return b.String()
}

// EventNeedsUpdate returns a patch event if the fields shared between a taskwarrior.Task and a calendar.Event differ.
// It compares the target event (newly converted) with the existing event from the calendar.
func EventNeedsUpdate(existingEvent *calendar.Event, targetEvent *calendar.Event) (*calendar.Event, error) {
	patch := &calendar.Event{}
	needsUpdate := false

	if existingEvent.Summary != targetEvent.Summary {
		patch.Summary = targetEvent.Summary
		needsUpdate = true
	}
	if existingEvent.Description != targetEvent.Description {
		patch.Description = targetEvent.Description
		needsUpdate = true
	}
	if existingEvent.ColorId != targetEvent.ColorId {
		patch.ColorId = targetEvent.ColorId
		needsUpdate = true
	}

	existingStart, err := eventTime(existingEvent.Start)
	if err != nil {
		return nil, err
	}
	targetStart, err := eventTime(targetEvent.Start)
	if err != nil {
		return nil, err
	}
	existingEnd, err := eventTime(existingEvent.End)
	if err != nil {
		return nil, err
	}
	targetEnd, err := eventTime(targetEvent.End)
	if err != nil {
		return nil, err
	}

	if !existingStart.Equal(targetStart) || !existingEnd.Equal(targetEnd) {
		patch.Start = targetEvent.Start
		patch.End = targetEvent.End
		needsUpdate = true
	}

	if needsUpdate {
		return patch, nil
	}
	return nil, nil
}

func eventTime(t *calendar.EventDateTime) (time.Time, error) {
	if t == nil {
		return time.Time{}, nil
	}
	if t.DateTime == "" {
		// all-day events carry only a date
		if t.Date == "" {
			return time.Time{}, nil
		}
		return time.Parse("2006-01-02", t.Date)
	}
	return time.Parse(time.RFC3339, t.DateTime)
}
