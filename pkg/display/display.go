// Package display builds the one-line labels shown in the menu.
package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/harrisonrobin/taskmenu/pkg/taskwarrior"
)

const (
	DefaultDescriptionWidth = 60
	ellipsis                = "..."
)

// TaskLabel renders a task as "[id] description (u=+n.nn) proj:name".
// The description is padded or truncated to width display columns.
func TaskLabel(task *taskwarrior.Task, width int) string {
	if width <= len(ellipsis) {
		width = DefaultDescriptionWidth
	}
	parts := make([]string, 0, 4)

	if task.ID != 0 {
		parts = append(parts, fmt.Sprintf("[%2d]", task.ID))
	} else {
		parts = append(parts, "[--]")
	}

	parts = append(parts, fitDescription(task.Description, width))

	if task.Urgency != nil {
		parts = append(parts, fmt.Sprintf("(u=%+.2f)", *task.Urgency))
	}
	if task.Project != "" {
		parts = append(parts, "proj:"+task.Project)
	}
	return strings.Join(parts, " ")
}

func fitDescription(desc string, width int) string {
	w := ansi.StringWidth(desc)
	if w <= width {
		return desc + strings.Repeat(" ", width-w)
	}
	return ansi.Truncate(desc, width, ellipsis)
}

// AnnotationLabel renders an annotation as "YYYY-MM-DD description" using
// the local date of its entry.
func AnnotationLabel(a taskwarrior.Annotation) string {
	date := "----------"
	if a.Entry != nil && !a.Entry.IsZero() {
		date = a.Entry.In(time.Local).Format("2006-01-02")
	}
	return date + " " + a.Description
}
