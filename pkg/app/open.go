package app

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/skratchdot/open-golang/open"

	"github.com/harrisonrobin/taskmenu/pkg/display"
	"github.com/harrisonrobin/taskmenu/pkg/menu"
	"github.com/harrisonrobin/taskmenu/pkg/taskwarrior"
)

var (
	ErrNoAnnotations = errors.New("no annotations found")
	ErrNoLinks       = errors.New("no annotation links found")
)

// DefaultOpener opens target with the platform's default handler
// (xdg-open, open, start).
func DefaultOpener(target string) error {
	return open.Run(target)
}

// pickLink chooses the annotation link to open: the only one, or one picked
// from a menu sorted newest first.
func (a *App) pickLink(ctx context.Context, task *taskwarrior.Task) (taskwarrior.Annotation, error) {
	if len(task.Annotations) == 0 {
		return taskwarrior.Annotation{}, ErrNoAnnotations
	}
	links := task.Links()
	switch len(links) {
	case 0:
		return taskwarrior.Annotation{}, ErrNoLinks
	case 1:
		return links[0], nil
	}

	items := make([]menu.Labeled[taskwarrior.Annotation], len(links))
	for i, l := range links {
		items[i] = menu.Labeled[taskwarrior.Annotation]{Label: display.AnnotationLabel(l), Item: l}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Label > items[j].Label })

	choice, err := menu.Select(ctx, a.picker, promptLink, items)
	if err != nil {
		return taskwarrior.Annotation{}, fmt.Errorf("couldn't choose an annotation: %w", err)
	}
	return choice, nil
}

func (a *App) openAnnotation(ctx context.Context, task *taskwarrior.Task) error {
	link, err := a.pickLink(ctx, task)
	if err != nil {
		return err
	}
	a.logger.Info("opening annotation", "url", link.Description)
	if err := a.open(link.Description); err != nil {
		return fmt.Errorf("could not open item specified by annotation: %w", err)
	}
	return nil
}
