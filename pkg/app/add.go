package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrNoInput = errors.New("no input given to add")

// parseAddInput splits "desc words -- note one -- note two" into the words
// passed to `task add` and the annotations to attach.
func parseAddInput(input string) (words []string, annotations []string, err error) {
	parts := strings.Split(input, addSeparator)
	words = strings.Fields(parts[0])
	if len(words) == 0 {
		return nil, nil, ErrNoInput
	}
	for _, p := range parts[1:] {
		if ann := strings.TrimSpace(p); ann != "" {
			annotations = append(annotations, ann)
		}
	}
	return words, annotations, nil
}

func (a *App) add(ctx context.Context) error {
	input, err := a.picker.Input(ctx, promptAdd, nil)
	if err != nil {
		return err
	}
	words, annotations, err := parseAddInput(input)
	if err != nil {
		return err
	}

	id, err := a.store.Add(ctx, words)
	if err != nil {
		return err
	}
	a.logger.Info("created task", "id", id)
	if len(annotations) == 0 {
		return nil
	}

	tasks, err := a.store.Query(ctx, strconv.Itoa(id))
	if err != nil {
		return err
	}
	if len(tasks) != 1 {
		return fmt.Errorf("querying by ID should return exactly one task, got %d", len(tasks))
	}
	task := tasks[0]
	now := a.now()
	for _, ann := range annotations {
		task.Annotate(now, ann)
	}
	if err := a.store.Save(ctx, task); err != nil {
		return fmt.Errorf("failed to save annotations: %w", err)
	}
	return nil
}
