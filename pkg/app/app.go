// Package app runs the interactive loop: pick an action, pick a task,
// apply the action through the task store.
package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"google.golang.org/api/calendar/v3"

	"github.com/harrisonrobin/taskmenu/pkg/display"
	"github.com/harrisonrobin/taskmenu/pkg/menu"
	"github.com/harrisonrobin/taskmenu/pkg/taskwarrior"
)

const (
	promptAction     = "Choose an action"
	promptTask       = "Choose a task"
	promptList       = "Press enter to go back"
	promptAdd        = "task -- annotation"
	promptAnnotation = "annotation"
	promptWait       = "Wait until?"
	promptLink       = "Choose annotation"
	addSeparator     = "--"
)

// TaskStore is the subset of the Taskwarrior client the loop needs.
type TaskStore interface {
	DefaultFilter(ctx context.Context) (string, error)
	Query(ctx context.Context, filter string) ([]taskwarrior.Task, error)
	Add(ctx context.Context, words []string) (int, error)
	Modify(ctx context.Context, ref string, words []string) error
	Save(ctx context.Context, tasks ...taskwarrior.Task) error
}

// Scheduler pushes a task to a calendar and removes it again.
type Scheduler interface {
	SyncEvent(ctx context.Context, task taskwarrior.Task) (*calendar.Event, error)
	Unschedule(ctx context.Context, task taskwarrior.Task) error
}

// Opener hands a URL to the desktop's default handler.
type Opener func(target string) error

type Options struct {
	Store            TaskStore
	Picker           menu.Picker
	Opener           Opener
	Scheduler        Scheduler // nil disables Schedule
	Logger           *log.Logger
	DescriptionWidth int
	WaitSuggestions  []string
	Now              func() time.Time
}

type App struct {
	store           TaskStore
	picker          menu.Picker
	open            Opener
	scheduler       Scheduler
	logger          *log.Logger
	width           int
	waitSuggestions []string
	now             func() time.Time
}

func New(opts Options) *App {
	a := &App{
		store:           opts.Store,
		picker:          opts.Picker,
		open:            opts.Opener,
		scheduler:       opts.Scheduler,
		logger:          opts.Logger,
		width:           opts.DescriptionWidth,
		waitSuggestions: opts.WaitSuggestions,
		now:             opts.Now,
	}
	if a.open == nil {
		a.open = DefaultOpener
	}
	if a.logger == nil {
		a.logger = log.Default()
	}
	if a.width == 0 {
		a.width = display.DefaultDescriptionWidth
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// Run shows the action menu until the user exits, opens a link, cancels
// a menu or an action fails. Cancelling returns menu.ErrCancelled.
func (a *App) Run(ctx context.Context) error {
	for {
		action, err := menu.Select(ctx, a.picker, promptAction, a.actionItems())
		if err != nil {
			return err
		}
		a.logger.Debug("action chosen", "action", action)

		finished, err := a.perform(ctx, action)
		if err != nil {
			return fmt.Errorf("%s: %w", strings.ToLower(action.String()), err)
		}
		if finished {
			return nil
		}
	}
}

func (a *App) actionItems() []menu.Labeled[Action] {
	actions := Actions(a.scheduler != nil)
	items := make([]menu.Labeled[Action], len(actions))
	for i, act := range actions {
		items[i] = menu.Labeled[Action]{Label: act.String(), Item: act}
	}
	return items
}

// perform runs one action. finished reports whether the loop should end.
func (a *App) perform(ctx context.Context, action Action) (finished bool, err error) {
	switch action {
	case Exit:
		return true, nil
	case Add:
		return false, a.add(ctx)
	case List:
		_, err := a.chooseTask(ctx, promptList)
		if errors.Is(err, menu.ErrCancelled) {
			return false, nil
		}
		return false, err
	case Mod:
		task, err := a.chooseTask(ctx, promptTask)
		if err != nil {
			return false, err
		}
		return false, a.modify(ctx, &task)
	}

	task, err := a.chooseTask(ctx, promptTask)
	if err != nil {
		return false, err
	}

	switch action {
	case Done:
		task.Status = taskwarrior.COMPLETED
		task.End = taskwarrior.NewTime(a.now())
	case Start:
		task.Start = taskwarrior.NewTime(a.now())
	case Stop:
		task.Start = nil
	case Delete:
		task.Status = taskwarrior.DELETED
		task.End = taskwarrior.NewTime(a.now())
	case Open:
		return true, a.openAnnotation(ctx, &task)
	case Annotate:
		text, err := a.picker.Input(ctx, promptAnnotation, nil)
		if err != nil {
			return false, err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return false, errors.New("empty annotation")
		}
		task.Annotate(a.now(), text)
	case Wait:
		return false, a.wait(ctx, &task)
	case Schedule:
		return true, a.schedule(ctx, &task)
	default:
		return false, fmt.Errorf("unhandled action %v", action)
	}

	a.logger.Info("saving task", "action", action, "uuid", task.UUID)
	if err := a.store.Save(ctx, task); err != nil {
		return false, err
	}
	if action == Delete && a.scheduler != nil {
		return false, a.scheduler.Unschedule(ctx, task)
	}
	return false, nil
}

// Tasks returns the tasks of the default report, most urgent first.
// Urgency is compared at four decimal places; tasks without one come first.
func (a *App) Tasks(ctx context.Context) ([]taskwarrior.Task, error) {
	filter, err := a.store.DefaultFilter(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := a.store.Query(ctx, filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		ui, uj := tasks[i].Urgency, tasks[j].Urgency
		switch {
		case uj == nil:
			return false
		case ui == nil:
			return true
		default:
			return urgencyKey(*ui) > urgencyKey(*uj)
		}
	})
	return tasks, nil
}

func urgencyKey(u float64) int64 {
	return int64(u * 10000)
}

func (a *App) chooseTask(ctx context.Context, prompt string) (taskwarrior.Task, error) {
	tasks, err := a.Tasks(ctx)
	if err != nil {
		return taskwarrior.Task{}, err
	}
	items := make([]menu.Labeled[taskwarrior.Task], len(tasks))
	for i := range tasks {
		items[i] = menu.Labeled[taskwarrior.Task]{Label: display.TaskLabel(&tasks[i], a.width), Item: tasks[i]}
	}
	return menu.Select(ctx, a.picker, prompt, items)
}

func (a *App) modify(ctx context.Context, task *taskwarrior.Task) error {
	ref := task.Ref()
	input, err := a.picker.Input(ctx, fmt.Sprintf("Mods for task %s", ref), nil)
	if err != nil {
		return err
	}
	words := strings.Fields(input)
	if len(words) == 0 {
		return errors.New("no modifications given")
	}
	return a.store.Modify(ctx, ref, words)
}

func (a *App) wait(ctx context.Context, task *taskwarrior.Task) error {
	input, err := a.picker.Input(ctx, promptWait, a.waitSuggestions)
	if err != nil {
		return err
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return errors.New("no wait date given")
	}
	return a.store.Modify(ctx, task.UUID.String(), []string{"wait:" + input})
}

func (a *App) schedule(ctx context.Context, task *taskwarrior.Task) error {
	if a.scheduler == nil {
		return errors.New("no calendar configured")
	}
	event, err := a.scheduler.SyncEvent(ctx, *task)
	if err != nil {
		return err
	}
	if event == nil || event.HtmlLink == "" {
		return nil
	}
	return a.open(event.HtmlLink)
}
