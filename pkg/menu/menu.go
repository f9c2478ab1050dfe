// Package menu presents choices through an external popup menu (rofi,
// dmenu) or an in-terminal picker, and maps the selection back to typed
// items.
package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harrisonrobin/taskmenu/pkg/process"
)

// ErrCancelled is returned when the user dismisses a menu.
var ErrCancelled = errors.New("menu cancelled")

const (
	BackendRofi     = "rofi"
	BackendDmenu    = "dmenu"
	BackendTerminal = "terminal"
)

// Picker is a menu program able to offer a list, read a line of text and
// show a message.
type Picker interface {
	// Choose returns the index of the selected label.
	Choose(ctx context.Context, prompt string, labels []string) (int, error)
	// Input returns free text. Suggestions are offered as entries and may be empty.
	Input(ctx context.Context, prompt string, suggestions []string) (string, error)
	Message(ctx context.Context, text string) error
}

// Options configures New.
type Options struct {
	Backend string
	Args    []string // extra arguments for external backends
	Runner  process.Runner
}

// New returns the picker for the configured backend.
func New(opts Options) (Picker, error) {
	switch opts.Backend {
	case "", BackendRofi:
		return &Rofi{Runner: opts.Runner, Args: opts.Args}, nil
	case BackendDmenu:
		return &Dmenu{Runner: opts.Runner, Args: opts.Args}, nil
	case BackendTerminal:
		return &Terminal{}, nil
	default:
		return nil, fmt.Errorf("unknown menu backend %q", opts.Backend)
	}
}

// Labeled pairs a display label with the item it stands for.
type Labeled[T any] struct {
	Label string
	Item  T
}

// Select shows the labels of items and returns the chosen item.
func Select[T any](ctx context.Context, p Picker, prompt string, items []Labeled[T]) (T, error) {
	var zero T
	labels := make([]string, len(items))
	for i, it := range items {
		labels[i] = it.Label
	}
	idx, err := p.Choose(ctx, prompt, labels)
	if err != nil {
		return zero, err
	}
	if idx < 0 || idx >= len(items) {
		return zero, fmt.Errorf("menu returned index %d out of range [0,%d)", idx, len(items))
	}
	return items[idx].Item, nil
}

// Strings labels each value with its own text.
func Strings(values ...string) []Labeled[string] {
	items := make([]Labeled[string], len(values))
	for i, v := range values {
		items[i] = Labeled[string]{Label: v, Item: v}
	}
	return items
}

// sanitize keeps labels on a single line, since every backend reads
// newline-separated entries.
func sanitize(labels []string) string {
	clean := make([]string, len(labels))
	for i, l := range labels {
		clean[i] = strings.ReplaceAll(l, "\n", " ")
	}
	return strings.Join(clean, "\n")
}
