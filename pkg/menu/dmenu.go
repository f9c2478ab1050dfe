package menu

import (
	"context"
	"fmt"
	"strings"

	"github.com/harrisonrobin/taskmenu/pkg/process"
)

// Dmenu drives dmenu, which only reports the selected text. The text is
// mapped back to an index with BestMatch.
type Dmenu struct {
	Runner process.Runner
	Args   []string
}

func (d *Dmenu) run(ctx context.Context, prompt string, entries []string) (string, error) {
	args := append([]string{"-i", "-p", prompt}, d.Args...)
	res, err := d.Runner.Run(ctx, strings.NewReader(sanitize(entries)), "dmenu", args...)
	if err != nil {
		return "", err
	}
	switch res.ExitCode {
	case 0:
		return strings.TrimRight(res.Stdout, "\n"), nil
	case 1:
		return "", ErrCancelled
	default:
		return "", fmt.Errorf("dmenu exited with code %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
}

func (d *Dmenu) Choose(ctx context.Context, prompt string, labels []string) (int, error) {
	out, err := d.run(ctx, prompt, labels)
	if err != nil {
		return 0, err
	}
	if out == "" {
		return 0, ErrCancelled
	}
	idx, ok := BestMatch(out, labels)
	if !ok {
		return 0, fmt.Errorf("no entry matches %q", out)
	}
	return idx, nil
}

func (d *Dmenu) Input(ctx context.Context, prompt string, suggestions []string) (string, error) {
	return d.run(ctx, prompt, suggestions)
}

func (d *Dmenu) Message(ctx context.Context, text string) error {
	_, err := d.run(ctx, "taskmenu", []string{text})
	if err == ErrCancelled {
		return nil
	}
	return err
}
