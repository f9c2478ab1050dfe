package menu

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/harrisonrobin/taskmenu/pkg/process"
)

// rofi exits with 1 when the user presses Escape.
const rofiCancelled = 1

// Rofi drives `rofi -dmenu`.
type Rofi struct {
	Runner process.Runner
	Args   []string
}

func (r *Rofi) run(ctx context.Context, stdin string, args ...string) (string, error) {
	args = append(args, r.Args...)
	res, err := r.Runner.Run(ctx, strings.NewReader(stdin), "rofi", args...)
	if err != nil {
		return "", err
	}
	switch res.ExitCode {
	case 0:
		return strings.TrimRight(res.Stdout, "\n"), nil
	case rofiCancelled:
		return "", ErrCancelled
	default:
		return "", fmt.Errorf("rofi exited with code %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
}

func (r *Rofi) Choose(ctx context.Context, prompt string, labels []string) (int, error) {
	out, err := r.run(ctx, sanitize(labels), "-dmenu", "-i", "-no-custom", "-p", prompt, "-format", "i")
	if err != nil {
		return 0, err
	}
	if out == "" {
		return 0, ErrCancelled
	}
	idx, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("unexpected rofi output %q: %w", out, err)
	}
	return idx, nil
}

func (r *Rofi) Input(ctx context.Context, prompt string, suggestions []string) (string, error) {
	args := []string{"-dmenu", "-p", prompt, "-format", "s"}
	if len(suggestions) == 0 {
		args = append(args, "-l", "0")
	}
	return r.run(ctx, sanitize(suggestions), args...)
}

func (r *Rofi) Message(ctx context.Context, text string) error {
	_, err := r.run(ctx, "", "-e", text)
	if err == ErrCancelled {
		return nil
	}
	return err
}
