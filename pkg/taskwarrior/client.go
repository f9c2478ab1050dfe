package taskwarrior

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/harrisonrobin/taskmenu/pkg/process"
)

const createdPrefix = "Created task "

// CommandError is returned when the task binary exits non-zero.
type CommandError struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("task %s failed (exit code %d): stdout: %s / stderr: %s",
		strings.Join(e.Args, " "), e.ExitCode, strings.TrimSpace(e.Stdout), strings.TrimSpace(e.Stderr))
}

var ErrConfigVarNotFound = errors.New("could not find config variable")

type Client struct {
	bin    string
	runner process.Runner
}

// NewClient returns a client for the task binary at bin ("task" when empty).
func NewClient(bin string, runner process.Runner) *Client {
	if bin == "" {
		bin = "task"
	}
	return &Client{bin: bin, runner: runner}
}

// Run invokes the task binary and returns its stdout and stderr. A non-zero
// exit is reported as a *CommandError.
func (c *Client) Run(ctx context.Context, stdin io.Reader, args ...string) (string, string, error) {
	full := append([]string{"rc.confirmation=off"}, args...)
	res, err := c.runner.Run(ctx, stdin, c.bin, full...)
	if err != nil {
		return "", "", fmt.Errorf("taskwarrior command failed: %w", err)
	}
	if res.ExitCode != 0 {
		return res.Stdout, res.Stderr, &CommandError{
			Args:     args,
			ExitCode: res.ExitCode,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
		}
	}
	return res.Stdout, res.Stderr, nil
}

// ConfigVar returns the value of a Taskwarrior configuration variable as
// printed by `task show <name>`.
func (c *Client) ConfigVar(ctx context.Context, name string) (string, error) {
	stdout, _, err := c.Run(ctx, nil, "show", name)
	if err != nil {
		return "", fmt.Errorf("reading config variable %s: %w", name, err)
	}
	if value, ok := parseConfigVar(stdout, name); ok {
		return value, nil
	}
	return "", fmt.Errorf("%w: %s", ErrConfigVarNotFound, name)
}

func parseConfigVar(output, name string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		parts := strings.Split(strings.TrimRight(line, "\r"), " ")
		if len(parts) > 1 && parts[0] == name {
			return strings.Join(parts[1:], " "), true
		}
	}
	return "", false
}

// DefaultFilter returns the filter of the report that `task` runs with no
// arguments.
func (c *Client) DefaultFilter(ctx context.Context) (string, error) {
	report, err := c.ConfigVar(ctx, "default.command")
	if err != nil {
		return "", err
	}
	return c.ConfigVar(ctx, fmt.Sprintf("report.%s.filter", report))
}

// GetTasks exports the tasks matching filter. The export is requested as
// one object per line and decoded with ParseTasks.
func (c *Client) GetTasks(ctx context.Context, filter []string) ([]Task, error) {
	args := append(append([]string(nil), filter...), "export", "rc.json.array=off", "rc.hooks=0")
	stdout, _, err := c.Run(ctx, nil, args...)
	if err != nil {
		return nil, err
	}
	return c.ParseTasks(strings.NewReader(stdout))
}

// Query exports the tasks matching a filter string in Taskwarrior syntax.
func (c *Client) Query(ctx context.Context, filter string) ([]Task, error) {
	return c.GetTasks(ctx, strings.Fields(filter))
}

// Add creates a task from the given words and returns the new task's id.
func (c *Client) Add(ctx context.Context, words []string) (int, error) {
	stdout, stderr, err := c.Run(ctx, nil, append([]string{"add"}, words...)...)
	if err != nil {
		return 0, fmt.Errorf("adding task: %w", err)
	}
	id, ok := parseCreatedID(stdout)
	if !ok {
		return 0, fmt.Errorf("unexpected output from add command: `%s` / stderr: `%s`",
			strings.TrimSpace(stdout), strings.TrimSpace(stderr))
	}
	return id, nil
}

func parseCreatedID(stdout string) (int, bool) {
	if !strings.HasPrefix(stdout, createdPrefix) {
		return 0, false
	}
	line := strings.SplitN(stdout, "\n", 2)[0]
	fields := strings.Fields(line)
	id, err := strconv.Atoi(strings.TrimSuffix(fields[len(fields)-1], "."))
	if err != nil {
		return 0, false
	}
	return id, true
}

// Modify runs `task <ref> mod <words>`.
func (c *Client) Modify(ctx context.Context, ref string, words []string) error {
	args := append([]string{ref, "mod"}, words...)
	if _, _, err := c.Run(ctx, nil, args...); err != nil {
		return fmt.Errorf("modifying task %s: %w", ref, err)
	}
	return nil
}

// Save writes the given tasks back through `task import`, replacing the
// stored records. Read-only attributes (id, urgency) are stripped first.
func (c *Client) Save(ctx context.Context, tasks ...Task) error {
	if len(tasks) == 0 {
		return nil
	}
	payload := make([]Task, len(tasks))
	for i, t := range tasks {
		t.ID = 0
		t.Urgency = nil
		payload[i] = t
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding tasks for import: %w", err)
	}
	if _, _, err := c.Run(ctx, bytes.NewReader(b), "import", "-"); err != nil {
		return fmt.Errorf("saving tasks: %w", err)
	}
	return nil
}

// ParseTasks decodes the tasks in r, either a stream of objects (one per
// line, as `export rc.json.array=off` and hooks print them) or a JSON array.
func (c *Client) ParseTasks(r io.Reader) ([]Task, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read task json: %w", err)
	}
	data = bytes.TrimSpace(data)

	tasks := []Task{}
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &tasks); err != nil {
			return nil, fmt.Errorf("failed to decode task json: %w", err)
		}
		return tasks, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	for {
		var task Task
		if err := decoder.Decode(&task); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode task json: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
