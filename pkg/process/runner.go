package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

// Result holds the captured output of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner runs an external program to completion and captures its output.
// A non-zero exit is reported through Result.ExitCode, not as an error;
// err is reserved for failures to start or wait on the process.
type Runner interface {
	Run(ctx context.Context, stdin io.Reader, name string, args ...string) (Result, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Logger *log.Logger
}

func NewExecRunner(logger *log.Logger) *ExecRunner {
	return &ExecRunner{Logger: logger}
}

func (r *ExecRunner) Run(ctx context.Context, stdin io.Reader, name string, args ...string) (Result, error) {
	if _, err := exec.LookPath(name); err != nil {
		return Result{}, fmt.Errorf("%s not found in PATH: %w", name, err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if r.Logger != nil {
		r.Logger.Debug("running command", "name", name, "args", args)
	}

	err := cmd.Run()
	result := Result{}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("running %s: %w", name, err)
		}
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		result.ExitCode = exitErr.ExitCode()
	}

	if !utf8.Valid(stdout.Bytes()) {
		return Result{}, fmt.Errorf("%s wrote invalid UTF-8 to stdout", name)
	}
	if !utf8.Valid(stderr.Bytes()) {
		return Result{}, fmt.Errorf("%s wrote invalid UTF-8 to stderr", name)
	}
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if r.Logger != nil && result.ExitCode != 0 {
		r.Logger.Debug("command exited non-zero", "name", name, "code", result.ExitCode, "stderr", result.Stderr)
	}
	return result, nil
}
