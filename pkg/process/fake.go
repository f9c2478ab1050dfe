package process

import (
	"context"
	"io"
)

// Call records a single invocation seen by Fake.
type Call struct {
	Name  string
	Args  []string
	Stdin string
}

// Fake is a Runner for tests. Handler decides the result of each call;
// a nil Handler answers every call with an empty successful Result.
type Fake struct {
	Calls   []Call
	Handler func(call Call) (Result, error)
}

func (f *Fake) Run(ctx context.Context, stdin io.Reader, name string, args ...string) (Result, error) {
	call := Call{Name: name, Args: append([]string(nil), args...)}
	if stdin != nil {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return Result{}, err
		}
		call.Stdin = string(b)
	}
	f.Calls = append(f.Calls, call)
	if f.Handler == nil {
		return Result{}, nil
	}
	return f.Handler(call)
}
