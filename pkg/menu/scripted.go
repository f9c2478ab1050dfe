package menu

import (
	"context"
	"fmt"
	"strings"
)

// Reply is one scripted answer for Scripted.
type Reply struct {
	// Pick selects the first label containing this text (Choose only).
	Pick   string
	Text   string
	Cancel bool
	Err    error
}

// Scripted is a Picker that answers from a fixed list of replies and
// records what it was shown. It stands in for a real menu in tests.
type Scripted struct {
	Replies  []Reply
	Prompts  []string
	Shown    [][]string
	Messages []string
}

func (s *Scripted) next(prompt string, labels []string) (Reply, error) {
	s.Prompts = append(s.Prompts, prompt)
	s.Shown = append(s.Shown, append([]string(nil), labels...))
	if len(s.Replies) == 0 {
		return Reply{}, fmt.Errorf("no scripted reply for prompt %q", prompt)
	}
	r := s.Replies[0]
	s.Replies = s.Replies[1:]
	if r.Cancel {
		return r, ErrCancelled
	}
	return r, r.Err
}

func (s *Scripted) Choose(ctx context.Context, prompt string, labels []string) (int, error) {
	r, err := s.next(prompt, labels)
	if err != nil {
		return 0, err
	}
	for i, l := range labels {
		if strings.Contains(l, r.Pick) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("scripted pick %q not among %d labels", r.Pick, len(labels))
}

func (s *Scripted) Input(ctx context.Context, prompt string, suggestions []string) (string, error) {
	r, err := s.next(prompt, suggestions)
	if err != nil {
		return "", err
	}
	return r.Text, nil
}

func (s *Scripted) Message(ctx context.Context, text string) error {
	s.Messages = append(s.Messages, text)
	return nil
}
