package menu

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrisonrobin/taskmenu/pkg/process"
)

func TestNew(t *testing.T) {
	p, err := New(Options{})
	require.NoError(t, err)
	assert.IsType(t, &Rofi{}, p)

	p, err = New(Options{Backend: BackendDmenu})
	require.NoError(t, err)
	assert.IsType(t, &Dmenu{}, p)

	p, err = New(Options{Backend: BackendTerminal})
	require.NoError(t, err)
	assert.IsType(t, &Terminal{}, p)

	_, err = New(Options{Backend: "zenity"})
	assert.Error(t, err)
}

func TestSelect(t *testing.T) {
	s := &Scripted{Replies: []Reply{{Pick: "two"}}}
	items := []Labeled[int]{{Label: "one", Item: 1}, {Label: "two", Item: 2}}

	got, err := Select(context.Background(), s, "pick", items)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
	assert.Equal(t, []string{"pick"}, s.Prompts)
	assert.Equal(t, [][]string{{"one", "two"}}, s.Shown)
}

func TestSelectCancelled(t *testing.T) {
	s := &Scripted{Replies: []Reply{{Cancel: true}}}
	_, err := Select(context.Background(), s, "pick", Strings("a", "b"))
	assert.True(t, errors.Is(err, ErrCancelled))
}

type indexPicker int

func (p indexPicker) Choose(context.Context, string, []string) (int, error) { return int(p), nil }
func (p indexPicker) Input(context.Context, string, []string) (string, error) {
	return "", nil
}
func (p indexPicker) Message(context.Context, string) error { return nil }

func TestSelectOutOfRange(t *testing.T) {
	_, err := Select(context.Background(), indexPicker(5), "pick", Strings("a"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func rofiFake(stdout string, code int) *process.Fake {
	return &process.Fake{Handler: func(call process.Call) (process.Result, error) {
		return process.Result{Stdout: stdout, ExitCode: code}, nil
	}}
}

func TestRofiChoose(t *testing.T) {
	fake := rofiFake("1\n", 0)
	r := &Rofi{Runner: fake, Args: []string{"-theme", "gruvbox"}}

	idx, err := r.Choose(context.Background(), "Choose an action", []string{"List", "Add\nmore"})
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	call := fake.Calls[0]
	assert.Equal(t, "rofi", call.Name)
	assert.Equal(t, []string{"-dmenu", "-i", "-no-custom", "-p", "Choose an action", "-format", "i", "-theme", "gruvbox"}, call.Args)
	assert.Equal(t, "List\nAdd more", call.Stdin)
}

func TestRofiCancel(t *testing.T) {
	r := &Rofi{Runner: rofiFake("", 1)}
	_, err := r.Choose(context.Background(), "p", []string{"a"})
	assert.ErrorIs(t, err, ErrCancelled)

	_, err = r.Input(context.Background(), "p", nil)
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestRofiFailure(t *testing.T) {
	fake := &process.Fake{Handler: func(call process.Call) (process.Result, error) {
		return process.Result{Stderr: "cannot open display", ExitCode: 65}, nil
	}}
	_, err := (&Rofi{Runner: fake}).Choose(context.Background(), "p", []string{"a"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCancelled))
	assert.Contains(t, err.Error(), "cannot open display")
}

func TestRofiInput(t *testing.T) {
	fake := rofiFake("buy milk -- note\n", 0)
	r := &Rofi{Runner: fake}
	text, err := r.Input(context.Background(), "task -- annotation", nil)
	require.NoError(t, err)
	assert.Equal(t, "buy milk -- note", text)
	assert.Equal(t, []string{"-dmenu", "-p", "task -- annotation", "-format", "s", "-l", "0"}, fake.Calls[0].Args)

	fake = rofiFake("tomorrow\n", 0)
	r = &Rofi{Runner: fake}
	_, err = r.Input(context.Background(), "Wait until?", []string{"tomorrow", "1h"})
	require.NoError(t, err)
	assert.Equal(t, []string{"-dmenu", "-p", "Wait until?", "-format", "s"}, fake.Calls[0].Args)
	assert.Equal(t, "tomorrow\n1h", fake.Calls[0].Stdin)
}

func TestRofiMessage(t *testing.T) {
	fake := rofiFake("", 0)
	require.NoError(t, (&Rofi{Runner: fake}).Message(context.Background(), "Error: boom"))
	assert.Equal(t, []string{"-e", "Error: boom"}, fake.Calls[0].Args)
}

func TestDmenuChooseMapsText(t *testing.T) {
	labels := []string{"[ 1] Buy milk", "[ 2] Call mom", "[ 3] Write report"}
	fake := rofiFake("[ 2] Call mom\n", 0)
	idx, err := (&Dmenu{Runner: fake}).Choose(context.Background(), "Choose a task", labels)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, []string{"-i", "-p", "Choose a task"}, fake.Calls[0].Args)

	fake = rofiFake("report\n", 0)
	idx, err = (&Dmenu{Runner: fake}).Choose(context.Background(), "Choose a task", labels)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	fake = rofiFake("zzzz\n", 0)
	_, err = (&Dmenu{Runner: fake}).Choose(context.Background(), "Choose a task", labels)
	assert.Error(t, err)
}

func TestDmenuCancel(t *testing.T) {
	_, err := (&Dmenu{Runner: rofiFake("", 1)}).Choose(context.Background(), "p", []string{"a"})
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestRank(t *testing.T) {
	labels := []string{"Add", "Delete", "Done", "Annotate"}
	assert.Equal(t, []int{0, 1, 2, 3}, Rank("", labels))

	ranked := Rank("dn", labels)
	require.NotEmpty(t, ranked)
	assert.Equal(t, 2, ranked[0])
	assert.NotContains(t, ranked, 0)

	assert.Empty(t, Rank("xyz", labels))
}

func TestRankIgnoresCaseOfLabels(t *testing.T) {
	labels := []string{"Add", "Delete", "Done", "Annotate", "[ 2] Buy milk"}
	assert.Equal(t, []int{2}, Rank("dn", labels))
	assert.Equal(t, []int{4}, Rank("buy", labels))

	idx, ok := BestMatch("done", labels)
	require.True(t, ok)
	assert.Equal(t, 2, idx)

	// an uppercase query matches case-sensitively
	assert.Empty(t, Rank("BUY", labels))
}

func TestDmenuChooseFuzzyFallback(t *testing.T) {
	labels := []string{"[ 1] Buy milk", "[ 2] Call mom", "[ 3] Write report"}
	fake := rofiFake("call\n", 0)
	idx, err := (&Dmenu{Runner: fake}).Choose(context.Background(), "Choose a task", labels)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	actions := []string{"List", "Add", "Done", "Start", "Stop", "Delete"}
	fake = rofiFake("stp\n", 0)
	idx, err = (&Dmenu{Runner: fake}).Choose(context.Background(), "Choose an action", actions)
	require.NoError(t, err)
	assert.Equal(t, 4, idx)
}

func TestBestMatchPrefersExact(t *testing.T) {
	labels := []string{"Done", "Done later"}
	idx, ok := BestMatch("Done later", labels)
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	idx, ok = BestMatch("  Done ", labels)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func feed(m tea.Model, msgs ...tea.Msg) pickerModel {
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m.(pickerModel)
}

func TestPickerModelFiltersAndChooses(t *testing.T) {
	m := newPickerModel("Choose an action", []string{"List", "Add", "Done", "Delete"}, false)
	m = feed(m, key("d"), key("l"))
	require.NotEmpty(t, m.matches)
	assert.Equal(t, 3, m.matches[0])

	m = feed(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.cancelled)
	assert.Equal(t, 3, m.choice)
}

func TestPickerModelNavigation(t *testing.T) {
	m := newPickerModel("p", []string{"a", "b", "c"}, false)
	m = feed(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyUp})
	m = feed(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 1, m.choice)
}

func TestPickerModelCancel(t *testing.T) {
	m := newPickerModel("p", []string{"a"}, false)
	m = feed(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, m.cancelled)
}

func TestPickerModelFreeText(t *testing.T) {
	suggestions := []string{"tomorrow", "1h", "monday"}

	m := newPickerModel("Wait until?", suggestions, true)
	m = feed(m, key("friday"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "friday", m.text)

	m = newPickerModel("Wait until?", suggestions, true)
	m = feed(m, key("mo"), tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, suggestions[m.matches[0]], m.text)

	m = newPickerModel("Wait until?", suggestions, true)
	m = feed(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "tomorrow", m.text)
}

func TestPickerModelView(t *testing.T) {
	m := newPickerModel("Choose a task", []string{"one", "two"}, false)
	view := m.View()
	assert.True(t, strings.Contains(view, "Choose a task"))
	assert.True(t, strings.Contains(view, "two"))
}
