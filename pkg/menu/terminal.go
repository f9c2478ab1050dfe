package menu

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	promptStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	dimStyle      = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Terminal is an in-process picker drawn on the controlling terminal.
// Typing filters the list with fuzzy matching; Esc or Ctrl-C cancels.
type Terminal struct {
	// Options are passed to tea.NewProgram, mainly for tests.
	Options []tea.ProgramOption
}

func (t *Terminal) run(ctx context.Context, model tea.Model) (tea.Model, error) {
	opts := append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(os.Stderr), tea.WithAltScreen()}, t.Options...)
	final, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("terminal menu: %w", err)
	}
	return final, nil
}

func (t *Terminal) Choose(ctx context.Context, prompt string, labels []string) (int, error) {
	final, err := t.run(ctx, newPickerModel(prompt, labels, false))
	if err != nil {
		return 0, err
	}
	m := final.(pickerModel)
	if m.cancelled {
		return 0, ErrCancelled
	}
	return m.choice, nil
}

func (t *Terminal) Input(ctx context.Context, prompt string, suggestions []string) (string, error) {
	final, err := t.run(ctx, newPickerModel(prompt, suggestions, true))
	if err != nil {
		return "", err
	}
	m := final.(pickerModel)
	if m.cancelled {
		return "", ErrCancelled
	}
	return m.text, nil
}

func (t *Terminal) Message(ctx context.Context, text string) error {
	_, err := t.run(ctx, messageModel{text: text})
	if errors.Is(err, ErrCancelled) {
		return nil
	}
	return err
}

type pickerModel struct {
	prompt    string
	labels    []string
	freeText  bool
	input     textinput.Model
	matches   []int
	cursor    int
	navigated bool
	height    int

	cancelled bool
	choice    int
	text      string
}

func newPickerModel(prompt string, labels []string, freeText bool) pickerModel {
	in := textinput.New()
	in.Prompt = "> "
	in.Focus()
	return pickerModel{
		prompt:   prompt,
		labels:   labels,
		freeText: freeText,
		input:    in,
		matches:  Rank("", labels),
		height:   20,
	}
}

func (m pickerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-3, 1)
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc, tea.KeyCtrlC:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyUp, tea.KeyCtrlP:
			if m.cursor > 0 {
				m.cursor--
			}
			m.navigated = true
			return m, nil
		case tea.KeyDown, tea.KeyCtrlN, tea.KeyTab:
			if m.cursor < len(m.matches)-1 {
				m.cursor++
			}
			m.navigated = true
			return m, nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.matches = Rank(m.input.Value(), m.labels)
		m.cursor = 0
		m.navigated = false
	}
	return m, cmd
}

func (m pickerModel) submit() (tea.Model, tea.Cmd) {
	typed := m.input.Value()
	if m.freeText {
		switch {
		case m.navigated && len(m.matches) > 0:
			m.text = m.labels[m.matches[m.cursor]]
		case typed != "":
			m.text = typed
		case len(m.matches) > 0:
			m.text = m.labels[m.matches[m.cursor]]
		}
		return m, tea.Quit
	}
	if len(m.matches) == 0 {
		return m, nil
	}
	m.choice = m.matches[m.cursor]
	return m, tea.Quit
}

func (m pickerModel) View() string {
	var b strings.Builder
	b.WriteString(promptStyle.Render(m.prompt))
	b.WriteString(" ")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	start := 0
	if m.cursor >= m.height {
		start = m.cursor - m.height + 1
	}
	end := min(start+m.height, len(m.matches))
	for i := start; i < end; i++ {
		label := m.labels[m.matches[i]]
		if i == m.cursor {
			b.WriteString(selectedStyle.Render(label))
		} else {
			b.WriteString(label)
		}
		b.WriteString("\n")
	}
	if len(m.matches) == 0 && !m.freeText {
		b.WriteString(dimStyle.Render("no matches"))
		b.WriteString("\n")
	}
	return b.String()
}

type messageModel struct {
	text string
}

func (m messageModel) Init() tea.Cmd { return nil }

func (m messageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		return m, tea.Quit
	}
	return m, nil
}

func (m messageModel) View() string {
	return errorStyle.Render(m.text) + "\n" + dimStyle.Render("press any key") + "\n"
}
