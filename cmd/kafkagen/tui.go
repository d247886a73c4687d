package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"

	"kafkagen/internal/prompt"
)

// ---------------------------------------------------------------------------
// TUI asker
// ---------------------------------------------------------------------------

var (
	promptStyle   = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	answeredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

// tuiAsker asks each question with its own bubbletea program.
type tuiAsker struct {
	in  io.Reader
	out io.Writer
}

func newTUIAsker(in io.Reader, out io.Writer) *tuiAsker {
	return &tuiAsker{in: in, out: out}
}

// Ask implements prompt.Asker.
func (a *tuiAsker) Ask(ctx context.Context, q prompt.Question) (prompt.Answer, error) {
	p := tea.NewProgram(newQuestionModel(q),
		tea.WithInput(a.in),
		tea.WithOutput(a.out),
		tea.WithContext(ctx))
	result, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return prompt.Answer{}, errors.Wrap(prompt.ErrCancelled, ctx.Err().Error())
		}
		return prompt.Answer{}, err
	}
	final, ok := result.(questionModel)
	if !ok || !final.done {
		return prompt.Answer{}, prompt.ErrCancelled
	}
	fmt.Fprintf(a.out, "%s %s\n", promptStyle.Render(q.Prompt), answeredStyle.Render(final.summary()))
	return final.answer, nil
}

// questionModel is a bubbletea model for one question.
type questionModel struct {
	q       prompt.Question
	cursor  int
	checked map[int]bool
	input   textinput.Model
	answer  prompt.Answer
	done    bool
}

func newQuestionModel(q prompt.Question) questionModel {
	m := questionModel{q: q, checked: map[int]bool{}}
	switch q.Kind {
	case prompt.Select:
		for i, c := range q.Choices {
			if c.Value == q.Default {
				m.cursor = i
			}
		}
	case prompt.Confirm:
		if yes, _ := strconv.ParseBool(q.Default); !yes {
			m.cursor = 1
		}
	case prompt.Number:
		ti := textinput.New()
		ti.Placeholder = q.Default
		ti.CharLimit = 12
		ti.Focus()
		m.input = ti
	}
	return m
}

// options returns what the cursor moves over.
func (m questionModel) options() []string {
	if m.q.Kind == prompt.Confirm {
		return []string{"Yes", "No"}
	}
	out := make([]string, len(m.q.Choices))
	for i, c := range m.q.Choices {
		out[i] = m.q.Label(c.Value)
	}
	return out
}

func (m questionModel) Init() tea.Cmd {
	if m.q.Kind == prompt.Number {
		return textinput.Blink
	}
	return nil
}

func (m questionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.q.Kind == prompt.Number {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		m.answer = m.resolve()
		m.done = true
		return m, tea.Quit
	}

	if m.q.Kind == prompt.Number {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	n := len(m.options())
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < n-1 {
			m.cursor++
		}
	case " ", "x":
		if m.q.Kind == prompt.MultiSelect {
			m.checked[m.cursor] = !m.checked[m.cursor]
		}
	case "y":
		if m.q.Kind == prompt.Confirm {
			m.cursor = 0
			m.answer = m.resolve()
			m.done = true
			return m, tea.Quit
		}
	case "n":
		if m.q.Kind == prompt.Confirm {
			m.cursor = 1
			m.answer = m.resolve()
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m questionModel) resolve() prompt.Answer {
	switch m.q.Kind {
	case prompt.Select:
		if len(m.q.Choices) == 0 {
			return prompt.Answer{}
		}
		return prompt.Answer{Selected: []string{m.q.Choices[m.cursor].Value}}
	case prompt.MultiSelect:
		sel := []string{}
		for i, c := range m.q.Choices {
			if m.checked[i] {
				sel = append(sel, c.Value)
			}
		}
		return prompt.Answer{Selected: sel}
	case prompt.Number:
		v := strings.TrimSpace(m.input.Value())
		if v == "" {
			v = m.q.Default
		}
		return prompt.Answer{Text: v}
	case prompt.Confirm:
		return prompt.Answer{Yes: m.cursor == 0}
	}
	return prompt.Answer{}
}

// summary is the one-line echo printed after the question is answered.
func (m questionModel) summary() string {
	switch m.q.Kind {
	case prompt.Select, prompt.MultiSelect:
		labels := make([]string, len(m.answer.Selected))
		for i, v := range m.answer.Selected {
			labels[i] = m.q.Label(v)
		}
		return strings.Join(labels, ", ")
	case prompt.Number:
		return m.answer.Text
	case prompt.Confirm:
		if m.answer.Yes {
			return "Yes"
		}
		return "No"
	}
	return ""
}

func (m questionModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(promptStyle.Render("? "+m.q.Prompt) + "\n")
	if m.q.Hint != "" {
		b.WriteString(hintStyle.Render("  "+m.q.Hint) + "\n")
	}

	if m.q.Kind == prompt.Number {
		b.WriteString("  " + m.input.View() + "\n")
		b.WriteString(helpStyle.Render("  enter to confirm, esc to cancel") + "\n")
		return b.String()
	}

	for i, opt := range m.options() {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		box := ""
		if m.q.Kind == prompt.MultiSelect {
			box = "[ ] "
			if m.checked[i] {
				box = "[x] "
			}
		}
		b.WriteString(cursor + box + opt + "\n")
	}
	help := "↑/↓ to move, enter to select"
	if m.q.Kind == prompt.MultiSelect {
		help = "↑/↓ to move, space to toggle, enter to confirm"
	}
	b.WriteString(helpStyle.Render("  "+help) + "\n")
	return b.String()
}
