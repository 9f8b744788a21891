package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("122"))
)

// Terminal is the interactive implementation of UI.
type Terminal struct{}

func (Terminal) Choose(title string, options []string) (int, error) {
	m := newMenuModel(title, options)
	result, err := tea.NewProgram(m).Run()
	if err != nil {
		return 0, fmt.Errorf("menu failed: %w", err)
	}
	final, ok := result.(menuModel)
	if !ok || !final.done {
		return 0, ErrAborted
	}
	return final.cursor, nil
}

func (Terminal) Input(prompt, placeholder string) (string, error) {
	m := newInputModel(prompt, placeholder)
	result, err := tea.NewProgram(m).Run()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	final, ok := result.(inputModel)
	if !ok || !final.done {
		return "", ErrAborted
	}
	return strings.TrimSpace(final.input.Value()), nil
}

// menuModel is a minimal arrow-key selection list.
type menuModel struct {
	title   string
	options []string
	cursor  int
	done    bool
}

func newMenuModel(title string, options []string) menuModel {
	return menuModel{title: title, options: options}
}

func (m menuModel) Init() tea.Cmd { return nil }

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "enter":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m menuModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title) + "\n\n")
	for i, opt := range m.options {
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> "+opt) + "\n")
		} else {
			b.WriteString("  " + opt + "\n")
		}
	}
	b.WriteString("\n↑/↓ move · enter select · esc back\n")
	return b.String()
}

// inputModel wraps a single textinput prompt.
type inputModel struct {
	prompt string
	input  textinput.Model
	done   bool
}

func newInputModel(prompt, placeholder string) inputModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 512
	ti.Focus()
	return inputModel{prompt: prompt, input: ti}
}

func (m inputModel) Init() tea.Cmd { return textinput.Blink }

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s: %s\n", m.prompt, m.input.View())
}
