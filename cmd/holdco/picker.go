package main

import (
	"errors"
	"fmt"
	"strings"

	"holdco/internal/game"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var errPickCancelled = errors.New("choice cancelled")

var (
	pickerTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	pickerSelected = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	pickerMuted    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	pickerNegative = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

type pickerKeys struct {
	Up     key.Binding
	Down   key.Binding
	Choose key.Binding
	Quit   key.Binding
}

var defaultPickerKeys = pickerKeys{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Choose: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "choose")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "cancel")),
}

// choicePicker is a one-screen selector over the choices of a pending event.
type choicePicker struct {
	event  game.GameEvent
	cash   int64
	cursor int
	keys   pickerKeys
	picked string
	done   bool
}

func newChoicePicker(ev game.GameEvent, cash int64) choicePicker {
	return choicePicker{event: ev, cash: cash, keys: defaultPickerKeys}
}

func (m choicePicker) Init() tea.Cmd { return nil }

func (m choicePicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, m.keys.Quit):
		m.done = true
		return m, tea.Quit
	case key.Matches(km, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, m.keys.Down):
		if m.cursor < len(m.event.Choices)-1 {
			m.cursor++
		}
	case key.Matches(km, m.keys.Choose):
		c := m.event.Choices[m.cursor]
		if c.Cost > m.cash {
			return m, nil
		}
		m.picked = c.Action
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m choicePicker) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(pickerTitle.Render(m.event.Title))
	b.WriteString("\n\n")
	for i, c := range m.event.Choices {
		line := c.Label
		if c.Cost > 0 {
			line += " (" + formatMoney(c.Cost) + ")"
		}
		style := lipgloss.NewStyle()
		switch {
		case c.Cost > m.cash:
			style = pickerMuted
			line += " - not enough cash"
		case c.Variant == "negative":
			style = pickerNegative
		}
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
			style = pickerSelected
		}
		b.WriteString(cursor + style.Render(line) + "\n")
	}
	help := []string{}
	for _, k := range []key.Binding{m.keys.Up, m.keys.Down, m.keys.Choose, m.keys.Quit} {
		h := k.Help()
		help = append(help, fmt.Sprintf("%s %s", h.Key, h.Desc))
	}
	b.WriteString("\n" + pickerMuted.Render(strings.Join(help, " • ")) + "\n")
	return b.String()
}

// pickChoice runs the interactive selector and returns the chosen action.
func pickChoice(ev game.GameEvent, cash int64) (string, error) {
	final, err := tea.NewProgram(newChoicePicker(ev, cash)).Run()
	if err != nil {
		return "", err
	}
	m, ok := final.(choicePicker)
	if !ok || m.picked == "" {
		return "", errPickCancelled
	}
	return m.picked, nil
}
