package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/recjit/record"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	padStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB86C"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type browserState int

const (
	stateBrowse browserState = iota
	stateFilter
)

type browserModel struct {
	rt       *record.Type
	filename string
	rows     []layoutRow
	visible  []int
	filter   textinput.Model
	selected int
	state    browserState
}

func newBrowserModel(filename string, rt *record.Type) *browserModel {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "field name"
	ti.Width = 30

	m := &browserModel{
		rt:       rt,
		filename: filename,
		rows:     layoutRows(rt),
		filter:   ti,
	}
	m.applyFilter()
	return m
}

func (m *browserModel) Init() tea.Cmd {
	return nil
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.state == stateFilter {
		switch key.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "enter":
			m.filter.Blur()
			m.state = stateBrowse
			return m, nil
		case "esc":
			m.filter.SetValue("")
			m.filter.Blur()
			m.state = stateBrowse
			m.applyFilter()
			return m, nil
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.applyFilter()
		return m, cmd
	}

	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.visible)-1 {
			m.selected++
		}
	case "/":
		m.state = stateFilter
		return m, m.filter.Focus()
	case "esc":
		m.filter.SetValue("")
		m.applyFilter()
	}
	return m, nil
}

func (m *browserModel) applyFilter() {
	q := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for i, r := range m.rows {
		if q == "" || strings.Contains(strings.ToLower(r.name), q) {
			m.visible = append(m.visible, i)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (m *browserModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Record Layout"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	mode := "aligned"
	if m.rt.Packed() {
		mode = "packed"
	}
	fmt.Fprintf(&b, "%s, size %d, align %d, %d fields\n\n", mode, m.rt.Size(), m.rt.Align(), m.rt.NumFields())

	if len(m.visible) == 0 {
		b.WriteString("No fields match.\n")
	}
	for i, idx := range m.visible {
		line := m.formatRow(m.rows[idx])
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if m.selected < len(m.visible) {
		r := m.rows[m.visible[m.selected]]
		b.WriteString("\n")
		fmt.Fprintf(&b, "bytes [%d, %d)", r.offset, r.offset+r.size)
		if r.padding > 0 {
			b.WriteString(padStyle.Render(fmt.Sprintf("  %d padding bytes before", r.padding)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.state == stateFilter {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter apply • esc clear"))
	} else {
		b.WriteString(helpStyle.Render("↑/↓ select • / filter • q quit"))
	}
	return b.String()
}

func (m *browserModel) formatRow(r layoutRow) string {
	return fmt.Sprintf("%-16s %s @%d", r.name, kindStyle.Render(r.kind), r.offset)
}
