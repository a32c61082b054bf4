// Package tui implements the interactive review screen shown by the
// -review flag: each pending hunk can be inspected and toggled before any
// edit is applied to the file.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sortpatch/sortpatch/pkg/diffedit"
)

// Review runs the hunk-selection UI and returns the accepted subset. The
// second result is false when the user aborted instead of confirming.
func Review(path string, snap diffedit.Snapshot, hunks []diffedit.Hunk) ([]diffedit.Hunk, bool, error) {
	if len(hunks) == 0 {
		return nil, true, nil
	}

	m := newModel(path, snap, hunks)
	program := tea.NewProgram(m, tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return nil, false, fmt.Errorf("tui: %w", err)
	}

	result, ok := final.(*model)
	if !ok || !result.confirmed {
		return nil, false, nil
	}
	accepted := make([]diffedit.Hunk, 0, len(hunks))
	for i, hunk := range hunks {
		if !result.skipped[i] {
			accepted = append(accepted, hunk)
		}
	}
	return accepted, true, nil
}

type model struct {
	path  string
	snap  diffedit.Snapshot
	hunks []diffedit.Hunk

	cursor    int
	skipped   map[int]bool
	confirmed bool

	vp     viewport.Model
	width  int
	height int
	ready  bool

	titleStyle  lipgloss.Style
	headerStyle lipgloss.Style
	addStyle    lipgloss.Style
	delStyle    lipgloss.Style
	activeStyle lipgloss.Style
	helpStyle   lipgloss.Style
	skipStyle   lipgloss.Style
}

func newModel(path string, snap diffedit.Snapshot, hunks []diffedit.Hunk) *model {
	return &model{
		path:    path,
		snap:    snap,
		hunks:   hunks,
		skipped: make(map[int]bool),
		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")),
		headerStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		addStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("40")),
		delStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
		activeStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("129")).
			PaddingLeft(1).
			PaddingRight(1),
		helpStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		skipStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true),
	}
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		chromeHeight := 4 // title, blank line, help, padding
		if !m.ready {
			m.vp = viewport.Model{Width: msg.Width, Height: msg.Height - chromeHeight}
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = msg.Height - chromeHeight
		}
		m.vp.SetContent(m.renderHunks())
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "down", "j":
			if m.cursor < len(m.hunks)-1 {
				m.cursor++
			}
			m.vp.SetContent(m.renderHunks())
			return m, nil
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			m.vp.SetContent(m.renderHunks())
			return m, nil
		case " ":
			m.skipped[m.cursor] = !m.skipped[m.cursor]
			m.vp.SetContent(m.renderHunks())
			return m, nil
		case "enter":
			m.confirmed = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m *model) View() string {
	if !m.ready {
		return "loading…"
	}
	accepted := 0
	for i := range m.hunks {
		if !m.skipped[i] {
			accepted++
		}
	}
	title := m.titleStyle.Render(fmt.Sprintf("%s — %d/%d hunks selected", m.path, accepted, len(m.hunks)))
	help := m.helpStyle.Render("j/k move · space toggle · enter apply · q abort")
	return title + "\n\n" + m.vp.View() + "\n" + help
}

func (m *model) renderHunks() string {
	var sections []string
	for i, hunk := range m.hunks {
		sections = append(sections, m.renderHunk(i, hunk))
	}
	return strings.Join(sections, "\n\n")
}

func (m *model) renderHunk(index int, hunk diffedit.Hunk) string {
	var body strings.Builder

	marker := "[apply]"
	if m.skipped[index] {
		marker = "[skip]"
	}
	body.WriteString(m.headerStyle.Render(fmt.Sprintf("hunk %d %s lines %d-%d", index+1, marker, hunk.OrigStart+1, hunk.OrigStart+hunk.OrigLines)))
	body.WriteString("\n")

	lines := m.snap.Lines()
	for i := hunk.OrigStart; i < hunk.OrigStart+hunk.OrigLines && i < len(lines); i++ {
		body.WriteString(m.delStyle.Render("- " + lines[i]))
		body.WriteString("\n")
	}
	for _, line := range hunk.NewLines {
		body.WriteString(m.addStyle.Render("+ " + line))
		body.WriteString("\n")
	}

	text := strings.TrimRight(body.String(), "\n")
	if m.skipped[index] {
		text = m.skipStyle.Render(text)
	}
	if index == m.cursor {
		return m.activeStyle.Width(max(20, m.width-4)).Render(text)
	}
	return text
}
