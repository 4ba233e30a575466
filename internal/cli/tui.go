package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/modsync/pkg/mods"
	"github.com/matzehuels/modsync/pkg/version"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// VersionPicker - Interactive release selection for pin
// =============================================================================

// VersionPicker is the bubbletea model that lets the user choose the release
// a mod is locked to.
type VersionPicker struct {
	Title    string
	Releases []mods.Release
	Current  string
	Locked   string
	Cursor   int
	Selected *mods.Release
	Height   int
	Offset   int
}

// NewVersionPicker creates a picker with the cursor on the locked release,
// or the installed one, if listed.
func NewVersionPicker(title string, releases []mods.Release, current, locked string) VersionPicker {
	m := VersionPicker{Title: title, Releases: releases, Current: current, Locked: locked, Height: 10}
	for i, r := range releases {
		if r.Version == locked || (locked == "" && r.Version == current) {
			m.Cursor = i
			break
		}
	}
	if m.Cursor >= m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	return m
}

func (m VersionPicker) Init() tea.Cmd {
	return nil
}

func (m VersionPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Releases)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Releases) == 0 {
				return m, tea.Quit
			}
			r := m.Releases[m.Cursor]
			m.Selected = &r
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 3)
	}
	return m, nil
}

func (m VersionPicker) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Pin " + m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ pin  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Releases))
	for i := m.Offset; i < end; i++ {
		r := m.Releases[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		var tags []string
		if r.Version == m.Current {
			tags = append(tags, "installed")
		}
		if r.Version == m.Locked {
			tags = append(tags, "locked")
		}
		line := fmt.Sprintf("%s%-16s %-28s %s", cursor, r.Version, version.JoinList(r.GameVersions), strings.Join(tags, ", "))

		switch {
		case i == m.Cursor:
			b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Render(line))
		case r.Prerelease():
			b.WriteString(listDimStyle.Render(line))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(colorWhite).Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Releases))))
	return b.String()
}
