package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/modsync/pkg/mods"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m VersionPicker, keys ...string) (VersionPicker, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(VersionPicker)
	}
	return m, cmd
}

var pickerReleases = []mods.Release{
	{Version: "1.3.0-beta", GameVersions: []string{"1.20.4"}},
	{Version: "1.2.0", GameVersions: []string{"1.20.4"}},
	{Version: "1.1.0", GameVersions: []string{"1.20.3"}},
}

func TestVersionPickerStartsOnInstalled(t *testing.T) {
	m := NewVersionPicker("Ruins", pickerReleases, "1.2.0", "")
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1", m.Cursor)
	}
	m = NewVersionPicker("Ruins", pickerReleases, "1.2.0", "1.1.0")
	if m.Cursor != 2 {
		t.Errorf("Cursor = %d, want locked row 2", m.Cursor)
	}
}

func TestVersionPickerSelect(t *testing.T) {
	m := NewVersionPicker("Ruins", pickerReleases, "", "")
	m, cmd := press(m, "down", "down", "down", "up", "enter")
	if m.Selected == nil || m.Selected.Version != "1.2.0" {
		t.Fatalf("Selected = %+v, want 1.2.0", m.Selected)
	}
	if cmd == nil {
		t.Error("enter should quit the program")
	}
}

func TestVersionPickerQuit(t *testing.T) {
	m := NewVersionPicker("Ruins", pickerReleases, "", "")
	m, cmd := press(m, "j", "q")
	if m.Selected != nil {
		t.Errorf("Selected = %+v, want nil after quit", m.Selected)
	}
	if cmd == nil {
		t.Error("q should quit the program")
	}
}

func TestVersionPickerView(t *testing.T) {
	view := NewVersionPicker("Ruins", pickerReleases, "1.2.0", "1.1.0").View()
	for _, want := range []string{"Pin Ruins", "1.3.0-beta", "installed", "locked", "[3/3]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}
