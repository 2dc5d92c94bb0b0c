package viz

import (
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/plexus/internal/config"
)

var presetInfo = map[string]string{
	"default": "balanced lines and triangles",
	"dense":   "many points, short links",
	"sparse":  "few points, long links",
	"web":     "thick lines only",
	"minimal": "plain lines, batch renderer",
	"aurora":  "square bound, cycling colors",
	"stress":  "unit chain under load",
}

// menu picks a preset and then hands over to the live Model.
type menu struct {
	presets []string
	cursor  int
	logger  *slog.Logger
	live    *Model
	err     error
	size    tea.WindowSizeMsg
}

func newMenu(logger *slog.Logger) menu {
	return menu{presets: config.ListPresets(), logger: logger}
}

func (m menu) Init() tea.Cmd { return nil }

func (m menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.live != nil {
		next, cmd := m.live.Update(msg)
		live := next.(Model)
		m.live = &live
		return m, cmd
	}
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.size = msg
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.cursor = (m.cursor - 1 + len(m.presets)) % len(m.presets)
		case "down", "j":
			m.cursor = (m.cursor + 1) % len(m.presets)
		case "enter", " ":
			name := m.presets[m.cursor]
			live, err := NewModel(config.GetPreset(name), name, m.logger)
			if err != nil {
				m.err = err
				return m, nil
			}
			if m.size.Width > 0 {
				live.resize(m.size.Width-statsWidth-4, m.size.Height-2)
			}
			m.live = &live
			return m, live.Init()
		}
	}
	return m, nil
}

func (m menu) View() string {
	if m.live != nil {
		return m.live.View()
	}
	var b strings.Builder
	b.WriteString(menuTitle.Render(GradientText("PLEXUS", "#3f88c5", "#a3e7fc")) + "\n")
	for i, name := range m.presets {
		line := fmt.Sprintf("%-10s %s", name, presetInfo[name])
		if i == m.cursor {
			b.WriteString(menuSelected.Render("> "+line) + "\n")
		} else {
			b.WriteString(menuItem.Render("  "+line) + "\n")
		}
	}
	if m.err != nil {
		b.WriteString("\n" + sparkLow.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + menuHint.Render("↑↓ select · enter start · q quit"))
	return b.String()
}

// RunMenu shows the preset picker.
func RunMenu(logger *slog.Logger) error {
	_, err := tea.NewProgram(newMenu(logger), tea.WithAltScreen()).Run()
	return err
}
