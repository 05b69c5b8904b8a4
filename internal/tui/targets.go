package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// targetItem implements list.DefaultItem for display in a bubbles/list.
type targetItem struct {
	name    string
	current bool
}

func (t targetItem) Title() string { return sanitize(t.name) }

func (t targetItem) Description() string {
	if t.current {
		return "selected"
	}
	return "target"
}

func (t targetItem) FilterValue() string { return sanitize(t.name) }

// selectTargetMsg makes target the selected target in the store.
type selectTargetMsg struct {
	target string
}

// TargetsModel handles the target-selection list view.
type TargetsModel struct {
	list list.Model
}

// NewTargetsModel creates the picker for targets, marking current.
func NewTargetsModel(targets []string, current string, width, height int) TargetsModel {
	items := make([]list.Item, len(targets))
	selected := 0
	for i, name := range targets {
		items[i] = targetItem{name: name, current: name == current}
		if name == current {
			selected = i
		}
	}

	if width == 0 {
		width, height = 80, 24
	}
	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = "Targets"
	l.KeyMap.Quit = key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))
	l.Select(selected)
	return TargetsModel{list: l}
}

// Update handles messages for the targets view.
func (m TargetsModel) Update(msg tea.Msg) (TargetsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "enter" && m.list.FilterState() != list.Filtering {
			if selected, ok := m.list.SelectedItem().(targetItem); ok {
				return m, func() tea.Msg {
					return selectTargetMsg{target: selected.name}
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the targets view.
func (m TargetsModel) View() string {
	if len(m.list.Items()) == 0 {
		return "\n  No targets configured.\n\n  Press Ctrl+C to quit.\n"
	}
	return m.list.View()
}
