package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Azahorscak/dbmanager-tui/internal/schema"
)

// menuItem is an entity type or the current-schedule entry.
type menuItem struct {
	entity   schema.EntityConfig
	schedule bool
}

func (i menuItem) Title() string {
	if i.schedule {
		return "Current " + i.entity.DisplayName()
	}
	return i.entity.DisplayName()
}

func (i menuItem) Description() string {
	if i.schedule {
		return "what is scheduled right now"
	}
	return fmt.Sprintf("%s, %d fields", i.entity.Plural, len(i.entity.Fields))
}

func (i menuItem) FilterValue() string { return i.Title() }

// openEntityMsg opens the list view for an entity type.
type openEntityMsg struct {
	entityID string
}

// openCurrentMsg opens the current-schedule view.
type openCurrentMsg struct{}

// backToTargetsMsg returns to the target picker.
type backToTargetsMsg struct{}

// MenuModel lists the entity types of the console.
type MenuModel struct {
	list   list.Model
	target string
}

// NewMenuModel creates the menu for reg within target.
func NewMenuModel(reg *schema.Registry, target string, width, height int) MenuModel {
	var items []list.Item
	if _, cfg, ok := reg.Schedule(); ok {
		items = append(items, menuItem{entity: cfg, schedule: true})
	}
	for _, cfg := range reg.Entities() {
		items = append(items, menuItem{entity: cfg})
	}

	if width == 0 {
		width, height = 80, 24
	}
	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = "Entities - " + sanitize(target)
	l.KeyMap.Quit = key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))
	switchTarget := key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "switch target"))
	l.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{switchTarget} }
	return MenuModel{list: l, target: target}
}

// Update handles messages for the menu view.
func (m MenuModel) Update(msg tea.Msg) (MenuModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() != list.Filtering {
			switch msg.String() {
			case "enter":
				item, ok := m.list.SelectedItem().(menuItem)
				if !ok {
					return m, nil
				}
				if item.schedule {
					return m, func() tea.Msg { return openCurrentMsg{} }
				}
				return m, func() tea.Msg { return openEntityMsg{entityID: item.entity.ID} }
			case "t":
				return m, func() tea.Msg { return backToTargetsMsg{} }
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the menu.
func (m MenuModel) View() string {
	return m.list.View()
}
