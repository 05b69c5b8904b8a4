// Package tui implements the Bubble Tea terminal UI.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// View represents which screen is currently active.
type View int

const (
	ViewTargets View = iota
	ViewMenu
	ViewEntities
	ViewCurrent
)

// Model is the root Bubble Tea model.
type Model struct {
	currentView View
	deps        Deps
	targets     TargetsModel
	menu        MenuModel
	entities    EntitiesModel
	current     CurrentModel
	width       int
	height      int
}

// New creates the root model. It opens on the entity menu when the store
// already holds a target and on the target picker otherwise.
func New(deps Deps) Model {
	m := Model{deps: deps}
	st := deps.Store.State()
	if st.HasTarget() {
		m.currentView = ViewMenu
		m.menu = NewMenuModel(deps.Provider.Registry, st.Target, 0, 0)
	} else {
		m.currentView = ViewTargets
		m.targets = NewTargetsModel(deps.Targets, "", 0, 0)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// CurrentView returns the active screen.
func (m Model) CurrentView() View {
	return m.currentView
}

// closeActive tears down the subscriptions of the active data view.
func (m Model) closeActive() {
	switch m.currentView {
	case ViewEntities:
		m.entities.Close()
	case ViewCurrent:
		m.current.Close()
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.closeActive()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// fall through so the active sub-model also receives the resize

	case selectTargetMsg:
		m.deps.Store.SetTarget(msg.target)
		m.deps.logger().Info("target selected", "target", msg.target)
		m.currentView = ViewMenu
		m.menu = NewMenuModel(m.deps.Provider.Registry, msg.target, m.width, m.height)
		return m, nil

	case backToTargetsMsg:
		m.closeActive()
		m.currentView = ViewTargets
		m.targets = NewTargetsModel(m.deps.Targets, m.deps.Store.State().Target, m.width, m.height)
		return m, nil

	case openEntityMsg:
		m.closeActive()
		m.currentView = ViewEntities
		m.entities = NewEntitiesModel(m.deps, msg.entityID, m.width, m.height)
		return m, m.entities.Init()

	case openCurrentMsg:
		m.closeActive()
		m.currentView = ViewCurrent
		m.current = NewCurrentModel(m.deps, m.width, m.height)
		return m, m.current.Init()

	case backToMenuMsg:
		m.closeActive()
		m.currentView = ViewMenu
		return m, nil

	case viewMsg:
		var cmd tea.Cmd
		switch {
		case m.currentView == ViewEntities && msg.viewID() == m.entities.id:
			m.entities, cmd = m.entities.Update(msg)
		case m.currentView == ViewCurrent && msg.viewID() == m.current.id:
			m.current, cmd = m.current.Update(msg)
		default:
			m.deps.logger().Debug("dropping message for closed view", "view", msg.viewID())
		}
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.currentView {
	case ViewTargets:
		m.targets, cmd = m.targets.Update(msg)
	case ViewMenu:
		m.menu, cmd = m.menu.Update(msg)
	case ViewEntities:
		m.entities, cmd = m.entities.Update(msg)
	case ViewCurrent:
		m.current, cmd = m.current.Update(msg)
	}
	return m, cmd
}

func (m Model) View() string {
	switch m.currentView {
	case ViewMenu:
		return m.menu.View()
	case ViewEntities:
		return m.entities.View()
	case ViewCurrent:
		return m.current.View()
	default:
		return m.targets.View()
	}
}
