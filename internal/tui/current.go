package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/Azahorscak/dbmanager-tui/internal/api"
	"github.com/Azahorscak/dbmanager-tui/internal/schema"
	"github.com/Azahorscak/dbmanager-tui/internal/store"
)

// pollInterval is how often the current view refreshes.
const pollInterval = 60 * time.Second

// scheduleRefsLoadedMsg carries the schedule entity's reference data.
type scheduleRefsLoadedMsg struct {
	view       string
	activation int
	fks        schema.ForeignKeys
	err        error
}

// currentLoadedMsg carries the active schedule item for target.
type currentLoadedMsg struct {
	view   string
	target string
	item   api.Entity
	found  bool
	err    error
}

// currentTickMsg fires every pollInterval.
type currentTickMsg struct {
	view string
	at   time.Time
}

func (m scheduleRefsLoadedMsg) viewID() string { return m.view }
func (m currentLoadedMsg) viewID() string      { return m.view }
func (m currentTickMsg) viewID() string        { return m.view }

// CurrentModel shows the schedule item active at the local time.
type CurrentModel struct {
	id     string
	deps   Deps
	logger *slog.Logger
	sub    *store.Subscription

	target     string
	activation int
	config     schema.ScheduleConfig
	entity     schema.EntityConfig
	configured bool
	fks        schema.ForeignKeys

	current api.Entity
	found   bool
	now     time.Time
	loading bool
	ticking bool
	polls   int

	// every schedules the next tick; tea.Tick outside tests.
	every func(time.Duration, func(time.Time) tea.Msg) tea.Cmd

	spinner spinner.Model
	width   int
	height  int
}

// NewCurrentModel creates the current-schedule view and subscribes it to
// the store.
func NewCurrentModel(deps Deps, width, height int) CurrentModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := CurrentModel{
		id:      uuid.NewString(),
		deps:    deps,
		logger:  deps.logger().With("view", "current"),
		every:   tea.Tick,
		spinner: sp,
		width:   width,
		height:  height,
	}
	m.config, m.entity, m.configured = deps.Provider.Schedule()
	if deps.Store != nil {
		m.sub = deps.Store.Subscribe()
	}
	return m
}

// Init waits for the first store state.
func (m CurrentModel) Init() tea.Cmd {
	return listen(m.id, m.sub)
}

// Close unsubscribes the view. The tick chain stops with it because its
// messages are no longer routed here.
func (m CurrentModel) Close() {
	if m.sub != nil {
		m.sub.Close()
	}
}

func (m CurrentModel) loadRefs() tea.Cmd {
	provider := m.deps.Provider
	view, activation, target := m.id, m.activation, m.target
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		fks, err := provider.LoadScheduleForeignKeys(ctx, target)
		return scheduleRefsLoadedMsg{view: view, activation: activation, fks: fks, err: err}
	}
}

func (m CurrentModel) loadCurrent() tea.Cmd {
	provider := m.deps.Provider
	view, target, now := m.id, m.target, m.now
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		item, found, err := provider.LoadCurrentScheduledItem(ctx, target, now)
		return currentLoadedMsg{view: view, target: target, item: item, found: found, err: err}
	}
}

func (m CurrentModel) tick() tea.Cmd {
	view := m.id
	return m.every(pollInterval, func(t time.Time) tea.Msg {
		return currentTickMsg{view: view, at: t}
	})
}

// Update handles messages for the current view.
func (m CurrentModel) Update(msg tea.Msg) (CurrentModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case stateMsg:
		next := listen(m.id, m.sub)
		if !msg.state.HasTarget() || !m.configured {
			return m, next
		}
		m.target = msg.state.Target
		m.activation++
		m.current, m.found = nil, false
		m.loading = true
		return m, tea.Batch(next, m.spinner.Tick, m.loadRefs())

	case scheduleRefsLoadedMsg:
		if msg.activation != m.activation {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Error("loading schedule references", "target", m.target, "error", msg.err)
		}
		m.fks = msg.fks
		m.now = m.deps.Provider.Now()
		cmds := []tea.Cmd{m.loadCurrent()}
		if !m.ticking {
			m.ticking = true
			cmds = append(cmds, m.tick())
		}
		return m, tea.Batch(cmds...)

	case currentLoadedMsg:
		if msg.target != m.target {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.logger.Error("loading current item", "target", m.target, "error", msg.err)
			return m, nil
		}
		m.current, m.found = msg.item, msg.found
		return m, nil

	case currentTickMsg:
		m.polls++
		m.now = m.deps.Provider.Now()
		m.logger.Debug("refreshing current item", "target", m.target, "poll", m.polls)
		return m, tea.Batch(m.loadCurrent(), m.tick())

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc":
			return m, func() tea.Msg { return backToMenuMsg{} }
		}
	}
	return m, nil
}

var (
	currentHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Padding(0, 0, 1, 2)

	currentClockStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Padding(0, 0, 1, 2)

	currentBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("57")).
			Padding(0, 1).
			MarginLeft(2)

	currentLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Width(16)

	currentHintStyle = lipgloss.NewStyle().
				Faint(true).
				Padding(1, 0, 0, 2)
)

// View renders the current view.
func (m CurrentModel) View() string {
	if !m.configured {
		return "\n  No schedule is configured.\n\n  Press q to go back.\n"
	}
	if m.target == "" {
		return "\n  Waiting for a target...\n"
	}

	var b strings.Builder
	b.WriteString(currentHeaderStyle.Render(fmt.Sprintf("Current %s - %s", m.entity.DisplayName(), m.target)))
	b.WriteString("\n")
	if !m.now.IsZero() {
		b.WriteString(currentClockStyle.Render(fmt.Sprintf("Now: %s (UTC%s)", m.now.Format(schema.DateFormat), m.now.Format("-07:00"))))
		b.WriteString("\n")
	}

	switch {
	case m.loading && m.current == nil:
		b.WriteString(fmt.Sprintf("  %s Loading...\n", m.spinner.View()))
	case !m.found:
		b.WriteString("  Nothing is scheduled right now.\n")
	default:
		rows := []string{currentLabelStyle.Render("id") + sanitize(m.current.ID())}
		for _, f := range m.entity.Fields {
			rows = append(rows, currentLabelStyle.Render(f.Name)+sanitize(m.fks.Display(f, m.current[f.Name])))
		}
		b.WriteString(currentBoxStyle.Render(strings.Join(rows, "\n")))
		b.WriteString("\n")
	}

	b.WriteString(currentHintStyle.Render(fmt.Sprintf("refreshes every %s | q/esc: back", pollInterval)))
	return b.String()
}
