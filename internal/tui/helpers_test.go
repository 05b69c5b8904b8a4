package tui

import (
	"reflect"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"

	"github.com/Azahorscak/dbmanager-tui/internal/api"
	"github.com/Azahorscak/dbmanager-tui/internal/backendtest"
	"github.com/Azahorscak/dbmanager-tui/internal/schema"
	"github.com/Azahorscak/dbmanager-tui/internal/store"
)

var testNow = time.Date(2026, 10, 17, 11, 30, 0, 0, time.UTC)

func testRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg, err := schema.NewRegistry([]schema.EntityConfig{
		{ID: "group", Plural: "groups", Fields: []schema.Field{{Name: "name", Required: true}}},
		{
			ID:             "user",
			Plural:         "users",
			EnableField:    "active",
			DefaultEnabled: true,
			Fields: []schema.Field{
				{Name: "name", Required: true},
				{Name: "age", Type: schema.TypeNumber},
				{Name: "group_id", Type: schema.TypeNumber, ForeignKey: "group"},
				{Name: "active", Type: schema.TypeBoolean, Required: true},
			},
		},
		{
			ID:     "shift",
			Plural: "shifts",
			Fields: []schema.Field{
				{Name: "user_id", ForeignKey: "user"},
				{Name: "starts_at", Type: schema.TypeDatetime},
				{Name: "ends_at", Type: schema.TypeDatetime},
			},
		},
	}, schema.ScheduleConfig{Entity: "shift", StartField: "starts_at", EndField: "ends_at"})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

// testDeps wires views to srv. The store is left nil so tests deliver
// target states explicitly.
func testDeps(t *testing.T, srv *backendtest.Server, readOnly bool) Deps {
	t.Helper()
	client := srv.Client()
	clock := clockwork.NewFakeClockAt(testNow)
	return Deps{
		Provider: schema.NewProvider(testRegistry(t), client, schema.WithClock(clock)),
		Backend:  client,
		Limit: func(target, collection string) int {
			if target == "prod" && collection == "users" {
				return 50
			}
			return 20
		},
		Targets:  []string{"prod", "staging"},
		ReadOnly: readOnly,
	}
}

func seedUsers(srv *backendtest.Server, target string, n int) {
	for i := 1; i <= n; i++ {
		srv.Seed(target, "users", api.Entity{
			"id":       i,
			"name":     "user" + string(rune('a'+(i-1)%26)),
			"age":      20 + i,
			"group_id": 1 + i%2,
			"active":   i%2 == 0,
		})
	}
}

var tuiPkg = reflect.TypeOf(stateMsg{}).PkgPath()

// run executes cmd, expanding batches, and returns the messages produced by
// this package. Foreign messages (spinner frames, quit) are discarded so
// nothing that sleeps is ever fed back.
func run(cmd tea.Cmd) []tea.Msg {
	var out []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			if reflect.TypeOf(msg).PkgPath() == tuiPkg {
				out = append(out, msg)
			}
		}
	}
	return out
}

// drive feeds the messages of cmd, and of every command they produce, back
// into m until it settles.
func drive(m EntitiesModel, cmd tea.Cmd) EntitiesModel {
	pending := run(cmd)
	for len(pending) > 0 {
		msg := pending[0]
		pending = pending[1:]
		var next tea.Cmd
		m, next = m.Update(msg)
		pending = append(pending, run(next)...)
	}
	return m
}

func driveCurrent(m CurrentModel, cmd tea.Cmd) CurrentModel {
	pending := run(cmd)
	for len(pending) > 0 {
		msg := pending[0]
		pending = pending[1:]
		var next tea.Cmd
		m, next = m.Update(msg)
		pending = append(pending, run(next)...)
	}
	return m
}

// activated returns an entity view for entityID that has loaded target.
func activated(t *testing.T, deps Deps, entityID, target string) EntitiesModel {
	t.Helper()
	m := NewEntitiesModel(deps, entityID, 120, 30)
	m, cmd := m.Update(stateMsg{view: m.id, state: store.State{Target: target}})
	return drive(m, cmd)
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+x":
		return tea.KeyMsg{Type: tea.KeyCtrlX}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "pgup":
		return tea.KeyMsg{Type: tea.KeyPgUp}
	case "pgdown":
		return tea.KeyMsg{Type: tea.KeyPgDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
