package tui

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Azahorscak/dbmanager-tui/internal/api"
	"github.com/Azahorscak/dbmanager-tui/internal/schema"
	"github.com/Azahorscak/dbmanager-tui/internal/store"
)

// requestTimeout bounds every backend call issued by a view.
const requestTimeout = 30 * time.Second

// Backend is the subset of the API client used by the views.
type Backend interface {
	GetEntities(ctx context.Context, target, collection string, q *api.Query) (api.Page, error)
	UpdateEntity(ctx context.Context, target, collection, id string, fields api.Entity) (api.Entity, error)
	AddEntities(ctx context.Context, target, collection string, records []api.Entity) (api.AddResult, error)
}

// Deps are the collaborators shared by all views.
type Deps struct {
	Store    *store.Store
	Provider *schema.Provider
	Backend  Backend
	// Limit resolves the page size for a collection within a target.
	Limit    func(target, collection string) int
	Targets  []string
	Logger   *slog.Logger
	ReadOnly bool
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Logger
}

func (d Deps) limit(target, collection string) int {
	if d.Limit == nil {
		return 0
	}
	return d.Limit(target, collection)
}

// viewMsg is implemented by messages addressed to one view instance.
// Messages for a view that has since been closed are dropped.
type viewMsg interface {
	viewID() string
}

// stateMsg delivers a store state to a subscribed view.
type stateMsg struct {
	view  string
	state store.State
}

func (m stateMsg) viewID() string { return m.view }

// listen waits for the next state on sub. It yields nil once the
// subscription is closed.
func listen(view string, sub *store.Subscription) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		st, ok := <-sub.C()
		if !ok {
			return nil
		}
		return stateMsg{view: view, state: st}
	}
}
