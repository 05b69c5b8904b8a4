package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Azahorscak/dbmanager-tui/internal/api"
	"github.com/Azahorscak/dbmanager-tui/internal/schema"
)

// filterOption is one field/value pair offered by the filter picker.
type filterOption struct {
	label string
	field string
	value any
}

func (o filterOption) Title() string { return o.label }

func (o filterOption) Description() string {
	if o.field == "" {
		return "clear the filter"
	}
	return fmt.Sprintf("%s = %s", o.field, sanitize(api.IDString(o.value)))
}

func (o filterOption) FilterValue() string { return o.label }

// filterSelectedMsg applies the chosen filter option.
type filterSelectedMsg struct {
	view  string
	field string
	value any
}

func (m filterSelectedMsg) viewID() string { return m.view }

// filterOptions lists the filters available for cfg: one entry per loaded
// foreign-key value and yes/no for each boolean field, after "All".
func filterOptions(cfg schema.EntityConfig, fks schema.ForeignKeys) []filterOption {
	opts := []filterOption{{label: "All", value: filterAll}}
	for _, f := range cfg.Fields {
		switch {
		case f.IsForeignKey():
			set, ok := fks.For(f.ForeignKey)
			if !ok {
				continue
			}
			for _, e := range set.Entities {
				opts = append(opts, filterOption{
					label: fmt.Sprintf("%s: %s", f.Name, sanitize(set.Label(e[api.IDField]))),
					field: f.Name,
					value: e[api.IDField],
				})
			}
		case f.Type == schema.TypeBoolean:
			opts = append(opts,
				filterOption{label: f.Name + ": Yes", field: f.Name, value: 1},
				filterOption{label: f.Name + ": No", field: f.Name, value: 0},
			)
		}
	}
	return opts
}

// filterModel is the filter picker shown over the entity table.
type filterModel struct {
	view string
	list list.Model
}

func newFilterModel(view string, cfg schema.EntityConfig, fks schema.ForeignKeys, current *api.Filter, width, height int) filterModel {
	opts := filterOptions(cfg, fks)
	items := make([]list.Item, len(opts))
	selected := 0
	for i, o := range opts {
		items[i] = o
		if current != nil && o.field == current.Field && api.IDString(o.value) == api.IDString(current.Value) {
			selected = i
		}
	}

	if width == 0 {
		width = 80
	}
	l := list.New(items, list.NewDefaultDelegate(), width, max(height, 10))
	l.Title = "Filter " + cfg.DisplayName()
	l.Select(selected)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	return filterModel{view: view, list: l}
}

// filtering reports whether the list's own fuzzy filter has the keyboard.
func (m filterModel) filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m filterModel) Update(msg tea.Msg) (filterModel, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "enter" && !m.filtering() {
		if o, ok := m.list.SelectedItem().(filterOption); ok {
			view := m.view
			return m, func() tea.Msg {
				return filterSelectedMsg{view: view, field: o.field, value: o.value}
			}
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m filterModel) View() string {
	return m.list.View()
}
