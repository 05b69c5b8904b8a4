package tui

import "github.com/charmbracelet/bubbles/key"

// listKeyMap is the key map of the entity table.
type listKeyMap struct {
	Edit   key.Binding
	Toggle key.Binding
	Filter key.Binding
	Search key.Binding
	Next   key.Binding
	Prev   key.Binding
	Add    key.Binding
	Reload key.Binding
	Back   key.Binding
}

func newListKeyMap(readOnly bool) listKeyMap {
	km := listKeyMap{
		Edit:   key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("e", "edit")),
		Toggle: key.NewBinding(key.WithKeys(" ", "t"), key.WithHelp("t", "toggle")),
		Filter: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		Search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Next:   key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "next page")),
		Prev:   key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p/←", "prev page")),
		Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Back:   key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q/esc", "back")),
	}
	if readOnly {
		km.Edit.SetEnabled(false)
		km.Toggle.SetEnabled(false)
		km.Add.SetEnabled(false)
	}
	return km
}

func (k listKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Toggle, k.Filter, k.Search, k.Next, k.Prev, k.Add, k.Reload, k.Back}
}

func (k listKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// formKeyMap is shared by the edit and add forms.
type formKeyMap struct {
	Next    key.Binding
	Save    key.Binding
	Cancel  key.Binding
	NewRow  key.Binding
	DelRow  key.Binding
	NextRow key.Binding
	PrevRow key.Binding
}

func newEditKeyMap() formKeyMap {
	return formKeyMap{
		Next:   key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
		Save:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

func newAddKeyMap() formKeyMap {
	return formKeyMap{
		Next:    key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
		Save:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save all")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		NewRow:  key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new entry")),
		DelRow:  key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "remove entry")),
		NextRow: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "next entry")),
		PrevRow: key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "prev entry")),
	}
}

func (k formKeyMap) ShortHelp() []key.Binding {
	var out []key.Binding
	for _, b := range []key.Binding{k.Next, k.NewRow, k.DelRow, k.PrevRow, k.NextRow, k.Save, k.Cancel} {
		if len(b.Keys()) > 0 {
			out = append(out, b)
		}
	}
	return out
}

func (k formKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
