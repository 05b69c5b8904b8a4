package tui

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/Azahorscak/dbmanager-tui/internal/api"
	"github.com/Azahorscak/dbmanager-tui/internal/schema"
	"github.com/Azahorscak/dbmanager-tui/internal/store"
)

// filterAll is the filter value that clears the filter.
const filterAll = "--FILTER_ALL--"

// entitiesMode is the sub-screen of the entity view.
type entitiesMode int

const (
	modeList entitiesMode = iota
	modeEdit
	modeAdd
	modeFilter
	modeSearch
)

// foreignKeysLoadedMsg carries the reference collections of an activation.
type foreignKeysLoadedMsg struct {
	view       string
	activation int
	fks        schema.ForeignKeys
	err        error
}

// entitiesLoadedMsg carries one primary page.
type entitiesLoadedMsg struct {
	view string
	seq  int
	page api.Page
	err  error
}

// entitySavedMsg reports the outcome of an inline edit.
type entitySavedMsg struct {
	view   string
	id     string
	index  int
	fields api.Entity
	err    error
}

// entityToggledMsg reports the outcome of a toggle.
type entityToggledMsg struct {
	view  string
	id    string
	field string
	value bool
	err   error
}

// entitiesAddedMsg reports the outcome of a bulk add.
type entitiesAddedMsg struct {
	view  string
	count int
	err   error
}

// backToMenuMsg closes the active view.
type backToMenuMsg struct{}

func (m foreignKeysLoadedMsg) viewID() string { return m.view }
func (m entitiesLoadedMsg) viewID() string    { return m.view }
func (m entitySavedMsg) viewID() string       { return m.view }
func (m entityToggledMsg) viewID() string     { return m.view }
func (m entitiesAddedMsg) viewID() string     { return m.view }

// addEntry is one staged new entity.
type addEntry struct {
	key  string
	form Form
}

// EntitiesModel lists one entity collection of the selected target and
// drives filtering, search, paging, inline edits, toggles and bulk adds.
type EntitiesModel struct {
	id       string
	deps     Deps
	logger   *slog.Logger
	sub      *store.Subscription
	entityID string

	target     string
	config     schema.EntityConfig
	known      bool
	activation int
	fks        schema.ForeignKeys

	entities    []api.Entity
	total       int
	query       api.Query
	fetchSeq    int
	loadingList bool
	loading     map[string]bool

	edits   map[string]Form
	editing string

	adds          []addEntry
	addFocus      int
	addSaving     bool
	added         int
	addedThisSave int

	mode    entitiesMode
	table   table.Model
	spinner spinner.Model
	filter  filterModel
	search  textinput.Model
	help    help.Model
	keys    listKeyMap
	width   int
	height  int
}

// NewEntitiesModel creates the view for the entity config with the given id
// (the route parameter) and subscribes it to the store.
func NewEntitiesModel(deps Deps, entityID string, width, height int) EntitiesModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	search := textinput.New()
	search.Placeholder = "search"
	search.CharLimit = 256
	search.Width = 40

	t := table.New(table.WithHeight(tableHeight(height)), table.WithWidth(width))
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	t.SetStyles(s)
	t.Focus()

	m := EntitiesModel{
		id:       uuid.NewString(),
		deps:     deps,
		logger:   deps.logger().With("view", "entities", "entity", entityID),
		entityID: entityID,
		loading:  map[string]bool{},
		edits:    map[string]Form{},
		table:    t,
		spinner:  sp,
		search:   search,
		help:     help.New(),
		keys:     newListKeyMap(deps.ReadOnly),
		width:    width,
		height:   height,
	}
	if deps.Store != nil {
		m.sub = deps.Store.Subscribe()
	}
	return m
}

func tableHeight(h int) int {
	if h == 0 {
		h = 24
	}
	return max(h-8, 3)
}

// Init waits for the first store state.
func (m EntitiesModel) Init() tea.Cmd {
	return listen(m.id, m.sub)
}

// Close unsubscribes the view from the store. Requests already in flight
// complete, but their results are dropped by the root model.
func (m EntitiesModel) Close() {
	if m.sub != nil {
		m.sub.Close()
	}
}

// activate resolves the entity config for target and starts loading.
func (m EntitiesModel) activate(target string) (EntitiesModel, tea.Cmd) {
	m.target = target
	m.activation++
	m.edits = map[string]Form{}
	m.editing = ""
	m.loading = map[string]bool{}
	m.entities = nil
	m.total = 0
	m.query = api.Query{}
	m.adds = nil
	m.addFocus = 0
	m.addSaving = false
	m.added = 0
	m.addedThisSave = 0
	m.mode = modeList
	m.fks = schema.ForeignKeys{}
	m.rebuildTable()

	cfg, ok := m.deps.Provider.Entity(m.entityID)
	m.known = ok
	if !ok {
		m.loadingList = false
		m.logger.Warn("unknown entity type")
		return m, nil
	}
	m.config = cfg
	m.adds = []addEntry{m.blankEntry()}
	m.query.Limit = m.deps.limit(target, cfg.Plural)
	m.loadingList = true
	return m, tea.Batch(m.spinner.Tick, m.loadForeignKeys())
}

func (m EntitiesModel) loadForeignKeys() tea.Cmd {
	provider := m.deps.Provider
	view, activation, target, cfg := m.id, m.activation, m.target, m.config
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		fks, err := provider.LoadForeignKeys(ctx, target, cfg)
		return foreignKeysLoadedMsg{view: view, activation: activation, fks: fks, err: err}
	}
}

// fetch issues the primary page request for the current query. Only the
// response to the latest request is applied.
func (m EntitiesModel) fetch() (EntitiesModel, tea.Cmd) {
	m.fetchSeq++
	m.loadingList = true

	backend := m.deps.Backend
	view, seq, target, coll := m.id, m.fetchSeq, m.target, m.config.Plural
	q := m.query
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		page, err := backend.GetEntities(ctx, target, coll, &q)
		return entitiesLoadedMsg{view: view, seq: seq, page: page, err: err}
	}
}

// applyFilter replaces the filter; filterAll or an empty field clears it.
func (m EntitiesModel) applyFilter(field string, value any) (EntitiesModel, tea.Cmd) {
	if !m.known {
		return m, nil
	}
	if s, ok := value.(string); field == "" || (ok && s == filterAll) {
		m.query.Filter = nil
	} else {
		m.query.Filter = &api.Filter{Field: field, Value: value}
	}
	m.query.Offset = 0
	return m.fetch()
}

// applySearch replaces the search term.
func (m EntitiesModel) applySearch(term string) (EntitiesModel, tea.Cmd) {
	if !m.known {
		return m, nil
	}
	m.query.Search = strings.TrimSpace(term)
	m.query.Offset = 0
	return m.fetch()
}

// nextPage advances by one page. The backend decides what lies beyond the
// end, including empty pages.
func (m EntitiesModel) nextPage() (EntitiesModel, tea.Cmd) {
	if !m.known {
		return m, nil
	}
	m.query.Offset += m.query.Limit
	return m.fetch()
}

// prevPage goes back one page. At offset 0 it is a no-op and issues no
// request; offsets past the end are left for the backend to answer.
func (m EntitiesModel) prevPage() (EntitiesModel, tea.Cmd) {
	if !m.known || m.query.Offset == 0 {
		return m, nil
	}
	m.query.Offset -= m.query.Limit
	return m.fetch()
}

// startEdit stages an edit buffer for the row at index and opens it. An
// existing buffer for the same record is reused.
func (m EntitiesModel) startEdit(index int) EntitiesModel {
	if m.deps.ReadOnly || index < 0 || index >= len(m.entities) {
		return m
	}
	e := m.entities[index]
	id := e.ID()
	if _, ok := m.edits[id]; !ok {
		m.edits[id] = NewForm(m.config, e, m.fks)
	}
	m.editing = id
	m.mode = modeEdit
	m.rebuildTable()
	return m
}

// cancelEdit discards the buffer of id.
func (m EntitiesModel) cancelEdit(id string) EntitiesModel {
	delete(m.edits, id)
	if m.editing == id {
		m.editing = ""
		m.mode = modeList
	}
	m.rebuildTable()
	return m
}

// saveEdit sends the buffered values of id as a partial update.
func (m EntitiesModel) saveEdit(id string) (EntitiesModel, tea.Cmd) {
	form, ok := m.edits[id]
	if !ok || m.loading[id] {
		return m, nil
	}
	update := form.Values()
	index := m.indexOf(id)
	m.loading[id] = true
	if m.editing == id {
		m.editing = ""
		m.mode = modeList
	}
	m.rebuildTable()

	backend := m.deps.Backend
	view, target, coll := m.id, m.target, m.config.Plural
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		_, err := backend.UpdateEntity(ctx, target, coll, id, update)
		return entitySavedMsg{view: view, id: id, index: index, fields: update, err: err}
	}
}

// toggle flips the toggle field of the row at index without opening a form.
func (m EntitiesModel) toggle(index int) (EntitiesModel, tea.Cmd) {
	if m.deps.ReadOnly || index < 0 || index >= len(m.entities) {
		return m, nil
	}
	field, ok := m.config.ToggleField()
	if !ok {
		return m, nil
	}
	e := m.entities[index]
	id := e.ID()
	value := !schema.Truthy(e[field.Name])
	encoded := 0
	if value {
		encoded = 1
	}

	backend := m.deps.Backend
	view, target, coll := m.id, m.target, m.config.Plural
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		_, err := backend.UpdateEntity(ctx, target, coll, id, api.Entity{field.Name: encoded})
		return entityToggledMsg{view: view, id: id, field: field.Name, value: value, err: err}
	}
}

func (m EntitiesModel) blankEntry() addEntry {
	return addEntry{key: uuid.NewString(), form: NewForm(m.config, nil, m.fks)}
}

// appendEntry appends a blank entry to the batch and focuses it.
func (m EntitiesModel) appendEntry() EntitiesModel {
	m.adds = append(append([]addEntry(nil), m.adds...), m.blankEntry())
	m.addFocus = len(m.adds) - 1
	return m
}

// removeEntry drops the entry at index from the batch.
func (m EntitiesModel) removeEntry(index int) EntitiesModel {
	if index < 0 || index >= len(m.adds) {
		return m
	}
	adds := make([]addEntry, 0, len(m.adds)-1)
	adds = append(adds, m.adds[:index]...)
	adds = append(adds, m.adds[index+1:]...)
	m.adds = adds
	if m.addFocus >= len(m.adds) {
		m.addFocus = max(len(m.adds)-1, 0)
	}
	return m
}

// saveAll submits the whole batch in one call once every entry passes the
// required-field checks.
func (m EntitiesModel) saveAll() (EntitiesModel, tea.Cmd) {
	if m.deps.ReadOnly || m.addSaving || len(m.adds) == 0 {
		return m, nil
	}
	valid := true
	adds := make([]addEntry, len(m.adds))
	for i, a := range m.adds {
		var ok bool
		a.form, ok = a.form.Validate()
		valid = valid && ok
		adds[i] = a
	}
	m.adds = adds
	if !valid {
		return m, nil
	}

	records := make([]api.Entity, len(m.adds))
	for i, a := range m.adds {
		records[i] = a.form.Values()
	}
	m.addSaving = true

	backend := m.deps.Backend
	view, target, coll := m.id, m.target, m.config.Plural
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		_, err := backend.AddEntities(ctx, target, coll, records)
		return entitiesAddedMsg{view: view, count: len(records), err: err}
	}
}

func (m EntitiesModel) indexOf(id string) int {
	for i, e := range m.entities {
		if e.ID() == id {
			return i
		}
	}
	return -1
}

// EditingIDs returns the ids of records with a staged edit buffer.
func (m EntitiesModel) EditingIDs() []string {
	ids := make([]string, 0, len(m.edits))
	for id := range m.edits {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Update handles messages for the entity view.
func (m EntitiesModel) Update(msg tea.Msg) (EntitiesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(tableHeight(msg.Height))
		if m.mode == modeFilter {
			m.filter.list.SetSize(msg.Width, tableHeight(msg.Height))
		}
		return m, nil

	case spinner.TickMsg:
		if m.loadingList {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case stateMsg:
		next := listen(m.id, m.sub)
		if !msg.state.HasTarget() {
			return m, next
		}
		var cmd tea.Cmd
		m, cmd = m.activate(msg.state.Target)
		return m, tea.Batch(cmd, next)

	case foreignKeysLoadedMsg:
		if msg.activation != m.activation {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Error("loading foreign keys", "target", m.target, "error", msg.err)
		}
		m.fks = msg.fks
		if m.fks == nil {
			m.fks = schema.ForeignKeys{}
		}
		m.adds = []addEntry{m.blankEntry()}
		m.addFocus = 0
		return m.fetch()

	case entitiesLoadedMsg:
		if msg.seq != m.fetchSeq {
			m.logger.Debug("dropping stale page", "seq", msg.seq, "latest", m.fetchSeq)
			return m, nil
		}
		m.loadingList = false
		if msg.err != nil {
			m.logger.Error("loading entities", "target", m.target, "error", msg.err)
			return m, nil
		}
		m.entities = msg.page.Entities
		m.total = msg.page.Total
		m.rebuildTable()
		return m, nil

	case entitySavedMsg:
		delete(m.loading, msg.id)
		delete(m.edits, msg.id)
		if m.editing == msg.id {
			m.editing = ""
			m.mode = modeList
		}
		if api.IsNotFound(msg.err) {
			m.logger.Warn("entity no longer exists", "id", msg.id, "target", m.target)
			m.rebuildTable()
			return m, nil
		}
		if msg.err != nil {
			m.logger.Error("entity not updated", "id", msg.id, "error", msg.err)
			m.rebuildTable()
			return m, nil
		}
		index := msg.index
		if index < 0 || index >= len(m.entities) || m.entities[index].ID() != msg.id {
			index = m.indexOf(msg.id)
		}
		if index >= 0 {
			row := api.Entity{api.IDField: m.entities[index][api.IDField]}
			for k, v := range msg.fields {
				row[k] = v
			}
			entities := append([]api.Entity(nil), m.entities...)
			entities[index] = row
			m.entities = entities
		}
		m.rebuildTable()
		return m, nil

	case entityToggledMsg:
		if msg.err != nil {
			m.logger.Error("toggle failed", "id", msg.id, "field", msg.field, "error", msg.err)
			return m, nil
		}
		if i := m.indexOf(msg.id); i >= 0 {
			row := m.entities[i].Clone()
			row[msg.field] = msg.value
			entities := append([]api.Entity(nil), m.entities...)
			entities[i] = row
			m.entities = entities
			m.rebuildTable()
		}
		return m, nil

	case entitiesAddedMsg:
		m.addSaving = false
		if msg.err != nil {
			m.logger.Error("entities not added", "count", msg.count, "error", msg.err)
			return m, nil
		}
		m.added += msg.count
		m.addedThisSave = msg.count
		m.adds = []addEntry{m.blankEntry()}
		m.addFocus = 0
		return m, nil

	case filterSelectedMsg:
		m.mode = modeList
		return m.applyFilter(msg.field, msg.value)

	case tea.KeyMsg:
		switch m.mode {
		case modeEdit:
			return m.updateEdit(msg)
		case modeAdd:
			return m.updateAdd(msg)
		case modeFilter:
			return m.updateFilter(msg)
		case modeSearch:
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}

	return m, nil
}

func (m EntitiesModel) updateList(msg tea.KeyMsg) (EntitiesModel, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		return m, func() tea.Msg { return backToMenuMsg{} }
	}
	if !m.known || m.loadingList && len(m.entities) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Edit):
		return m.startEdit(m.table.Cursor()), nil
	case key.Matches(msg, m.keys.Toggle):
		return m.toggle(m.table.Cursor())
	case key.Matches(msg, m.keys.Filter):
		m.filter = newFilterModel(m.id, m.config, m.fks, m.query.Filter, m.width, tableHeight(m.height))
		m.mode = modeFilter
		return m, nil
	case key.Matches(msg, m.keys.Search):
		m.search.SetValue(m.query.Search)
		m.search.Focus()
		m.mode = modeSearch
		return m, nil
	case key.Matches(msg, m.keys.Next):
		return m.nextPage()
	case key.Matches(msg, m.keys.Prev):
		return m.prevPage()
	case key.Matches(msg, m.keys.Add):
		m.mode = modeAdd
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		return m.fetch()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m EntitiesModel) updateEdit(msg tea.KeyMsg) (EntitiesModel, tea.Cmd) {
	id := m.editing
	switch msg.String() {
	case "esc":
		return m.cancelEdit(id), nil
	case "ctrl+s":
		return m.saveEdit(id)
	}
	form, ok := m.edits[id]
	if !ok {
		m.mode = modeList
		return m, nil
	}
	var cmd tea.Cmd
	form, cmd = form.Update(msg)
	m.edits[id] = form
	return m, cmd
}

func (m EntitiesModel) updateAdd(msg tea.KeyMsg) (EntitiesModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		return m, nil
	case "ctrl+s":
		return m.saveAll()
	case "ctrl+n":
		return m.appendEntry(), nil
	case "ctrl+x":
		return m.removeEntry(m.addFocus), nil
	case "pgdown":
		if len(m.adds) > 0 {
			m.addFocus = (m.addFocus + 1) % len(m.adds)
		}
		return m, nil
	case "pgup":
		if len(m.adds) > 0 {
			m.addFocus = (m.addFocus - 1 + len(m.adds)) % len(m.adds)
		}
		return m, nil
	}
	if m.addFocus >= len(m.adds) {
		return m, nil
	}
	adds := append([]addEntry(nil), m.adds...)
	var cmd tea.Cmd
	adds[m.addFocus].form, cmd = adds[m.addFocus].form.Update(msg)
	m.adds = adds
	return m, cmd
}

func (m EntitiesModel) updateFilter(msg tea.KeyMsg) (EntitiesModel, tea.Cmd) {
	if s := msg.String(); (s == "esc" || s == "q") && !m.filter.filtering() {
		m.mode = modeList
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return m, cmd
}

func (m EntitiesModel) updateSearch(msg tea.KeyMsg) (EntitiesModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.Blur()
		m.mode = modeList
		return m, nil
	case "enter":
		m.search.Blur()
		m.mode = modeList
		return m.applySearch(m.search.Value())
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// rebuildTable renders the current page into the table.
func (m *EntitiesModel) rebuildTable() {
	cols := []table.Column{{Title: "id", Width: 6}}
	for _, f := range m.config.Fields {
		cols = append(cols, table.Column{Title: f.Name, Width: max(len(f.Name), 6)})
	}

	rows := make([]table.Row, len(m.entities))
	for i, e := range m.entities {
		id := e.ID()
		marker := ""
		if _, editing := m.edits[id]; editing {
			marker = "* "
		}
		if m.loading[id] {
			marker = "… "
		}
		row := table.Row{marker + sanitize(id)}
		cols[0].Width = min(max(cols[0].Width, len(row[0])), 40)
		for j, f := range m.config.Fields {
			v := sanitize(m.fks.Display(f, e[f.Name]))
			row = append(row, v)
			cols[j+1].Width = min(max(cols[j+1].Width, len(v)), 40)
		}
		rows[i] = row
	}

	cursor := m.table.Cursor()
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	if cursor >= len(rows) {
		cursor = len(rows) - 1
	}
	m.table.SetCursor(max(cursor, 0))
}

var (
	entitiesHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Padding(0, 0, 1, 2)

	entitiesInfoStyle = lipgloss.NewStyle().
				Faint(true).
				Padding(0, 0, 0, 2)

	entitiesHelpStyle = lipgloss.NewStyle().
				Padding(1, 0, 0, 2)

	entitiesTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57")).
				Padding(0, 1)
)

// View renders the entity view.
func (m EntitiesModel) View() string {
	if m.target == "" {
		return "\n  Waiting for a target...\n"
	}
	if !m.known {
		return fmt.Sprintf("\n  Unknown entity type %q.\n\n  Press q to go back.\n", m.entityID)
	}

	switch m.mode {
	case modeEdit:
		return m.viewEdit()
	case modeAdd:
		return m.viewAdd()
	case modeFilter:
		return m.filter.View()
	}

	header := entitiesHeaderStyle.Render(fmt.Sprintf("%s - %s", m.config.DisplayName(), m.target))

	if m.loadingList && len(m.entities) == 0 {
		return header + "\n" + fmt.Sprintf("  %s Loading %s...\n", m.spinner.View(), m.config.Plural)
	}

	info := fmt.Sprintf("showing %d-%d of %d", m.query.Offset+min(1, len(m.entities)), m.query.Offset+len(m.entities), m.total)
	if m.query.Filter != nil {
		f, _ := m.config.Field(m.query.Filter.Field)
		info += fmt.Sprintf(" | filter: %s = %s", m.query.Filter.Field, sanitize(m.fks.Display(f, m.query.Filter.Value)))
	}
	if m.query.Search != "" {
		info += fmt.Sprintf(" | search: %q", sanitize(m.query.Search))
	}
	if m.added > 0 {
		info += fmt.Sprintf(" | added: %d", m.added)
	}
	if ids := m.EditingIDs(); len(ids) > 0 {
		info += " | editing: " + sanitize(strings.Join(ids, ", "))
	}
	if m.loadingList {
		info += " | " + m.spinner.View()
	}

	body := m.table.View()
	if m.mode == modeSearch {
		body = "  Search: " + m.search.View() + "\n\n" + body
	}

	return header + "\n" +
		entitiesInfoStyle.Render(info) + "\n" +
		body + "\n" +
		entitiesHelpStyle.Render(m.help.View(m.keys))
}

func (m EntitiesModel) viewEdit() string {
	form, ok := m.edits[m.editing]
	if !ok {
		return ""
	}
	title := entitiesTitleStyle.Render(fmt.Sprintf(" Edit %s %s ", m.config.DisplayName(), sanitize(m.editing)))
	return lipgloss.JoinVertical(lipgloss.Left,
		entitiesHeaderStyle.Render(title+"  "+m.target),
		form.View(),
		entitiesHelpStyle.Render(m.help.View(newEditKeyMap())),
	)
}

func (m EntitiesModel) viewAdd() string {
	title := entitiesTitleStyle.Render(fmt.Sprintf(" Add %s ", m.config.DisplayName()))
	status := fmt.Sprintf("entry %d of %d", min(m.addFocus+1, len(m.adds)), len(m.adds))
	if m.addSaving {
		status += " | saving..."
	}
	if m.addedThisSave > 0 {
		status += fmt.Sprintf(" | added %d (total %d)", m.addedThisSave, m.added)
	}
	invalid := 0
	for _, a := range m.adds {
		if len(a.form.Errors()) > 0 {
			invalid++
		}
	}
	if invalid > 0 {
		status += fmt.Sprintf(" | %d invalid", invalid)
	}

	var form string
	if m.addFocus < len(m.adds) {
		form = m.adds[m.addFocus].form.View()
	} else {
		form = entitiesInfoStyle.Render("no entries, press ctrl+n to add one")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		entitiesHeaderStyle.Render(title+"  "+m.target),
		entitiesInfoStyle.Render(status),
		"",
		form,
		entitiesHelpStyle.Render(m.help.View(newAddKeyMap())),
	)
}
