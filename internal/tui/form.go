package tui

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Azahorscak/dbmanager-tui/internal/api"
	"github.com/Azahorscak/dbmanager-tui/internal/schema"
)

// choice is one selectable foreign-key value.
type choice struct {
	label string
	value any
}

// formField is the input state of one entity field. raw keeps the
// snapshotted value so an untouched field is submitted exactly as loaded.
type formField struct {
	field     schema.Field
	raw       any
	snapshot  bool
	wasNil    bool
	input     textinput.Model
	area      textarea.Model
	multiline bool
	initial   string
	checked   bool
	defaulted bool
	toggled   bool
	options   []choice
	choice    int
}

// Form is a staged buffer of field values for one entity, driven by its
// EntityConfig. It backs both inline edits and bulk-add entries.
type Form struct {
	fields  []formField
	focused int
	errs    map[string]string
}

// NewForm snapshots values into a form for cfg. A nil values map yields a
// blank form. Missing required boolean fields start at cfg.DefaultEnabled
// when the entity has an enablement field.
func NewForm(cfg schema.EntityConfig, values api.Entity, fks schema.ForeignKeys) Form {
	f := Form{fields: make([]formField, len(cfg.Fields))}
	for i, field := range cfg.Fields {
		v := values[field.Name]
		ff := formField{field: field, raw: v, snapshot: values != nil, wasNil: v == nil}

		switch {
		case field.Type == schema.TypeBoolean:
			if v == nil && field.Required && cfg.EnableField != "" {
				ff.checked = cfg.DefaultEnabled
				ff.defaulted = true
			} else {
				ff.checked = schema.Truthy(v)
			}

		case field.IsForeignKey():
			ff.options = []choice{{label: "(none)"}}
			if set, ok := fks.For(field.ForeignKey); ok {
				for _, e := range set.Entities {
					ff.options = append(ff.options, choice{label: sanitize(set.Label(e[api.IDField])), value: e[api.IDField]})
				}
			}
			ff.choice = 0
			if v != nil {
				id := api.IDString(v)
				ff.choice = -1
				for j, c := range ff.options {
					if j > 0 && api.IDString(c.value) == id {
						ff.choice = j
						break
					}
				}
				if ff.choice < 0 {
					ff.options = append(ff.options, choice{label: sanitize(id), value: v})
					ff.choice = len(ff.options) - 1
				}
			}

		case isMultiline(v):
			ta := textarea.New()
			ta.Placeholder = field.Name
			ta.CharLimit = 0
			ta.MaxHeight = 0
			ta.ShowLineNumbers = false
			ta.SetWidth(48)
			text := stripANSI(v.(string))
			ta.SetHeight(min(strings.Count(text, "\n")+1, 6))
			ta.SetValue(text)
			ff.area = ta
			ff.multiline = true
			ff.initial = ta.Value()

		default:
			in := textinput.New()
			in.Placeholder = field.Name
			in.CharLimit = 0
			in.Width = 48
			in.SetValue(sanitize(api.IDString(v)))
			ff.input = in
			ff.initial = in.Value()
		}
		f.fields[i] = ff
	}
	f.updateFocus()
	return f
}

func isMultiline(v any) bool {
	s, ok := v.(string)
	return ok && strings.ContainsAny(s, "\r\n")
}

// Update handles navigation and input for the focused field. Up and down
// move between lines inside a multi-line field.
func (f Form) Update(msg tea.Msg) (Form, tea.Cmd) {
	if len(f.fields) == 0 {
		return f, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		inArea := f.fields[f.focused].multiline
		switch s := keyMsg.String(); {
		case s == "tab" || (s == "down" && !inArea):
			f.focused = (f.focused + 1) % len(f.fields)
			f.updateFocus()
			return f, nil
		case s == "shift+tab" || (s == "up" && !inArea):
			f.focused = (f.focused - 1 + len(f.fields)) % len(f.fields)
			f.updateFocus()
			return f, nil
		}
	}

	ff := &f.fields[f.focused]
	switch {
	case ff.field.Type == schema.TypeBoolean:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			if s := keyMsg.String(); s == " " || s == "enter" {
				ff.checked = !ff.checked
				ff.toggled = true
			}
		}
		return f, nil

	case ff.field.IsForeignKey():
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "right", "l":
				ff.choice = (ff.choice + 1) % len(ff.options)
			case "left", "h":
				ff.choice = (ff.choice - 1 + len(ff.options)) % len(ff.options)
			}
		}
		return f, nil
	}

	var cmd tea.Cmd
	if ff.multiline {
		ff.area, cmd = ff.area.Update(msg)
	} else {
		ff.input, cmd = ff.input.Update(msg)
	}
	return f, cmd
}

// updateFocus focuses the text input of the focused field, if any.
func (f *Form) updateFocus() {
	for i := range f.fields {
		ff := &f.fields[i]
		if ff.field.Type == schema.TypeBoolean || ff.field.IsForeignKey() {
			continue
		}
		switch {
		case ff.multiline && i == f.focused:
			ff.area.Focus()
		case ff.multiline:
			ff.area.Blur()
		case i == f.focused:
			ff.input.Focus()
		default:
			ff.input.Blur()
		}
	}
}

// Values returns the buffered values keyed by field name.
func (f Form) Values() api.Entity {
	out := make(api.Entity, len(f.fields))
	for _, ff := range f.fields {
		out[ff.field.Name] = ff.value()
	}
	return out
}

func (ff formField) text() string {
	if ff.multiline {
		return ff.area.Value()
	}
	return ff.input.Value()
}

func (ff formField) value() any {
	switch {
	case ff.field.Type == schema.TypeBoolean:
		if ff.snapshot && ff.wasNil && !ff.defaulted && !ff.toggled {
			return nil
		}
		return ff.checked
	case ff.field.IsForeignKey():
		return ff.options[ff.choice].value
	}

	text := ff.text()
	if text == ff.initial && !ff.wasNil {
		return ff.raw
	}
	if strings.TrimSpace(text) == "" {
		if ff.field.Type == schema.TypeString && !ff.wasNil {
			return ""
		}
		return nil
	}
	if ff.field.Type == schema.TypeNumber {
		trimmed := strings.TrimSpace(text)
		if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return json.Number(trimmed)
		}
	}
	return text
}

// Validate checks required fields and number syntax and records the errors
// for display. ok is false when any field is invalid.
func (f Form) Validate() (Form, bool) {
	errs := make(map[string]string)
	for _, ff := range f.fields {
		switch {
		case ff.field.Type == schema.TypeBoolean:
		case ff.field.IsForeignKey():
			if ff.field.Required && ff.options[ff.choice].value == nil {
				errs[ff.field.Name] = "required"
			}
		default:
			text := strings.TrimSpace(ff.text())
			if text == "" {
				if ff.field.Required {
					errs[ff.field.Name] = "required"
				}
				continue
			}
			if ff.field.Type == schema.TypeNumber {
				if _, err := strconv.ParseFloat(text, 64); err != nil {
					errs[ff.field.Name] = "must be a number"
				}
			}
		}
	}
	f.errs = errs
	return f, len(errs) == 0
}

// Errors returns the validation errors from the last Validate call.
func (f Form) Errors() map[string]string {
	return f.errs
}

var (
	formLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Width(18).
			Padding(0, 1, 0, 2)

	formFocusedLabelStyle = formLabelStyle.
				Foreground(lipgloss.Color("205"))

	formValueStyle = lipgloss.NewStyle().
			Padding(0, 1)

	formErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Padding(0, 0, 0, 20)
)

// View renders the form fields.
func (f Form) View() string {
	rows := make([]string, 0, len(f.fields))
	for i, ff := range f.fields {
		label := ff.field.Name
		if ff.field.Required {
			label += "*"
		}
		lbl := formLabelStyle
		if i == f.focused {
			lbl = formFocusedLabelStyle
		}

		var value string
		switch {
		case ff.field.Type == schema.TypeBoolean:
			value = "[ ] No"
			if ff.checked {
				value = "[x] Yes"
			}
			value = formValueStyle.Render(value)
		case ff.field.IsForeignKey():
			value = formValueStyle.Render("< " + ff.options[ff.choice].label + " >")
		case ff.multiline:
			value = ff.area.View()
		default:
			value = ff.input.View()
		}

		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, lbl.Render(label), value))
		if msg, ok := f.errs[ff.field.Name]; ok {
			rows = append(rows, formErrorStyle.Render(msg))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
