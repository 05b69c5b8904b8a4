package tui

// FocusedField returns the name of the focused field.
func (f Form) FocusedField() string {
	if len(f.fields) == 0 {
		return ""
	}
	return f.fields[f.focused].field.Name
}

// setText replaces the text of a text field, as if typed.
func (f *Form) setText(name, value string) {
	for i := range f.fields {
		ff := &f.fields[i]
		if ff.field.Name != name {
			continue
		}
		if ff.multiline {
			ff.area.SetValue(value)
		} else {
			ff.input.SetValue(value)
		}
		return
	}
}
