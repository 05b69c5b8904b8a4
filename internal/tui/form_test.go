package tui

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/Azahorscak/dbmanager-tui/internal/api"
	"github.com/Azahorscak/dbmanager-tui/internal/schema"
)

func testUserConfig(t *testing.T) schema.EntityConfig {
	t.Helper()
	cfg, ok := testRegistry(t).Entity("user")
	if !ok {
		t.Fatal("user config missing")
	}
	return cfg
}

func testGroupKeys(t *testing.T) schema.ForeignKeys {
	t.Helper()
	groups, _ := testRegistry(t).Entity("group")
	entities := []api.Entity{
		{"id": json.Number("1"), "name": "Admins"},
		{"id": json.Number("2"), "name": "Editors"},
	}
	idMap := map[string]api.Entity{"1": entities[0], "2": entities[1]}
	return schema.ForeignKeys{"groups": {Config: groups, Entities: entities, IDMap: idMap}}
}

func TestNewForm_SnapshotsValues(t *testing.T) {
	f := NewForm(testUserConfig(t), api.Entity{
		"id":       json.Number("7"),
		"name":     "alice",
		"age":      json.Number("31"),
		"group_id": json.Number("2"),
		"active":   json.Number("0"),
	}, testGroupKeys(t))

	got := f.Values()
	if got["name"] != "alice" {
		t.Errorf("name = %v, want alice", got["name"])
	}
	if got["age"] != json.Number("31") {
		t.Errorf("age = %#v, want json.Number 31", got["age"])
	}
	if got["group_id"] != json.Number("2") {
		t.Errorf("group_id = %#v, want 2", got["group_id"])
	}
	if got["active"] != false {
		t.Errorf("active = %v, want false", got["active"])
	}
	if _, ok := got["id"]; ok {
		t.Error("the id is not part of the form values")
	}
}

func TestNewForm_BlankDefaults(t *testing.T) {
	f := NewForm(testUserConfig(t), nil, testGroupKeys(t))

	got := f.Values()
	if got["active"] != true {
		t.Errorf("active = %v, want the default-enabled true", got["active"])
	}
	for _, name := range []string{"name", "age", "group_id"} {
		if got[name] != nil {
			t.Errorf("%s = %v, want nil", name, got[name])
		}
	}
}

func TestNewForm_NoEnableFieldLeavesBooleanUnset(t *testing.T) {
	cfg := schema.EntityConfig{ID: "flag", Plural: "flags", DefaultEnabled: true, Fields: []schema.Field{
		{Name: "on", Type: schema.TypeBoolean, Required: true},
	}}
	if got := NewForm(cfg, nil, nil).Values()["on"]; got != false {
		t.Errorf("on = %v, want false without an enablement field", got)
	}
}

func TestForm_TabCyclesFocus(t *testing.T) {
	f := NewForm(testUserConfig(t), nil, nil)

	want := []string{"age", "group_id", "active", "name"}
	for _, w := range want {
		f, _ = f.Update(keyPress("tab"))
		if got := f.FocusedField(); got != w {
			t.Fatalf("focused = %q, want %q", got, w)
		}
	}

	f, _ = f.Update(keyPress("shift+tab"))
	if got := f.FocusedField(); got != "active" {
		t.Errorf("shift+tab focused = %q, want active", got)
	}
}

func TestForm_BooleanToggle(t *testing.T) {
	f := NewForm(testUserConfig(t), api.Entity{"active": true}, nil)
	for f.FocusedField() != "active" {
		f, _ = f.Update(keyPress("tab"))
	}

	f, _ = f.Update(keyPress(" "))
	if f.Values()["active"] != false {
		t.Error("space should flip the boolean")
	}
	f, _ = f.Update(keyPress("enter"))
	if f.Values()["active"] != true {
		t.Error("enter should flip the boolean back")
	}
}

func TestForm_ForeignKeyChoices(t *testing.T) {
	f := NewForm(testUserConfig(t), nil, testGroupKeys(t))
	for f.FocusedField() != "group_id" {
		f, _ = f.Update(keyPress("tab"))
	}

	f, _ = f.Update(keyPress("right"))
	if got := f.Values()["group_id"]; got != json.Number("1") {
		t.Errorf("group_id = %v, want 1", got)
	}
	if !strings.Contains(f.View(), "< Admins >") {
		t.Errorf("view should show the chosen label, got: %s", f.View())
	}

	f, _ = f.Update(keyPress("left"))
	f, _ = f.Update(keyPress("left"))
	if got := f.Values()["group_id"]; got != json.Number("2") {
		t.Errorf("left should wrap around to the last option, got %v", got)
	}
}

func TestForm_UnknownForeignKeyIsKept(t *testing.T) {
	f := NewForm(testUserConfig(t), api.Entity{"group_id": json.Number("99")}, testGroupKeys(t))

	if got := f.Values()["group_id"]; got != json.Number("99") {
		t.Errorf("group_id = %v, want the original 99", got)
	}
}

func TestForm_ClearedStringBecomesEmpty(t *testing.T) {
	f := NewForm(testUserConfig(t), api.Entity{"name": "alice"}, nil)
	f.setText("name", "   ")
	if got := f.Values()["name"]; got != "" {
		t.Errorf("name = %#v, want empty string", got)
	}
}

func TestForm_Validate(t *testing.T) {
	tests := []struct {
		name    string
		text    map[string]string
		wantErr map[string]string
	}{
		{"valid", map[string]string{"name": "ann", "age": "4.5"}, map[string]string{}},
		{"missing required", map[string]string{"age": "4"}, map[string]string{"name": "required"}},
		{"bad number", map[string]string{"name": "ann", "age": "four"}, map[string]string{"age": "must be a number"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewForm(testUserConfig(t), nil, nil)
			for k, v := range tt.text {
				f.setText(k, v)
			}
			f, ok := f.Validate()
			if ok != (len(tt.wantErr) == 0) {
				t.Errorf("ok = %v, errors %v", ok, f.Errors())
			}
			if len(f.Errors()) != len(tt.wantErr) {
				t.Errorf("errors = %v, want %v", f.Errors(), tt.wantErr)
			}
			for k, v := range tt.wantErr {
				if f.Errors()[k] != v {
					t.Errorf("error for %s = %q, want %q", k, f.Errors()[k], v)
				}
			}
		})
	}
}

func TestForm_ViewRendersLabelsAndErrors(t *testing.T) {
	f := NewForm(testUserConfig(t), nil, nil)
	f, _ = f.Validate()

	out := f.View()
	for _, want := range []string{"name*", "age", "group_id", "active*", "required", "[x] Yes"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q, got: %s", want, out)
		}
	}
}

func TestNewForm_UntouchedTextIsSubmittedVerbatim(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		multiline bool
	}{
		{"line break", "line1\nline2", true},
		{"crlf", "a\r\nb", true},
		{"tab", "a\tb", false},
		{"long", strings.Repeat("x", 3000), false},
		{"escape codes", "\x1b[31mred\x1b[0m", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewForm(testUserConfig(t), api.Entity{"name": tt.value}, nil)

			if got := f.Values()["name"]; got != tt.value {
				t.Errorf("name = %q, want %q", got, tt.value)
			}
			if f.fields[0].multiline != tt.multiline {
				t.Errorf("multiline = %v, want %v", f.fields[0].multiline, tt.multiline)
			}
		})
	}
}

func TestNewForm_NoCharLimit(t *testing.T) {
	f := NewForm(testUserConfig(t), api.Entity{"name": strings.Repeat("x", 3000)}, nil)
	f, _ = f.Update(keyPress("y"))

	got, _ := f.Values()["name"].(string)
	if len(got) != 3001 {
		t.Errorf("edited value has %d characters, want 3001", len(got))
	}
}

func TestForm_MultilineEditKeepsLineBreaks(t *testing.T) {
	f := NewForm(testUserConfig(t), api.Entity{"name": "a\nb"}, nil)

	f, _ = f.Update(keyPress("c"))
	f, _ = f.Update(keyPress("enter"))
	f, _ = f.Update(keyPress("d"))
	if got := f.Values()["name"]; got != "a\nbc\nd" {
		t.Errorf("name = %q, want %q", got, "a\nbc\nd")
	}

	f, _ = f.Update(keyPress("up"))
	if got := f.FocusedField(); got != "name" {
		t.Errorf("up inside a multi-line field moved focus to %q", got)
	}
	f, _ = f.Update(keyPress("tab"))
	if got := f.FocusedField(); got != "age" {
		t.Errorf("tab focused = %q, want age", got)
	}
}

func TestNewForm_NullBooleanStaysNull(t *testing.T) {
	cfg := schema.EntityConfig{ID: "member", Plural: "members", Fields: []schema.Field{
		{Name: "name"},
		{Name: "vip", Type: schema.TypeBoolean},
	}}

	f := NewForm(cfg, api.Entity{"name": "alice", "vip": nil}, nil)
	got := f.Values()
	if v, ok := got["vip"]; !ok || v != nil {
		t.Errorf("vip = %#v, want nil for an untouched null", v)
	}

	f, _ = f.Update(keyPress("tab"))
	f, _ = f.Update(keyPress(" "))
	if got := f.Values()["vip"]; got != true {
		t.Errorf("vip = %v after a toggle, want true", got)
	}

	if got := NewForm(cfg, nil, nil).Values()["vip"]; got != false {
		t.Errorf("blank vip = %v, want false", got)
	}
}
