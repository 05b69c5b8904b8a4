package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azahorscak/dbmanager-tui/internal/api"
)

func testEntities() []EntityConfig {
	return []EntityConfig{
		{ID: "group", Plural: "groups", Fields: []Field{{Name: "name", Required: true}}},
		{ID: "role", Plural: "roles", LabelField: "title", Fields: []Field{{Name: "title"}}},
		{
			ID:             "user",
			Plural:         "users",
			EnableField:    "active",
			DefaultEnabled: true,
			Fields: []Field{
				{Name: "name", Type: TypeString, Required: true},
				{Name: "group_id", Type: TypeNumber, ForeignKey: "group"},
				{Name: "backup_group_id", Type: TypeNumber, ForeignKey: "group"},
				{Name: "role_id", ForeignKey: "role"},
				{Name: "active", Type: TypeBoolean, Required: true},
			},
		},
		{
			ID:     "slot",
			Plural: "slots",
			Fields: []Field{
				{Name: "user_id", ForeignKey: "user"},
				{Name: "starts_at", Type: TypeDatetime},
				{Name: "ends_at", Type: TypeDatetime},
			},
		},
	}
}

func TestNewRegistry_DefaultsFieldType(t *testing.T) {
	reg, err := NewRegistry(testEntities(), ScheduleConfig{})
	require.NoError(t, err)

	group, ok := reg.Entity("group")
	require.True(t, ok)
	assert.Equal(t, TypeString, group.Fields[0].Type)
}

func TestNewRegistry_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		entities []EntityConfig
		schedule ScheduleConfig
		wantErr  string
	}{
		{"missing id", []EntityConfig{{Plural: "as"}}, ScheduleConfig{}, "missing id"},
		{"duplicate id", []EntityConfig{{ID: "a", Plural: "as"}, {ID: "a", Plural: "bs"}}, ScheduleConfig{}, "duplicate id"},
		{"missing plural", []EntityConfig{{ID: "a"}}, ScheduleConfig{}, "missing plural"},
		{"unnamed field", []EntityConfig{{ID: "a", Plural: "as", Fields: []Field{{}}}}, ScheduleConfig{}, "missing name"},
		{"duplicate field", []EntityConfig{{ID: "a", Plural: "as", Fields: []Field{{Name: "x"}, {Name: "x"}}}}, ScheduleConfig{}, "duplicate field"},
		{"unknown type", []EntityConfig{{ID: "a", Plural: "as", Fields: []Field{{Name: "x", Type: "blob"}}}}, ScheduleConfig{}, "unknown type"},
		{"unknown foreign key", []EntityConfig{{ID: "a", Plural: "as", Fields: []Field{{Name: "x", ForeignKey: "b"}}}}, ScheduleConfig{}, "unknown entity"},
		{"enable field missing", []EntityConfig{{ID: "a", Plural: "as", EnableField: "on"}}, ScheduleConfig{}, "is not a field"},
		{"enable field not boolean", []EntityConfig{{ID: "a", Plural: "as", EnableField: "on", Fields: []Field{{Name: "on"}}}}, ScheduleConfig{}, "must be boolean"},
		{"schedule unknown entity", testEntities(), ScheduleConfig{Entity: "nope", StartField: "x"}, "unknown entity"},
		{"schedule missing start", testEntities(), ScheduleConfig{Entity: "slot"}, "missing start_field"},
		{"schedule bad start", testEntities(), ScheduleConfig{Entity: "slot", StartField: "begin"}, "start_field"},
		{"schedule bad end", testEntities(), ScheduleConfig{Entity: "slot", StartField: "starts_at", EndField: "finish"}, "end_field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.entities, tt.schedule)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRegistry_ForeignKeyConfigs(t *testing.T) {
	reg, err := NewRegistry(testEntities(), ScheduleConfig{})
	require.NoError(t, err)

	users, _ := reg.Entity("user")
	refs := reg.ForeignKeyConfigs(users)
	require.Len(t, refs, 2, "group is referenced twice but loaded once")
	assert.Equal(t, "groups", refs[0].Plural)
	assert.Equal(t, "roles", refs[1].Plural)

	groups, _ := reg.Entity("group")
	assert.Empty(t, reg.ForeignKeyConfigs(groups))
}

func TestRegistry_EntitiesIsACopy(t *testing.T) {
	reg, err := NewRegistry(testEntities(), ScheduleConfig{})
	require.NoError(t, err)

	all := reg.Entities()
	all[0].Plural = "changed"
	again := reg.Entities()
	assert.Equal(t, "groups", again[0].Plural)
}

func TestRegistry_Schedule(t *testing.T) {
	reg, err := NewRegistry(testEntities(), ScheduleConfig{})
	require.NoError(t, err)
	_, _, ok := reg.Schedule()
	assert.False(t, ok)

	reg, err = NewRegistry(testEntities(), ScheduleConfig{Entity: "slot", StartField: "starts_at", EndField: "ends_at"})
	require.NoError(t, err)
	sched, cfg, ok := reg.Schedule()
	require.True(t, ok)
	assert.Equal(t, "starts_at", sched.StartField)
	assert.Equal(t, "slots", cfg.Plural)
}

func TestEntityConfig_ToggleField(t *testing.T) {
	reg, err := NewRegistry(testEntities(), ScheduleConfig{})
	require.NoError(t, err)

	users, _ := reg.Entity("user")
	f, ok := users.ToggleField()
	require.True(t, ok)
	assert.Equal(t, "active", f.Name)

	noEnable := EntityConfig{Fields: []Field{{Name: "a"}, {Name: "b", Type: TypeBoolean}, {Name: "c", Type: TypeBoolean}}}
	f, ok = noEnable.ToggleField()
	require.True(t, ok)
	assert.Equal(t, "b", f.Name)

	groups, _ := reg.Entity("group")
	_, ok = groups.ToggleField()
	assert.False(t, ok)
}

func TestEntityConfig_DisplayNameAndLabel(t *testing.T) {
	c := EntityConfig{Plural: "users"}
	assert.Equal(t, "users", c.DisplayName())
	assert.Equal(t, DefaultLabelField, c.Label())

	c.Title = "Users"
	c.LabelField = "email"
	assert.Equal(t, "Users", c.DisplayName())
	assert.Equal(t, "email", c.Label())
}

func TestForeignKeys_Display(t *testing.T) {
	reg, err := NewRegistry(testEntities(), ScheduleConfig{})
	require.NoError(t, err)
	groups, _ := reg.Entity("group")
	roles, _ := reg.Entity("role")

	fks := ForeignKeys{
		"groups": newForeignKeySet(groups, []api.Entity{
			{"id": json.Number("1"), "name": "Admins"},
			{"id": json.Number("2")},
		}),
		"roles": newForeignKeySet(roles, []api.Entity{
			{"id": "r1", "title": "Owner"},
		}),
	}

	groupField := Field{Name: "group_id", ForeignKey: "group"}
	assert.Equal(t, "Admins", fks.Display(groupField, json.Number("1")))
	assert.Equal(t, "2", fks.Display(groupField, json.Number("2")), "no label falls back to id")
	assert.Equal(t, "99", fks.Display(groupField, float64(99)), "unknown id falls back to id")
	assert.Equal(t, "", fks.Display(groupField, nil))
	assert.Equal(t, "Owner", fks.Display(Field{Name: "role_id", ForeignKey: "role"}, "r1"))

	assert.Equal(t, "Yes", fks.Display(Field{Name: "active", Type: TypeBoolean}, json.Number("1")))
	assert.Equal(t, "No", fks.Display(Field{Name: "active", Type: TypeBoolean}, false))
	assert.Equal(t, "bob", fks.Display(Field{Name: "name"}, "bob"))
}

func TestTruthy(t *testing.T) {
	for _, v := range []any{true, 1, json.Number("1"), "yes", "true"} {
		assert.True(t, Truthy(v), "%v", v)
	}
	for _, v := range []any{false, nil, 0, json.Number("0"), "", "false", "0"} {
		assert.False(t, Truthy(v), "%v", v)
	}
}
