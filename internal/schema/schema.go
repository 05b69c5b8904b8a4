// Package schema describes the manageable entity collections and resolves
// the reference data needed to render them.
package schema

import (
	"errors"
	"fmt"
)

// FieldType is the value type of an entity field.
type FieldType string

const (
	TypeString   FieldType = "string"
	TypeNumber   FieldType = "number"
	TypeBoolean  FieldType = "boolean"
	TypeDatetime FieldType = "datetime"
)

// DefaultLabelField is rendered for foreign-key targets without a label_field.
const DefaultLabelField = "name"

// Field describes one column of an entity.
type Field struct {
	Name string    `yaml:"name"`
	Type FieldType `yaml:"type"`
	// ForeignKey is the id of the entity config this field references.
	ForeignKey string `yaml:"foreign_key,omitempty"`
	Required   bool   `yaml:"required,omitempty"`
}

// IsForeignKey reports whether the field references another collection.
func (f Field) IsForeignKey() bool {
	return f.ForeignKey != ""
}

// EntityConfig describes one collection managed by the console.
type EntityConfig struct {
	ID     string  `yaml:"id"`
	Plural string  `yaml:"plural"`
	Title  string  `yaml:"title,omitempty"`
	Fields []Field `yaml:"fields"`
	// EnableField names the boolean field flipped by the toggle action.
	EnableField    string `yaml:"enable_field,omitempty"`
	DefaultEnabled bool   `yaml:"default_enabled,omitempty"`
	LabelField     string `yaml:"label_field,omitempty"`
}

// DisplayName returns the title, falling back to the plural name.
func (c EntityConfig) DisplayName() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Plural
}

// Label returns the field used to render an entity of this type when it is
// referenced by a foreign key.
func (c EntityConfig) Label() string {
	if c.LabelField != "" {
		return c.LabelField
	}
	return DefaultLabelField
}

// Field looks up a field by name.
func (c EntityConfig) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ToggleField returns the field flipped by the toggle action: the enablement
// field when configured, otherwise the first boolean field.
func (c EntityConfig) ToggleField() (Field, bool) {
	if c.EnableField != "" {
		return c.Field(c.EnableField)
	}
	for _, f := range c.Fields {
		if f.Type == TypeBoolean {
			return f, true
		}
	}
	return Field{}, false
}

// ScheduleConfig defines the "current schedule" query.
type ScheduleConfig struct {
	// Entity is the id of the entity config holding schedule items.
	Entity     string `yaml:"entity"`
	StartField string `yaml:"start_field"`
	// EndField is optional; without it the latest started item is current.
	EndField string `yaml:"end_field,omitempty"`
}

// Enabled reports whether a schedule is configured.
func (s ScheduleConfig) Enabled() bool {
	return s.Entity != ""
}

// Registry is the static lookup of entity configs.
type Registry struct {
	entities []EntityConfig
	byID     map[string]EntityConfig
	schedule ScheduleConfig
}

// NewRegistry validates the given configs and builds a registry.
func NewRegistry(entities []EntityConfig, schedule ScheduleConfig) (*Registry, error) {
	r := &Registry{
		byID:     make(map[string]EntityConfig, len(entities)),
		schedule: schedule,
	}

	for i, e := range entities {
		if e.ID == "" {
			return nil, fmt.Errorf("entity %d: missing id", i)
		}
		if _, dup := r.byID[e.ID]; dup {
			return nil, fmt.Errorf("entity %q: duplicate id", e.ID)
		}
		if e.Plural == "" {
			return nil, fmt.Errorf("entity %q: missing plural", e.ID)
		}
		fields := make([]Field, len(e.Fields))
		seen := make(map[string]bool, len(e.Fields))
		for j, f := range e.Fields {
			if f.Name == "" {
				return nil, fmt.Errorf("entity %q: field %d: missing name", e.ID, j)
			}
			if seen[f.Name] {
				return nil, fmt.Errorf("entity %q: duplicate field %q", e.ID, f.Name)
			}
			seen[f.Name] = true
			if f.Type == "" {
				f.Type = TypeString
			}
			switch f.Type {
			case TypeString, TypeNumber, TypeBoolean, TypeDatetime:
			default:
				return nil, fmt.Errorf("entity %q: field %q: unknown type %q", e.ID, f.Name, f.Type)
			}
			fields[j] = f
		}
		e.Fields = fields
		r.entities = append(r.entities, e)
		r.byID[e.ID] = e
	}

	for _, e := range r.entities {
		for _, f := range e.Fields {
			if f.IsForeignKey() {
				if _, ok := r.byID[f.ForeignKey]; !ok {
					return nil, fmt.Errorf("entity %q: field %q references unknown entity %q", e.ID, f.Name, f.ForeignKey)
				}
			}
		}
		if e.EnableField != "" {
			f, ok := e.Field(e.EnableField)
			if !ok {
				return nil, fmt.Errorf("entity %q: enable_field %q is not a field", e.ID, e.EnableField)
			}
			if f.Type != TypeBoolean {
				return nil, fmt.Errorf("entity %q: enable_field %q must be boolean", e.ID, e.EnableField)
			}
		}
	}

	if schedule.Enabled() {
		e, ok := r.byID[schedule.Entity]
		if !ok {
			return nil, fmt.Errorf("schedule: unknown entity %q", schedule.Entity)
		}
		if schedule.StartField == "" {
			return nil, errors.New("schedule: missing start_field")
		}
		if _, ok := e.Field(schedule.StartField); !ok {
			return nil, fmt.Errorf("schedule: start_field %q is not a field of %q", schedule.StartField, e.ID)
		}
		if schedule.EndField != "" {
			if _, ok := e.Field(schedule.EndField); !ok {
				return nil, fmt.Errorf("schedule: end_field %q is not a field of %q", schedule.EndField, e.ID)
			}
		}
	}

	return r, nil
}

// Entity returns the config for the given entity id.
func (r *Registry) Entity(id string) (EntityConfig, bool) {
	e, ok := r.byID[id]
	return e, ok
}

// Entities returns all configs in declaration order.
func (r *Registry) Entities() []EntityConfig {
	return append([]EntityConfig(nil), r.entities...)
}

// ForeignKeyConfigs returns the configs referenced by cfg's foreign-key
// fields, once per referenced entity, in field order.
func (r *Registry) ForeignKeyConfigs(cfg EntityConfig) []EntityConfig {
	var out []EntityConfig
	seen := make(map[string]bool)
	for _, f := range cfg.Fields {
		if !f.IsForeignKey() || seen[f.ForeignKey] {
			continue
		}
		seen[f.ForeignKey] = true
		if ref, ok := r.byID[f.ForeignKey]; ok {
			out = append(out, ref)
		}
	}
	return out
}

// Schedule returns the schedule definition and the config of its entity.
// ok is false when no schedule is configured.
func (r *Registry) Schedule() (ScheduleConfig, EntityConfig, bool) {
	if !r.schedule.Enabled() {
		return ScheduleConfig{}, EntityConfig{}, false
	}
	return r.schedule, r.byID[r.schedule.Entity], true
}
