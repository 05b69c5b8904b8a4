package schema

import (
	"github.com/Azahorscak/dbmanager-tui/internal/api"
)

// ForeignKeySet is one referenced collection, fully loaded.
type ForeignKeySet struct {
	Config   EntityConfig
	Entities []api.Entity
	IDMap    map[string]api.Entity
}

func newForeignKeySet(cfg EntityConfig, entities []api.Entity) ForeignKeySet {
	idMap := make(map[string]api.Entity, len(entities))
	for _, e := range entities {
		idMap[e.ID()] = e
	}
	return ForeignKeySet{Config: cfg, Entities: entities, IDMap: idMap}
}

// Label renders the referenced entity for value, falling back to the raw id
// when the entity is unknown or has no label.
func (s ForeignKeySet) Label(value any) string {
	id := api.IDString(value)
	e, ok := s.IDMap[id]
	if !ok {
		return id
	}
	if label := api.IDString(e[s.Config.Label()]); label != "" {
		return label
	}
	return id
}

// ForeignKeys is the reference-data cache keyed by collection (plural) name.
type ForeignKeys map[string]ForeignKeySet

// For returns the set loaded for the entity config with the given id.
func (fk ForeignKeys) For(entityID string) (ForeignKeySet, bool) {
	for _, s := range fk {
		if s.Config.ID == entityID {
			return s, true
		}
	}
	return ForeignKeySet{}, false
}

// Display renders a field value, resolving foreign keys to labels.
func (fk ForeignKeys) Display(f Field, value any) string {
	if f.IsForeignKey() && value != nil {
		if s, ok := fk.For(f.ForeignKey); ok {
			return s.Label(value)
		}
	}
	return FormatValue(f, value)
}

// FormatValue renders a raw field value for display.
func FormatValue(f Field, value any) string {
	if value == nil {
		return ""
	}
	if f.Type == TypeBoolean {
		if Truthy(value) {
			return "Yes"
		}
		return "No"
	}
	return api.IDString(value)
}

// Truthy interprets backend boolean encodings: true/false, 1/0 and their
// string forms.
func Truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case nil:
		return false
	default:
		switch api.IDString(b) {
		case "", "0", "false", "False", "FALSE":
			return false
		}
		return true
	}
}
