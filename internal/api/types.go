package api

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// IDField is the identifier field every entity carries.
const IDField = "id"

// Entity is a backend record: field name to JSON value. Numbers decode as
// json.Number so identifiers and amounts survive a round trip unchanged.
type Entity map[string]any

// ID returns the entity identifier as a string.
func (e Entity) ID() string {
	return IDString(e[IDField])
}

// Clone returns a shallow copy of the entity.
func (e Entity) Clone() Entity {
	out := make(Entity, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// IDString renders an identifier value as a string key.
func IDString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case json.Number:
		return id.String()
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	default:
		return fmt.Sprint(id)
	}
}

// Filter restricts a listing to entities whose Field equals Value.
type Filter struct {
	Field string
	Value any
}

// Query is the listing query: at most one filter, a free-text search and a
// page window.
type Query struct {
	Filter *Filter
	Search string
	Offset int
	Limit  int
}

// Values encodes the query as URL parameters. A nil query encodes to nothing.
func (q *Query) Values() url.Values {
	vals := url.Values{}
	if q == nil {
		return vals
	}
	if q.Filter != nil && q.Filter.Field != "" {
		vals.Set(q.Filter.Field, IDString(q.Filter.Value))
	}
	if q.Search != "" {
		vals.Set("search", q.Search)
	}
	if q.Limit > 0 {
		vals.Set("offset", strconv.Itoa(q.Offset))
		vals.Set("limit", strconv.Itoa(q.Limit))
	}
	return vals
}

// Page is one listing result.
type Page struct {
	Entities []Entity
	// Total is the backend's reported total, or the page length when the
	// backend does not report one.
	Total int
}

// AddResult is the backend's answer to a batch create.
type AddResult struct {
	Added int `json:"added"`
}
