// Package backendtest provides an in-memory entity backend for tests.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Azahorscak/dbmanager-tui/internal/api"
)

// Token is the bearer token the server accepts.
const Token = "backendtest-token"

// Request is one request observed by the server.
type Request struct {
	Method     string
	Target     string
	Collection string
	ID         string
	Query      url.Values
	Body       any
}

// Server is a fake backend serving collections per target.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	collections map[string][]api.Entity
	failures    map[string]int
	requests    []Request
	nextID      int
}

// New starts a server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		collections: make(map[string][]api.Entity),
		failures:    make(map[string]int),
		nextID:      1000,
	}

	r := chi.NewRouter()
	r.Use(s.authenticate)
	r.Get("/{target}/{collection}", s.list)
	r.Post("/{target}/{collection}", s.add)
	r.Patch("/{target}/{collection}/{id}", s.update)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Client returns an API client pointed at the server.
func (s *Server) Client() *api.Client {
	return api.NewClient(s.URL, Token)
}

// Seed appends entities to a collection.
func (s *Server) Seed(target, collection string, entities ...api.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := target + "/" + collection
	for _, e := range entities {
		s.collections[key] = append(s.collections[key], e.Clone())
	}
}

// Fail makes every matching request answer with status.
func (s *Server) Fail(method, target, collection string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+target+"/"+collection] = status
}

// Collection returns a copy of the stored entities.
func (s *Server) Collection(target, collection string) []api.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []api.Entity
	for _, e := range s.collections[target+"/"+collection] {
		out = append(out, e.Clone())
	}
	return out
}

// Requests returns the requests seen so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsFor returns the requests for one method and collection.
func (s *Server) RequestsFor(method, collection string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method == method && r.Collection == collection {
			out = append(out, r)
		}
	}
	return out
}

// Reset forgets recorded requests.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+Token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// record logs the request and reports a configured failure status, if any.
func (s *Server) record(r *http.Request, body any) (int, bool) {
	req := Request{
		Method:     r.Method,
		Target:     chi.URLParam(r, "target"),
		Collection: chi.URLParam(r, "collection"),
		ID:         chi.URLParam(r, "id"),
		Query:      r.URL.Query(),
		Body:       body,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	status, ok := s.failures[req.Method+" "+req.Target+"/"+req.Collection]
	return status, ok
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	if status, fail := s.record(r, nil); fail {
		writeJSON(w, status, map[string]string{"error": "injected failure"})
		return
	}
	key := chi.URLParam(r, "target") + "/" + chi.URLParam(r, "collection")
	q := r.URL.Query()

	s.mu.Lock()
	var matched []api.Entity
	for _, e := range s.collections[key] {
		if matches(e, q) {
			matched = append(matched, e.Clone())
		}
	}
	s.mu.Unlock()

	total := len(matched)
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		offset, _ := strconv.Atoi(q.Get("offset"))
		offset = max(offset, 0)
		if offset > len(matched) {
			offset = len(matched)
		}
		end := min(offset+limit, len(matched))
		matched = matched[offset:end]
	}
	if matched == nil {
		matched = []api.Entity{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": matched, "total": total})
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	var fields api.Entity
	if err := decode(r, &fields); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if status, fail := s.record(r, fields); fail {
		writeJSON(w, status, map[string]string{"error": "injected failure"})
		return
	}

	key := chi.URLParam(r, "target") + "/" + chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.collections[key] {
		if e.ID() == id {
			for k, v := range fields {
				if k != api.IDField {
					e[k] = v
				}
			}
			writeJSON(w, http.StatusOK, map[string]any{"result": e})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
}

func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	var records []api.Entity
	if err := decode(r, &records); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if status, fail := s.record(r, records); fail {
		writeJSON(w, status, map[string]string{"error": "injected failure"})
		return
	}

	key := chi.URLParam(r, "target") + "/" + chi.URLParam(r, "collection")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		e := rec.Clone()
		e[api.IDField] = json.Number(strconv.Itoa(s.nextID))
		s.nextID++
		s.collections[key] = append(s.collections[key], e)
	}
	writeJSON(w, http.StatusCreated, map[string]any{"result": api.AddResult{Added: len(records)}})
}

// matches applies field filters and the free-text search.
func matches(e api.Entity, q url.Values) bool {
	for k, vs := range q {
		switch k {
		case "offset", "limit":
			continue
		case "search":
			if !search(e, vs[0]) {
				return false
			}
		default:
			if api.IDString(e[k]) != vs[0] {
				return false
			}
		}
	}
	return true
}

func search(e api.Entity, term string) bool {
	term = strings.ToLower(term)
	for _, v := range e {
		if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
