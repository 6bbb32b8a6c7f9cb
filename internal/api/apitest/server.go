// Package apitest runs an in-memory notes backend for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/matheuskafuri/forge/internal/api"
)

// Request is one call the server received.
type Request struct {
	Method string
	Path   string
	Query  map[string]string
	Header http.Header
}

// Server mimics the backend contract. Created notes get the title of their
// content, category "personal" and a markdown checklist item.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	notes    []api.ProcessedNote
	requests []Request
	fail     map[string]int
}

func NewServer(t testing.TB, seed ...api.ProcessedNote) *Server {
	t.Helper()
	s := &Server{notes: append([]api.ProcessedNote(nil), seed...), fail: map[string]int{}}

	r := mux.NewRouter()
	r.Use(s.record)
	r.HandleFunc("/api/health", s.health).Methods(http.MethodGet)
	r.HandleFunc("/api/notes", s.create).Methods(http.MethodPost)
	r.HandleFunc("/api/notes", s.list).Methods(http.MethodGet)
	r.HandleFunc("/api/notes/{id}", s.get).Methods(http.MethodGet)
	r.HandleFunc("/api/notes/{id}", s.remove).Methods(http.MethodDelete)
	r.HandleFunc("/api/categories", s.categories).Methods(http.MethodGet)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// FailNext makes the next request for "METHOD /path-prefix" answer status
// with an {"error": ...} body. A status of -1 answers 500 with no body.
func (s *Server) FailNext(method, pathPrefix string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[method+" "+pathPrefix] = status
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) Notes() []api.ProcessedNote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.ProcessedNote(nil), s.notes...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := map[string]string{}
		for k, v := range r.URL.Query() {
			q[k] = v[0]
		}
		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Query: q, Header: r.Header.Clone()})
		status, failing := 0, false
		for key, st := range s.fail {
			method, prefix, _ := strings.Cut(key, " ")
			if method == r.Method && strings.HasPrefix(r.URL.Path, prefix) {
				status, failing = st, true
				delete(s.fail, key)
				break
			}
		}
		s.mu.Unlock()

		if failing {
			if status < 0 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			writeJSON(w, status, map[string]string{"error": "injected failure"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.Health{Status: "healthy", Service: "idea-forge"})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Content == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Content is required"})
		return
	}
	note := api.ProcessedNote{
		ID:        uuid.NewString(),
		Original:  in.Content,
		Title:     strings.ToUpper(in.Content[:1]) + in.Content[1:],
		Category:  "personal",
		Markdown:  "- [ ] " + in.Content,
		Links:     []api.Link{},
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.notes = append([]api.ProcessedNote{note}, s.notes...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, note)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	cat := r.URL.Query().Get("category")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = api.DefaultLimit
	}

	s.mu.Lock()
	var matched []api.ProcessedNote
	for _, n := range s.notes {
		if cat == "" || n.Category == cat {
			matched = append(matched, n)
		}
	}
	s.mu.Unlock()

	page := []api.ProcessedNote{}
	if offset < len(matched) {
		end := min(offset+limit, len(matched))
		page = matched[offset:end]
	}
	writeJSON(w, http.StatusOK, api.NotesPage{Notes: page, Total: len(matched)})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notes {
		if n.ID == id {
			writeJSON(w, http.StatusOK, n)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Note not found"})
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notes {
		if n.ID == id {
			s.notes = append(s.notes[:i], s.notes[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Note deleted", "id": id})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Note not found"})
}

func (s *Server) categories(w http.ResponseWriter, r *http.Request) {
	names := []string{"homelab", "coding", "personal", "learning", "creative"}
	counts := map[string]int{}
	s.mu.Lock()
	for _, n := range s.notes {
		counts[n.Category]++
	}
	s.mu.Unlock()

	out := make([]api.CategoryCount, len(names))
	for i, n := range names {
		out[i] = api.CategoryCount{Name: n, Count: counts[n]}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
