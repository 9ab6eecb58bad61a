// Package fakehub is an in-memory contents server used by tests.
package fakehub

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mattsolo1/grove-jupyter/pkg/models"
)

// APIPrefix is where the contents API is mounted.
const APIPrefix = "/api/contents"

// Request is a request observed by the server.
type Request struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
	Body          []byte
}

type entry struct {
	kind     models.NodeKind
	text     string
	modified time.Time
}

// Server serves GET and PUT on the contents API from memory.
type Server struct {
	*httptest.Server

	token string

	mu       sync.Mutex
	entries  map[string]*entry
	failGet  map[string]int
	failPut  map[string]int
	requests []Request
}

// New starts a server. Requests must carry "token <token>" when token is
// non-empty.
func New(token string) *Server {
	s := &Server{
		token:   token,
		entries: map[string]*entry{"/": {kind: models.KindDirectory}},
		failGet: make(map[string]int),
		failPut: make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// BaseURL returns the contents API root for clients.
func (s *Server) BaseURL() string {
	return s.URL + APIPrefix
}

// AddDir creates a directory and its parents.
func (s *Server) AddDir(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mkdirAll(models.CleanPath(p))
}

// AddFile stores a text file.
func (s *Server) AddFile(p, text string) {
	s.put(p, models.KindFile, text)
}

// AddNotebook stores a notebook given its JSON document.
func (s *Server) AddNotebook(p, raw string) {
	s.put(p, models.KindNotebook, raw)
}

// FailGet makes every GET of p answer with status.
func (s *Server) FailGet(p string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failGet[models.CleanPath(p)] = status
}

// FailPut makes every PUT of p answer with status.
func (s *Server) FailPut(p string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPut[models.CleanPath(p)] = status
}

// Recover clears failures injected for p.
func (s *Server) Recover(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failGet, models.CleanPath(p))
	delete(s.failPut, models.CleanPath(p))
}

// Content returns the stored text of p.
func (s *Server) Content(p string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[models.CleanPath(p)]
	if !ok {
		return "", false
	}
	return e.text, true
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) put(p string, kind models.NodeKind, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p = models.CleanPath(p)
	s.mkdirAll(models.ParentPath(p))
	s.entries[p] = &entry{kind: kind, text: text, modified: time.Now().UTC()}
}

func (s *Server) mkdirAll(p string) {
	for p != "/" {
		if _, ok := s.entries[p]; !ok {
			s.entries[p] = &entry{kind: models.KindDirectory, modified: time.Now().UTC()}
		}
		p = models.ParentPath(p)
	}
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	var body []byte
	if r.Body != nil {
		defer r.Body.Close()
		body, _ = io.ReadAll(r.Body)
	}

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method:        r.Method,
		Path:          r.URL.Path,
		RawQuery:      r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
		Body:          body,
	})
	s.mu.Unlock()

	if !strings.HasPrefix(r.URL.Path, APIPrefix) {
		http.NotFound(w, r)
		return
	}
	if s.token != "" && r.Header.Get("Authorization") != "token "+s.token {
		http.Error(w, `{"message": "Forbidden"}`, http.StatusForbidden)
		return
	}

	p := models.CleanPath(strings.TrimPrefix(r.URL.Path, APIPrefix))
	switch r.Method {
	case http.MethodGet:
		s.handleGet(w, p, r.URL.Query().Get("content") != "0")
	case http.MethodPut:
		s.handlePut(w, p, body)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleGet(w http.ResponseWriter, p string, withContent bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if status, ok := s.failGet[p]; ok {
		http.Error(w, `{"message": "injected failure"}`, status)
		return
	}
	e, ok := s.entries[p]
	if !ok {
		http.Error(w, `{"message": "No such file or directory"}`, http.StatusNotFound)
		return
	}

	resp := s.model(p, e)
	switch e.kind {
	case models.KindDirectory:
		children := []map[string]any{}
		for _, child := range s.children(p) {
			children = append(children, s.model(child, s.entries[child]))
		}
		resp["format"] = models.FormatJSON
		resp["content"] = children
	case models.KindNotebook:
		resp["format"] = models.FormatJSON
		resp["content"] = json.RawMessage(e.text)
	default:
		resp["format"] = models.FormatText
		resp["mimetype"] = "text/plain"
		resp["content"] = e.text
	}
	if !withContent {
		resp["content"] = nil
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePut(w http.ResponseWriter, p string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if status, ok := s.failPut[p]; ok {
		http.Error(w, `{"message": "injected failure"}`, status)
		return
	}

	var req models.SaveRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, `{"message": "bad request body"}`, http.StatusBadRequest)
		return
	}
	if req.Type != string(models.KindFile) || req.Format != models.FormatText {
		http.Error(w, `{"message": "unsupported type or format"}`, http.StatusBadRequest)
		return
	}

	kind := models.KindFile
	if strings.HasSuffix(p, ".ipynb") {
		if !json.Valid([]byte(req.Content)) {
			http.Error(w, `{"message": "notebook is not valid JSON"}`, http.StatusBadRequest)
			return
		}
		kind = models.KindNotebook
	}

	status := http.StatusOK
	if _, exists := s.entries[p]; !exists {
		status = http.StatusCreated
	}
	s.mkdirAll(models.ParentPath(p))
	e := &entry{kind: kind, text: req.Content, modified: time.Now().UTC()}
	s.entries[p] = e
	writeJSON(w, status, s.model(p, e))
}

// children returns the direct children of dir sorted by name.
func (s *Server) children(dir string) []string {
	var out []string
	for p := range s.entries {
		if p != "/" && models.ParentPath(p) == dir {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func (s *Server) model(p string, e *entry) map[string]any {
	name := p[strings.LastIndex(p, "/")+1:]
	return map[string]any{
		"name":          name,
		"path":          strings.TrimPrefix(p, "/"),
		"type":          string(e.kind),
		"writable":      true,
		"last_modified": e.modified.Format(time.RFC3339Nano),
		"format":        nil,
		"mimetype":      nil,
		"content":       nil,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
