package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jomei/notionapi"
	"go.uber.org/zap"

	"github.com/mhellberg/language-study-mcp/internal/notion"
)

// fakeNotion is an in-memory stand-in for the Notion API, covering the
// four endpoints the service uses: database query, page create, page
// retrieve and page update. Pages are kept in insertion order so query
// results are deterministic.
type fakeNotion struct {
	t  *testing.T
	mu sync.Mutex

	order    []string
	pages    map[string]*storedPage
	pageSize int // pages per query response; 0 means everything at once

	srv *httptest.Server
}

type storedPage struct {
	id       string
	database string
	props    notionapi.Properties
}

func newFakeNotion(t *testing.T) *fakeNotion {
	t.Helper()
	f := &fakeNotion{
		t:     t,
		pages: map[string]*storedPage{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/databases/{id}/query", f.handleQuery)
	mux.HandleFunc("POST /v1/pages", f.handleCreate)
	mux.HandleFunc("GET /v1/pages/{id}", f.handleGet)
	mux.HandleFunc("PATCH /v1/pages/{id}", f.handleUpdate)

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

// addPage seeds a page directly, bypassing the HTTP surface.
func (f *fakeNotion) addPage(database string, props notionapi.Properties) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.NewString()
	f.pages[id] = &storedPage{id: id, database: database, props: props}
	f.order = append(f.order, id)
	return id
}

// page returns the stored page for assertions on written properties.
func (f *fakeNotion) page(id string) *storedPage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pages[id]
}

func (f *fakeNotion) handleQuery(w http.ResponseWriter, r *http.Request) {
	database := r.PathValue("id")

	var req struct {
		Filter      json.RawMessage `json:"filter"`
		StartCursor string          `json:"start_cursor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		f.t.Errorf("query: decoding request: %v", err)
	}
	var filter map[string]interface{}
	if len(req.Filter) > 0 && string(req.Filter) != "null" {
		if err := json.Unmarshal(req.Filter, &filter); err != nil {
			f.t.Errorf("query: decoding filter: %v", err)
		}
	}

	f.mu.Lock()
	var matched []*storedPage
	for _, id := range f.order {
		p := f.pages[id]
		if p.database == database && matchFilter(filter, p.props) {
			matched = append(matched, p)
		}
	}
	f.mu.Unlock()

	start := 0
	if req.StartCursor != "" {
		fmt.Sscanf(req.StartCursor, "%d", &start)
	}
	end := len(matched)
	if f.pageSize > 0 && start+f.pageSize < end {
		end = start + f.pageSize
	}

	results := make([]map[string]interface{}, 0, end-start)
	for _, p := range matched[start:end] {
		results = append(results, pageJSON(p))
	}
	resp := map[string]interface{}{
		"object":      "list",
		"results":     results,
		"has_more":    end < len(matched),
		"next_cursor": "",
	}
	if end < len(matched) {
		resp["next_cursor"] = fmt.Sprintf("%d", end)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (f *fakeNotion) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Parent struct {
			DatabaseID string `json:"database_id"`
		} `json:"parent"`
		Properties notionapi.Properties `json:"properties"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		f.t.Errorf("create: decoding request: %v", err)
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	id := f.addPage(req.Parent.DatabaseID, req.Properties)
	writeJSON(w, http.StatusOK, pageJSON(f.page(id)))
}

func (f *fakeNotion) handleGet(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	p := f.pages[r.PathValue("id")]
	f.mu.Unlock()
	if p == nil {
		writeError(w, http.StatusNotFound, "object_not_found", "Could not find page with ID: "+r.PathValue("id"))
		return
	}
	writeJSON(w, http.StatusOK, pageJSON(p))
}

func (f *fakeNotion) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Properties notionapi.Properties `json:"properties"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		f.t.Errorf("update: decoding request: %v", err)
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	f.mu.Lock()
	p := f.pages[r.PathValue("id")]
	if p != nil {
		for name, prop := range req.Properties {
			p.props[name] = prop
		}
	}
	f.mu.Unlock()
	if p == nil {
		writeError(w, http.StatusNotFound, "object_not_found", "Could not find page with ID: "+r.PathValue("id"))
		return
	}
	writeJSON(w, http.StatusOK, pageJSON(p))
}

// matchFilter evaluates the subset of the Notion filter grammar the
// service emits: select equality clauses, alone or under "and".
func matchFilter(filter map[string]interface{}, props notionapi.Properties) bool {
	if filter == nil {
		return true
	}
	if clauses, ok := filter["and"].([]interface{}); ok {
		for _, raw := range clauses {
			clause, _ := raw.(map[string]interface{})
			if !matchFilter(clause, props) {
				return false
			}
		}
		return true
	}

	property, _ := filter["property"].(string)
	sel, _ := filter["select"].(map[string]interface{})
	equals, _ := sel["equals"].(string)
	p, ok := props[property].(*notionapi.SelectProperty)
	return ok && p.Select.Name == equals
}

func pageJSON(p *storedPage) map[string]interface{} {
	return map[string]interface{}{
		"object":     "page",
		"id":         p.id,
		"archived":   false,
		"parent":     map[string]interface{}{"type": "database_id", "database_id": p.database},
		"properties": p.props,
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"object":  "error",
		"status":  status,
		"code":    code,
		"message": message,
	})
}

// pageFromStored wraps stored properties in a page so the accessor
// helpers can read them in assertions.
func pageFromStored(p *storedPage) *notionapi.Page {
	return &notionapi.Page{ID: notionapi.ObjectID(p.id), Properties: p.props}
}

// findPageID locates a vocabulary page by its title.
func findPageID(t *testing.T, f *fakeNotion, word string) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.order {
		if notion.Title(pageFromStored(f.pages[id]), propWord) == word {
			return id
		}
	}
	t.Fatalf("no page titled %q", word)
	return ""
}

// rewriteTransport redirects api.notion.com traffic to the fake server.
// The Notion client has no base URL option.
type rewriteTransport struct {
	host string
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = rt.host
	return http.DefaultTransport.RoundTrip(req)
}

const (
	testVocabDB   = "vocab-db"
	testGrammarDB = "grammar-db"
)

// newTestService wires a StudyService to the fake backend.
func newTestService(t *testing.T, f *fakeNotion) *StudyService {
	t.Helper()
	client := notionapi.NewClient("secret-test",
		notionapi.WithHTTPClient(&http.Client{
			Transport: rewriteTransport{host: f.srv.Listener.Addr().String()},
		}))
	return &StudyService{
		Client:    client,
		VocabDB:   testVocabDB,
		GrammarDB: testGrammarDB,
		Logger:    zap.NewNop(),
	}
}
