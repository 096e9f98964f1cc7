package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"docrag/src/core/collection"
	"docrag/src/core/retrieval"
	"docrag/src/storage/memory"
)

type fakeEmbedder struct {
	embedding collection.Embedding
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) (collection.Embedding, error) {
	return f.embedding, nil
}

type fakeGenerator struct {
	response string
}

func (f *fakeGenerator) Generate(_ context.Context, _ []retrieval.Message) (string, error) {
	return f.response, nil
}

func newTestRouter(t *testing.T, store collection.Store, generator retrieval.Generator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	orchestrator, err := retrieval.NewOrchestrator(
		&fakeEmbedder{embedding: collection.Embedding{1, 0, 0}},
		store,
		generator,
		5,
	)
	if err != nil {
		t.Fatalf("NewOrchestrator() error: %v", err)
	}

	handler := NewHandler(nil, nil, nil, orchestrator, store, nil)
	r := gin.New()
	handler.RegisterRoutes(r)
	return r
}

func seedStore(t *testing.T, store collection.Store) {
	t.Helper()
	items := []collection.Item{
		collection.NewItem("alpha text", "a.pdf", "Page 1", collection.Embedding{1, 0, 0}),
		collection.NewItem("beta text", "b.pdf", "Page 2", collection.Embedding{0, 1, 0}),
	}
	for _, item := range items {
		if err := store.Insert(context.Background(), item); err != nil {
			t.Fatalf("Insert() error: %v", err)
		}
	}
}

func TestSearchEndpoint(t *testing.T) {
	store := memory.NewStore()
	seedStore(t, store)
	r := newTestRouter(t, store, &fakeGenerator{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(`{"query":"alpha","top_k":1}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp searchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(resp.Items))
	}
	if resp.Items[0].Text != "alpha text" {
		t.Errorf("nearest item text = %q, want %q", resp.Items[0].Text, "alpha text")
	}
}

func TestSearchEndpointEmptyCollection(t *testing.T) {
	r := newTestRouter(t, memory.NewStore(), &fakeGenerator{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(`{"query":"anything"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `"items":[]`) {
		t.Errorf("empty collection must return an empty items array, got %s", w.Body.String())
	}
}

func TestSearchEndpointMissingQuery(t *testing.T) {
	r := newTestRouter(t, memory.NewStore(), &fakeGenerator{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestGenerateCompletionEndpoint(t *testing.T) {
	store := memory.NewStore()
	seedStore(t, store)
	r := newTestRouter(t, store, &fakeGenerator{response: "generated answer"})

	body := `{"messages":[{"role":"user","content":"what is alpha?"}]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/completions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var msg retrieval.Message
	if err := json.Unmarshal(w.Body.Bytes(), &msg); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if msg.Role != retrieval.RoleAssistant {
		t.Errorf("response role = %q, want %q", msg.Role, retrieval.RoleAssistant)
	}
	if msg.Content != "generated answer" {
		t.Errorf("response content = %q, want %q", msg.Content, "generated answer")
	}
}

func TestGenerateCompletionRejectsNonUserLastMessage(t *testing.T) {
	r := newTestRouter(t, memory.NewStore(), &fakeGenerator{})

	body := `{"messages":[{"role":"assistant","content":"hello"}]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/completions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCollectionStatsAndClear(t *testing.T) {
	store := memory.NewStore()
	seedStore(t, store)
	r := newTestRouter(t, store, &fakeGenerator{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/collection/stats", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("stats status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `"count":2`) {
		t.Errorf("stats body = %s, want count 2", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/collection", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("clear status = %d, want %d", w.Code, http.StatusNoContent)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/collection/stats", nil))
	if !strings.Contains(w.Body.String(), `"count":0`) {
		t.Errorf("stats after clear = %s, want count 0", w.Body.String())
	}
}

func TestCheckHealthDegraded(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	orchestrator, err := retrieval.NewOrchestrator(&fakeEmbedder{embedding: collection.Embedding{1}}, store, &fakeGenerator{}, 5)
	if err != nil {
		t.Fatalf("NewOrchestrator() error: %v", err)
	}

	checks := []HealthCheck{
		{Name: "store", Check: func(context.Context) error { return nil }},
		{Name: "llm", Check: func(context.Context) error { return context.DeadlineExceeded }},
	}
	handler := NewHandler(nil, nil, nil, orchestrator, store, checks)
	r := gin.New()
	handler.RegisterRoutes(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
	if !strings.Contains(w.Body.String(), `"status":"degraded"`) {
		t.Errorf("body = %s, want degraded status", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"store":"ok"`) {
		t.Errorf("body = %s, want store component ok", w.Body.String())
	}
}
