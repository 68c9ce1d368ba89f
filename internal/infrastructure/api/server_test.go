package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"NewsLens/internal/domain"
	"NewsLens/internal/feed"
	"NewsLens/internal/infrastructure/storage"
	"NewsLens/internal/usecase"
)

func newTestServer(t *testing.T, articles ...domain.Article) (*Server, *storage.MemoryStore) {
	t.Helper()

	store := storage.NewMemoryStore()
	if err := store.CommitBatch(context.Background(), domain.CommitBatch{Articles: articles}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	assembler := feed.NewAssembler(store, nil, feed.Options{}, nil)
	admin := usecase.NewAdmin(store, nil, nil)
	return NewServer(store, assembler, admin, nil), store
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func publishedArticle(id string, category domain.Category) domain.Article {
	return domain.Article{
		ID:          id,
		SourceID:    "src-" + id,
		Title:       "Article " + id,
		Category:    category,
		Status:      domain.StatusPublished,
		PublishedAt: time.Now().Add(-time.Hour),
	}
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGetArticleNotFound(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/v1/articles/ghost", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGetArticleFound(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, publishedArticle("a1", domain.CategoryTech))
	rec := doRequest(t, s, http.MethodGet, "/api/v1/articles/a1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var art domain.Article
	if err := json.Unmarshal(rec.Body.Bytes(), &art); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if art.ID != "a1" {
		t.Fatalf("expected a1, got %q", art.ID)
	}
}

func TestFeedEndpointFiltersCategory(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t,
		publishedArticle("a1", domain.CategoryTech),
		publishedArticle("a2", domain.CategoryWorld),
	)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/feed?category=tech", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Articles []domain.Article `json:"articles"`
		Total    int              `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 || resp.Articles[0].ID != "a1" {
		t.Fatalf("expected only the tech article, got %+v", resp)
	}
}

func TestFeedEndpointRejectsUnknownCategory(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/v1/feed?category=astrology", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestFeedEndpointPersonalizedWhenPreferencesPresent(t *testing.T) {
	t.Parallel()

	old := publishedArticle("a1", domain.CategoryWorld)
	old.PublishedAt = time.Now().Add(-30 * time.Hour)
	fresh := publishedArticle("a2", domain.CategoryTech)

	s, _ := newTestServer(t, old, fresh)
	rec := doRequest(t, s, http.MethodGet, "/api/v1/feed?sources=src-a1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Articles []domain.Article `json:"articles"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Articles) != 2 || resp.Articles[0].ID != "a1" {
		t.Fatalf("expected the followed source ranked first, got %+v", resp.Articles)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/v1/search", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without q, got %d", rec.Code)
	}
}

func TestIncrementViewsEndpoint(t *testing.T) {
	t.Parallel()

	s, store := newTestServer(t, publishedArticle("a1", domain.CategoryTech))

	rec := doRequest(t, s, http.MethodPost, "/api/v1/articles/a1/views", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		ViewCount int64 `json:"viewCount"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ViewCount != 1 {
		t.Fatalf("expected view count 1, got %d", resp.ViewCount)
	}

	art, _ := store.GetArticle(context.Background(), "a1")
	if art.ViewCount != 1 {
		t.Fatalf("store count mismatch, got %d", art.ViewCount)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/v1/articles/ghost/views", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown article, got %d", rec.Code)
	}
}

func TestModerationEndpoint(t *testing.T) {
	t.Parallel()

	draft := publishedArticle("a1", domain.CategoryTech)
	draft.Status = domain.StatusDraft
	s, store := newTestServer(t, draft)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/moderation",
		`{"articleId": "a1", "status": "approved", "reason": "checks out"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	art, _ := store.GetArticle(context.Background(), "a1")
	if art.Status != domain.StatusPublished {
		t.Fatalf("approval must publish, got %s", art.Status)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/v1/moderation", `{"articleId": "a1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing status, got %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/v1/moderation",
		`{"articleId": "a1", "status": "promoted"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rec.Code)
	}
}

func TestBulkEndpointPartialSuccess(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t,
		publishedArticle("a1", domain.CategoryTech),
		publishedArticle("a2", domain.CategoryTech),
	)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/articles/bulk",
		`{"ids": ["a1", "ghost", "a2"], "operation": "delete"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success int      `json:"success"`
		Failed  int      `json:"failed"`
		Errors  []string `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Success != 2 || resp.Failed != 1 {
		t.Fatalf("expected partial success, got %+v", resp)
	}
	if len(resp.Errors) != 1 || resp.Errors[0] != "Article ghost not found" {
		t.Fatalf("unexpected errors: %v", resp.Errors)
	}
}

func TestBulkEndpointRejectsUnknownOperation(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, publishedArticle("a1", domain.CategoryTech))
	rec := doRequest(t, s, http.MethodPost, "/api/v1/articles/bulk",
		`{"ids": ["a1"], "operation": "explode"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
