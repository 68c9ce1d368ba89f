package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"NewsLens/internal/domain"
)

const apiMaxResponseBytes = 4 << 20 // 4MB

// APITransport pulls sources that expose a structured JSON endpoint
// instead of an RSS feed.
type APITransport struct {
	client *http.Client
}

// NewAPITransport wires an HTTP client; a default with a 20s timeout is
// used when nil.
func NewAPITransport(client *http.Client) *APITransport {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &APITransport{client: client}
}

// Kind identifies the transport inside the registry.
func (t *APITransport) Kind() string { return "api" }

type apiItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	ImageURL    string   `json:"imageUrl"`
	Categories  []string `json:"categories"`
	PublishedAt string   `json:"publishedAt"`
}

// Fetch downloads the endpoint and maps its JSON array onto raw items.
// Timestamps are passed through unparsed when invalid; the normalizer
// decides whether to drop the item.
func (t *APITransport) Fetch(ctx context.Context, src domain.Source) ([]domain.RawItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.FeedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "NewsLens/1.0")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("endpoint returned %s", resp.Status)
	}

	var payload []apiItem
	if err := json.NewDecoder(io.LimitReader(resp.Body, apiMaxResponseBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	items := make([]domain.RawItem, 0, len(payload))
	for _, it := range payload {
		if it.URL == "" {
			continue
		}

		raw := domain.RawItem{
			GUID:        it.ID,
			Title:       it.Title,
			Link:        it.URL,
			Description: it.Description,
			Content:     it.Content,
			ImageURL:    it.ImageURL,
			Categories:  it.Categories,
		}
		if ts, err := time.Parse(time.RFC3339, it.PublishedAt); err == nil {
			raw.Published = ts.UTC()
		}

		items = append(items, raw)
	}

	return items, nil
}
