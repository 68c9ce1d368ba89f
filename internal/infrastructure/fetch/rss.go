package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsLens/internal/domain"
)

// RSSTransport pulls RSS/Atom feeds via gofeed.
type RSSTransport struct {
	client *http.Client
}

// NewRSSTransport wires an HTTP client; a default with a 20s timeout is
// used when nil.
func NewRSSTransport(client *http.Client) *RSSTransport {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &RSSTransport{client: client}
}

// Kind identifies the transport inside the registry.
func (t *RSSTransport) Kind() string { return "rss" }

// Fetch downloads and parses the source's feed.
func (t *RSSTransport) Fetch(ctx context.Context, src domain.Source) ([]domain.RawItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.FeedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "NewsLens/1.0")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]domain.RawItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || item.Link == "" {
			continue
		}

		raw := domain.RawItem{
			GUID:        item.GUID,
			Title:       item.Title,
			Link:        item.Link,
			Description: item.Description,
			Content:     item.Content,
			Categories:  item.Categories,
		}
		if item.PublishedParsed != nil {
			raw.Published = item.PublishedParsed.UTC()
		} else if item.UpdatedParsed != nil {
			raw.Published = item.UpdatedParsed.UTC()
		}
		if item.Image != nil {
			raw.ImageURL = item.Image.URL
		}

		items = append(items, raw)
	}

	return items, nil
}
