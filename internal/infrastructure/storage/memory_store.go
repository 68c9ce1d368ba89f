package storage

import (
	"context"
	"sync"
	"sync/atomic"

	"NewsLens/internal/domain"
	"NewsLens/internal/ports"
)

// MemoryStore keeps articles and clusters in process memory. An
// ingestion cycle's writes are applied under the write lock as one
// batch, so readers see either the previous or the new snapshot, never
// a partial interleaving. View counts live in dedicated atomic counters
// so concurrent increments proceed under the read lock without lost
// updates.
type MemoryStore struct {
	mu       sync.RWMutex
	articles map[string]domain.Article
	clusters map[string]domain.StoryCluster
	views    map[string]*atomic.Int64
}

var _ ports.Store = (*MemoryStore)(nil)

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		articles: map[string]domain.Article{},
		clusters: map[string]domain.StoryCluster{},
		views:    map[string]*atomic.Int64{},
	}
}

// GetArticle returns one article with its current view count folded in.
func (s *MemoryStore) GetArticle(ctx context.Context, id string) (domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	art, ok := s.articles[id]
	if !ok {
		return domain.Article{}, &domain.NotFoundError{Kind: "article", ID: id}
	}
	if counter, ok := s.views[id]; ok {
		art.ViewCount = counter.Load()
	}
	return art, nil
}

// ListArticles returns a snapshot of all articles.
func (s *MemoryStore) ListArticles(ctx context.Context) ([]domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Article, 0, len(s.articles))
	for id, art := range s.articles {
		if counter, ok := s.views[id]; ok {
			art.ViewCount = counter.Load()
		}
		out = append(out, art)
	}
	return out, nil
}

// UpdateArticle overwrites one article record. The view counter is
// authoritative over the stored field and is not reset.
func (s *MemoryStore) UpdateArticle(ctx context.Context, article domain.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.articles[article.ID]; !ok {
		return &domain.NotFoundError{Kind: "article", ID: article.ID}
	}
	s.articles[article.ID] = article
	return nil
}

// DeleteArticle removes one article and its counter.
func (s *MemoryStore) DeleteArticle(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.articles[id]; !ok {
		return &domain.NotFoundError{Kind: "article", ID: id}
	}
	delete(s.articles, id)
	delete(s.views, id)
	return nil
}

// IncrementViewCount atomically bumps the counter; safe under any
// number of concurrent callers.
func (s *MemoryStore) IncrementViewCount(ctx context.Context, id string) (int64, error) {
	s.mu.RLock()
	counter, ok := s.views[id]
	s.mu.RUnlock()

	if !ok {
		return 0, &domain.NotFoundError{Kind: "article", ID: id}
	}
	return counter.Add(1), nil
}

// GetCluster returns one cluster.
func (s *MemoryStore) GetCluster(ctx context.Context, id string) (domain.StoryCluster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clusters[id]
	if !ok {
		return domain.StoryCluster{}, &domain.NotFoundError{Kind: "cluster", ID: id}
	}
	return c, nil
}

// ListClusters returns a snapshot of clusters, optionally only the
// open (unfrozen) ones.
func (s *MemoryStore) ListClusters(ctx context.Context, openOnly bool) ([]domain.StoryCluster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.StoryCluster, 0, len(s.clusters))
	for _, c := range s.clusters {
		if openOnly && c.Frozen {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// CommitBatch applies one ingestion cycle's writes atomically.
func (s *MemoryStore) CommitBatch(ctx context.Context, batch domain.CommitBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, art := range batch.Articles {
		if existing, ok := s.articles[art.ID]; ok {
			// Preserve states set through the admin surface.
			if existing.Status == domain.StatusArchived {
				art.Status = existing.Status
			}
		} else {
			counter := &atomic.Int64{}
			counter.Store(art.ViewCount)
			s.views[art.ID] = counter
		}
		s.articles[art.ID] = art
	}

	for _, c := range batch.Clusters {
		s.clusters[c.ID] = c
	}
	for _, id := range batch.RemovedClusterIDs {
		delete(s.clusters, id)
	}

	return nil
}
