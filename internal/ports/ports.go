package ports

import (
	"context"
	"time"

	"NewsLens/internal/domain"
)

// SourceRegistry serves source metadata. Ratings carried on sources are
// editorial inputs to scoring, never outputs of it.
type SourceRegistry interface {
	ListActive(ctx context.Context) ([]domain.Source, error)
	Get(ctx context.Context, id string) (domain.Source, error)
}

// FetchResult aggregates one cycle's fetch outcome across all sources.
type FetchResult struct {
	Drafts   []domain.Article
	Failures []domain.SourceFailure
	Dropped  int
}

// DraftFetcher pulls and normalizes raw items for every given source,
// isolating per-source failures so one bad feed never fails the cycle.
type DraftFetcher interface {
	FetchAll(ctx context.Context, sources []domain.Source, now time.Time) FetchResult
}

// ArticleStore persists canonical articles and serves snapshot reads.
type ArticleStore interface {
	GetArticle(ctx context.Context, id string) (domain.Article, error)
	ListArticles(ctx context.Context) ([]domain.Article, error)
	UpdateArticle(ctx context.Context, article domain.Article) error
	DeleteArticle(ctx context.Context, id string) error

	// IncrementViewCount is an atomic increment, safe under concurrent
	// requests; it returns the new count.
	IncrementViewCount(ctx context.Context, id string) (int64, error)
}

// ClusterStore persists story clusters.
type ClusterStore interface {
	GetCluster(ctx context.Context, id string) (domain.StoryCluster, error)
	ListClusters(ctx context.Context, openOnly bool) ([]domain.StoryCluster, error)
}

// BatchCommitter applies one ingestion cycle's writes atomically.
// Readers observe either the pre-cycle or post-cycle snapshot, never a
// partial interleaving.
type BatchCommitter interface {
	CommitBatch(ctx context.Context, batch domain.CommitBatch) error
}

// Store combines the persistence surfaces required by the pipeline and
// the feed assembler.
type Store interface {
	ArticleStore
	ClusterStore
	BatchCommitter
}

// Scheduler controls when ingestion cycles execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

// FeedCache is an optional read-side cache for assembled feed pages.
// Implementations must be safe to skip entirely (cache miss on error).
type FeedCache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration)
}
