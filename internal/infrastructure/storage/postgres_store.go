package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"NewsLens/internal/domain"
	"NewsLens/internal/ports"
)

// articleMetrics is the JSON blob of scoring attachments persisted in
// one jsonb column.
type articleMetrics struct {
	TrustScore   *domain.TrustMetrics      `json:"trustScore,omitempty"`
	BiasAnalysis *domain.BiasAnalysis      `json:"biasAnalysis,omitempty"`
	FactCheck    *domain.FactCheckResult   `json:"factCheck,omitempty"`
	Coverage     *domain.CoverageAnalysis  `json:"coverage,omitempty"`
	Sentiment    *domain.SentimentAnalysis `json:"sentiment,omitempty"`
}

// PostgresStore persists articles and clusters in Postgres. Batch
// commits run inside one transaction to satisfy atomic-batch-commit
// semantics; view counts use an in-database atomic increment.
type PostgresStore struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ ports.Store = (*PostgresStore)(nil)

// NewPostgresStore opens the connection and ensures the schema.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	store := &PostgresStore{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
	if err := store.migrate(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS articles (
    id            TEXT PRIMARY KEY,
    source_id     TEXT NOT NULL,
    source_name   TEXT NOT NULL,
    canonical_url TEXT NOT NULL,
    image_url     TEXT NOT NULL DEFAULT '',
    title         TEXT NOT NULL,
    title_ai      TEXT NOT NULL DEFAULT '',
    excerpt       TEXT NOT NULL DEFAULT '',
    tldr          TEXT NOT NULL DEFAULT '',
    tags          JSONB NOT NULL DEFAULT '[]',
    category      TEXT NOT NULL,
    status        TEXT NOT NULL,
    published_at  TIMESTAMPTZ NOT NULL,
    imported_at   TIMESTAMPTZ NOT NULL,
    view_count    BIGINT NOT NULL DEFAULT 0,
    cluster_id    TEXT NOT NULL DEFAULT '',
    related       JSONB NOT NULL DEFAULT '[]',
    metrics       JSONB NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_articles_category ON articles (category, published_at DESC);
CREATE INDEX IF NOT EXISTS idx_articles_cluster ON articles (cluster_id);

CREATE TABLE IF NOT EXISTS clusters (
    id           TEXT PRIMARY KEY,
    payload      JSONB NOT NULL,
    frozen       BOOLEAN NOT NULL DEFAULT FALSE,
    created_at   TIMESTAMPTZ NOT NULL,
    updated_at   TIMESTAMPTZ NOT NULL
);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// GetArticle loads one article by id.
func (s *PostgresStore) GetArticle(ctx context.Context, id string) (domain.Article, error) {
	query, args, err := s.sb.
		Select(articleColumns...).
		From("articles").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build query: %w", err)
	}

	art, err := scanArticle(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Article{}, &domain.NotFoundError{Kind: "article", ID: id}
	}
	if err != nil {
		return domain.Article{}, fmt.Errorf("scan article: %w", err)
	}
	return art, nil
}

// ListArticles loads every article.
func (s *PostgresStore) ListArticles(ctx context.Context) ([]domain.Article, error) {
	query, args, err := s.sb.
		Select(articleColumns...).
		From("articles").
		OrderBy("published_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var out []domain.Article
	for rows.Next() {
		art, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		out = append(out, art)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

// UpdateArticle upserts one article record.
func (s *PostgresStore) UpdateArticle(ctx context.Context, article domain.Article) error {
	return s.upsertArticle(ctx, s.db, article)
}

// DeleteArticle removes one article.
func (s *PostgresStore) DeleteArticle(ctx context.Context, id string) error {
	query, args, err := s.sb.Delete("articles").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &domain.NotFoundError{Kind: "article", ID: id}
	}
	return nil
}

// IncrementViewCount bumps the counter in a single UPDATE so concurrent
// requests never lose increments.
func (s *PostgresStore) IncrementViewCount(ctx context.Context, id string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`UPDATE articles SET view_count = view_count + 1 WHERE id = $1 RETURNING view_count`, id).
		Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &domain.NotFoundError{Kind: "article", ID: id}
	}
	if err != nil {
		return 0, fmt.Errorf("increment view count: %w", err)
	}
	return count, nil
}

// GetCluster loads one cluster by id.
func (s *PostgresStore) GetCluster(ctx context.Context, id string) (domain.StoryCluster, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM clusters WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StoryCluster{}, &domain.NotFoundError{Kind: "cluster", ID: id}
	}
	if err != nil {
		return domain.StoryCluster{}, fmt.Errorf("query cluster: %w", err)
	}

	var cluster domain.StoryCluster
	if err := json.Unmarshal(payload, &cluster); err != nil {
		return domain.StoryCluster{}, fmt.Errorf("decode cluster: %w", err)
	}
	return cluster, nil
}

// ListClusters loads clusters, optionally only the open ones.
func (s *PostgresStore) ListClusters(ctx context.Context, openOnly bool) ([]domain.StoryCluster, error) {
	builder := s.sb.Select("payload").From("clusters")
	if openOnly {
		builder = builder.Where(sq.Eq{"frozen": false})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query clusters: %w", err)
	}
	defer rows.Close()

	var out []domain.StoryCluster
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan cluster: %w", err)
		}
		var cluster domain.StoryCluster
		if err := json.Unmarshal(payload, &cluster); err != nil {
			return nil, fmt.Errorf("decode cluster: %w", err)
		}
		out = append(out, cluster)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

// CommitBatch applies one ingestion cycle inside a transaction.
func (s *PostgresStore) CommitBatch(ctx context.Context, batch domain.CommitBatch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback()

	for _, art := range batch.Articles {
		if err := s.upsertArticle(ctx, tx, art); err != nil {
			return err
		}
	}
	for _, cluster := range batch.Clusters {
		payload, err := json.Marshal(cluster)
		if err != nil {
			return fmt.Errorf("encode cluster %s: %w", cluster.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO clusters (id, payload, frozen, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload,
    frozen = EXCLUDED.frozen, updated_at = EXCLUDED.updated_at`,
			cluster.ID, payload, cluster.Frozen, cluster.CreatedAt, cluster.UpdatedAt)
		if err != nil {
			return fmt.Errorf("upsert cluster %s: %w", cluster.ID, err)
		}
	}
	for _, id := range batch.RemovedClusterIDs {
		if _, err := tx.ExecContext(ctx, `DELETE FROM clusters WHERE id = $1`, id); err != nil {
			return fmt.Errorf("remove cluster %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) upsertArticle(ctx context.Context, ex execer, art domain.Article) error {
	tags, err := json.Marshal(art.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	related, err := json.Marshal(art.RelatedArticles)
	if err != nil {
		return fmt.Errorf("encode related: %w", err)
	}
	metrics, err := json.Marshal(articleMetrics{
		TrustScore:   art.TrustScore,
		BiasAnalysis: art.BiasAnalysis,
		FactCheck:    art.FactCheck,
		Coverage:     art.Coverage,
		Sentiment:    art.Sentiment,
	})
	if err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}

	query, args, err := s.sb.
		Insert("articles").
		Columns(articleColumns...).
		Values(art.ID, art.SourceID, art.SourceName, art.CanonicalURL, art.ImageURL,
			art.Title, art.TitleAI, art.Excerpt, art.TLDR, tags,
			art.Category, art.Status, art.PublishedAt, art.ImportedAt,
			art.ViewCount, art.ClusterID, related, metrics).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
            title = EXCLUDED.title, title_ai = EXCLUDED.title_ai,
            excerpt = EXCLUDED.excerpt, tldr = EXCLUDED.tldr,
            tags = EXCLUDED.tags, category = EXCLUDED.category,
            status = EXCLUDED.status, image_url = EXCLUDED.image_url,
            cluster_id = EXCLUDED.cluster_id, related = EXCLUDED.related,
            metrics = EXCLUDED.metrics`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert article %s: %w", art.ID, err)
	}
	return nil
}

var articleColumns = []string{
	"id", "source_id", "source_name", "canonical_url", "image_url",
	"title", "title_ai", "excerpt", "tldr", "tags",
	"category", "status", "published_at", "imported_at",
	"view_count", "cluster_id", "related", "metrics",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (domain.Article, error) {
	var art domain.Article
	var tags, related, metricsRaw []byte

	err := row.Scan(&art.ID, &art.SourceID, &art.SourceName, &art.CanonicalURL, &art.ImageURL,
		&art.Title, &art.TitleAI, &art.Excerpt, &art.TLDR, &tags,
		&art.Category, &art.Status, &art.PublishedAt, &art.ImportedAt,
		&art.ViewCount, &art.ClusterID, &related, &metricsRaw)
	if err != nil {
		return domain.Article{}, err
	}

	if err := json.Unmarshal(tags, &art.Tags); err != nil {
		return domain.Article{}, fmt.Errorf("decode tags: %w", err)
	}
	if err := json.Unmarshal(related, &art.RelatedArticles); err != nil {
		return domain.Article{}, fmt.Errorf("decode related: %w", err)
	}
	var metrics articleMetrics
	if err := json.Unmarshal(metricsRaw, &metrics); err != nil {
		return domain.Article{}, fmt.Errorf("decode metrics: %w", err)
	}
	art.TrustScore = metrics.TrustScore
	art.BiasAnalysis = metrics.BiasAnalysis
	art.FactCheck = metrics.FactCheck
	art.Coverage = metrics.Coverage
	art.Sentiment = metrics.Sentiment

	return art, nil
}
