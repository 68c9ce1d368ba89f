package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"NewsLens/internal/cluster"
	"NewsLens/internal/domain"
	"NewsLens/internal/ports"
	"NewsLens/internal/scoring"
)

// PipelineDeps wires all collaborators into the ingestion pipeline.
type PipelineDeps struct {
	Registry  ports.SourceRegistry
	Fetcher   ports.DraftFetcher
	Store     ports.Store
	Clusterer *cluster.Engine
	Scorer    *scoring.Engine
	Logger    *slog.Logger
}

// Pipeline implements one ingestion cycle: fetch, dedup/cluster, score,
// commit. Writes land in a single atomic batch; per-source failures are
// collected into the cycle summary instead of failing the cycle.
type Pipeline struct {
	registry  ports.SourceRegistry
	fetcher   ports.DraftFetcher
	store     ports.Store
	clusterer *cluster.Engine
	scorer    *scoring.Engine
	logger    *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		registry:  deps.Registry,
		fetcher:   deps.Fetcher,
		store:     deps.Store,
		clusterer: deps.Clusterer,
		scorer:    deps.Scorer,
		logger:    deps.Logger,
	}
}

// RunCycle executes one end-to-end ingestion cycle. Given a fixed set
// of fetched drafts the outcome is deterministic: clustering and
// scoring depend only on article fields, not arrival order.
func (p *Pipeline) RunCycle(ctx context.Context, now time.Time) (domain.CycleSummary, error) {
	summary := domain.CycleSummary{StartedAt: now}

	sources, err := p.registry.ListActive(ctx)
	if err != nil {
		return summary, fmt.Errorf("list active sources: %w", err)
	}
	summary.SourcesTotal = len(sources)

	fetched := p.fetcher.FetchAll(ctx, sources, now)
	summary.Failures = fetched.Failures
	summary.SourcesFailed = len(fetched.Failures)
	summary.ItemsDropped = fetched.Dropped

	// Idempotent ingestion: a re-fetched item maps onto the same id and
	// is skipped rather than re-clustered.
	drafts := make([]domain.Article, 0, len(fetched.Drafts))
	for _, draft := range fetched.Drafts {
		if _, err := p.store.GetArticle(ctx, draft.ID); err == nil {
			continue
		} else {
			var notFound *domain.NotFoundError
			if !errors.As(err, &notFound) {
				return summary, fmt.Errorf("check draft %s: %w", draft.ID, err)
			}
		}
		drafts = append(drafts, draft)
	}
	summary.ArticlesIngested = len(drafts)

	open, err := p.store.ListClusters(ctx, true)
	if err != nil {
		return summary, fmt.Errorf("list open clusters: %w", err)
	}

	assigned := p.clusterer.Assign(drafts, open, now)
	summary.ClustersTouched = len(assigned.Clusters)

	batch, err := p.scoreClusters(ctx, assigned, now)
	if err != nil {
		return summary, err
	}
	batch.RemovedClusterIDs = assigned.RemovedClusterIDs

	if err := p.store.CommitBatch(ctx, batch); err != nil {
		return summary, fmt.Errorf("commit batch: %w", err)
	}

	summary.FinishedAt = time.Now()
	p.logSummary(summary)
	return summary, nil
}

// scoreClusters recomputes metrics for every open cluster, pulling
// already-stored members so growing clusters keep their coverage and
// fact-check context.
func (p *Pipeline) scoreClusters(ctx context.Context, assigned cluster.Result, now time.Time) (domain.CommitBatch, error) {
	var batch domain.CommitBatch

	draftsByID := make(map[string]domain.Article, len(assigned.Drafts))
	for _, d := range assigned.Drafts {
		draftsByID[d.ID] = d
	}

	sourceCache := map[string]domain.Source{}
	for _, c := range assigned.Clusters {
		members := make([]domain.Article, 0, len(c.ArticleIDs))
		for _, id := range c.ArticleIDs {
			if draft, ok := draftsByID[id]; ok {
				draft.ClusterID = c.ID
				members = append(members, draft)
				continue
			}
			stored, err := p.store.GetArticle(ctx, id)
			if err != nil {
				var notFound *domain.NotFoundError
				if errors.As(err, &notFound) {
					continue
				}
				return batch, fmt.Errorf("load cluster member %s: %w", id, err)
			}
			stored.ClusterID = c.ID
			members = append(members, stored)
		}

		for _, m := range members {
			if _, ok := sourceCache[m.SourceID]; ok {
				continue
			}
			src, err := p.registry.Get(ctx, m.SourceID)
			if err != nil {
				continue // unknown source degrades scoring, not the cycle
			}
			sourceCache[m.SourceID] = src
		}

		scoredCluster, scoredMembers := p.scorer.ScoreCluster(c, members, sourceCache, now)
		refreshRelated(scoredMembers, scoredCluster)

		batch.Clusters = append(batch.Clusters, scoredCluster)
		batch.Articles = append(batch.Articles, scoredMembers...)
	}

	return batch, nil
}

// refreshRelated keeps member back-references aligned with final
// cluster membership, including members absorbed through merges.
func refreshRelated(members []domain.Article, c domain.StoryCluster) {
	for i := range members {
		related := make([]string, 0, len(c.ArticleIDs))
		for _, id := range c.ArticleIDs {
			if id != members[i].ID {
				related = append(related, id)
			}
		}
		members[i].RelatedArticles = related
	}
}

func (p *Pipeline) logSummary(summary domain.CycleSummary) {
	if p.logger == nil {
		return
	}

	p.logger.Info("ingestion cycle done",
		"sources", summary.SourcesTotal,
		"failed_sources", summary.SourcesFailed,
		"articles", summary.ArticlesIngested,
		"dropped_items", summary.ItemsDropped,
		"clusters", summary.ClustersTouched,
		"elapsed", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond),
	)
	for _, failure := range summary.Failures {
		p.logger.Warn("source failed this cycle", "source", failure.SourceID, "reason", failure.Reason)
	}
}
