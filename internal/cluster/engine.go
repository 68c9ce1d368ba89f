package cluster

import (
	"crypto/sha1"
	"encoding/hex"
	"log/slog"
	"sort"
	"time"

	"NewsLens/internal/domain"
)

// Options tunes membership decisions. Missed duplicates are preferred
// over merging unrelated stories: downstream coverage metrics assume
// cluster purity.
type Options struct {
	SimilarityThreshold float64
	Window              time.Duration
	Staleness           time.Duration
}

// Engine assigns article drafts to story clusters. It mutates cluster
// membership and related-article back-references only; article content
// is never touched.
type Engine struct {
	opts   Options
	logger *slog.Logger
}

// NewEngine builds the clustering engine.
func NewEngine(opts Options, logger *slog.Logger) *Engine {
	if opts.SimilarityThreshold <= 0 {
		opts.SimilarityThreshold = 0.4
	}
	if opts.Window <= 0 {
		opts.Window = 48 * time.Hour
	}
	if opts.Staleness <= 0 {
		opts.Staleness = 24 * time.Hour
	}
	return &Engine{opts: opts, logger: logger}
}

// Result reports the updated cluster state after one assignment pass.
type Result struct {
	Drafts            []domain.Article
	Clusters          []domain.StoryCluster
	RemovedClusterIDs []string
}

// Assign places each draft into an existing open cluster or a new one.
// Drafts are processed in (PublishedAt, ID) order so the outcome is
// deterministic for a fixed draft set regardless of arrival order.
func (e *Engine) Assign(drafts []domain.Article, open []domain.StoryCluster, now time.Time) Result {
	sorted := make([]domain.Article, len(drafts))
	copy(sorted, drafts)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].PublishedAt.Equal(sorted[j].PublishedAt) {
			return sorted[i].PublishedAt.Before(sorted[j].PublishedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	state := make(map[string]*domain.StoryCluster, len(open))
	order := make([]string, 0, len(open))
	for i := range open {
		c := open[i]
		state[c.ID] = &c
		order = append(order, c.ID)
	}

	var removed []string
	for i := range sorted {
		draft := &sorted[i]
		tokens := Tokenize(draft.Title)

		matches := e.matchClusters(tokens, draft.PublishedAt, state, order)
		switch len(matches) {
		case 0:
			c := e.newCluster(draft, tokens, now)
			state[c.ID] = c
			order = append(order, c.ID)
			draft.ClusterID = c.ID
		case 1:
			e.join(matches[0], draft, tokens, now)
		default:
			survivor, gone := e.merge(matches, now)
			for _, id := range gone {
				delete(state, id)
				removed = append(removed, id)
			}
			e.join(survivor, draft, tokens, now)
		}
	}

	e.freezeStale(state, now)

	clusters := make([]domain.StoryCluster, 0, len(state))
	for _, id := range order {
		if c, ok := state[id]; ok {
			clusters = append(clusters, *c)
		}
	}

	applyBackReferences(sorted, clusters)
	return Result{Drafts: sorted, Clusters: clusters, RemovedClusterIDs: removed}
}

// matchClusters returns every open cluster scoring at or above the
// threshold, within the publish-time window, ordered by creation time.
func (e *Engine) matchClusters(tokens []string, publishedAt time.Time, state map[string]*domain.StoryCluster, order []string) []*domain.StoryCluster {
	var matches []*domain.StoryCluster
	for _, id := range order {
		c, ok := state[id]
		if !ok || c.Frozen {
			continue
		}
		if absDuration(publishedAt.Sub(c.EarliestPublishedAt)) > e.opts.Window {
			continue
		}
		if absDuration(publishedAt.Sub(c.LatestPublishedAt)) > e.opts.Window {
			continue
		}
		if Jaccard(tokens, c.TitleTokens) >= e.opts.SimilarityThreshold {
			matches = append(matches, c)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.Before(matches[j].CreatedAt)
		}
		return matches[i].ID < matches[j].ID
	})
	return matches
}

func (e *Engine) newCluster(draft *domain.Article, tokens []string, now time.Time) *domain.StoryCluster {
	return &domain.StoryCluster{
		ID:                  clusterID(draft.ID),
		CanonicalTitle:      draft.Title,
		TitleTokens:         tokens,
		ArticleIDs:          []string{draft.ID},
		EarliestPublishedAt: draft.PublishedAt,
		LatestPublishedAt:   draft.PublishedAt,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func (e *Engine) join(c *domain.StoryCluster, draft *domain.Article, tokens []string, now time.Time) {
	draft.ClusterID = c.ID
	if c.Contains(draft.ID) {
		return
	}

	c.ArticleIDs = append(c.ArticleIDs, draft.ID)
	c.UpdatedAt = now
	if draft.PublishedAt.After(c.LatestPublishedAt) {
		c.LatestPublishedAt = draft.PublishedAt
	}
	// Earliest published member owns the canonical title.
	if draft.PublishedAt.Before(c.EarliestPublishedAt) {
		c.EarliestPublishedAt = draft.PublishedAt
		c.CanonicalTitle = draft.Title
		c.TitleTokens = tokens
	}
}

// merge unions multi-matched clusters; the earliest-created cluster id
// survives so identity is stable under merge. A frozen participant is a
// conflict: it is logged and left untouched rather than merged.
func (e *Engine) merge(matches []*domain.StoryCluster, now time.Time) (*domain.StoryCluster, []string) {
	survivor := matches[0]
	var gone []string

	for _, other := range matches[1:] {
		if other.Frozen {
			conflict := &domain.ClusterConflictError{ClusterA: survivor.ID, ClusterB: other.ID}
			if e.logger != nil {
				e.logger.Warn("cluster merge conflict, keeping clusters separate", "error", conflict)
			}
			continue
		}

		for _, id := range other.ArticleIDs {
			if !survivor.Contains(id) {
				survivor.ArticleIDs = append(survivor.ArticleIDs, id)
			}
		}
		if other.EarliestPublishedAt.Before(survivor.EarliestPublishedAt) {
			survivor.EarliestPublishedAt = other.EarliestPublishedAt
			survivor.CanonicalTitle = other.CanonicalTitle
			survivor.TitleTokens = other.TitleTokens
		}
		if other.LatestPublishedAt.After(survivor.LatestPublishedAt) {
			survivor.LatestPublishedAt = other.LatestPublishedAt
		}
		if other.Aggregate != nil {
			mergeEvolution(survivor, other)
		}
		gone = append(gone, other.ID)
	}

	survivor.UpdatedAt = now
	return survivor, gone
}

// mergeEvolution keeps the absorbed cluster's headline timeline.
func mergeEvolution(survivor, other *domain.StoryCluster) {
	if survivor.Aggregate == nil {
		survivor.Aggregate = &domain.AggregatorData{}
	}
	survivor.Aggregate.SourceEvolution = append(survivor.Aggregate.SourceEvolution, other.Aggregate.SourceEvolution...)
	sort.Slice(survivor.Aggregate.SourceEvolution, func(i, j int) bool {
		return survivor.Aggregate.SourceEvolution[i].Timestamp.Before(survivor.Aggregate.SourceEvolution[j].Timestamp)
	})
}

func (e *Engine) freezeStale(state map[string]*domain.StoryCluster, now time.Time) {
	for _, c := range state {
		if !c.Frozen && now.Sub(c.UpdatedAt) > e.opts.Staleness {
			c.Frozen = true
		}
	}
}

// applyBackReferences rewrites each draft's related-article list from
// final cluster membership.
func applyBackReferences(drafts []domain.Article, clusters []domain.StoryCluster) {
	members := make(map[string][]string, len(clusters))
	for _, c := range clusters {
		members[c.ID] = c.ArticleIDs
	}

	for i := range drafts {
		ids := members[drafts[i].ClusterID]
		related := make([]string, 0, len(ids))
		for _, id := range ids {
			if id != drafts[i].ID {
				related = append(related, id)
			}
		}
		drafts[i].RelatedArticles = related
	}
}

func clusterID(articleID string) string {
	h := sha1.New()
	h.Write([]byte("cluster|" + articleID))
	return hex.EncodeToString(h.Sum(nil))[:20]
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
