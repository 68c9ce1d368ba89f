package cluster

import (
	"reflect"
	"testing"
	"time"

	"NewsLens/internal/domain"
)

func draft(id, title string, published time.Time) domain.Article {
	return domain.Article{ID: id, Title: title, PublishedAt: published}
}

func TestAssignGroupsParaphrasedHeadlines(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	drafts := []domain.Article{
		draft("a1", "Fed raises rates by 0.25%", now.Add(-2*time.Hour)),
		draft("a2", "Federal Reserve hikes interest rates a quarter point", now.Add(-time.Hour)),
	}

	engine := NewEngine(Options{}, nil)
	result := engine.Assign(drafts, nil, now)

	if len(result.Clusters) != 1 {
		t.Fatalf("expected one cluster, got %d", len(result.Clusters))
	}
	c := result.Clusters[0]
	if len(c.ArticleIDs) != 2 {
		t.Fatalf("expected both articles in the cluster, got %v", c.ArticleIDs)
	}
	if c.CanonicalTitle != "Fed raises rates by 0.25%" {
		t.Fatalf("expected earliest title to be canonical, got %q", c.CanonicalTitle)
	}

	for _, d := range result.Drafts {
		if d.ClusterID != c.ID {
			t.Fatalf("draft %s missing cluster back-reference", d.ID)
		}
		if len(d.RelatedArticles) != 1 {
			t.Fatalf("draft %s expected one related article, got %v", d.ID, d.RelatedArticles)
		}
	}
}

func TestAssignKeepsUnrelatedStoriesApart(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	drafts := []domain.Article{
		draft("a1", "Fed raises rates by 0.25%", now.Add(-time.Hour)),
		draft("a2", "Champions League final ends in penalty shootout", now.Add(-time.Hour)),
	}

	engine := NewEngine(Options{}, nil)
	result := engine.Assign(drafts, nil, now)

	if len(result.Clusters) != 2 {
		t.Fatalf("expected two clusters, got %d", len(result.Clusters))
	}
}

func TestAssignWindowSeparatesRecurringStories(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	drafts := []domain.Article{
		draft("a1", "Fed raises rates by 0.25%", now.Add(-80*time.Hour)),
		draft("a2", "Fed raises rates by 0.25%", now),
	}

	engine := NewEngine(Options{Window: 48 * time.Hour}, nil)
	result := engine.Assign(drafts, nil, now)

	if len(result.Clusters) != 2 {
		t.Fatalf("expected the old and new story in separate clusters, got %d", len(result.Clusters))
	}
}

func TestAssignMergesBridgedClusters(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	open := []domain.StoryCluster{
		{
			ID:                  "older",
			CanonicalTitle:      "Fed raises interest rates",
			TitleTokens:         Tokenize("Fed raises interest rates"),
			ArticleIDs:          []string{"a1"},
			EarliestPublishedAt: now.Add(-3 * time.Hour),
			LatestPublishedAt:   now.Add(-3 * time.Hour),
			CreatedAt:           now.Add(-3 * time.Hour),
			UpdatedAt:           now.Add(-3 * time.Hour),
		},
		{
			ID:                  "newer",
			CanonicalTitle:      "Federal Reserve rate decision shocks markets",
			TitleTokens:         Tokenize("Federal Reserve rate decision shocks markets"),
			ArticleIDs:          []string{"a2"},
			EarliestPublishedAt: now.Add(-2 * time.Hour),
			LatestPublishedAt:   now.Add(-2 * time.Hour),
			CreatedAt:           now.Add(-2 * time.Hour),
			UpdatedAt:           now.Add(-2 * time.Hour),
		},
	}

	bridge := draft("a3", "Federal Reserve raises interest rates, markets react to decision", now.Add(-time.Hour))

	engine := NewEngine(Options{SimilarityThreshold: 0.4}, nil)
	result := engine.Assign([]domain.Article{bridge}, open, now)

	if len(result.Clusters) != 1 {
		t.Fatalf("expected clusters to merge into one, got %d", len(result.Clusters))
	}
	survivor := result.Clusters[0]
	if survivor.ID != "older" {
		t.Fatalf("expected earliest-created cluster id to survive, got %s", survivor.ID)
	}
	for _, id := range []string{"a1", "a2", "a3"} {
		if !survivor.Contains(id) {
			t.Fatalf("expected member %s after merge, got %v", id, survivor.ArticleIDs)
		}
	}
	if !reflect.DeepEqual(result.RemovedClusterIDs, []string{"newer"}) {
		t.Fatalf("expected absorbed cluster reported removed, got %v", result.RemovedClusterIDs)
	}
}

func TestAssignNeverMergesIntoFrozenCluster(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	open := []domain.StoryCluster{
		{
			ID:                  "frozen",
			TitleTokens:         Tokenize("Fed raises interest rates"),
			ArticleIDs:          []string{"a1"},
			EarliestPublishedAt: now.Add(-2 * time.Hour),
			LatestPublishedAt:   now.Add(-2 * time.Hour),
			CreatedAt:           now.Add(-2 * time.Hour),
			UpdatedAt:           now.Add(-2 * time.Hour),
			Frozen:              true,
		},
	}

	engine := NewEngine(Options{}, nil)
	result := engine.Assign([]domain.Article{
		draft("a2", "Fed raises interest rates", now.Add(-time.Hour)),
	}, open, now)

	if len(result.Clusters) != 2 {
		t.Fatalf("expected a new cluster alongside the frozen one, got %d", len(result.Clusters))
	}
	for _, c := range result.Clusters {
		if c.ID == "frozen" && len(c.ArticleIDs) != 1 {
			t.Fatalf("frozen cluster must not gain members, got %v", c.ArticleIDs)
		}
	}
}

func TestAssignFreezesStaleClusters(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	open := []domain.StoryCluster{
		{
			ID:                  "quiet",
			TitleTokens:         Tokenize("Old budget negotiations stall"),
			ArticleIDs:          []string{"a1"},
			EarliestPublishedAt: now.Add(-40 * time.Hour),
			LatestPublishedAt:   now.Add(-40 * time.Hour),
			CreatedAt:           now.Add(-40 * time.Hour),
			UpdatedAt:           now.Add(-30 * time.Hour),
		},
	}

	engine := NewEngine(Options{Staleness: 24 * time.Hour}, nil)
	result := engine.Assign(nil, open, now)

	if len(result.Clusters) != 1 || !result.Clusters[0].Frozen {
		t.Fatalf("expected the quiet cluster to be frozen, got %+v", result.Clusters)
	}
}

func TestAssignDeterministicUnderInputOrder(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	drafts := []domain.Article{
		draft("a1", "Fed raises rates by 0.25%", now.Add(-3*time.Hour)),
		draft("a2", "Federal Reserve hikes interest rates a quarter point", now.Add(-2*time.Hour)),
		draft("a3", "Champions League final ends in penalty shootout", now.Add(-time.Hour)),
	}
	reversed := []domain.Article{drafts[2], drafts[1], drafts[0]}

	engine := NewEngine(Options{}, nil)
	first := engine.Assign(drafts, nil, now)
	second := engine.Assign(reversed, nil, now)

	if !reflect.DeepEqual(first.Drafts, second.Drafts) {
		t.Fatalf("draft assignment depends on input order")
	}
	if !reflect.DeepEqual(first.Clusters, second.Clusters) {
		t.Fatalf("cluster state depends on input order")
	}
}
