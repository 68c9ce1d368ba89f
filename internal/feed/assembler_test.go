package feed

import (
	"context"
	"testing"
	"time"

	"NewsLens/internal/domain"
	"NewsLens/internal/infrastructure/storage"
)

var testNow = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

func seededAssembler(t *testing.T, articles []domain.Article) *Assembler {
	t.Helper()

	store := storage.NewMemoryStore()
	if err := store.CommitBatch(context.Background(), domain.CommitBatch{Articles: articles}); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return NewAssembler(store, nil, Options{TrendingWindow: 72 * time.Hour, DefaultLimit: 20}, func() time.Time { return testNow })
}

func published(id string, category domain.Category, age time.Duration) domain.Article {
	return domain.Article{
		ID:          id,
		SourceID:    "src-" + id,
		Title:       "Article " + id,
		Category:    category,
		Status:      domain.StatusPublished,
		PublishedAt: testNow.Add(-age),
	}
}

func TestCategoryFeedFiltersAndSorts(t *testing.T) {
	t.Parallel()

	a := seededAssembler(t, []domain.Article{
		published("a1", domain.CategoryTech, 3*time.Hour),
		published("a2", domain.CategoryTech, time.Hour),
		published("a3", domain.CategoryWorld, 2*time.Hour),
	})

	page, err := a.CategoryFeed(context.Background(), domain.CategoryTech, 10, 0, nil)
	if err != nil {
		t.Fatalf("CategoryFeed: %v", err)
	}
	if page.Total != 2 || len(page.Articles) != 2 {
		t.Fatalf("expected two tech articles, got %+v", page)
	}
	if page.Articles[0].ID != "a2" || page.Articles[1].ID != "a1" {
		t.Fatalf("expected newest first, got %s then %s", page.Articles[0].ID, page.Articles[1].ID)
	}
}

func TestCategoryFeedExcludesDrafts(t *testing.T) {
	t.Parallel()

	draft := published("a2", domain.CategoryTech, time.Hour)
	draft.Status = domain.StatusDraft
	a := seededAssembler(t, []domain.Article{
		published("a1", domain.CategoryTech, 2*time.Hour),
		draft,
	})

	page, err := a.CategoryFeed(context.Background(), "", 10, 0, nil)
	if err != nil {
		t.Fatalf("CategoryFeed: %v", err)
	}
	if page.Total != 1 || page.Articles[0].ID != "a1" {
		t.Fatalf("draft leaked into the public feed: %+v", page)
	}
}

func TestCategoryFeedPaginationIsDisjointAndComplete(t *testing.T) {
	t.Parallel()

	articles := []domain.Article{
		published("a1", domain.CategoryTech, time.Hour),
		published("a2", domain.CategoryTech, 2*time.Hour),
		published("a3", domain.CategoryTech, 3*time.Hour),
		published("a4", domain.CategoryTech, 4*time.Hour),
		published("a5", domain.CategoryTech, 5*time.Hour),
	}
	a := seededAssembler(t, articles)

	seen := map[string]struct{}{}
	var order []string
	for offset := 0; ; offset += 2 {
		page, err := a.CategoryFeed(context.Background(), domain.CategoryTech, 2, offset, nil)
		if err != nil {
			t.Fatalf("CategoryFeed offset %d: %v", offset, err)
		}
		for _, art := range page.Articles {
			if _, dup := seen[art.ID]; dup {
				t.Fatalf("article %s appeared on two pages", art.ID)
			}
			seen[art.ID] = struct{}{}
			order = append(order, art.ID)
		}
		if !page.HasMore {
			break
		}
	}

	if len(order) != len(articles) {
		t.Fatalf("pages do not cover the feed: got %v", order)
	}
}

func TestCategoryFeedOffsetPastEnd(t *testing.T) {
	t.Parallel()

	a := seededAssembler(t, []domain.Article{published("a1", domain.CategoryTech, time.Hour)})

	page, err := a.CategoryFeed(context.Background(), "", 10, 50, nil)
	if err != nil {
		t.Fatalf("CategoryFeed: %v", err)
	}
	if len(page.Articles) != 0 || page.HasMore {
		t.Fatalf("expected empty page without HasMore, got %+v", page)
	}
	if page.Total != 1 {
		t.Fatalf("total must still report the feed size, got %d", page.Total)
	}
}

func TestCategoryFeedMinTrustFilter(t *testing.T) {
	t.Parallel()

	trusted := published("a1", domain.CategoryTech, time.Hour)
	trusted.TrustScore = &domain.TrustMetrics{Overall: 85}
	dubious := published("a2", domain.CategoryTech, time.Hour)
	dubious.TrustScore = &domain.TrustMetrics{Overall: 40}
	unscored := published("a3", domain.CategoryTech, time.Hour)

	a := seededAssembler(t, []domain.Article{trusted, dubious, unscored})

	page, err := a.CategoryFeed(context.Background(), "", 10, 0, &Filters{MinTrust: 70})
	if err != nil {
		t.Fatalf("CategoryFeed: %v", err)
	}
	if page.Total != 1 || page.Articles[0].ID != "a1" {
		t.Fatalf("expected only the trusted article, got %+v", page)
	}
}

func TestTrendingOrdersByViewsThenRecency(t *testing.T) {
	t.Parallel()

	hot := published("a1", domain.CategoryTech, 2*time.Hour)
	hot.ViewCount = 500
	warm := published("a2", domain.CategoryTech, 5*time.Hour)
	warm.ViewCount = 100
	tied := published("a3", domain.CategoryTech, 10*time.Hour)
	tied.ViewCount = 100
	stale := published("a4", domain.CategoryTech, 100*time.Hour)
	stale.ViewCount = 9999

	a := seededAssembler(t, []domain.Article{hot, warm, tied, stale})

	trending, err := a.Trending(context.Background(), 10)
	if err != nil {
		t.Fatalf("Trending: %v", err)
	}
	if len(trending) != 3 {
		t.Fatalf("expected the stale article excluded, got %d entries", len(trending))
	}
	if trending[0].ID != "a1" {
		t.Fatalf("expected most viewed first, got %s", trending[0].ID)
	}
	// Equal view counts: earliest published wins the tie.
	if trending[1].ID != "a3" || trending[2].ID != "a2" {
		t.Fatalf("tie-break wrong: got %s then %s", trending[1].ID, trending[2].ID)
	}
}

func TestPersonalizedBoostsFollowedSources(t *testing.T) {
	t.Parallel()

	followed := published("a1", domain.CategoryWorld, 30*time.Hour)
	other := published("a2", domain.CategoryTech, time.Hour)

	a := seededAssembler(t, []domain.Article{followed, other})

	page, err := a.Personalized(context.Background(), Preferences{FollowedSources: []string{"src-a1"}}, 10, 0)
	if err != nil {
		t.Fatalf("Personalized: %v", err)
	}
	if len(page.Articles) != 2 || page.Articles[0].ID != "a1" {
		t.Fatalf("expected the followed source ranked first, got %+v", page.Articles)
	}
}

func TestBalancedFeedRoundRobinsBiasBuckets(t *testing.T) {
	t.Parallel()

	mk := func(id string, bucket domain.BiasCategory, age time.Duration) domain.Article {
		art := published(id, domain.CategoryPolitics, age)
		art.BiasAnalysis = &domain.BiasAnalysis{Overall: bucket}
		return art
	}
	a := seededAssembler(t, []domain.Article{
		mk("l1", domain.BiasLeft, 1*time.Hour),
		mk("l2", domain.BiasLeft, 2*time.Hour),
		mk("l3", domain.BiasLeft, 3*time.Hour),
		mk("r1", domain.BiasRight, 4*time.Hour),
	})

	page, err := a.CategoryFeed(context.Background(), "", 10, 0, &Filters{Balanced: true})
	if err != nil {
		t.Fatalf("CategoryFeed: %v", err)
	}

	if page.Articles[0].BiasAnalysis.Overall != domain.BiasLeft ||
		page.Articles[1].BiasAnalysis.Overall != domain.BiasRight {
		t.Fatalf("expected buckets interleaved at the top, got %s then %s",
			page.Articles[0].BiasAnalysis.Overall, page.Articles[1].BiasAnalysis.Overall)
	}
	if len(page.Articles) != 4 {
		t.Fatalf("balancing must not drop articles, got %d", len(page.Articles))
	}
}

func TestSearchMatchesTitleAndExcerpt(t *testing.T) {
	t.Parallel()

	byTitle := published("a1", domain.CategoryTech, time.Hour)
	byTitle.Title = "Quantum computing milestone reached"
	byExcerpt := published("a2", domain.CategoryScience, 2*time.Hour)
	byExcerpt.Excerpt = "Researchers claim a quantum breakthrough in error correction."
	miss := published("a3", domain.CategoryWorld, 3*time.Hour)

	a := seededAssembler(t, []domain.Article{byTitle, byExcerpt, miss})

	results, err := a.Search(context.Background(), "Quantum", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected two matches, got %d", len(results))
	}
	if results[0].ID != "a1" || results[1].ID != "a2" {
		t.Fatalf("expected newest first, got %s then %s", results[0].ID, results[1].ID)
	}

	empty, err := a.Search(context.Background(), "   ", 10)
	if err != nil {
		t.Fatalf("Search blank: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("blank query must match nothing, got %d", len(empty))
	}
}
