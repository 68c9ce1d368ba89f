package feed

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"NewsLens/internal/domain"
	"NewsLens/internal/ports"
)

// Options tunes feed assembly.
type Options struct {
	TrendingWindow time.Duration
	DefaultLimit   int
}

// Filters narrows a feed request per user preference.
type Filters struct {
	MinTrust float64
	Balanced bool
}

// Preferences drive the personalized feed blend.
type Preferences struct {
	FollowedSources    []string
	FollowedCategories []domain.Category
	MinTrust           float64
	Balanced           bool
}

// Page is one slice of an assembled feed.
type Page struct {
	Articles []domain.Article
	Total    int
	HasMore  bool
}

// Assembler builds ranked, filtered feeds over published articles. It
// reads a consistent store snapshot and never mutates articles.
type Assembler struct {
	store ports.Store
	cache ports.FeedCache
	opts  Options
	clock func() time.Time
}

// NewAssembler wires the store and an optional cache; clock defaults to
// time.Now.
func NewAssembler(store ports.Store, cache ports.FeedCache, opts Options, clock func() time.Time) *Assembler {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 20
	}
	if opts.TrendingWindow <= 0 {
		opts.TrendingWindow = 72 * time.Hour
	}
	if clock == nil {
		clock = time.Now
	}
	return &Assembler{store: store, cache: cache, opts: opts, clock: clock}
}

// CategoryFeed returns published articles for a category (or all when
// empty), newest first. An offset past the end yields an empty page.
func (a *Assembler) CategoryFeed(ctx context.Context, category domain.Category, limit, offset int, filters *Filters) (Page, error) {
	if limit <= 0 {
		limit = a.opts.DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}

	cacheKey := fmt.Sprintf("feed:%s:%d:%d:%v", category, limit, offset, filters)
	if a.cache != nil && filters == nil {
		var cached Page
		if a.cache.Get(ctx, cacheKey, &cached) {
			return cached, nil
		}
	}

	articles, err := a.published(ctx)
	if err != nil {
		return Page{}, err
	}

	matched := articles[:0:0]
	for _, art := range articles {
		if category != "" && art.Category != category {
			continue
		}
		if filters != nil && filters.MinTrust > 0 {
			if art.TrustScore == nil || art.TrustScore.Overall < filters.MinTrust {
				continue
			}
		}
		matched = append(matched, art)
	}

	sortNewestFirst(matched)
	if filters != nil && filters.Balanced {
		matched = balance(matched)
	}

	page := paginate(matched, limit, offset)
	if a.cache != nil && filters == nil {
		a.cache.Set(ctx, cacheKey, page, 0)
	}
	return page, nil
}

// Trending lists the top-N most viewed published articles inside the
// recency window; ties go to the earliest published.
func (a *Assembler) Trending(ctx context.Context, n int) ([]domain.Article, error) {
	if n <= 0 {
		n = a.opts.DefaultLimit
	}

	articles, err := a.published(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := a.clock().Add(-a.opts.TrendingWindow)
	recent := articles[:0:0]
	for _, art := range articles {
		if !art.PublishedAt.Before(cutoff) {
			recent = append(recent, art)
		}
	}

	sort.SliceStable(recent, func(i, j int) bool {
		if recent[i].ViewCount != recent[j].ViewCount {
			return recent[i].ViewCount > recent[j].ViewCount
		}
		return recent[i].PublishedAt.Before(recent[j].PublishedAt)
	})

	if len(recent) > n {
		recent = recent[:n]
	}
	return recent, nil
}

// Personalized blends followed-source updates, category-affinity
// recommendations, and the trust-filtered general feed.
func (a *Assembler) Personalized(ctx context.Context, prefs Preferences, limit, offset int) (Page, error) {
	if limit <= 0 {
		limit = a.opts.DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}

	articles, err := a.published(ctx)
	if err != nil {
		return Page{}, err
	}

	followedSources := toSet(prefs.FollowedSources)
	followedCategories := map[domain.Category]struct{}{}
	for _, c := range prefs.FollowedCategories {
		followedCategories[c] = struct{}{}
	}

	type weighted struct {
		article domain.Article
		weight  float64
	}

	now := a.clock()
	ranked := make([]weighted, 0, len(articles))
	for _, art := range articles {
		if prefs.MinTrust > 0 {
			if art.TrustScore == nil || art.TrustScore.Overall < prefs.MinTrust {
				continue
			}
		}

		var w float64
		if _, ok := followedSources[art.SourceID]; ok {
			w += 3
		}
		if _, ok := followedCategories[art.Category]; ok {
			w += 2
		}
		if art.TrustScore != nil {
			w += art.TrustScore.Overall / 100
		}
		// Recency decay: one point fading out over 48h.
		age := now.Sub(art.PublishedAt)
		if age < 48*time.Hour {
			w += 1 - float64(age)/float64(48*time.Hour)
		}

		ranked = append(ranked, weighted{article: art, weight: w})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].weight != ranked[j].weight {
			return ranked[i].weight > ranked[j].weight
		}
		return ranked[i].article.PublishedAt.After(ranked[j].article.PublishedAt)
	})

	ordered := make([]domain.Article, len(ranked))
	for i, r := range ranked {
		ordered[i] = r.article
	}
	if prefs.Balanced {
		ordered = balance(ordered)
	}

	return paginate(ordered, limit, offset), nil
}

// Search matches a case-insensitive substring over title and excerpt,
// most recent first. Deliberately exact containment, no fuzzy ranking.
func (a *Assembler) Search(ctx context.Context, query string, limit int) ([]domain.Article, error) {
	if limit <= 0 {
		limit = a.opts.DefaultLimit
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}

	articles, err := a.published(ctx)
	if err != nil {
		return nil, err
	}

	matched := articles[:0:0]
	for _, art := range articles {
		if strings.Contains(strings.ToLower(art.Title), needle) ||
			strings.Contains(strings.ToLower(art.Excerpt), needle) {
			matched = append(matched, art)
		}
	}

	sortNewestFirst(matched)
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// published loads the snapshot and drops anything not publicly visible.
func (a *Assembler) published(ctx context.Context) ([]domain.Article, error) {
	all, err := a.store.ListArticles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	visible := make([]domain.Article, 0, len(all))
	for _, art := range all {
		if art.Status == domain.StatusPublished {
			visible = append(visible, art)
		}
	}
	return visible, nil
}

func sortNewestFirst(articles []domain.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		if !articles[i].PublishedAt.Equal(articles[j].PublishedAt) {
			return articles[i].PublishedAt.After(articles[j].PublishedAt)
		}
		return articles[i].ID < articles[j].ID
	})
}

// balance round-robins articles across bias buckets so no single
// perspective dominates the top of the page.
func balance(articles []domain.Article) []domain.Article {
	buckets := map[domain.BiasCategory][]domain.Article{}
	var order []domain.BiasCategory
	for _, art := range articles {
		bucket := domain.BiasCenter
		if art.BiasAnalysis != nil {
			bucket = art.BiasAnalysis.Overall
		}
		if _, seen := buckets[bucket]; !seen {
			order = append(order, bucket)
		}
		buckets[bucket] = append(buckets[bucket], art)
	}

	out := make([]domain.Article, 0, len(articles))
	for len(out) < len(articles) {
		for _, bucket := range order {
			if len(buckets[bucket]) > 0 {
				out = append(out, buckets[bucket][0])
				buckets[bucket] = buckets[bucket][1:]
			}
		}
	}
	return out
}

func paginate(articles []domain.Article, limit, offset int) Page {
	total := len(articles)
	if offset >= total {
		return Page{Articles: []domain.Article{}, Total: total, HasMore: false}
	}

	end := offset + limit
	if end > total {
		end = total
	}

	slice := make([]domain.Article, end-offset)
	copy(slice, articles[offset:end])

	return Page{
		Articles: slice,
		Total:    total,
		HasMore:  offset+len(slice) < total,
	}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
