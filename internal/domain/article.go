package domain

import "time"

// Category is the fixed editorial taxonomy every article maps into.
type Category string

const (
	CategoryTech          Category = "tech"
	CategoryBusiness      Category = "business"
	CategoryWorld         Category = "world"
	CategoryHealth        Category = "health"
	CategoryGaming        Category = "gaming"
	CategoryScience       Category = "science"
	CategoryPolitics      Category = "politics"
	CategorySports        Category = "sports"
	CategoryEntertainment Category = "entertainment"
	CategoryGeneral       Category = "general"
)

var knownCategories = map[Category]struct{}{
	CategoryTech:          {},
	CategoryBusiness:      {},
	CategoryWorld:         {},
	CategoryHealth:        {},
	CategoryGaming:        {},
	CategoryScience:       {},
	CategoryPolitics:      {},
	CategorySports:        {},
	CategoryEntertainment: {},
	CategoryGeneral:       {},
}

// ParseCategory maps a free-form label onto the taxonomy.
func ParseCategory(value string) (Category, bool) {
	cat := Category(value)
	_, ok := knownCategories[cat]
	return cat, ok
}

// ArticleStatus enumerates publication states. Draft articles never
// appear in public feeds.
type ArticleStatus string

const (
	StatusDraft     ArticleStatus = "draft"
	StatusPublished ArticleStatus = "published"
	StatusArchived  ArticleStatus = "archived"
)

// Article is the canonical, source-agnostic representation of one
// ingested news item. Scoring attachments stay nil until the scoring
// engine computes them; no other component may write them.
type Article struct {
	ID           string
	SourceID     string
	SourceName   string
	CanonicalURL string
	ImageURL     string

	Title   string
	TitleAI string
	Excerpt string
	TLDR    string
	Tags    []string

	Category Category
	Status   ArticleStatus

	PublishedAt time.Time
	ImportedAt  time.Time

	// ViewCount is monotonically non-decreasing and mutated only through
	// the dedicated increment operation.
	ViewCount int64

	ClusterID       string
	RelatedArticles []string

	TrustScore   *TrustMetrics
	BiasAnalysis *BiasAnalysis
	FactCheck    *FactCheckResult
	Coverage     *CoverageAnalysis
	Sentiment    *SentimentAnalysis
}

// RawItem is one pre-canonical feed entry as delivered by a transport,
// before normalization assigns identity and taxonomy.
type RawItem struct {
	GUID        string
	Title       string
	Link        string
	Description string
	Content     string
	ImageURL    string
	Categories  []string
	Published   time.Time
}

// ModerationStatus enumerates human review outcomes.
type ModerationStatus string

const (
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
	ModerationFlagged  ModerationStatus = "flagged"
)

// Moderation records a single review decision on an article.
type Moderation struct {
	ArticleID string
	Status    ModerationStatus
	Reason    string
	DecidedAt time.Time
}
