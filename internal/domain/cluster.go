package domain

import "time"

// StoryCluster groups articles believed to cover the same real-world
// event. Membership is owned by the clustering engine; metric rollups
// by the scoring engine. A frozen cluster accepts no new members.
type StoryCluster struct {
	ID             string
	CanonicalTitle string

	// TitleTokens is the normalized token set of the canonical title,
	// used as the similarity key for membership decisions.
	TitleTokens []string

	ArticleIDs []string

	EarliestPublishedAt time.Time
	LatestPublishedAt   time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	Frozen    bool

	Aggregate *AggregatorData
}

// Contains reports whether the article is already a member.
func (c *StoryCluster) Contains(articleID string) bool {
	for _, id := range c.ArticleIDs {
		if id == articleID {
			return true
		}
	}
	return false
}

// CommitBatch carries one ingestion cycle's writes, applied atomically
// by the store so readers never observe a partially applied cycle.
type CommitBatch struct {
	Articles          []Article
	Clusters          []StoryCluster
	RemovedClusterIDs []string
}

// SourceFailure records a per-source fetch failure inside a cycle.
type SourceFailure struct {
	SourceID string
	Reason   string
}

// CycleSummary reports the outcome of one ingestion cycle. Failures are
// collected per source rather than surfaced as a single aggregate
// error, so successful sources are never hidden by failed ones.
type CycleSummary struct {
	StartedAt  time.Time
	FinishedAt time.Time

	SourcesTotal  int
	SourcesFailed int
	Failures      []SourceFailure

	ArticlesIngested int
	ItemsDropped     int
	ClustersTouched  int
}
