package domain

import "time"

// TrustMetrics is the per-article composite credibility score.
// Overall is a weighted blend of the four components and always lies
// within their min/max when weights are normalized.
type TrustMetrics struct {
	Overall           float64
	SourceCredibility float64
	FactualAccuracy   float64
	Transparency      float64
	Editorial         float64
}

// BiasScore is a signed axis score (-100..100) with a confidence (0..1).
type BiasScore struct {
	Score      float64
	Confidence float64
}

// BiasCategory is the derived left-right bucket for an article.
type BiasCategory string

const (
	BiasLeft        BiasCategory = "left"
	BiasCenterLeft  BiasCategory = "center-left"
	BiasCenter      BiasCategory = "center"
	BiasCenterRight BiasCategory = "center-right"
	BiasRight       BiasCategory = "right"
	BiasMixed       BiasCategory = "mixed"
)

// BucketBias maps a political score onto five contiguous, equal-width
// bins partitioning [-100, 100]. Pure and idempotent: the same score
// always lands in the same bucket.
func BucketBias(political float64) BiasCategory {
	switch {
	case political < -60:
		return BiasLeft
	case political < -20:
		return BiasCenterLeft
	case political <= 20:
		return BiasCenter
	case political <= 60:
		return BiasCenterRight
	default:
		return BiasRight
	}
}

// BiasAnalysis carries the multi-axis bias signal plus the categorical
// rollup. Overall is "mixed" only when political and emotional signs
// disagree beyond the configured disagreement threshold.
type BiasAnalysis struct {
	Political  BiasScore
	Emotional  BiasScore
	Factual    BiasScore
	Overall    BiasCategory
	Confidence float64
}

// FactCheckStatus enumerates verification outcomes.
type FactCheckStatus string

const (
	FactCheckVerified   FactCheckStatus = "verified"
	FactCheckDisputed   FactCheckStatus = "disputed"
	FactCheckFalse      FactCheckStatus = "false"
	FactCheckUnverified FactCheckStatus = "unverified"
	FactCheckSatire     FactCheckStatus = "satire"
)

// FactCheckResult records verification state for an article.
// Invariant: Status is unverified whenever Sources is empty, regardless
// of any computed confidence.
type FactCheckResult struct {
	Status      FactCheckStatus
	Confidence  float64
	Sources     []string
	LastChecked time.Time
}

// UnverifiedFactCheck is the documented degraded default used when no
// citation sources are available.
func UnverifiedFactCheck(now time.Time) *FactCheckResult {
	return &FactCheckResult{Status: FactCheckUnverified, Confidence: 0, LastChecked: now}
}

// CoverageSlice is one labeled bucket of a coverage breakdown.
type CoverageSlice struct {
	Label string
	Count int
}

// CoverageAnalysis measures how broadly a story cluster is corroborated.
// Completeness is monotonically non-decreasing as members join the
// cluster.
type CoverageAnalysis struct {
	Perspectives int
	Sources      int
	Geographic   []CoverageSlice
	Political    []CoverageSlice
	Completeness float64
}

// SentimentLabel classifies the tone of an article.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negative"
)

// SentimentAnalysis is the lexicon-derived tone score, -1..1.
type SentimentAnalysis struct {
	Label      SentimentLabel
	Score      float64
	Confidence float64
}

// SourceSnapshot is one entry of a cluster's headline evolution
// timeline.
type SourceSnapshot struct {
	SourceID  string
	Title     string
	Timestamp time.Time
}

// AggregatorData is the cluster-level rollup across all member
// articles. SourceEvolution is append-only, ordered by Timestamp.
type AggregatorData struct {
	TotalSources      int
	PoliticalBias     map[BiasCategory]int
	AverageTrustScore float64
	FactCheckStatus   FactCheckStatus
	ControversyLevel  float64
	CoverageGaps      []string
	SourceEvolution   []SourceSnapshot
}
