package domain

// OwnershipType classifies who controls a news source.
type OwnershipType string

const (
	OwnershipPublic      OwnershipType = "public"
	OwnershipPrivate     OwnershipType = "private"
	OwnershipGovernment  OwnershipType = "government"
	OwnershipNonprofit   OwnershipType = "nonprofit"
	OwnershipCooperative OwnershipType = "cooperative"
)

// Ownership describes the corporate structure behind a source.
type Ownership struct {
	Type         OwnershipType
	Parent       string
	Subsidiaries []string
}

// FactualityTier is the editorial factuality rating of a source.
type FactualityTier string

const (
	FactualityHigh   FactualityTier = "high"
	FactualityMixed  FactualityTier = "mixed"
	FactualityLow    FactualityTier = "low"
	FactualitySatire FactualityTier = "satire"
)

// BiasRating is the human-curated lean and factuality of a source.
// Lean runs -100 (far left) to 100 (far right).
type BiasRating struct {
	Lean       float64
	Factuality FactualityTier
}

// Source is a provider of articles. Trust and bias ratings are
// editorial inputs, never computed from individual articles; they
// condition per-article scoring rather than result from it.
type Source struct {
	ID      string
	Name    string
	FeedURL string

	// Kind selects the fetch transport: "rss" or "api".
	Kind string

	Category Category
	Country  string

	BiasRating        BiasRating
	TrustRating       float64
	TransparencyScore float64
	Ownership         Ownership

	// Active gates whether the fetcher polls this source.
	Active bool
}
