package scoring

import (
	"log/slog"
	"time"

	"NewsLens/internal/domain"
)

// Config carries the tunable weighting coefficients. Contracts
// (monotonicity, determinism, bucketing) are fixed; the numbers are not.
type Config struct {
	CredibilityWeight  float64
	FactualWeight      float64
	TransparencyWeight float64
	EditorialWeight    float64
	MixedDisagreement  float64
}

func (c Config) withDefaults() Config {
	if c.CredibilityWeight+c.FactualWeight+c.TransparencyWeight+c.EditorialWeight <= 0 {
		c.CredibilityWeight = 0.40
		c.FactualWeight = 0.25
		c.TransparencyWeight = 0.20
		c.EditorialWeight = 0.15
	}
	if c.MixedDisagreement <= 0 {
		c.MixedDisagreement = 40
	}
	return c
}

// Engine computes the metric bundle for articles and clusters. It is a
// pure transformation: no side effects on the source registry, and
// identical inputs always produce identical outputs.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

// NewEngine builds a scoring engine with normalized trust weights.
func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	return &Engine{cfg: cfg.withDefaults(), logger: logger}
}

// ScoreCluster attaches metrics to every member article and recomputes
// the cluster rollup. Members are returned as new values; the inputs
// are not mutated. Sub-metrics that cannot be computed degrade to their
// documented defaults rather than failing the cycle.
func (e *Engine) ScoreCluster(cluster domain.StoryCluster, members []domain.Article, sources map[string]domain.Source, now time.Time) (domain.StoryCluster, []domain.Article) {
	scored := make([]domain.Article, len(members))
	copy(scored, members)

	for i := range scored {
		art := &scored[i]
		src, known := sources[art.SourceID]
		if !known && e.logger != nil {
			e.logger.Warn("scoring article from unknown source, metrics degrade to defaults",
				"article", art.ID, "source", art.SourceID)
		}

		art.FactCheck = e.factCheck(art, src, scored, sources, now)
		art.TrustScore = e.trust(src, art.FactCheck)
		art.BiasAnalysis = e.bias(art, src)
		art.Sentiment = e.sentiment(art)
	}

	coverage := e.coverage(scored, sources)
	for i := range scored {
		cov := coverage
		scored[i].Coverage = &cov
	}

	cluster.Aggregate = e.aggregate(cluster.Aggregate, scored, sources)
	return cluster, scored
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
