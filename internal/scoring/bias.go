package scoring

import (
	"strings"
	"unicode"

	"NewsLens/internal/domain"
)

// emotionalLexicon maps charged headline vocabulary onto signed weights.
// Positive weights read as favorable framing, negative as hostile.
var emotionalLexicon = map[string]float64{
	"slams":        -2,
	"blasts":       -2,
	"destroys":     -2,
	"fury":         -2,
	"outrage":      -2,
	"chaos":        -1.5,
	"crisis":       -1.5,
	"scandal":      -1.5,
	"disaster":     -1.5,
	"shocking":     -1.5,
	"slump":        -1,
	"fears":        -1,
	"threat":       -1,
	"attack":       -1,
	"triumph":      2,
	"historic":     1.5,
	"hero":         1.5,
	"miracle":      1.5,
	"celebrates":   1,
	"soars":        1,
	"breakthrough": 1,
	"victory":      1,
}

// bias derives the multi-axis signal. The political axis carries the
// source's curated lean; the emotional axis is lexicon-scored from the
// headline and excerpt; the factual axis reflects the factuality tier.
// The categorical rollup is a pure function of these inputs.
func (e *Engine) bias(article *domain.Article, src domain.Source) *domain.BiasAnalysis {
	political := domain.BiasScore{
		Score:      clamp(src.BiasRating.Lean, -100, 100),
		Confidence: 0.85,
	}

	emoScore, emoHits := emotionalScore(article.Title + " " + article.Excerpt)
	emotional := domain.BiasScore{
		Score:      emoScore,
		Confidence: clamp(0.4+float64(emoHits)*0.15, 0, 0.95),
	}

	factual := domain.BiasScore{
		Score:      factualAxis(src.BiasRating.Factuality),
		Confidence: 0.9,
	}

	overall := domain.BucketBias(political.Score)
	if signsDisagree(political.Score, emotional.Score) &&
		absFloat(political.Score-emotional.Score) > e.cfg.MixedDisagreement {
		overall = domain.BiasMixed
	}

	return &domain.BiasAnalysis{
		Political:  political,
		Emotional:  emotional,
		Factual:    factual,
		Overall:    overall,
		Confidence: (political.Confidence + emotional.Confidence + factual.Confidence) / 3,
	}
}

// emotionalScore sums lexicon weights over the text, scaled onto
// [-100, 100]. Returns the score and the number of lexicon hits.
func emotionalScore(text string) (float64, int) {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	var sum float64
	hits := 0
	for _, f := range fields {
		if w, ok := emotionalLexicon[f]; ok {
			sum += w
			hits++
		}
	}
	return clamp(sum*20, -100, 100), hits
}

func factualAxis(tier domain.FactualityTier) float64 {
	switch tier {
	case domain.FactualityHigh:
		return 60
	case domain.FactualityMixed:
		return 0
	case domain.FactualityLow:
		return -60
	case domain.FactualitySatire:
		return -80
	default:
		return 0
	}
}

func signsDisagree(a, b float64) bool {
	return (a > 0 && b < 0) || (a < 0 && b > 0)
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
