package scoring

import (
	"strings"
	"unicode"

	"NewsLens/internal/domain"
)

var positiveWords = map[string]struct{}{
	"win": {}, "wins": {}, "growth": {}, "gain": {}, "gains": {},
	"improve": {}, "improves": {}, "recovery": {}, "success": {},
	"strong": {}, "record": {}, "rally": {}, "boost": {}, "surge": {},
	"agree": {}, "agreement": {}, "peace": {}, "breakthrough": {},
	"celebrates": {}, "triumph": {}, "hero": {}, "soars": {},
}

var negativeWords = map[string]struct{}{
	"loss": {}, "losses": {}, "crash": {}, "fall": {}, "falls": {},
	"decline": {}, "fail": {}, "fails": {}, "failure": {}, "dead": {},
	"death": {}, "war": {}, "conflict": {}, "crisis": {}, "fears": {},
	"cuts": {}, "layoffs": {}, "fraud": {}, "scandal": {}, "attack": {},
	"disaster": {}, "chaos": {}, "slump": {}, "threat": {}, "outrage": {},
}

const sentimentNeutralBand = 0.2

// sentiment scores tone over the headline and excerpt with a simple
// word lexicon. Deterministic; no text means the neutral default.
func (e *Engine) sentiment(article *domain.Article) *domain.SentimentAnalysis {
	fields := strings.FieldsFunc(strings.ToLower(article.Title+" "+article.Excerpt), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	var pos, neg int
	for _, f := range fields {
		if _, ok := positiveWords[f]; ok {
			pos++
		}
		if _, ok := negativeWords[f]; ok {
			neg++
		}
	}

	total := pos + neg
	if total == 0 {
		return &domain.SentimentAnalysis{Label: domain.SentimentNeutral, Score: 0, Confidence: 0.3}
	}

	score := float64(pos-neg) / float64(total)
	label := domain.SentimentNeutral
	switch {
	case score > sentimentNeutralBand:
		label = domain.SentimentPositive
	case score < -sentimentNeutralBand:
		label = domain.SentimentNegative
	}

	return &domain.SentimentAnalysis{
		Label:      label,
		Score:      score,
		Confidence: clamp(float64(total)/5, 0.2, 1),
	}
}
