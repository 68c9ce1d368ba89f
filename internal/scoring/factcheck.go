package scoring

import (
	"sort"
	"time"

	"NewsLens/internal/domain"
)

// corroborationTrustFloor is the minimum source trust rating for a
// cluster member to count as a citation.
const corroborationTrustFloor = 70.0

// factCheck derives verification state from cluster corroboration.
// A previously established status is kept as-is: transitions happen
// only through explicit re-check events, the engine never silently
// downgrades. With no citation sources the result is the documented
// unverified default regardless of any other signal.
func (e *Engine) factCheck(article *domain.Article, src domain.Source, members []domain.Article, sources map[string]domain.Source, now time.Time) *domain.FactCheckResult {
	if article.FactCheck != nil && article.FactCheck.Status != domain.FactCheckUnverified {
		existing := *article.FactCheck
		return &existing
	}

	citations := corroboratingURLs(article, members, sources)
	if len(citations) == 0 {
		return domain.UnverifiedFactCheck(now)
	}

	result := &domain.FactCheckResult{
		Sources:     citations,
		LastChecked: now,
	}

	switch src.BiasRating.Factuality {
	case domain.FactualitySatire:
		result.Status = domain.FactCheckSatire
		result.Confidence = 0.9
	case domain.FactualityLow:
		result.Status = domain.FactCheckDisputed
		result.Confidence = 0.5
	default:
		result.Status = domain.FactCheckVerified
		result.Confidence = clamp(0.5+0.1*float64(len(citations)), 0, 0.95)
	}

	return result
}

// corroboratingURLs collects canonical URLs of cluster members from
// other, sufficiently trusted sources. Sorted for determinism.
func corroboratingURLs(article *domain.Article, members []domain.Article, sources map[string]domain.Source) []string {
	var urls []string
	seen := map[string]struct{}{}

	for i := range members {
		m := &members[i]
		if m.ID == article.ID || m.SourceID == article.SourceID || m.CanonicalURL == "" {
			continue
		}
		src, ok := sources[m.SourceID]
		if !ok || src.TrustRating < corroborationTrustFloor {
			continue
		}
		if _, dup := seen[m.CanonicalURL]; dup {
			continue
		}
		seen[m.CanonicalURL] = struct{}{}
		urls = append(urls, m.CanonicalURL)
	}

	sort.Strings(urls)
	return urls
}
