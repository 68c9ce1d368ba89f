package scoring

import "NewsLens/internal/domain"

// factualityBase maps the source's editorial factuality tier onto the
// 0-100 factual-accuracy baseline.
func factualityBase(tier domain.FactualityTier) float64 {
	switch tier {
	case domain.FactualityHigh:
		return 85
	case domain.FactualityMixed:
		return 60
	case domain.FactualityLow:
		return 30
	case domain.FactualitySatire:
		return 20
	default:
		return 50
	}
}

// editorialBase rates editorial quality from the ownership structure.
func editorialBase(ownership domain.OwnershipType) float64 {
	switch ownership {
	case domain.OwnershipNonprofit:
		return 78
	case domain.OwnershipPublic:
		return 75
	case domain.OwnershipCooperative:
		return 72
	case domain.OwnershipPrivate:
		return 65
	case domain.OwnershipGovernment:
		return 55
	default:
		return 60
	}
}

// trust blends the four components into the composite score. Source
// credibility carries the source's static trust rating and dominates
// the weighting; a verified fact check boosts factual accuracy while a
// false one crashes it toward zero. With normalized weights the overall
// always lies within the min/max of its components.
func (e *Engine) trust(src domain.Source, factCheck *domain.FactCheckResult) *domain.TrustMetrics {
	credibility := clamp(src.TrustRating, 0, 100)
	transparency := clamp(src.TransparencyScore, 0, 100)
	factual := factualityBase(src.BiasRating.Factuality)
	editorial := editorialBase(src.Ownership.Type)

	if factCheck != nil {
		switch factCheck.Status {
		case domain.FactCheckVerified:
			factual = clamp(factual+15, 0, 100)
		case domain.FactCheckFalse:
			factual = clamp(factual*0.1, 0, 100)
		}
	}

	total := e.cfg.CredibilityWeight + e.cfg.FactualWeight + e.cfg.TransparencyWeight + e.cfg.EditorialWeight
	overall := (credibility*e.cfg.CredibilityWeight +
		factual*e.cfg.FactualWeight +
		transparency*e.cfg.TransparencyWeight +
		editorial*e.cfg.EditorialWeight) / total

	return &domain.TrustMetrics{
		Overall:           clamp(overall, 0, 100),
		SourceCredibility: credibility,
		FactualAccuracy:   factual,
		Transparency:      transparency,
		Editorial:         editorial,
	}
}
