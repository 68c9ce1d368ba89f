package scoring

import (
	"sort"

	"NewsLens/internal/domain"
)

// aggregate recomputes the cluster-level rollup from scored members.
// The source-evolution timeline from the previous rollup is preserved
// and only appended to.
func (e *Engine) aggregate(prev *domain.AggregatorData, members []domain.Article, sources map[string]domain.Source) *domain.AggregatorData {
	agg := &domain.AggregatorData{
		PoliticalBias: map[domain.BiasCategory]int{},
	}
	if prev != nil {
		agg.SourceEvolution = append(agg.SourceEvolution, prev.SourceEvolution...)
	}

	srcSet := map[string]struct{}{}
	var trustSum float64
	var trustCount int
	statusVotes := map[domain.FactCheckStatus]int{}
	minLean, maxLean := 0.0, 0.0
	leanSeen := false
	posSeen, negSeen := false, false

	snapshotKeys := map[string]struct{}{}
	for _, snap := range agg.SourceEvolution {
		snapshotKeys[snap.SourceID+"|"+snap.Title] = struct{}{}
	}

	for i := range members {
		m := &members[i]
		srcSet[m.SourceID] = struct{}{}

		if src, ok := sources[m.SourceID]; ok {
			agg.PoliticalBias[domain.BucketBias(src.BiasRating.Lean)]++
			if !leanSeen || src.BiasRating.Lean < minLean {
				minLean = src.BiasRating.Lean
			}
			if !leanSeen || src.BiasRating.Lean > maxLean {
				maxLean = src.BiasRating.Lean
			}
			leanSeen = true
		}
		if m.TrustScore != nil {
			trustSum += m.TrustScore.Overall
			trustCount++
		}
		if m.FactCheck != nil {
			statusVotes[m.FactCheck.Status]++
		}
		if m.Sentiment != nil {
			switch m.Sentiment.Label {
			case domain.SentimentPositive:
				posSeen = true
			case domain.SentimentNegative:
				negSeen = true
			}
		}

		key := m.SourceID + "|" + m.Title
		if _, dup := snapshotKeys[key]; !dup {
			snapshotKeys[key] = struct{}{}
			agg.SourceEvolution = append(agg.SourceEvolution, domain.SourceSnapshot{
				SourceID:  m.SourceID,
				Title:     m.Title,
				Timestamp: m.PublishedAt,
			})
		}
	}

	agg.TotalSources = len(srcSet)
	if trustCount > 0 {
		agg.AverageTrustScore = trustSum / float64(trustCount)
	}
	agg.FactCheckStatus = consensusStatus(statusVotes)
	agg.ControversyLevel = controversy(minLean, maxLean, leanSeen, posSeen && negSeen)
	agg.CoverageGaps = coverageGaps(agg.PoliticalBias)

	sort.SliceStable(agg.SourceEvolution, func(i, j int) bool {
		return agg.SourceEvolution[i].Timestamp.Before(agg.SourceEvolution[j].Timestamp)
	})

	return agg
}

// consensusStatus picks the majority fact-check status; ties and empty
// votes fall back to unverified.
func consensusStatus(votes map[domain.FactCheckStatus]int) domain.FactCheckStatus {
	best := domain.FactCheckUnverified
	bestCount := 0
	tied := false

	for status, count := range votes {
		switch {
		case count > bestCount:
			best, bestCount, tied = status, count, false
		case count == bestCount && status != best:
			tied = true
		}
	}

	if bestCount == 0 || tied {
		return domain.FactCheckUnverified
	}
	return best
}

// controversy grows with the political spread of contributing sources
// and with split sentiment across members.
func controversy(minLean, maxLean float64, leanSeen, sentimentSplit bool) float64 {
	var level float64
	if leanSeen {
		level = (maxLean - minLean) / 2
	}
	if sentimentSplit {
		level += 25
	}
	return clamp(level, 0, 100)
}

// coverageGaps names the coarse perspectives absent from the cluster.
func coverageGaps(histogram map[domain.BiasCategory]int) []string {
	left := histogram[domain.BiasLeft] + histogram[domain.BiasCenterLeft]
	center := histogram[domain.BiasCenter] + histogram[domain.BiasMixed]
	right := histogram[domain.BiasRight] + histogram[domain.BiasCenterRight]

	var gaps []string
	if left == 0 {
		gaps = append(gaps, "no left-leaning coverage")
	}
	if center == 0 {
		gaps = append(gaps, "no centrist coverage")
	}
	if right == 0 {
		gaps = append(gaps, "no right-leaning coverage")
	}
	return gaps
}
