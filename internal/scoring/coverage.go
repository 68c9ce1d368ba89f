package scoring

import (
	"sort"

	"NewsLens/internal/domain"
)

// coverage measures how broadly the cluster is corroborated. Distinct
// sources and perspectives only grow as members join, so completeness
// is monotonically non-decreasing over a cluster's lifetime.
func (e *Engine) coverage(members []domain.Article, sources map[string]domain.Source) domain.CoverageAnalysis {
	srcSet := map[string]struct{}{}
	perspectives := map[domain.BiasCategory]struct{}{}
	countries := map[string]int{}
	political := map[string]int{}

	for i := range members {
		m := &members[i]
		if _, dup := srcSet[m.SourceID]; dup {
			continue
		}
		srcSet[m.SourceID] = struct{}{}

		src, ok := sources[m.SourceID]
		if !ok {
			continue
		}
		bucket := domain.BucketBias(src.BiasRating.Lean)
		perspectives[bucket] = struct{}{}
		political[string(bucket)]++
		if src.Country != "" {
			countries[src.Country]++
		}
	}

	numSources := len(srcSet)
	numPerspectives := len(perspectives)

	completeness := clamp(20*float64(numSources)+10*float64(numPerspectives-1), 0, 100)
	if numSources == 0 {
		completeness = 0
	}

	return domain.CoverageAnalysis{
		Perspectives: numPerspectives,
		Sources:      numSources,
		Geographic:   toSlices(countries),
		Political:    toSlices(political),
		Completeness: completeness,
	}
}

func toSlices(counts map[string]int) []domain.CoverageSlice {
	slices := make([]domain.CoverageSlice, 0, len(counts))
	for label, count := range counts {
		slices = append(slices, domain.CoverageSlice{Label: label, Count: count})
	}
	sort.Slice(slices, func(i, j int) bool { return slices[i].Label < slices[j].Label })
	return slices
}
