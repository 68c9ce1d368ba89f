package registry

import (
	"context"

	"NewsLens/internal/config"
	"NewsLens/internal/domain"
	"NewsLens/internal/ports"
)

// ConfigRegistry is the source registry seeded from configuration.
// Ratings are editorial inputs; nothing in the pipeline writes back.
type ConfigRegistry struct {
	sources []domain.Source
	byID    map[string]domain.Source
}

var _ ports.SourceRegistry = (*ConfigRegistry)(nil)

// NewConfigRegistry maps configured sources into domain records.
func NewConfigRegistry(configs []config.SourceConfig) *ConfigRegistry {
	sources := make([]domain.Source, 0, len(configs))
	byID := make(map[string]domain.Source, len(configs))

	for _, sc := range configs {
		category := domain.CategoryGeneral
		if mapped, ok := domain.ParseCategory(sc.Category); ok {
			category = mapped
		}

		kind := sc.Kind
		if kind == "" {
			kind = "rss"
		}

		src := domain.Source{
			ID:       sc.ID,
			Name:     sc.Name,
			FeedURL:  sc.FeedURL,
			Kind:     kind,
			Category: category,
			Country:  sc.Country,
			BiasRating: domain.BiasRating{
				Lean:       sc.Lean,
				Factuality: domain.FactualityTier(sc.Factuality),
			},
			TrustRating:       sc.TrustRating,
			TransparencyScore: sc.TransparencyScore,
			Ownership: domain.Ownership{
				Type:         domain.OwnershipType(sc.OwnershipType),
				Parent:       sc.OwnershipParent,
				Subsidiaries: sc.Subsidiaries,
			},
			Active: sc.Active,
		}

		sources = append(sources, src)
		byID[src.ID] = src
	}

	return &ConfigRegistry{sources: sources, byID: byID}
}

// ListActive returns copies of every source the fetcher should poll.
func (r *ConfigRegistry) ListActive(ctx context.Context) ([]domain.Source, error) {
	active := make([]domain.Source, 0, len(r.sources))
	for _, src := range r.sources {
		if src.Active {
			active = append(active, src)
		}
	}
	return active, nil
}

// Get looks up one source by id.
func (r *ConfigRegistry) Get(ctx context.Context, id string) (domain.Source, error) {
	if src, ok := r.byID[id]; ok {
		return src, nil
	}
	return domain.Source{}, &domain.NotFoundError{Kind: "source", ID: id}
}
