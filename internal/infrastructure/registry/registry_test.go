package registry

import (
	"context"
	"errors"
	"testing"

	"NewsLens/internal/config"
	"NewsLens/internal/domain"
)

func TestListActiveSkipsDisabledSources(t *testing.T) {
	t.Parallel()

	r := NewConfigRegistry([]config.SourceConfig{
		{ID: "on", Name: "Active Wire", Category: "tech", Active: true},
		{ID: "off", Name: "Paused Wire", Category: "world", Active: false},
	})

	active, err := r.ListActive(context.Background())
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 1 || active[0].ID != "on" {
		t.Fatalf("expected only the active source, got %+v", active)
	}
}

func TestGetMapsConfigOntoDomain(t *testing.T) {
	t.Parallel()

	r := NewConfigRegistry([]config.SourceConfig{{
		ID:                "s1",
		Name:              "Wire",
		FeedURL:           "https://example.com/rss",
		Category:          "politics",
		Country:           "US",
		Lean:              -30,
		Factuality:        "high",
		TrustRating:       88,
		TransparencyScore: 70,
		OwnershipType:     "nonprofit",
		Active:            true,
	}})

	src, err := r.Get(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if src.Kind != "rss" {
		t.Fatalf("expected rss default kind, got %s", src.Kind)
	}
	if src.Category != domain.CategoryPolitics {
		t.Fatalf("expected politics, got %s", src.Category)
	}
	if src.BiasRating.Lean != -30 || src.BiasRating.Factuality != domain.FactualityHigh {
		t.Fatalf("bias rating lost in mapping: %+v", src.BiasRating)
	}
	if src.Ownership.Type != domain.OwnershipNonprofit {
		t.Fatalf("expected nonprofit ownership, got %s", src.Ownership.Type)
	}
}

func TestGetUnknownCategoryFallsBackToGeneral(t *testing.T) {
	t.Parallel()

	r := NewConfigRegistry([]config.SourceConfig{{ID: "s1", Category: "astrology", Active: true}})

	src, err := r.Get(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if src.Category != domain.CategoryGeneral {
		t.Fatalf("expected general fallback, got %s", src.Category)
	}
}

func TestGetUnknownSource(t *testing.T) {
	t.Parallel()

	r := NewConfigRegistry(nil)

	_, err := r.Get(context.Background(), "ghost")
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
