package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsLens/internal/domain"
	"NewsLens/internal/ports"
)

// BulkOperation enumerates the admin batch operations.
type BulkOperation string

const (
	BulkPublish          BulkOperation = "publish"
	BulkDelete           BulkOperation = "delete"
	BulkArchive          BulkOperation = "archive"
	BulkUpdateCategory   BulkOperation = "update_category"
	BulkUpdateTrustScore BulkOperation = "update_trust_score"
)

// BulkParams carries per-operation arguments.
type BulkParams struct {
	Category   string
	TrustScore *float64
}

// BulkResult reports per-item outcomes. Partial success is expected and
// reported, never treated as a transaction failure.
type BulkResult struct {
	Success int
	Failed  int
	Errors  []string
}

// Admin is the moderation and bulk-edit boundary over the article
// store. Input is validated before any state is touched.
type Admin struct {
	store  ports.Store
	logger *slog.Logger
	clock  func() time.Time
}

// NewAdmin wires the store; clock defaults to time.Now.
func NewAdmin(store ports.Store, logger *slog.Logger, clock func() time.Time) *Admin {
	if clock == nil {
		clock = time.Now
	}
	return &Admin{store: store, logger: logger, clock: clock}
}

// Moderate applies one review decision. Approval is the only path that
// flips curated drafts to published.
func (a *Admin) Moderate(ctx context.Context, articleID string, status domain.ModerationStatus, reason string) (domain.Moderation, error) {
	switch status {
	case domain.ModerationApproved, domain.ModerationRejected, domain.ModerationFlagged:
	default:
		return domain.Moderation{}, &domain.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown moderation status %q", status)}
	}
	if articleID == "" {
		return domain.Moderation{}, &domain.ValidationError{Field: "articleId", Reason: "must not be empty"}
	}

	article, err := a.store.GetArticle(ctx, articleID)
	if err != nil {
		return domain.Moderation{}, err
	}

	switch status {
	case domain.ModerationApproved:
		article.Status = domain.StatusPublished
	case domain.ModerationRejected:
		article.Status = domain.StatusDraft
	case domain.ModerationFlagged:
		// Status untouched; the decision record alone marks it for review.
	}

	if status != domain.ModerationFlagged {
		if err := a.store.UpdateArticle(ctx, article); err != nil {
			return domain.Moderation{}, fmt.Errorf("update article %s: %w", articleID, err)
		}
	}

	decision := domain.Moderation{
		ArticleID: articleID,
		Status:    status,
		Reason:    reason,
		DecidedAt: a.clock(),
	}

	if a.logger != nil {
		a.logger.Info("moderation decision", "article", articleID, "status", status)
	}
	return decision, nil
}

// Bulk applies one operation across many articles, reporting per-item
// success and failure counts plus an error list.
func (a *Admin) Bulk(ctx context.Context, ids []string, op BulkOperation, params BulkParams) (BulkResult, error) {
	if len(ids) == 0 {
		return BulkResult{}, &domain.ValidationError{Field: "ids", Reason: "must not be empty"}
	}

	var category domain.Category
	switch op {
	case BulkPublish, BulkDelete, BulkArchive:
	case BulkUpdateCategory:
		mapped, ok := domain.ParseCategory(params.Category)
		if !ok {
			return BulkResult{}, &domain.ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", params.Category)}
		}
		category = mapped
	case BulkUpdateTrustScore:
		if params.TrustScore == nil || *params.TrustScore < 0 || *params.TrustScore > 100 {
			return BulkResult{}, &domain.ValidationError{Field: "trustScore", Reason: "must be between 0 and 100"}
		}
	default:
		return BulkResult{}, &domain.ValidationError{Field: "operation", Reason: fmt.Sprintf("unknown operation %q", op)}
	}

	var result BulkResult
	for _, id := range ids {
		if err := a.applyOne(ctx, id, op, category, params.TrustScore); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("Article %s not found", id))
			continue
		}
		result.Success++
	}

	if a.logger != nil {
		a.logger.Info("bulk operation done", "operation", op, "success", result.Success, "failed", result.Failed)
	}
	return result, nil
}

func (a *Admin) applyOne(ctx context.Context, id string, op BulkOperation, category domain.Category, trustScore *float64) error {
	if op == BulkDelete {
		return a.store.DeleteArticle(ctx, id)
	}

	article, err := a.store.GetArticle(ctx, id)
	if err != nil {
		return err
	}

	switch op {
	case BulkPublish:
		article.Status = domain.StatusPublished
	case BulkArchive:
		article.Status = domain.StatusArchived
	case BulkUpdateCategory:
		article.Category = category
	case BulkUpdateTrustScore:
		// Admin override replaces the composite; component scores keep
		// their last computed values for audit.
		if article.TrustScore == nil {
			article.TrustScore = &domain.TrustMetrics{}
		}
		article.TrustScore.Overall = *trustScore
	}

	return a.store.UpdateArticle(ctx, article)
}
