package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"NewsLens/internal/domain"
	"NewsLens/internal/feed"
	"NewsLens/internal/ports"
	"NewsLens/internal/usecase"
)

// Server exposes the read API plus the moderation endpoints over HTTP.
type Server struct {
	engine    *gin.Engine
	store     ports.Store
	assembler *feed.Assembler
	admin     *usecase.Admin
	logger    *slog.Logger

	httpServer *http.Server
}

// NewServer builds the router with all routes registered.
func NewServer(store ports.Store, assembler *feed.Assembler, admin *usecase.Admin, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:    engine,
		store:     store,
		assembler: assembler,
		admin:     admin,
		logger:    logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)

	v1 := s.engine.Group("/api/v1")
	v1.GET("/feed", s.handleFeed)
	v1.GET("/trending", s.handleTrending)
	v1.GET("/search", s.handleSearch)
	v1.GET("/articles/:id", s.handleGetArticle)
	v1.POST("/articles/:id/views", s.handleIncrementViews)
	v1.POST("/moderation", s.handleModeration)
	v1.POST("/articles/bulk", s.handleBulk)
}

// Run starts the listener and blocks until the server stops.
func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// feedQuery binds the feed listing parameters.
type feedQuery struct {
	Category   string  `form:"category"`
	Limit      int     `form:"limit"`
	Offset     int     `form:"offset"`
	MinTrust   float64 `form:"minTrust"`
	Balanced   bool    `form:"balanced"`
	Sources    string  `form:"sources"`
	Categories string  `form:"categories"`
}

func (s *Server) handleFeed(c *gin.Context) {
	var q feedQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	var category domain.Category
	if q.Category != "" {
		parsed, ok := domain.ParseCategory(q.Category)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
			return
		}
		category = parsed
	}

	// Followed sources or categories switch the request onto the
	// personalized blend.
	if q.Sources != "" || q.Categories != "" {
		prefs := feed.Preferences{
			FollowedSources: splitCSV(q.Sources),
			MinTrust:        q.MinTrust,
			Balanced:        q.Balanced,
		}
		for _, raw := range splitCSV(q.Categories) {
			if cat, ok := domain.ParseCategory(raw); ok {
				prefs.FollowedCategories = append(prefs.FollowedCategories, cat)
			}
		}

		page, err := s.assembler.Personalized(c.Request.Context(), prefs, q.Limit, q.Offset)
		if err != nil {
			s.internalError(c, "assemble personalized feed", err)
			return
		}
		c.JSON(http.StatusOK, pageResponse(page))
		return
	}

	var filters *feed.Filters
	if q.MinTrust > 0 || q.Balanced {
		filters = &feed.Filters{MinTrust: q.MinTrust, Balanced: q.Balanced}
	}

	page, err := s.assembler.CategoryFeed(c.Request.Context(), category, q.Limit, q.Offset, filters)
	if err != nil {
		s.internalError(c, "assemble feed", err)
		return
	}
	c.JSON(http.StatusOK, pageResponse(page))
}

func (s *Server) handleTrending(c *gin.Context) {
	n, _ := strconv.Atoi(c.Query("limit"))

	articles, err := s.assembler.Trending(c.Request.Context(), n)
	if err != nil {
		s.internalError(c, "assemble trending", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

func (s *Server) handleSearch(c *gin.Context) {
	query := c.Query("q")
	if strings.TrimSpace(query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	articles, err := s.assembler.Search(c.Request.Context(), query, limit)
	if err != nil {
		s.internalError(c, "search", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles, "total": len(articles)})
}

func (s *Server) handleGetArticle(c *gin.Context) {
	article, err := s.store.GetArticle(c.Request.Context(), c.Param("id"))
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
			return
		}
		s.internalError(c, "get article", err)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (s *Server) handleIncrementViews(c *gin.Context) {
	count, err := s.store.IncrementViewCount(c.Request.Context(), c.Param("id"))
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
			return
		}
		s.internalError(c, "increment views", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"viewCount": count})
}

// moderationRequest binds one review decision.
type moderationRequest struct {
	ArticleID string `json:"articleId" binding:"required"`
	Status    string `json:"status" binding:"required"`
	Reason    string `json:"reason"`
}

func (s *Server) handleModeration(c *gin.Context) {
	var req moderationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "articleId and status are required"})
		return
	}

	decision, err := s.admin.Moderate(c.Request.Context(), req.ArticleID, domain.ModerationStatus(req.Status), req.Reason)
	if err != nil {
		var validation *domain.ValidationError
		if errors.As(err, &validation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
			return
		}
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
			return
		}
		s.internalError(c, "moderate", err)
		return
	}
	c.JSON(http.StatusOK, decision)
}

// bulkRequest binds one admin batch operation.
type bulkRequest struct {
	IDs        []string `json:"ids" binding:"required"`
	Operation  string   `json:"operation" binding:"required"`
	Category   string   `json:"category"`
	TrustScore *float64 `json:"trustScore"`
}

func (s *Server) handleBulk(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids and operation are required"})
		return
	}

	result, err := s.admin.Bulk(c.Request.Context(), req.IDs, usecase.BulkOperation(req.Operation), usecase.BulkParams{
		Category:   req.Category,
		TrustScore: req.TrustScore,
	})
	if err != nil {
		var validation *domain.ValidationError
		if errors.As(err, &validation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
			return
		}
		s.internalError(c, "bulk operation", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": result.Success,
		"failed":  result.Failed,
		"errors":  result.Errors,
	})
}

// internalError logs the detail and returns an opaque message so
// storage internals never leak to clients.
func (s *Server) internalError(c *gin.Context, op string, err error) {
	if s.logger != nil {
		s.logger.Error(op+" failed", "error", err)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func pageResponse(page feed.Page) gin.H {
	return gin.H{
		"articles": page.Articles,
		"total":    page.Total,
		"hasMore":  page.HasMore,
	}
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0:0]
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
