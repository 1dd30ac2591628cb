// Package api implements the HTTP API for starting scrape runs and
// querying the article index.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/newsscraper/internal/domain"
	"github.com/jonesrussell/newsscraper/internal/ledger"
	"github.com/jonesrussell/newsscraper/internal/logger"
	"github.com/jonesrussell/newsscraper/internal/queue"
	"github.com/jonesrussell/newsscraper/internal/storage"
)

const (
	defaultSearchSize  = 10
	maxSearchSize      = 100
	defaultRunsLimit   = 20
	healthCheckTimeout = 5 * time.Second
)

// Searcher is the index surface the API queries.
type Searcher interface {
	Search(ctx context.Context, q storage.SearchQuery) (*storage.SearchResult, error)
	CountByCategory(ctx context.Context, category string) (int64, error)
}

// Enqueuer dispatches scrape jobs to workers.
type Enqueuer interface {
	Enqueue(ctx context.Context, job *queue.ScrapeJob) (string, error)
}

// Presigner issues time-limited retrieval URLs for archived batches.
type Presigner interface {
	PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}

// RunIDFunc generates run ids. Injected so tests get stable ids.
type RunIDFunc func() string

// HealthCheck verifies one downstream dependency for the health endpoint.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handler holds the API dependencies.
type Handler struct {
	ledger       ledger.Interface
	searcher     Searcher
	enqueuer     Enqueuer
	presigner    Presigner
	newRunID     RunIDFunc
	healthChecks []HealthCheck
	logger       logger.Interface
}

// NewHandler creates an API handler.
func NewHandler(
	runLedger ledger.Interface,
	searcher Searcher,
	enqueuer Enqueuer,
	presigner Presigner,
	newRunID RunIDFunc,
	log logger.Interface,
) *Handler {
	return &Handler{
		ledger:    runLedger,
		searcher:  searcher,
		enqueuer:  enqueuer,
		presigner: presigner,
		newRunID:  newRunID,
		logger:    log,
	}
}

// AddHealthCheck registers a named dependency check for /healthz.
func (h *Handler) AddHealthCheck(name string, check func(ctx context.Context) error) {
	h.healthChecks = append(h.healthChecks, HealthCheck{Name: name, Check: check})
}

// SetupRouter creates and configures the Gin router with all routes.
func SetupRouter(h *Handler, log logger.Interface) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(log))

	router.GET("/healthz", h.handleHealthz)

	api := router.Group("/api")
	api.POST("/scrape", h.handleScrape)
	api.GET("/tasks", h.handleListRuns)
	api.GET("/tasks/:id", h.handleGetRun)
	api.GET("/tasks/:id/archive", h.handleRunArchive)
	api.GET("/search", h.handleSearch)
	api.GET("/articles", h.handleArticles)
	api.GET("/categories", h.handleCategories)
	api.GET("/stats/:category", h.handleStats)

	return router
}

// handleHealthz runs the registered dependency checks. Any failing check
// turns the response into 503 with the per-check errors.
func (h *Handler) handleHealthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{}
	for _, hc := range h.healthChecks {
		if err := hc.Check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			checks[hc.Name] = err.Error()
			h.logger.Warn("Health check failed", "check", hc.Name, "error", err)
			continue
		}
		checks[hc.Name] = "ok"
	}

	body := gin.H{"status": "ok"}
	if status != http.StatusOK {
		body["status"] = "unavailable"
	}
	if len(checks) > 0 {
		body["checks"] = checks
	}
	c.JSON(status, body)
}

// loggingMiddleware logs HTTP requests through the application logger.
func loggingMiddleware(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		log.Info("HTTP Request",
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

type scrapeRequest struct {
	Category string `json:"category" binding:"required"`
	MaxPages int    `json:"max_pages"`
}

// handleScrape validates the request, records a PENDING run and enqueues it.
func (h *Handler) handleScrape(c *gin.Context) {
	var req scrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MaxPages < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidMaxPages.Error()})
		return
	}

	runID := h.newRunID()
	run, err := h.ledger.Create(c.Request.Context(), runID, category, req.MaxPages)
	if err != nil {
		h.logger.Error("Failed to create run", "run_id", runID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create run"})
		return
	}

	job := &queue.ScrapeJob{RunID: runID, Category: category, MaxPages: req.MaxPages}
	if _, enqueueErr := h.enqueuer.Enqueue(c.Request.Context(), job); enqueueErr != nil {
		h.logger.Error("Failed to enqueue run", "run_id", runID, "error", enqueueErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue run"})
		return
	}

	c.JSON(http.StatusCreated, run)
}

func (h *Handler) handleGetRun(c *gin.Context) {
	run, err := h.ledger.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ledger.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		h.logger.Error("Failed to load run", "run_id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load run"})
		return
	}
	c.JSON(http.StatusOK, run)
}

// handleRunArchive issues a time-limited download URL for a run's archive.
func (h *Handler) handleRunArchive(c *gin.Context) {
	run, err := h.ledger.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ledger.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		h.logger.Error("Failed to load run", "run_id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load run"})
		return
	}

	if !run.Archived || run.ArchiveKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "run has no archive"})
		return
	}

	downloadURL, err := h.presigner.PresignedURL(c.Request.Context(), run.ArchiveKey, 0)
	if err != nil {
		h.logger.Error("Failed to presign archive URL", "run_id", run.RunID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to presign archive URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":       run.RunID,
		"archive_key":  run.ArchiveKey,
		"download_url": downloadURL,
	})
}

func (h *Handler) handleListRuns(c *gin.Context) {
	ctx := c.Request.Context()

	if slug := c.Query("category"); slug != "" {
		category, err := domain.ParseCategory(slug)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		runs, listErr := h.ledger.ListByCategory(ctx, category, intQuery(c, "limit", defaultRunsLimit))
		if listErr != nil {
			h.logger.Error("Failed to list runs", "category", category, "error", listErr)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tasks": runs})
		return
	}

	runs, err := h.ledger.List(ctx)
	if err != nil {
		h.logger.Error("Failed to list runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": runs})
}

func (h *Handler) handleSearch(c *gin.Context) {
	q := storage.SearchQuery{
		Query:    c.Query("q"),
		Author:   c.Query("author"),
		Location: c.Query("location"),
		Category: c.Query("category"),
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
		Page:     intQuery(c, "page", 1),
		Size:     clampSize(intQuery(c, "size", defaultSearchSize)),
	}

	result, err := h.searcher.Search(c.Request.Context(), q)
	if err != nil {
		h.logger.Error("Search failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":    result.Total,
		"page":     q.Page,
		"size":     q.Size,
		"articles": result.Articles,
	})
}

// handleArticles is a category browse: same search path without a text query.
func (h *Handler) handleArticles(c *gin.Context) {
	q := storage.SearchQuery{
		Category: c.Query("category"),
		Page:     intQuery(c, "page", 1),
		Size:     clampSize(intQuery(c, "size", defaultSearchSize)),
	}

	result, err := h.searcher.Search(c.Request.Context(), q)
	if err != nil {
		h.logger.Error("Failed to list articles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list articles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":    result.Total,
		"page":     q.Page,
		"size":     q.Size,
		"articles": result.Articles,
	})
}

func (h *Handler) handleCategories(c *gin.Context) {
	categories := make([]gin.H, 0, len(domain.Categories()))
	for _, category := range domain.Categories() {
		categories = append(categories, gin.H{
			"slug":  string(category),
			"label": category.Label(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) handleStats(c *gin.Context) {
	category, err := domain.ParseCategory(c.Param("category"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count, err := h.searcher.CountByCategory(c.Request.Context(), string(category))
	if err != nil {
		h.logger.Error("Failed to count articles", "category", category, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count articles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": string(category),
		"label":    category.Label(),
		"count":    count,
	})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

func clampSize(size int) int {
	if size > maxSearchSize {
		return maxSearchSize
	}
	return size
}
