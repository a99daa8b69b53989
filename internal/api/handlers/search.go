package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/inkfold/inkfold/internal/database"
	"github.com/inkfold/inkfold/internal/models"
	"github.com/inkfold/inkfold/internal/repository"
	"github.com/inkfold/inkfold/internal/searchapi"
	"github.com/inkfold/inkfold/internal/store"
	"github.com/inkfold/inkfold/pkg/utils"
)

const maxQueryLength = 2000

// SearchHandler serves the search contract endpoints. Responses use the raw
// page shape from the searchapi package, not the API envelope, so that
// clients can decode them directly.
type SearchHandler struct {
	index       *store.Index
	repoManager *repository.RepositoryManager
	cache       *database.Cache
	pageSize    int
	logger      *logrus.Logger
}

func NewSearchHandler(
	index *store.Index,
	repoManager *repository.RepositoryManager,
	cache *database.Cache,
	pageSize int,
	logger *logrus.Logger,
) *SearchHandler {
	return &SearchHandler{
		index:       index,
		repoManager: repoManager,
		cache:       cache,
		pageSize:    pageSize,
		logger:      logger,
	}
}

// HandleSearch processes GET /search?q=&page= requests
func (h *SearchHandler) HandleSearch(c *gin.Context) {
	startTime := time.Now()

	query := c.Query("q")
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	if len(query) > maxQueryLength {
		utils.ErrorResponse(c, http.StatusBadRequest, "Query too long (max 2000 characters)", nil)
		return
	}

	// A blank query never reaches the matcher
	if strings.TrimSpace(query) == "" {
		c.JSON(http.StatusOK, &searchapi.Page{
			TotalHits:   0,
			TotalPages:  0,
			CurrentPage: page,
			Results:     []searchapi.Hit{},
		})
		return
	}

	userSession := h.getUserSession(c)

	h.logger.WithFields(logrus.Fields{
		"query":        query,
		"page":         page,
		"user_session": userSession,
	}).Info("Processing search request")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	cacheKey := h.generateCacheKey(query, page)
	var result *searchapi.Page

	cached := &searchapi.Page{}
	if h.cache != nil && h.cache.GetCachedSearchResults(ctx, cacheKey, cached) == nil {
		h.logger.Debug("Search results served from cache")
		result = cached
	} else {
		result = h.index.Search(query, page, h.pageSize)

		if h.cache != nil {
			if err := h.cache.CacheSearchResults(ctx, cacheKey, result, 5*time.Minute); err != nil {
				h.logger.WithError(err).Warn("Failed to cache search results")
			}
		}
	}

	responseTime := time.Since(startTime)

	if h.repoManager != nil {
		go h.trackSearchQuery(userSession, query, page, result.TotalHits, responseTime, c.GetHeader("User-Agent"))
		go h.updatePopularQueries(query, result.TotalHits, responseTime)
	}

	h.logger.WithFields(logrus.Fields{
		"total_hits":    result.TotalHits,
		"current_page":  result.CurrentPage,
		"response_time": responseTime.Milliseconds(),
	}).Info("Search completed")

	c.JSON(http.StatusOK, result)
}

// HandleSearchSuggestions returns popular queries matching a prefix
func (h *SearchHandler) HandleSearchSuggestions(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Query parameter 'q' is required", nil)
		return
	}

	if h.repoManager == nil {
		utils.SuccessResponse(c, http.StatusOK, "Suggestions retrieved", []models.PopularQuery{})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if limit > 10 {
		limit = 10
	}

	suggestions, err := h.repoManager.PopularQuery.GetTop(limit * 4)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get search suggestions")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to get suggestions", err)
		return
	}

	filtered := make([]models.PopularQuery, 0, limit)
	queryLower := strings.ToLower(query)

	for _, suggestion := range suggestions {
		if strings.Contains(strings.ToLower(suggestion.QueryText), queryLower) {
			filtered = append(filtered, suggestion)
			if len(filtered) == limit {
				break
			}
		}
	}

	utils.SuccessResponse(c, http.StatusOK, "Suggestions retrieved", filtered)
}

func (h *SearchHandler) getUserSession(c *gin.Context) string {
	if session := c.GetHeader("X-Session-ID"); session != "" {
		return session
	}
	return utils.GenerateSessionID(c.ClientIP() + c.GetHeader("User-Agent"))
}

func (h *SearchHandler) generateCacheKey(query string, page int) string {
	return utils.MD5Hash(fmt.Sprintf("%s|%d", strings.ToLower(strings.TrimSpace(query)), page))
}

func (h *SearchHandler) trackSearchQuery(userSession, query string, page, totalHits int, responseTime time.Duration, userAgent string) {
	searchQuery := &models.SearchQuery{
		QueryText:       query,
		UserSession:     userSession,
		ResultsCount:    totalHits,
		Page:            page,
		SearchTimestamp: time.Now(),
		ResponseTimeMs:  int(responseTime.Milliseconds()),
		UserAgent:       userAgent,
	}

	if err := h.repoManager.SearchQuery.Create(searchQuery); err != nil {
		h.logger.WithError(err).Error("Failed to track search query")
	}
}

func (h *SearchHandler) updatePopularQueries(query string, totalHits int, responseTime time.Duration) {
	if err := h.repoManager.PopularQuery.IncrementCount(query); err != nil {
		h.logger.WithError(err).Error("Failed to update popular queries")
		return
	}

	if err := h.repoManager.PopularQuery.UpdateStats(query, float64(totalHits), int(responseTime.Milliseconds())); err != nil {
		h.logger.WithError(err).Error("Failed to update query stats")
	}
}
