package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/inkfold/inkfold/internal/models"
	"github.com/inkfold/inkfold/internal/repository"
	"github.com/inkfold/inkfold/internal/store"
	"github.com/inkfold/inkfold/pkg/utils"
)

const (
	defaultPostsPageSize = 20
	maxPostsPageSize     = 100
)

// PostsHandler serves article listings and single articles. It reads from the
// database when one is attached, falling back to the in-memory index.
type PostsHandler struct {
	index       *store.Index
	repoManager *repository.RepositoryManager
	logger      *logrus.Logger
}

func NewPostsHandler(index *store.Index, repoManager *repository.RepositoryManager, logger *logrus.Logger) *PostsHandler {
	return &PostsHandler{
		index:       index,
		repoManager: repoManager,
		logger:      logger,
	}
}

// HandleListPosts processes GET /posts?category=&page=&page_size= requests
func (h *PostsHandler) HandleListPosts(c *gin.Context) {
	category := c.Query("category")
	if !models.ValidCategory(category) {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid category", nil)
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPostsPageSize)))
	if err != nil || pageSize < 1 {
		pageSize = defaultPostsPageSize
	}
	if pageSize > maxPostsPageSize {
		pageSize = maxPostsPageSize
	}

	var articles []models.Article
	if h.repoManager != nil {
		articles, err = h.repoManager.Article.GetByCategory(category, page, pageSize)
		if err != nil {
			h.logger.WithError(err).Error("Failed to list posts")
			utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to list posts", err)
			return
		}
	} else {
		articles = h.index.ByCategory(category, page, pageSize)
	}

	posts := make([]models.PostResponse, 0, len(articles))
	for _, a := range articles {
		posts = append(posts, models.PostResponse{
			ID:      a.ID,
			Title:   a.Title,
			Tags:    a.Tags,
			Content: a.Content,
		})
	}

	utils.SuccessResponse(c, http.StatusOK, "Posts retrieved", posts)
}

// HandleGetPost processes GET /posts/:category/:id requests
func (h *PostsHandler) HandleGetPost(c *gin.Context) {
	category := c.Param("category")
	id := c.Param("id")

	if !models.ValidCategory(category) {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid category", nil)
		return
	}

	var article *models.Article
	if h.repoManager != nil {
		found, err := h.repoManager.Article.GetByCategoryAndID(category, id)
		if err != nil {
			utils.ErrorResponse(c, http.StatusNotFound, "Post not found", nil)
			return
		}
		article = found
	} else {
		found, ok := h.index.Get(category, id)
		if !ok {
			utils.ErrorResponse(c, http.StatusNotFound, "Post not found", nil)
			return
		}
		article = found
	}

	utils.SuccessResponse(c, http.StatusOK, "Post retrieved", article)
}
