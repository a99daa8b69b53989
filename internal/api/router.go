package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/inkfold/inkfold/internal/api/handlers"
	"github.com/inkfold/inkfold/internal/database"
	"github.com/inkfold/inkfold/internal/health"
	"github.com/inkfold/inkfold/internal/middleware"
	"github.com/inkfold/inkfold/internal/repository"
	"github.com/inkfold/inkfold/internal/store"
)

// RouterConfig carries the dependencies the HTTP surface needs. Database and
// cache are optional; handlers fall back to the in-memory index without them.
type RouterConfig struct {
	Index         *store.Index
	RepoManager   *repository.RepositoryManager
	Cache         *database.Cache
	HealthChecker *health.Checker
	PageSize      int
	RateLimit     int
	AllowedOrigin string
	Logger        *logrus.Logger
}

// NewRouter builds the gin engine with all routes and middleware attached.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())

	if cfg.AllowedOrigin != "" {
		router.Use(middleware.CORS(cfg.AllowedOrigin))
	}

	if cfg.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit)
		router.Use(limiter.RateLimit())
	}

	searchHandler := handlers.NewSearchHandler(cfg.Index, cfg.RepoManager, cfg.Cache, cfg.PageSize, cfg.Logger)
	postsHandler := handlers.NewPostsHandler(cfg.Index, cfg.RepoManager, cfg.Logger)
	healthHandler := handlers.NewHealthHandler(cfg.HealthChecker)

	router.GET("/search", searchHandler.HandleSearch)
	router.GET("/search/suggestions", searchHandler.HandleSearchSuggestions)
	router.GET("/posts", postsHandler.HandleListPosts)
	router.GET("/posts/:category/:id", postsHandler.HandleGetPost)
	router.GET("/health", healthHandler.HandleHealth)
	router.GET("/health/live", healthHandler.HandleLiveness)

	return router
}
