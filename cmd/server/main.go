package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/inkfold/inkfold/internal/api"
	"github.com/inkfold/inkfold/internal/config"
	"github.com/inkfold/inkfold/internal/database"
	"github.com/inkfold/inkfold/internal/health"
	"github.com/inkfold/inkfold/internal/repository"
	"github.com/inkfold/inkfold/internal/store"
	"github.com/inkfold/inkfold/pkg/utils"
)

func main() {
	_ = godotenv.Load()

	utils.InitLogger()
	logger := utils.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if err := cfg.ValidateSearch(); err != nil {
		logger.WithError(err).Fatal("Invalid search configuration")
	}

	index := store.NewIndex(logger)

	var (
		dbManager   *database.Manager
		repoManager *repository.RepositoryManager
		cache       *database.Cache
	)

	if cfg.Database.URL != "" {
		dbManager, err = database.NewManager(&database.Config{
			DatabaseURL: cfg.Database.URL,
			RedisURL:    cfg.Redis.URL,
		}, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to database")
		}
		defer dbManager.Close()

		if err := dbManager.Migrate(); err != nil {
			logger.WithError(err).Fatal("Failed to run migrations")
		}

		repoManager = repository.NewRepositoryManager(dbManager.DB)
		if dbManager.Redis != nil {
			cache = database.NewCache(dbManager.Redis, logger)
		}

		articles, err := repoManager.Article.GetAllPublished()
		if err != nil {
			logger.WithError(err).Fatal("Failed to load articles")
		}
		index.Replace(articles)
	} else {
		articles, err := store.LoadFixtures(cfg.Fixtures.Path)
		if err != nil {
			logger.WithError(err).WithField("path", cfg.Fixtures.Path).
				Warn("No article fixtures loaded, index starts empty")
		} else {
			index.Replace(articles)
		}
	}

	checker := health.NewChecker(dbManager, index, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go checker.PeriodicHealthCheck(ctx, time.Minute)

	router := api.NewRouter(api.RouterConfig{
		Index:         index,
		RepoManager:   repoManager,
		Cache:         cache,
		HealthChecker: checker,
		PageSize:      cfg.Search.PageSize,
		RateLimit:     120,
		AllowedOrigin: cfg.Site.BaseURL,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"port":     cfg.Server.Port,
			"articles": index.Len(),
		}).Info("Starting search server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}

	logger.Info("Server stopped")
}
