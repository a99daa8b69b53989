package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inkfold/inkfold/internal/models"
)

// ArticleRepositoryImpl implements models.ArticleRepository
type ArticleRepositoryImpl struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) models.ArticleRepository {
	return &ArticleRepositoryImpl{db: db}
}

func (r *ArticleRepositoryImpl) Upsert(article *models.Article) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(article).Error
}

func (r *ArticleRepositoryImpl) GetByCategoryAndID(category, id string) (*models.Article, error) {
	var article models.Article
	err := r.db.Where("category = ? AND id = ?", category, id).
		First(&article).Error
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *ArticleRepositoryImpl) GetByCategory(category string, page, pageSize int) ([]models.Article, error) {
	var articles []models.Article
	err := r.db.Where("category = ? AND status = ?", category, "published").
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&articles).Error
	return articles, err
}

func (r *ArticleRepositoryImpl) GetAllPublished() ([]models.Article, error) {
	var articles []models.Article
	err := r.db.Where("status = ?", "published").
		Order("created_at DESC").
		Find(&articles).Error
	return articles, err
}

func (r *ArticleRepositoryImpl) Delete(id string) error {
	return r.db.Delete(&models.Article{}, "id = ?", id).Error
}

// SearchQueryRepositoryImpl implements models.SearchQueryRepository
type SearchQueryRepositoryImpl struct {
	db *gorm.DB
}

func NewSearchQueryRepository(db *gorm.DB) models.SearchQueryRepository {
	return &SearchQueryRepositoryImpl{db: db}
}

func (r *SearchQueryRepositoryImpl) Create(query *models.SearchQuery) error {
	return r.db.Create(query).Error
}

func (r *SearchQueryRepositoryImpl) GetRecentSearches(limit int) ([]models.SearchQuery, error) {
	var queries []models.SearchQuery
	err := r.db.Order("search_timestamp DESC").
		Limit(limit).
		Find(&queries).Error
	return queries, err
}

// PopularQueryRepositoryImpl implements models.PopularQueryRepository
type PopularQueryRepositoryImpl struct {
	db *gorm.DB
}

func NewPopularQueryRepository(db *gorm.DB) models.PopularQueryRepository {
	return &PopularQueryRepositoryImpl{db: db}
}

func (r *PopularQueryRepositoryImpl) IncrementCount(queryText string) error {
	now := time.Now()
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "query_text"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"search_count":  gorm.Expr("popular_queries.search_count + 1"),
			"last_searched": now,
			"updated_at":    now,
		}),
	}).Create(&models.PopularQuery{
		QueryText:    queryText,
		SearchCount:  1,
		LastSearched: now,
	}).Error
}

func (r *PopularQueryRepositoryImpl) GetTop(limit int) ([]models.PopularQuery, error) {
	var queries []models.PopularQuery
	err := r.db.Order("search_count DESC").
		Limit(limit).
		Find(&queries).Error
	return queries, err
}

func (r *PopularQueryRepositoryImpl) UpdateStats(queryText string, resultsCount float64, responseTime int) error {
	return r.db.Exec(`
		UPDATE popular_queries
		SET
			avg_results_count = (avg_results_count * (search_count - 1) + ?) / search_count,
			avg_response_time_ms = (avg_response_time_ms * (search_count - 1) + ?) / search_count,
			updated_at = ?
		WHERE query_text = ?
	`, resultsCount, responseTime, time.Now(), queryText).Error
}

// RepositoryManager bundles all repositories
type RepositoryManager struct {
	Article      models.ArticleRepository
	SearchQuery  models.SearchQueryRepository
	PopularQuery models.PopularQueryRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		Article:      NewArticleRepository(db),
		SearchQuery:  NewSearchQueryRepository(db),
		PopularQuery: NewPopularQueryRepository(db),
	}
}
