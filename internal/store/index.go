package store

import (
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/inkfold/inkfold/internal/models"
	"github.com/inkfold/inkfold/internal/searchapi"
)

// Index is an in-memory article matcher implementing the site's search
// contract: the production deployment fronts a dedicated search engine, the
// dev server and tests run against this instead. Matching is exact-substring
// over title, summary and content; there is no relevance ranking, results
// come back newest first.
type Index struct {
	mu       sync.RWMutex
	articles []models.Article
	logger   *logrus.Logger
}

func NewIndex(logger *logrus.Logger) *Index {
	return &Index{logger: logger}
}

// Replace swaps the full article set, keeping only published articles.
func (ix *Index) Replace(articles []models.Article) {
	published := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		if a.Status == "published" || a.Status == "" {
			published = append(published, a)
		}
	}
	sort.SliceStable(published, func(i, j int) bool {
		return published[i].CreatedAt.After(published[j].CreatedAt)
	})

	ix.mu.Lock()
	ix.articles = published
	ix.mu.Unlock()

	ix.logger.WithField("articles", len(published)).Info("Search index replaced")
}

// Len returns the number of indexed articles.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.articles)
}

// Search returns one result page for the query. Every whitespace-separated
// term must occur somewhere in the article. The page is clamped to 1 and
// matched terms are highlighted and cropped in the returned hits.
func (ix *Index) Search(query string, page, pageSize int) *searchapi.Page {
	terms := strings.Fields(strings.ToLower(strings.TrimSpace(query)))
	if page < 1 {
		page = 1
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var matched []models.Article
	for _, a := range ix.articles {
		if matchesAll(&a, terms) {
			matched = append(matched, a)
		}
	}

	totalHits := len(matched)
	totalPages := (totalHits + pageSize - 1) / pageSize

	offset := (page - 1) * pageSize
	end := offset + pageSize
	if offset > totalHits {
		offset = totalHits
	}
	if end > totalHits {
		end = totalHits
	}

	hl := newHighlighter(terms)
	results := make([]searchapi.Hit, 0, end-offset)
	for _, a := range matched[offset:end] {
		results = append(results, searchapi.Hit{
			ID:       a.ID,
			Title:    hl.mark(a.Title),
			Category: a.Category,
			Summary:  hl.mark(hl.crop(a.Summary, summaryCropLength)),
			Content:  hl.mark(hl.crop(a.Content, contentCropLength)),
		})
	}

	return &searchapi.Page{
		TotalHits:   totalHits,
		TotalPages:  totalPages,
		CurrentPage: page,
		Results:     results,
	}
}

// ByCategory returns one page of published articles in a category, newest
// first. It mirrors the database query the server uses when one is attached.
func (ix *Index) ByCategory(category string, page, pageSize int) []models.Article {
	if page < 1 {
		page = 1
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var matched []models.Article
	for _, a := range ix.articles {
		if a.Category == category {
			matched = append(matched, a)
		}
	}

	offset := (page - 1) * pageSize
	if offset >= len(matched) {
		return nil
	}
	end := offset + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end]
}

// Get returns a single article by category and id.
func (ix *Index) Get(category, id string) (*models.Article, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	for i := range ix.articles {
		if ix.articles[i].Category == category && ix.articles[i].ID == id {
			a := ix.articles[i]
			return &a, true
		}
	}
	return nil, false
}

func matchesAll(a *models.Article, terms []string) bool {
	if len(terms) == 0 {
		return false
	}
	haystack := strings.ToLower(a.Title + "\n" + a.Summary + "\n" + a.Content)
	for _, term := range terms {
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return true
}
