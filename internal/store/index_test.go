package store

import (
	"fmt"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkfold/inkfold/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testArticles() []models.Article {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []models.Article{
		{
			ID: "rust-soup", Title: "Cooking with Rust", Category: "article",
			Summary: "Notes on the Rust borrow checker.",
			Content: "The borrow checker felt hostile at first.",
			Status:  "published", CreatedAt: base.Add(3 * time.Hour),
		},
		{
			ID: "go-routines", Title: "Goroutines in anger", Category: "note",
			Summary: "Concurrency patterns.",
			Content: "Channels and select loops everywhere.",
			Status:  "published", CreatedAt: base.Add(2 * time.Hour),
		},
		{
			ID: "rust-draft", Title: "Unfinished Rust rant", Category: "think",
			Summary: "Half written.",
			Content: "Rust rust rust.",
			Status:  "draft", CreatedAt: base.Add(time.Hour),
		},
		{
			ID: "ferris", Title: "Meeting Ferris", Category: "talk",
			Summary: "A mascot appreciation post.",
			Content: "Nothing about crabs is rusty except the color.",
			Status:  "published", CreatedAt: base,
		},
	}
}

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	ix := NewIndex(testLogger())
	ix.Replace(testArticles())
	return ix
}

func TestIndex_ReplaceFiltersDrafts(t *testing.T) {
	ix := newTestIndex(t)
	assert.Equal(t, 3, ix.Len())

	page := ix.Search("rant", 1, 6)
	assert.Zero(t, page.TotalHits)
}

func TestIndex_SearchMatchesAcrossFields(t *testing.T) {
	ix := newTestIndex(t)

	// Title match
	page := ix.Search("cooking", 1, 6)
	require.Equal(t, 1, page.TotalHits)
	assert.Equal(t, "rust-soup", page.Results[0].ID)

	// Content match, case-insensitive
	page = ix.Search("RUSTY", 1, 6)
	require.Equal(t, 1, page.TotalHits)
	assert.Equal(t, "ferris", page.Results[0].ID)

	// All terms must match
	page = ix.Search("rust borrow", 1, 6)
	assert.Equal(t, 1, page.TotalHits)
	page = ix.Search("rust channels", 1, 6)
	assert.Zero(t, page.TotalHits)
}

func TestIndex_SearchOrdersNewestFirst(t *testing.T) {
	ix := newTestIndex(t)

	page := ix.Search("rust", 1, 6)
	require.Equal(t, 2, page.TotalHits)
	assert.Equal(t, "rust-soup", page.Results[0].ID)
	assert.Equal(t, "ferris", page.Results[1].ID)
}

func TestIndex_SearchHighlightsMatches(t *testing.T) {
	ix := newTestIndex(t)

	page := ix.Search("rust", 1, 6)
	require.NotEmpty(t, page.Results)
	assert.Contains(t, page.Results[0].Title, `<span class="highlight">Rust</span>`)
}

func TestIndex_SearchPagination(t *testing.T) {
	articles := make([]models.Article, 8)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range articles {
		articles[i] = models.Article{
			ID:        fmt.Sprintf("post-%d", i),
			Title:     fmt.Sprintf("Pelican watch %d", i),
			Category:  "pictures",
			Content:   "Pelicans again.",
			Status:    "published",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
	}

	ix := NewIndex(testLogger())
	ix.Replace(articles)

	page := ix.Search("pelican", 1, 3)
	assert.Equal(t, 8, page.TotalHits)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Results, 3)

	page = ix.Search("pelican", 3, 3)
	assert.Equal(t, 3, page.CurrentPage)
	assert.Len(t, page.Results, 2)

	// Past the last page: empty results, same totals
	page = ix.Search("pelican", 4, 3)
	assert.Equal(t, 8, page.TotalHits)
	assert.Equal(t, 3, page.TotalPages)
	assert.Empty(t, page.Results)

	// Page is clamped to 1
	page = ix.Search("pelican", 0, 3)
	assert.Equal(t, 1, page.CurrentPage)
}

func TestIndex_BlankQueryMatchesNothing(t *testing.T) {
	ix := newTestIndex(t)

	for _, q := range []string{"", "   ", "\t\n"} {
		page := ix.Search(q, 1, 6)
		assert.Zero(t, page.TotalHits)
		assert.Zero(t, page.TotalPages)
		assert.Empty(t, page.Results)
	}
}

func TestIndex_ByCategory(t *testing.T) {
	ix := newTestIndex(t)

	notes := ix.ByCategory("note", 1, 20)
	require.Len(t, notes, 1)
	assert.Equal(t, "go-routines", notes[0].ID)

	assert.Empty(t, ix.ByCategory("note", 2, 20))
	assert.Empty(t, ix.ByCategory("pictures", 1, 20))
}

func TestIndex_Get(t *testing.T) {
	ix := newTestIndex(t)

	article, ok := ix.Get("article", "rust-soup")
	require.True(t, ok)
	assert.Equal(t, "Cooking with Rust", article.Title)

	_, ok = ix.Get("note", "rust-soup")
	assert.False(t, ok)
	_, ok = ix.Get("think", "rust-draft")
	assert.False(t, ok)
}

func TestFixtures_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.json")
	articles := testArticles()

	require.NoError(t, WriteFixtures(path, articles))

	loaded, err := LoadFixtures(path)
	require.NoError(t, err)
	require.Len(t, loaded, len(articles))
	assert.Equal(t, articles[0].ID, loaded[0].ID)
	assert.Equal(t, articles[0].Content, loaded[0].Content)
}

func TestFixtures_MissingFile(t *testing.T) {
	_, err := LoadFixtures(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
