package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/inkfold/inkfold/internal/config"
	"github.com/inkfold/inkfold/internal/database"
	"github.com/inkfold/inkfold/internal/models"
	"github.com/inkfold/inkfold/internal/repository"
	"github.com/inkfold/inkfold/internal/store"
	"github.com/inkfold/inkfold/pkg/utils"
)

// ArticleSeeder crawls a published site and collects its articles into
// fixtures the dev server can search, optionally upserting them into the
// database as well.
type ArticleSeeder struct {
	collector   *colly.Collector
	repoManager *repository.RepositoryManager
	logger      *logrus.Logger
	articles    []models.Article
	seen        map[string]bool
	errors      []error
}

var (
	siteURL   = flag.String("site", "", "Base URL of the site to crawl (defaults to site.base_url from config)")
	outPath   = flag.String("out", "data/articles.json", "Fixtures file to write")
	dryRun    = flag.Bool("dry-run", false, "Crawl and report without writing fixtures or the database")
	verbose   = flag.Bool("verbose", false, "Enable verbose logging")
	pageLimit = flag.Int("limit", 0, "Limit number of articles to collect (0 = all)")
	delay     = flag.Duration("delay", time.Second, "Delay between requests")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	logger := utils.GetLogger()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	base := *siteURL
	if base == "" {
		base = cfg.Site.BaseURL
	}
	if base == "" {
		logger.Fatal("No site URL configured")
	}

	var repoManager *repository.RepositoryManager
	if !*dryRun && cfg.Database.URL != "" {
		dbManager, err := database.NewManager(&database.Config{
			DatabaseURL: cfg.Database.URL,
			RedisURL:    cfg.Redis.URL,
		}, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize database manager")
		}
		defer dbManager.Close()

		if err := dbManager.Migrate(); err != nil {
			logger.WithError(err).Fatal("Failed to run migrations")
		}

		repoManager = repository.NewRepositoryManager(dbManager.DB)
	}

	seeder := NewArticleSeeder(repoManager, logger)

	logger.WithField("site", base).Info("Starting article seeder")

	if err := seeder.Crawl(base); err != nil {
		logger.WithError(err).Fatal("Crawl failed")
	}

	if *dryRun {
		logger.WithField("articles", len(seeder.articles)).Info("DRY RUN: collected articles, nothing written")
		return
	}

	if err := seeder.Flush(*outPath); err != nil {
		logger.WithError(err).Fatal("Failed to write results")
	}

	logger.WithFields(logrus.Fields{
		"articles": len(seeder.articles),
		"errors":   len(seeder.errors),
		"out":      *outPath,
	}).Info("Seeding completed")
}

func NewArticleSeeder(repoManager *repository.RepositoryManager, logger *logrus.Logger) *ArticleSeeder {
	c := colly.NewCollector(
		colly.UserAgent("inkfold-seeder/1.0"),
	)

	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 2,
		Delay:       *delay,
	})

	c.SetRequestTimeout(30 * time.Second)

	return &ArticleSeeder{
		collector:   c,
		repoManager: repoManager,
		logger:      logger,
		seen:        make(map[string]bool),
	}
}

// Crawl walks the site's category listings and collects every linked article.
func (s *ArticleSeeder) Crawl(base string) error {
	base = strings.TrimRight(base, "/")

	// Article pages live at /{category}/{id}
	s.collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if !strings.HasPrefix(link, base) {
			return
		}

		category, id, ok := parseArticlePath(strings.TrimPrefix(link, base))
		if !ok {
			return
		}

		key := category + "/" + id
		if s.seen[key] {
			return
		}

		if *pageLimit > 0 && len(s.articles) >= *pageLimit {
			return
		}

		s.seen[key] = true
		e.Request.Visit(link)
	})

	s.collector.OnHTML("main", func(e *colly.HTMLElement) {
		category, id, ok := parseArticlePath(strings.TrimPrefix(e.Request.URL.Path, "/"))
		if !ok {
			category, id, ok = parseArticlePath(e.Request.URL.Path)
		}
		if !ok {
			return
		}

		article := s.extractArticle(e, category, id)
		if article == nil {
			return
		}

		s.articles = append(s.articles, *article)
		s.logger.WithFields(logrus.Fields{
			"id":       article.ID,
			"category": article.Category,
			"title":    article.Title,
		}).Debug("Article collected")
	})

	s.collector.OnError(func(r *colly.Response, err error) {
		s.errors = append(s.errors, fmt.Errorf("fetch %s: %w", r.Request.URL, err))
		s.logger.WithError(err).WithField("url", r.Request.URL.String()).Warn("Request failed")
	})

	for _, category := range []string{
		models.CategoryArticle,
		models.CategoryNote,
		models.CategoryThink,
		models.CategoryPictures,
		models.CategoryTalk,
	} {
		if err := s.collector.Visit(base + "/" + category); err != nil {
			s.logger.WithError(err).WithField("category", category).Warn("Failed to visit category listing")
		}
	}

	s.collector.Wait()
	return nil
}

func (s *ArticleSeeder) extractArticle(e *colly.HTMLElement, category, id string) *models.Article {
	title := strings.TrimSpace(e.DOM.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(e.ChildText("title"))
	}
	if title == "" {
		return nil
	}

	// Strip navigation chrome before grabbing body text
	body := e.DOM.Clone()
	body.Find("nav, header, footer, script, style").Remove()

	content := strings.TrimSpace(body.Text())
	content = strings.Join(strings.Fields(content), " ")

	summary := strings.TrimSpace(e.ChildAttr(`meta[name="description"]`, "content"))
	if summary == "" && len(content) > 0 {
		summary = firstRunes(content, 160)
	}

	var tags models.StringArray
	e.DOM.Find(".tag, .tags a").Each(func(_ int, sel *goquery.Selection) {
		if t := strings.TrimSpace(sel.Text()); t != "" {
			tags = append(tags, t)
		}
	})

	now := time.Now()
	article := &models.Article{
		ID:        id,
		Title:     title,
		Tags:      tags,
		Category:  category,
		Summary:   summary,
		Content:   content,
		Status:    "published",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := article.Validate(); err != nil {
		s.logger.WithError(err).WithField("id", id).Warn("Skipping invalid article")
		return nil
	}

	return article
}

// Flush writes the collected articles to the fixtures file and, when a
// database is attached, upserts them.
func (s *ArticleSeeder) Flush(path string) error {
	if err := store.WriteFixtures(path, s.articles); err != nil {
		return fmt.Errorf("write fixtures: %w", err)
	}

	if s.repoManager == nil {
		return nil
	}

	for i := range s.articles {
		if err := s.repoManager.Article.Upsert(&s.articles[i]); err != nil {
			s.logger.WithError(err).WithField("id", s.articles[i].ID).Error("Failed to upsert article")
			s.errors = append(s.errors, err)
		}
	}

	return nil
}

func parseArticlePath(p string) (category, id string, ok bool) {
	p = strings.Trim(p, "/")
	parts := strings.Split(p, "/")
	if len(parts) != 2 {
		return "", "", false
	}
	if !models.ValidCategory(parts[0]) || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
