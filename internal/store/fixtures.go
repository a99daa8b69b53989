package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/inkfold/inkfold/internal/models"
)

// LoadFixtures reads an article set from a JSON file, as produced by the
// seed command. Lets the dev server run without a database.
func LoadFixtures(path string) ([]models.Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}

	var articles []models.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}

	for i := range articles {
		if err := articles[i].Validate(); err != nil {
			return nil, fmt.Errorf("fixture article %d: %w", i, err)
		}
	}

	return articles, nil
}

// WriteFixtures persists an article set to a JSON file.
func WriteFixtures(path string, articles []models.Article) error {
	data, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal fixtures: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
