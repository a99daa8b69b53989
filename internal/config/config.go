package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port string
	}
	Database struct {
		URL string
	}
	Redis struct {
		URL string
	}
	Search struct {
		// BaseURL is the search API consumed by the client commands,
		// e.g. "https://inkfold.dev/api".
		BaseURL string
		// PageSize is the number of hits per result page served by the
		// dev server.
		PageSize int
	}
	Fixtures struct {
		// Path is the article fixtures file loaded into the index when no
		// database is configured.
		Path string
	}
	Site struct {
		// BaseURL is the public address of the content site; the search
		// client mirrors the committed query into it so searches stay
		// shareable.
		BaseURL string
	}
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	var config Config

	// Defaults
	viper.SetDefault("server.port", "8124")
	viper.SetDefault("database.url", "")
	viper.SetDefault("redis.url", "")
	viper.SetDefault("search.base_url", "http://localhost:8124")
	viper.SetDefault("search.page_size", 6)
	viper.SetDefault("fixtures.path", "data/articles.json")
	viper.SetDefault("site.base_url", "http://localhost:8124")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	config.Server.Port = viper.GetString("server.port")
	config.Database.URL = viper.GetString("database.url")
	config.Redis.URL = viper.GetString("redis.url")
	config.Search.BaseURL = viper.GetString("search.base_url")
	config.Search.PageSize = viper.GetInt("search.page_size")
	config.Fixtures.Path = viper.GetString("fixtures.path")
	config.Site.BaseURL = viper.GetString("site.base_url")

	return &config, nil
}

func (c *Config) ValidateSearch() error {
	if c.Search.BaseURL == "" {
		return fmt.Errorf("SEARCH_BASE_URL is required")
	}
	if c.Search.PageSize <= 0 {
		return fmt.Errorf("search page size must be positive")
	}
	return nil
}
