package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// SearchQuery is one recorded search request, kept for diagnostics and for
// feeding the suggestions endpoint.
type SearchQuery struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	QueryText       string    `json:"query_text" gorm:"not null"`
	UserSession     string    `json:"user_session"`
	ResultsCount    int       `json:"results_count" gorm:"default:0"`
	Page            int       `json:"page" gorm:"default:1"`
	SearchTimestamp time.Time `json:"search_timestamp"`
	ResponseTimeMs  int       `json:"response_time_ms"`
	UserAgent       string    `json:"user_agent"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PopularQuery aggregates how often a term is searched.
type PopularQuery struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	QueryText         string    `json:"query_text" gorm:"unique;not null"`
	SearchCount       int       `json:"search_count" gorm:"default:1"`
	AvgResultsCount   float64   `json:"avg_results_count" gorm:"default:0"`
	AvgResponseTimeMs int       `json:"avg_response_time_ms" gorm:"default:0"`
	LastSearched      time.Time `json:"last_searched"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (SearchQuery) TableName() string  { return "search_queries" }
func (PopularQuery) TableName() string { return "popular_queries" }

func (sq *SearchQuery) Validate() error {
	if sq.QueryText == "" {
		return fmt.Errorf("query text is required")
	}
	if sq.ResponseTimeMs < 0 {
		return fmt.Errorf("response time cannot be negative")
	}
	return nil
}

func (sq *SearchQuery) BeforeCreate(tx *gorm.DB) error { return sq.Validate() }

// SearchQueryRepository records and reads search analytics.
type SearchQueryRepository interface {
	Create(query *SearchQuery) error
	GetRecentSearches(limit int) ([]SearchQuery, error)
}

// PopularQueryRepository maintains aggregate per-term counters.
type PopularQueryRepository interface {
	IncrementCount(queryText string) error
	GetTop(limit int) ([]PopularQuery, error)
	UpdateStats(queryText string, resultsCount float64, responseTime int) error
}
