package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// StringArray stores tags as a PostgreSQL text[] (or a braced string under
// sqlite).
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "{}", nil
	}
	return fmt.Sprintf("{%s}", strings.Join(s, ",")), nil
}

func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}

	switch v := value.(type) {
	case string:
		v = strings.Trim(v, "{}")
		if v == "" {
			*s = StringArray{}
			return nil
		}
		*s = StringArray(strings.Split(v, ","))
	case []byte:
		return s.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into StringArray", value)
	}
	return nil
}

// Article categories. Stored lowercase, matching the public JSON shape.
const (
	CategoryArticle  = "article"
	CategoryNote     = "note"
	CategoryThink    = "think"
	CategoryPictures = "pictures"
	CategoryTalk     = "talk"
)

// ValidCategory reports whether s names a known article category.
func ValidCategory(s string) bool {
	switch s {
	case CategoryArticle, CategoryNote, CategoryThink, CategoryPictures, CategoryTalk:
		return true
	}
	return false
}

// Article is one published piece of site content.
type Article struct {
	ID        string      `json:"id" gorm:"primaryKey"`
	Title     string      `json:"title" gorm:"not null"`
	Tags      StringArray `json:"tags" gorm:"type:text[]"`
	Category  string      `json:"category" gorm:"not null;index"`
	Summary   string      `json:"summary"`
	Content   string      `json:"content"`
	Status    string      `json:"status" gorm:"default:'published'"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (Article) TableName() string { return "articles" }

func (a *Article) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("article id is required")
	}
	if a.Title == "" {
		return fmt.Errorf("article title is required")
	}
	if !ValidCategory(a.Category) {
		return fmt.Errorf("invalid category: %s", a.Category)
	}
	return nil
}

func (a *Article) BeforeCreate(tx *gorm.DB) error { return a.Validate() }

func (a *Article) BeforeUpdate(tx *gorm.DB) error { return a.Validate() }

// PostResponse is the trimmed article shape returned by the posts listing.
type PostResponse struct {
	ID      string      `json:"id"`
	Title   string      `json:"title"`
	Tags    StringArray `json:"tags"`
	Content string      `json:"content"`
}

// ArticleRepository is the persistence boundary for articles.
type ArticleRepository interface {
	Upsert(article *Article) error
	GetByCategoryAndID(category, id string) (*Article, error)
	GetByCategory(category string, page, pageSize int) ([]Article, error)
	GetAllPublished() ([]Article, error)
	Delete(id string) error
}
