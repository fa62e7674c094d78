package models

import (
	"crypto/md5"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Article categories form a fixed taxonomy. Enrichment never produces a
// value outside this set.
const (
	CategoryGeneral    = "general"
	CategoryTechnology = "technology"
	CategoryBusiness   = "business"
	CategoryPolitics   = "politics"
	CategorySports     = "sports"
	CategoryHealth     = "health"
)

// Categories lists the full taxonomy in display order.
var Categories = []string{
	CategoryGeneral,
	CategoryTechnology,
	CategoryBusiness,
	CategoryPolitics,
	CategorySports,
	CategoryHealth,
}

// TrendingThreshold is the engagement score above which an article is
// flagged as trending.
const TrendingThreshold = 7.0

// Article represents a single aggregated news story. It is constructed
// exactly once per successful feed-entry parse and never mutated after
// construction.
type Article struct {
	ID               string     `db:"id" json:"id"`
	Title            string     `db:"title" json:"title"`
	Description      string     `db:"description" json:"description"`
	Content          string     `db:"content" json:"content"`
	URL              string     `db:"url" json:"url"`
	Thumbnail        string     `db:"thumbnail" json:"thumbnail,omitempty"`
	Source           string     `db:"source" json:"source"`
	Category         string     `db:"category" json:"category"`
	CountryFocus     StringList `db:"country_focus" json:"country_focus"`
	Language         string     `db:"language" json:"language"`
	PublishedAt      time.Time  `db:"published_at" json:"published_at"`
	IsBreaking       bool       `db:"is_breaking" json:"is_breaking"`
	IsTrending       bool       `db:"is_trending" json:"is_trending"`
	EngagementScore  float64    `db:"engagement_score" json:"engagement_score"`
	CredibilityScore float64    `db:"credibility_score" json:"credibility_score"`
	CreatedAt        time.Time  `db:"created_at" json:"-"`
}

// ArticleID derives the stable content fingerprint for an article.
// Two fetches of the same story collapse to the same ID as long as the
// (url, title) pair is identical, even across sources.
func ArticleID(url, title string) string {
	sum := md5.Sum([]byte(url + title))
	return hex.EncodeToString(sum[:])
}

// StringList stores an ordered list of strings as a JSON array in a
// single text column.
type StringList []string

// Value implements driver.Valuer for database writes.
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		s = StringList{}
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal string list: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner for database reads.
func (s *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = StringList{}
		return nil
	case []byte:
		return json.Unmarshal(v, (*[]string)(s))
	case string:
		return json.Unmarshal([]byte(v), (*[]string)(s))
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
}

// Contains reports whether the list holds value, compared case-insensitively.
func (s StringList) Contains(value string) bool {
	for _, item := range s {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}
