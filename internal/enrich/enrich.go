// Package enrich derives article metadata (category, country focus,
// breaking flag, engagement score) from title and description text.
// Every function here is deterministic and side-effect free.
package enrich

import (
	"strings"

	"nairobell/aggregator/internal/models"
)

// Keyword sets tested by Categorize, in priority order. The first
// matching set wins.
var (
	technologyKeywords = []string{
		"technology", "tech", "digital", "ai", "artificial intelligence",
		"startup", "fintech", "mobile", "internet", "software", "app",
	}
	businessKeywords = []string{
		"business", "economy", "economic", "market", "trade", "investment",
		"finance", "bank", "money", "gdp", "inflation", "currency",
	}
	politicsKeywords = []string{
		"politics", "political", "government", "president", "minister",
		"election", "vote", "parliament", "policy", "law", "constitution",
	}
	sportsKeywords = []string{
		"sports", "sport", "football", "soccer", "athletics", "olympics",
		"world cup", "match", "player", "team", "coach", "tournament",
	}
	healthKeywords = []string{
		"health", "medical", "hospital", "disease", "vaccine", "covid",
		"doctor", "medicine", "healthcare", "pandemic", "virus",
	}
)

var breakingKeywords = []string{
	"breaking", "urgent", "just in", "developing", "live",
	"emergency", "crisis", "attack", "explosion", "death",
}

var engagementKeywords = []string{
	"breaking", "urgent", "exclusive", "major", "significant",
	"important", "crisis", "emergency", "historic", "unprecedented",
}

const (
	baseEngagementScore  = 5.0
	breakingBonus        = 2.0
	keywordBonus         = 0.5
	titleLengthBonus     = 0.5
	maxEngagementScore   = 10.0
	optimalTitleLenLower = 30
	optimalTitleLenUpper = 80
)

// Enrichment bundles all derived article metadata for one entry.
type Enrichment struct {
	Category        string
	CountryFocus    []string
	IsBreaking      bool
	IsTrending      bool
	EngagementScore float64
}

// Enrich derives the full metadata set for an article.
func Enrich(title, description string, src models.Source) Enrichment {
	breaking := IsBreaking(title, description)
	score := EngagementScore(title, description, breaking)

	return Enrichment{
		Category:        Categorize(title, description, src.Category),
		CountryFocus:    CountryFocus(title, description, src.Country),
		IsBreaking:      breaking,
		IsTrending:      score > models.TrendingThreshold,
		EngagementScore: score,
	}
}

// Categorize assigns an article to the fixed taxonomy based on keyword
// matches over the lower-cased title and description. Categories are
// tested in priority order; no match falls back to the source default.
func Categorize(title, description, sourceCategory string) string {
	text := normalizeText(title, description)

	ordered := []struct {
		category string
		keywords []string
	}{
		{models.CategoryTechnology, technologyKeywords},
		{models.CategoryBusiness, businessKeywords},
		{models.CategoryPolitics, politicsKeywords},
		{models.CategorySports, sportsKeywords},
		{models.CategoryHealth, healthKeywords},
	}

	for _, set := range ordered {
		if containsAny(text, set.keywords) {
			return set.category
		}
	}

	if sourceCategory == "" {
		return models.CategoryGeneral
	}
	return sourceCategory
}

// IsBreaking reports whether the text carries a breaking-news indicator.
func IsBreaking(title, description string) bool {
	return containsAny(normalizeText(title, description), breakingKeywords)
}

// EngagementScore estimates the relevance of an article in [0, 10].
// Breaking news and engagement keywords add to the base score; a title
// length in the readable range adds a small bonus. Multiple keyword
// matches stack; the final value is capped at 10.
func EngagementScore(title, description string, breaking bool) float64 {
	score := baseEngagementScore

	if breaking {
		score += breakingBonus
	}

	text := normalizeText(title, description)
	for _, word := range engagementKeywords {
		if strings.Contains(text, word) {
			score += keywordBonus
		}
	}

	if n := len(title); n >= optimalTitleLenLower && n <= optimalTitleLenUpper {
		score += titleLengthBonus
	}

	if score > maxEngagementScore {
		score = maxEngagementScore
	}
	return score
}

func normalizeText(title, description string) string {
	return strings.ToLower(title + " " + description)
}

func containsAny(text string, keywords []string) bool {
	for _, word := range keywords {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}
