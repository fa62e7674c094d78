// Package dedup suppresses near-duplicate articles by word overlap
// between normalized titles.
package dedup

import (
	"regexp"
	"strings"

	"nairobell/aggregator/internal/models"
)

// similarityThreshold is the word-overlap ratio above which two titles
// are considered the same story. Strictly greater than: a ratio of
// exactly 0.8 is kept.
const similarityThreshold = 0.8

var punctuationPattern = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// Filter removes near-duplicate articles while preserving the relative
// order of the first-seen representative of each cluster. Comparison is
// O(n^2) over normalized title word sets, which is fine for the
// expected batch sizes of tens to low hundreds of articles.
func Filter(articles []models.Article) []models.Article {
	unique := make([]models.Article, 0, len(articles))
	var seen []map[string]struct{}

	for _, article := range articles {
		words := titleWords(article.Title)

		duplicate := false
		for _, prev := range seen {
			if Similarity(words, prev) > similarityThreshold {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}

		unique = append(unique, article)
		seen = append(seen, words)
	}

	return unique
}

// Similarity computes the word-overlap ratio between two word sets:
// |intersection| / max(|a|, |b|). An empty set on either side yields 0,
// so titles that normalize to nothing never match anything and are
// always kept.
func Similarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	smaller, larger := a, b
	if len(b) < len(a) {
		smaller, larger = b, a
	}

	overlap := 0
	for word := range smaller {
		if _, ok := larger[word]; ok {
			overlap++
		}
	}

	return float64(overlap) / float64(len(larger))
}

// Normalize lower-cases a title, strips punctuation and collapses
// whitespace.
func Normalize(title string) string {
	cleaned := punctuationPattern.ReplaceAllString(strings.ToLower(title), "")
	return strings.Join(strings.Fields(cleaned), " ")
}

func titleWords(title string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, word := range strings.Fields(Normalize(title)) {
		words[word] = struct{}{}
	}
	return words
}
