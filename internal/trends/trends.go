// Package trends extracts the most frequent topic keywords from an
// aggregated article batch.
package trends

import (
	"regexp"
	"sort"
	"strings"

	"nairobell/aggregator/internal/models"
)

// DefaultTopN is the number of topics returned when the caller does not
// ask for a specific count.
const DefaultTopN = 10

var wordPattern = regexp.MustCompile(`\b[a-z]{4,}\b`)

// stopWords are high-frequency words excluded from topic counting.
var stopWords = map[string]struct{}{
	"news": {}, "said": {}, "says": {}, "after": {}, "will": {},
	"also": {}, "been": {}, "have": {}, "were": {}, "this": {},
	"that": {}, "with": {}, "from": {}, "they": {}, "more": {},
	"would": {}, "could": {}, "than": {}, "what": {}, "when": {},
	"where": {}, "while": {}, "about": {},
}

// Topic is one trending keyword with its mention count across the batch.
type Topic struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// ExtractTopics tokenizes title and description of every article,
// counts word frequency and returns the topN topics by descending
// count. Ties are broken by ascending word order so output is
// deterministic. topN values below 1 fall back to DefaultTopN.
func ExtractTopics(articles []models.Article, topN int) []Topic {
	if topN < 1 {
		topN = DefaultTopN
	}

	counts := make(map[string]int)
	for _, article := range articles {
		text := strings.ToLower(article.Title + " " + article.Description)
		for _, word := range wordPattern.FindAllString(text, -1) {
			if _, skip := stopWords[word]; skip {
				continue
			}
			counts[word]++
		}
	}

	topics := make([]Topic, 0, len(counts))
	for word, count := range counts {
		topics = append(topics, Topic{Word: word, Count: count})
	}

	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Count != topics[j].Count {
			return topics[i].Count > topics[j].Count
		}
		return topics[i].Word < topics[j].Word
	})

	if len(topics) > topN {
		topics = topics[:topN]
	}
	return topics
}
