package fetch

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// maxDescriptionLen is the character budget for cleaned descriptions.
const maxDescriptionLen = 300

var imgSrcPattern = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["']`)

// CleanDescription strips HTML tags, trims whitespace and truncates the
// text to the description budget, appending an ellipsis marker when
// content was cut.
func CleanDescription(raw string) string {
	text := strings.TrimSpace(stripHTML(raw))

	runes := []rune(text)
	if len(runes) <= maxDescriptionLen {
		return text
	}
	return string(runes[:maxDescriptionLen]) + "..."
}

// stripHTML returns the text content of an HTML fragment. Input that
// fails to parse is returned as-is; feed summaries are frequently plain
// text already.
func stripHTML(raw string) string {
	if !strings.Contains(raw, "<") {
		return raw
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return raw
	}
	return doc.Text()
}

// extractThumbnail resolves an entry's thumbnail with a fixed
// precedence: structured media:thumbnail extension, first image-typed
// enclosure, first <img src> scanned out of the raw content HTML, then
// the entry's structured image. Returns "" when nothing matches.
func extractThumbnail(item *gofeed.Item) string {
	if url := mediaThumbnail(item); url != "" {
		return url
	}

	for _, enclosure := range item.Enclosures {
		if enclosure != nil && strings.HasPrefix(enclosure.Type, "image/") && enclosure.URL != "" {
			return enclosure.URL
		}
	}

	for _, html := range []string{item.Content, item.Description} {
		if match := imgSrcPattern.FindStringSubmatch(html); match != nil {
			return match[1]
		}
	}

	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}

	return ""
}

// mediaThumbnail pulls the media RSS thumbnail extension when present.
func mediaThumbnail(item *gofeed.Item) string {
	media, ok := item.Extensions["media"]
	if !ok {
		return ""
	}
	for _, thumb := range media["thumbnail"] {
		if url := thumb.Attrs["url"]; url != "" {
			return url
		}
	}
	return ""
}
