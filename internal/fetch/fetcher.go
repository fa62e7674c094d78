// Package fetch retrieves and parses one feed source at a time,
// converting raw entries into enriched articles. Failures never
// propagate past the Fetch boundary as panics; a broken source simply
// yields an error the pipeline logs and moves past.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"

	"nairobell/aggregator/internal/enrich"
	"nairobell/aggregator/internal/models"
)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultMaxItems       = 10
	defaultUserAgent      = "Nairobell News Aggregator/1.0"
)

// Config tunes a Fetcher. Zero values fall back to defaults.
type Config struct {
	RequestTimeout time.Duration
	MaxItems       int
	UserAgent      string
}

// Fetcher fetches and parses a single feed source per call. It is safe
// for concurrent use.
type Fetcher struct {
	client         *http.Client
	parser         *gofeed.Parser
	requestTimeout time.Duration
	maxItems       int
	userAgent      string
}

// New creates a Fetcher with the given configuration.
func New(cfg Config) *Fetcher {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = defaultMaxItems
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	return &Fetcher{
		client:         &http.Client{Timeout: cfg.RequestTimeout},
		parser:         gofeed.NewParser(),
		requestTimeout: cfg.RequestTimeout,
		maxItems:       cfg.MaxItems,
		userAgent:      cfg.UserAgent,
	}
}

// Fetch retrieves the source's feed and returns its entries as
// articles, capped at the configured per-source maximum in feed order.
// Transport errors, non-2xx statuses and malformed bodies return an
// error along with an empty batch. Individual entries missing a usable
// title or URL are skipped without failing the rest of the batch.
func (f *Fetcher) Fetch(ctx context.Context, src models.Source) ([]models.Article, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, src.FeedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", src.ID, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", src.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, src.ID)
	}

	feed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("malformed feed from %s: %w", src.ID, err)
	}

	fetchedAt := time.Now().UTC()
	articles := make([]models.Article, 0, f.maxItems)

	for i, item := range feed.Items {
		if i >= f.maxItems {
			break
		}
		article, ok := buildArticle(item, src, fetchedAt)
		if !ok {
			log.Debug().
				Str("source", src.ID).
				Int("entry", i).
				Msg("Skipping entry without usable title or URL")
			continue
		}
		articles = append(articles, article)
	}

	log.Debug().
		Str("source", src.ID).
		Int("entries", len(feed.Items)).
		Int("articles", len(articles)).
		Msg("Feed fetched")

	return articles, nil
}

// buildArticle converts one feed entry into an Article. Entries with an
// empty title or link report ok=false and are discarded, not erred.
func buildArticle(item *gofeed.Item, src models.Source, fetchedAt time.Time) (models.Article, bool) {
	title := strings.TrimSpace(item.Title)
	url := strings.TrimSpace(item.Link)
	if title == "" || url == "" {
		return models.Article{}, false
	}

	description := CleanDescription(item.Description)
	content := item.Content
	if content == "" {
		content = description
	}

	meta := enrich.Enrich(title, description, src)

	return models.Article{
		ID:               models.ArticleID(url, title),
		Title:            title,
		Description:      description,
		Content:          content,
		URL:              url,
		Thumbnail:        extractThumbnail(item),
		Source:           src.Name,
		Category:         meta.Category,
		CountryFocus:     meta.CountryFocus,
		Language:         src.Language,
		PublishedAt:      publishedAt(item, fetchedAt),
		IsBreaking:       meta.IsBreaking,
		IsTrending:       meta.IsTrending,
		EngagementScore:  meta.EngagementScore,
		CredibilityScore: src.Credibility,
	}, true
}

// publishedAt resolves the entry timestamp: explicit published time,
// then updated time, then the fetch wall clock.
func publishedAt(item *gofeed.Item, fetchedAt time.Time) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC()
	}
	return fetchedAt
}
