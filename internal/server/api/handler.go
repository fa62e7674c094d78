// Package api implements the HTTP query layer over the aggregation
// snapshot: list/filter/paginate endpoints, trending, registry
// listings and the manual refresh trigger.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/hlog"

	"nairobell/aggregator/internal/aggregate"
	"nairobell/aggregator/internal/models"
	"nairobell/aggregator/internal/server/cache"
	"nairobell/aggregator/internal/trends"
)

const (
	defaultLimit      = 20
	maxLimit          = 100
	defaultTrendLimit = 10
	maxTrendLimit     = 50
)

// Refresher triggers an aggregation run outside the scheduled cycle.
type Refresher interface {
	RefreshNow(ctx context.Context) (int, error)
}

// NewsHandler serves article queries from the in-memory snapshot.
type NewsHandler struct {
	cache     *cache.Cache
	sources   []models.Source
	refresher Refresher
}

// NewNewsHandler creates a handler over the given snapshot cache and
// source registry.
func NewNewsHandler(c *cache.Cache, sources []models.Source, refresher Refresher) *NewsHandler {
	return &NewsHandler{
		cache:     c,
		sources:   sources,
		refresher: refresher,
	}
}

type newsResponse struct {
	Success     bool             `json:"success"`
	Articles    []models.Article `json:"articles"`
	Total       int              `json:"total"`
	Page        int              `json:"page"`
	Limit       int              `json:"limit"`
	HasMore     bool             `json:"has_more"`
	LastUpdated time.Time        `json:"last_updated"`
}

// GetNews handles GET /api/news with page/limit/category/country/search
// filters over the cached snapshot.
func (h *NewsHandler) GetNews(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)

	query := r.URL.Query()

	page, err := positiveIntParam(query.Get("page"), 1)
	if err != nil {
		http.Error(w, "Invalid 'page' parameter: must be a positive integer", http.StatusBadRequest)
		return
	}
	limit, err := limitParam(query.Get("limit"), defaultLimit, maxLimit)
	if err != nil {
		http.Error(w, "Invalid 'limit' parameter: must be between 1 and 100", http.StatusBadRequest)
		return
	}

	articles, lastUpdated := h.cache.Articles()
	if len(articles) == 0 {
		log.Debug().Msg("News request served with empty cache")
		writeJSON(w, http.StatusNotFound, map[string]any{
			"success": false,
			"message": "No articles found",
		})
		return
	}

	articles = filterArticles(articles, query.Get("category"), query.Get("country"), query.Get("search"))

	total := len(articles)
	start := (page - 1) * limit
	end := start + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	writeJSON(w, http.StatusOK, newsResponse{
		Success:     true,
		Articles:    articles[start:end],
		Total:       total,
		Page:        page,
		Limit:       limit,
		HasMore:     end < total,
		LastUpdated: lastUpdated,
	})
}

type trendingResponse struct {
	Success        bool             `json:"success"`
	Articles       []models.Article `json:"articles"`
	TrendingTopics []trends.Topic   `json:"trending_topics"`
	Total          int              `json:"total"`
	LastUpdated    time.Time        `json:"last_updated"`
}

// GetTrending handles GET /api/trending: trending articles ranked by
// relevance, plus the trending topic keywords. When no article crosses
// the trending threshold, the most recent ones are returned instead.
func (h *NewsHandler) GetTrending(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r.URL.Query().Get("limit"), defaultTrendLimit, maxTrendLimit)
	if err != nil {
		http.Error(w, "Invalid 'limit' parameter: must be between 1 and 50", http.StatusBadRequest)
		return
	}

	articles, lastUpdated := h.cache.Articles()
	if len(articles) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"success": false,
			"message": "No trending articles found",
		})
		return
	}

	trending := make([]models.Article, 0, limit)
	for _, a := range articles {
		if a.IsTrending {
			trending = append(trending, a)
		}
	}

	if len(trending) == 0 {
		// Snapshot is already recency-ordered.
		trending = articles
	} else {
		aggregate.SortByRelevance(trending)
	}
	if len(trending) > limit {
		trending = trending[:limit]
	}

	writeJSON(w, http.StatusOK, trendingResponse{
		Success:        true,
		Articles:       trending,
		TrendingTopics: h.cache.Topics(),
		Total:          len(trending),
		LastUpdated:    lastUpdated,
	})
}

// GetSources handles GET /api/sources.
func (h *NewsHandler) GetSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"sources": h.sources,
		"total":   len(h.sources),
	})
}

// GetCategories handles GET /api/categories: the distinct categories
// present in the snapshot, sorted.
func (h *NewsHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	articles, _ := h.cache.Articles()

	seen := make(map[string]bool)
	for _, a := range articles {
		if a.Category != "" {
			seen[a.Category] = true
		}
	}

	categories := make([]string, 0, len(seen))
	for category := range seen {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"categories": categories,
	})
}

// GetCountries handles GET /api/countries: the distinct country codes
// focused on by the snapshot, sorted.
func (h *NewsHandler) GetCountries(w http.ResponseWriter, r *http.Request) {
	articles, _ := h.cache.Articles()

	seen := make(map[string]bool)
	for _, a := range articles {
		for _, country := range a.CountryFocus {
			seen[country] = true
		}
	}

	countries := make([]string, 0, len(seen))
	for country := range seen {
		countries = append(countries, country)
	}
	sort.Strings(countries)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"countries": countries,
	})
}

// Refresh handles POST /api/refresh: a manual aggregation run through
// the service's run-lock. An overlapping run is reported as a conflict
// rather than queued.
func (h *NewsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)
	log.Info().Msg("Manual refresh requested")

	count, err := h.refresher.RefreshNow(r.Context())
	if err != nil {
		if errors.Is(err, aggregate.ErrRefreshInProgress) {
			writeJSON(w, http.StatusConflict, map[string]any{
				"success": false,
				"message": "A refresh is already in progress",
			})
			return
		}
		log.Error().Err(err).Msg("Manual refresh failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": "Refresh failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"message":        "News cache refreshed",
		"articles_count": count,
	})
}

// Health handles GET /api/health.
func (h *NewsHandler) Health(w http.ResponseWriter, r *http.Request) {
	_, lastUpdated := h.cache.Articles()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"status":          "healthy",
		"articles_cached": h.cache.Len(),
		"last_updated":    lastUpdated,
		"timestamp":       time.Now().UTC(),
	})
}

// filterArticles applies the optional category, country and free-text
// filters, preserving order.
func filterArticles(articles []models.Article, category, country, search string) []models.Article {
	if category == "" && country == "" && search == "" {
		return articles
	}

	search = strings.ToLower(search)
	filtered := make([]models.Article, 0, len(articles))

	for _, a := range articles {
		if category != "" && !strings.EqualFold(a.Category, category) {
			continue
		}
		if country != "" && !a.CountryFocus.Contains(country) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(a.Title), search) &&
			!strings.Contains(strings.ToLower(a.Description), search) {
			continue
		}
		filtered = append(filtered, a)
	}

	return filtered
}

func positiveIntParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, errors.New("not a positive integer")
	}
	return value, nil
}

func limitParam(raw string, fallback, ceiling int) (int, error) {
	value, err := positiveIntParam(raw, fallback)
	if err != nil {
		return 0, err
	}
	if value > ceiling {
		return 0, errors.New("limit above ceiling")
	}
	return value, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
