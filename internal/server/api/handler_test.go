package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nairobell/aggregator/internal/aggregate"
	"nairobell/aggregator/internal/models"
	"nairobell/aggregator/internal/server/cache"
	"nairobell/aggregator/internal/trends"
)

type fakeRefresher struct {
	count int
	err   error
}

func (f *fakeRefresher) RefreshNow(context.Context) (int, error) {
	return f.count, f.err
}

func seededCache(articles ...models.Article) *cache.Cache {
	c := cache.New()
	c.Set(articles, trends.ExtractTopics(articles, trends.DefaultTopN))
	return c
}

func testArticles() []models.Article {
	now := time.Now().UTC()
	return []models.Article{
		{
			ID:              "a1",
			Title:           "Kenya election results announced",
			Description:     "Official results are in",
			Category:        models.CategoryPolitics,
			CountryFocus:    models.StringList{"kenya"},
			PublishedAt:     now,
			IsTrending:      true,
			EngagementScore: 8.0,
		},
		{
			ID:              "a2",
			Title:           "Lagos startup raises funding",
			Description:     "Another tech round closes",
			Category:        models.CategoryTechnology,
			CountryFocus:    models.StringList{"nigeria"},
			PublishedAt:     now.Add(-1 * time.Hour),
			EngagementScore: 6.0,
		},
		{
			ID:              "a3",
			Title:           "National team names new coach",
			Description:     "Squad prepares for qualifiers",
			Category:        models.CategorySports,
			CountryFocus:    models.StringList{"kenya", "nigeria"},
			PublishedAt:     now.Add(-2 * time.Hour),
			IsTrending:      true,
			EngagementScore: 9.0,
		},
	}
}

func getNews(t *testing.T, h *NewsHandler, target string) (*httptest.ResponseRecorder, newsResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.GetNews(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var resp newsResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestGetNews(t *testing.T) {
	h := NewNewsHandler(seededCache(testArticles()...), nil, nil)

	rec, resp := getNews(t, h, "/api/news")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Total)
	assert.Len(t, resp.Articles, 3)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, defaultLimit, resp.Limit)
	assert.False(t, resp.HasMore)
	assert.False(t, resp.LastUpdated.IsZero())
}

func TestGetNewsFilters(t *testing.T) {
	h := NewNewsHandler(seededCache(testArticles()...), nil, nil)

	tests := []struct {
		name    string
		target  string
		wantIDs []string
	}{
		{"category", "/api/news?category=technology", []string{"a2"}},
		{"category case-insensitive", "/api/news?category=TECHNOLOGY", []string{"a2"}},
		{"country", "/api/news?country=nigeria", []string{"a2", "a3"}},
		{"search in title", "/api/news?search=election", []string{"a1"}},
		{"search in description", "/api/news?search=qualifiers", []string{"a3"}},
		{"combined", "/api/news?country=kenya&category=sports", []string{"a3"}},
		{"no matches", "/api/news?search=nomatch", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := getNews(t, h, tt.target)
			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, len(tt.wantIDs), resp.Total)
			for i, id := range tt.wantIDs {
				assert.Equal(t, id, resp.Articles[i].ID)
			}
		})
	}
}

func TestGetNewsPagination(t *testing.T) {
	h := NewNewsHandler(seededCache(testArticles()...), nil, nil)

	rec, resp := getNews(t, h, "/api/news?page=1&limit=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, resp.Articles, 2)
	assert.Equal(t, 3, resp.Total)
	assert.True(t, resp.HasMore)

	rec, resp = getNews(t, h, "/api/news?page=2&limit=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, resp.Articles, 1)
	assert.False(t, resp.HasMore)

	// A page past the end is empty, not an error.
	rec, resp = getNews(t, h, "/api/news?page=9&limit=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp.Articles)
}

func TestGetNewsBadParams(t *testing.T) {
	h := NewNewsHandler(seededCache(testArticles()...), nil, nil)

	for _, target := range []string{
		"/api/news?page=0",
		"/api/news?page=abc",
		"/api/news?limit=-1",
		"/api/news?limit=101",
	} {
		rec, _ := getNews(t, h, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestGetNewsEmptyCache(t *testing.T) {
	h := NewNewsHandler(cache.New(), nil, nil)

	rec, _ := getNews(t, h, "/api/news")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "No articles found", body["message"])
}

func TestGetTrending(t *testing.T) {
	h := NewNewsHandler(seededCache(testArticles()...), nil, nil)

	rec := httptest.NewRecorder()
	h.GetTrending(rec, httptest.NewRequest(http.MethodGet, "/api/trending", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp trendingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Total)

	// Trending articles ranked by engagement score.
	assert.Equal(t, "a3", resp.Articles[0].ID)
	assert.Equal(t, "a1", resp.Articles[1].ID)
	assert.NotEmpty(t, resp.TrendingTopics)
}

func TestGetTrendingFallsBackToRecent(t *testing.T) {
	articles := testArticles()
	for i := range articles {
		articles[i].IsTrending = false
	}
	h := NewNewsHandler(seededCache(articles...), nil, nil)

	rec := httptest.NewRecorder()
	h.GetTrending(rec, httptest.NewRequest(http.MethodGet, "/api/trending?limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp trendingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, "a1", resp.Articles[0].ID, "falls back to the recency-ordered snapshot")
}

func TestGetCategoriesAndCountries(t *testing.T) {
	h := NewNewsHandler(seededCache(testArticles()...), nil, nil)

	rec := httptest.NewRecorder()
	h.GetCategories(rec, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var categories struct {
		Categories []string `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &categories))
	assert.Equal(t, []string{"politics", "sports", "technology"}, categories.Categories)

	rec = httptest.NewRecorder()
	h.GetCountries(rec, httptest.NewRequest(http.MethodGet, "/api/countries", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var countries struct {
		Countries []string `json:"countries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &countries))
	assert.Equal(t, []string{"kenya", "nigeria"}, countries.Countries)
}

func TestGetSources(t *testing.T) {
	sources := []models.Source{{ID: "test_feed", Name: "Test Feed", FeedURL: "https://example.com/rss"}}
	h := NewNewsHandler(cache.New(), sources, nil)

	rec := httptest.NewRecorder()
	h.GetSources(rec, httptest.NewRequest(http.MethodGet, "/api/sources", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool            `json:"success"`
		Sources []models.Source `json:"sources"`
		Total   int             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "test_feed", resp.Sources[0].ID)
}

func TestRefresh(t *testing.T) {
	tests := []struct {
		name       string
		refresher  *fakeRefresher
		wantStatus int
	}{
		{"success", &fakeRefresher{count: 42}, http.StatusOK},
		{"already running", &fakeRefresher{err: aggregate.ErrRefreshInProgress}, http.StatusConflict},
		{"failure", &fakeRefresher{err: errors.New("boom")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewNewsHandler(cache.New(), nil, tt.refresher)

			rec := httptest.NewRecorder()
			h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus == http.StatusOK {
				var body map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, float64(42), body["articles_count"])
			}
		})
	}
}

func TestHealth(t *testing.T) {
	h := NewNewsHandler(seededCache(testArticles()...), nil, nil)

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(3), body["articles_cached"])
}
