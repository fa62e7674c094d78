package server

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nairobell/aggregator/internal/models"
)

func TestAPIKeyMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		serverKey  string
		requestKey string
		wantStatus int
	}{
		{"no key configured allows all", "", "", http.StatusOK},
		{"matching key", "secret", "secret", http.StatusOK},
		{"missing key", "secret", "", http.StatusUnauthorized},
		{"wrong key", "secret", "nope", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := apiKeyMiddleware(tt.serverKey)(next)

			req := httptest.NewRequest(http.MethodGet, "/api/news", nil)
			if tt.requestKey != "" {
				req.Header.Set("X-API-Key", tt.requestKey)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestExportSourcesHandler(t *testing.T) {
	sources := []models.Source{
		{
			ID:          "test_feed",
			Name:        "Test Feed",
			FeedURL:     "https://example.com/rss",
			Country:     "kenya",
			Language:    "en",
			Category:    models.CategoryGeneral,
			Credibility: 7.5,
		},
	}

	rec := httptest.NewRecorder()
	exportSourcesHandler(sources)(rec, httptest.NewRequest(http.MethodGet, "/api/sources/export", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "sources.csv")

	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"id", "name", "feed_url", "country", "language", "category", "credibility"}, records[0])
	assert.Equal(t, []string{"test_feed", "Test Feed", "https://example.com/rss", "kenya", "en", "general", "7.5"}, records[1])
}
