package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nairobell/aggregator/internal/database"
	"nairobell/aggregator/internal/models"
)

func newTestStore(t *testing.T) ArticleStore {
	t.Helper()

	db, err := database.NewDB(database.NewConfig(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return New(db)
}

func testArticle(id, title string) models.Article {
	return models.Article{
		ID:               id,
		Title:            title,
		Description:      "description",
		Content:          "content",
		URL:              "https://example.com/" + id,
		Source:           "Test Feed",
		Category:         models.CategoryGeneral,
		CountryFocus:     models.StringList{"kenya"},
		Language:         "en",
		PublishedAt:      time.Now().UTC().Truncate(time.Second),
		EngagementScore:  5.5,
		CredibilityScore: 7.0,
	}
}

func TestUpsertBatchAndGetSince(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	written, err := store.UpsertBatch(ctx, []models.Article{
		testArticle("a1", "Kenya election results"),
		testArticle("a2", "Ghana cocoa harvest"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	got, err := store.GetSince(ctx, time.Hour)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ordered by created_at desc, id asc; same write gives id order.
	assert.Equal(t, "a1", got[0].ID)
	assert.Equal(t, "Kenya election results", got[0].Title)
	assert.Equal(t, models.StringList{"kenya"}, got[0].CountryFocus)
	assert.Equal(t, 5.5, got[0].EngagementScore)
}

func TestUpsertBatchReplacesByFingerprint(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := testArticle("a1", "Kenya election results")
	_, err := store.UpsertBatch(ctx, []models.Article{first})
	require.NoError(t, err)

	updated := first
	updated.EngagementScore = 9.0
	written, err := store.UpsertBatch(ctx, []models.Article{updated})
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	got, err := store.GetSince(ctx, time.Hour)
	require.NoError(t, err)
	require.Len(t, got, 1, "re-upserting the same fingerprint must not duplicate")
	assert.Equal(t, 9.0, got[0].EngagementScore)
}

func TestUpsertBatchEmpty(t *testing.T) {
	store := newTestStore(t)

	written, err := store.UpsertBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, written)
}

func TestGetSinceExcludesStaleRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.UpsertBatch(ctx, []models.Article{testArticle("a1", "Kenya election results")})
	require.NoError(t, err)

	got, err := store.GetSince(ctx, time.Nanosecond)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPurgeOlderThan(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.UpsertBatch(ctx, []models.Article{testArticle("a1", "Kenya election results")})
	require.NoError(t, err)

	// Fresh rows survive a purge with a generous retention window.
	deleted, err := store.PurgeOlderThan(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	got, err := store.GetSince(ctx, time.Hour)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = store.PurgeOlderThan(ctx, 0)
	assert.Error(t, err, "non-positive retention is rejected")
}
