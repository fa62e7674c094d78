// Package storage persists aggregated articles in SQLite, keyed by the
// article fingerprint. It backs the read API when a live aggregation
// run comes back empty.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"nairobell/aggregator/internal/database"
	"nairobell/aggregator/internal/models"
)

// ArticleStore defines persistence operations for aggregated articles.
type ArticleStore interface {
	UpsertBatch(ctx context.Context, articles []models.Article) (int, error)
	GetSince(ctx context.Context, maxAge time.Duration) ([]models.Article, error)
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int64, error)
}

// sqlxStore implements ArticleStore using sqlx.
type sqlxStore struct {
	db *database.DB
}

// New creates a new article store instance.
func New(db *database.DB) ArticleStore {
	return &sqlxStore{db: db}
}

// UpsertBatch writes a batch of articles inside one transaction,
// replacing rows that share a fingerprint. Returns the number of rows
// written. A failed row is logged and skipped; it does not abort the
// rest of the batch.
func (s *sqlxStore) UpsertBatch(ctx context.Context, articles []models.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT OR REPLACE INTO articles (
			id, title, description, content, url, thumbnail,
			source, category, country_focus, language, published_at,
			is_breaking, is_trending, engagement_score, credibility_score, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare batch upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	written := 0

	for _, a := range articles {
		_, err := stmt.ExecContext(ctx,
			a.ID, a.Title, a.Description, a.Content, a.URL, a.Thumbnail,
			a.Source, a.Category, a.CountryFocus, a.Language, a.PublishedAt.UTC(),
			a.IsBreaking, a.IsTrending, a.EngagementScore, a.CredibilityScore, now,
		)
		if err != nil {
			log.Error().Err(err).Str("id", a.ID).Str("url", a.URL).Msg("Failed to upsert article")
			continue
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit batch upsert: %w", err)
	}

	log.Info().Int("written", written).Int("batch", len(articles)).Msg("Article batch persisted")
	return written, nil
}

// GetSince returns articles cached within the given age, newest first.
func (s *sqlxStore) GetSince(ctx context.Context, maxAge time.Duration) ([]models.Article, error) {
	cutoff := time.Now().UTC().Add(-maxAge)

	var articles []models.Article
	err := s.db.SelectContext(ctx, &articles, `
		SELECT * FROM articles
		WHERE created_at > ?
		ORDER BY created_at DESC, id ASC`, cutoff)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []models.Article{}, nil
		}
		return nil, fmt.Errorf("failed to query cached articles: %w", err)
	}

	return articles, nil
}

// PurgeOlderThan removes cached articles older than the retention
// window and returns the number of rows deleted.
func (s *sqlxStore) PurgeOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, fmt.Errorf("retention must be positive")
	}

	cutoff := time.Now().UTC().Add(-retention)
	result, err := s.db.ExecContext(ctx, "DELETE FROM articles WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge old articles: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Warn().Err(err).Msg("Could not get RowsAffected after purge")
		return 0, nil
	}

	if rowsAffected > 0 {
		log.Info().Int64("rows_affected", rowsAffected).Msg("Purged old articles")
	}
	return rowsAffected, nil
}
