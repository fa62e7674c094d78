// Package aggregate orchestrates a full aggregation run: concurrent
// fetch across every configured source, merge, near-duplicate
// suppression, ranking and persistence.
package aggregate

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"nairobell/aggregator/internal/dedup"
	"nairobell/aggregator/internal/models"
)

const (
	defaultMaxConcurrent  = 10
	defaultBatchTimeout   = 60 * time.Second
	defaultFallbackMaxAge = 6 * time.Hour
)

// ErrRefreshInProgress is returned when a refresh is requested while a
// previous run has not finished. Runs are never interleaved; the caller
// retries on the next cycle.
var ErrRefreshInProgress = errors.New("aggregation refresh already in progress")

// Fetcher fetches one source's articles.
type Fetcher interface {
	Fetch(ctx context.Context, src models.Source) ([]models.Article, error)
}

// Store persists aggregated batches and serves the stale fallback.
type Store interface {
	UpsertBatch(ctx context.Context, articles []models.Article) (int, error)
	GetSince(ctx context.Context, maxAge time.Duration) ([]models.Article, error)
}

// Config tunes a Service. Zero values fall back to defaults.
type Config struct {
	// MaxConcurrent caps in-flight feed requests; additional sources queue.
	MaxConcurrent int
	// BatchTimeout bounds a whole run. In-flight fetches past the
	// deadline are abandoned; completed batches are kept.
	BatchTimeout time.Duration
	// FallbackMaxAge bounds how stale cached articles may be when the
	// store is used as fallback for an empty run.
	FallbackMaxAge time.Duration
}

// Service runs the aggregation pipeline. A single Service owns its
// run-in-progress lock; overlapping refreshes are rejected rather than
// queued.
type Service struct {
	fetcher Fetcher
	store   Store
	sources []models.Source

	maxConcurrent  int
	batchTimeout   time.Duration
	fallbackMaxAge time.Duration

	refreshing atomic.Bool

	// Counters for the most recent run
	sourcesFailed atomic.Int32
}

// NewService creates an aggregation service over the given source registry.
func NewService(fetcher Fetcher, store Store, sources []models.Source, cfg Config) *Service {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaultMaxConcurrent
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = defaultBatchTimeout
	}
	if cfg.FallbackMaxAge <= 0 {
		cfg.FallbackMaxAge = defaultFallbackMaxAge
	}

	return &Service{
		fetcher:        fetcher,
		store:          store,
		sources:        sources,
		maxConcurrent:  cfg.MaxConcurrent,
		batchTimeout:   cfg.BatchTimeout,
		fallbackMaxAge: cfg.FallbackMaxAge,
	}
}

// Refresh runs one full aggregation cycle and returns the deduplicated
// batch sorted by recency. A run where every source fails returns an
// empty batch, not an error; callers fall back to Cached. Persistence
// failures are logged and do not fail the run.
func (s *Service) Refresh(ctx context.Context) ([]models.Article, error) {
	if !s.refreshing.CompareAndSwap(false, true) {
		return nil, ErrRefreshInProgress
	}
	defer s.refreshing.Store(false)

	startTime := time.Now()
	log.Info().Int("sources", len(s.sources)).Msg("Starting aggregation run")

	articles := s.aggregate(ctx)

	if len(articles) > 0 && s.store != nil {
		// The in-memory result is returned even when caching it fails.
		if _, err := s.store.UpsertBatch(ctx, articles); err != nil {
			log.Error().Err(err).Msg("Failed to persist aggregated batch")
		}
	}

	log.Info().
		Int("articles", len(articles)).
		Int32("sources_failed", s.sourcesFailed.Load()).
		Dur("duration", time.Since(startTime)).
		Msg("Aggregation run finished")

	return articles, nil
}

// aggregate fans out one fetch per source bounded by the concurrency
// ceiling, gathers surviving batches in source order, then dedups and
// ranks the merged set single-threaded.
func (s *Service) aggregate(ctx context.Context) []models.Article {
	batchCtx, cancel := context.WithTimeout(ctx, s.batchTimeout)
	defer cancel()

	s.sourcesFailed.Store(0)

	sem := make(chan struct{}, s.maxConcurrent)
	batches := make([][]models.Article, len(s.sources))

	var wg sync.WaitGroup
	for i, src := range s.sources {
		wg.Add(1)
		go func(i int, src models.Source) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-batchCtx.Done():
				s.sourcesFailed.Add(1)
				log.Warn().Str("source", src.ID).Msg("Fetch abandoned: batch deadline reached while queued")
				return
			}

			articles, err := s.fetcher.Fetch(batchCtx, src)
			if err != nil {
				s.sourcesFailed.Add(1)
				log.Warn().Err(err).Str("source", src.ID).Msg("Source fetch failed")
				return
			}
			batches[i] = articles
		}(i, src)
	}
	wg.Wait()

	var all []models.Article
	for _, batch := range batches {
		all = append(all, batch...)
	}

	unique := dedup.Filter(all)
	SortByRecency(unique)

	log.Debug().
		Int("fetched", len(all)).
		Int("unique", len(unique)).
		Msg("Merged and deduplicated batch")

	return unique
}

// Cached returns the most recent persisted batch within the fallback
// age window, newest first. Store errors yield an empty batch.
func (s *Service) Cached(ctx context.Context) []models.Article {
	if s.store == nil {
		return nil
	}
	articles, err := s.store.GetSince(ctx, s.fallbackMaxAge)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read cached articles")
		return nil
	}
	return articles
}

// Sources returns the configured source registry.
func (s *Service) Sources() []models.Source {
	return s.sources
}

// SortByRecency orders articles by descending publish time. This is the
// default ordering for general listings.
func SortByRecency(articles []models.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}

// SortByRelevance orders articles by descending engagement score,
// breaking ties by descending publish time. Used for trending views.
func SortByRelevance(articles []models.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		if articles[i].EngagementScore != articles[j].EngagementScore {
			return articles[i].EngagementScore > articles[j].EngagementScore
		}
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}
