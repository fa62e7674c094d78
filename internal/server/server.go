// Package server runs the HTTP query API over the aggregation service,
// keeping an in-memory snapshot warm with a periodic refresh loop.
package server

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"nairobell/aggregator/internal/aggregate"
	"nairobell/aggregator/internal/export"
	"nairobell/aggregator/internal/models"
	"nairobell/aggregator/internal/server/api"
	"nairobell/aggregator/internal/server/cache"
	"nairobell/aggregator/internal/trends"
)

// Config carries the server settings.
type Config struct {
	ListenAddr      string
	APIKey          string
	RefreshInterval time.Duration
	ExportPath      string
}

// Server glues the aggregation service, the snapshot cache and the
// HTTP handlers together.
type Server struct {
	svc   *aggregate.Service
	cache *cache.Cache
	cfg   Config
}

// New creates a Server around an aggregation service.
func New(svc *aggregate.Service, cfg Config) *Server {
	return &Server{
		svc:   svc,
		cache: cache.New(),
		cfg:   cfg,
	}
}

// RefreshNow runs one aggregation cycle and swaps the snapshot. An
// empty live run falls back to the persisted batch so the API keeps
// serving stale-but-present data. Implements api.Refresher.
func (s *Server) RefreshNow(ctx context.Context) (int, error) {
	articles, err := s.svc.Refresh(ctx)
	if err != nil {
		return 0, err
	}

	if len(articles) == 0 {
		log.Warn().Msg("Live aggregation returned nothing, falling back to cached articles")
		articles = s.svc.Cached(ctx)
	}

	topics := trends.ExtractTopics(articles, trends.DefaultTopN)
	s.cache.Set(articles, topics)

	if s.cfg.ExportPath != "" && len(articles) > 0 {
		if err := export.WriteSnapshot(s.cfg.ExportPath, articles); err != nil {
			log.Error().Err(err).Str("path", s.cfg.ExportPath).Msg("Snapshot export failed")
		}
	}

	return len(articles), nil
}

// refreshLoop keeps the snapshot warm until ctx is canceled.
func (s *Server) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.RefreshNow(ctx); err != nil && !errors.Is(err, aggregate.ErrRefreshInProgress) {
				log.Error().Err(err).Msg("Scheduled refresh failed")
			}
		case <-ctx.Done():
			return
		}
	}
}

// Run starts the refresh loop and the HTTP server, blocking until a
// shutdown signal arrives.
func (s *Server) Run(logger zerolog.Logger) error {
	logger = logger.With().Str("service", "news-api").Logger()

	loopCtx, cancelLoop := context.WithCancel(context.Background())
	defer cancelLoop()

	// Warm the snapshot before accepting traffic; a failed first run is
	// not fatal, the loop retries on the next tick.
	if _, err := s.RefreshNow(loopCtx); err != nil {
		logger.Error().Err(err).Msg("Initial refresh failed")
	}
	go s.refreshLoop(loopCtx)

	handler := api.NewNewsHandler(s.cache, s.svc.Sources(), s)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/news", handler.GetNews)
	mux.HandleFunc("GET /api/trending", handler.GetTrending)
	mux.HandleFunc("GET /api/sources", handler.GetSources)
	mux.HandleFunc("GET /api/sources/export", exportSourcesHandler(s.svc.Sources()))
	mux.HandleFunc("GET /api/categories", handler.GetCategories)
	mux.HandleFunc("GET /api/countries", handler.GetCountries)
	mux.HandleFunc("POST /api/refresh", handler.Refresh)
	mux.HandleFunc("GET /api/health", handler.Health)

	// Set up middleware chain for logging and request tracking
	h := hlog.NewHandler(logger)(mux)
	h = hlog.MethodHandler("method")(h)
	h = hlog.URLHandler("url")(h)
	h = hlog.RemoteAddrHandler("remote_addr")(h)
	h = hlog.UserAgentHandler("user_agent")(h)
	h = hlog.RequestIDHandler("req_id", "Request-Id")(h)
	h = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		idReq, _ := hlog.IDFromRequest(r)

		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Str("req_id", idReq.String()).
			Msg("HTTP Request")
	})(h)

	if s.cfg.APIKey != "" {
		h = apiKeyMiddleware(s.cfg.APIKey)(h)
		logger.Info().Msg("API key authentication enabled")
	} else {
		logger.Info().Msg("API key authentication disabled")
	}

	httpServer := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("address", s.cfg.ListenAddr).Msg("API Server starting")
		err := httpServer.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)

	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancelLoop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("HTTP server shutdown error")
			if err := httpServer.Close(); err != nil {
				logger.Error().Err(err).Msg("HTTP server force close error")
			}
		} else {
			logger.Info().Msg("HTTP server shutdown complete.")
		}
		if err := <-serverErr; err != nil {
			logger.Error().Err(err).Msg("ListenAndServe error during shutdown")
		}
	}

	logger.Info().Msg("Server exiting.")
	return nil
}

// apiKeyMiddleware checks for the X-API-Key header and validates it
// against the provided key. An empty key allows all requests.
func apiKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			reqApiKey := r.Header.Get("X-API-Key")
			if reqApiKey == "" {
				http.Error(w, "API key required", http.StatusUnauthorized)
				return
			}

			if reqApiKey != apiKey {
				http.Error(w, "Invalid API key", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// exportSourcesHandler returns a handler that exports the source
// registry as a CSV file.
func exportSourcesHandler(sources []models.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := hlog.FromRequest(r)
		log.Debug().Msg("Export sources request received")

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename=sources.csv")

		csvWriter := csv.NewWriter(w)

		header := []string{"id", "name", "feed_url", "country", "language", "category", "credibility"}
		if err := csvWriter.Write(header); err != nil {
			log.Error().Err(err).Msg("Failed to write CSV header")
			http.Error(w, "Error generating CSV", http.StatusInternalServerError)
			return
		}

		for _, src := range sources {
			record := []string{
				src.ID,
				src.Name,
				src.FeedURL,
				src.Country,
				src.Language,
				src.Category,
				strconv.FormatFloat(src.Credibility, 'f', 1, 64),
			}
			if err := csvWriter.Write(record); err != nil {
				log.Error().Err(err).Msg("Failed to write CSV record")
				http.Error(w, "Error generating CSV", http.StatusInternalServerError)
				return
			}
		}

		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil {
			log.Error().Err(err).Msg("Error flushing CSV data")
			return
		}

		log.Info().Int("source_count", len(sources)).Msg("Exported sources as CSV")
	}
}
