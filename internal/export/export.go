// Package export writes the latest aggregated batch to a JSON snapshot
// file consumed by the web frontend.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"nairobell/aggregator/internal/models"
)

// Snapshot is the on-disk JSON payload shape.
type Snapshot struct {
	Timestamp     time.Time        `json:"timestamp"`
	TotalArticles int              `json:"total_articles"`
	Sources       []string         `json:"sources"`
	Articles      []models.Article `json:"articles"`
}

// WriteSnapshot serializes the batch to path. The file is written to a
// temp sibling and renamed so readers never observe a partial snapshot.
func WriteSnapshot(path string, articles []models.Article) error {
	snapshot := Snapshot{
		Timestamp:     time.Now().UTC(),
		TotalArticles: len(articles),
		Sources:       sourceNames(articles),
		Articles:      articles,
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("failed to create snapshot temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close snapshot temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move snapshot into place: %w", err)
	}

	log.Info().Str("path", path).Int("articles", len(articles)).Msg("Exported snapshot")
	return nil
}

// sourceNames returns the distinct source names present in the batch,
// in first-seen order.
func sourceNames(articles []models.Article) []string {
	seen := make(map[string]bool)
	var names []string
	for _, a := range articles {
		if !seen[a.Source] {
			seen[a.Source] = true
			names = append(names, a.Source)
		}
	}
	return names
}
