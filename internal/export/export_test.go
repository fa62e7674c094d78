package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"nairobell/aggregator/internal/models"
)

func TestWriteSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest_news.json")
	articles := []models.Article{
		{ID: "a1", Title: "Kenya election results", Source: "Test Feed", PublishedAt: time.Now().UTC()},
		{ID: "a2", Title: "Ghana cocoa harvest", Source: "Other Feed", PublishedAt: time.Now().UTC()},
		{ID: "a3", Title: "Follow-up story", Source: "Test Feed", PublishedAt: time.Now().UTC()},
	}

	if err := WriteSnapshot(path, articles); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}

	if snapshot.TotalArticles != 3 {
		t.Errorf("TotalArticles = %d, want 3", snapshot.TotalArticles)
	}
	if len(snapshot.Articles) != 3 {
		t.Errorf("Articles length = %d, want 3", len(snapshot.Articles))
	}
	if snapshot.Timestamp.IsZero() {
		t.Error("Timestamp is zero")
	}

	// Distinct source names in first-seen order.
	want := []string{"Test Feed", "Other Feed"}
	if len(snapshot.Sources) != len(want) {
		t.Fatalf("Sources = %v, want %v", snapshot.Sources, want)
	}
	for i := range want {
		if snapshot.Sources[i] != want[i] {
			t.Errorf("Sources[%d] = %q, want %q", i, snapshot.Sources[i], want[i])
		}
	}
}

func TestWriteSnapshotOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest_news.json")

	if err := WriteSnapshot(path, []models.Article{{ID: "a1", Title: "First"}}); err != nil {
		t.Fatalf("first WriteSnapshot() error = %v", err)
	}
	if err := WriteSnapshot(path, []models.Article{{ID: "a2", Title: "Second"}}); err != nil {
		t.Fatalf("second WriteSnapshot() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if len(snapshot.Articles) != 1 || snapshot.Articles[0].ID != "a2" {
		t.Errorf("snapshot was not replaced: %v", snapshot.Articles)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the snapshot", len(entries))
	}
}
