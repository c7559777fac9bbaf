package stats

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func monthsAgo(n int) string {
	now := time.Now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return first.AddDate(0, -n, 0).Format("2006-01")
}

func TestStorage(t *testing.T) {
	tempDir := t.TempDir()

	storage, err := NewStorage(tempDir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	t.Run("Record", func(t *testing.T) {
		storage.Record(Delta{Analyses: 1, FetchFailures: 2, LinksFound: 3, ExternalLinks: 1, ImagesFound: 4, ImagesMissingAlt: 2})
		stats := storage.GetCurrentStats()

		if stats.Analyses != 1 {
			t.Errorf("Expected 1 analysis, got %d", stats.Analyses)
		}
		if stats.FetchFailures != 2 {
			t.Errorf("Expected 2 fetch failures, got %d", stats.FetchFailures)
		}
		if stats.LinksFound != 3 {
			t.Errorf("Expected 3 links, got %d", stats.LinksFound)
		}
		if stats.ImagesMissingAlt != 2 {
			t.Errorf("Expected 2 images missing alt, got %d", stats.ImagesMissingAlt)
		}
	})

	t.Run("Persistence", func(t *testing.T) {
		if err := storage.save(); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}

		storage2, err := NewStorage(tempDir)
		if err != nil {
			t.Fatalf("Failed to create second storage: %v", err)
		}
		defer storage2.Shutdown()

		stats := storage2.GetCurrentStats()
		if stats.Analyses != 1 {
			t.Errorf("Expected 1 analysis after reload, got %d", stats.Analyses)
		}
	})

	t.Run("Cleanup", func(t *testing.T) {
		oldMonth := monthsAgo(2)
		storage.mutex.Lock()
		storage.stats[oldMonth] = &MonthlyStats{
			Analyses:    100,
			LastUpdated: time.Now().AddDate(0, -2, 0),
		}
		storage.mutex.Unlock()

		removed := storage.Cleanup(2)

		if _, exists := storage.GetMonthlyStats(oldMonth); exists {
			t.Error("Old stats should have been cleaned up")
		}
		if len(removed) != 1 || removed[0] != oldMonth {
			t.Errorf("Expected %s to be removed, got %v", oldMonth, removed)
		}
		if _, exists := storage.GetMonthlyStats(monthsAgo(0)); !exists {
			t.Error("Current month should be retained")
		}
	})

	t.Run("AllMonths", func(t *testing.T) {
		prev := monthsAgo(1)
		storage.mutex.Lock()
		storage.stats[prev] = &MonthlyStats{Analyses: 5}
		storage.mutex.Unlock()

		months := storage.GetAllMonths()
		if len(months) != 2 || months[1] != prev {
			t.Errorf("Expected newest month first, got %v", months)
		}
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		done := make(chan bool)
		for i := 0; i < 10; i++ {
			go func() {
				for j := 0; j < 100; j++ {
					storage.Record(Delta{Analyses: 1, LinksFound: 1})
					storage.GetCurrentStats()
				}
				done <- true
			}()
		}

		for i := 0; i < 10; i++ {
			<-done
		}

		stats := storage.GetCurrentStats()
		if stats.Analyses != 1001 {
			t.Errorf("Expected 1001 analyses, got %d", stats.Analyses)
		}
		if stats.LinksFound != 1003 {
			t.Errorf("Expected 1003 links, got %d", stats.LinksFound)
		}
	})

	t.Run("Shutdown", func(t *testing.T) {
		if err := storage.Shutdown(); err != nil {
			t.Fatalf("Shutdown failed: %v", err)
		}
		// a second call must not block or panic
		if err := storage.Shutdown(); err != nil {
			t.Fatalf("Second shutdown failed: %v", err)
		}

		info, err := os.Stat(filepath.Join(tempDir, "stats.json"))
		if err != nil {
			t.Fatalf("Failed to stat file: %v", err)
		}
		if info.Size() > 4096 {
			t.Errorf("File size too large: %d bytes", info.Size())
		}
	})
}
