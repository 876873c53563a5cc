package record

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"onestat/internal/db"
	"onestat/internal/report"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "onestat.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := database.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	return database
}

func writeReportDir(t *testing.T, values map[int]float64) string {
	t.Helper()
	dir := t.TempDir()
	for seed, v := range values {
		name := report.Filename("EpidemicRouter", "500,500", seed)
		content := fmt.Sprintf("Message stats for scenario x\nsim_time: 43200.1000\ndelivery_prob: %.4f\noverhead_ratio: 6.0500\n", v)
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}
	// Unrelated files in the same directory must be ignored.
	if err := os.WriteFile(filepath.Join(dir, "EventLogReport.txt"), []byte("ignored\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return dir
}

func TestImport(t *testing.T) {
	t.Run("imports recognized reports with their stats", func(t *testing.T) {
		database := openTestDB(t)
		dir := writeReportDir(t, map[int]float64{1: 0.82, 2: 0.86, 3: 0.90})

		summary, err := Import(database, dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.Imported != 3 || summary.Skipped != 0 {
			t.Fatalf("expected 3 imported, 0 skipped, got %+v", summary)
		}

		scenarios, err := database.ListScenarios("EpidemicRouter")
		if err != nil {
			t.Fatalf("list scenarios: %v", err)
		}
		if len(scenarios) != 3 {
			t.Fatalf("expected 3 scenarios, got %d", len(scenarios))
		}

		samples, err := database.StatSamples("EpidemicRouter", "500,500", "delivery_prob")
		if err != nil {
			t.Fatalf("stat samples: %v", err)
		}
		want := []float64{0.82, 0.86, 0.90}
		if len(samples) != len(want) {
			t.Fatalf("expected %d samples, got %d", len(want), len(samples))
		}
		for i := range want {
			if samples[i] != want[i] {
				t.Fatalf("sample %d: expected %v, got %v", i, want[i], samples[i])
			}
		}
	})

	t.Run("second import skips existing scenarios", func(t *testing.T) {
		database := openTestDB(t)
		dir := writeReportDir(t, map[int]float64{1: 0.82, 2: 0.86})

		if _, err := Import(database, dir); err != nil {
			t.Fatalf("first import: %v", err)
		}
		summary, err := Import(database, dir)
		if err != nil {
			t.Fatalf("second import: %v", err)
		}
		if summary.Imported != 0 || summary.Skipped != 2 {
			t.Fatalf("expected 0 imported, 2 skipped, got %+v", summary)
		}
	})

	t.Run("fails on a missing directory", func(t *testing.T) {
		database := openTestDB(t)
		if _, err := Import(database, filepath.Join(t.TempDir(), "absent")); err == nil {
			t.Fatal("expected error for missing directory")
		}
	})
}
