// Package record imports simulator report files into the local database.
package record

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"onestat/internal/db"
	"onestat/internal/report"
)

// Summary describes one Import pass.
type Summary struct {
	Imported int
	Skipped  int
}

// Import scans dir for files matching the report naming convention and loads
// each new scenario with all of its stats. Scenarios already present in the
// database are skipped. A recognized file that fails to parse aborts the
// import; anything inserted for that file is rolled back via DeleteScenario.
func Import(database *db.DB, dir string) (Summary, error) {
	var summary Summary

	entries, err := os.ReadDir(dir)
	if err != nil {
		return summary, fmt.Errorf("read dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		sc, ok := report.ParseFilename(name)
		if !ok {
			continue
		}

		exists, err := database.HasScenario(sc.Router, sc.Area, sc.RngSeed)
		if err != nil {
			return summary, fmt.Errorf("check scenario %s: %w", name, err)
		}
		if exists {
			summary.Skipped++
			continue
		}

		if err := importFile(database, filepath.Join(dir, name), sc); err != nil {
			return summary, err
		}
		summary.Imported++
	}

	return summary, nil
}

func importFile(database *db.DB, path string, sc report.Scenario) error {
	stats, err := report.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	scenarioID, err := database.InsertScenario(&db.Scenario{
		Router:     sc.Router,
		Area:       sc.Area,
		RngSeed:    sc.RngSeed,
		SourceFile: filepath.Base(path),
		ImportedAt: time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("insert scenario %s: %w", filepath.Base(path), err)
	}

	rows := make([]db.Stat, 0, len(stats))
	for _, st := range stats {
		rows = append(rows, db.Stat{Name: st.Name, Value: st.Value})
	}
	if err := database.InsertStats(scenarioID, rows); err != nil {
		_ = database.DeleteScenario(scenarioID)
		return fmt.Errorf("insert stats for %s: %w", filepath.Base(path), err)
	}

	return nil
}
