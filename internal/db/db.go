package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS scenarios (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    router TEXT NOT NULL,
    area TEXT NOT NULL,
    rng_seed INTEGER NOT NULL,
    source_file TEXT NOT NULL,
    imported_at TEXT NOT NULL,
    UNIQUE(router, area, rng_seed)
);
CREATE INDEX IF NOT EXISTS idx_scenarios_router ON scenarios(router);
CREATE INDEX IF NOT EXISTS idx_scenarios_area ON scenarios(area);

CREATE TABLE IF NOT EXISTS stats (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    scenario_id INTEGER NOT NULL REFERENCES scenarios(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    value REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_stats_scenario ON stats(scenario_id);
CREATE INDEX IF NOT EXISTS idx_stats_name ON stats(name);
`

type Scenario struct {
	ID         int64
	Router     string
	Area       string
	RngSeed    int
	SourceFile string
	ImportedAt string
}

type Stat struct {
	ID         int64
	ScenarioID int64
	Name       string
	Value      float64
}

type DB struct {
	*sql.DB
	path string
}

func (db *DB) Path() string {
	return db.path
}

func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := dbPath
	if strings.Contains(dbPath, "?") {
		dsn += "&_pragma=foreign_keys(1)"
	} else {
		dsn += "?_pragma=foreign_keys(1)"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := sqlDB.Exec(schemaSQL); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &DB{DB: sqlDB, path: dbPath}, nil
}

func (db *DB) InsertScenario(s *Scenario) (int64, error) {
	res, err := db.Exec(
		`INSERT INTO scenarios (router, area, rng_seed, source_file, imported_at) VALUES (?, ?, ?, ?, ?)`,
		s.Router, s.Area, s.RngSeed, s.SourceFile, s.ImportedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// InsertStats stores all stats of one scenario in a single transaction.
func (db *DB) InsertStats(scenarioID int64, stats []Stat) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO stats (scenario_id, name, value) VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	for _, st := range stats {
		if _, err := stmt.Exec(scenarioID, st.Name, st.Value); err != nil {
			stmt.Close()
			tx.Rollback()
			return err
		}
	}
	stmt.Close()
	return tx.Commit()
}

func (db *DB) HasScenario(router, area string, rngSeed int) (bool, error) {
	var id int64
	err := db.QueryRow(
		`SELECT id FROM scenarios WHERE router = ? AND area = ? AND rng_seed = ?`,
		router, area, rngSeed,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (db *DB) GetScenario(id int64) (*Scenario, error) {
	s := &Scenario{}
	err := db.QueryRow(
		`SELECT id, router, area, rng_seed, source_file, imported_at FROM scenarios WHERE id = ?`,
		id,
	).Scan(&s.ID, &s.Router, &s.Area, &s.RngSeed, &s.SourceFile, &s.ImportedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListScenarios returns scenarios ordered by router, area and seed. An empty
// router lists everything.
func (db *DB) ListScenarios(router string) ([]Scenario, error) {
	query := `SELECT id, router, area, rng_seed, source_file, imported_at FROM scenarios`
	args := []any{}
	if router != "" {
		query += ` WHERE router = ?`
		args = append(args, router)
	}
	query += ` ORDER BY router, area, rng_seed`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scenarios []Scenario
	for rows.Next() {
		var s Scenario
		if err := rows.Scan(&s.ID, &s.Router, &s.Area, &s.RngSeed, &s.SourceFile, &s.ImportedAt); err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, rows.Err()
}

func (db *DB) StatsForScenario(scenarioID int64) ([]Stat, error) {
	rows, err := db.Query(
		`SELECT id, scenario_id, name, value FROM stats WHERE scenario_id = ? ORDER BY id`,
		scenarioID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []Stat
	for rows.Next() {
		var st Stat
		if err := rows.Scan(&st.ID, &st.ScenarioID, &st.Name, &st.Value); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

func (db *DB) CountStatsForScenario(scenarioID int64) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM stats WHERE scenario_id = ?`, scenarioID).Scan(&count)
	return count, err
}

// StatSamples returns one value per RNG seed for a (router, area, stat)
// triple, ordered by seed so repeated aggregations stay deterministic.
func (db *DB) StatSamples(router, area, stat string) ([]float64, error) {
	rows, err := db.Query(
		`SELECT s.value FROM stats s
		 JOIN scenarios sc ON sc.id = s.scenario_id
		 WHERE sc.router = ? AND sc.area = ? AND s.name = ?
		 ORDER BY sc.rng_seed`,
		router, area, stat,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (db *DB) Routers() ([]string, error) {
	return db.distinct(`SELECT DISTINCT router FROM scenarios ORDER BY router`)
}

// Areas returns the distinct areas recorded for a router, ordered by the
// leading width so "1000,1000" sorts after "500,500".
func (db *DB) Areas(router string) ([]string, error) {
	return db.distinct(
		`SELECT DISTINCT area FROM scenarios WHERE router = ? ORDER BY CAST(area AS INTEGER)`,
		router,
	)
}

func (db *DB) distinct(query string, args ...any) ([]string, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (db *DB) DeleteScenario(id int64) error {
	res, err := db.Exec(`DELETE FROM scenarios WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("scenario %d not found", id)
	}
	return nil
}
