// Package catalog provides SQLite-based persistence for the processing
// catalog: collection runs, the levels converted for each run and the
// clips assembled from them. Uses the pure-Go modernc.org/sqlite driver
// to avoid CGO dependencies.
package catalog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection for the catalog.
type Store struct {
	db *sql.DB
}

// Run represents one data-collection run and its processing state.
type Run struct {
	ID        string
	DataDir   string
	NumLevels int
	CreatedAt time.Time
}

// LevelEntry represents one converted level within a run.
type LevelEntry struct {
	ID        int64
	RunID     string
	LevelNum  int
	LevelSeed int
	NumFrames int
	// Interesting marks levels that pass the clip filter.
	Interesting bool
	CreatedAt   time.Time
}

// ClipEntry represents one assembled video clip.
type ClipEntry struct {
	ID         int64
	RunID      string
	LevelNum   int
	Name       string
	StartFrame int
	EndFrame   int
	CreatedAt  time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("catalog: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("catalog: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("catalog: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			data_dir TEXT NOT NULL,
			num_levels INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS levels (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			level_num INTEGER NOT NULL,
			level_seed INTEGER NOT NULL,
			num_frames INTEGER NOT NULL,
			interesting INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(run_id, level_num)
		);
		CREATE INDEX IF NOT EXISTS idx_levels_run_id ON levels(run_id);

		CREATE TABLE IF NOT EXISTS clips (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			level_num INTEGER NOT NULL,
			name TEXT NOT NULL UNIQUE,
			start_frame INTEGER NOT NULL,
			end_frame INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_clips_run_id ON clips(run_id);
		CREATE INDEX IF NOT EXISTS idx_clips_level ON clips(run_id, level_num);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateRun registers a new collection run and returns its generated ID.
func (s *Store) CreateRun(dataDir string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		"INSERT INTO runs (id, data_dir) VALUES (?, ?)",
		id, dataDir,
	)
	if err != nil {
		return "", fmt.Errorf("catalog: cannot create run: %w", err)
	}
	return id, nil
}

// RunByDataDir finds the run registered for a data directory.
// Returns nil without error when none exists.
func (s *Store) RunByDataDir(dataDir string) (*Run, error) {
	var r Run
	var createdAt any
	err := s.db.QueryRow(
		"SELECT id, data_dir, num_levels, created_at FROM runs WHERE data_dir = ?",
		dataDir,
	).Scan(&r.ID, &r.DataDir, &r.NumLevels, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: cannot query run: %w", err)
	}
	r.CreatedAt = parseTime(createdAt)
	return &r, nil
}

// Runs retrieves all registered runs, newest first.
func (s *Store) Runs() ([]Run, error) {
	rows, err := s.db.Query(
		"SELECT id, data_dir, num_levels, created_at FROM runs ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("catalog: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var createdAt any
		if err := rows.Scan(&r.ID, &r.DataDir, &r.NumLevels, &createdAt); err != nil {
			return nil, fmt.Errorf("catalog: cannot scan row: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: row iteration error: %w", err)
	}

	return runs, nil
}

// RecordLevel upserts one converted level of a run and bumps the run's
// level counter.
func (s *Store) RecordLevel(e LevelEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO levels (run_id, level_num, level_seed, num_frames, interesting)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(run_id, level_num) DO UPDATE SET
		   level_seed = excluded.level_seed,
		   num_frames = excluded.num_frames,
		   interesting = excluded.interesting`,
		e.RunID, e.LevelNum, e.LevelSeed, e.NumFrames, e.Interesting,
	)
	if err != nil {
		return fmt.Errorf("catalog: cannot record level: %w", err)
	}

	_, err = s.db.Exec(
		"UPDATE runs SET num_levels = (SELECT COUNT(*) FROM levels WHERE run_id = ?) WHERE id = ?",
		e.RunID, e.RunID,
	)
	if err != nil {
		return fmt.Errorf("catalog: cannot update run counter: %w", err)
	}
	return nil
}

// Levels retrieves all levels of a run ordered by level number.
func (s *Store) Levels(runID string) ([]LevelEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, level_num, level_seed, num_frames, interesting, created_at
		 FROM levels
		 WHERE run_id = ?
		 ORDER BY level_num`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("catalog: cannot query levels: %w", err)
	}
	defer rows.Close()

	var entries []LevelEntry
	for rows.Next() {
		var e LevelEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.RunID, &e.LevelNum, &e.LevelSeed, &e.NumFrames, &e.Interesting, &createdAt); err != nil {
			return nil, fmt.Errorf("catalog: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: row iteration error: %w", err)
	}

	return entries, nil
}

// RecordClip registers one assembled clip.
// Returns the ID of the inserted record.
func (s *Store) RecordClip(e ClipEntry) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO clips (run_id, level_num, name, start_frame, end_frame)
		 VALUES (?, ?, ?, ?, ?)`,
		e.RunID, e.LevelNum, e.Name, e.StartFrame, e.EndFrame,
	)
	if err != nil {
		return 0, fmt.Errorf("catalog: cannot record clip: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("catalog: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// Clips retrieves all clips of a run ordered by level and start frame.
func (s *Store) Clips(runID string) ([]ClipEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, level_num, name, start_frame, end_frame, created_at
		 FROM clips
		 WHERE run_id = ?
		 ORDER BY level_num, start_frame`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("catalog: cannot query clips: %w", err)
	}
	defer rows.Close()

	var entries []ClipEntry
	for rows.Next() {
		var e ClipEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.RunID, &e.LevelNum, &e.Name, &e.StartFrame, &e.EndFrame, &createdAt); err != nil {
			return nil, fmt.Errorf("catalog: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: row iteration error: %w", err)
	}

	return entries, nil
}

// RunStats contains aggregated statistics for one run.
type RunStats struct {
	RunID            string
	LevelCount       int
	InterestingCount int
	TotalFrames      int64
	AvgFrames        float64
	ClipCount        int
	LastProcessed    time.Time
}

// Stats retrieves aggregated statistics for a run.
func (s *Store) Stats(runID string) (*RunStats, error) {
	stats := &RunStats{RunID: runID}

	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(interesting), 0), COALESCE(SUM(num_frames), 0), COALESCE(AVG(num_frames), 0)
		 FROM levels WHERE run_id = ?`,
		runID,
	).Scan(&stats.LevelCount, &stats.InterestingCount, &stats.TotalFrames, &stats.AvgFrames)
	if err != nil {
		return nil, fmt.Errorf("catalog: cannot get level stats: %w", err)
	}

	err = s.db.QueryRow(
		"SELECT COUNT(*) FROM clips WHERE run_id = ?",
		runID,
	).Scan(&stats.ClipCount)
	if err != nil {
		return nil, fmt.Errorf("catalog: cannot get clip stats: %w", err)
	}

	var lastProcessed any
	err = s.db.QueryRow(
		"SELECT created_at FROM levels WHERE run_id = ? ORDER BY created_at DESC LIMIT 1",
		runID,
	).Scan(&lastProcessed)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("catalog: cannot get last processed: %w", err)
	}
	if err == nil {
		stats.LastProcessed = parseTime(lastProcessed)
	}

	return stats, nil
}

// parseTime handles the driver returning DATETIME columns as either
// time.Time or string.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
