package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/claude/rpplanner/internal/catalog"
	_ "modernc.org/sqlite"
)

var _ catalog.Source = (*SQLiteDB)(nil)

// SQLiteDB serves the catalog from a single-file SQLite database.
type SQLiteDB struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the SQLite catalog database at path.
func OpenSQLite(path string) (*SQLiteDB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog db: %w", err)
	}

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS muscle_references (
			position INTEGER NOT NULL,
			name     TEXT PRIMARY KEY,
			mv       REAL,
			mev      REAL NOT NULL,
			mav      TEXT NOT NULL DEFAULT '',
			mrv      REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS exercise_catalog (
			position      INTEGER PRIMARY KEY,
			exercise_name TEXT NOT NULL,
			target_muscle TEXT NOT NULL
		)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating catalog tables: %w", err)
		}
	}

	return &SQLiteDB{db: db}, nil
}

// MuscleReferences returns the muscle table in stored order.
func (s *SQLiteDB) MuscleReferences(ctx context.Context) ([]catalog.MuscleReference, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, mv, mev, mav, mrv FROM muscle_references ORDER BY position ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying muscle references: %w", err)
	}
	defer rows.Close()

	var result []catalog.MuscleReference
	for rows.Next() {
		var m catalog.MuscleReference
		if err := rows.Scan(&m.Name, &m.MV, &m.MEV, &m.MAV, &m.MRV); err != nil {
			return nil, fmt.Errorf("scanning muscle reference: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// ExerciseEntries returns the exercise table in stored order.
func (s *SQLiteDB) ExerciseEntries(ctx context.Context) ([]catalog.ExerciseEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT exercise_name, target_muscle FROM exercise_catalog ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying exercise catalog: %w", err)
	}
	defer rows.Close()

	var result []catalog.ExerciseEntry
	for rows.Next() {
		var e catalog.ExerciseEntry
		if err := rows.Scan(&e.ExerciseName, &e.TargetMuscle); err != nil {
			return nil, fmt.Errorf("scanning exercise entry: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// SeedCatalog fills empty catalog tables from cat in one transaction.
func (s *SQLiteDB) SeedCatalog(ctx context.Context, cat *catalog.Catalog) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM muscle_references`).Scan(&count); err != nil {
		return false, fmt.Errorf("counting muscle references: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	for i, m := range cat.MuscleReferences() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO muscle_references (position, name, mv, mev, mav, mrv) VALUES (?, ?, ?, ?, ?, ?)`,
			i, m.Name, m.MV, m.MEV, m.MAV, m.MRV,
		); err != nil {
			return false, fmt.Errorf("inserting muscle %q: %w", m.Name, err)
		}
	}
	for i, e := range cat.Exercises() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO exercise_catalog (position, exercise_name, target_muscle) VALUES (?, ?, ?)`,
			i, e.ExerciseName, e.TargetMuscle,
		); err != nil {
			return false, fmt.Errorf("inserting exercise %q: %w", e.ExerciseName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing seed: %w", err)
	}
	return true, nil
}

// Close closes the catalog database.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
