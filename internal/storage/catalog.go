package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/claude/rpplanner/internal/catalog"
)

var _ catalog.Source = (*DB)(nil)

// MuscleReferences returns the muscle table in stored order.
func (db *DB) MuscleReferences(ctx context.Context) ([]catalog.MuscleReference, error) {
	rows, err := db.Pool.Query(ctx,
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
func (db *DB) ExerciseEntries(ctx context.Context) ([]catalog.ExerciseEntry, error) {
	rows, err := db.Pool.Query(ctx,
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
// It reports whether anything was written; populated tables are left alone.
func (db *DB) SeedCatalog(ctx context.Context, cat *catalog.Catalog) (seeded bool, err error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("rolling back seed: %w: %w", rollbackErr, err)
			}
			return
		}
		if err = tx.Commit(ctx); err != nil {
			err = fmt.Errorf("committing seed: %w", err)
		}
	}()

	var count int
	if err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM muscle_references`).Scan(&count); err != nil {
		return false, fmt.Errorf("counting muscle references: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	muscles := cat.MuscleReferences()
	query := `INSERT INTO muscle_references (position, name, mv, mev, mav, mrv) VALUES `
	args := make([]any, 0, len(muscles)*6)
	values := make([]string, 0, len(muscles))
	for i, m := range muscles {
		base := i * 6
		values = append(values, fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6))
		args = append(args, i, m.Name, m.MV, m.MEV, m.MAV, m.MRV)
	}
	if _, err = tx.Exec(ctx, query+strings.Join(values, ","), args...); err != nil {
		return false, fmt.Errorf("inserting muscle references: %w", err)
	}

	exercises := cat.Exercises()
	if len(exercises) == 0 {
		return true, nil
	}
	query = `INSERT INTO exercise_catalog (position, exercise_name, target_muscle) VALUES `
	args = make([]any, 0, len(exercises)*3)
	values = make([]string, 0, len(exercises))
	for i, e := range exercises {
		base := i * 3
		values = append(values, fmt.Sprintf("($%d,$%d,$%d)", base+1, base+2, base+3))
		args = append(args, i, e.ExerciseName, e.TargetMuscle)
	}
	if _, err = tx.Exec(ctx, query+strings.Join(values, ","), args...); err != nil {
		return false, fmt.Errorf("inserting exercise catalog: %w", err)
	}
	return true, nil
}
