package storage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/claude/rpplanner/internal/catalog"
	"github.com/claude/rpplanner/internal/config"
	"github.com/google/go-cmp/cmp"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestSQLiteSeedAndLoad verifies an empty SQLite catalog is seeded once and
// reads back identical to the builtin tables, in order.
func TestSQLiteSeedAndLoad(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "catalog.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer db.Close()

	builtin, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}

	seeded, err := db.SeedCatalog(ctx, builtin)
	if err != nil || !seeded {
		t.Fatalf("first seed = %v, %v; want true, nil", seeded, err)
	}
	seeded, err = db.SeedCatalog(ctx, builtin)
	if err != nil || seeded {
		t.Fatalf("second seed = %v, %v; want false, nil", seeded, err)
	}

	got, err := catalog.Load(ctx, db)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(builtin.MuscleReferences(), got.MuscleReferences()); diff != "" {
		t.Errorf("muscles (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(builtin.Exercises(), got.Exercises()); diff != "" {
		t.Errorf("exercises (-want +got):\n%s", diff)
	}
	if back, _ := got.Lookup("Back"); back.MV == nil || back.MAV != "14-22" {
		t.Errorf("Back = %+v, want stored mv and mav", back)
	}
}

// TestSQLiteRejectsBadRows verifies malformed stored thresholds reject the whole catalog.
func TestSQLiteRejectsBadRows(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if _, err := db.db.Exec(`INSERT INTO muscle_references (position, name, mev, mrv) VALUES (0, 'Chest', 20, 8)`); err != nil {
		t.Fatal(err)
	}
	if _, err := catalog.Load(ctx, db); err == nil {
		t.Fatal("expected load error for mrv below mev")
	}
}

// TestLoadCatalogSources verifies dispatch on catalog.source for the
// sources that need no external service.
func TestLoadCatalogSources(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "catalog.yaml")
	doc := "muscles:\n  - name: Chest\n    mev: 8\n    mrv: 22\n"
	if err := os.WriteFile(yamlPath, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		cfg         config.Config
		wantMuscles int
	}{
		{"builtin", config.Config{Catalog: config.CatalogConfig{Source: config.CatalogBuiltin}}, 14},
		{"file", config.Config{Catalog: config.CatalogConfig{Source: config.CatalogFile, Path: yamlPath}}, 1},
		{"sqlite", config.Config{
			Catalog: config.CatalogConfig{Source: config.CatalogSQLite},
			SQLite:  config.SQLiteConfig{Path: filepath.Join(dir, "catalog.db")},
		}, 14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, err := LoadCatalog(context.Background(), &tt.cfg, discardLogger())
			if err != nil {
				t.Fatalf("LoadCatalog: %v", err)
			}
			if got := len(cat.Muscles()); got != tt.wantMuscles {
				t.Errorf("muscles = %d, want %d", got, tt.wantMuscles)
			}
		})
	}
}

// TestPostgresCatalog exercises migrations, seeding and loading against a
// real database. Set RPPLANNER_TEST_DSN to run it.
func TestPostgresCatalog(t *testing.T) {
	dsn := os.Getenv("RPPLANNER_TEST_DSN")
	if dsn == "" {
		t.Skip("RPPLANNER_TEST_DSN not set")
	}
	ctx := context.Background()

	if err := RunMigrations(dsn, "../../migrations"); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	db, err := New(ctx, dsn)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"exercise_catalog", "muscle_references"} {
		if _, err := db.Pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			t.Fatal(err)
		}
	}
	builtin, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	if seeded, err := db.SeedCatalog(ctx, builtin); err != nil || !seeded {
		t.Fatalf("SeedCatalog = %v, %v", seeded, err)
	}

	got, err := catalog.Load(ctx, db)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(builtin.Muscles(), got.Muscles()); diff != "" {
		t.Errorf("muscle order (-want +got):\n%s", diff)
	}
}
