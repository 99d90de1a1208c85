// Command rpplanner-report prints the weekly volume report for a plan file.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/claude/rpplanner/internal/catalog"
	"github.com/claude/rpplanner/internal/plan"
	"github.com/claude/rpplanner/internal/volume"
	"gopkg.in/yaml.v3"
)

type planFile struct {
	Workouts []struct {
		ID              string             `yaml:"id"`
		SessionsPerWeek *int               `yaml:"sessions_per_week"`
		Rows            []plan.ExerciseRow `yaml:"rows"`
	} `yaml:"workouts"`
}

func main() {
	planPath := flag.String("plan", "", "path to plan YAML file (required)")
	catalogPath := flag.String("catalog", "", "catalog YAML file or CSV directory (builtin when empty)")
	all := flag.Bool("all", false, "list every catalog muscle, including untrained ones")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *planPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: rpplanner-report -plan plan.yaml [-catalog catalog.yaml] [-all]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	var (
		cat *catalog.Catalog
		err error
	)
	if *catalogPath != "" {
		cat, err = catalog.LoadFile(*catalogPath)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		log.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}

	f, err := os.Open(*planPath)
	if err != nil {
		log.Error("failed to open plan", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	store, err := loadPlan(f, cat, log)
	if err != nil {
		log.Error("invalid plan", "path", *planPath, "error", err)
		os.Exit(1)
	}

	if err := writeReport(os.Stdout, volume.ComputeReport(store, cat, *all)); err != nil {
		log.Error("failed to write report", "error", err)
		os.Exit(1)
	}
}

// loadPlan decodes a plan file into a fresh store, warning about rows whose
// muscle the catalog does not know.
func loadPlan(r io.Reader, ref plan.Reference, log *slog.Logger) (*plan.Store, error) {
	var pf planFile
	if err := yaml.NewDecoder(r).Decode(&pf); err != nil {
		return nil, fmt.Errorf("decoding plan: %w", err)
	}

	store := plan.NewStore(ref)
	for _, w := range pf.Workouts {
		n := 1
		if w.SessionsPerWeek != nil {
			n = *w.SessionsPerWeek
		}
		unresolved, err := store.CreateWorkout(w.ID, w.Rows, n)
		if err != nil {
			return nil, fmt.Errorf("workout %q: %w", w.ID, err)
		}
		for _, i := range unresolved {
			log.Warn("muscle not in catalog", "workout", w.ID, "row", i, "muscle", w.Rows[i].TargetMuscle)
		}
	}
	return store, nil
}

func writeReport(w io.Writer, rows []volume.MuscleVolume) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MUSCLE\tSETS/WEEK\tMEV\tMRV\tSTATUS")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", r.TargetMuscle, r.WeeklySets, threshold(r.MEV), threshold(r.MRV), r.Status)
	}
	return tw.Flush()
}

func threshold(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}
