// Package catalog holds the read-only reference data the planner validates
// and classifies against: per-muscle volume landmarks and the list of known
// exercises with their target muscle.
package catalog

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"go.uber.org/multierr"
)

// MuscleReference holds the weekly volume landmarks for one muscle group.
// MV (maintenance volume) and MAV (adaptive range, e.g. "14-22") are shown
// with the reference table but never used for classification.
type MuscleReference struct {
	Name string   `json:"name"`
	MV   *float64 `json:"mv,omitempty"`
	MEV  float64  `json:"mev"`
	MAV  string   `json:"mav,omitempty"`
	MRV  float64  `json:"mrv"`
}

// ExerciseEntry maps a known exercise to the muscle it mainly trains.
type ExerciseEntry struct {
	ExerciseName string `json:"exercise_name"`
	TargetMuscle string `json:"target_muscle"`
}

// LoadError reports malformed reference data. The whole catalog is rejected.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return "catalog load: " + e.Err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Source supplies raw reference tables, e.g. a database or a file.
type Source interface {
	MuscleReferences(ctx context.Context) ([]MuscleReference, error)
	ExerciseEntries(ctx context.Context) ([]ExerciseEntry, error)
}

// Catalog is immutable after construction and safe for concurrent reads.
type Catalog struct {
	muscles   []MuscleReference
	byName    map[string]int
	exercises []ExerciseEntry
	targets   map[string]string
}

// New validates the tables and builds a Catalog. Any problem rejects the
// entire input with a *LoadError listing every offending entry.
func New(muscles []MuscleReference, exercises []ExerciseEntry) (*Catalog, error) {
	c := &Catalog{
		muscles:   slices.Clone(muscles),
		byName:    make(map[string]int, len(muscles)),
		exercises: slices.Clone(exercises),
		targets:   make(map[string]string, len(exercises)),
	}

	var errs error
	for i, m := range muscles {
		switch {
		case strings.TrimSpace(m.Name) == "":
			errs = multierr.Append(errs, fmt.Errorf("muscle %d: name is required", i))
			continue
		case math.IsNaN(m.MEV) || math.IsNaN(m.MRV):
			errs = multierr.Append(errs, fmt.Errorf("muscle %q: thresholds must be numbers", m.Name))
		case m.MEV < 0:
			errs = multierr.Append(errs, fmt.Errorf("muscle %q: mev %v is negative", m.Name, m.MEV))
		case m.MRV < m.MEV:
			errs = multierr.Append(errs, fmt.Errorf("muscle %q: mrv %v is below mev %v", m.Name, m.MRV, m.MEV))
		case m.MV != nil && (math.IsNaN(*m.MV) || *m.MV < 0):
			errs = multierr.Append(errs, fmt.Errorf("muscle %q: mv %v is invalid", m.Name, *m.MV))
		}
		if _, dup := c.byName[m.Name]; dup {
			errs = multierr.Append(errs, fmt.Errorf("muscle %q: duplicate name", m.Name))
			continue
		}
		c.byName[m.Name] = i
	}

	for i, e := range exercises {
		switch {
		case strings.TrimSpace(e.ExerciseName) == "":
			errs = multierr.Append(errs, fmt.Errorf("exercise %d: name is required", i))
			continue
		case strings.TrimSpace(e.TargetMuscle) == "":
			errs = multierr.Append(errs, fmt.Errorf("exercise %q: target muscle is required", e.ExerciseName))
			continue
		}
		if _, ok := c.byName[e.TargetMuscle]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("exercise %q: unknown target muscle %q", e.ExerciseName, e.TargetMuscle))
			continue
		}
		// Names are not required to be unique; the first entry wins for autofill.
		if _, seen := c.targets[e.ExerciseName]; !seen {
			c.targets[e.ExerciseName] = e.TargetMuscle
		}
	}

	if errs != nil {
		return nil, &LoadError{Err: errs}
	}
	return c, nil
}

// Load reads both tables from src and builds a Catalog.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	muscles, err := src.MuscleReferences(ctx)
	if err != nil {
		return nil, &LoadError{Err: fmt.Errorf("reading muscle references: %w", err)}
	}
	exercises, err := src.ExerciseEntries(ctx)
	if err != nil {
		return nil, &LoadError{Err: fmt.Errorf("reading exercise entries: %w", err)}
	}
	return New(muscles, exercises)
}

// Lookup returns the thresholds for a muscle. Matching is exact and case-sensitive.
func (c *Catalog) Lookup(muscle string) (MuscleReference, bool) {
	i, ok := c.byName[muscle]
	if !ok {
		return MuscleReference{}, false
	}
	return c.muscles[i], true
}

// HasMuscle reports whether muscle is a catalog key.
func (c *Catalog) HasMuscle(muscle string) bool {
	_, ok := c.byName[muscle]
	return ok
}

// Muscles returns muscle names in catalog order.
func (c *Catalog) Muscles() []string {
	names := make([]string, len(c.muscles))
	for i, m := range c.muscles {
		names[i] = m.Name
	}
	return names
}

// MuscleReferences returns a copy of the muscle table in catalog order.
func (c *Catalog) MuscleReferences() []MuscleReference {
	return slices.Clone(c.muscles)
}

// Exercises returns a copy of the exercise table in catalog order.
func (c *Catalog) Exercises() []ExerciseEntry {
	return slices.Clone(c.exercises)
}

// TargetFor returns the catalog target muscle for an exercise name.
func (c *Catalog) TargetFor(exercise string) (string, bool) {
	m, ok := c.targets[exercise]
	return m, ok
}
