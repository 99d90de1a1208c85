package volume

import (
	"github.com/claude/rpplanner/internal/catalog"
	"github.com/claude/rpplanner/internal/plan"
)

// Thresholds is the catalog view the aggregator needs.
type Thresholds interface {
	Lookup(muscle string) (catalog.MuscleReference, bool)
	Muscles() []string
}

// WorkoutSource supplies workouts in display order. *plan.Store satisfies it.
type WorkoutSource interface {
	Workouts() []plan.Workout
}

var _ WorkoutSource = (*plan.Store)(nil)

// MuscleVolume is one row of the weekly volume report. MEV and MRV are nil
// when the muscle is not in the catalog.
type MuscleVolume struct {
	TargetMuscle string   `json:"target_muscle"`
	WeeklySets   int      `json:"weekly_sets"`
	MEV          *float64 `json:"mev"`
	MRV          *float64 `json:"mrv"`
	Status       Status   `json:"status"`
}

// Unconstrained reports whether the status fell back because thresholds are missing.
func (m MuscleVolume) Unconstrained() bool {
	return m.MEV == nil || m.MRV == nil
}

// ComputeReport sums sets x sessions per week for every target muscle.
//
// Without includeAllMuscles, rows appear in order of first appearance across
// workouts and rows. With it, every catalog muscle is listed in catalog order
// (zero when untrained), followed by trained muscles the catalog lacks.
// The result depends only on its inputs.
func ComputeReport(src WorkoutSource, ref Thresholds, includeAllMuscles bool) []MuscleVolume {
	totals := make(map[string]int)
	var seen []string
	for _, w := range src.Workouts() {
		for _, r := range w.Rows {
			if _, ok := totals[r.TargetMuscle]; !ok {
				seen = append(seen, r.TargetMuscle)
			}
			totals[r.TargetMuscle] += r.Sets * w.SessionsPerWeek
		}
	}

	order := seen
	if includeAllMuscles {
		order = make([]string, 0, len(seen))
		listed := make(map[string]bool)
		for _, m := range ref.Muscles() {
			order = append(order, m)
			listed[m] = true
		}
		for _, m := range seen {
			if !listed[m] {
				order = append(order, m)
			}
		}
	}

	report := make([]MuscleVolume, 0, len(order))
	for _, m := range order {
		report = append(report, newMuscleVolume(m, totals[m], ref))
	}
	return report
}

func newMuscleVolume(muscle string, weekly int, ref Thresholds) MuscleVolume {
	mv := MuscleVolume{TargetMuscle: muscle, WeeklySets: weekly}
	if t, ok := ref.Lookup(muscle); ok {
		mev, mrv := t.MEV, t.MRV
		mv.MEV, mv.MRV = &mev, &mrv
	}
	mv.Status = Classify(float64(weekly), mv.MEV, mv.MRV)
	return mv
}
