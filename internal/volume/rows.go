package volume

import "github.com/claude/rpplanner/internal/plan"

// RowVolume is one exercise row with its weekly contribution and the share
// of the muscle's MEV and MRV that row alone covers.
type RowVolume struct {
	plan.ExerciseRow
	WeeklySets int      `json:"weekly_sets"`
	PercentMEV *float64 `json:"percent_mev"`
	PercentMRV *float64 `json:"percent_mrv"`
}

// RowVolumes computes per-row progress for a single workout. Percentages are
// fractions (1.0 = 100%) and nil when the threshold is missing or zero.
func RowVolumes(w plan.Workout, ref Thresholds) []RowVolume {
	out := make([]RowVolume, 0, len(w.Rows))
	for _, r := range w.Rows {
		rv := RowVolume{ExerciseRow: r, WeeklySets: r.Sets * w.SessionsPerWeek}
		if t, ok := ref.Lookup(r.TargetMuscle); ok {
			rv.PercentMEV = ratio(rv.WeeklySets, t.MEV)
			rv.PercentMRV = ratio(rv.WeeklySets, t.MRV)
		}
		out = append(out, rv)
	}
	return out
}

func ratio(sets int, threshold float64) *float64 {
	if threshold == 0 {
		return nil
	}
	v := float64(sets) / threshold
	return &v
}

// MesocycleWeek is one week of the illustrative mesocycle.
type MesocycleWeek struct {
	Week   string `json:"week"`
	Sets   int    `json:"sets"`
	Marker string `json:"marker,omitempty"`
}

// ExampleMesocycle returns a static ramp from MEV to MRV followed by a deload.
func ExampleMesocycle() []MesocycleWeek {
	return []MesocycleWeek{
		{Week: "1", Sets: 12, Marker: "MEV"},
		{Week: "2", Sets: 14},
		{Week: "3", Sets: 16},
		{Week: "4", Sets: 18},
		{Week: "5", Sets: 20, Marker: "MRV"},
		{Week: "6", Sets: 6, Marker: "deload"},
	}
}
