// Package volume turns workouts into weekly per-muscle set counts and
// classifies them against the catalog's volume landmarks.
package volume

// Status is the training status of a muscle for one week.
type Status string

const (
	Undertraining Status = "Undertraining"
	Productive    Status = "Productive"
	Overtraining  Status = "Overtraining"
)

// Classify compares weekly sets with MEV and MRV. Both bounds are inclusive.
// A missing threshold means the muscle is unconstrained, reported as Productive.
func Classify(weeklySets float64, mev, mrv *float64) Status {
	if mev == nil || mrv == nil {
		return Productive
	}
	switch {
	case weeklySets < *mev:
		return Undertraining
	case weeklySets > *mrv:
		return Overtraining
	default:
		return Productive
	}
}
