package session

import (
	"fmt"
	"strconv"

	"github.com/claude/gymbuddy/internal/models"
)

// PR is a new best performance on one exercise within a session window.
type PR struct {
	ExerciseID int
	Weight     float64
	Reps       int
}

// Message renders the human-readable PR line for the given exercise name.
func (p PR) Message(name string) string {
	return fmt.Sprintf("New PR on %s: %skg x %d", name, formatWeight(p.Weight), p.Reps)
}

// Result is the aggregation outcome for one session window.
type Result struct {
	TotalVolume float64
	PRs         []PR
}

// best tracks the top in-window performance for one exercise: the
// maximum weight, and among sets at that weight, the maximum reps. A
// later set at the same weight with equal or fewer reps does not
// overwrite the tracked best.
type best struct {
	weight float64
	reps   int
}

// Aggregate computes total volume and PR detections from a window of
// set-log entries and a map of historical max weight per exercise.
// Exercises absent from history count as a historical max of 0, so the
// first-ever positive-weight set on an exercise is always a PR. A PR
// requires the in-window max weight to be strictly greater than the
// historical max; equal weight with more reps does not qualify.
//
// Pure function of its inputs: same entries and history always produce
// the same result. PRs are ordered by first encounter of the exercise
// while scanning entries.
func Aggregate(entries []models.SetLogRow, history map[int]float64) Result {
	var r Result
	bests := make(map[int]best, len(entries))
	var order []int

	for _, e := range entries {
		r.TotalVolume += e.Weight * float64(e.Reps)

		b, seen := bests[e.ExerciseID]
		if !seen {
			order = append(order, e.ExerciseID)
			bests[e.ExerciseID] = best{weight: e.Weight, reps: e.Reps}
			continue
		}
		if e.Weight > b.weight || (e.Weight == b.weight && e.Reps > b.reps) {
			bests[e.ExerciseID] = best{weight: e.Weight, reps: e.Reps}
		}
	}

	for _, id := range order {
		b := bests[id]
		if b.weight > history[id] {
			r.PRs = append(r.PRs, PR{ExerciseID: id, Weight: b.weight, Reps: b.reps})
		}
	}
	return r
}

// formatWeight renders a weight without trailing zeros (65, not 65.0).
func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
