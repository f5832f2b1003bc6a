package domain

import (
	"math"
	"time"
)

// Metrics are derived counters, always recomputed from the task list and
// never mutated independently.
type Metrics struct {
	TotalTasks        int `json:"totalTasks"`
	CompletedToday    int `json:"completedToday"`
	ProductivityScore int `json:"productivityScore"`
}

// ComputeMetrics derives metrics from the current task list. It is a pure
// function of its inputs, so calling it twice with the same arguments yields
// identical results.
func ComputeMetrics(tasks []*Task, now time.Time) Metrics {
	var done, active, completedToday int
	for _, t := range tasks {
		if t.IsDone() {
			done++
			if t.CompletedAt != nil && sameDay(*t.CompletedAt, now) {
				completedToday++
			}
		} else {
			active++
		}
	}

	score := 0
	if done+active > 0 {
		score = int(math.Round(float64(done) / float64(done+active) * 100))
		if score > 100 {
			score = 100
		}
	}

	return Metrics{
		TotalTasks:        len(tasks),
		CompletedToday:    completedToday,
		ProductivityScore: score,
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
