package stats

import (
	"math"

	"github.com/2beens/calorietracker/internal/ledger"
	"github.com/2beens/calorietracker/pkg"
)

// Statistics summarizes a user's prediction history. Values are computed from
// the already rounded record calories; Rounded gives the presentation form.
type Statistics struct {
	TotalPredictions int     `json:"total_predictions"`
	TotalCalories    float64 `json:"total_calories"`
	AvgCalories      float64 `json:"avg_calories"`
	MaxCalories      float64 `json:"max_calories"`
	MinCalories      float64 `json:"min_calories"`
	TotalDuration    float64 `json:"total_duration"`
	AvgDuration      float64 `json:"avg_duration"`
}

func (s Statistics) Rounded() Statistics {
	return Statistics{
		TotalPredictions: s.TotalPredictions,
		TotalCalories:    pkg.Round(s.TotalCalories, 2),
		AvgCalories:      pkg.Round(s.AvgCalories, 2),
		MaxCalories:      pkg.Round(s.MaxCalories, 2),
		MinCalories:      pkg.Round(s.MinCalories, 2),
		TotalDuration:    pkg.Round(s.TotalDuration, 2),
		AvgDuration:      pkg.Round(s.AvgDuration, 2),
	}
}

// Summarize computes the statistics of a history snapshot. An empty history
// gives all zeros.
func Summarize(history []ledger.Record) Statistics {
	var acc Accumulator
	for _, rec := range history {
		acc.Add(rec)
	}
	return acc.Statistics()
}

// Accumulator builds Statistics incrementally. The zero value is ready to use.
type Accumulator struct {
	count         int
	totalCalories float64
	maxCalories   float64
	minCalories   float64
	totalDuration float64
}

func (a *Accumulator) Add(rec ledger.Record) {
	if a.count == 0 {
		a.maxCalories = rec.CaloriesBurnt
		a.minCalories = rec.CaloriesBurnt
	} else {
		a.maxCalories = math.Max(a.maxCalories, rec.CaloriesBurnt)
		a.minCalories = math.Min(a.minCalories, rec.CaloriesBurnt)
	}
	a.count++
	a.totalCalories += rec.CaloriesBurnt
	a.totalDuration += rec.Duration
}

func (a *Accumulator) Statistics() Statistics {
	if a.count == 0 {
		return Statistics{}
	}
	return Statistics{
		TotalPredictions: a.count,
		TotalCalories:    a.totalCalories,
		AvgCalories:      a.totalCalories / float64(a.count),
		MaxCalories:      a.maxCalories,
		MinCalories:      a.minCalories,
		TotalDuration:    a.totalDuration,
		AvgDuration:      a.totalDuration / float64(a.count),
	}
}
