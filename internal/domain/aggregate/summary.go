// Package aggregate derives kingdom-wide figures from scored governors.
package aggregate

import (
	"github.com/okian/dkp/internal/domain/scoring"
	"gonum.org/v1/gonum/stat"
)

// Summary is the kingdom-wide rollup of one scored result set.
type Summary struct {
	Count int `json:"count"`

	StartPower      int64 `json:"start_power"`
	PowerDelta      int64 `json:"power_delta"`
	TroopPowerDelta int64 `json:"troop_power_delta"`

	T4    int64 `json:"t4"`
	T5    int64 `json:"t5"`
	T4T5  int64 `json:"t4t5"`
	Deads int64 `json:"deads"`

	KillScore float64 `json:"kill_score"`
	DKP       float64 `json:"dkp"`

	MeanCompletion float64 `json:"mean_completion"`
}

// Summarize totals the entities. An empty input yields a zero Summary.
func Summarize(entities []scoring.Entity) Summary {
	var s Summary
	if len(entities) == 0 {
		return s
	}

	completion := make([]float64, len(entities))
	for i, e := range entities {
		s.StartPower += e.StartPower
		s.PowerDelta += e.PowerDelta
		s.TroopPowerDelta += e.TroopPowerDelta
		s.T4 += e.T4
		s.T5 += e.T5
		s.T4T5 += e.T4T5
		s.Deads += e.Deads
		s.KillScore += e.KillScore
		s.DKP += e.DKP
		completion[i] = e.Completion
	}
	s.Count = len(entities)
	s.MeanCompletion = stat.Mean(completion, nil)
	return s
}
