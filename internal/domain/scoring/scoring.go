// Package scoring diffs two snapshots and computes DKP for every governor.
package scoring

import (
	"math"

	"github.com/okian/dkp/internal/domain/snapshot"
)

// unknownName labels governors whose exports carry no display name.
const unknownName = "Unknown"

// Entity is the scored result for one governor.
// Kill and death deltas are floored at zero; power deltas are signed.
type Entity struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	StartPower      int64 `json:"start_power"`
	PowerDelta      int64 `json:"power_delta"`
	TroopPowerDelta int64 `json:"troop_power_delta"`

	T1    int64 `json:"t1"`
	T2    int64 `json:"t2"`
	T3    int64 `json:"t3"`
	T4    int64 `json:"t4"`
	T5    int64 `json:"t5"`
	T4T5  int64 `json:"t4t5"`
	Deads int64 `json:"deads"`

	// KillPointsDelta is the scanner's own kill point counter diff.
	KillPointsDelta int64 `json:"kill_points_delta"`

	KillScore  float64 `json:"kill_score"`
	DKP        float64 `json:"dkp"`
	TargetDKP  float64 `json:"target_dkp"`
	Completion float64 `json:"completion"`
}

// LowTierKills returns the combined T1..T3 kills.
func (e Entity) LowTierKills() int64 {
	return e.T1 + e.T2 + e.T3
}

// Compute joins start and end by governor ID and scores every start record.
//
// Output order follows start. A governor missing from end is scored against
// all-zero end values. Start records without an ID are dropped. When end
// repeats an ID the later row is used. Inputs are not modified.
func Compute(start, end snapshot.Snapshot, cfg Config) []Entity {
	cfg = cfg.Sanitize()
	endByID := end.Index()

	out := make([]Entity, 0, len(start))
	for _, sr := range start {
		if sr.ID == "" {
			continue
		}
		er, found := endByID[sr.ID]
		out = append(out, score(sr, er, found, cfg))
	}
	return out
}

func score(sr, er snapshot.Record, found bool, cfg Config) Entity {
	from := sr.Decode()
	var to snapshot.Stats
	if found {
		to = er.Decode()
	}

	e := Entity{
		ID:              sr.ID,
		Name:            displayName(sr, er, found),
		StartPower:      from.Power,
		PowerDelta:      delta(from.Power, to.Power),
		TroopPowerDelta: delta(from.TroopPower, to.TroopPower),
		T1:              gain(from.Kills[snapshot.T1], to.Kills[snapshot.T1]),
		T2:              gain(from.Kills[snapshot.T2], to.Kills[snapshot.T2]),
		T3:              gain(from.Kills[snapshot.T3], to.Kills[snapshot.T3]),
		T4:              gain(from.Kills[snapshot.T4], to.Kills[snapshot.T4]),
		T5:              gain(from.Kills[snapshot.T5], to.Kills[snapshot.T5]),
		Deads:           gain(from.Deads, to.Deads),
		KillPointsDelta: delta(from.KillPoints, to.KillPoints),
	}
	e.T4T5 = add(e.T4, e.T5)

	e.KillScore = finite(float64(e.T4)*cfg.T4Mult + float64(e.T5)*cfg.T5Mult)
	e.DKP = finite(float64(e.Deads)*cfg.DeadsMult + e.KillScore)
	e.TargetDKP = finite(float64(e.StartPower) * (cfg.TargetPercent / 100))
	if e.TargetDKP > 0 {
		e.Completion = finite(e.DKP / e.TargetDKP * 100)
	}
	return e
}

// gain is the non-negative growth of a counter between two snapshots.
func gain(from, to int64) int64 {
	if to <= from {
		return 0
	}
	return delta(from, to)
}

// delta is to - from saturated at the int64 bounds.
func delta(from, to int64) int64 {
	d := to - from
	switch {
	case from < 0 && d < to:
		return math.MaxInt64
	case from > 0 && d > to:
		return math.MinInt64
	}
	return d
}

// add is a + b for non-negative counts, saturated at math.MaxInt64.
func add(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// finite maps NaN and ±Inf to zero so extreme weights never leak
// non-numbers into results.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// displayName prefers the latest export's name since governors rename mid-season.
func displayName(sr, er snapshot.Record, found bool) string {
	if found && er.Name != "" {
		return er.Name
	}
	if sr.Name != "" {
		return sr.Name
	}
	return unknownName
}
