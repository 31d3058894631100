// Package compare lines governors or whole kingdoms up metric by metric.
package compare

import (
	"fmt"
	"strings"

	"github.com/okian/dkp/internal/domain/aggregate"
	"github.com/okian/dkp/internal/domain/scoring"
)

// MaxPlayers caps a player comparison.
const MaxPlayers = 3

// Cell is one governor's value for a metric.
type Cell struct {
	Value float64 `json:"value"`
	Best  bool    `json:"best"`
	Worst bool    `json:"worst"`
}

// Row is a metric across all compared governors.
type Row struct {
	Label          string `json:"label"`
	Key            string `json:"key"`
	HigherIsBetter bool   `json:"higher_is_better"`
	Cells          []Cell `json:"cells"`
}

// PlayerComparison is the side-by-side view of up to MaxPlayers governors.
type PlayerComparison struct {
	Players []scoring.Entity `json:"players"`
	Rows    []Row            `json:"rows"`
}

type playerMetric struct {
	label  string
	key    string
	higher bool
	value  func(scoring.Entity) float64
}

var playerMetrics = []playerMetric{
	{"Start Power", "start_power", true, func(e scoring.Entity) float64 { return float64(e.StartPower) }},
	{"Power +/-", "power_delta", true, func(e scoring.Entity) float64 { return float64(e.PowerDelta) }},
	{"Troop Power +/-", "troop_power_delta", true, func(e scoring.Entity) float64 { return float64(e.TroopPowerDelta) }},
	{"Deads", "deads", false, func(e scoring.Entity) float64 { return float64(e.Deads) }},
	{"Kill Score", "kill_score", true, func(e scoring.Entity) float64 { return e.KillScore }},
	{"T4+T5 Kills", "t4t5", true, func(e scoring.Entity) float64 { return float64(e.T4T5) }},
	{"T1-T3 Kills", "t1t3", true, func(e scoring.Entity) float64 { return float64(e.LowTierKills()) }},
	{"Completion %", "completion", true, func(e scoring.Entity) float64 { return e.Completion }},
	{"DKP", "dkp", true, func(e scoring.Entity) float64 { return e.DKP }},
	{"Target DKP", "target_dkp", true, func(e scoring.Entity) float64 { return e.TargetDKP }},
}

// Players compares the governors with the given IDs, in the order asked.
// Duplicate IDs are collapsed.
func Players(entities []scoring.Entity, ids []string) (PlayerComparison, error) {
	ids = uniqueIDs(ids)
	switch {
	case len(ids) == 0:
		return PlayerComparison{}, ErrNoPlayers
	case len(ids) > MaxPlayers:
		return PlayerComparison{}, fmt.Errorf("%w: %d > %d", ErrTooManyPlayers, len(ids), MaxPlayers)
	}

	byID := make(map[string]scoring.Entity, len(entities))
	for _, e := range entities {
		if _, seen := byID[e.ID]; !seen {
			byID[e.ID] = e
		}
	}
	players := make([]scoring.Entity, 0, len(ids))
	for _, id := range ids {
		e, ok := byID[id]
		if !ok {
			return PlayerComparison{}, fmt.Errorf("%w: %s", ErrUnknownPlayer, id)
		}
		players = append(players, e)
	}

	rows := make([]Row, len(playerMetrics))
	for i, m := range playerMetrics {
		values := make([]float64, len(players))
		for j, p := range players {
			values[j] = m.value(p)
		}
		rows[i] = Row{Label: m.label, Key: m.key, HigherIsBetter: m.higher, Cells: mark(values, m.higher)}
	}
	return PlayerComparison{Players: players, Rows: rows}, nil
}

// mark flags the best value and, when the values differ, the worst one.
func mark(values []float64, higherIsBetter bool) []Cell {
	cells := make([]Cell, len(values))
	if len(values) == 0 {
		return cells
	}
	hi, lo := values[0], values[0]
	for _, v := range values[1:] {
		hi = max(hi, v)
		lo = min(lo, v)
	}
	best, worst := hi, lo
	if !higherIsBetter {
		best, worst = lo, hi
	}
	for i, v := range values {
		cells[i].Value = v
		switch {
		case v == best:
			cells[i].Best = true
		case v == worst && len(values) > 1:
			cells[i].Worst = true
		}
	}
	return cells
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Side names the winner of a kingdom metric.
type Side string

// Possible winners.
const (
	SideA Side = "A"
	SideB Side = "B"
	Tie   Side = "tie"
)

// KingdomRow is one metric of a head-to-head.
type KingdomRow struct {
	Label          string  `json:"label"`
	Key            string  `json:"key"`
	HigherIsBetter bool    `json:"higher_is_better"`
	A              float64 `json:"a"`
	B              float64 `json:"b"`
	Winner         Side    `json:"winner"`
}

// KingdomComparison is the head-to-head of two scored result sets.
type KingdomComparison struct {
	A    string       `json:"a"`
	B    string       `json:"b"`
	Rows []KingdomRow `json:"rows"`
}

type kingdomMetric struct {
	label  string
	key    string
	higher bool
	value  func(aggregate.Summary) float64
}

var kingdomMetrics = []kingdomMetric{
	{"# Governors", "count", true, func(s aggregate.Summary) float64 { return float64(s.Count) }},
	{"Starting Power", "start_power", true, func(s aggregate.Summary) float64 { return float64(s.StartPower) }},
	{"Power +/-", "power_delta", true, func(s aggregate.Summary) float64 { return float64(s.PowerDelta) }},
	{"Troop Power +/-", "troop_power_delta", true, func(s aggregate.Summary) float64 { return float64(s.TroopPowerDelta) }},
	{"Total Kill Score", "kill_score", true, func(s aggregate.Summary) float64 { return s.KillScore }},
	{"Total T4", "t4", true, func(s aggregate.Summary) float64 { return float64(s.T4) }},
	{"Total T5", "t5", true, func(s aggregate.Summary) float64 { return float64(s.T5) }},
	{"Total Kills", "t4t5", true, func(s aggregate.Summary) float64 { return float64(s.T4T5) }},
	{"Total Deads", "deads", false, func(s aggregate.Summary) float64 { return float64(s.Deads) }},
	{"Total DKP", "dkp", true, func(s aggregate.Summary) float64 { return s.DKP }},
	{"Avg Completion %", "mean_completion", true, func(s aggregate.Summary) float64 { return s.MeanCompletion }},
}

// Kingdoms compares two summaries labelled nameA and nameB.
func Kingdoms(nameA string, a aggregate.Summary, nameB string, b aggregate.Summary) KingdomComparison {
	rows := make([]KingdomRow, len(kingdomMetrics))
	for i, m := range kingdomMetrics {
		va, vb := m.value(a), m.value(b)
		rows[i] = KingdomRow{
			Label:          m.label,
			Key:            m.key,
			HigherIsBetter: m.higher,
			A:              va,
			B:              vb,
			Winner:         winner(va, vb, m.higher),
		}
	}
	return KingdomComparison{A: nameA, B: nameB, Rows: rows}
}

func winner(a, b float64, higherIsBetter bool) Side {
	switch {
	case a == b:
		return Tie
	case (a > b) == higherIsBetter:
		return SideA
	default:
		return SideB
	}
}
