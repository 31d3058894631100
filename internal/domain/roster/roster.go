// Package roster provides read-only views over a scored result set:
// ordering, lookup and the fighters board. Views never modify their input.
package roster

import (
	"cmp"
	"slices"
	"strings"

	"github.com/okian/dkp/internal/domain/scoring"
)

// DefaultFighterMinPower is the starting power a governor needs to be
// listed on the fighters board.
const DefaultFighterMinPower = 20_000_000

// Direction orders a sort.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection maps user input to a Direction; anything but "asc" is Desc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Asc)) {
		return Asc
	}
	return Desc
}

// Column names a sortable field.
type Column string

// Sortable columns.
const (
	ColName            Column = "name"
	ColID              Column = "id"
	ColStartPower      Column = "start_power"
	ColPowerDelta      Column = "power_delta"
	ColTroopPowerDelta Column = "troop_power_delta"
	ColT1              Column = "t1"
	ColT2              Column = "t2"
	ColT3              Column = "t3"
	ColT4              Column = "t4"
	ColT5              Column = "t5"
	ColT4T5            Column = "t4t5"
	ColDeads           Column = "deads"
	ColKillPoints      Column = "kill_points_delta"
	ColKillScore       Column = "kill_score"
	ColDKP             Column = "dkp"
	ColTargetDKP       Column = "target_dkp"
	ColCompletion      Column = "completion"
)

var numeric = map[Column]func(scoring.Entity) float64{
	ColStartPower:      func(e scoring.Entity) float64 { return float64(e.StartPower) },
	ColPowerDelta:      func(e scoring.Entity) float64 { return float64(e.PowerDelta) },
	ColTroopPowerDelta: func(e scoring.Entity) float64 { return float64(e.TroopPowerDelta) },
	ColT1:              func(e scoring.Entity) float64 { return float64(e.T1) },
	ColT2:              func(e scoring.Entity) float64 { return float64(e.T2) },
	ColT3:              func(e scoring.Entity) float64 { return float64(e.T3) },
	ColT4:              func(e scoring.Entity) float64 { return float64(e.T4) },
	ColT5:              func(e scoring.Entity) float64 { return float64(e.T5) },
	ColT4T5:            func(e scoring.Entity) float64 { return float64(e.T4T5) },
	ColDeads:           func(e scoring.Entity) float64 { return float64(e.Deads) },
	ColKillPoints:      func(e scoring.Entity) float64 { return float64(e.KillPointsDelta) },
	ColKillScore:       func(e scoring.Entity) float64 { return e.KillScore },
	ColDKP:             func(e scoring.Entity) float64 { return e.DKP },
	ColTargetDKP:       func(e scoring.Entity) float64 { return e.TargetDKP },
	ColCompletion:      func(e scoring.Entity) float64 { return e.Completion },
}

// Known reports whether c is a sortable column.
func Known(c Column) bool {
	if c == ColName || c == ColID {
		return true
	}
	_, ok := numeric[c]
	return ok
}

// Sort returns a stably sorted copy. Names compare case-insensitively.
// An unknown column sorts by completion, highest first.
func Sort(entities []scoring.Entity, col Column, dir Direction) []scoring.Entity {
	out := slices.Clone(entities)
	if !Known(col) {
		col, dir = ColCompletion, Desc
	}

	var less func(a, b scoring.Entity) int
	switch col {
	case ColName:
		less = func(a, b scoring.Entity) int {
			return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	case ColID:
		less = func(a, b scoring.Entity) int { return cmp.Compare(a.ID, b.ID) }
	default:
		key := numeric[col]
		less = func(a, b scoring.Entity) int { return cmp.Compare(key(a), key(b)) }
	}
	if dir == Desc {
		asc := less
		less = func(a, b scoring.Entity) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, less)
	return out
}

// Search keeps governors whose name contains q (case-insensitive) or whose
// ID starts with q. A blank query keeps everyone.
func Search(entities []scoring.Entity, q string) []scoring.Entity {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return slices.Clone(entities)
	}
	out := make([]scoring.Entity, 0, len(entities))
	for _, e := range entities {
		if strings.Contains(strings.ToLower(e.Name), q) || strings.HasPrefix(strings.ToLower(e.ID), q) {
			out = append(out, e)
		}
	}
	return out
}

// Ranked is a governor with its 1-based board position.
type Ranked struct {
	Position int            `json:"position"`
	Entity   scoring.Entity `json:"entity"`
}

// Fighters lists governors that scored kills and started with at least
// minPower, best completion first. A non-positive minPower uses the default.
func Fighters(entities []scoring.Entity, minPower int64) []Ranked {
	if minPower <= 0 {
		minPower = DefaultFighterMinPower
	}
	picked := make([]scoring.Entity, 0, len(entities))
	for _, e := range entities {
		if e.KillScore > 0 && e.StartPower >= minPower {
			picked = append(picked, e)
		}
	}
	picked = Sort(picked, ColCompletion, Desc)

	out := make([]Ranked, len(picked))
	for i, e := range picked {
		out[i] = Ranked{Position: i + 1, Entity: e}
	}
	return out
}
