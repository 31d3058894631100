package aggregate

import (
	"github.com/okian/dkp/internal/domain/scoring"
	"gonum.org/v1/gonum/stat"
)

// Quadrant is a behavioural class derived from kills and deaths.
type Quadrant string

// Quadrants in precedence order.
const (
	Hero    Quadrant = "Hero"
	Warrior Quadrant = "Warrior"
	Feeder  Quadrant = "Feeder"
	Slacker Quadrant = "Slacker"
)

var quadrantColors = map[Quadrant]string{
	Hero:    "#3b82f6",
	Warrior: "#22c55e",
	Feeder:  "#ef4444",
	Slacker: "#6b7280",
}

// Color returns the display color for q.
func (q Quadrant) Color() string {
	return quadrantColors[q]
}

// Quadrants lists every quadrant in precedence order.
func Quadrants() []Quadrant {
	return []Quadrant{Hero, Warrior, Feeder, Slacker}
}

// Classified pairs a governor with its quadrant.
type Classified struct {
	Entity   scoring.Entity `json:"entity"`
	Quadrant Quadrant       `json:"quadrant"`
	Color    string         `json:"color"`
}

// Means holds the population means a classification was made against.
type Means struct {
	Kills float64 `json:"kills"`
	Deads float64 `json:"deads"`
}

// Classify places every active governor into a quadrant relative to the
// mean T4+T5 kills and mean deaths of the active set. Governors with no kills
// and no deaths are left out. Input order is preserved.
func Classify(entities []scoring.Entity) []Classified {
	out, _ := ClassifyWithMeans(entities)
	return out
}

// ClassifyWithMeans is Classify that also reports the means used.
// Both results are zero when nobody was active.
func ClassifyWithMeans(entities []scoring.Entity) ([]Classified, Means) {
	active := make([]scoring.Entity, 0, len(entities))
	for _, e := range entities {
		if e.T4T5 > 0 || e.Deads > 0 {
			active = append(active, e)
		}
	}
	if len(active) == 0 {
		return []Classified{}, Means{}
	}

	kills := make([]float64, len(active))
	deads := make([]float64, len(active))
	for i, e := range active {
		kills[i] = float64(e.T4T5)
		deads[i] = float64(e.Deads)
	}
	m := Means{Kills: stat.Mean(kills, nil), Deads: stat.Mean(deads, nil)}

	out := make([]Classified, len(active))
	for i, e := range active {
		q := quadrantOf(kills[i], deads[i], m)
		out[i] = Classified{Entity: e, Quadrant: q, Color: q.Color()}
	}
	return out, m
}

// quadrantOf applies the rules top to bottom. A governor sitting exactly on
// both means is a Hero.
func quadrantOf(kills, deads float64, m Means) Quadrant {
	switch {
	case kills >= m.Kills && deads <= m.Deads:
		return Hero
	case kills >= m.Kills:
		return Warrior
	case deads > m.Deads:
		return Feeder
	default:
		return Slacker
	}
}

// Count tallies classified governors per quadrant.
func Count(classified []Classified) map[Quadrant]int {
	counts := make(map[Quadrant]int, len(quadrantColors))
	for _, q := range Quadrants() {
		counts[q] = 0
	}
	for _, c := range classified {
		counts[c.Quadrant]++
	}
	return counts
}
