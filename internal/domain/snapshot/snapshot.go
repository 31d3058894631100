// Package snapshot models a point-in-time export of governor statistics.
//
// Records keep the raw cell text exactly as exported. Numeric decoding is
// permissive and happens once through Decode; a malformed cell never fails.
package snapshot

// Tiers is the number of kill tiers tracked per governor (T1..T5).
const Tiers = 5

// Tier indexes into Record.Kills and Stats.Kills.
const (
	T1 = iota
	T2
	T3
	T4
	T5
)

// Record is a single governor row as exported by the scanner.
type Record struct {
	ID         string
	Name       string
	Power      string
	TroopPower string
	Kills      [Tiers]string
	Deads      string
	KillPoints string
}

// Snapshot is an ordered sequence of records from one export.
type Snapshot []Record

// Stats holds the decoded numeric columns of a Record.
// The zero value stands in for a governor missing from a snapshot.
type Stats struct {
	Power      int64
	TroopPower int64
	Kills      [Tiers]int64
	Deads      int64
	KillPoints int64
}

// Decode converts the raw cells into numbers.
func (r Record) Decode() Stats {
	s := Stats{
		Power:      CleanNumber(r.Power),
		TroopPower: CleanNumber(r.TroopPower),
		Deads:      CleanNumber(r.Deads),
		KillPoints: CleanNumber(r.KillPoints),
	}
	for i, k := range r.Kills {
		s.Kills[i] = CleanNumber(k)
	}
	return s
}

// Index maps identifiers to records. On duplicate identifiers the later
// record wins. Records without an identifier are not indexed.
func (s Snapshot) Index() map[string]Record {
	idx := make(map[string]Record, len(s))
	for _, r := range s {
		if r.ID == "" {
			continue
		}
		idx[r.ID] = r
	}
	return idx
}
