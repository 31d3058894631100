package snapshot

// Columns names the export header for each Record field.
type Columns struct {
	ID         string `koanf:"id"`
	Name       string `koanf:"name"`
	Power      string `koanf:"power"`
	TroopPower string `koanf:"troop_power"`
	T1         string `koanf:"t1"`
	T2         string `koanf:"t2"`
	T3         string `koanf:"t3"`
	T4         string `koanf:"t4"`
	T5         string `koanf:"t5"`
	Deads      string `koanf:"deads"`
	KillPoints string `koanf:"kill_points"`
}

// DefaultColumns returns the headers written by the standard scanner export.
func DefaultColumns() Columns {
	return Columns{
		ID:         "Governor ID",
		Name:       "Governor Name",
		Power:      "Power",
		TroopPower: "Troop Power",
		T1:         "T1 Kills",
		T2:         "T2 Kills",
		T3:         "T3 Kills",
		T4:         "T4 Kills",
		T5:         "T5 Kills",
		Deads:      "Deads",
		KillPoints: "Kill Points",
	}
}

// Required lists the headers that must be present in every export.
// KillPoints is informational and may be absent.
func (c Columns) Required() []string {
	return []string{c.ID, c.Name, c.Power, c.TroopPower, c.T1, c.T2, c.T3, c.T4, c.T5, c.Deads}
}

// Kills returns the tier headers in T1..T5 order.
func (c Columns) Kills() [Tiers]string {
	return [Tiers]string{c.T1, c.T2, c.T3, c.T4, c.T5}
}

// WithDefaults fills empty header names from DefaultColumns.
func (c Columns) WithDefaults() Columns {
	d := DefaultColumns()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&c.ID, d.ID)
	fill(&c.Name, d.Name)
	fill(&c.Power, d.Power)
	fill(&c.TroopPower, d.TroopPower)
	fill(&c.T1, d.T1)
	fill(&c.T2, d.T2)
	fill(&c.T3, d.T3)
	fill(&c.T4, d.T4)
	fill(&c.T5, d.T5)
	fill(&c.Deads, d.Deads)
	fill(&c.KillPoints, d.KillPoints)
	return c
}
