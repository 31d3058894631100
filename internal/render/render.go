package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/okian/dkp/internal/adapters/worker"
	"github.com/okian/dkp/internal/domain/aggregate"
	"github.com/okian/dkp/internal/domain/compare"
	"github.com/okian/dkp/internal/domain/profile"
	"github.com/okian/dkp/internal/domain/roster"
	"github.com/okian/dkp/internal/domain/scoring"
)

const timeLayout = "2006-01-02 15:04"

// Renderer writes tables to an output stream.
type Renderer struct {
	out   io.Writer
	color bool

	good *color.Color
	bad  *color.Color
	dim  *color.Color
}

// New creates a Renderer writing to out. Color is off unless enabled.
func New(out io.Writer, opts ...Option) *Renderer {
	r := &Renderer{out: out}
	for _, opt := range opts {
		opt(r)
	}

	r.good = color.New(color.FgGreen, color.Bold)
	r.bad = color.New(color.FgRed)
	r.dim = color.New(color.Faint)
	for _, c := range []*color.Color{r.good, r.bad, r.dim} {
		if r.color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

func (r *Renderer) newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	if title != "" {
		t.SetTitle(title)
	}
	return t
}

func (r *Renderer) flush(t table.Writer) error {
	_, err := fmt.Fprintln(r.out, t.Render())
	return err
}

// rightAlign aligns columns from..to (1-based, inclusive) to the right.
func rightAlign(t table.Writer, from, to int) {
	cfg := make([]table.ColumnConfig, 0, to-from+1)
	for i := from; i <= to; i++ {
		cfg = append(cfg, table.ColumnConfig{Number: i, Align: text.AlignRight, AlignFooter: text.AlignRight})
	}
	t.SetColumnConfigs(cfg)
}

var entityHeader = table.Row{
	"#", "ID", "Name", "Start Power", "Power +/-", "Troop +/-",
	"T4", "T5", "Deads", "Kill Score", "DKP", "Target", "Completion",
}

func entityRow(pos int, e scoring.Entity) table.Row {
	return table.Row{
		pos, e.ID, e.Name,
		FormatShort(float64(e.StartPower)),
		FormatShort(float64(e.PowerDelta)),
		FormatShort(float64(e.TroopPowerDelta)),
		FormatInt(e.T4), FormatInt(e.T5), FormatInt(e.Deads),
		FormatNumber(e.KillScore),
		FormatNumber(e.DKP),
		FormatShort(e.TargetDKP),
		FormatPercent(e.Completion),
	}
}

// Entities writes one row per governor in the given order.
func (r *Renderer) Entities(title string, entities []scoring.Entity) error {
	t := r.newTable(title)
	t.AppendHeader(entityHeader)
	for i, e := range entities {
		t.AppendRow(entityRow(i+1, e))
	}
	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d governors", len(entities))})
	rightAlign(t, 4, len(entityHeader))
	return r.flush(t)
}

// Fighters writes the fighter board, keeping each governor's position.
func (r *Renderer) Fighters(title string, ranked []roster.Ranked) error {
	t := r.newTable(title)
	t.AppendHeader(entityHeader)
	for _, rk := range ranked {
		t.AppendRow(entityRow(rk.Position, rk.Entity))
	}
	rightAlign(t, 4, len(entityHeader))
	return r.flush(t)
}

// Summary writes the kingdom totals as label/value pairs.
func (r *Renderer) Summary(title string, s aggregate.Summary) error {
	t := r.newTable(title)
	t.AppendRows([]table.Row{
		{"Governors", FormatInt(int64(s.Count))},
		{"Starting Power", FormatShort(float64(s.StartPower))},
		{"Power +/-", FormatShort(float64(s.PowerDelta))},
		{"Troop Power +/-", FormatShort(float64(s.TroopPowerDelta))},
		{"Total T4", FormatInt(s.T4)},
		{"Total T5", FormatInt(s.T5)},
		{"Total Kills", FormatInt(s.T4T5)},
		{"Total Deads", FormatInt(s.Deads)},
		{"Total Kill Score", FormatNumber(s.KillScore)},
		{"Total DKP", FormatNumber(s.DKP)},
		{"Avg Completion", FormatPercent(s.MeanCompletion)},
	})
	rightAlign(t, 2, 2)
	return r.flush(t)
}

// Quadrants writes the counts per quadrant followed by every classified
// governor.
func (r *Renderer) Quadrants(title string, classified []aggregate.Classified, means aggregate.Means, counts map[aggregate.Quadrant]int) error {
	head := r.newTable(title)
	head.AppendHeader(table.Row{"Quadrant", "Governors"})
	for _, q := range aggregate.Quadrants() {
		head.AppendRow(table.Row{string(q), counts[q]})
	}
	head.AppendFooter(table.Row{
		"Means",
		fmt.Sprintf("kills %s / deads %s", FormatNumber(means.Kills), FormatNumber(means.Deads)),
	})
	if err := r.flush(head); err != nil {
		return err
	}
	if len(classified) == 0 {
		return nil
	}

	t := r.newTable("")
	t.AppendHeader(table.Row{"ID", "Name", "T4+T5 Kills", "Deads", "Quadrant"})
	for _, c := range classified {
		t.AppendRow(table.Row{
			c.Entity.ID, c.Entity.Name,
			FormatInt(c.Entity.T4T5), FormatInt(c.Entity.Deads),
			r.quadrant(c.Quadrant),
		})
	}
	rightAlign(t, 3, 4)
	return r.flush(t)
}

func (r *Renderer) quadrant(q aggregate.Quadrant) string {
	switch q {
	case aggregate.Hero, aggregate.Warrior:
		return r.good.Sprint(string(q))
	case aggregate.Feeder:
		return r.bad.Sprint(string(q))
	default:
		return r.dim.Sprint(string(q))
	}
}

// Players writes a side-by-side comparison with the best value of each row
// highlighted and the worst dimmed in red.
func (r *Renderer) Players(title string, cmp compare.PlayerComparison) error {
	t := r.newTable(title)
	header := table.Row{"Metric"}
	for _, p := range cmp.Players {
		header = append(header, fmt.Sprintf("%s (%s)", p.Name, p.ID))
	}
	t.AppendHeader(header)

	for _, row := range cmp.Rows {
		line := table.Row{row.Label}
		for _, c := range row.Cells {
			v := formatMetric(row.Key, c.Value)
			switch {
			case c.Best:
				v = r.good.Sprint(v)
			case c.Worst:
				v = r.bad.Sprint(v)
			}
			line = append(line, v)
		}
		t.AppendRow(line)
	}
	rightAlign(t, 2, len(header))
	return r.flush(t)
}

// Kingdoms writes a head-to-head of two profiles.
func (r *Renderer) Kingdoms(title string, cmp compare.KingdomComparison) error {
	t := r.newTable(title)
	t.AppendHeader(table.Row{"Metric", cmp.A, cmp.B, "Winner"})

	wins := map[compare.Side]int{}
	for _, row := range cmp.Rows {
		a, b := formatMetric(row.Key, row.A), formatMetric(row.Key, row.B)
		winner := "tie"
		switch row.Winner {
		case compare.SideA:
			a, b, winner = r.good.Sprint(a), r.bad.Sprint(b), cmp.A
		case compare.SideB:
			a, b, winner = r.bad.Sprint(a), r.good.Sprint(b), cmp.B
		}
		wins[row.Winner]++
		t.AppendRow(table.Row{row.Label, a, b, winner})
	}
	t.AppendFooter(table.Row{"Wins", wins[compare.SideA], wins[compare.SideB], fmt.Sprintf("%d tied", wins[compare.Tie])})
	rightAlign(t, 2, 3)
	return r.flush(t)
}

// Profiles writes the stored profile listing.
func (r *Renderer) Profiles(infos []profile.Info) error {
	t := r.newTable("")
	t.AppendHeader(table.Row{"Name", "Governors", "Saved", "ID"})
	for _, in := range infos {
		t.AppendRow(table.Row{in.Name, in.Entities, in.SavedAt.Local().Format(timeLayout), r.dim.Sprint(in.ID)})
	}
	rightAlign(t, 2, 2)
	return r.flush(t)
}

// Settings writes the weights a result was scored with.
func (r *Renderer) Settings(cfg scoring.Config) error {
	t := r.newTable("Settings")
	t.AppendRows([]table.Row{
		{"T4 multiplier", strconv.FormatFloat(cfg.T4Mult, 'f', -1, 64)},
		{"T5 multiplier", strconv.FormatFloat(cfg.T5Mult, 'f', -1, 64)},
		{"Deads multiplier", strconv.FormatFloat(cfg.DeadsMult, 'f', -1, 64)},
		{"Target % of power", FormatPercent(cfg.TargetPercent)},
	})
	rightAlign(t, 2, 2)
	return r.flush(t)
}

// Recompute writes the outcome of a batch recompute.
func (r *Renderer) Recompute(results []worker.Result) error {
	t := r.newTable("Recompute")
	t.AppendHeader(table.Row{"Profile", "Governors", "Status"})
	failed := 0
	for _, res := range results {
		status := r.good.Sprint("ok")
		if res.Err != nil {
			failed++
			status = r.bad.Sprint(res.Err.Error())
		}
		t.AppendRow(table.Row{res.Name, res.Entities, status})
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d profiles", len(results)), "", fmt.Sprintf("%d failed", failed)})
	rightAlign(t, 2, 2)
	return r.flush(t)
}
