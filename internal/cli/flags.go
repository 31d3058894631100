package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/dkp/internal/domain/roster"
	"github.com/okian/dkp/internal/domain/scoring"
)

// Flag names for the scoring weights.
const (
	flagT4     = "t4"
	flagT5     = "t5"
	flagDeads  = "deads"
	flagTarget = "target"
)

// weightFlags are the optional weight overrides. Values go through
// scoring.ParseWeight so "2.5x" reads the same as it does over HTTP.
type weightFlags struct {
	t4, t5, deads, target string
}

func (w *weightFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&w.t4, flagT4, "", "points per T4 kill")
	f.StringVar(&w.t5, flagT5, "", "points per T5 kill")
	f.StringVar(&w.deads, flagDeads, "", "points per dead troop")
	f.StringVar(&w.target, flagTarget, "", "target DKP as a percent of starting power")
}

// changed reports whether any weight was set on the command line.
func (w *weightFlags) changed(cmd *cobra.Command) bool {
	for _, name := range []string{flagT4, flagT5, flagDeads, flagTarget} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// apply overlays the weights given on the command line on base.
func (w *weightFlags) apply(cmd *cobra.Command, base scoring.Config) scoring.Config {
	set := func(name, raw string, dst *float64) {
		if cmd.Flags().Changed(name) {
			*dst = scoring.ParseWeight(raw)
		}
	}
	set(flagT4, w.t4, &base.T4Mult)
	set(flagT5, w.t5, &base.T5Mult)
	set(flagDeads, w.deads, &base.DeadsMult)
	set(flagTarget, w.target, &base.TargetPercent)
	return base.Sanitize()
}

// Views selectable with --view.
const (
	viewAll       = "all"
	viewEntities  = "entities"
	viewSummary   = "summary"
	viewQuadrants = "quadrants"
	viewFighters  = "fighters"
)

// viewFlags select and order what a result set prints.
type viewFlags struct {
	view   string
	sort   string
	dir    string
	search string
}

func (v *viewFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&v.view, "view", viewAll, "what to print: all, entities, summary, quadrants or fighters")
	f.StringVar(&v.sort, "sort", string(roster.ColDKP), "sort column for the entities view")
	f.StringVar(&v.dir, "dir", string(roster.Desc), "sort direction: asc or desc")
	f.StringVar(&v.search, "search", "", "name substring or ID prefix filter")
}

func (v *viewFlags) validate() error {
	switch v.view {
	case viewAll, viewEntities, viewSummary, viewQuadrants, viewFighters:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownView, v.view)
	}
	if !roster.Known(roster.Column(v.sort)) {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, v.sort)
	}
	return nil
}

func (v *viewFlags) shows(view string) bool {
	return v.view == viewAll || v.view == view
}

// order applies --sort, --dir and --search to entities.
func (v *viewFlags) order(entities []scoring.Entity) []scoring.Entity {
	sorted := roster.Sort(entities, roster.Column(v.sort), roster.ParseDirection(v.dir))
	return roster.Search(sorted, v.search)
}

// readExports loads the start and end exports. At most one may be stdin.
func readExports(cmd *cobra.Command, start, end string) (string, string, error) {
	if start == "-" && end == "-" {
		return "", "", ErrStdinTwice
	}
	startCSV, err := readExport(cmd, start)
	if err != nil {
		return "", "", err
	}
	endCSV, err := readExport(cmd, end)
	if err != nil {
		return "", "", err
	}
	return startCSV, endCSV, nil
}

// readExport loads a CSV export from disk. "-" reads stdin.
func readExport(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	}
	b, err := os.ReadFile(path) //nolint:gosec // user-supplied export path
	if err != nil {
		return "", fmt.Errorf("read export: %w", err)
	}
	return string(b), nil
}

// splitIDs accepts IDs as separate args or comma-separated.
func splitIDs(args []string) []string {
	var ids []string
	for _, a := range args {
		for _, id := range strings.Split(a, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
