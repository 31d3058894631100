package cli

import (
	"github.com/spf13/cobra"

	service "github.com/okian/dkp/internal/app"
	"github.com/okian/dkp/internal/domain/roster"
)

func newComputeCommand(o *rootOptions) *cobra.Command {
	var (
		start, end string
		weights    weightFlags
		views      viewFlags
	)

	cmd := &cobra.Command{
		Use:   "compute --start FILE --end FILE",
		Short: "Score two exports without storing them",
		Args:  cobra.NoArgs,
		PreRunE: func(*cobra.Command, []string) error {
			return views.validate()
		},
		RunE: o.withSession(func(cmd *cobra.Command, s *session, _ []string) error {
			startCSV, endCSV, err := readExports(cmd, start, end)
			if err != nil {
				return err
			}

			settings := weights.apply(cmd, s.svc.DefaultSettings())
			analysis, err := s.svc.Compute(cmd.Context(), startCSV, endCSV, settings)
			if err != nil {
				return err
			}
			return s.showAnalysis("Computed", analysis, &views)
		}),
	}

	cmd.Flags().StringVar(&start, "start", "", "export taken at the start of the window")
	cmd.Flags().StringVar(&end, "end", "", "export taken at the end of the window")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	weights.register(cmd)
	views.register(cmd)
	return cmd
}

// showAnalysis prints the views selected in v.
func (s *session) showAnalysis(title string, a service.Analysis, v *viewFlags) error {
	entities := v.order(a.Entities)
	fighters := roster.Fighters(a.Entities, s.cfg.FighterMinPower)

	if s.asJSON {
		out := map[string]any{}
		if v.shows(viewEntities) {
			out[viewEntities] = entities
		}
		if v.shows(viewSummary) {
			out[viewSummary] = a.Summary
		}
		if v.shows(viewQuadrants) {
			out[viewQuadrants] = a.Quadrants
		}
		if v.shows(viewFighters) {
			out[viewFighters] = fighters
		}
		return s.emit(out)
	}

	if v.shows(viewSummary) {
		if err := s.render.Summary(title+": kingdom", a.Summary); err != nil {
			return err
		}
	}
	if v.shows(viewEntities) {
		if err := s.render.Entities(title+": governors", entities); err != nil {
			return err
		}
	}
	if v.shows(viewQuadrants) {
		q := a.Quadrants
		if err := s.render.Quadrants(title+": quadrants", q.Entities, q.Means, q.Counts); err != nil {
			return err
		}
	}
	if v.shows(viewFighters) {
		if err := s.render.Fighters(title+": fighters", fighters); err != nil {
			return err
		}
	}
	return nil
}
