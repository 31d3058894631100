package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/dkp/internal/adapters/worker"
	"github.com/okian/dkp/internal/domain/scoring"
)

func newProfileCommand(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		Aliases: []string{"profiles"},
		Short:   "Manage stored profiles",
	}
	cmd.AddCommand(
		newProfileSaveCommand(o),
		newProfileListCommand(o),
		newProfileShowCommand(o),
		newProfileDeleteCommand(o),
		newProfileRecomputeCommand(o),
	)
	return cmd
}

func newProfileSaveCommand(o *rootOptions) *cobra.Command {
	var (
		start, end string
		weights    weightFlags
	)

	cmd := &cobra.Command{
		Use:   "save NAME --start FILE --end FILE",
		Short: "Score two exports and store them under NAME",
		Args:  cobra.ExactArgs(1),
		RunE: o.withSession(func(cmd *cobra.Command, s *session, args []string) error {
			startCSV, endCSV, err := readExports(cmd, start, end)
			if err != nil {
				return err
			}

			settings := weights.apply(cmd, s.svc.DefaultSettings())
			p, err := s.svc.SaveProfile(cmd.Context(), args[0], startCSV, endCSV, settings)
			if err != nil {
				return err
			}
			if s.asJSON {
				return s.emit(p)
			}
			_, err = fmt.Fprintf(s.out, "saved %q: %d governors (id %s)\n", p.Name, len(p.Entities), p.ID)
			return err
		}),
	}

	cmd.Flags().StringVar(&start, "start", "", "export taken at the start of the window")
	cmd.Flags().StringVar(&end, "end", "", "export taken at the end of the window")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	weights.register(cmd)
	return cmd
}

func newProfileListCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored profiles",
		Args:    cobra.NoArgs,
		RunE: o.withSession(func(cmd *cobra.Command, s *session, _ []string) error {
			infos, err := s.svc.ListProfiles(cmd.Context())
			if err != nil {
				return err
			}
			if s.asJSON {
				return s.emit(infos)
			}
			return s.render.Profiles(infos)
		}),
	}
}

func newProfileShowCommand(o *rootOptions) *cobra.Command {
	var views viewFlags

	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Print a stored profile",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(*cobra.Command, []string) error {
			return views.validate()
		},
		RunE: o.withSession(func(cmd *cobra.Command, s *session, args []string) error {
			p, err := s.svc.GetProfile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !s.asJSON {
				if err := s.render.Settings(p.Settings); err != nil {
					return err
				}
			}
			return s.showAnalysis(p.Name, s.svc.Analyze(cmd.Context(), p.Entities), &views)
		}),
	}
	views.register(cmd)
	return cmd
}

func newProfileDeleteCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete NAME",
		Aliases: []string{"rm"},
		Short:   "Delete a stored profile",
		Args:    cobra.ExactArgs(1),
		RunE: o.withSession(func(cmd *cobra.Command, s *session, args []string) error {
			if err := s.svc.DeleteProfile(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(s.out, "deleted %q\n", args[0])
			return err
		}),
	}
}

func newProfileRecomputeCommand(o *rootOptions) *cobra.Command {
	var (
		all     bool
		weights weightFlags
	)

	cmd := &cobra.Command{
		Use:   "recompute [NAME]",
		Short: "Rescore stored exports with new weights",
		Long: `Rescore one profile, or every profile with --all.

Weights not given on the command line keep the profile's stored value.
With --all and no weights each profile is rescored with its own settings.`,
		Args: cobra.MaximumNArgs(1),
		RunE: o.withSession(func(cmd *cobra.Command, s *session, args []string) error {
			ctx := cmd.Context()
			switch {
			case all:
				var override *scoring.Config
				if weights.changed(cmd) {
					cfg := weights.apply(cmd, s.svc.DefaultSettings())
					override = &cfg
				}
				results, err := s.svc.RecomputeAll(ctx, override)
				if err != nil {
					return err
				}
				if s.asJSON {
					return s.emit(results)
				}
				if err := s.render.Recompute(results); err != nil {
					return err
				}
				return firstFailure(results)

			case len(args) == 1:
				existing, err := s.svc.GetProfile(ctx, args[0])
				if err != nil {
					return err
				}
				p, err := s.svc.RecomputeProfile(ctx, existing.Name, weights.apply(cmd, existing.Settings))
				if err != nil {
					return err
				}
				if s.asJSON {
					return s.emit(p)
				}
				_, err = fmt.Fprintf(s.out, "recomputed %q: %d governors\n", p.Name, len(p.Entities))
				return err

			default:
				return ErrNoTarget
			}
		}),
	}

	cmd.Flags().BoolVar(&all, "all", false, "recompute every stored profile")
	weights.register(cmd)
	return cmd
}

// firstFailure returns the first job error so the exit code reflects it.
func firstFailure(results []worker.Result) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}
