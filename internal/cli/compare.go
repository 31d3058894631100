package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCompareCommand(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare governors or kingdoms",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "players PROFILE ID [ID...]",
			Short: "Compare up to three governors of one profile",
			Args:  cobra.MinimumNArgs(2),
			RunE: o.withSession(func(cmd *cobra.Command, s *session, args []string) error {
				cmp, err := s.svc.ComparePlayers(cmd.Context(), args[0], splitIDs(args[1:]))
				if err != nil {
					return err
				}
				if s.asJSON {
					return s.emit(cmp)
				}
				return s.render.Players(args[0], cmp)
			}),
		},
		&cobra.Command{
			Use:   "kingdoms PROFILE_A PROFILE_B",
			Short: "Compare the summaries of two profiles",
			Args:  cobra.ExactArgs(2),
			RunE: o.withSession(func(cmd *cobra.Command, s *session, args []string) error {
				cmp, err := s.svc.CompareKingdoms(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				if s.asJSON {
					return s.emit(cmp)
				}
				return s.render.Kingdoms(fmt.Sprintf("%s vs %s", cmp.A, cmp.B), cmp)
			}),
		},
	)
	return cmd
}
