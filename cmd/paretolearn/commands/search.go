package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/paretolearn/pkg/learn"
)

func (a *app) searchCommand() *cobra.Command {
	var box boxFlags

	cmd := &cobra.Command{
		Use:   "search <points-file>",
		Short: "Learn the upward closure of a point set",
		Long: `Learn the region dominating at least one point of the file.

The file holds one point per line, written as (x1, ..., xn). The learned
Y↑ approximates the upward closure, Y↓ its complement, and the border the
Pareto front of the points within epsilon.

Examples:
  paretolearn search front.txt --max 1 --epsilon 1e-3 -o front.zip
  paretolearn search front.txt --min 0,0 --max 2,1 --parallel`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := box.loadPoints(args[0])
			if err != nil {
				return err
			}

			intervals, err := box.intervals(o.Dim())
			if err != nil {
				return err
			}

			rs, stats, err := learn.SearchNDIntervals(cmd.Context(), a.cached(o), intervals, a.learnOptions())
			if err != nil {
				return err
			}

			return a.finish(cmd.Context(), cmd.OutOrStdout(), &box, rs, stats)
		},
	}

	box.register(cmd)
	registerLearnerFlags(cmd)
	registerOptLevel(cmd, "optimization level: 0 plain, 1 shadow, 2 archive, 3 lattice index")

	return cmd
}
