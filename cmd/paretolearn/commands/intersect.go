package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/paretolearn/pkg/learn"
	"github.com/Sumatoshi-tech/paretolearn/pkg/oracle"
	"github.com/Sumatoshi-tech/paretolearn/pkg/search"
)

func (a *app) intersectCommand() *cobra.Command {
	var (
		box         boxFlags
		constraints []string
	)

	cmd := &cobra.Command{
		Use:   "intersect <up-points> <down-points>",
		Short: "Learn where an upward and a downward predicate both hold",
		Long: `Learn the points that dominate some point of the first file and dominate
no point of the second file, optionally inside linear constraints.

Examples:
  paretolearn intersect lower.txt upper.txt --max 1
  paretolearn intersect lower.txt upper.txt --constraint "1,1<=1.5"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			up, err := box.loadPoints(args[0])
			if err != nil {
				return err
			}

			ceiling, err := box.loadPoints(args[1])
			if err != nil {
				return err
			}

			cs := make(search.Constraints, 0, len(constraints))

			for _, s := range constraints {
				c, parseErr := parseConstraint(s)
				if parseErr != nil {
					return parseErr
				}

				cs = append(cs, c)
			}

			intervals, err := box.intervals(up.Dim())
			if err != nil {
				return err
			}

			rs, stats, err := learn.SearchIntersectionNDIntervals(cmd.Context(),
				a.cached(up), a.cached(oracle.Negate(ceiling)), intervals, cs, a.learnOptions())
			if err != nil {
				return err
			}

			return a.finish(cmd.Context(), cmd.OutOrStdout(), &box, rs, stats)
		},
	}

	box.register(cmd)
	registerLearnerFlags(cmd)
	registerOptLevel(cmd, "optimization level: 0 plain, 1 expand, 2 absorb")
	cmd.Flags().StringArrayVar(&constraints, "constraint", nil, "linear constraint a1,...,an<=b (repeatable)")

	return cmd
}
