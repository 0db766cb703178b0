package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/paretolearn/pkg/config"
	"github.com/Sumatoshi-tech/paretolearn/pkg/learn"
	"github.com/Sumatoshi-tech/paretolearn/pkg/oracle"
)

func (a *app) mineCommand() *cobra.Command {
	var (
		box   boxFlags
		grain []float64
	)

	cmd := &cobra.Command{
		Use:   "mine <points-file>...",
		Short: "Classify cells by sampling where every point set is dominated",
		Long: `Sample the cells of a grid and mark a cell green when some sample dominates
a point of every file, red otherwise. With --adaptive, cells whose success
ratio is low are split until they reach the granularity.

Examples:
  paretolearn mine a.txt b.txt --num-cells 100
  paretolearn mine a.txt --adaptive --granularity 0.05 --seed 7`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			oracles := make([]oracle.Oracle, 0, len(args))

			for _, path := range args {
				o, err := box.loadPoints(path)
				if err != nil {
					return err
				}

				oracles = append(oracles, a.cached(o))
			}

			n := oracles[0].Dim()

			intervals, err := box.intervals(n)
			if err != nil {
				return err
			}

			opts := a.mineOptions()

			if len(grain) > 0 {
				opts.Granularity, err = broadcast(grain, n, 0)
				if err != nil {
					return err
				}
			}

			rs, stats, err := learn.MineND(cmd.Context(), oracles, intervals, opts)
			if err != nil {
				return err
			}

			return a.finish(cmd.Context(), cmd.OutOrStdout(), &box, rs, stats)
		},
	}

	box.register(cmd)
	registerLearnerFlags(cmd)

	f := cmd.Flags()
	f.Float64("p0", config.DefaultMineP0, "smallest cell fraction the sampling must detect")
	f.Float64("alpha", config.DefaultMineAlpha, "probability of missing such a fraction")
	f.Int("num-cells", config.DefaultMineNumCells, "number of grid cells")
	f.Float64("success-ratio", config.DefaultMineSuccessRatio, "adaptive: hit ratio that makes a cell green")
	f.Bool("adaptive", config.DefaultMineAdaptive, "split undecided cells instead of using a fixed grid")
	f.Uint64("seed", config.DefaultMineSeed, "sampling seed")
	f.Float64SliceVar(&grain, "granularity", nil, "adaptive: smallest cell size, one value or one per axis")

	return cmd
}
