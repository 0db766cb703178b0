package commands

import (
	"errors"
	"fmt"
	"math"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/paretolearn/pkg/resultset"
)

// ErrNoChampion is returned when every Y↑ box of the bundle is shared.
var ErrNoChampion = errors.New("no unshared Y↑ box")

func (a *app) championCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "champion <bundle.zip> <other.zip>...",
		Short: "Find the Y↑ vertex of a bundle farthest from the others",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			own, err := resultset.Load(args[0])
			if err != nil {
				return fmt.Errorf("load %s: %w", args[0], err)
			}

			others := make([]*resultset.ResultSet, 0, len(args)-1)

			for _, path := range args[1:] {
				rs, loadErr := resultset.Load(path)
				if loadErr != nil {
					return fmt.Errorf("load %s: %w", path, loadErr)
				}

				others = append(others, rs)
			}

			point, dist, ok := own.Champion(others)
			if !ok {
				return ErrNoChampion
			}

			distance := "inf"
			if !math.IsInf(dist, 1) {
				distance = fmt.Sprintf("%g", dist)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "champion %s at distance %s\n", color.GreenString(point.String()), distance)

			return nil
		},
	}
}
