package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/paretolearn/pkg/learn"
	"github.com/Sumatoshi-tech/paretolearn/pkg/resultset"
)

// Output formats of the summary command.
const (
	formatTable = "table"
	formatYAML  = "yaml"
	formatJSON  = "json"
)

const percent = 100

// ErrUnknownFormat is returned for an unsupported --format.
var ErrUnknownFormat = errors.New("unknown output format")

// report is one row group of the summary output.
type report struct {
	Name    string            `json:"name"            yaml:"name"`
	Summary resultset.Summary `json:"summary"         yaml:"summary"`
	Stats   *learn.Stats      `json:"stats,omitempty" yaml:"stats,omitempty"`
}

func (a *app) summaryCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "summary <bundle.zip>...",
		Short: "Report the volumes of result bundles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reports := make([]report, 0, len(args))

			for _, path := range args {
				rs, err := resultset.Load(path)
				if err != nil {
					return fmt.Errorf("load %s: %w", path, err)
				}

				reports = append(reports, report{Name: filepath.Base(path), Summary: rs.Summarize()})
			}

			return render(cmd.OutOrStdout(), format, reports)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, yaml or json")

	return cmd
}

func render(w io.Writer, format string, reports []report) error {
	switch format {
	case formatTable:
		return renderTable(w, reports)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()

		return enc.Encode(reports)
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(reports)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func renderTable(w io.Writer, reports []report) error {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Result", "Region", "Volume", "Share", "Boxes"})

	for _, r := range reports {
		s := r.Summary

		tbl.AppendRow(table.Row{r.Name, green("Y↑"), volume(s.Yup), share(s.Yup, s.Space), humanize.Comma(int64(s.BoxesYup))})
		tbl.AppendRow(table.Row{"", red("Y↓"), volume(s.Ylow), share(s.Ylow, s.Space), humanize.Comma(int64(s.BoxesYlow))})
		tbl.AppendRow(table.Row{"", yellow("border"), volume(s.Border), share(s.Border, s.Space),
			humanize.Comma(int64(s.BoxesBorder))})
		tbl.AppendRow(table.Row{"", "space", volume(s.Space), share(s.Space, s.Space), strconv.Itoa(s.Dim) + "-D"})

		if r.Stats != nil {
			tbl.AppendSeparator()
			tbl.AppendRow(table.Row{"", "steps", humanize.Comma(int64(r.Stats.Steps)), "",
				"failed " + humanize.Comma(int64(r.Stats.Failures))})
			tbl.AppendRow(table.Row{"", "queries", humanize.Comma(r.Stats.Queries), "",
				"failed " + humanize.Comma(r.Stats.QueryFailures)})
			tbl.AppendRow(table.Row{"", "elapsed", r.Stats.Elapsed.String(), "", "workers " + strconv.Itoa(r.Stats.Workers)})
		}

		tbl.AppendSeparator()
	}

	tbl.Render()

	return nil
}

func volume(v float64) string {
	return humanize.FormatFloat("#,###.######", v)
}

func share(v, total float64) string {
	if total <= 0 {
		return "-"
	}

	return strconv.FormatFloat(percent*v/total, 'f', 2, 64) + "%"
}
