package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spidermap/pkg/spider/layout"
)

// layoutOutput is the --json form of the layout command.
type layoutOutput struct {
	Mode       layout.Mode        `json:"mode"`
	Count      int                `json:"count"`
	Options    layout.Options     `json:"options"`
	Placements []layout.Placement `json:"placements"`
}

// layoutCommand creates the layout command for inspecting placements.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		count  int
		asJSON bool
		flags  layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print member placements for a cluster size",
		Long: `Print member placements for a cluster size.

Clusters up to the circle/spiral threshold are placed evenly on a circle;
larger ones on an outward spiral. Offsets are in pixels relative to the
cluster centroid, with y pointing down.`,
		Example: `  spidermap layout -n 6
  spidermap layout -n 40 --json
  spidermap layout -n 12 --threshold 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("-n must be at least 1")
			}
			opts, err := flags.apply(cmd, c.Config.Layout)
			if err != nil {
				return err
			}
			out := layoutOutput{
				Mode:       layout.ModeFor(count, opts),
				Count:      count,
				Options:    opts,
				Placements: layout.Compute(count, opts),
			}
			loggerFromContext(cmd.Context()).Debug("computed layout", "n", count, "mode", out.Mode)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			writeLayoutTable(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of cluster members")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	flags.register(cmd)

	return cmd
}

func writeLayoutTable(w io.Writer, out layoutOutput) {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	rows := make([][]string, len(out.Placements))
	for i, p := range out.Placements {
		rows[i] = []string{
			strconv.Itoa(i),
			fmtPx(p.DX),
			fmtPx(p.DY),
			strconv.FormatFloat(math.Mod(p.Angle, 2*math.Pi), 'f', 3, 64),
			fmtPx(p.Radius()),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "dx", "dy", "angle", "radius").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	fmt.Fprintln(w, StyleTitle.Render(fmt.Sprintf("%d members", out.Count))+" "+StyleDim.Render("("+string(out.Mode)+")"))
	fmt.Fprintln(w, t.Render())
}

func fmtPx(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
