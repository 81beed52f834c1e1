package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spidermap/pkg/clusters"
	"github.com/matzehuels/spidermap/pkg/mapview"
	"github.com/matzehuels/spidermap/pkg/spider"
	"github.com/matzehuels/spidermap/pkg/spider/layout"
)

// panStep is how far the arrow keys move the view, in pixels.
const panStep = 64.0

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// exploreCommand creates the explore command, an interactive cluster browser.
func (c *CLI) exploreCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "explore [clusters.geojson]",
		Short: "Open and pick clusters interactively",
		Long: `Open and pick clusters interactively.

Select a cluster with tab and open it with enter. Number keys pick a member
of the open cluster, h moves the pointer across its members, the arrow keys
pan the map and esc clicks on empty map space.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog := newProgress(loggerFromContext(cmd.Context()))
			set, err := clusters.Load(args[0])
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Loaded %d clusters from %s", len(set.Groups), args[0]))
			if len(set.Groups) == 0 {
				return fmt.Errorf("%s: no clusters found", args[0])
			}
			lo, err := flags.apply(cmd, c.Config.Layout)
			if err != nil {
				return err
			}
			cfg := c.Config
			cfg.Layout = lo

			model := newExploreModel(set, cfg.View, cfg.SpiderOptions(), loggerFromContext(cmd.Context()))
			defer model.Close()

			_, err = tea.NewProgram(model, tea.WithContext(cmd.Context()), tea.WithOutput(os.Stderr)).Run()
			return err
		},
	}
	flags.register(cmd)

	return cmd
}

// =============================================================================
// exploreModel - Interactive cluster browser
// =============================================================================

// exploreModel drives a map and its spider controller from key presses.
type exploreModel struct {
	m    *mapview.Map
	ctrl *spider.Controller

	clusters []*spider.Cluster
	cursor   int
	hover    int

	// picked is the last member reported by the controller.
	picked     *spider.Member
	pickedFrom string
	notice     string
}

// newExploreModel draws set on a map and attaches a controller. A view
// without a center starts on the first cluster.
func newExploreModel(set *clusters.Set, v mapview.View, opts *spider.Options, logger *log.Logger) *exploreModel {
	if v.Center == (orb.Point{}) && len(set.Groups) > 0 {
		v.Center = set.Groups[0].Center
	}
	m := mapview.New(v, mapview.WithLogger(logger))
	set.AddTo(m)

	model := &exploreModel{
		m:        m,
		ctrl:     spider.New(m, m.ClusterLayer(), spider.WithOptions(opts), spider.WithLogger(logger)),
		clusters: m.Clusters(),
		hover:    -1,
	}
	model.ctrl.AddListener(spider.ListenerFuncs{
		Selected: func(mem *spider.Member, cl *spider.Cluster) {
			model.picked = mem
			model.pickedFrom = ""
			if cl != nil {
				model.pickedFrom = cl.ID
			}
		},
		Unselected: func() {
			model.picked = nil
			model.pickedFrom = ""
		},
	})
	return model
}

// Close detaches the controller from the map.
func (m *exploreModel) Close() { m.ctrl.Dispose() }

func (m *exploreModel) Init() tea.Cmd {
	return nil
}

func (m *exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.notice = ""

	switch s := key.String(); s {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab", "j":
		m.moveCursor(1)
	case "shift+tab", "k":
		m.moveCursor(-1)
	case "enter":
		m.open()
	case "esc":
		m.m.ClickMap()
		m.hover = -1
	case "h":
		m.hoverNext()
	case "left":
		m.pan(-panStep, 0)
	case "right":
		m.pan(panStep, 0)
	case "up":
		m.pan(0, -panStep)
	case "down":
		m.pan(0, panStep)
	case "+", "=":
		m.m.ZoomBy(1)
		m.hover = -1
	case "-":
		m.m.ZoomBy(-1)
		m.hover = -1
	default:
		if i, err := strconv.Atoi(s); err == nil && i >= 1 && i <= 9 {
			m.pick(i - 1)
		}
	}
	return m, nil
}

func (m *exploreModel) moveCursor(delta int) {
	if len(m.clusters) == 0 {
		return
	}
	m.cursor = (m.cursor + delta + len(m.clusters)) % len(m.clusters)
}

// open clicks the cluster marker under the cursor. The open cluster's marker
// is hidden, so selecting it again leaves it open.
func (m *exploreModel) open() {
	if len(m.clusters) == 0 {
		m.notice = "no clusters"
		return
	}
	cl := m.clusters[m.cursor]
	if m.ctrl.Current() == cl {
		return
	}
	if !m.m.ClickMarker(cl.Marker) {
		m.notice = fmt.Sprintf("%s is not on the map", cl.ID)
		return
	}
	m.hover = -1
	if !m.ctrl.IsOpen() {
		m.notice = fmt.Sprintf("%s cannot be projected at this view", cl.ID)
	}
}

// pick clicks proxy i of the open cluster.
func (m *exploreModel) pick(i int) {
	proxies := m.ctrl.Proxies()
	if i >= len(proxies) {
		m.notice = fmt.Sprintf("no member %d", i+1)
		return
	}
	m.m.ClickMarker(proxies[i].Marker)
	m.hover = -1
}

// hoverNext moves the pointer to the next proxy, or off the map after the last.
func (m *exploreModel) hoverNext() {
	proxies := m.ctrl.Proxies()
	if len(proxies) == 0 {
		m.hover = -1
		m.m.Hover("")
		return
	}
	m.hover++
	if m.hover >= len(proxies) {
		m.hover = -1
		m.m.Hover("")
		return
	}
	m.m.Hover(proxies[m.hover].Marker)
}

func (m *exploreModel) pan(dx, dy float64) {
	m.m.Pan(dx, dy)
	m.hover = -1
}

func (m *exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Clusters"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("tab select  ⏎ open  1-9 pick  h hover  arrows pan  +/- zoom  esc map click  q quit"))
	b.WriteString("\n\n")

	b.WriteString(m.clusterTable())
	b.WriteString("\n")

	if cur := m.ctrl.Current(); cur != nil {
		b.WriteString("\n")
		mode := layout.ModeFor(cur.Len(), m.ctrl.LayoutOptions())
		b.WriteString(listSelectedStyle.Render(fmt.Sprintf("%s open (%s)", cur.ID, mode)))
		b.WriteString("\n")
		b.WriteString(m.proxyList())
	}

	b.WriteString("\n")
	v := m.m.View()
	b.WriteString(listDimStyle.Render(fmt.Sprintf("view %.5f,%.5f  zoom %g", v.Center.Lon(), v.Center.Lat(), v.Zoom)))
	b.WriteString("\n")

	if m.picked != nil {
		from := "map"
		if m.pickedFrom != "" {
			from = m.pickedFrom
		}
		b.WriteString(StyleSuccess.Render(fmt.Sprintf("%s %s", iconSuccess, memberLabel(m.picked))))
		b.WriteString(listDimStyle.Render(" from " + from))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(StyleWarning.Render(iconWarning + " " + m.notice))
		b.WriteString("\n")
	}

	return b.String()
}

func (m *exploreModel) clusterTable() string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	open := m.ctrl.Current()

	rows := make([][]string, len(m.clusters))
	for i, cl := range m.clusters {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		state := ""
		if cl == open {
			state = "open"
		}
		rows[i] = []string{
			cursor,
			cl.ID,
			strconv.Itoa(cl.Len()),
			fmt.Sprintf("%.5f,%.5f", cl.Center.Lon(), cl.Center.Lat()),
			state,
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Cluster", "Members", "Center", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row == m.cursor {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			if col == 3 {
				return listDimStyle
			}
			return listNormalStyle
		})
	return t.Render()
}

func (m *exploreModel) proxyList() string {
	var b strings.Builder
	center, _ := m.m.ToScreen(m.ctrl.Current().Center)
	for i, p := range m.ctrl.Proxies() {
		at, _ := m.m.ToScreen(p.Location)
		line := fmt.Sprintf("  %d  %-20s %+7.1f %+7.1f", i+1, memberLabel(p.Member), at.X-center.X, at.Y-center.Y)
		if i == m.hover {
			style := ""
			if l, ok := m.m.Line(p.Connector); ok {
				style = l.Style.Color
			}
			b.WriteString(listSelectedStyle.Render(line))
			b.WriteString(listDimStyle.Render("  " + style))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func memberLabel(mem *spider.Member) string {
	if mem.Attrs.Text != "" {
		return mem.Attrs.Text
	}
	return mem.ID
}
