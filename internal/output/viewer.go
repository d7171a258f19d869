package output

import (
	"fmt"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/hdrscope/hdrscope/internal/distribution"
)

// Viewer renders computed curves in the terminal. One plot per curve
// family; 'q', Esc or Ctrl-C exits.
type Viewer struct {
	metric string
	unit   string
	charts []*viewerChart
}

type viewerChart struct {
	kind   distribution.Kind
	curves []distribution.Curve
}

// NewViewer creates a terminal viewer for the given metric.
func NewViewer(metric, unit string) *Viewer {
	return &Viewer{metric: metric, unit: unit}
}

// AddChart registers a curve family to display. Empty families are ignored.
func (v *Viewer) AddChart(kind distribution.Kind, curves []distribution.Curve) {
	if len(curves) == 0 {
		return
	}
	v.charts = append(v.charts, &viewerChart{kind: kind, curves: curves})
}

// Run initializes the terminal UI and blocks until the user quits.
func (v *Viewer) Run() error {
	if len(v.charts) == 0 {
		return fmt.Errorf("no charts to view")
	}
	if err := ui.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal ui: %w", err)
	}
	defer ui.Close()

	grid := ui.NewGrid()
	termWidth, termHeight := ui.TerminalDimensions()
	grid.SetRect(0, 0, termWidth, termHeight)

	header := widgets.NewParagraph()
	header.Text = fmt.Sprintf("metric %q (%s) - press q to quit", v.metric, v.unit)
	header.Border = false

	rows := []interface{}{ui.NewRow(0.08, ui.NewCol(1.0, header))}
	chartWeight := 0.92 / float64(len(v.charts))
	for _, c := range v.charts {
		rows = append(rows, ui.NewRow(chartWeight, ui.NewCol(1.0, v.buildPlot(c))))
	}
	grid.Set(rows...)
	ui.Render(grid)

	for e := range ui.PollEvents() {
		switch e.ID {
		case "q", "<C-c>", "<Escape>":
			return nil
		case "<Resize>":
			payload := e.Payload.(ui.Resize)
			grid.SetRect(0, 0, payload.Width, payload.Height)
			ui.Clear()
			ui.Render(grid)
		}
	}
	return nil
}

func (v *Viewer) buildPlot(c *viewerChart) *widgets.Plot {
	plot := widgets.NewPlot()
	plot.Title = fmt.Sprintf(" %s ", c.kind)
	plot.AxesColor = ui.ColorWhite
	plot.Marker = widgets.MarkerBraille
	plot.Data = make([][]float64, 0, len(c.curves))
	for i, curve := range c.curves {
		if curve.Len() < 2 {
			continue
		}
		plot.Data = append(plot.Data, append([]float64(nil), curve.Ys...))
		plot.LineColors = append(plot.LineColors, viewerPalette[i%len(viewerPalette)])
	}
	return plot
}

var viewerPalette = []ui.Color{
	ui.ColorCyan,
	ui.ColorYellow,
	ui.ColorGreen,
	ui.ColorMagenta,
	ui.ColorRed,
	ui.ColorBlue,
}
