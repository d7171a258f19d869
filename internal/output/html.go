package output

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hdrscope/hdrscope/internal/distribution"
)

// HTMLChartData contains all data needed for one chart report page.
type HTMLChartData struct {
	GeneratedAt string
	RunID       string
	Kind        string
	Metric      string
	Unit        string
	Title       string
	Average     float64
	HasAverage  bool
	CurvesJSON  template.JS
	TicksJSON   template.JS
}

// Fixed percentile-axis tick marks for the percentiles chart.
var percentileTicks = []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 95, 100}

// GenerateHTMLChart generates a standalone HTML page with the given curves
// drawn on a canvas chart: a bar chart for baseplot (average annotated), an
// overlaid line family with a color ramp for stability, and a line chart
// with fixed percentile ticks for percentiles.
func GenerateHTMLChart(w io.Writer, kind distribution.Kind, curves []distribution.Curve, metric, unit string) error {
	if !kind.Valid() {
		return fmt.Errorf("%w %q", distribution.ErrUnknownPlotKind, kind)
	}
	if len(curves) == 0 {
		return fmt.Errorf("no curves to plot for %q", kind)
	}

	curvesJSON, err := json.Marshal(curves)
	if err != nil {
		return fmt.Errorf("failed to marshal curves: %w", err)
	}
	ticksJSON, err := json.Marshal(percentileTicks)
	if err != nil {
		return fmt.Errorf("failed to marshal ticks: %w", err)
	}

	data := HTMLChartData{
		GeneratedAt: time.Now().Format(time.RFC3339),
		RunID:       ulid.Make().String(),
		Kind:        string(kind),
		Metric:      metric,
		Unit:        unit,
		CurvesJSON:  template.JS(curvesJSON),
		TicksJSON:   template.JS(ticksJSON),
	}

	switch kind {
	case distribution.KindBaseplot:
		avg, ok := curveAverage(curves[0])
		data.Average = avg
		data.HasAverage = ok
		data.Title = fmt.Sprintf("Distribution for %q", metric)
	case distribution.KindStability:
		data.Title = fmt.Sprintf("Stability analysis for %q", metric)
	case distribution.KindPercentiles:
		data.Title = fmt.Sprintf("Percentiles for %q", metric)
	}

	tmpl, err := template.New("chart").Funcs(template.FuncMap{
		"formatFloat": func(f float64) string {
			return fmt.Sprintf("%.2f", f)
		},
	}).Parse(chartTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

// curveAverage is the density-weighted mean of the curve's value axis.
func curveAverage(c distribution.Curve) (float64, bool) {
	var num, den float64
	for i := range c.Xs {
		num += c.Xs[i] * c.Ys[i]
		den += c.Ys[i]
	}
	if den == 0 {
		return 0, false
	}
	return num / den, true
}

const chartTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 2rem; color: #222; }
  h1 { font-size: 1.3rem; }
  .meta { color: #777; font-size: 0.8rem; margin-bottom: 1rem; }
  canvas { border: 1px solid #ddd; background: #fff; }
</style>
</head>
<body>
<h1>{{.Title}}{{if .HasAverage}} (avg = {{formatFloat .Average}} {{.Unit}}){{end}}</h1>
<div class="meta">kind: {{.Kind}} &middot; run {{.RunID}} &middot; generated {{.GeneratedAt}}</div>
<canvas id="chart" width="1200" height="700"></canvas>
<script>
const kind = {{.Kind}};
const unit = {{.Unit}};
const curves = {{.CurvesJSON}};
const pticks = {{.TicksJSON}};

const canvas = document.getElementById("chart");
const ctx = canvas.getContext("2d");
const pad = { left: 70, right: 20, top: 20, bottom: 50 };
const W = canvas.width - pad.left - pad.right;
const H = canvas.height - pad.top - pad.bottom;

function extent(vals) {
  let lo = Infinity, hi = -Infinity;
  for (const v of vals) { if (v < lo) lo = v; if (v > hi) hi = v; }
  if (!isFinite(lo)) { lo = 0; hi = 1; }
  if (lo === hi) hi = lo + 1;
  return [lo, hi];
}

const allXs = curves.flatMap(c => c.Xs || []);
const allYs = curves.flatMap(c => c.Ys || []);
const [x0, x1] = kind === "percentiles" ? [0, 100] : extent(allXs);
const [, yMax] = extent(allYs);
const sx = v => pad.left + (v - x0) / (x1 - x0) * W;
const sy = v => pad.top + H - v / yMax * H;

function ramp(i, n) {
  const t = n > 1 ? i / (n - 1) : 0;
  return "rgb(" + Math.round(40 + 40 * t) + "," + Math.round(90 + 130 * t) + "," + Math.round(200 - 60 * t) + ")";
}

function axes(xticks) {
  ctx.strokeStyle = "#999";
  ctx.fillStyle = "#555";
  ctx.font = "12px sans-serif";
  ctx.beginPath();
  ctx.moveTo(pad.left, pad.top);
  ctx.lineTo(pad.left, pad.top + H);
  ctx.lineTo(pad.left + W, pad.top + H);
  ctx.stroke();
  for (const t of xticks) {
    const x = sx(t);
    ctx.beginPath(); ctx.moveTo(x, pad.top + H); ctx.lineTo(x, pad.top + H + 5); ctx.stroke();
    ctx.fillText(t.toPrecision(4), x - 12, pad.top + H + 20);
  }
  for (const v of yticks()) {
    ctx.fillText(v.toPrecision(3), 5, sy(v) + 4);
  }
}

// For percentile charts the y ticks are the curve's values at the fixed
// percentile ticks; otherwise an even spread.
function yticks() {
  if (kind !== "percentiles") {
    const ticks = [];
    for (let i = 0; i <= 5; i++) ticks.push(yMax * i / 5);
    return ticks;
  }
  const c = curves[0];
  return pticks.map(p => {
    let v = c.Ys.length > 0 ? c.Ys[c.Ys.length - 1] : 0;
    for (let i = 0; i < c.Xs.length; i++) {
      if (c.Xs[i] >= p) { v = c.Ys[i]; break; }
    }
    return v;
  });
}

function evenTicks() {
  const ticks = [];
  for (let i = 0; i <= 8; i++) ticks.push(x0 + (x1 - x0) * i / 8);
  return ticks;
}

if (kind === "baseplot") {
  axes(evenTicks());
  const c = curves[0];
  const barW = c.Xs.length > 1 ? Math.max(1, sx(c.Xs[1]) - sx(c.Xs[0])) : 4;
  ctx.fillStyle = "rgb(50, 110, 190)";
  for (let i = 0; i < c.Xs.length; i++) {
    ctx.fillRect(sx(c.Xs[i]) - barW / 2, sy(c.Ys[i]), barW, pad.top + H - sy(c.Ys[i]));
  }
} else {
  axes(kind === "percentiles" ? pticks : evenTicks());
  curves.forEach((c, ci) => {
    if (!c.Xs || c.Xs.length === 0) return;
    ctx.strokeStyle = ramp(ci, curves.length);
    ctx.lineWidth = kind === "stability" ? 2 : 1.5;
    ctx.beginPath();
    ctx.moveTo(sx(c.Xs[0]), sy(c.Ys[0]));
    for (let i = 1; i < c.Xs.length; i++) ctx.lineTo(sx(c.Xs[i]), sy(c.Ys[i]));
    ctx.stroke();
  });
}
</script>
</body>
</html>
`
