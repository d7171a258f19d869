package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/mattn/go-isatty"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hdrscope/hdrscope/internal/config"
	"github.com/hdrscope/hdrscope/internal/distribution"
	"github.com/hdrscope/hdrscope/internal/histo"
	"github.com/hdrscope/hdrscope/internal/output"
	"github.com/hdrscope/hdrscope/internal/picker"
	"github.com/hdrscope/hdrscope/internal/series"
	"github.com/hdrscope/hdrscope/internal/tracing"
	"github.com/hdrscope/hdrscope/internal/units"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	tp, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: tracing shutdown: %v\n", err)
		}
	}()
	tracer := tp.Tracer()

	loadCtx, span := tracing.StartPhaseSpan(ctx, tracer, "load",
		attribute.String("input.file", cfg.InputFile))
	repo, err := series.Load(cfg.InputFile)
	tracing.EndSpan(span, err)
	if err != nil {
		return err
	}
	ctx = loadCtx

	if cfg.Inspect {
		output.PrintInspect(os.Stdout, cfg.InputFile, repo, cfg.Raw)
	}

	if !cfg.WantsAnalysis() && cfg.ExportLog == "" && !cfg.JSONOutput {
		if !cfg.Inspect {
			fmt.Fprintln(os.Stderr, "Warning: nothing to do.")
			config.PrintHelp()
		}
		return nil
	}

	metric, err := resolveMetric(cfg, repo)
	if err != nil {
		return err
	}
	tagSeries, err := repo.Series(metric)
	if err != nil {
		return err
	}

	if cfg.ExportLog != "" {
		if err := output.ExportLog(cfg.ExportLog, tagSeries, cfg.Force); err != nil {
			return fmt.Errorf("export of %q failed: %w", metric, err)
		}
		fmt.Printf("* exported %q to \"%s\"\n", metric, cfg.ExportLog)
	}

	curves := make(map[distribution.Kind][]distribution.Curve)
	if cfg.WantsAnalysis() {
		analyzeCtx, span := tracing.StartPhaseSpan(ctx, tracer, "analyze",
			attribute.String("metric", metric),
			attribute.Float64("threshold", cfg.MaxPercentile),
			attribute.Int("plotsize", cfg.PlotPoints))
		curves, err = analyze(cfg, tagSeries)
		tracing.EndSpan(span, err,
			attribute.Int("curve.families", len(curves)))
		if err != nil {
			return err
		}
		ctx = analyzeCtx

		if !cfg.WantsOutput() {
			fmt.Fprintln(os.Stderr, "Warning: no output mode(s) requested for the analysis.")
			config.PrintHelp()
			return nil
		}
		if err := emit(ctx, tracer, cfg, metric, curves); err != nil {
			return err
		}
	}

	if cfg.JSONOutput {
		summary := output.NewSummary(cfg.InputFile, metric, repo, curves, cfg.Raw)
		if err := output.PrintJSONSummary(os.Stdout, summary); err != nil {
			return err
		}
	}
	return nil
}

// resolveMetric picks the tag to analyze: the requested one, the only one
// present, or an interactive choice when running on a terminal.
func resolveMetric(cfg *config.Config, repo *series.Repository) (string, error) {
	tags := repo.Tags()
	if len(tags) == 0 {
		return "", fmt.Errorf("log %q contains no histograms", cfg.InputFile)
	}
	if cfg.Metric != "" {
		if _, err := repo.Series(cfg.Metric); err != nil {
			return "", fmt.Errorf("metric %q not found in log (available: %v)", cfg.Metric, tags)
		}
		return cfg.Metric, nil
	}
	if len(tags) == 1 {
		return tags[0], nil
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return "", fmt.Errorf("log has multiple metrics %v; pick one with --metric", tags)
	}
	return picker.Pick(series.Summarize(repo, cfg.Raw), units.Name(cfg.Raw))
}

// analyze aggregates the slices and derives the requested curve families.
// A stability request over fewer than two usable slices degrades to a
// warning rather than failing the whole run.
func analyze(cfg *config.Config, s series.Series) (map[distribution.Kind][]distribution.Curve, error) {
	aggregated, err := histo.Aggregate(s, config.SignificantFigures)
	if err != nil {
		return nil, err
	}
	xStep := histo.ValueAtPercentile(aggregated, cfg.MaxPercentile, cfg.Raw) / float64(cfg.PlotPoints)
	if xStep <= 0 {
		return nil, fmt.Errorf("metric has no spread below the %g percentile", cfg.MaxPercentile)
	}

	curves := make(map[distribution.Kind][]distribution.Curve)
	var density distribution.Curve
	if cfg.Baseplot || cfg.Percentiles {
		density = distribution.Density(aggregated, xStep, cfg.MaxPercentile, cfg.Raw)
	}
	if cfg.Baseplot {
		curves[distribution.KindBaseplot] = []distribution.Curve{density}
	}
	if cfg.Percentiles {
		curves[distribution.KindPercentiles] = []distribution.Curve{
			distribution.PercentileCurve(density, xStep),
		}
	}
	if cfg.Stability {
		stability, err := distribution.StabilityCurves(s, xStep, cfg.MaxPercentile, cfg.Raw)
		if err != nil {
			if errors.Is(err, distribution.ErrNoStabilityData) {
				fmt.Fprintf(os.Stderr, "Warning: skipping stability analysis: %v\n", err)
			} else {
				return nil, err
			}
		} else {
			curves[distribution.KindStability] = stability
		}
	}
	return curves, nil
}

// emit writes the curve families to every requested destination, in a
// stable kind order.
func emit(ctx context.Context, tracer trace.Tracer, cfg *config.Config, metric string, curves map[distribution.Kind][]distribution.Curve) error {
	kinds := make([]distribution.Kind, 0, len(curves))
	for kind := range curves {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	_, span := tracing.StartPhaseSpan(ctx, tracer, "emit",
		attribute.Int("curve.families", len(kinds)))
	err := emitAll(cfg, metric, kinds, curves)
	tracing.EndSpan(span, err)
	return err
}

func emitAll(cfg *config.Config, metric string, kinds []distribution.Kind, curves map[distribution.Kind][]distribution.Curve) error {
	unit := units.Name(cfg.Raw)
	for _, kind := range kinds {
		if cfg.DumpRoot != "" {
			path := fmt.Sprintf("%s.%s.tsv", cfg.DumpRoot, kind)
			if !output.CanCreateFile(path, cfg.Force) {
				fmt.Printf("* SKIPPING \"%s\" (file exists)\n", path)
			} else if err := output.WriteDatafile(kind, curves[kind], path); err != nil {
				fmt.Printf("* FAILED dump of \"%s\": %v\n", path, err)
			} else {
				fmt.Printf("* dumped %s data to \"%s\"\n", kind, path)
			}
		}
		if cfg.PlotRoot != "" {
			path := fmt.Sprintf("%s.%s.html", cfg.PlotRoot, kind)
			if !output.CanCreateFile(path, cfg.Force) {
				fmt.Printf("* SKIPPING \"%s\" (file exists)\n", path)
				continue
			}
			if err := writeHTMLChart(path, kind, curves[kind], metric, unit); err != nil {
				fmt.Printf("* FAILED plot of \"%s\": %v\n", path, err)
			} else {
				fmt.Printf("* plotted %s chart to \"%s\"\n", kind, path)
			}
		}
	}

	if cfg.View {
		viewer := output.NewViewer(metric, unit)
		for _, kind := range kinds {
			viewer.AddChart(kind, curves[kind])
		}
		if err := viewer.Run(); err != nil {
			return err
		}
	}
	return nil
}

func writeHTMLChart(path string, kind distribution.Kind, curves []distribution.Curve, metric, unit string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := output.GenerateHTMLChart(f, kind, curves, metric, unit); err != nil {
		return err
	}
	return f.Sync()
}
