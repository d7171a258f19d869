package distribution_test

import (
	"errors"
	"math"
	"testing"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/hdrscope/hdrscope/internal/distribution"
	"github.com/hdrscope/hdrscope/internal/series"
)

func histogramWithRange(t *testing.T, max, from, to int64) *hdrhistogram.Histogram {
	t.Helper()
	h := hdrhistogram.New(1, max, 3)
	for v := from; v <= to; v++ {
		if err := h.RecordValue(v); err != nil {
			t.Fatalf("failed to record %d: %v", v, err)
		}
	}
	return h
}

func TestParseKind(t *testing.T) {
	for _, name := range []string{"baseplot", "percentiles", "stability"} {
		k, err := distribution.ParseKind(name)
		if err != nil {
			t.Errorf("parse of %q failed: %v", name, err)
		}
		if string(k) != name {
			t.Errorf("expected %q, got %q", name, k)
		}
	}

	_, err := distribution.ParseKind("spaghetti")
	if !errors.Is(err, distribution.ErrUnknownPlotKind) {
		t.Errorf("expected ErrUnknownPlotKind, got %v", err)
	}
}

func TestDensityIntegratesToOne(t *testing.T) {
	h := histogramWithRange(t, 1000, 1, 1000)

	c := distribution.Density(h, 25, 100, true)
	if c.Len() == 0 {
		t.Fatal("expected a non-empty curve")
	}
	if len(c.Xs) != len(c.Ys) {
		t.Fatalf("axis lengths differ: %d vs %d", len(c.Xs), len(c.Ys))
	}

	integral := 0.0
	for _, y := range c.Ys {
		if y < 0 {
			t.Fatalf("negative density %g", y)
		}
		integral += y * 25
	}
	if math.Abs(integral-1.0) > 1e-9 {
		t.Errorf("expected density to integrate to 1, got %g", integral)
	}
}

func TestDensityPercentileCutoff(t *testing.T) {
	h := histogramWithRange(t, 1000, 1, 1000)

	full := distribution.Density(h, 10, 100, true)
	cut := distribution.Density(h, 10, 50, true)
	if cut.Len() == 0 || cut.Len() >= full.Len() {
		t.Fatalf("expected cutoff to shorten the curve: %d vs %d points", cut.Len(), full.Len())
	}

	integral := 0.0
	for _, y := range cut.Ys {
		integral += y * 10
	}
	if integral > 0.51 {
		t.Errorf("expected at most ~50%% of mass below the cutoff, got %g", integral)
	}
}

func TestDensityEmptyHistogram(t *testing.T) {
	h := hdrhistogram.New(1, 1000, 3)
	c := distribution.Density(h, 10, 100, true)
	if c.Len() != 0 {
		t.Errorf("expected empty curve, got %d points", c.Len())
	}
}

func TestDensityDisplayUnits(t *testing.T) {
	h := hdrhistogram.New(1, 10_000_000, 3)
	for i := 0; i < 100; i++ {
		if err := h.RecordValue(2_000_000); err != nil {
			t.Fatal(err)
		}
	}

	// bucketWidth 0.5 display units = 500000 raw units.
	c := distribution.Density(h, 0.5, 100, false)
	if c.Len() == 0 {
		t.Fatal("expected a non-empty curve")
	}
	lastX := c.Xs[c.Len()-1]
	if lastX < 1.5 || lastX > 2.5 {
		t.Errorf("expected value axis near 2 display units, got %g", lastX)
	}
}

func TestPercentileCurve(t *testing.T) {
	h := histogramWithRange(t, 1000, 1, 1000)
	density := distribution.Density(h, 25, 100, true)

	c := distribution.PercentileCurve(density, 25)
	if c.Len() != density.Len() {
		t.Fatalf("expected %d points, got %d", density.Len(), c.Len())
	}

	prev := -1.0
	for i, x := range c.Xs {
		if x < prev {
			t.Fatalf("percentile axis decreased at %d: %g after %g", i, x, prev)
		}
		prev = x
	}
	final := c.Xs[c.Len()-1]
	if math.Abs(final-100.0) > 1e-6 {
		t.Errorf("expected final percentile ~100, got %g", final)
	}
	for i := range c.Ys {
		if c.Ys[i] != density.Xs[i] {
			t.Fatalf("expected value axis to mirror density x axis at %d", i)
		}
	}
}

func TestStabilityCurvesPadding(t *testing.T) {
	long := histogramWithRange(t, 1000, 1, 1000)
	short := histogramWithRange(t, 1000, 1, 500)
	other := histogramWithRange(t, 1000, 1, 990)

	curves, err := distribution.StabilityCurves(series.Series{long, short, other}, 50, 100, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(curves) != 3 {
		t.Fatalf("expected 3 curves, got %d", len(curves))
	}

	width := curves[0].Len()
	for i, c := range curves {
		if c.Len() != width {
			t.Fatalf("curve %d has %d points, expected %d", i, c.Len(), width)
		}
		if len(c.Ys) != len(c.Xs) {
			t.Fatalf("curve %d has mismatched axes", i)
		}
	}

	// The shorter slice's curve must end in padded zeros.
	padded := curves[1].Ys
	if padded[len(padded)-1] != 0 {
		t.Error("expected trailing zero padding on the short curve")
	}
	nonZero := 0
	for _, y := range padded {
		if y != 0 {
			nonZero++
		}
	}
	if nonZero == 0 {
		t.Error("short curve lost its recorded density")
	}
}

func TestStabilityCurvesSingleSlice(t *testing.T) {
	only := histogramWithRange(t, 1000, 1, 100)
	_, err := distribution.StabilityCurves(series.Series{only}, 10, 100, true)
	if !errors.Is(err, distribution.ErrNoStabilityData) {
		t.Errorf("expected ErrNoStabilityData, got %v", err)
	}
}
