package histo_test

import (
	"errors"
	"testing"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/hdrscope/hdrscope/internal/histo"
	"github.com/hdrscope/hdrscope/internal/series"
)

func recordRange(t *testing.T, h *hdrhistogram.Histogram, from, to int64) {
	t.Helper()
	for v := from; v <= to; v++ {
		if err := h.RecordValue(v); err != nil {
			t.Fatalf("failed to record %d: %v", v, err)
		}
	}
}

func TestAggregateSumsCounts(t *testing.T) {
	a := hdrhistogram.New(1, 1000, 3)
	b := hdrhistogram.New(1, 2000, 3)
	recordRange(t, a, 1, 100)
	recordRange(t, b, 1, 200)

	full, err := histo.Aggregate(series.Series{a, b}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if full.TotalCount() != 300 {
		t.Errorf("expected total count 300, got %d", full.TotalCount())
	}
	if full.Max() < 200 {
		t.Errorf("expected max >= 200, got %d", full.Max())
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	build := func() (*hdrhistogram.Histogram, *hdrhistogram.Histogram, *hdrhistogram.Histogram) {
		a := hdrhistogram.New(1, 5000, 3)
		b := hdrhistogram.New(1, 5000, 3)
		c := hdrhistogram.New(1, 5000, 3)
		recordRange(t, a, 1, 500)
		recordRange(t, b, 200, 900)
		recordRange(t, c, 4000, 4100)
		return a, b, c
	}

	a, b, c := build()
	first, err := histo.Aggregate(series.Series{a, b, c}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := histo.Aggregate(series.Series{c, a, b}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.TotalCount() != second.TotalCount() {
		t.Fatalf("total counts differ: %d vs %d", first.TotalCount(), second.TotalCount())
	}
	for _, q := range []float64{10, 50, 90, 99, 100} {
		if first.ValueAtQuantile(q) != second.ValueAtQuantile(q) {
			t.Errorf("quantile %g differs: %d vs %d", q, first.ValueAtQuantile(q), second.ValueAtQuantile(q))
		}
	}
}

func TestAggregateEmptySeries(t *testing.T) {
	empty := hdrhistogram.New(1, 1000, 3)
	_, err := histo.Aggregate(series.Series{empty}, 3)
	if !errors.Is(err, series.ErrEmptySeries) {
		t.Errorf("expected ErrEmptySeries, got %v", err)
	}
}

func TestLinearCoversRange(t *testing.T) {
	h := hdrhistogram.New(1, 1000, 3)
	recordRange(t, h, 1, 1000)

	steps := histo.Linear(h, 100)
	if len(steps) == 0 {
		t.Fatal("expected steps, got none")
	}

	var total int64
	for i, s := range steps {
		total += s.Count
		if s.From != float64(i)*100 || s.To != float64(i+1)*100 {
			t.Errorf("step %d has bounds [%g, %g)", i, s.From, s.To)
		}
	}
	if total != 1000 {
		t.Errorf("expected steps to account for 1000 values, got %d", total)
	}

	last := steps[len(steps)-1]
	if last.Percentile != 100.0 {
		t.Errorf("expected final cumulative percentile 100, got %g", last.Percentile)
	}
	if last.Count == 0 {
		t.Error("final step should contain the maximum value")
	}
}

func TestLinearPercentileMonotonic(t *testing.T) {
	h := hdrhistogram.New(1, 100000, 3)
	recordRange(t, h, 1, 5000)

	prev := 0.0
	for i, s := range histo.Linear(h, 37.5) {
		if s.Percentile < prev {
			t.Fatalf("percentile decreased at step %d: %g after %g", i, s.Percentile, prev)
		}
		prev = s.Percentile
	}
}

func TestLinearIncludesEmptyBuckets(t *testing.T) {
	h := hdrhistogram.New(1, 1000, 3)
	if err := h.RecordValue(1); err != nil {
		t.Fatal(err)
	}
	if err := h.RecordValue(900); err != nil {
		t.Fatal(err)
	}

	steps := histo.Linear(h, 10)
	if len(steps) < 10 {
		t.Fatalf("expected a step per bucket up to the max, got %d", len(steps))
	}
	var empty int
	for _, s := range steps {
		if s.Count == 0 {
			empty++
		}
	}
	if empty == 0 {
		t.Error("expected empty steps between the two recorded values")
	}
}

func TestLinearDegenerateInputs(t *testing.T) {
	h := hdrhistogram.New(1, 1000, 3)
	if steps := histo.Linear(h, 10); steps != nil {
		t.Errorf("expected nil for empty histogram, got %d steps", len(steps))
	}
	if err := h.RecordValue(5); err != nil {
		t.Fatal(err)
	}
	if steps := histo.Linear(h, 0); steps != nil {
		t.Errorf("expected nil for zero width, got %d steps", len(steps))
	}
}

func TestValueAtPercentileUnits(t *testing.T) {
	h := hdrhistogram.New(1, 10_000_000, 3)
	if err := h.RecordValue(2_000_000); err != nil {
		t.Fatal(err)
	}

	rawV := histo.ValueAtPercentile(h, 100, true)
	displayV := histo.ValueAtPercentile(h, 100, false)
	if rawV < 1_990_000 || rawV > 2_010_000 {
		t.Errorf("raw value out of range: %g", rawV)
	}
	if displayV < 1.99 || displayV > 2.01 {
		t.Errorf("display value out of range: %g", displayV)
	}
}
