// Package histo merges slice series into combined histograms and provides
// fixed-width linear iteration over bucketed counts.
package histo

import (
	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/hdrscope/hdrscope/internal/series"
	"github.com/hdrscope/hdrscope/internal/units"
)

// Aggregate merges every slice in the series into one histogram covering
// [1, maxRaw+1] at the given significant-figure precision. The precision must
// match the one the source histograms were recorded with, or bucket
// boundaries will not correspond exactly across merges. Merge order does not
// affect the result.
func Aggregate(s series.Series, sigFigures int) (*hdrhistogram.Histogram, error) {
	if s.TotalCount() == 0 {
		return nil, series.ErrEmptySeries
	}
	var maxRaw int64
	for _, sl := range s {
		if v := sl.Max(); v > maxRaw {
			maxRaw = v
		}
	}
	full := hdrhistogram.New(1, maxRaw+1, sigFigures)
	for _, sl := range s {
		full.Merge(sl)
	}
	return full, nil
}

// ValueAtPercentile returns the histogram value at the given percentile in
// raw or display units.
func ValueAtPercentile(h *hdrhistogram.Histogram, percentile float64, raw bool) float64 {
	v := float64(h.ValueAtQuantile(percentile))
	if raw {
		return v
	}
	return units.ToDisplay(v)
}
