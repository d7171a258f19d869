// Package distribution derives normalized curves from bucketed histograms:
// probability densities, percentile-vs-value curves, and per-slice density
// families for stability comparison.
package distribution

import (
	"errors"
	"fmt"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/hdrscope/hdrscope/internal/histo"
	"github.com/hdrscope/hdrscope/internal/series"
	"github.com/hdrscope/hdrscope/internal/units"
)

// ErrNoStabilityData is returned when a series has fewer than two slices;
// stability analysis is undefined for a single slice. Callers report it as a
// warning and continue with other analyses.
var ErrNoStabilityData = errors.New("not enough slices for stability analysis")

// ErrUnknownPlotKind flags a request for a curve kind outside the three
// supported ones. This is a programmer error.
var ErrUnknownPlotKind = errors.New("unknown plot kind")

// Kind names one of the produced curve families.
type Kind string

const (
	KindBaseplot    Kind = "baseplot"
	KindPercentiles Kind = "percentiles"
	KindStability   Kind = "stability"
)

// Valid reports whether k is one of the supported plot kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindBaseplot, KindPercentiles, KindStability:
		return true
	}
	return false
}

// ParseKind validates a plot kind name.
func ParseKind(name string) (Kind, error) {
	k := Kind(name)
	if !k.Valid() {
		return "", fmt.Errorf("%w %q", ErrUnknownPlotKind, name)
	}
	return k, nil
}

// Curve is a pair of equal-length ordered x/y sequences, in display units
// unless raw mode was requested when it was computed.
type Curve struct {
	Xs []float64
	Ys []float64
}

// Len returns the number of points in the curve.
func (c Curve) Len() int {
	return len(c.Xs)
}

// Density computes the normalized distribution curve of h. bucketWidth is in
// display units (raw units when raw is set) and becomes the fixed bucket
// width of the iteration. Buckets whose cumulative percentile exceeds
// maxPercentile are dropped; that is the documented long-tail cutoff. A
// histogram with no samples yields an empty curve, never an error.
//
// Each y is count/(totalCount*bucketWidth), so the curve integrates to 1
// over its domain regardless of sample count or bucket width.
func Density(h *hdrhistogram.Histogram, bucketWidth, maxPercentile float64, raw bool) Curve {
	scale := units.Scale
	if raw {
		scale = 1.0
	}
	widthRaw := bucketWidth * scale

	if h.TotalCount() == 0 {
		return Curve{}
	}

	total := float64(h.TotalCount())
	var xs, ys []float64
	for _, step := range histo.Linear(h, widthRaw) {
		if step.Percentile > maxPercentile {
			continue
		}
		mid := 0.5 * (step.From + step.To)
		xs = append(xs, mid/scale)
		ys = append(ys, float64(step.Count)/(total*bucketWidth))
	}
	return Curve{Xs: xs, Ys: ys}
}

// PercentileCurve integrates a density curve into a percentile-vs-value
// curve. The running percentile becomes the x axis and the density curve's
// value axis becomes the y axis. The prefix sum is strictly sequential and
// preserves input order, so the x output is non-decreasing for non-negative
// density input.
func PercentileCurve(density Curve, bucketWidth float64) Curve {
	pxs := make([]float64, len(density.Ys))
	running := 0.0
	for i, y := range density.Ys {
		running += y
		pxs[i] = running * bucketWidth * 100.0
	}
	return Curve{
		Xs: pxs,
		Ys: append([]float64(nil), density.Xs...),
	}
}

// StabilityCurves computes one density curve per slice and aligns them on a
// shared x axis: the x sequence of the longest curve (first occurrence wins
// ties) is adopted by every curve, and shorter curves are right-padded with
// trailing zero y values.
//
// Padding assumes every curve's x grid is a prefix of the longest one, which
// holds when all slices share the aggregation range and bucket width. Grids
// diverging before the shorter curve ends are silently misaligned.
func StabilityCurves(s series.Series, bucketWidth, maxPercentile float64, raw bool) ([]Curve, error) {
	if len(s) < 2 {
		return nil, ErrNoStabilityData
	}

	curves := make([]Curve, len(s))
	for i, sl := range s {
		curves[i] = Density(sl, bucketWidth, maxPercentile, raw)
	}

	fullXs := curves[0].Xs
	for _, c := range curves[1:] {
		if len(c.Xs) > len(fullXs) {
			fullXs = c.Xs
		}
	}

	for i, c := range curves {
		ys := append([]float64(nil), c.Ys...)
		for len(ys) < len(fullXs) {
			ys = append(ys, 0)
		}
		curves[i] = Curve{Xs: fullXs, Ys: ys}
	}
	return curves, nil
}
