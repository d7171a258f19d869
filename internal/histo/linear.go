package histo

import (
	"github.com/HdrHistogram/hdrhistogram-go"
)

// Step is one equal-width bucket produced by Linear iteration. Bounds are in
// raw histogram units; Percentile is the cumulative percentile reached once
// this step's count has been added.
type Step struct {
	From       float64
	To         float64
	Count      int64
	Percentile float64
}

// Linear walks the histogram in equal-width buckets of the given raw-unit
// width, from zero through the bucket containing the highest recorded value,
// including empty buckets in between. A recorded sub-bucket contributes its
// count to the step containing its highest equivalent value, matching HDR
// linear iteration semantics.
func Linear(h *hdrhistogram.Histogram, width float64) []Step {
	total := h.TotalCount()
	if width <= 0 || total == 0 {
		return nil
	}

	lastIdx := 0
	for _, bar := range h.Distribution() {
		if bar.Count == 0 {
			continue
		}
		if idx := int(float64(bar.To) / width); idx > lastIdx {
			lastIdx = idx
		}
	}
	counts := make([]int64, lastIdx+1)
	for _, bar := range h.Distribution() {
		if bar.Count == 0 {
			continue
		}
		counts[int(float64(bar.To)/width)] += bar.Count
	}

	steps := make([]Step, len(counts))
	var cumulative int64
	for i, c := range counts {
		cumulative += c
		steps[i] = Step{
			From:       float64(i) * width,
			To:         float64(i+1) * width,
			Count:      c,
			Percentile: 100.0 * float64(cumulative) / float64(total),
		}
	}
	return steps
}
