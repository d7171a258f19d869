// Package series holds decoded interval histograms grouped by metric tag and
// time-ordered, and exposes the summary reductions used by inspection and
// analysis. A Repository is immutable once loaded.
package series

import (
	"errors"
	"fmt"
	"sort"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/hdrscope/hdrscope/internal/hdrlog"
	"github.com/hdrscope/hdrscope/internal/units"
)

// ErrEmptySeries is returned by min/max reductions over a series with no
// recorded values, and by aggregation when no slice has any samples.
var ErrEmptySeries = errors.New("series has no recorded values")

// Series is a sequence of interval histograms sharing one tag, sorted
// ascending by interval start time.
type Series []*hdrhistogram.Histogram

// Repository maps metric tags to their time-ordered slice series.
type Repository struct {
	byTag map[string]Series
	tags  []string
}

// Load decodes every interval histogram in the log at path and groups them
// by tag. Grouping is a stable partition and each group is sorted by start
// timestamp with a stable sort, so slices with equal start times keep their
// file order.
func Load(path string) (*Repository, error) {
	slices, err := hdrlog.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Group(slices), nil
}

// Group builds a repository from already-decoded interval histograms.
func Group(slices []*hdrhistogram.Histogram) *Repository {
	byTag := make(map[string]Series)
	var tags []string
	for _, sl := range slices {
		tag := sl.Tag()
		if _, seen := byTag[tag]; !seen {
			tags = append(tags, tag)
		}
		byTag[tag] = append(byTag[tag], sl)
	}
	for _, group := range byTag {
		group := group
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].StartTimeMs() < group[j].StartTimeMs()
		})
	}
	sort.Strings(tags)
	return &Repository{byTag: byTag, tags: tags}
}

// Tags returns the sorted list of metric tags present in the repository.
func (r *Repository) Tags() []string {
	return append([]string(nil), r.tags...)
}

// Series returns the slice series for a tag.
func (r *Repository) Series(tag string) (Series, error) {
	s, ok := r.byTag[tag]
	if !ok {
		return nil, fmt.Errorf("unknown metric tag %q", tag)
	}
	return s, nil
}

// Len returns the number of distinct tags.
func (r *Repository) Len() int {
	return len(r.tags)
}

// StartTimeMs returns the earliest interval start across every tag.
func (r *Repository) StartTimeMs() (int64, error) {
	first := true
	var earliest int64
	for _, s := range r.byTag {
		t, err := s.StartTimeMs()
		if err != nil {
			continue
		}
		if first || t < earliest {
			earliest = t
			first = false
		}
	}
	if first {
		return 0, ErrEmptySeries
	}
	return earliest, nil
}

// EndTimeMs returns the latest interval end across every tag.
func (r *Repository) EndTimeMs() (int64, error) {
	first := true
	var latest int64
	for _, s := range r.byTag {
		t, err := s.EndTimeMs()
		if err != nil {
			continue
		}
		if first || t > latest {
			latest = t
			first = false
		}
	}
	if first {
		return 0, ErrEmptySeries
	}
	return latest, nil
}

// StartTimeMs returns the earliest interval start in the series.
func (s Series) StartTimeMs() (int64, error) {
	if len(s) == 0 {
		return 0, ErrEmptySeries
	}
	earliest := s[0].StartTimeMs()
	for _, sl := range s[1:] {
		if t := sl.StartTimeMs(); t < earliest {
			earliest = t
		}
	}
	return earliest, nil
}

// EndTimeMs returns the latest interval end in the series.
func (s Series) EndTimeMs() (int64, error) {
	if len(s) == 0 {
		return 0, ErrEmptySeries
	}
	latest := s[0].EndTimeMs()
	for _, sl := range s[1:] {
		if t := sl.EndTimeMs(); t > latest {
			latest = t
		}
	}
	return latest, nil
}

// MinValue returns the smallest recorded value across the series, in raw or
// display units. Slices with no samples report a zero minimum, mirroring the
// underlying histograms.
func (s Series) MinValue(raw bool) (float64, error) {
	if s.TotalCount() == 0 {
		return 0, ErrEmptySeries
	}
	min := SliceMinValue(s[0], raw)
	for _, sl := range s[1:] {
		if v := SliceMinValue(sl, raw); v < min {
			min = v
		}
	}
	return min, nil
}

// MaxValue returns the largest recorded value across the series, in raw or
// display units.
func (s Series) MaxValue(raw bool) (float64, error) {
	if s.TotalCount() == 0 {
		return 0, ErrEmptySeries
	}
	max := SliceMaxValue(s[0], raw)
	for _, sl := range s[1:] {
		if v := SliceMaxValue(sl, raw); v > max {
			max = v
		}
	}
	return max, nil
}

// NonEmptyCount returns the number of slices with at least one sample.
func (s Series) NonEmptyCount() int {
	n := 0
	for _, sl := range s {
		if sl.TotalCount() > 0 {
			n++
		}
	}
	return n
}

// TotalCount returns the sum of every slice's sample count.
func (s Series) TotalCount() int64 {
	var total int64
	for _, sl := range s {
		total += sl.TotalCount()
	}
	return total
}

// SliceMinValue returns one slice's minimum in the requested unit.
func SliceMinValue(sl *hdrhistogram.Histogram, raw bool) float64 {
	if raw {
		return float64(sl.Min())
	}
	return units.ToDisplay(float64(sl.Min()))
}

// SliceMaxValue returns one slice's maximum in the requested unit.
func SliceMaxValue(sl *hdrhistogram.Histogram, raw bool) float64 {
	if raw {
		return float64(sl.Max())
	}
	return units.ToDisplay(float64(sl.Max()))
}
