package series

// TagSummary is the per-tag digest used by the inspection views and the
// interactive metric picker. Values are in raw or display units depending on
// how it was built.
type TagSummary struct {
	Tag            string  `json:"tag"`
	Slices         int     `json:"slices"`
	NonEmptySlices int     `json:"non_empty_slices"`
	Values         int64   `json:"values"`
	MinValue       float64 `json:"min_value"`
	MaxValue       float64 `json:"max_value"`
	StartTimeMs    int64   `json:"start_time_ms"`
	EndTimeMs      int64   `json:"end_time_ms"`
	CoveredMs      int64   `json:"covered_ms"`
}

// Summarize digests every tag in the repository, in sorted tag order.
func Summarize(r *Repository, raw bool) []TagSummary {
	summaries := make([]TagSummary, 0, r.Len())
	for _, tag := range r.tags {
		s := r.byTag[tag]
		sum := TagSummary{
			Tag:            tag,
			Slices:         len(s),
			NonEmptySlices: s.NonEmptyCount(),
			Values:         s.TotalCount(),
		}
		if min, err := s.MinValue(raw); err == nil {
			sum.MinValue = min
		}
		if max, err := s.MaxValue(raw); err == nil {
			sum.MaxValue = max
		}
		if t0, err := s.StartTimeMs(); err == nil {
			sum.StartTimeMs = t0
		}
		if t1, err := s.EndTimeMs(); err == nil {
			sum.EndTimeMs = t1
		}
		sum.CoveredMs = sum.EndTimeMs - sum.StartTimeMs
		summaries = append(summaries, sum)
	}
	return summaries
}
