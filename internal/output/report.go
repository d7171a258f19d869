package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hdrscope/hdrscope/internal/distribution"
	"github.com/hdrscope/hdrscope/internal/series"
	"github.com/hdrscope/hdrscope/internal/units"
)

// DateFormat is used for every absolute timestamp printed by the breakdown.
const DateFormat = "2006-01-02 15:04:05.000"

// PrintInspect outputs a detailed breakdown of the loaded log: global time
// range, per-tag value counts and ranges, then each slice relative to the
// log start.
func PrintInspect(w io.Writer, path string, repo *series.Repository, raw bool) {
	t0, err := repo.StartTimeMs()
	if err != nil {
		fmt.Fprintf(w, "Histogram log details for %q: no recorded values\n", path)
		return
	}
	t1, _ := repo.EndTimeMs()
	unitName := units.Name(raw)

	fmt.Fprintf(w, "Histogram log details for %q\n", path)
	fmt.Fprintf(w, "  Start time: %s\n", time.UnixMilli(t0).Format(DateFormat))
	fmt.Fprintf(w, "  End time:   %s\n", time.UnixMilli(t1).Format(DateFormat))
	fmt.Fprintf(w, "  Time interval covered: %d ms\n", t1-t0)
	fmt.Fprintln(w, `    (time refs below are relative to "Start time")`)
	fmt.Fprintf(w, "  Tags (%d total):\n", repo.Len())

	for _, sum := range series.Summarize(repo, raw) {
		s, err := repo.Series(sum.Tag)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "    Tag %q, %d slices.\n", sum.Tag, sum.Slices)
		fmt.Fprintf(w, "      Values: %d (ranging %.2f to %.2f %s)\n",
			sum.Values, sum.MinValue, sum.MaxValue, unitName)
		fmt.Fprintf(w, "      Time interval: %6d to %6d (%6d ms total)\n",
			sum.StartTimeMs-t0, sum.EndTimeMs-t0, sum.CoveredMs)
		fmt.Fprintln(w, "      Slices:")
		for i, sl := range s {
			rangeInfo := ""
			if sl.TotalCount() > 0 {
				rangeInfo = fmt.Sprintf(", ranging %8.2f to %8.2f %s",
					series.SliceMinValue(sl, raw), series.SliceMaxValue(sl, raw), unitName)
			}
			fmt.Fprintf(w, "        (%3d) %12d vals, t = %6d to %6d (%6d ms)%s\n",
				i,
				sl.TotalCount(),
				sl.StartTimeMs()-t0,
				sl.EndTimeMs()-t0,
				sl.EndTimeMs()-sl.StartTimeMs(),
				rangeInfo,
			)
		}
	}
}

// Summary is the JSON digest of one analysis run.
type Summary struct {
	RunID       string              `json:"run_id"`
	GeneratedAt string              `json:"generated_at"`
	InputFile   string              `json:"input_file"`
	Unit        string              `json:"unit"`
	Metric      string              `json:"metric,omitempty"`
	StartTimeMs int64               `json:"start_time_ms"`
	EndTimeMs   int64               `json:"end_time_ms"`
	Tags        []series.TagSummary `json:"tags"`
	CurvePoints map[string]int      `json:"curve_points,omitempty"`
}

// NewSummary digests a repository and the computed curves for JSON output.
func NewSummary(path, metric string, repo *series.Repository, curves map[distribution.Kind][]distribution.Curve, raw bool) Summary {
	s := Summary{
		RunID:       ulid.Make().String(),
		GeneratedAt: time.Now().Format(time.RFC3339),
		InputFile:   path,
		Unit:        units.Name(raw),
		Metric:      metric,
		Tags:        series.Summarize(repo, raw),
	}
	if t0, err := repo.StartTimeMs(); err == nil {
		s.StartTimeMs = t0
	}
	if t1, err := repo.EndTimeMs(); err == nil {
		s.EndTimeMs = t1
	}
	if len(curves) > 0 {
		s.CurvePoints = make(map[string]int, len(curves))
		for kind, cs := range curves {
			points := 0
			for _, c := range cs {
				points += c.Len()
			}
			s.CurvePoints[string(kind)] = points
		}
	}
	return s
}

// PrintJSONSummary outputs an indented JSON summary.
func PrintJSONSummary(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
