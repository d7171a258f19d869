package output

import (
	"fmt"
	"os"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/gofrs/flock"

	"github.com/hdrscope/hdrscope/internal/series"
)

// ExportLog writes the slices of a single tag back out as a histogram log
// file, untagged, so the result can be consumed by tools that do not
// understand tagged logs.
func ExportLog(path string, s series.Series, overwrite bool) error {
	if len(s) == 0 {
		return series.ErrEmptySeries
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("file %q already exists (use force to overwrite)", path)
		}
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to lock %q: %w", path, err)
	}
	if !locked {
		return fmt.Errorf("file %q is locked by another process", path)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(path + ".lock")
	}()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", path, err)
	}
	defer f.Close()

	lw := hdrhistogram.NewHistogramLogWriter(f)
	if err := lw.OutputLogFormatVersion(); err != nil {
		return fmt.Errorf("failed to write log header: %w", err)
	}
	start, err := s.StartTimeMs()
	if err != nil {
		return err
	}
	if err := lw.OutputStartTime(start); err != nil {
		return fmt.Errorf("failed to write start time: %w", err)
	}
	lw.SetBaseTime(start)
	if err := lw.OutputLegend(); err != nil {
		return fmt.Errorf("failed to write legend: %w", err)
	}

	for _, slice := range s {
		out := hdrhistogram.Import(slice.Export())
		out.SetTag("")
		out.SetStartTimeMs(slice.StartTimeMs())
		out.SetEndTimeMs(slice.EndTimeMs())
		if err := lw.OutputIntervalHistogram(out); err != nil {
			return fmt.Errorf("failed to write interval: %w", err)
		}
	}
	return f.Sync()
}
