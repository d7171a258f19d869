// Package hdrlog decodes histogram log files (format version 1.2/1.3) into
// interval histograms. The line format — #[StartTime:]/#[BaseTime:] comment
// headers, the CSV legend, tagged base64 interval lines and the
// relative-vs-absolute interval timestamp heuristic — is handled by the
// histogram library's log reader; this package adds the error contract the
// rest of the pipeline relies on.
package hdrlog

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// ErrLogFormat is returned when the input log cannot be decoded. The load is
// aborted on the first malformed record; logs are append-only and trusted, so
// partial corruption is not worked around.
var ErrLogFormat = errors.New("malformed histogram log")

// Reader decodes interval histograms from a histogram log stream, one per
// call, in file order. Decoded histograms carry their tag and absolute
// start/end timestamps (ms).
type Reader struct {
	inner    *hdrhistogram.HistogramLogReader
	interval int
}

// NewReader returns a Reader consuming the given log stream.
func NewReader(r io.Reader) *Reader {
	return &Reader{inner: hdrhistogram.NewHistogramLogReader(r)}
}

// NextIntervalHistogram returns the next interval histogram in the log, or
// (nil, nil) once the log is exhausted. Every decode failure is reported as a
// wrapped ErrLogFormat.
func (r *Reader) NextIntervalHistogram() (h *hdrhistogram.Histogram, err error) {
	// A truncated or corrupt payload can make the payload decoder slice out
	// of range instead of returning an error; surface that as a malformed
	// record rather than crashing the load.
	defer func() {
		if rec := recover(); rec != nil {
			h = nil
			err = r.fail(fmt.Errorf("%v", rec))
		}
	}()

	h, err = r.inner.NextIntervalHistogram()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, r.fail(err)
	}
	if h != nil {
		r.interval++
	}
	return h, nil
}

func (r *Reader) fail(err error) error {
	return fmt.Errorf("%w: interval %d: %v", ErrLogFormat, r.interval+1, err)
}

// ReadAll drains the reader, returning every interval histogram in file order.
func ReadAll(r *Reader) ([]*hdrhistogram.Histogram, error) {
	var all []*hdrhistogram.Histogram
	for {
		h, err := r.NextIntervalHistogram()
		if err != nil {
			return nil, err
		}
		if h == nil {
			return all, nil
		}
		all = append(all, h)
	}
}

// ReadFile decodes every interval histogram contained in the log at path.
func ReadFile(path string) ([]*hdrhistogram.Histogram, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening histogram log: %w", err)
	}
	defer f.Close()
	return ReadAll(NewReader(f))
}
