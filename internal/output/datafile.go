// Package output turns extracted curves into flat data files, HTML chart
// reports, text breakdowns and a terminal viewer.
package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/gofrs/flock"

	"github.com/hdrscope/hdrscope/internal/distribution"
)

// CanCreateFile reports whether path may be written under the given
// overwrite policy.
func CanCreateFile(path string, overwrite bool) bool {
	if overwrite {
		return true
	}
	_, err := os.Stat(path)
	return os.IsNotExist(err)
}

// WriteDatafile dumps curves as tab-separated rows, one row per x value:
// "x\ty" for single-curve kinds, "x\ty1\ty2..." for stability output, whose
// curves are expected to be pre-padded to a shared x axis. The destination
// is guarded with a file lock so concurrent runs sharing a file root do not
// interleave writes.
func WriteDatafile(kind distribution.Kind, curves []distribution.Curve, path string) error {
	if !kind.Valid() {
		return fmt.Errorf("%w %q", distribution.ErrUnknownPlotKind, kind)
	}
	if len(curves) == 0 {
		return fmt.Errorf("no curves to dump for %q", kind)
	}

	var b strings.Builder
	switch kind {
	case distribution.KindBaseplot, distribution.KindPercentiles:
		c := curves[0]
		for i := range c.Xs {
			fmt.Fprintf(&b, "%e\t%e\n", c.Xs[i], c.Ys[i])
		}
	case distribution.KindStability:
		xs := curves[0].Xs
		for i := range xs {
			fmt.Fprintf(&b, "%e", xs[i])
			for _, c := range curves {
				fmt.Fprintf(&b, "\t%e", c.Ys[i])
			}
			b.WriteByte('\n')
		}
	}

	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("locking %s: %w", path, err)
	}
	if !locked {
		return fmt.Errorf("output file %s is locked by another process", path)
	}
	defer lock.Unlock()

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing datafile: %w", err)
	}
	return nil
}
