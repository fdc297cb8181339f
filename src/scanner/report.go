package scanner

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"artifact-scanner/src/artifact"
)

// ErrorStat counts failures by category.
type ErrorStat map[Category]int

func (s ErrorStat) Add(c Category) { s[c]++ }

func (s ErrorStat) Total() int {
	n := 0
	for _, v := range s {
		n += v
	}
	return n
}

// Outcome is the terminal state of a scan.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeAborted   Outcome = "aborted"
)

// Timing summarizes per-item durations from click to acceptance.
type Timing struct {
	Count  int
	Mean   time.Duration
	StdDev time.Duration
	P95    time.Duration
}

func summarize(samples []time.Duration) Timing {
	if len(samples) == 0 {
		return Timing{}
	}
	xs := make([]float64, len(samples))
	for i, d := range samples {
		xs[i] = float64(d)
	}
	sort.Float64s(xs)
	t := Timing{
		Count: len(xs),
		Mean:  time.Duration(stat.Mean(xs, nil)),
		P95:   time.Duration(stat.Quantile(0.95, stat.Empirical, xs, nil)),
	}
	if len(xs) > 1 {
		t.StdDev = time.Duration(stat.StdDev(xs, nil))
	}
	return t
}

// Report is what a scan hands back whatever state it ended in. Records are
// in traversal order.
type Report struct {
	SessionID string
	Outcome   Outcome
	Cancelled bool
	Err       error

	Records []artifact.Artifact
	Stats   ErrorStat

	Total     int
	Processed int
	Accepted  int
	Skipped   int
	Filtered  int
	SkippedBy map[Category]int

	Timing   Timing
	Started  time.Time
	Finished time.Time
}

func (r Report) Elapsed() time.Duration { return r.Finished.Sub(r.Started) }

// Summary renders the end-of-run text shown to the user.
func (r Report) Summary() string {
	var b strings.Builder
	switch {
	case r.Cancelled:
		fmt.Fprintf(&b, "Scan cancelled after %d of %d items.\n", r.Processed, r.Total)
	case r.Outcome == OutcomeAborted:
		fmt.Fprintf(&b, "Scan aborted after %d of %d items: %v\n", r.Processed, r.Total, r.Err)
	default:
		fmt.Fprintf(&b, "Scan completed: %d items.\n", r.Processed)
	}
	fmt.Fprintf(&b, "Accepted: %d  Skipped: %d  Filtered: %d\n", r.Accepted, r.Skipped, r.Filtered)

	for _, c := range Categories {
		if n := r.SkippedBy[c]; n > 0 {
			fmt.Fprintf(&b, "  skipped (%s): %d\n", c, n)
		}
	}
	if r.Stats.Total() > 0 {
		b.WriteString("Errors:\n")
		for _, c := range Categories {
			n := r.Stats[c]
			if n == 0 {
				continue
			}
			fmt.Fprintf(&b, "  %s: %d", c, n)
			if h := Hint(c); h != "" {
				fmt.Fprintf(&b, " (%s)", h)
			}
			b.WriteByte('\n')
		}
	}
	if r.Timing.Count > 0 {
		fmt.Fprintf(&b, "Per item: mean %v, std-dev %v, p95 %v\n",
			r.Timing.Mean.Round(time.Millisecond), r.Timing.StdDev.Round(time.Millisecond), r.Timing.P95.Round(time.Millisecond))
	}
	fmt.Fprintf(&b, "Elapsed: %v\n", r.Elapsed().Round(time.Millisecond))
	return b.String()
}
