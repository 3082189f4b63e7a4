// Package results holds what a run produced: the per-job item lists
// that become results.json and the summary printed at the end.
package results

import (
	"fmt"
	"io"
	"time"

	"craftdex-engine/internal/extract"
)

// Set maps job names to their extracted items. It remembers insertion
// order so downstream walkers (the price books) stay deterministic.
type Set struct {
	order []string
	byJob map[string][]extract.Item
}

func NewSet() *Set {
	return &Set{byJob: make(map[string][]extract.Item)}
}

// Add records items under job. Adding the same job again replaces its
// items.
func (s *Set) Add(job string, items []extract.Item) {
	if _, ok := s.byJob[job]; !ok {
		s.order = append(s.order, job)
	}
	s.byJob[job] = items
}

func (s *Set) Len() int { return len(s.order) }

// Jobs returns job names in the order they were added.
func (s *Set) Jobs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Set) Items(job string) []extract.Item { return s.byJob[job] }

// ByJob returns the mapping persisted as results.json. encoding/json
// sorts map keys on write, which keeps the file diffable.
func (s *Set) ByJob() map[string][]extract.Item {
	out := make(map[string][]extract.Item, len(s.byJob))
	for k, v := range s.byJob {
		out[k] = v
	}
	return out
}

func (s *Set) TotalItems() int {
	n := 0
	for _, items := range s.byJob {
		n += len(items)
	}
	return n
}

// Outcome is one job's fate within a run.
type Outcome struct {
	Job     string
	Items   int
	Elapsed time.Duration
	Err     error
}

// Summary collects job outcomes for the end-of-run report.
type Summary struct {
	RunID     string
	Started   time.Time
	Completed time.Time
	Succeeded []Outcome
	Failed    []Outcome
}

func NewSummary(runID string) *Summary {
	return &Summary{RunID: runID, Started: time.Now()}
}

func (s *Summary) AddSuccess(job string, items int, elapsed time.Duration) {
	s.Succeeded = append(s.Succeeded, Outcome{Job: job, Items: items, Elapsed: elapsed})
}

func (s *Summary) AddFailure(job string, elapsed time.Duration, err error) {
	s.Failed = append(s.Failed, Outcome{Job: job, Elapsed: elapsed, Err: err})
}

// Ok reports whether at least one job made it through.
func (s *Summary) Ok() bool { return len(s.Succeeded) > 0 }

func (s *Summary) TotalItems() int {
	n := 0
	for _, o := range s.Succeeded {
		n += o.Items
	}
	return n
}

func (s *Summary) Finish() { s.Completed = time.Now() }

// Print writes the human-readable run report.
func (s *Summary) Print(w io.Writer, outPath string) {
	completed := s.Completed
	if completed.IsZero() {
		completed = time.Now()
	}

	fmt.Fprintln(w, "\n=== Run Summary ===")
	fmt.Fprintf(w, "Run ID:       %s\n", s.RunID)
	fmt.Fprintf(w, "Jobs:         %d succeeded, %d failed\n", len(s.Succeeded), len(s.Failed))
	for _, o := range s.Succeeded {
		fmt.Fprintf(w, "  ok    %-20s %4d items in %s\n", o.Job, o.Items, o.Elapsed.Round(time.Millisecond))
	}
	for _, o := range s.Failed {
		fmt.Fprintf(w, "  FAIL  %-20s %v\n", o.Job, o.Err)
	}
	fmt.Fprintf(w, "Total Items:  %d\n", s.TotalItems())
	if outPath != "" {
		fmt.Fprintf(w, "Output:       %s\n", outPath)
	}
	fmt.Fprintf(w, "Completed At: %s\n", completed.Format(time.RFC3339))
}
