package server

import (
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/patham9/YAN/internal/engine"
)

// maxSummaryItems caps each section of the summary.
const maxSummaryItems = 15

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(s.buildSummary()))
}

// buildSummary renders the strongest beliefs, the learned implications and
// the recent journal runs as markdown.
func (s *Server) buildSummary() string {
	snap := s.engine.Snapshot()

	var b strings.Builder
	fmt.Fprintf(&b, "## YAN memory at t=%d\n", snap.Time)
	fmt.Fprintf(&b, "%d concepts, %d cycling events\n", len(snap.Concepts), len(snap.Cycling))

	type rankedBelief struct {
		statement string
		truth     string
		score     float64
	}
	var beliefs []rankedBelief
	var implications []engine.ImplicationView
	for _, c := range snap.Concepts {
		implications = append(implications, c.Preconditions...)
		if c.Belief == nil {
			continue
		}
		beliefs = append(beliefs, rankedBelief{
			statement: c.Belief.Term + c.Belief.Punctuation,
			truth:     fmt.Sprintf("%%%.2f;%.2f%%", c.Belief.Frequency, c.Belief.Confidence),
			score:     conceptScore(c),
		})
	}

	sort.SliceStable(beliefs, func(i, j int) bool {
		return beliefs[i].score > beliefs[j].score
	})
	if len(beliefs) > maxSummaryItems {
		beliefs = beliefs[:maxSummaryItems]
	}
	if len(beliefs) > 0 {
		b.WriteString("\n### Strongest Beliefs\n")
		for _, bl := range beliefs {
			fmt.Fprintf(&b, "- %s %s\n", bl.statement, bl.truth)
		}
	}

	sort.SliceStable(implications, func(i, j int) bool {
		return expectation(implications[i]) > expectation(implications[j])
	})
	if len(implications) > maxSummaryItems {
		implications = implications[:maxSummaryItems]
	}
	if len(implications) > 0 {
		b.WriteString("\n### Learned Implications\n")
		for _, imp := range implications {
			fmt.Fprintf(&b, "- %s. %%%.2f;%.2f%% after %.1f steps\n", imp.Term, imp.Frequency, imp.Confidence, imp.Offset)
		}
	}

	if s.db != nil {
		runs, err := s.db.RecentRuns(5)
		if err == nil && len(runs) > 0 {
			b.WriteString("\n### Recent Runs\n")
			for _, run := range runs {
				ts := time.UnixMilli(run.StartedAt).Format("2006-01-02 15:04")
				label := run.Label
				if label == "" {
					label = "unlabeled"
				}
				marker := ""
				if run.RunID == s.runID {
					marker = " (this run)"
				}
				fmt.Fprintf(&b, "- [%s] %s: %s, %d records%s\n", ts, label, run.Status, run.RecordCount, marker)
			}
		}
	}

	return b.String()
}

// conceptScore ranks a concept's eternal belief: its expectation weighted by
// the concept priority, with diminishing returns for repeated use.
func conceptScore(c engine.ConceptView) float64 {
	use := 1.0
	if c.UseCount > 0 {
		use = 1.0 + math.Log2(float64(c.UseCount))
	}
	exp := c.Belief.Confidence*(c.Belief.Frequency-0.5) + 0.5
	return exp * c.Priority * use
}

func expectation(imp engine.ImplicationView) float64 {
	return imp.Confidence*(imp.Frequency-0.5) + 0.5
}
