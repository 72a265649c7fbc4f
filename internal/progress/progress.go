// Package progress derives a 0..100 completion figure for an application
// from its current stage name and the owning job's pipeline.
package progress

import (
	"math"
	"strings"

	"jobmate/hiring-service/internal/model"
	"jobmate/hiring-service/internal/pipeline"
)

// IsHired reports whether a stage name marks a successful end state.
func IsHired(stage string) bool {
	return strings.Contains(strings.ToLower(stage), "hired")
}

// IsRejected reports whether a stage name marks a rejection.
func IsRejected(stage string) bool {
	return strings.Contains(strings.ToLower(stage), "rejected")
}

// IsTerminal reports whether a stage name ends the pipeline.
func IsTerminal(stage string) bool {
	return IsHired(stage) || IsRejected(stage)
}

// Percent returns the rounded completion percentage of currentStage within p.
//
// Unknown stages score 0. Terminal stages score 100. Otherwise the score is
// the 1-based position of the stage among the non-rejected stages over their
// count. A nil pipeline scores 0.
func Percent(currentStage string, p *model.Pipeline) int {
	if p == nil {
		return 0
	}
	sorted := p.SortedStages()
	idx := pipeline.IndexOf(sorted, currentStage)
	if idx < 0 {
		// Second lookup against the stored order. Both lists hold the same
		// names, so this only matters if the lookup rule above changes.
		raw := pipeline.IndexOf(p.Stages, currentStage)
		if raw < 0 {
			return 0
		}
		return ratio(raw+1, len(p.Stages))
	}
	if IsTerminal(currentStage) {
		return 100
	}

	forward := make([]model.Stage, 0, len(sorted))
	for _, s := range sorted {
		if !IsRejected(s.Name) {
			forward = append(forward, s)
		}
	}
	pos := pipeline.IndexOf(forward, currentStage)
	if pos < 0 {
		return ratio(idx+1, len(sorted))
	}
	return ratio(pos+1, len(forward))
}

func ratio(n, d int) int {
	if d == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(d) * 100))
}
