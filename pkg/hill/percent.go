package hill

import "math"

// Phase names used for the two halves of the hill.
const (
	PhaseUphill   = "Problem Analysis"
	PhaseDownhill = "Executing Plan"
)

// PhaseOf returns the phase a progress value falls into. The midpoint
// itself belongs to the downhill phase.
func PhaseOf(progress float64) string {
	if progress < 0.5 {
		return PhaseUphill
	}
	return PhaseDownhill
}

func percent(progress float64) int {
	return int(math.Round(progress * 100))
}
