package embed

// ScoreFunc combines a trial trajectory cost with the height of the
// nominating continuity peak into the value the search minimizes.
type ScoreFunc func(cost, height float64) float64

// ScoringFor returns the run-wide scoring rule, fixed once per run from
// the channel count: multivariate inputs weight the cost by the peak
// height so channels compete on continuity strength as well as cost,
// univariate inputs use the cost alone.
func ScoringFor(channels int) ScoreFunc {
	if channels > 1 {
		return func(cost, height float64) float64 { return cost * height }
	}
	return func(cost, _ float64) float64 { return cost }
}
