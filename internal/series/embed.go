package series

import "fmt"

// Trajectory is a reconstructed phase-space orbit: one row per time step,
// one column per embedding dimension.
type Trajectory [][]float64

func (y Trajectory) Len() int { return len(y) }

func (y Trajectory) Dims() int {
	if len(y) == 0 {
		return 0
	}
	return len(y[0])
}

// Embed builds a one-dimensional trajectory from a single channel shifted
// by lag samples.
func Embed(ch []float64, lag int) Trajectory {
	n := len(ch) - lag
	if n < 0 {
		n = 0
	}
	y := make(Trajectory, n)
	for i := 0; i < n; i++ {
		y[i] = []float64{ch[i+lag]}
	}
	return y
}

// Extend rebuilds y with channel ch delayed by lag appended as a trailing
// dimension. maxLag is the largest lag used to build y; the result shrinks
// when lag exceeds it. The input trajectory is never mutated.
func Extend(y Trajectory, ch []float64, lag, maxLag int) Trajectory {
	n := len(y)
	if lag > maxLag {
		n -= lag - maxLag
	}
	if n < 0 {
		n = 0
	}
	out := make(Trajectory, n)
	for i := 0; i < n; i++ {
		row := make([]float64, len(y[i])+1)
		copy(row, y[i])
		row[len(y[i])] = ch[i+lag]
		out[i] = row
	}
	return out
}

// Genembed replays a committed history of (lag, channel) pairs against s,
// building the full trajectory column by column.
func Genembed(s Set, lags []int, chans []int) (Trajectory, error) {
	if len(lags) == 0 || len(lags) != len(chans) {
		return nil, fmt.Errorf("history lengths differ: %d lags, %d channels", len(lags), len(chans))
	}
	for i := range lags {
		if lags[i] < 0 {
			return nil, fmt.Errorf("column %d: negative lag %d", i, lags[i])
		}
		if chans[i] < 0 || chans[i] >= s.Channels() {
			return nil, fmt.Errorf("column %d: channel %d out of range", i, chans[i])
		}
	}
	y := Embed(s[chans[0]], lags[0])
	maxLag := lags[0]
	for i := 1; i < len(lags); i++ {
		y = Extend(y, s[chans[i]], lags[i], maxLag)
		if lags[i] > maxLag {
			maxLag = lags[i]
		}
	}
	return y, nil
}
