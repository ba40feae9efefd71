// Package continuity implements the neighbor-preservation statistic that
// nominates delay candidates for the embedding search. For every candidate
// lag and target channel it measures the smallest scale at which mapping a
// reference point's neighborhood through the delayed channel still rejects
// the hypothesis of an unrelated point cloud.
package continuity

import (
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/takens/internal/dist"
	"github.com/san-kum/takens/internal/series"
)

// minNeighborhood is the smallest neighborhood size the binomial test is
// run against; below eight points the test has no power at usual alphas.
const minNeighborhood = 8

// Engine computes continuity snapshots against a working trajectory.
type Engine struct {
	Theiler      int     // exclusion window around each reference point
	MaxNeighbors int     // largest neighborhood size considered (>= 8)
	Alpha        float64 // significance level of the binomial test
	P            float64 // null success probability
	SampleFrac   float64 // fraction of reference points evaluated
	Norm         dist.Norm
}

// Snapshot returns the average continuity statistic indexed by
// [lag][channel]. The rng drives reference-point subsampling only; with
// SampleFrac of 1 it is never consulted.
func (e *Engine) Snapshot(y series.Trajectory, s series.Set, lags []int, rng *rand.Rand) ([][]float64, error) {
	maxLag := 0
	for _, l := range lags {
		if l > maxLag {
			maxLag = l
		}
	}
	// Reference points and their neighbors must have an image at every
	// candidate lag.
	pool := y.Len()
	if s.Len()-maxLag < pool {
		pool = s.Len() - maxLag
	}
	if pool <= e.MaxNeighbors+2*e.Theiler+1 {
		return nil, fmt.Errorf("series too short: %d usable points for %d neighbors", pool, e.MaxNeighbors)
	}

	refs := samplePoints(pool, e.SampleFrac, rng)
	thresholds := binomialThresholds(e.MaxNeighbors, e.Alpha, e.P)

	snap := make([][]float64, len(lags))
	for li := range snap {
		snap[li] = make([]float64, s.Channels())
	}

	counted := 0
	for _, ref := range refs {
		nn := dist.NearestByNorm(y, ref, e.MaxNeighbors, e.Theiler, pool, e.Norm)
		if len(nn) < e.MaxNeighbors {
			continue
		}
		counted++
		imgDists := make([]float64, e.MaxNeighbors)
		for ch := 0; ch < s.Channels(); ch++ {
			for li, lag := range lags {
				origin := s[ch][ref+lag]
				for k, j := range nn {
					d := s[ch][j+lag] - origin
					if d < 0 {
						d = -d
					}
					imgDists[k] = d
				}
				snap[li][ch] += epsStar(imgDists, thresholds)
			}
		}
	}
	if counted == 0 {
		return nil, fmt.Errorf("no usable reference points")
	}
	for li := range snap {
		for ch := range snap[li] {
			snap[li][ch] /= float64(counted)
		}
	}
	return snap, nil
}

// epsStar returns the continuity statistic for one reference point: the
// largest, over neighborhood sizes, of the smallest image radius that
// still captures the significant fraction of the neighborhood. imgDists
// is ordered by trajectory distance, nearest first.
func epsStar(imgDists []float64, thresholds []int) float64 {
	best := 0.0
	scratch := make([]float64, 0, len(imgDists))
	for i, l := range thresholds {
		delta := minNeighborhood + i
		scratch = append(scratch[:0], imgDists[:delta]...)
		sort.Float64s(scratch)
		if eps := scratch[l-1]; eps > best {
			best = eps
		}
	}
	return best
}

// binomialThresholds returns, for every neighborhood size delta in
// [8, maxNeighbors], the minimal success count l whose tail probability
// under Binomial(delta, p) drops to alpha or below.
func binomialThresholds(maxNeighbors int, alpha, p float64) []int {
	out := make([]int, 0, maxNeighbors-minNeighborhood+1)
	for delta := minNeighborhood; delta <= maxNeighbors; delta++ {
		b := distuv.Binomial{N: float64(delta), P: p}
		l := delta
		for k := 1; k <= delta; k++ {
			if 1-b.CDF(float64(k-1)) <= alpha {
				l = k
				break
			}
		}
		out = append(out, l)
	}
	return out
}

// samplePoints returns the evaluated reference indices in increasing
// order: every index when frac is 1, otherwise a seeded subset.
func samplePoints(n int, frac float64, rng *rand.Rand) []int {
	if frac >= 1 {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	count := int(frac * float64(n))
	if count < 1 {
		count = 1
	}
	perm := rng.Perm(n)[:count]
	sort.Ints(perm)
	return perm
}
