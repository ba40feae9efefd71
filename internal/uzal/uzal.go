// Package uzal implements the L-statistic of Uzal, Grinblat and Verdes:
// a scalar cost for a reconstructed trajectory combining the noise
// amplification of nearest-neighbor forecasts over a bounded horizon with
// the size of the reconstructed neighborhoods. Lower is better.
package uzal

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/san-kum/takens/internal/dist"
	"github.com/san-kum/takens/internal/series"
)

// Cost scores candidate trajectories.
type Cost struct {
	K          int // neighbors per reference point
	Theiler    int // exclusion window for the neighbor search
	Horizon    int // forecast horizon in samples
	SampleFrac float64
	Norm       dist.Norm
}

// L returns the cost of trajectory y. The rng drives reference-point
// subsampling only.
func (c *Cost) L(y series.Trajectory, rng *rand.Rand) (float64, error) {
	pool := y.Len() - c.Horizon
	if pool <= c.K+2*c.Theiler+1 {
		return 0, fmt.Errorf("trajectory too short: %d points for horizon %d", y.Len(), c.Horizon)
	}

	refs := samplePoints(pool, c.SampleFrac, rng)

	var sigmaSum, invEpsSum float64
	counted := 0
	for _, ref := range refs {
		nn := dist.NearestByNorm(y, ref, c.K, c.Theiler, pool, c.Norm)
		if len(nn) < c.K {
			continue
		}
		hood := append([]int{ref}, nn...)

		eps2 := spread(y, hood, 0)
		if eps2 == 0 {
			continue
		}
		var e2 float64
		for t := 1; t <= c.Horizon; t++ {
			e2 += spread(y, hood, t)
		}
		e2 /= float64(c.Horizon)

		sigmaSum += e2 / eps2
		invEpsSum += 1 / eps2
		counted++
	}
	if counted == 0 {
		return 0, fmt.Errorf("no usable reference points")
	}

	sigma2 := sigmaSum / float64(counted)
	alpha2 := 1 / (invEpsSum / float64(counted))
	return math.Log10(math.Sqrt(sigma2) * math.Sqrt(alpha2)), nil
}

// spread is the mean squared distance of the neighborhood's points,
// advanced by t samples, to their center of mass.
func spread(y series.Trajectory, hood []int, t int) float64 {
	dims := y.Dims()
	center := make([]float64, dims)
	for _, i := range hood {
		for d, v := range y[i+t] {
			center[d] += v
		}
	}
	for d := range center {
		center[d] /= float64(len(hood))
	}
	var sum float64
	for _, i := range hood {
		for d, v := range y[i+t] {
			diff := v - center[d]
			sum += diff * diff
		}
	}
	return sum / float64(len(hood))
}

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
