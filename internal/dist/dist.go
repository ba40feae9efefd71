// Package dist provides the point-to-set distance primitives used by the
// continuity statistic and the trajectory cost.
package dist

import (
	"fmt"
	"math"
	"os"
	"sort"
)

// Norm selects how per-component differences are aggregated.
type Norm int

const (
	// Euclidean is the root of summed squared differences.
	Euclidean Norm = iota
	// Maximum is the Chebyshev norm: the largest absolute component
	// difference.
	Maximum
)

func (n Norm) String() string {
	switch n {
	case Euclidean:
		return "euclidean"
	case Maximum:
		return "maximum"
	default:
		return fmt.Sprintf("norm(%d)", int(n))
	}
}

// Parse maps a config string to a Norm.
func Parse(s string) (Norm, bool) {
	switch s {
	case "euclidean", "":
		return Euclidean, true
	case "maximum", "chebyshev", "max":
		return Maximum, true
	default:
		return Euclidean, false
	}
}

// All returns the distance from ref to every point under the given norm.
// An unrecognized norm warns and falls back to Euclidean rather than
// failing the run.
func All(ref []float64, points [][]float64, n Norm) []float64 {
	d, _ := Compute(ref, points, n, false)
	return d
}

// Compute returns the distance from ref to every point and, when
// withComponents is set, the matrix of component-wise absolute
// differences. Pure function of its inputs apart from the fallback
// warning.
func Compute(ref []float64, points [][]float64, n Norm, withComponents bool) ([]float64, [][]float64) {
	if n != Euclidean && n != Maximum {
		fmt.Fprintf(os.Stderr, "warning: unknown norm %q, using euclidean\n", n)
		n = Euclidean
	}
	d := make([]float64, len(points))
	var comps [][]float64
	if withComponents {
		comps = make([][]float64, len(points))
	}
	for i, p := range points {
		var row []float64
		if withComponents {
			row = make([]float64, len(ref))
		}
		var acc float64
		for j := range ref {
			diff := math.Abs(p[j] - ref[j])
			if withComponents {
				row[j] = diff
			}
			switch n {
			case Maximum:
				if diff > acc {
					acc = diff
				}
			default:
				acc += diff * diff
			}
		}
		if n == Euclidean {
			acc = math.Sqrt(acc)
		}
		d[i] = acc
		if withComponents {
			comps[i] = row
		}
	}
	return d, comps
}

// zeroTol is the distance below which a candidate counts as an exact
// recurrence of the reference. A noise-free periodic signal revisits the
// same state to within rounding error every period; such points duplicate
// the reference and would blind any statistic built on its neighborhood.
const zeroTol = 1e-10

// NearestByNorm returns the indices of the k points closest to
// points[ref], considering only indices below limit and excluding every
// index within the Theiler window of ref as well as exact recurrences of
// the reference point. Ties resolve toward the lower index so the result
// is deterministic.
func NearestByNorm(points [][]float64, ref, k, theiler, limit int, n Norm) []int {
	if limit > len(points) {
		limit = len(points)
	}
	d := All(points[ref], points[:limit], n)
	idx := make([]int, 0, limit)
	for i := 0; i < limit; i++ {
		if abs(i-ref) <= theiler || d[i] <= zeroTol {
			continue
		}
		idx = append(idx, i)
	}
	sort.Slice(idx, func(a, b int) bool {
		if d[idx[a]] != d[idx[b]] {
			return d[idx[a]] < d[idx[b]]
		}
		return idx[a] < idx[b]
	})
	if k < len(idx) {
		idx = idx[:k]
	}
	return idx
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
