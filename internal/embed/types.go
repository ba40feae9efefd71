package embed

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/takens/internal/dist"
	"github.com/san-kum/takens/internal/series"
)

// ContinuityEngine scores every candidate lag and channel against the
// current working trajectory, returning a matrix indexed by [lag][channel].
type ContinuityEngine interface {
	Snapshot(y series.Trajectory, s series.Set, lags []int, rng *rand.Rand) ([][]float64, error)
}

// CostFunc prices a candidate trajectory; lower is better.
type CostFunc interface {
	L(y series.Trajectory, rng *rand.Rand) (float64, error)
}

// Decision is a Stopper verdict. RejectLast drops the newest committed
// column before the run ends.
type Decision struct {
	Stop       bool
	RejectLast bool
	Reason     string
}

// Stopper decides after each cycle whether the search must end.
type Stopper interface {
	Stop(lg *Log, cycle, maxCycles int, lInit float64) Decision
}

// Options configure a reconstruction run.
type Options struct {
	Delays            []int     // candidate lags, strictly increasing
	SampleFraction    float64   // fraction of points sampled by the statistics, (0,1]
	TheilerWindow     int       // temporal exclusion radius, >= 1
	SignificanceAlpha float64   // continuity test level, (0,1]
	BinomialP         float64   // continuity null probability, (0,1]
	MaxNeighbors      int       // continuity neighborhood bound, >= 8
	CostNeighbors     int       // k for the trajectory cost, >= 1
	HorizonFactor     int       // cost horizon = factor * theiler window, >= 1
	MaxCycles         int       // hard bound on embedding cycles, >= 1
	Norm              dist.Norm // metric for all neighbor searches
	Seed              int64     // drives subsampling when SampleFraction < 1
}

// DefaultDelays returns the standard candidate set 0..50.
func DefaultDelays() []int {
	d := make([]int, 51)
	for i := range d {
		d[i] = i
	}
	return d
}

func DefaultOptions() Options {
	return Options{
		Delays:            DefaultDelays(),
		SampleFraction:    1.0,
		TheilerWindow:     1,
		SignificanceAlpha: 0.05,
		BinomialP:         0.5,
		MaxNeighbors:      13,
		CostNeighbors:     3,
		HorizonFactor:     4,
		MaxCycles:         10,
	}
}

// Validate rejects out-of-range options before any computation starts.
func (o *Options) Validate() error {
	if len(o.Delays) == 0 {
		return fmt.Errorf("no candidate delays")
	}
	prev := -1
	for i, d := range o.Delays {
		if d < 0 {
			return fmt.Errorf("delay %d is negative", d)
		}
		if d <= prev {
			return fmt.Errorf("candidate delays must be strictly increasing at index %d", i)
		}
		prev = d
	}
	if o.SampleFraction <= 0 || o.SampleFraction > 1 {
		return fmt.Errorf("sample fraction %g outside (0,1]", o.SampleFraction)
	}
	if o.TheilerWindow < 1 {
		return fmt.Errorf("theiler window %d, want >= 1", o.TheilerWindow)
	}
	if o.SignificanceAlpha <= 0 || o.SignificanceAlpha > 1 {
		return fmt.Errorf("significance alpha %g outside (0,1]", o.SignificanceAlpha)
	}
	if o.BinomialP <= 0 || o.BinomialP > 1 {
		return fmt.Errorf("binomial p %g outside (0,1]", o.BinomialP)
	}
	if o.MaxNeighbors < 8 {
		return fmt.Errorf("max neighbors %d, want >= 8", o.MaxNeighbors)
	}
	if o.CostNeighbors < 1 {
		return fmt.Errorf("cost neighbors %d, want >= 1", o.CostNeighbors)
	}
	if o.HorizonFactor < 1 {
		return fmt.Errorf("horizon factor %d, want >= 1", o.HorizonFactor)
	}
	if o.MaxCycles < 1 {
		return fmt.Errorf("max cycles %d, want >= 1", o.MaxCycles)
	}
	return nil
}

// MaxDelay returns the largest candidate lag.
func (o *Options) MaxDelay() int {
	return o.Delays[len(o.Delays)-1]
}

// Result is the outcome of a reconstruction run. Trajectory columns are in
// the original (non-normalized) units; Delays, Channels and Ls describe,
// per column, how it was produced and the cost of the cycle that committed
// it. Snapshots holds one continuity matrix per attempted cycle.
type Result struct {
	Trajectory series.Trajectory
	Delays     []int
	Channels   []int
	Ls         []float64
	Snapshots  [][][]float64
	LInit      float64
	Stopped    string
}
