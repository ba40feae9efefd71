// Package signal generates the synthetic series used by the CLI and the
// tests: periodic and stochastic channels plus sampled chaotic flows.
package signal

import (
	"math"
	"math/rand"

	"github.com/san-kum/takens/internal/series"
)

// System is an autonomous flow in R^n.
type System interface {
	Derive(x []float64) []float64
	Dim() int
	DefaultState() []float64
}

// Lorenz is the classic butterfly attractor.
type Lorenz struct{ Sigma, Rho, Beta float64 }

func NewLorenz() *Lorenz { return &Lorenz{10.0, 28.0, 8.0 / 3.0} }
func (l *Lorenz) Dim() int { return 3 }
func (l *Lorenz) DefaultState() []float64 { return []float64{1, 1, 1} }

func (l *Lorenz) Derive(s []float64) []float64 {
	return []float64{
		l.Sigma * (s[1] - s[0]),
		s[0]*(l.Rho-s[2]) - s[1],
		s[0]*s[1] - l.Beta*s[2],
	}
}

// Rossler is the Rossler attractor.
type Rossler struct{ A, B, C float64 }

func NewRossler() *Rossler { return &Rossler{0.2, 0.2, 5.7} }
func (r *Rossler) Dim() int { return 3 }
func (r *Rossler) DefaultState() []float64 { return []float64{1, 1, 1} }

func (r *Rossler) Derive(s []float64) []float64 {
	return []float64{
		-s[1] - s[2],
		s[0] + r.A*s[1],
		r.B + s[2]*(s[0]-r.C),
	}
}

// Integrate advances sys from x0 with fixed-step RK4, discards transient
// steps, and returns n samples of every state component as channels.
func Integrate(sys System, x0 []float64, dt float64, n, transient int) series.Set {
	x := make([]float64, len(x0))
	copy(x, x0)
	for i := 0; i < transient; i++ {
		x = rk4(sys, x, dt)
	}
	out := make(series.Set, sys.Dim())
	for d := range out {
		out[d] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for d := range out {
			out[d][i] = x[d]
		}
		x = rk4(sys, x, dt)
	}
	return out
}

func rk4(sys System, x []float64, dt float64) []float64 {
	k1 := sys.Derive(x)
	k2 := sys.Derive(shifted(x, k1, dt/2))
	k3 := sys.Derive(shifted(x, k2, dt/2))
	k4 := sys.Derive(shifted(x, k3, dt))
	out := make([]float64, len(x))
	for i := range out {
		out[i] = x[i] + dt/6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return out
}

func shifted(x, k []float64, h float64) []float64 {
	out := make([]float64, len(x))
	for i := range out {
		out[i] = x[i] + h*k[i]
	}
	return out
}

// Sine returns n samples of a unit sine with the given period in samples.
func Sine(n int, period, phase float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2*math.Pi*float64(i)/period + phase)
	}
	return out
}

// Noise returns n samples of standard Gaussian noise from rng.
func Noise(n int, rng *rand.Rand) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.NormFloat64()
	}
	return out
}
