package signal

import (
	"math"
	"math/rand"
	"testing"
)

func TestSinePeriod(t *testing.T) {
	s := Sine(100, 25, 0)

	if s[0] != 0 {
		t.Errorf("s[0] = %f, want 0", s[0])
	}
	for i := 0; i+25 < len(s); i++ {
		if math.Abs(s[i]-s[i+25]) > 1e-9 {
			t.Fatalf("period broken at %d: %f vs %f", i, s[i], s[i+25])
		}
	}
}

func TestNoiseDeterministic(t *testing.T) {
	a := Noise(50, rand.New(rand.NewSource(42)))
	b := Noise(50, rand.New(rand.NewSource(42)))

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed diverged at %d", i)
		}
	}
}

func TestIntegrateLorenz(t *testing.T) {
	sys := NewLorenz()
	s := Integrate(sys, sys.DefaultState(), 0.01, 500, 1000)

	if len(s) != 3 {
		t.Fatalf("expected 3 channels, got %d", len(s))
	}
	for ch := range s {
		if len(s[ch]) != 500 {
			t.Fatalf("channel %d has %d samples", ch, len(s[ch]))
		}
		for i, v := range s[ch] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("channel %d sample %d not finite", ch, i)
			}
		}
	}
	// After the transient the orbit lives on the attractor, well away from
	// the origin.
	if math.Abs(s[2][0]) < 1 {
		t.Errorf("z starts at %f, expected attractor-scale values", s[2][0])
	}
}

func TestIntegrateRosslerBounded(t *testing.T) {
	sys := NewRossler()
	s := Integrate(sys, sys.DefaultState(), 0.05, 400, 500)

	for ch := range s {
		for _, v := range s[ch] {
			if math.Abs(v) > 1e3 {
				t.Fatalf("channel %d escaped: %f", ch, v)
			}
		}
	}
}

func TestIntegrateDoesNotMutateInitialState(t *testing.T) {
	sys := NewLorenz()
	x0 := []float64{1, 1, 1}
	Integrate(sys, x0, 0.01, 10, 10)

	if x0[0] != 1 || x0[1] != 1 || x0[2] != 1 {
		t.Errorf("initial state mutated: %v", x0)
	}
}
