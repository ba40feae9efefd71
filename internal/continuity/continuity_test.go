package continuity

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/takens/internal/series"
	"github.com/san-kum/takens/internal/signal"
)

func defaultEngine() *Engine {
	return &Engine{
		Theiler:      1,
		MaxNeighbors: 13,
		Alpha:        0.05,
		P:            0.5,
		SampleFrac:   1.0,
	}
}

func TestBinomialThresholds(t *testing.T) {
	thr := binomialThresholds(13, 0.05, 0.5)

	if len(thr) != 6 {
		t.Fatalf("expected 6 thresholds, got %d", len(thr))
	}
	// P(X>=7 | Bin(8,0.5)) = 37/256 - 28/256 = 9/256 ~ 0.035 <= 0.05,
	// P(X>=6) ~ 0.145 > 0.05.
	if thr[0] != 7 {
		t.Errorf("delta=8: got %d, want 7", thr[0])
	}
	// P(X>=10 | Bin(13,0.5)) = 378/8192 ~ 0.046 <= 0.05.
	if thr[5] != 10 {
		t.Errorf("delta=13: got %d, want 10", thr[5])
	}
	for i := 1; i < len(thr); i++ {
		if thr[i] < thr[i-1] {
			t.Errorf("thresholds not non-decreasing: %v", thr)
		}
	}
}

func TestEpsStarUsesSmallestSignificantRadius(t *testing.T) {
	// All image distances equal: every neighborhood size yields the same
	// radius, so the statistic is that radius.
	img := make([]float64, 13)
	for i := range img {
		img[i] = 0.5
	}
	if got := epsStar(img, binomialThresholds(13, 0.05, 0.5)); got != 0.5 {
		t.Errorf("got %f, want 0.5", got)
	}
}

func TestSnapshotShapeAndFiniteness(t *testing.T) {
	s := series.Set{signal.Sine(400, 25, 0), signal.Sine(400, 25, 1.1)}
	norm, err := s.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	y := series.Embed(norm[0], 0)
	lags := []int{0, 1, 2, 5, 10, 20}

	snap, err := defaultEngine().Snapshot(y, norm, lags, nil)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	if len(snap) != len(lags) {
		t.Fatalf("expected %d lag rows, got %d", len(lags), len(snap))
	}
	for li := range snap {
		if len(snap[li]) != 2 {
			t.Fatalf("lag %d: expected 2 channels, got %d", lags[li], len(snap[li]))
		}
		for ch, v := range snap[li] {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				t.Errorf("lag %d channel %d: bad value %f", lags[li], ch, v)
			}
		}
	}
}

func TestSnapshotDeterministicWithSampling(t *testing.T) {
	s := series.Set{signal.Sine(300, 25, 0)}
	norm, err := s.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	y := series.Embed(norm[0], 0)
	lags := []int{0, 3, 6, 9}

	e := defaultEngine()
	e.SampleFrac = 0.5

	a, err := e.Snapshot(y, norm, lags, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	b, err := e.Snapshot(y, norm, lags, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	for li := range a {
		for ch := range a[li] {
			if a[li][ch] != b[li][ch] {
				t.Fatalf("same seed produced different snapshots at [%d][%d]", li, ch)
			}
		}
	}
}

func TestSnapshotResolvesExactRecurrences(t *testing.T) {
	// A sine with an integer sample period revisits every state exactly
	// once per period. Those recurrences must not count as neighbors, or
	// the statistic collapses to rounding noise at every lag. With them
	// excluded the neighborhoods hold opposite-branch points, whose images
	// diverge most at the quarter period and realign at the half period.
	s := series.Set{signal.Sine(512, 25, 0)}
	norm, err := s.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	y := series.Embed(norm[0], 0)
	lags := make([]int, 21)
	for i := range lags {
		lags[i] = i
	}

	snap, err := defaultEngine().Snapshot(y, norm, lags, nil)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	quarter, half := snap[6][0], snap[12][0]
	if quarter < 1e-3 {
		t.Fatalf("no structure at the quarter period: %e", quarter)
	}
	if quarter <= snap[1][0] {
		t.Errorf("curve flat near zero lag: lag 1 %f, lag 6 %f", snap[1][0], quarter)
	}
	if quarter <= 2*half {
		t.Errorf("no dip at the half period: lag 6 %f, lag 12 %f", quarter, half)
	}
}

func TestSnapshotTooShort(t *testing.T) {
	s := series.Set{signal.Sine(30, 10, 0)}
	norm, err := s.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	y := series.Embed(norm[0], 0)

	if _, err := defaultEngine().Snapshot(y, norm, []int{0, 25}, nil); err == nil {
		t.Error("expected error for short series")
	}
}

func TestSamplePoints(t *testing.T) {
	all := samplePoints(10, 1.0, nil)
	if len(all) != 10 || all[0] != 0 || all[9] != 9 {
		t.Errorf("full sample wrong: %v", all)
	}

	some := samplePoints(10, 0.3, rand.New(rand.NewSource(1)))
	if len(some) != 3 {
		t.Errorf("expected 3 points, got %d", len(some))
	}
	for i := 1; i < len(some); i++ {
		if some[i] <= some[i-1] {
			t.Errorf("sampled points not increasing: %v", some)
		}
	}
}
