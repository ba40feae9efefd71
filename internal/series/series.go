package series

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// Set holds M scalar channels observed at N equally spaced times.
// Set[j][i] is sample i of channel j. All channels share the same length.
type Set [][]float64

// FromRows builds a Set from a row-major N×M matrix. A single row is
// treated as one channel observed N times rather than N one-sample
// channels.
func FromRows(rows [][]float64) (Set, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("empty input matrix")
	}
	if len(rows) == 1 {
		ch := make([]float64, len(rows[0]))
		copy(ch, rows[0])
		return Set{ch}, nil
	}
	m := len(rows[0])
	s := make(Set, m)
	for j := 0; j < m; j++ {
		s[j] = make([]float64, len(rows))
	}
	for i, row := range rows {
		if len(row) != m {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(row), m)
		}
		for j, v := range row {
			s[j][i] = v
		}
	}
	return s, nil
}

// FromChannels wraps existing channel slices without copying.
func FromChannels(chans ...[]float64) Set { return Set(chans) }

func (s Set) Channels() int { return len(s) }

func (s Set) Len() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// Validate rejects empty, ragged, or non-finite inputs before any
// computation starts.
func (s Set) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("no channels")
	}
	n := len(s[0])
	if n == 0 {
		return fmt.Errorf("channel 0 is empty")
	}
	for j, ch := range s {
		if len(ch) != n {
			return fmt.Errorf("channel %d has %d samples, channel 0 has %d", j, len(ch), n)
		}
		for i, v := range ch {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("channel %d sample %d is not finite", j, i)
			}
		}
	}
	return nil
}

// Normalize returns a copy of s with every channel shifted to zero mean
// and scaled to unit standard deviation. A constant channel is rejected:
// it carries no dynamics and would divide by zero.
func (s Set) Normalize() (Set, error) {
	out := make(Set, len(s))
	for j, ch := range s {
		mean, err := stats.Mean(stats.Float64Data(ch))
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", j, err)
		}
		sd, err := stats.StandardDeviationPopulation(stats.Float64Data(ch))
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", j, err)
		}
		if sd == 0 {
			return nil, fmt.Errorf("channel %d is constant", j)
		}
		norm := make([]float64, len(ch))
		for i, v := range ch {
			norm[i] = (v - mean) / sd
		}
		out[j] = norm
	}
	return out, nil
}
