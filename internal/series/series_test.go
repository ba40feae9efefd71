package series

import (
	"math"
	"testing"
)

func TestFromRows(t *testing.T) {
	s, err := FromRows([][]float64{{1, 2}, {3, 4}, {5, 6}})
	if err != nil {
		t.Fatalf("FromRows failed: %v", err)
	}
	if s.Channels() != 2 || s.Len() != 3 {
		t.Fatalf("got %d channels of %d samples", s.Channels(), s.Len())
	}
	if s[1][2] != 6 {
		t.Errorf("expected 6, got %f", s[1][2])
	}
}

func TestFromRowsSingleRowIsOneChannel(t *testing.T) {
	s, err := FromRows([][]float64{{1, 2, 3, 4}})
	if err != nil {
		t.Fatalf("FromRows failed: %v", err)
	}
	if s.Channels() != 1 || s.Len() != 4 {
		t.Errorf("got %d channels of %d samples, want 1 of 4", s.Channels(), s.Len())
	}
}

func TestFromRowsRagged(t *testing.T) {
	if _, err := FromRows([][]float64{{1, 2}, {3}}); err == nil {
		t.Error("expected error for ragged rows")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		s       Set
		wantErr bool
	}{
		{"valid", Set{{1, 2, 3}}, false},
		{"empty", Set{}, true},
		{"empty channel", Set{{}}, true},
		{"length mismatch", Set{{1, 2}, {1}}, true},
		{"nan", Set{{1, math.NaN()}}, true},
		{"inf", Set{{1, math.Inf(1)}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	s := Set{{2, 4, 6, 8}}
	norm, err := s.Normalize()
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	var mean float64
	for _, v := range norm[0] {
		mean += v
	}
	mean /= float64(len(norm[0]))
	if math.Abs(mean) > 1e-12 {
		t.Errorf("mean %g, want 0", mean)
	}

	var variance float64
	for _, v := range norm[0] {
		variance += v * v
	}
	variance /= float64(len(norm[0]))
	if math.Abs(variance-1) > 1e-12 {
		t.Errorf("variance %g, want 1", variance)
	}

	// Original untouched.
	if s[0][0] != 2 {
		t.Error("Normalize mutated its input")
	}
}

func TestNormalizeConstantChannel(t *testing.T) {
	if _, err := (Set{{5, 5, 5}}).Normalize(); err == nil {
		t.Error("expected error for constant channel")
	}
}
