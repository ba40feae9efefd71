package embed

import "testing"

func TestExtractPeaks(t *testing.T) {
	lags := []int{0, 1, 2, 3, 4, 5, 6}

	tests := []struct {
		name  string
		curve []float64
		want  []Peak
	}{
		{
			name:  "single interior peak",
			curve: []float64{0, 0.1, 0.9, 0.2, 0.1, 0.05, 0},
			want:  []Peak{{0, 0}, {2, 0.9}},
		},
		{
			name:  "two separated peaks",
			curve: []float64{0, 0.5, 0.1, 0.05, 0.8, 0.2, 0},
			want:  []Peak{{0, 0}, {1, 0.5}, {4, 0.8}},
		},
		{
			name:  "flat curve still nominates the first lag",
			curve: []float64{0.3, 0.3, 0.3, 0.3, 0.3, 0.3, 0.3},
			want:  []Peak{{0, 0.3}},
		},
		{
			name:  "rising edge at the end counts",
			curve: []float64{0, 0, 0, 0, 0, 0.1, 0.9},
			want:  []Peak{{0, 0}, {6, 0.9}},
		},
		{
			name:  "first lag peak not duplicated",
			curve: []float64{0.9, 0.1, 0, 0, 0, 0, 0},
			want:  []Peak{{0, 0.9}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractPeaks(tt.curve, lags)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("peak %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExtractPeaksMismatchedInput(t *testing.T) {
	if got := ExtractPeaks([]float64{1, 2}, []int{0}); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
	if got := ExtractPeaks(nil, nil); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
