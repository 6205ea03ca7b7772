package formulas

import (
	"math"
	"testing"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		data   []float64
		want   float64
		wantOK bool
	}{
		{
			name:   "odd length",
			data:   []float64{3, 1, 2},
			want:   2,
			wantOK: true,
		},
		{
			name:   "even length",
			data:   []float64{4, 1, 3, 2},
			want:   2.5,
			wantOK: true,
		},
		{
			name:   "single value",
			data:   []float64{7},
			want:   7,
			wantOK: true,
		},
		{
			name:   "empty",
			data:   nil,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Median(tt.data)
			if ok != tt.wantOK {
				t.Fatalf("Median ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Median = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMedianDoesNotMutateInput(t *testing.T) {
	data := []float64{3, 1, 2}
	Median(data)
	if data[0] != 3 || data[1] != 1 || data[2] != 2 {
		t.Errorf("Median mutated its input: %v", data)
	}
}

func TestStdDevSampleSemantics(t *testing.T) {
	// Sample std dev of {1, 2, 3, 4} is sqrt(5/3)
	got := StdDev([]float64{1, 2, 3, 4})
	want := math.Sqrt(5.0 / 3.0)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("StdDev = %v, want %v", got, want)
	}

	if StdDev([]float64{5}) != 0 {
		t.Errorf("StdDev of single value should be 0")
	}
}

func TestSigmoid(t *testing.T) {
	if got := Sigmoid(0); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Sigmoid(0) = %v, want 0.5", got)
	}
	if got := Sigmoid(50); got < 0.999 {
		t.Errorf("Sigmoid(50) = %v, want ~1", got)
	}
	if got := Sigmoid(-50); got > 0.001 {
		t.Errorf("Sigmoid(-50) = %v, want ~0", got)
	}
}
