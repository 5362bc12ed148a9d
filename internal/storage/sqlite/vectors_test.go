// ABOUTME: Tests for vector encoding and similarity math
package sqlite

import (
	"math"
	"testing"
)

func TestVectorBlobRoundTrip(t *testing.T) {
	vector := []float64{0, 1.5, -2.25, math.Pi}
	got := blobToVector(vectorToBlob(vector))
	if len(got) != len(vector) {
		t.Fatalf("len = %d, want %d", len(got), len(vector))
	}
	for i := range vector {
		if got[i] != vector[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], vector[i])
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 0, 0}, []float64{1, 0, 0}, 1.0},
		{"orthogonal", []float64{1, 0, 0}, []float64{0, 1, 0}, 0.0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1.0},
		{"length mismatch", []float64{1, 0}, []float64{1, 0, 0}, 0.0},
		{"zero vector", []float64{0, 0}, []float64{1, 0}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTopKKeepsTieOrder(t *testing.T) {
	items := []int{3, 1, 2, 1}
	scores := map[int]float64{3: 0.5, 1: 0.9, 2: 0.5}
	got := topK(items, func(i int) float64 { return scores[i] }, 3)
	want := []int{1, 1, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("topK() = %v, want %v", got, want)
		}
	}
}
