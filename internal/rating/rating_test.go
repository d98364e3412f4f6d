// AngelaMos | 2026
// rating_test.go

package rating

import (
	"testing"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    Summary
	}{
		{"no reviews", nil, Summary{Rating: 0, TotalReviews: 0}},
		{"single", []int{3}, Summary{Rating: 3, TotalReviews: 1}},
		{"five four three", []int{5, 4, 3}, Summary{Rating: 4, TotalReviews: 3}},
		{"after deleting the three", []int{5, 4}, Summary{Rating: 4.5, TotalReviews: 2}},
		{"rounds half up", []int{5, 4, 4, 4}, Summary{Rating: 4.3, TotalReviews: 4}},
		{"rounds down", []int{5, 5, 4}, Summary{Rating: 4.7, TotalReviews: 3}},
		{"thirds", []int{1, 1, 2}, Summary{Rating: 1.3, TotalReviews: 3}},
		{"all ones", []int{1, 1, 1, 1}, Summary{Rating: 1, TotalReviews: 4}},
		{"all fives", []int{5, 5, 5}, Summary{Rating: 5, TotalReviews: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compute(tt.ratings); got != tt.want {
				t.Errorf("Compute(%v) = %+v, want %+v", tt.ratings, got, tt.want)
			}
		})
	}
}

func TestComputeIsOrderIndependent(t *testing.T) {
	a := Compute([]int{1, 2, 3, 4, 5, 5, 2})
	b := Compute([]int{5, 2, 5, 4, 3, 2, 1})
	if a != b {
		t.Errorf("order changed result: %+v vs %+v", a, b)
	}
}
