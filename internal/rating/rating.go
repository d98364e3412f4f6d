// AngelaMos | 2026
// rating.go

package rating

// Summary is the derived rating state stored on a restaurant.
type Summary struct {
	Rating       float64 `json:"rating"`
	TotalReviews int     `json:"total_reviews"`
}

// Compute returns the mean of ratings rounded half up to one decimal.
// An empty set yields the zero Summary. Rounding works in integer tenths
// so means such as 4.25 never land on the wrong side of a float boundary.
func Compute(ratings []int) Summary {
	n := len(ratings)
	if n == 0 {
		return Summary{}
	}

	sum := 0
	for _, r := range ratings {
		sum += r
	}

	tenths := (sum*20 + n) / (2 * n)

	return Summary{
		Rating:       float64(tenths) / 10,
		TotalReviews: n,
	}
}
