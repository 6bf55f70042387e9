package reviews

import "math"

// Summarize reduces a book's ratings to the aggregate shown on every
// listing: the arithmetic mean rounded to one decimal, and the count.
// An empty set yields 0, not NaN.
func Summarize(ratings []int) (average float64, count int) {
	if len(ratings) == 0 {
		return 0, 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	avg := float64(sum) / float64(len(ratings))
	return math.Round(avg*10) / 10, len(ratings)
}
