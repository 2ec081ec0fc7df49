package scoring

import "math"

// Report is the result of scoring one document.
type Report struct {
	Title      string     `json:"title"`
	Version    string     `json:"version"`
	Score      int        `json:"score"`
	Categories []Category `json:"categories"`
}

// Issues returns the number of issues across all categories.
func (r *Report) Issues() int {
	n := 0
	for _, c := range r.Categories {
		n += len(c.Issues)
	}
	return n
}

// Aggregate is the unweighted mean of the category scores, rounded. An
// empty list scores 0.
func Aggregate(categories []Category) int {
	if len(categories) == 0 {
		return 0
	}
	sum := 0
	for _, c := range categories {
		sum += c.Score
	}
	return int(math.Round(float64(sum) / float64(100*len(categories)) * 100))
}
