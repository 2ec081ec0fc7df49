package scoring

import (
	"testing"

	"github.com/build-flow-labs/apiscore/openapi"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name   string
		scores []int
		want   int
	}{
		{name: "empty", scores: nil, want: 0},
		{name: "single", scores: []int{42}, want: 42},
		{name: "mean", scores: []int{100, 90}, want: 95},
		{name: "rounded", scores: []int{100, 100, 99}, want: 100},
		{name: "rounded down", scores: []int{100, 0, 0}, want: 33},
		{name: "one penalized of fifteen", scores: []int{100, 100, 100, 100, 90, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100}, want: 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Aggregate(categoriesWithScores(tt.scores...)); got != tt.want {
				t.Errorf("Aggregate(%v) = %d, want %d", tt.scores, got, tt.want)
			}
		})
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	scores := []int{0, 13, 57, 100, 88, 21}
	want := Aggregate(categoriesWithScores(scores...))

	for i := range scores {
		rotated := append(append([]int{}, scores[i:]...), scores[:i]...)
		if got := Aggregate(categoriesWithScores(rotated...)); got != want {
			t.Errorf("rotation %d: got %d, want %d", i, got, want)
		}
	}
	reversed := make([]int, len(scores))
	for i, s := range scores {
		reversed[len(scores)-1-i] = s
	}
	if got := Aggregate(categoriesWithScores(reversed...)); got != want {
		t.Errorf("reversed: got %d, want %d", got, want)
	}
}

func TestBaselines(t *testing.T) {
	single := openapi.Counts{
		Paths:            1,
		Operations:       1,
		PathResponses:    1,
		InputOperations:  1,
		SuccessResponses: 1,
	}
	full := openapi.Counts{
		Paths:              2,
		Operations:         3,
		PathResponses:      4,
		InputOperations:    1,
		NonInputOperations: 2,
		SuccessResponses:   3,
		Parameters:         2,
		Headers:            1,
		Schemas:            2,
	}

	tests := []struct {
		name     string
		baseline func(openapi.Counts) int
		empty    int
		single   int
		full     int
	}{
		{"conformance", ConformanceBaseline, 50, 125, 50 + 10 + 20 + 50 + 75 + 50},
		{"developer experience", DeveloperExperienceBaseline, 7, 18, 7 + 5 + 10 + 18 + 20},
		{"mocking readiness", MockingReadinessBaseline, 0, 10, 5 + 10 + 5 + 15},
		{"design pattern restful", DesignPatternRestfulBaseline, 0, 5, 10},
		{"owasp", OWASPBaseline, 0, 50, 150 + 100},
		{"url versioning", URLVersioningBaseline, 10, 15, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.baseline(openapi.Counts{}); got != tt.empty {
				t.Errorf("empty: got %d, want %d", got, tt.empty)
			}
			if got := tt.baseline(single); got != tt.single {
				t.Errorf("single: got %d, want %d", got, tt.single)
			}
			if got := tt.baseline(full); got != tt.full {
				t.Errorf("full: got %d, want %d", got, tt.full)
			}
		})
	}
}

func categoriesWithScores(scores ...int) []Category {
	categories := make([]Category, 0, len(scores))
	for _, s := range scores {
		categories = append(categories, Category{Score: s, Issues: []Issue{}})
	}
	return categories
}
