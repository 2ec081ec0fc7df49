// Package scoring turns rule set diagnostics into bounded percentage scores.
//
// Each category starts from a baseline derived from the document structure,
// loses points per diagnostic according to its severity, and is expressed
// as a percentage of that baseline. The report score is the unweighted mean
// of all category scores.
package scoring

import (
	"math"

	"github.com/build-flow-labs/apiscore/lint"
)

// Severity weights, in points per diagnostic.
const (
	WeightError       = -5
	WeightWarning     = -1
	WeightInformation = 0
	WeightHint        = 0
)

// Weight returns the signed point delta of one diagnostic. Unrecognized
// severities weigh nothing.
func Weight(s lint.Severity) int {
	switch s {
	case lint.SeverityError:
		return WeightError
	case lint.SeverityWarning:
		return WeightWarning
	case lint.SeverityInformation:
		return WeightInformation
	case lint.SeverityHint:
		return WeightHint
	}
	return 0
}

// Issue is a diagnostic as reported in a category.
type Issue struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Location string `json:"-"` // JSON pointer into the document
}

// Category is the score of one scoring dimension.
type Category struct {
	Name   string  `json:"category"`
	Key    string  `json:"key"`
	Score  int     `json:"score"`
	Issues []Issue `json:"issues"`
}

// Percentage expresses points as a share of baseline, rounded and clamped
// to [0, 100]. A baseline of zero or less scores 0.
func Percentage(points, baseline int) int {
	if baseline <= 0 {
		return 0
	}
	p := int(math.Round(float64(points) / float64(baseline) * 100))
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// ScoreCategory applies the severity weights of diags to baseline. Issues
// keep the order of diags; a diagnostic without a rule id is reported with
// code "unknown".
func ScoreCategory(name, key string, diags []lint.Diagnostic, baseline int) Category {
	points := baseline
	issues := make([]Issue, 0, len(diags))
	for _, d := range diags {
		points += Weight(d.Severity)

		code := d.Code
		if code == "" {
			code = "unknown"
		}
		issues = append(issues, Issue{
			Code:     code,
			Severity: d.Severity.String(),
			Message:  d.Message,
			Location: d.Location(),
		})
	}
	return Category{
		Name:   name,
		Key:    key,
		Score:  Percentage(points, baseline),
		Issues: issues,
	}
}
