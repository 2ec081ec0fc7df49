package lint

import "fmt"

// EvaluationError reports a rule that failed while running, as opposed to a
// rule that ran and found a violation.
type EvaluationError struct {
	RuleSet  string
	Rule     string
	Location string
	Err      error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluating rule %s/%s at %s: %v", e.RuleSet, e.Rule, e.Location, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// RuleError reports a rule definition the engine cannot compile.
type RuleError struct {
	Rule string
	Err  error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s: %v", e.Rule, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }
