// Package lint evaluates declarative rule sets against an OpenAPI document.
//
// A rule selects a set of targets (the document, every path, every
// operation, ...) and either asserts a CEL expression over each target or
// calls a registered Go function. Every failed assertion becomes one
// Diagnostic.
package lint

import (
	"errors"
	"fmt"
)

// Scope selects what a rule is evaluated against.
type Scope string

const (
	ScopeDocument        Scope = "document"
	ScopePath            Scope = "path"
	ScopeOperation       Scope = "operation"
	ScopeResponse        Scope = "response"
	ScopeParameter       Scope = "parameter"
	ScopeServer          Scope = "server"
	ScopeComponentSchema Scope = "component-schema"
	ScopeSecurityScheme  Scope = "security-scheme"
)

func (s Scope) valid() bool {
	switch s {
	case ScopeDocument, ScopePath, ScopeOperation, ScopeResponse,
		ScopeParameter, ScopeServer, ScopeComponentSchema, ScopeSecurityScheme:
		return true
	}
	return false
}

// Rule is one entry of a rule set file.
//
// Exactly one of Then and Function is set. Then is a CEL expression that
// must evaluate to true for the target to pass. When, if present, is a CEL
// expression that filters targets before Then runs. Message may reference
// {{path}}, {{method}}, {{code}} and {{name}}.
type Rule struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description,omitempty"`
	Message     string `yaml:"message,omitempty"`
	Severity    string `yaml:"severity,omitempty"`
	Given       Scope  `yaml:"given"`
	When        string `yaml:"when,omitempty"`
	Then        string `yaml:"then,omitempty"`
	Function    string `yaml:"function,omitempty"`
}

// RuleSet is a named, ordered collection of rules. Overrides replaces the
// severity of rules by id without editing them.
type RuleSet struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Overrides   map[string]string `yaml:"overrides,omitempty"`
	Rules       []Rule            `yaml:"rules"`
}

// Validate checks the shape of every rule. Expressions are compiled by New.
func (rs *RuleSet) Validate() error {
	if rs.Name == "" {
		return errors.New("rule set has no name")
	}
	seen := make(map[string]bool, len(rs.Rules))
	for _, r := range rs.Rules {
		if r.ID == "" {
			return errors.New("rule without id")
		}
		if seen[r.ID] {
			return &RuleError{Rule: r.ID, Err: errors.New("duplicate id")}
		}
		seen[r.ID] = true

		if !r.Given.valid() {
			return &RuleError{Rule: r.ID, Err: fmt.Errorf("unknown scope %q", r.Given)}
		}
		if (r.Then == "") == (r.Function == "") {
			return &RuleError{Rule: r.ID, Err: errors.New("exactly one of then or function is required")}
		}
		if r.Severity != "" {
			if _, err := ParseSeverity(r.Severity); err != nil {
				return &RuleError{Rule: r.ID, Err: err}
			}
		}
	}
	for id, sev := range rs.Overrides {
		if !seen[id] {
			return &RuleError{Rule: id, Err: errors.New("override for unknown rule")}
		}
		if _, err := ParseSeverity(sev); err != nil {
			return &RuleError{Rule: id, Err: err}
		}
	}
	return nil
}
