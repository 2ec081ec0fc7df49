package lint

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
	"github.com/google/cel-go/ext"

	"github.com/build-flow-labs/apiscore/openapi"
)

// Function is a rule implemented in Go. It returns one message per
// violation found on the target.
type Function func(ctx context.Context, t *Target) ([]string, error)

// Option configures an Engine.
type Option func(*Engine)

// WithFunction registers a Go rule function under name, replacing any
// function already registered under it.
func WithFunction(name string, fn Function) Option {
	return func(e *Engine) {
		e.functions[name] = fn
	}
}

// WithFunctions registers several functions at once.
func WithFunctions(fns map[string]Function) Option {
	return func(e *Engine) {
		for name, fn := range fns {
			e.functions[name] = fn
		}
	}
}

// Engine runs one compiled rule set. An Engine holds no state between runs
// and is safe for concurrent use.
type Engine struct {
	name      string
	rules     []*compiledRule
	functions map[string]Function
}

type compiledRule struct {
	Rule
	severity Severity
	when     cel.Program
	then     cel.Program
	fn       Function
}

// New compiles a rule set. The built-in functions are always registered;
// opts may add more or replace them.
func New(rs *RuleSet, opts ...Option) (*Engine, error) {
	if rs == nil {
		return nil, errors.New("nil rule set")
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		name:      rs.Name,
		functions: Builtins(),
	}
	for _, opt := range opts {
		opt(e)
	}

	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("creating expression environment: %w", err)
	}

	for _, r := range rs.Rules {
		cr := &compiledRule{Rule: r, severity: SeverityWarning}
		sev := r.Severity
		if o, ok := rs.Overrides[r.ID]; ok {
			sev = o
		}
		if sev != "" {
			cr.severity, _ = ParseSeverity(sev) // checked by Validate
		}

		if r.When != "" {
			if cr.when, err = compile(env, r.When); err != nil {
				return nil, &RuleError{Rule: r.ID, Err: fmt.Errorf("when: %w", err)}
			}
		}
		if r.Function != "" {
			fn, ok := e.functions[r.Function]
			if !ok {
				return nil, &RuleError{Rule: r.ID, Err: fmt.Errorf("unknown function %q", r.Function)}
			}
			cr.fn = fn
		} else if cr.then, err = compile(env, r.Then); err != nil {
			return nil, &RuleError{Rule: r.ID, Err: fmt.Errorf("then: %w", err)}
		}
		e.rules = append(e.rules, cr)
	}
	return e, nil
}

// Name returns the rule set name.
func (e *Engine) Name() string { return e.name }

// Len returns the number of compiled rules.
func (e *Engine) Len() int { return len(e.rules) }

// Run evaluates every rule against the document. Diagnostics are ordered by
// rule, then by target in document order. A rule that fails to evaluate
// aborts the run with an *EvaluationError.
func (e *Engine) Run(ctx context.Context, doc *openapi.Document) ([]Diagnostic, error) {
	if doc == nil {
		return nil, errors.New("nil document")
	}

	diags := []Diagnostic{}
	byScope := make(map[Scope][]*Target)
	for _, r := range e.rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ts, ok := byScope[r.Given]
		if !ok {
			ts = targets(doc, r.Given)
			byScope[r.Given] = ts
		}
		for _, t := range ts {
			msgs, err := r.evaluate(ctx, t)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				return nil, &EvaluationError{
					RuleSet:  e.name,
					Rule:     r.ID,
					Location: pointer(t.Location),
					Err:      err,
				}
			}
			for _, msg := range msgs {
				diags = append(diags, Diagnostic{
					Code:     r.ID,
					Severity: r.severity,
					Message:  msg,
					Path:     t.Location,
				})
			}
		}
	}
	return diags, nil
}

func (r *compiledRule) evaluate(ctx context.Context, t *Target) ([]string, error) {
	if r.when != nil {
		ok, err := evalBool(ctx, r.when, t.Variables())
		if err != nil {
			return nil, fmt.Errorf("when: %w", err)
		}
		if !ok {
			return nil, nil
		}
	}

	if r.fn != nil {
		return r.fn(ctx, t)
	}

	ok, err := evalBool(ctx, r.then, t.Variables())
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, nil
	}
	return []string{t.render(r.message())}, nil
}

func (r *compiledRule) message() string {
	switch {
	case r.Message != "":
		return r.Message
	case r.Description != "":
		return r.Description
	}
	return r.ID
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("doc", cel.DynType),
		cel.Variable("node", cel.DynType),
		cel.Variable("op", cel.DynType),
		cel.Variable("response", cel.DynType),
		cel.Variable("path", cel.StringType),
		cel.Variable("method", cel.StringType),
		cel.Variable("code", cel.StringType),
		cel.Variable("name", cel.StringType),
		ext.Strings(),
		cel.Function("nonEmpty",
			cel.Overload("nonEmpty_dyn", []*cel.Type{cel.DynType}, cel.BoolType,
				cel.UnaryBinding(nonEmpty),
			),
		),
	)
}

func compile(env *cel.Env, expr string) (cel.Program, error) {
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, iss.Err()
	}
	if t := ast.OutputType(); !t.IsExactType(cel.BoolType) && !t.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression has type %s, want bool", t)
	}
	return env.Program(ast, cel.InterruptCheckFrequency(100))
}

func evalBool(ctx context.Context, prg cel.Program, vars map[string]any) (bool, error) {
	out, _, err := prg.ContextEval(ctx, vars)
	if err != nil {
		return false, err
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression returned %s, want bool", out.Type().TypeName())
	}
	return b, nil
}

// nonEmpty is true for strings, lists and maps with at least one element
// and for any other non-null value.
func nonEmpty(v ref.Val) ref.Val {
	switch v := v.(type) {
	case traits.Sizer:
		n, ok := v.Size().(types.Int)
		return types.Bool(ok && n > 0)
	case types.Null:
		return types.False
	}
	return types.True
}
