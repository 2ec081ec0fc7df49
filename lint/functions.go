package lint

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/build-flow-labs/apiscore/openapi"
)

// Names of the built-in rule functions.
const (
	FuncMatchRequestResponseSchema = "match-request-response-schema"
	FuncUniqueOperationIDs         = "unique-operation-ids"
	FuncPathParametersDefined      = "path-parameters-defined"
)

// Builtins returns a fresh map of the built-in rule functions.
func Builtins() map[string]Function {
	return map[string]Function{
		FuncMatchRequestResponseSchema: MatchRequestResponseSchema,
		FuncUniqueOperationIDs:         UniqueOperationIDs,
		FuncPathParametersDefined:      PathParametersDefined,
	}
}

const jsonMediaType = "application/json"

// MatchRequestResponseSchema reports an operation whose application/json
// request body schema is not the schema returned by its 200 or 201
// response. Schemas are compared by identity: two references to the same
// component match, two equal inline schemas do not. At most one message is
// returned per operation, and operations without both a body and a
// matching response are skipped.
func MatchRequestResponseSchema(_ context.Context, t *Target) ([]string, error) {
	op := t.Operation
	if op == nil {
		return nil, nil
	}
	request := op.RequestBody.Schema(jsonMediaType)
	if request == nil {
		return nil, nil
	}
	for _, code := range []string{"200", "201"} {
		response := op.Response(code).Schema(jsonMediaType)
		if response == nil {
			continue
		}
		if response != request {
			return []string{fmt.Sprintf(
				"Request body schema (%s) does not match response body schema (%s).",
				request, response,
			)}, nil
		}
	}
	return nil, nil
}

// UniqueOperationIDs reports every operationId used by more than one
// operation. It is meant for document-scoped rules.
func UniqueOperationIDs(_ context.Context, t *Target) ([]string, error) {
	first := make(map[string]*openapi.Operation)
	var msgs []string
	for _, op := range t.Doc.Operations() {
		if op.OperationID == "" {
			continue
		}
		prev, ok := first[op.OperationID]
		if !ok {
			first[op.OperationID] = op
			continue
		}
		msgs = append(msgs, fmt.Sprintf("Operation id %q of %s %s is already used by %s %s.",
			op.OperationID,
			strings.ToUpper(string(op.Method)), op.Path,
			strings.ToUpper(string(prev.Method)), prev.Path,
		))
	}
	return msgs, nil
}

var templateParam = regexp.MustCompile(`\{([^{}]+)\}`)

// PathParametersDefined reports template variables of the operation's path
// that are declared as a path parameter neither on the operation nor on
// its path item.
func PathParametersDefined(_ context.Context, t *Target) ([]string, error) {
	op := t.Operation
	if op == nil {
		return nil, nil
	}

	declared := make(map[string]bool)
	addPathParams := func(params []any) {
		for _, p := range params {
			m, ok := p.(map[string]any)
			if !ok || m["in"] != "path" {
				continue
			}
			if name, ok := m["name"].(string); ok {
				declared[name] = true
			}
		}
	}
	if item := t.Doc.Path(op.Path); item != nil {
		shared, _ := item.Node["parameters"].([]any)
		addPathParams(shared)
	}
	addPathParams(op.Parameters)

	var msgs []string
	for _, m := range templateParam.FindAllStringSubmatch(op.Path, -1) {
		if !declared[m[1]] {
			msgs = append(msgs, fmt.Sprintf("Path parameter %q of %s %s is not declared.",
				m[1], strings.ToUpper(string(op.Method)), op.Path))
		}
	}
	return msgs, nil
}
