package lint

import (
	"sort"
	"strconv"
	"strings"

	"github.com/build-flow-labs/apiscore/openapi"
)

// Target is one thing a rule is evaluated against. Fields that do not apply
// to the rule's scope are zero.
type Target struct {
	Doc       *openapi.Document
	Path      string
	Method    openapi.Method
	Code      string
	Name      string
	Operation *openapi.Operation
	Response  *openapi.Response
	Node      any
	Location  []string

	vars map[string]any
}

// Variables returns the CEL activation for the target.
func (t *Target) Variables() map[string]any {
	if t.vars != nil {
		return t.vars
	}
	t.vars = map[string]any{
		"doc":      orEmpty(t.Doc.Root),
		"node":     t.Node,
		"op":       map[string]any{},
		"response": map[string]any{},
		"path":     t.Path,
		"method":   string(t.Method),
		"code":     t.Code,
		"name":     t.Name,
	}
	if t.Node == nil {
		t.vars["node"] = map[string]any{}
	}
	if t.Operation != nil {
		t.vars["op"] = orEmpty(t.Operation.Node)
	}
	if t.Response != nil {
		t.vars["response"] = orEmpty(t.Response.Node)
	}
	return t.vars
}

func (t *Target) render(msg string) string {
	return strings.NewReplacer(
		"{{path}}", t.Path,
		"{{method}}", strings.ToUpper(string(t.Method)),
		"{{code}}", t.Code,
		"{{name}}", t.Name,
	).Replace(msg)
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// targets lists the targets of a scope in document order. Component maps
// have no order after loading, so their entries are sorted by name.
func targets(doc *openapi.Document, scope Scope) []*Target {
	var ts []*Target
	switch scope {
	case ScopeDocument:
		ts = append(ts, &Target{Doc: doc, Node: doc.Root})

	case ScopePath:
		for _, item := range doc.Paths {
			ts = append(ts, &Target{
				Doc:      doc,
				Path:     item.Path,
				Node:     orEmpty(item.Node),
				Location: []string{"paths", item.Path},
			})
		}

	case ScopeOperation:
		for _, op := range doc.Operations() {
			ts = append(ts, operationTarget(doc, op))
		}

	case ScopeResponse:
		for _, op := range doc.Operations() {
			for _, r := range op.Responses {
				t := operationTarget(doc, op)
				t.Code = r.Code
				t.Response = r
				t.Node = orEmpty(r.Node)
				t.Location = append(t.Location, "responses", r.Code)
				ts = append(ts, t)
			}
		}

	case ScopeParameter:
		for _, item := range doc.Paths {
			shared, _ := item.Node["parameters"].([]any)
			for i, p := range shared {
				ts = append(ts, &Target{
					Doc:      doc,
					Path:     item.Path,
					Name:     stringField(p, "name"),
					Node:     p,
					Location: []string{"paths", item.Path, "parameters", strconv.Itoa(i)},
				})
			}
			for _, op := range item.Operations {
				for i, p := range op.Parameters {
					t := operationTarget(doc, op)
					t.Name = stringField(p, "name")
					t.Node = p
					t.Location = append(t.Location, "parameters", strconv.Itoa(i))
					ts = append(ts, t)
				}
			}
		}

	case ScopeServer:
		servers, _ := doc.Root["servers"].([]any)
		for i, s := range servers {
			ts = append(ts, &Target{
				Doc:      doc,
				Name:     stringField(s, "url"),
				Node:     s,
				Location: []string{"servers", strconv.Itoa(i)},
			})
		}

	case ScopeComponentSchema:
		ts = componentTargets(doc, []string{"components", "schemas"}, []string{"definitions"})

	case ScopeSecurityScheme:
		ts = componentTargets(doc, []string{"components", "securitySchemes"}, []string{"securityDefinitions"})
	}
	return ts
}

func operationTarget(doc *openapi.Document, op *openapi.Operation) *Target {
	return &Target{
		Doc:       doc,
		Path:      op.Path,
		Method:    op.Method,
		Operation: op,
		Node:      orEmpty(op.Node),
		Location:  []string{"paths", op.Path, string(op.Method)},
	}
}

// componentTargets reads the first of the given locations that exists, so
// OpenAPI 3 components and Swagger 2 definitions are both covered.
func componentTargets(doc *openapi.Document, locations ...[]string) []*Target {
	for _, loc := range locations {
		m, ok := lookup(doc.Root, loc)
		if !ok {
			continue
		}
		names := make([]string, 0, len(m))
		for name := range m {
			names = append(names, name)
		}
		sort.Strings(names)

		ts := make([]*Target, 0, len(names))
		for _, name := range names {
			ts = append(ts, &Target{
				Doc:      doc,
				Name:     name,
				Node:     m[name],
				Location: append(append([]string{}, loc...), name),
			})
		}
		return ts
	}
	return nil
}

func lookup(root map[string]any, keys []string) (map[string]any, bool) {
	cur := root
	for _, k := range keys {
		next, ok := cur[k].(map[string]any)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func stringField(v any, key string) string {
	m, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	s, _ := m[key].(string)
	return s
}
