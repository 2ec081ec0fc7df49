// Package openapi loads OpenAPI 2.0 and 3.x descriptions into a typed,
// reference-resolved tree and derives the structural counts used for scoring.
//
// The typed tree only carries what the scoring engine reads. The complete
// document is kept as plain Go values (map[string]any, []any and scalars) in
// Document.Root so rule expressions can inspect anything. Local references
// are resolved while loading: every $ref to the same target yields the same
// value, and the same *Schema.
package openapi

import "strings"

// Method is an HTTP verb that keys an operation inside a path item.
type Method string

const (
	MethodGet     Method = "get"
	MethodPut     Method = "put"
	MethodPost    Method = "post"
	MethodDelete  Method = "delete"
	MethodOptions Method = "options"
	MethodHead    Method = "head"
	MethodPatch   Method = "patch"
	MethodTrace   Method = "trace"
)

// ParseMethod maps a path item key to a Method. Comparison ignores case.
func ParseMethod(s string) (Method, bool) {
	m := Method(strings.ToLower(s))
	switch m {
	case MethodGet, MethodPut, MethodPost, MethodDelete,
		MethodOptions, MethodHead, MethodPatch, MethodTrace:
		return m, true
	}
	return "", false
}

// IsRead reports whether operations with this method only read state.
func (m Method) IsRead() bool {
	return m == MethodGet
}

// Document is a parsed, reference-resolved API description.
type Document struct {
	Title       string
	Version     string
	SpecVersion string // value of the "openapi" or "swagger" field
	Paths       []*PathItem
	Root        map[string]any
}

// Path returns the path item for a template, or nil.
func (d *Document) Path(template string) *PathItem {
	for _, p := range d.Paths {
		if p.Path == template {
			return p
		}
	}
	return nil
}

// Operations returns every operation in document order.
func (d *Document) Operations() []*Operation {
	var ops []*Operation
	for _, p := range d.Paths {
		ops = append(ops, p.Operations...)
	}
	return ops
}

// PathItem groups the operations declared under one path template.
type PathItem struct {
	Path       string
	Operations []*Operation
	Node       map[string]any
}

// Operation returns the operation for a method, or nil.
func (p *PathItem) Operation(m Method) *Operation {
	for _, op := range p.Operations {
		if op.Method == m {
			return op
		}
	}
	return nil
}

// Operation is one (path, method) pair. Absent collections are empty, never nil-dereferenced.
type Operation struct {
	Path        string
	Method      Method
	OperationID string
	Parameters  []any
	Headers     []any
	Schemas     []any
	RequestBody *RequestBody
	Responses   []*Response
	Node        map[string]any
}

// Response returns the response declared for a status code key, or nil.
func (o *Operation) Response(code string) *Response {
	for _, r := range o.Responses {
		if r.Code == code {
			return r
		}
	}
	return nil
}

// RequestBody is an OpenAPI 3 request body.
type RequestBody struct {
	Content map[string]*MediaType
}

// Schema returns the schema declared for a media type, or nil.
func (b *RequestBody) Schema(mediaType string) *Schema {
	if b == nil {
		return nil
	}
	return contentSchema(b.Content, mediaType)
}

// Response is a response entry keyed by its status code.
type Response struct {
	Code    string
	Content map[string]*MediaType
	Node    map[string]any
}

// Schema returns the schema declared for a media type, or nil.
func (r *Response) Schema(mediaType string) *Schema {
	if r == nil {
		return nil
	}
	return contentSchema(r.Content, mediaType)
}

// MediaType is one entry of a content map.
type MediaType struct {
	Schema *Schema
}

// Schema is a resolved schema object. Schemas reached through references
// to the same target are the same pointer; inline schemas are always distinct.
type Schema struct {
	Name string // component name of the last reference followed, if any
	Node map[string]any
}

func (s *Schema) String() string {
	switch {
	case s == nil:
		return "none"
	case s.Name != "":
		return s.Name
	}
	if typ, ok := s.Node["type"].(string); ok && typ != "" {
		return "inline " + typ + " schema"
	}
	return "inline schema"
}

func contentSchema(content map[string]*MediaType, mediaType string) *Schema {
	mt, ok := content[mediaType]
	if !ok || mt == nil {
		return nil
	}
	return mt.Schema
}
