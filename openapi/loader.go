package openapi

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseError reports a description that cannot be parsed or resolved.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "parsing specification: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load parses YAML or JSON text into a Document. Local references
// ("#/...") are resolved; external references fail the load.
func Load(text string) (*Document, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ParseError{Err: errors.New("empty document")}
	}

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(text), &root); err != nil {
		return nil, &ParseError{Err: err}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, &ParseError{Err: errors.New("empty document")}
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, &ParseError{Err: errors.New("document root must be a mapping")}
	}

	doc, err := newLoader(top).document()
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return doc, nil
}

type loader struct {
	root    *yaml.Node
	values  map[*yaml.Node]any
	schemas map[*yaml.Node]*Schema
}

func newLoader(root *yaml.Node) *loader {
	return &loader{
		root:    root,
		values:  make(map[*yaml.Node]any),
		schemas: make(map[*yaml.Node]*Schema),
	}
}

func (l *loader) document() (*Document, error) {
	specVersion, err := l.specVersion()
	if err != nil {
		return nil, err
	}

	v, err := l.value(l.root)
	if err != nil {
		return nil, err
	}
	root, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New("document root must be a mapping")
	}
	doc := &Document{
		SpecVersion: specVersion,
		Root:        root,
	}

	if info := mappingValue(l.root, "info"); info != nil {
		info, _, err := l.resolve(info)
		if err != nil {
			return nil, fmt.Errorf("info: %w", err)
		}
		doc.Title = scalarText(mappingValue(info, "title"))
		doc.Version = scalarText(mappingValue(info, "version"))
	}

	if doc.Paths, err = l.paths(); err != nil {
		return nil, err
	}
	return doc, nil
}

func (l *loader) specVersion() (string, error) {
	if v := scalarText(mappingValue(l.root, "openapi")); v != "" {
		if !strings.HasPrefix(v, "3.") {
			return "", fmt.Errorf("unsupported openapi version %q", v)
		}
		return v, nil
	}
	if v := scalarText(mappingValue(l.root, "swagger")); v != "" {
		if v != "2.0" {
			return "", fmt.Errorf("unsupported swagger version %q", v)
		}
		return v, nil
	}
	return "", errors.New(`not an API description: missing "openapi" or "swagger" field`)
}

func (l *loader) paths() ([]*PathItem, error) {
	n := mappingValue(l.root, "paths")
	if n == nil {
		return nil, nil
	}
	n, _, err := l.resolve(n)
	if err != nil {
		return nil, fmt.Errorf("paths: %w", err)
	}
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, errors.New("paths must be a mapping")
	}

	var items []*PathItem
	for i := 0; i+1 < len(n.Content); i += 2 {
		template := n.Content[i].Value
		item, err := l.pathItem(template, n.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("paths %s: %w", template, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (l *loader) pathItem(template string, n *yaml.Node) (*PathItem, error) {
	n, _, err := l.resolve(n)
	if err != nil {
		return nil, err
	}
	item := &PathItem{Path: template}
	if isNull(n) {
		return item, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, errors.New("path item must be a mapping")
	}
	if item.Node, err = l.mapping(n); err != nil {
		return nil, err
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		m, ok := ParseMethod(n.Content[i].Value)
		if !ok {
			continue
		}
		op, err := l.operation(template, m, n.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m, err)
		}
		item.Operations = append(item.Operations, op)
	}
	return item, nil
}

func (l *loader) operation(template string, m Method, n *yaml.Node) (*Operation, error) {
	n, _, err := l.resolve(n)
	if err != nil {
		return nil, err
	}
	op := &Operation{Path: template, Method: m}
	if isNull(n) {
		return op, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, errors.New("operation must be a mapping")
	}
	if op.Node, err = l.mapping(n); err != nil {
		return nil, err
	}

	op.OperationID, _ = op.Node["operationId"].(string)
	op.Parameters, _ = op.Node["parameters"].([]any)
	op.Headers, _ = op.Node["headers"].([]any)
	op.Schemas, _ = op.Node["schemas"].([]any)

	if rb := mappingValue(n, "requestBody"); rb != nil {
		rb, _, err := l.resolve(rb)
		if err != nil {
			return nil, fmt.Errorf("requestBody: %w", err)
		}
		content, err := l.content(rb)
		if err != nil {
			return nil, fmt.Errorf("requestBody: %w", err)
		}
		op.RequestBody = &RequestBody{Content: content}
	}

	responses := mappingValue(n, "responses")
	if responses == nil {
		return op, nil
	}
	if responses, _, err = l.resolve(responses); err != nil {
		return nil, fmt.Errorf("responses: %w", err)
	}
	if responses.Kind != yaml.MappingNode {
		return op, nil
	}
	for i := 0; i+1 < len(responses.Content); i += 2 {
		code := responses.Content[i].Value
		resp, err := l.response(code, responses.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("responses %s: %w", code, err)
		}
		op.Responses = append(op.Responses, resp)
	}
	return op, nil
}

func (l *loader) response(code string, n *yaml.Node) (*Response, error) {
	n, _, err := l.resolve(n)
	if err != nil {
		return nil, err
	}
	resp := &Response{Code: code}
	if n.Kind != yaml.MappingNode {
		return resp, nil
	}
	if resp.Node, err = l.mapping(n); err != nil {
		return nil, err
	}
	if resp.Content, err = l.content(n); err != nil {
		return nil, err
	}
	return resp, nil
}

func (l *loader) content(n *yaml.Node) (map[string]*MediaType, error) {
	c := mappingValue(n, "content")
	if c == nil {
		return nil, nil
	}
	c, _, err := l.resolve(c)
	if err != nil {
		return nil, err
	}
	if c.Kind != yaml.MappingNode {
		return nil, nil
	}

	content := make(map[string]*MediaType, len(c.Content)/2)
	for i := 0; i+1 < len(c.Content); i += 2 {
		media, _, err := l.resolve(c.Content[i+1])
		if err != nil {
			return nil, err
		}
		mt := &MediaType{}
		if s := mappingValue(media, "schema"); s != nil {
			if mt.Schema, err = l.schema(s); err != nil {
				return nil, err
			}
		}
		content[c.Content[i].Value] = mt
	}
	return content, nil
}

func (l *loader) schema(n *yaml.Node) (*Schema, error) {
	target, name, err := l.resolve(n)
	if err != nil {
		return nil, err
	}
	if s, ok := l.schemas[target]; ok {
		return s, nil
	}
	v, err := l.value(target)
	if err != nil {
		return nil, err
	}
	node, _ := v.(map[string]any)
	s := &Schema{Name: name, Node: node}
	l.schemas[target] = s
	return s, nil
}

func (l *loader) mapping(n *yaml.Node) (map[string]any, error) {
	v, err := l.value(n)
	if err != nil {
		return nil, err
	}
	m, _ := v.(map[string]any)
	return m, nil
}

// value converts a node into plain Go values. Mappings and sequences are
// memoized per resolved node, so shared references share one value and
// recursive schemas become cyclic values instead of infinite recursion.
func (l *loader) value(n *yaml.Node) (any, error) {
	n, _, err := l.resolve(n)
	if err != nil {
		return nil, err
	}
	if v, ok := l.values[n]; ok {
		return v, nil
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return l.value(n.Content[0])
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		l.values[n] = m
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := l.value(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[n.Content[i].Value] = v
		}
		return m, nil
	case yaml.SequenceNode:
		s := make([]any, len(n.Content))
		l.values[n] = s
		for i, c := range n.Content {
			v, err := l.value(c)
			if err != nil {
				return nil, err
			}
			s[i] = v
		}
		return s, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, nil
}

// resolve follows aliases and $ref chains to the target node. The returned
// name is the last segment of the last reference followed.
func (l *loader) resolve(n *yaml.Node) (*yaml.Node, string, error) {
	var name string
	seen := make(map[*yaml.Node]bool)
	for {
		if n.Kind == yaml.AliasNode && n.Alias != nil {
			n = n.Alias
			continue
		}
		ref, ok := refOf(n)
		if !ok {
			return n, name, nil
		}
		if seen[n] {
			return nil, "", fmt.Errorf("circular reference %q", ref)
		}
		seen[n] = true

		target, err := l.pointer(ref)
		if err != nil {
			return nil, "", err
		}
		name = refName(ref)
		n = target
	}
}

// pointer evaluates a local JSON pointer reference against the document root.
func (l *loader) pointer(ref string) (*yaml.Node, error) {
	if !strings.HasPrefix(ref, "#") {
		return nil, fmt.Errorf("external reference %q is not supported", ref)
	}
	fragment := strings.TrimPrefix(ref, "#")
	if fragment == "" {
		return l.root, nil
	}
	if !strings.HasPrefix(fragment, "/") {
		return nil, fmt.Errorf("invalid reference %q", ref)
	}

	n := l.root
	for _, token := range strings.Split(fragment[1:], "/") {
		token, err := unescapeToken(token)
		if err != nil {
			return nil, fmt.Errorf("invalid reference %q: %w", ref, err)
		}
		for n.Kind == yaml.AliasNode && n.Alias != nil {
			n = n.Alias
		}

		var next *yaml.Node
		switch n.Kind {
		case yaml.MappingNode:
			next = mappingValue(n, token)
		case yaml.SequenceNode:
			if i, err := strconv.Atoi(token); err == nil && i >= 0 && i < len(n.Content) {
				next = n.Content[i]
			}
		}
		if next == nil {
			return nil, fmt.Errorf("unresolvable reference %q", ref)
		}
		n = next
	}
	return n, nil
}

func unescapeToken(token string) (string, error) {
	token, err := url.PathUnescape(token)
	if err != nil {
		return "", err
	}
	return strings.NewReplacer("~1", "/", "~0", "~").Replace(token), nil
}

func refOf(n *yaml.Node) (string, bool) {
	if n.Kind != yaml.MappingNode {
		return "", false
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == "$ref" && n.Content[i+1].Kind == yaml.ScalarNode {
			return n.Content[i+1].Value, true
		}
	}
	return "", false
}

func refName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		name, err := unescapeToken(ref[i+1:])
		if err == nil {
			return name
		}
		return ref[i+1:]
	}
	return ref
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func scalarText(n *yaml.Node) string {
	if n == nil || n.Kind != yaml.ScalarNode || n.ShortTag() == "!!null" {
		return ""
	}
	return n.Value
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}
