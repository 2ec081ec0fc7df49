// Package workflow renders GitHub Actions workflows that score an API
// description on every change.
package workflow

import (
	"bytes"
	"embed"
	"fmt"
	"sort"
	"text/template"
)

//go:embed github/*.yaml
var workflowFS embed.FS

// Template is a workflow template.
type Template struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Variables   []Variable `json:"variables"`
	content     string
}

// Variable defines a value that can be customized in a template.
type Variable struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Default     string `json:"default"`
	Required    bool   `json:"required"`
}

// Registry holds the available workflow templates.
type Registry struct {
	templates map[string]*Template
}

var commonVariables = []Variable{
	{Name: "spec_path", Description: "Path of the OpenAPI description in the repository", Required: true},
	{Name: "fail_under", Description: "Fail the job when the overall score is below this value", Default: "70"},
	{Name: "version", Description: "apiscore version to install", Default: "latest"},
}

// NewRegistry creates a registry with the built-in templates.
func NewRegistry() *Registry {
	r := &Registry{templates: make(map[string]*Template)}

	r.register(&Template{
		ID:          "apiscore-sarif",
		Name:        "API Score with code scanning",
		Description: "Score on push and pull request and upload findings as SARIF to code scanning",
		Variables: append([]Variable{
			{Name: "branch", Description: "Branch to score on push", Default: "main"},
		}, commonVariables...),
	})

	r.register(&Template{
		ID:          "apiscore-gate",
		Name:        "API Score pull request gate",
		Description: "Score pull requests, write the report to the job summary and fail below a threshold",
		Variables:   commonVariables,
	})

	return r
}

func (r *Registry) register(t *Template) {
	content, err := workflowFS.ReadFile(fmt.Sprintf("github/%s.yaml", t.ID))
	if err != nil {
		panic(fmt.Sprintf("workflow template %s: %v", t.ID, err))
	}
	t.content = string(content)
	r.templates[t.ID] = t
}

// List returns all templates sorted by id.
func (r *Registry) List() []*Template {
	result := make([]*Template, 0, len(r.templates))
	for _, t := range r.templates {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Get returns a template by id.
func (r *Registry) Get(id string) (*Template, error) {
	t, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("template not found: %s", id)
	}
	return t, nil
}

// Generate renders a template. Unset variables take their defaults; a
// missing required variable is an error.
func (r *Registry) Generate(id string, vars map[string]string) (string, error) {
	tmpl, err := r.Get(id)
	if err != nil {
		return "", err
	}

	data := make(map[string]string, len(tmpl.Variables))
	for _, v := range tmpl.Variables {
		value := vars[v.Name]
		if value == "" {
			value = v.Default
		}
		if value == "" && v.Required {
			return "", fmt.Errorf("template %s: variable %s is required", id, v.Name)
		}
		data[v.Name] = value
	}

	// GitHub Actions owns the {{ }} syntax.
	t, err := template.New(id).Delims("[[", "]]").Option("missingkey=error").Parse(tmpl.content)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}
