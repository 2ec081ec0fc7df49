package workflow

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestRegistryList(t *testing.T) {
	r := NewRegistry()

	templates := r.List()
	if len(templates) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(templates))
	}
	if templates[0].ID != "apiscore-gate" || templates[1].ID != "apiscore-sarif" {
		t.Errorf("templates should be sorted by id, got %s, %s", templates[0].ID, templates[1].ID)
	}
}

func TestRegistryGet(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		id      string
		wantErr bool
	}{
		{"apiscore-sarif", false},
		{"apiscore-gate", false},
		{"nonexistent", true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			tmpl, err := r.Get(tt.id)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Get(%q) should return error", tt.id)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get(%q) returned unexpected error: %v", tt.id, err)
			}
			if tmpl.content == "" {
				t.Errorf("Get(%q) has no content", tt.id)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	r := NewRegistry()

	out, err := r.Generate("apiscore-sarif", map[string]string{
		"spec_path":  "api/openapi.yaml",
		"fail_under": "85",
	})
	if err != nil {
		t.Fatal(err)
	}

	checks := []string{
		`branches: [ "main" ]`,
		`paths: [ "api/openapi.yaml" ]`,
		"--fail-under 85",
		"cmd/apiscore@latest",
		"github/codeql-action/upload-sarif",
	}
	for _, want := range checks {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "[[") {
		t.Error("unrendered template delimiters in output")
	}

	var parsed map[string]any
	if err := yaml.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("generated workflow is not valid YAML: %v", err)
	}
	if parsed["name"] != "API Score" {
		t.Errorf("unexpected workflow name %v", parsed["name"])
	}
}

func TestGenerateGateKeepsActionsExpressions(t *testing.T) {
	r := NewRegistry()

	out, err := r.Generate("apiscore-gate", map[string]string{"spec_path": "openapi.yaml"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"$GITHUB_STEP_SUMMARY"`) || !strings.Contains(out, "--fail-under 70") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestGenerateErrors(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Generate("apiscore-gate", nil); err == nil || !strings.Contains(err.Error(), "spec_path") {
		t.Errorf("expected missing spec_path error, got %v", err)
	}
	if _, err := r.Generate("nonexistent", map[string]string{"spec_path": "x"}); err == nil {
		t.Error("expected error for unknown template")
	}
}
