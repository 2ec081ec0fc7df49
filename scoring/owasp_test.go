package scoring

import (
	"fmt"
	"testing"

	"github.com/build-flow-labs/apiscore/lint"
)

func TestOWASPRiskTable(t *testing.T) {
	risks := OWASPRisks()
	if len(risks) != 10 {
		t.Fatalf("expected 10 risks, got %d", len(risks))
	}
	for i, r := range risks {
		if want := fmt.Sprintf("owasp:api%d", i+1); r.Tag() != want {
			t.Errorf("risk %d tag = %q, want %q", i, r.Tag(), want)
		}
		if r.Name() == unknownRiskName || r.Key() == unknownRiskKey {
			t.Errorf("risk %d has no table entry", i+1)
		}
	}

	if got := LackOfResourcesAndRateLimiting.Name(); got != "Lack of Resources & Rate Limiting" {
		t.Errorf("unexpected name %q", got)
	}
	if got := InsufficientLoggingAndMonitoring.Key(); got != "x-api-owasp-insufficient-logging-monitoring" {
		t.Errorf("unexpected key %q", got)
	}

	for _, r := range []OWASPRisk{0, 11, -1} {
		if r.Name() != "Unknown Rule ID" || r.Key() != "x-api-owasp-default" {
			t.Errorf("risk %d should fall back to the default entry, got %q %q", r, r.Name(), r.Key())
		}
	}
}

func TestPartitionOWASPSingleError(t *testing.T) {
	diags := []lint.Diagnostic{
		{Code: "owasp:api1:2019-no-numeric-ids", Severity: lint.SeverityError, Message: "numeric id"},
	}

	categories := PartitionOWASP(diags, 50)
	if len(categories) != 10 {
		t.Fatalf("expected 10 categories, got %d", len(categories))
	}
	if categories[0].Key != "x-api-owasp-broken-object-level-authorization" {
		t.Errorf("first category key = %q", categories[0].Key)
	}
	if categories[0].Score != 90 {
		t.Errorf("expected api1 score 90, got %d", categories[0].Score)
	}
	if len(categories[0].Issues) != 1 {
		t.Errorf("expected 1 api1 issue, got %d", len(categories[0].Issues))
	}
	for _, c := range categories[1:] {
		if c.Score != 100 {
			t.Errorf("%s: expected 100, got %d", c.Name, c.Score)
		}
		if len(c.Issues) != 0 {
			t.Errorf("%s: expected no issues, got %d", c.Name, len(c.Issues))
		}
	}
}

func TestPartitionOWASPExclusive(t *testing.T) {
	var diags []lint.Diagnostic
	for i := 2; i <= 9; i++ {
		diags = append(diags, lint.Diagnostic{
			Code:     fmt.Sprintf("owasp:api%d:2019-rule", i),
			Severity: lint.SeverityWarning,
		})
	}
	diags = append(diags,
		lint.Diagnostic{Code: "not-owasp", Severity: lint.SeverityError},
		lint.Diagnostic{Code: "", Severity: lint.SeverityError},
	)

	seen := make(map[string]int)
	for _, c := range PartitionOWASP(diags, 100) {
		for _, issue := range c.Issues {
			seen[issue.Code]++
		}
	}

	for i := 2; i <= 9; i++ {
		code := fmt.Sprintf("owasp:api%d:2019-rule", i)
		if seen[code] != 1 {
			t.Errorf("%s appeared %d times, want 1", code, seen[code])
		}
	}
	if seen["not-owasp"] != 0 || seen["unknown"] != 0 {
		t.Error("untagged diagnostics must not be partitioned")
	}
}

func TestPartitionOWASPSharedBaseline(t *testing.T) {
	diags := []lint.Diagnostic{
		{Code: "owasp:api3:a", Severity: lint.SeverityWarning},
		{Code: "owasp:api3:b", Severity: lint.SeverityWarning},
		{Code: "owasp:api4:a", Severity: lint.SeverityError},
	}
	categories := PartitionOWASP(diags, 200)
	if got := categories[2].Score; got != 99 {
		t.Errorf("api3: expected 99, got %d", got)
	}
	if got := categories[3].Score; got != 98 {
		t.Errorf("api4: expected 98, got %d", got)
	}
}

func TestPartitionOWASPTenMatchesOne(t *testing.T) {
	diags := []lint.Diagnostic{{Code: "owasp:api10:2019-logging", Severity: lint.SeverityError}}
	categories := PartitionOWASP(diags, 50)
	if len(categories[0].Issues) != 1 || len(categories[9].Issues) != 1 {
		t.Errorf("api10 ids match both api1 and api10 by substring, got %d and %d",
			len(categories[0].Issues), len(categories[9].Issues))
	}
}
