package scoring

import (
	"strconv"
	"strings"

	"github.com/build-flow-labs/apiscore/lint"
)

// OWASPRisk is one item of the OWASP API Security Top 10.
type OWASPRisk int

const (
	BrokenObjectLevelAuthorization OWASPRisk = iota + 1
	BrokenAuthentication
	ExcessiveDataExposure
	LackOfResourcesAndRateLimiting
	BrokenFunctionLevelAuthorization
	MassAssignment
	SecurityMisconfiguration
	Injection
	ImproperAssetsManagement
	InsufficientLoggingAndMonitoring
)

const (
	unknownRiskName = "Unknown Rule ID"
	unknownRiskKey  = "x-api-owasp-default"
)

var owaspRisks = [...]struct{ name, key string }{
	BrokenObjectLevelAuthorization:   {"Broken Object Level Authorization", "x-api-owasp-broken-object-level-authorization"},
	BrokenAuthentication:             {"Broken Authentication", "x-api-owasp-broken-authentication"},
	ExcessiveDataExposure:            {"Excessive Data Exposure", "x-api-owasp-excessive-data-exposure"},
	LackOfResourcesAndRateLimiting:   {"Lack of Resources & Rate Limiting", "x-api-owasp-lack-of-resources-rate-limiting"},
	BrokenFunctionLevelAuthorization: {"Broken Function Level Authorization", "x-api-owasp-broken-function-level-authorization"},
	MassAssignment:                   {"Mass Assignment", "x-api-owasp-mass-assignment"},
	SecurityMisconfiguration:         {"Security Misconfiguration", "x-api-owasp-security-misconfiguration"},
	Injection:                        {"Injection", "x-api-owasp-injection"},
	ImproperAssetsManagement:         {"Improper Assets Management", "x-api-owasp-improper-assets-management"},
	InsufficientLoggingAndMonitoring: {"Insufficient Logging & Monitoring", "x-api-owasp-insufficient-logging-monitoring"},
}

// OWASPRisks lists the ten risks in ascending order.
func OWASPRisks() []OWASPRisk {
	risks := make([]OWASPRisk, 0, len(owaspRisks)-1)
	for r := BrokenObjectLevelAuthorization; r <= InsufficientLoggingAndMonitoring; r++ {
		risks = append(risks, r)
	}
	return risks
}

func (r OWASPRisk) valid() bool {
	return r >= BrokenObjectLevelAuthorization && r <= InsufficientLoggingAndMonitoring
}

// Tag is the substring that marks a rule id as belonging to the risk.
func (r OWASPRisk) Tag() string {
	return "owasp:api" + strconv.Itoa(int(r))
}

func (r OWASPRisk) Name() string {
	if !r.valid() {
		return unknownRiskName
	}
	return owaspRisks[r].name
}

func (r OWASPRisk) Key() string {
	if !r.valid() {
		return unknownRiskKey
	}
	return owaspRisks[r].key
}

// PartitionOWASP scores one OWASP rule set run as ten categories. Each
// category receives the diagnostics whose rule id contains its tag and is
// scored against the shared baseline.
//
// Matching is by substring, so a rule id tagged owasp:api10 also matches
// owasp:api1.
func PartitionOWASP(diags []lint.Diagnostic, baseline int) []Category {
	risks := OWASPRisks()
	categories := make([]Category, 0, len(risks))
	for _, r := range risks {
		var subset []lint.Diagnostic
		for _, d := range diags {
			if strings.Contains(d.Code, r.Tag()) {
				subset = append(subset, d)
			}
		}
		categories = append(categories, ScoreCategory(r.Name(), r.Key(), subset, baseline))
	}
	return categories
}
