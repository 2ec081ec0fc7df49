package scoring

import "github.com/build-flow-labs/apiscore/openapi"

// Maximal achievable points per category. The constants are part of the
// report format: changing them changes every score ever published.

func ConformanceBaseline(c openapi.Counts) int {
	return 50 +
		c.Headers*10 +
		c.Parameters*10 +
		c.InputOperations*50 +
		c.SuccessResponses*25 +
		c.Schemas*25
}

func DeveloperExperienceBaseline(c openapi.Counts) int {
	return 7 +
		c.Headers*5 +
		c.Parameters*5 +
		c.Operations*6 +
		c.PathResponses*5
}

func MockingReadinessBaseline(c openapi.Counts) int {
	return c.Headers*5 +
		c.Parameters*5 +
		c.InputOperations*5 +
		c.SuccessResponses*5
}

// DesignPatternRestfulBaseline is zero for a document without paths.
func DesignPatternRestfulBaseline(c openapi.Counts) int {
	return c.Paths * 5
}

// OWASPBaseline is shared by the ten OWASP categories.
func OWASPBaseline(c openapi.Counts) int {
	return c.Operations*50 + c.Schemas*50
}

func URLVersioningBaseline(c openapi.Counts) int {
	return 10 + c.Paths*5
}
