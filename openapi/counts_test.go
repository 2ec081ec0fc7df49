package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountSinglePath(t *testing.T) {
	doc, err := Load(`
openapi: 3.0.0
info: {title: x, version: "1"}
paths:
  /x:
    get:
      responses:
        "200": {description: ok}
`)
	require.NoError(t, err)

	assert.Equal(t, Counts{
		Paths:            1,
		Operations:       1,
		PathResponses:    1,
		InputOperations:  1,
		SuccessResponses: 1,
	}, Count(doc))
}

func TestCountAllFields(t *testing.T) {
	doc, err := Load(`
openapi: 3.0.0
paths:
  /a:
    get:
      parameters: [{name: p1, in: query}, {name: p2, in: query}]
      headers: [{name: X-Trace}]
      schemas: [{type: string}, {type: integer}, {type: object}]
      responses:
        "100": {description: continue}
        "200": {description: ok}
        "302": {description: moved}
        "404": {description: missing}
        "5XX": {description: failure}
        "600": {description: out of band}
        default: {description: error}
    post:
      responses:
        "2XX": {description: ok}
  /b:
    delete: {}
    x-extension: true
  /c:
`)
	require.NoError(t, err)

	assert.Equal(t, Counts{
		Paths:              3,
		Operations:         3,
		PathResponses:      8,
		InputOperations:    1,
		NonInputOperations: 2,
		SuccessResponses:   5,
		Parameters:         2,
		Headers:            1,
		Schemas:            3,
	}, Count(doc))
}

func TestCountEmpty(t *testing.T) {
	doc, err := Load("openapi: 3.1.0\ninfo: {title: x, version: '1'}\n")
	require.NoError(t, err)
	assert.Equal(t, Counts{}, Count(doc))
	assert.Equal(t, Counts{}, Count(nil))
}

func TestIsSuccessClass(t *testing.T) {
	tests := map[string]bool{
		"101":     true,
		"200":     true,
		"2XX":     true,
		"304":     true,
		"600":     true,
		"400":     false,
		"500":     false,
		"default": false,
		"":        false,
	}
	for code, want := range tests {
		assert.Equal(t, want, IsSuccessClass(code), code)
	}
}
