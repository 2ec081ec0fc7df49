package ruleset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/build-flow-labs/apiscore/openapi"
)

var builtinNames = []string{
	Conformance, DeveloperExperience, MockingReadiness,
	DesignPatternRestful, OWASP, URLVersioning,
}

// wellDesigned satisfies every embedded rule.
const wellDesigned = `
openapi: 3.0.3
info:
  title: Pets
  version: 1.0.0
  description: Pet store.
  contact: {name: Team, email: team@example.com}
servers:
  - url: https://api.example.com/v1
    x-internal: false
security:
  - bearer: []
paths:
  /pets:
    get:
      operationId: listPets
      summary: List pets
      tags: [pets]
      parameters:
        - name: limit
          in: query
          description: Page size.
          schema: {type: integer, minimum: 1, maximum: 100}
      responses:
        "200":
          description: The pets.
          content:
            application/json:
              schema: {$ref: "#/components/schemas/Pets"}
              example: [{name: Rex}]
        "400": {description: Bad request.}
        "401": {description: Unauthorized.}
        "429": {description: Too many requests.}
    post:
      operationId: createPet
      summary: Create a pet
      tags: [pets]
      security: [{bearer: []}]
      requestBody:
        content:
          application/json:
            schema: {$ref: "#/components/schemas/Pet"}
      responses:
        "201":
          description: Created.
          content:
            application/json:
              schema: {$ref: "#/components/schemas/Pet"}
              example: {name: Rex}
        "400": {description: Bad request.}
        "401": {description: Unauthorized.}
        "429": {description: Too many requests.}
  /pets/{petId}:
    parameters:
      - name: petId
        in: path
        required: true
        description: Pet identifier.
        schema: {type: string, format: uuid}
    get:
      operationId: showPet
      summary: Show a pet
      tags: [pets]
      responses:
        "200":
          description: The pet.
          content:
            application/json:
              schema: {$ref: "#/components/schemas/Pet"}
              example: {name: Rex}
        "400": {description: Bad request.}
        "401": {description: Unauthorized.}
        "429": {description: Too many requests.}
components:
  schemas:
    Pet:
      description: A pet.
      type: object
      additionalProperties: false
      example: {name: Rex}
      properties:
        name: {type: string, maxLength: 64}
    Pets:
      description: Pets.
      type: array
      maxItems: 100
      example: [{name: Rex}]
      items: {$ref: "#/components/schemas/Pet"}
  securitySchemes:
    bearer: {type: http, scheme: bearer}
`

func TestBuiltinRuleSetsCompile(t *testing.T) {
	for _, name := range builtinNames {
		t.Run(name, func(t *testing.T) {
			e, err := Compile(Builtin(), name)
			require.NoError(t, err)
			assert.Equal(t, name, e.Name())
			assert.Positive(t, e.Len())
		})
	}
}

func TestBuiltinRuleSetsPassWellDesignedDocument(t *testing.T) {
	doc, err := openapi.Load(wellDesigned)
	require.NoError(t, err)

	for _, name := range builtinNames {
		t.Run(name, func(t *testing.T) {
			e, err := Compile(Builtin(), name)
			require.NoError(t, err)
			diags, err := e.Run(context.Background(), doc)
			require.NoError(t, err)
			assert.Empty(t, diags)
		})
	}
}

func TestBuiltinRuleSetsOnMinimalDocument(t *testing.T) {
	doc, err := openapi.Load(`
openapi: 3.0.0
info: {title: x, version: "1"}
paths:
  /get-pets/:
    post:
      requestBody:
        content:
          application/json:
            schema: {type: object}
      responses:
        "201":
          description: ok
          content:
            application/json:
              schema: {type: object}
`)
	require.NoError(t, err)

	// Every rule set must evaluate without runtime errors on sparse input.
	for _, name := range builtinNames {
		e, err := Compile(Builtin(), name)
		require.NoError(t, err)
		_, err = e.Run(context.Background(), doc)
		require.NoError(t, err, name)
	}

	e, err := Compile(Builtin(), DesignPatternRestful)
	require.NoError(t, err)
	diags, err := e.Run(context.Background(), doc)
	require.NoError(t, err)

	var codes []string
	for _, d := range diags {
		codes = append(codes, d.Code)
	}
	assert.Equal(t, []string{
		"match-request-response-schema",
		"path-no-verbs",
		"path-no-trailing-slash",
	}, codes)
}

func TestOWASPRuleIDsCarryOneTag(t *testing.T) {
	rs, err := Builtin().Load(OWASP)
	require.NoError(t, err)

	for _, r := range rs.Rules {
		matches := 0
		for i := 1; i <= 10; i++ {
			if strings.Contains(r.ID, fmt.Sprintf("owasp:api%d", i)) {
				matches++
			}
		}
		assert.Equal(t, 1, matches, r.ID)
	}
}

func TestBuiltinList(t *testing.T) {
	infos, err := Builtin().List()
	require.NoError(t, err)

	var names []string
	for _, info := range infos {
		names = append(names, info.Name)
		assert.NotEmpty(t, info.Description, info.Name)
		assert.Positive(t, info.Rules, info.Name)
	}
	want := append([]string(nil), builtinNames...)
	sort.Strings(want)
	assert.Equal(t, want, names)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "unknown-key.yaml", "name: x\nrules: []\nextra: true\n")
	writeFile(t, dir, "bad-rule.yaml", "name: x\nrules:\n  - id: a\n    given: nowhere\n    then: 'true'\n")
	writeFile(t, dir, "bad-cel.yaml", "name: x\nrules:\n  - id: a\n    given: document\n    then: 'doc.('\n")

	tests := []struct {
		name     string
		notExist bool
	}{
		{name: "missing", notExist: true},
		{name: "../escape"},
		{name: ""},
		{name: "unknown-key"},
		{name: "bad-rule"},
		{name: "bad-cel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(Dir(dir), tt.name)
			var le *LoadError
			require.True(t, errors.As(err, &le), "got %v", err)
			assert.Equal(t, tt.name, le.Name)
			assert.Equal(t, tt.notExist, errors.Is(err, fs.ErrNotExist))
		})
	}
}

func TestLayered(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "owasp.yml", `
name: owasp
description: Local override.
rules:
  - id: owasp:api7:local
    given: document
    then: "false"
`)
	writeFile(t, dir, "extra.yaml", `
name: extra
rules:
  - id: extra
    given: document
    then: "true"
`)

	l := NewLayered(Dir(dir), Builtin())

	rs, err := l.Load(OWASP)
	require.NoError(t, err)
	assert.Equal(t, "Local override.", rs.Description)

	rs, err = l.Load(Conformance)
	require.NoError(t, err)
	assert.Equal(t, Conformance, rs.Name)

	_, err = l.Load("absent")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	infos, err := l.List()
	require.NoError(t, err)
	require.Len(t, infos, 7)
	for _, info := range infos {
		if info.Name == OWASP {
			assert.Equal(t, 1, info.Rules)
		}
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

