package lint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchRequestResponseSchema(t *testing.T) {
	doc := load(t, `
openapi: 3.0.0
paths:
  /x:
    post:
      requestBody:
        content:
          application/json:
            schema: {$ref: "#/components/schemas/NewThing"}
      responses:
        "201":
          content:
            application/json:
              schema: {$ref: "#/components/schemas/Thing"}
    put:
      requestBody:
        content:
          application/json:
            schema: {$ref: "#/components/schemas/Thing"}
      responses:
        "200":
          content:
            application/json:
              schema: {$ref: "#/components/schemas/Thing"}
    patch:
      requestBody:
        content:
          application/json:
            schema: {type: object}
      responses:
        "204": {description: no body}
    get:
      responses:
        "200":
          content:
            application/json:
              schema: {$ref: "#/components/schemas/Thing"}
components:
  schemas:
    Thing: {type: object}
    NewThing: {type: object}
`)

	rs := &RuleSet{Name: "restful", Rules: []Rule{{
		ID:       "match-request-response",
		Given:    ScopeOperation,
		Function: FuncMatchRequestResponseSchema,
	}}}
	diags := run(t, rs, doc)

	require.Len(t, diags, 1)
	assert.Equal(t, "Request body schema (NewThing) does not match response body schema (Thing).", diags[0].Message)
	assert.Equal(t, []string{"paths", "/x", "post"}, diags[0].Path)
	assert.Equal(t, SeverityWarning, diags[0].Severity)
}

func TestMatchRequestResponseSchemaInline(t *testing.T) {
	doc := load(t, `
openapi: 3.0.0
paths:
  /x:
    post:
      requestBody:
        content:
          application/json:
            schema: {type: object}
      responses:
        "200":
          content:
            application/json:
              schema: {type: object}
        "201":
          content:
            application/json:
              schema: {type: object}
`)
	msgs, err := MatchRequestResponseSchema(context.Background(), operationTarget(doc, doc.Operations()[0]))
	require.NoError(t, err)
	require.Len(t, msgs, 1, "one message per operation")
	assert.Equal(t, "Request body schema (inline object schema) does not match response body schema (inline object schema).", msgs[0])
}

func TestUniqueOperationIDs(t *testing.T) {
	rs := &RuleSet{Name: "test", Rules: []Rule{{ID: "unique", Given: ScopeDocument, Function: FuncUniqueOperationIDs}}}
	diags := run(t, rs, load(t, sample))
	require.Len(t, diags, 1)
	assert.Equal(t, `Operation id "listPets" of POST /pets is already used by GET /pets.`, diags[0].Message)
}

func TestPathParametersDefined(t *testing.T) {
	doc := load(t, `
openapi: 3.0.0
paths:
  /a/{id}:
    parameters:
      - {name: id, in: path}
    get: {}
  /b/{id}/c/{cid}:
    get:
      parameters:
        - {name: cid, in: path}
        - {name: id, in: query}
`)
	rs := &RuleSet{Name: "test", Rules: []Rule{{ID: "params", Given: ScopeOperation, Function: FuncPathParametersDefined}}}
	diags := run(t, rs, doc)
	require.Len(t, diags, 1)
	assert.Equal(t, `Path parameter "id" of GET /b/{id}/c/{cid} is not declared.`, diags[0].Message)
}

func TestWithFunctionsReplacesBuiltin(t *testing.T) {
	called := 0
	rs := &RuleSet{Name: "test", Rules: []Rule{{ID: "unique", Given: ScopeDocument, Function: FuncUniqueOperationIDs}}}
	e, err := New(rs, WithFunctions(map[string]Function{
		FuncUniqueOperationIDs: func(context.Context, *Target) ([]string, error) {
			called++
			return []string{"replaced"}, nil
		},
	}))
	require.NoError(t, err)

	diags, err := e.Run(context.Background(), load(t, sample))
	require.NoError(t, err)
	assert.Equal(t, 1, called)
	require.Len(t, diags, 1)
	assert.Equal(t, "replaced", diags[0].Message)
}
