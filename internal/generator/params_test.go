package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/refitgen/internal/config"
	"github.com/mark3labs/refitgen/internal/spec"
)

const paramsDoc = `
openapi: 3.0.3
info: {title: P, version: "1"}
paths:
  /orders/{orderId}/items:
    parameters:
      - {name: orderId, in: path, required: true, schema: {type: string}}
      - {name: page, in: query, schema: {type: integer}}
    post:
      operationId: addItem
      parameters:
        - {name: X-Trace, in: header, required: true, schema: {type: string}}
        - {name: page, in: query, required: true, schema: {type: integer, format: int64}}
        - {name: since, in: query, schema: {type: string, format: date}}
        - {name: session, in: cookie, schema: {type: string}}
        - {name: page_size, in: query, schema: {type: integer}}
        - {name: class, in: query, schema: {type: string}}
        - {name: until, in: query, required: true, schema: {type: string, format: date-time}}
      requestBody:
        content:
          application/json:
            schema: {$ref: "#/components/schemas/Item"}
      responses: {"204": {description: done}}
  /upload:
    post:
      operationId: upload
      requestBody:
        required: true
        content:
          multipart/form-data:
            schema:
              type: object
              required: [file]
              properties:
                file: {type: string, format: binary}
                description: {type: string}
                attachments: {type: array, items: {type: string, format: binary}}
                pet-id: {type: integer}
      responses: {"200": {description: ok}}
  /login:
    post:
      operationId: login
      requestBody:
        content:
          application/x-www-form-urlencoded:
            schema: {type: object}
      responses: {"200": {description: ok}}
components:
  schemas:
    Item:
      type: object
      properties:
        name: {type: string}
`

func extract(t *testing.T, doc *spec.Document, index int, mutate func(*config.Settings)) extraction {
	t.Helper()
	s := config.Defaults()
	if mutate != nil {
		mutate(&s)
	}
	g := New(s, nil)
	ops := doc.Operations()
	require.Greater(t, len(ops), index)
	ex, err := g.extractParameters(doc, ops[index])
	require.NoError(t, err)
	return ex
}

func declarations(ex extraction, withDefault bool) []string {
	out := make([]string, 0, len(ex.Params))
	for _, p := range ex.Params {
		out = append(out, p.Declaration(withDefault || p.Source == SourceCancellation))
	}
	return out
}

func TestExtractParameters_SourceOrder(t *testing.T) {
	t.Parallel()
	doc := parseDoc(t, paramsDoc)
	ex := extract(t, doc, 0, func(s *config.Settings) { s.UseCancellationTokens = true })

	assert.False(t, ex.Multipart)
	assert.Equal(t, []string{
		"string orderId",
		"[Query] long page",
		"[Query] DateTimeOffset? since",
		`[Query, AliasAs("page_size")] int? pageSize`,
		"[Query] string @class",
		"[Query] DateTimeOffset until",
		`[Header("X-Trace")] string xTrace`,
		"[Body] Item body",
		"CancellationToken cancellationToken = default",
	}, declarations(ex, false))

	var sources []ParameterSource
	for _, p := range ex.Params {
		sources = append(sources, p.Source)
	}
	assert.Equal(t, []ParameterSource{
		SourcePath, SourceQuery, SourceQuery, SourceQuery, SourceQuery, SourceQuery, SourceHeader, SourceBody, SourceCancellation,
	}, sources)
}

func TestExtractParameters_Reordering(t *testing.T) {
	t.Parallel()
	doc := parseDoc(t, paramsDoc)
	ex := extract(t, doc, 0, func(s *config.Settings) {
		s.OptionalParameters = true
		s.UseCancellationTokens = true
	})

	lastRequired, firstOptional := -1, len(ex.Params)
	for i, p := range ex.Params {
		if p.Source == SourceCancellation {
			continue
		}
		if p.Required {
			lastRequired = i
		} else if i < firstOptional {
			firstOptional = i
		}
	}
	assert.Less(t, lastRequired, firstOptional)

	// relative order within each group follows the source order
	prevReq, prevOpt := -1, -1
	for _, p := range ex.Params {
		if p.Source == SourceCancellation {
			continue
		}
		if p.Required {
			assert.Greater(t, p.Position, prevReq)
			prevReq = p.Position
		} else {
			assert.Greater(t, p.Position, prevOpt)
			prevOpt = p.Position
		}
	}

	assert.Equal(t, []string{
		"string orderId",
		"[Query] long page",
		"[Query] DateTimeOffset until",
		`[Header("X-Trace")] string xTrace`,
		"[Query] DateTimeOffset? since = default",
		`[Query, AliasAs("page_size")] int? pageSize = default`,
		"[Query] string @class = default",
		"[Body] Item body = default",
		"CancellationToken cancellationToken = default",
	}, declarations(ex, true))
}

func TestExtractParameters_WithoutReorderingKeepsOrder(t *testing.T) {
	t.Parallel()
	doc := parseDoc(t, paramsDoc)
	ex := extract(t, doc, 0, nil)
	for i, p := range ex.Params {
		assert.Equal(t, i, p.Position)
	}
}

func TestExtractParameters_IsoDates(t *testing.T) {
	t.Parallel()
	doc := parseDoc(t, paramsDoc)
	ex := extract(t, doc, 0, func(s *config.Settings) { s.UseIsoDateFormat = true })
	decl := declarations(ex, false)
	assert.Contains(t, decl, `[Query(Format = "yyyy-MM-dd")] DateTimeOffset? since`)
	assert.Contains(t, decl, `[Query(Format = "o")] DateTimeOffset until`)
}

func TestExtractParameters_HeadersDisabled(t *testing.T) {
	t.Parallel()
	doc := parseDoc(t, paramsDoc)
	ex := extract(t, doc, 0, func(s *config.Settings) { s.GenerateOperationHeaders = false })
	for _, p := range ex.Params {
		assert.NotEqual(t, SourceHeader, p.Source)
	}
}

func TestExtractParameters_Multipart(t *testing.T) {
	t.Parallel()
	doc := parseDoc(t, paramsDoc)
	ex := extract(t, doc, 1, nil)
	assert.True(t, ex.Multipart)
	assert.Equal(t, []string{
		"IEnumerable<StreamPart> attachments",
		"string description",
		"StreamPart file",
		`[AliasAs("pet-id")] int? petId`,
	}, declarations(ex, false))

	units := generate(t, doc, nil)
	assert.Contains(t, units[0].Body, "    [Multipart]\n    [Post(\"/upload\")]\n")
}

func TestExtractParameters_UrlEncoded(t *testing.T) {
	t.Parallel()
	doc := parseDoc(t, paramsDoc)
	ex := extract(t, doc, 2, nil)
	assert.Equal(t, []string{"[Body(BodySerializationMethod.UrlEncoded)] object body"}, declarations(ex, false))
}

func TestParameterIdentifier(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"petId":        "petId",
		"PetId":        "petId",
		"X-Request-ID": "xRequestID",
		"page_size":    "pageSize",
		"class":        "@class",
		"$filter":      "filter",
		"1st":          "_1st",
		"!!":           "param",
	}
	for in, want := range tests {
		assert.Equal(t, want, parameterIdentifier(in), in)
	}
}

func TestDedupeIdentifiers(t *testing.T) {
	t.Parallel()
	params := []ParameterDescriptor{
		{Name: "body", WireName: "body", Source: SourceQuery, Attributes: []string{"Query"}},
		{Name: "body", Source: SourceBody, Attributes: []string{"Body"}},
		{Name: "pageSize", WireName: "page-size", Source: SourceQuery, Attributes: []string{"Query"}},
		{Name: "pageSize", WireName: "page_size", Source: SourceQuery, Attributes: []string{"Query"}},
	}
	dedupeIdentifiers(params)
	assert.Equal(t, "body", params[0].Name)
	assert.Equal(t, "body2", params[1].Name)
	assert.Equal(t, "pageSize2", params[3].Name)
	assert.Equal(t, []string{"Query", `AliasAs("page_size")`}, params[3].Attributes)
}
