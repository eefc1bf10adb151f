package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/refitgen/internal/config"
)

// responsesDoc builds a document whose single operation declares the given
// responses block.
func responsesDoc(t *testing.T, responses string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("openapi: 3.0.3\ninfo: {title: R, version: \"1\"}\npaths:\n  /thing:\n    get:\n      operationId: getThing\n      responses:\n")
	for _, line := range strings.Split(strings.TrimSpace(responses), "\n") {
		b.WriteString("        " + line + "\n")
	}
	return b.String()
}

func TestResolveReturnType_Precedence(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		responses string
		want      string
	}{
		{
			name:      "200 wins",
			responses: `"201": {description: c, content: {application/json: {schema: {type: integer}}}}` + "\n" + `"200": {description: o, content: {application/json: {schema: {type: string}}}}`,
			want:      "Task<string>",
		},
		{
			name:      "201 before 206",
			responses: `"206": {description: p, content: {application/json: {schema: {type: boolean}}}}` + "\n" + `"201": {description: c, content: {application/json: {schema: {type: integer}}}}`,
			want:      "Task<int>",
		},
		{
			name:      "void 200 falls through to 203",
			responses: `"200": {description: o}` + "\n" + `"203": {description: n, content: {application/json: {schema: {type: number}}}}`,
			want:      "Task<double>",
		},
		{
			name:      "202 is not a payload status",
			responses: `"202": {description: a, content: {application/json: {schema: {type: string}}}}`,
			want:      "Task",
		},
		{
			name:      "errors only",
			responses: `"404": {description: n, content: {application/json: {schema: {type: string}}}}` + "\n" + `default: {description: d}`,
			want:      "Task",
		},
		{
			name:      "json preferred over earlier media type",
			responses: `"200": {description: o, content: {text/plain: {schema: {type: string}}, application/json: {schema: {type: boolean}}}}`,
			want:      "Task<bool>",
		},
		{
			name:      "vendor json",
			responses: `"200": {description: o, content: {text/plain: {schema: {type: string}}, application/problem+json: {schema: {type: integer, format: int64}}}}`,
			want:      "Task<long>",
		},
		{
			name:      "first media type with schema",
			responses: `"200": {description: o, content: {application/octet-stream: {schema: {type: string, format: binary}}}}`,
			want:      "Task<System.IO.Stream>",
		},
		{
			name:      "date trimmed",
			responses: `"200": {description: o, content: {application/json: {schema: {type: string, format: date-time}}}}`,
			want:      "Task<DateTimeOffset>",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			doc := parseDoc(t, responsesDoc(t, tc.responses))
			g := New(config.Defaults(), nil)
			ops := doc.Operations()
			require.Len(t, ops, 1)
			info, err := g.resolveReturnType(doc, ops[0])
			require.NoError(t, err)
			assert.Equal(t, tc.want, info.Type)
		})
	}
}

func TestWrapReturnType(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Task", wrapReturnType("", config.ReturnPlain))
	assert.Equal(t, "Task<Pet>", wrapReturnType("Pet", config.ReturnPlain))
	assert.Equal(t, "Task<IApiResponse>", wrapReturnType("", config.ReturnWrapped))
	assert.Equal(t, "Task<IApiResponse<Pet>>", wrapReturnType("Pet", config.ReturnWrapped))
}

func TestTrimNamespaces(t *testing.T) {
	t.Parallel()
	prefixes := config.Defaults().TrimNamespaces
	tests := map[string]string{
		"System.Guid":      "Guid",
		"System.IO.Stream": "System.IO.Stream",
		"System.Collections.Generic.ICollection<System.DateTimeOffset>": "ICollection<DateTimeOffset>",
		"MySystem.Thing":    "MySystem.Thing",
		"Acme.System.Thing": "Acme.System.Thing",
		"Pet":               "Pet",
	}
	for in, want := range tests {
		assert.Equal(t, want, trimNamespaces(in, prefixes), in)
	}
}

func TestSubstituteArrayType(t *testing.T) {
	t.Parallel()
	tokens := []string{"ICollection"}
	assert.Equal(t, "ICollection<Pet>", substituteArrayType("ICollection<Pet>", "", tokens))
	assert.Equal(t, "List<Pet>", substituteArrayType("ICollection<Pet>", "List", tokens))
	assert.Equal(t, "Pet[]", substituteArrayType("Pet[]", "List", tokens))
	assert.Equal(t, "IReadOnlyList<IReadOnlyList<int>>",
		substituteArrayType("ICollection<IEnumerable<int>>", "IReadOnlyList", []string{"ICollection", "IEnumerable"}))
	assert.Equal(t, "IMyCollection<Pet>", substituteArrayType("IMyCollection<Pet>", "List", tokens))
}
