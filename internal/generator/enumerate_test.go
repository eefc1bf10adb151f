package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mark3labs/refitgen/internal/config"
	"github.com/mark3labs/refitgen/internal/spec"
)

func keys(t *testing.T, doc *spec.Document, s config.Settings) []string {
	t.Helper()
	var out []string
	for op := range Enumerate(doc, s) {
		out = append(out, op.Key())
	}
	return out
}

func TestEnumerate_Filters(t *testing.T) {
	t.Parallel()
	doc := petstore(t)
	all := []string{"get /pets", "post /pets", "get /pets/{petId}", "delete /pets/{petId}", "get /store/inventory"}

	tests := []struct {
		name   string
		mutate func(*config.Settings)
		want   []string
	}{
		{name: "empty filters match all", mutate: func(*config.Settings) {}, want: all},
		{
			name:   "explicitly empty lists match all",
			mutate: func(s *config.Settings) { s.IncludeTags = []string{}; s.IncludePathMatches = []string{" "} },
			want:   all,
		},
		{
			name:   "deprecated excluded",
			mutate: func(s *config.Settings) { s.IncludeDeprecated = false },
			want:   []string{"get /pets", "post /pets", "get /pets/{petId}", "get /store/inventory"},
		},
		{
			name:   "path pattern",
			mutate: func(s *config.Settings) { s.IncludePathMatches = []string{`^/pets/\{`} },
			want:   []string{"get /pets/{petId}", "delete /pets/{petId}"},
		},
		{
			name:   "any path pattern matches",
			mutate: func(s *config.Settings) { s.IncludePathMatches = []string{"^/store", `^/pets$`} },
			want:   []string{"get /pets", "post /pets", "get /store/inventory"},
		},
		{
			name:   "tags",
			mutate: func(s *config.Settings) { s.IncludeTags = []string{"Store"} },
			want:   []string{"get /store/inventory"},
		},
		{
			name:   "tags are case sensitive",
			mutate: func(s *config.Settings) { s.IncludeTags = []string{"store"} },
			want:   nil,
		},
		{
			name: "filters combine",
			mutate: func(s *config.Settings) {
				s.IncludeDeprecated = false
				s.IncludePathMatches = []string{"^/pets/"}
				s.IncludeTags = []string{"Pets"}
			},
			want: []string{"get /pets/{petId}"},
		},
		{
			name:   "invalid pattern matches nothing",
			mutate: func(s *config.Settings) { s.IncludePathMatches = []string{"^/pets("} },
			want:   nil,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := config.Defaults()
			tc.mutate(&s)
			assert.Equal(t, tc.want, keys(t, doc, s))
		})
	}
}

func TestEnumerate_Restartable(t *testing.T) {
	t.Parallel()
	seq := Enumerate(petstore(t), config.Defaults())

	var first, second []string
	for op := range seq {
		first = append(first, op.Key())
	}
	for op := range seq {
		second = append(second, op.Key())
	}
	assert.Equal(t, first, second)
	assert.Len(t, first, 5)

	// early exit stops cleanly
	n := 0
	for range seq {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestEnumerate_SkipsTrace(t *testing.T) {
	t.Parallel()
	doc := parseDoc(t, `
openapi: 3.0.3
info: {title: T, version: "1"}
paths:
  /debug:
    trace:
      responses: {"200": {description: ok}}
    get:
      responses: {"200": {description: ok}}
`)
	assert.Equal(t, []string{"get /debug"}, keys(t, doc, config.Defaults()))
}
