// Package typename maps OpenAPI schemas onto C# type names. It is the default
// type resolver handed to the generator; callers with their own model generator
// can supply a different one.
package typename

import (
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
	"github.com/getkin/kin-openapi/openapi3"
)

// CollectionType is the generic collection used for array schemas. Generated
// code trims the namespace and may substitute the token with a configured type.
const CollectionType = "System.Collections.Generic.ICollection"

// ErrUnsupportedSchema is returned for schemas that have no C# mapping.
var ErrUnsupportedSchema = errors.New("unsupported schema")

// Resolver resolves schemas to fully qualified C# type names.
type Resolver struct{}

// New returns the default resolver.
func New() *Resolver { return &Resolver{} }

// ResolveType returns the type name for ref. nullable requests a nullable value
// type; reference types are returned unchanged.
func (r *Resolver) ResolveType(ref *openapi3.SchemaRef, nullable bool) (string, error) {
	if ref == nil {
		return "", errors.Wrap(ErrUnsupportedSchema, "nil schema")
	}
	if ref.Ref != "" {
		return RefName(ref.Ref), nil
	}
	s := ref.Value
	if s == nil {
		return "", errors.Wrap(ErrUnsupportedSchema, "schema without value")
	}

	// a lone allOf member is how generators express "this type, with docs"
	if s.Type == "" && len(s.AllOf) == 1 {
		return r.ResolveType(s.AllOf[0], nullable || s.Nullable)
	}

	nullable = nullable || s.Nullable
	switch s.Type {
	case "string":
		return withNullable(stringType(s.Format), nullable), nil
	case "integer":
		if s.Format == "int64" {
			return withNullable("long", nullable), nil
		}
		return withNullable("int", nullable), nil
	case "number":
		switch s.Format {
		case "float":
			return withNullable("float", nullable), nil
		case "decimal":
			return withNullable("decimal", nullable), nil
		}
		return withNullable("double", nullable), nil
	case "boolean":
		return withNullable("bool", nullable), nil
	case "array":
		if s.Items == nil {
			return CollectionType + "<object>", nil
		}
		item, err := r.ResolveType(s.Items, false)
		if err != nil {
			return "", errors.Wrap(err, "array items")
		}
		return CollectionType + "<" + item + ">", nil
	case "object", "":
		return "object", nil
	}
	return "", errors.Wrapf(ErrUnsupportedSchema, "type %q", s.Type)
}

func stringType(format string) string {
	switch format {
	case "date", "date-time":
		return "System.DateTimeOffset"
	case "time":
		return "System.TimeSpan"
	case "uuid":
		return "System.Guid"
	case "byte":
		return "byte[]"
	case "binary":
		return "System.IO.Stream"
	}
	return "string"
}

var valueTypes = map[string]bool{
	"int": true, "long": true, "float": true, "double": true, "decimal": true, "bool": true,
	"System.DateTimeOffset": true, "System.TimeSpan": true, "System.Guid": true,
}

func withNullable(name string, nullable bool) string {
	if nullable && valueTypes[name] {
		return name + "?"
	}
	return name
}

// RefName turns a reference such as "#/components/schemas/pet-owner" into a
// type name ("PetOwner").
func RefName(ref string) string {
	name := ref
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		name = ref[i+1:]
	}
	return Identifier(name)
}

// Identifier converts s to a PascalCase identifier by dropping every character
// that is not a letter or digit and capitalizing the character after each gap.
func Identifier(s string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			if upperNext {
				b.WriteRune(unicode.ToUpper(r))
				upperNext = false
			} else {
				b.WriteRune(r)
			}
			continue
		}
		upperNext = true
	}
	out := b.String()
	if out == "" {
		return ""
	}
	if !unicode.IsLetter([]rune(out)[0]) && out[0] != '_' {
		out = "_" + out
	}
	return out
}
