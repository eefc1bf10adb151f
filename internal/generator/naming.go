package generator

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mark3labs/refitgen/internal/config"
	"github.com/mark3labs/refitgen/internal/spec"
	"github.com/mark3labs/refitgen/internal/typename"
)

// NameStrategy picks the base name of an operation.
type NameStrategy interface {
	NameFor(doc *spec.Document, path string, verb spec.HttpMethod, op *openapi3.Operation) string
}

// NameStrategyFunc adapts a function to NameStrategy.
type NameStrategyFunc func(doc *spec.Document, path string, verb spec.HttpMethod, op *openapi3.Operation) string

func (f NameStrategyFunc) NameFor(doc *spec.Document, path string, verb spec.HttpMethod, op *openapi3.Operation) string {
	return f(doc, path, verb, op)
}

// DefaultNamer uses the operationId when present and otherwise builds a name
// from the verb and the path segments, e.g. "get /pets/{petId}" becomes
// "GetPetsPetId".
type DefaultNamer struct{}

func (DefaultNamer) NameFor(_ *spec.Document, path string, verb spec.HttpMethod, op *openapi3.Operation) string {
	if op != nil {
		if name := pascalCase(op.OperationID); name != "" {
			return name
		}
	}
	return pascalCase(string(verb) + " " + strings.NewReplacer("{", " ", "}", " ").Replace(path))
}

// TemplateNamer substitutes the name chosen by Base into Template. A template
// without the placeholder replaces the name entirely.
type TemplateNamer struct {
	Base     NameStrategy
	Template string
}

func (t TemplateNamer) NameFor(doc *spec.Document, path string, verb spec.HttpMethod, op *openapi3.Operation) string {
	base := t.Base
	if base == nil {
		base = DefaultNamer{}
	}
	return applyTemplate(t.Template, base.NameFor(doc, path, verb, op))
}

func applyTemplate(template, name string) string {
	if template == "" {
		return name
	}
	return pascalCase(strings.ReplaceAll(template, config.OperationNamePlaceholder, name))
}

// pascalCase splits s at every character that cannot appear in an identifier
// and title-cases the words without lowering the rest of each word, so
// "getPetById" stays "GetPetById".
func pascalCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	if len(words) == 0 {
		return ""
	}
	caser := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, w := range words {
		b.WriteString(caser.String(w))
	}
	out := b.String()
	if r := []rune(out)[0]; unicode.IsDigit(r) {
		out = "_" + out
	}
	return out
}

// interfaceName names the single interface of a document: the sanitized title
// when enabled, else the configured fallback.
func interfaceName(doc *spec.Document, naming config.Naming) string {
	if naming.UseDocumentTitle {
		if title := typename.Identifier(doc.Title()); title != "" {
			return "I" + title
		}
	}
	return fallbackInterfaceName(naming)
}

func fallbackInterfaceName(naming config.Naming) string {
	name := typename.Identifier(naming.InterfaceName)
	if name == "" {
		name = "ApiClient"
	}
	return markInterface(name)
}

// markInterface prefixes name with the interface marker unless it already
// carries one ("IApiClient").
func markInterface(name string) string {
	r := []rune(name)
	if len(r) > 1 && r[0] == 'I' && unicode.IsUpper(r[1]) {
		return name
	}
	return "I" + name
}

func tagInterfaceName(tag string) string {
	name := typename.Identifier(tag)
	if name == "" {
		return ""
	}
	return "I" + name + "Api"
}

func endpointInterfaceName(baseName string) string {
	return "I" + baseName + "Endpoint"
}

// uniqueNames hands out names, suffixing repeats with 2, 3, ... in request order.
type uniqueNames map[string]int

func (u uniqueNames) claim(name string) string {
	n, taken := u[name]
	if !taken {
		u[name] = 1
		return name
	}
	for {
		n++
		candidate := name + strconv.Itoa(n)
		if _, clash := u[candidate]; !clash {
			u[name] = n
			u[candidate] = 1
			return candidate
		}
	}
}
