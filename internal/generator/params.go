package generator

import (
	"sort"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/mark3labs/refitgen/internal/spec"
)

// ParameterSource says where a method parameter comes from.
type ParameterSource int

const (
	SourcePath ParameterSource = iota
	SourceQuery
	SourceHeader
	SourceBody
	SourceCancellation
)

func (s ParameterSource) String() string {
	switch s {
	case SourcePath:
		return "path"
	case SourceQuery:
		return "query"
	case SourceHeader:
		return "header"
	case SourceBody:
		return "body"
	case SourceCancellation:
		return "cancellation"
	}
	return "unknown"
}

// ParameterDescriptor is one parameter of a generated method.
type ParameterDescriptor struct {
	Name        string // C# identifier
	WireName    string // name on the wire; empty for body and cancellation
	Type        string
	Required    bool
	Source      ParameterSource
	Position    int // index in source order before reordering
	Attributes  []string
	Description string
}

// Declaration renders the parameter as it appears in a method signature.
// withDefault appends "= default" to optional parameters.
func (p ParameterDescriptor) Declaration(withDefault bool) string {
	var b strings.Builder
	if len(p.Attributes) > 0 {
		b.WriteString("[")
		b.WriteString(strings.Join(p.Attributes, ", "))
		b.WriteString("] ")
	}
	b.WriteString(p.Type)
	b.WriteString(" ")
	b.WriteString(p.Name)
	if !p.Required && withDefault {
		b.WriteString(" = default")
	}
	return b.String()
}

// extraction is what the parameter extractor hands to the annotator.
type extraction struct {
	Params    []ParameterDescriptor
	Multipart bool
}

func (g *Generator) extractParameters(doc *spec.Document, op spec.Operation) (extraction, error) {
	var out extraction
	merged := mergeParameters(op.Item.Parameters, op.Operation.Parameters)

	for _, in := range []string{openapi3.ParameterInPath, openapi3.ParameterInQuery, openapi3.ParameterInHeader} {
		if in == openapi3.ParameterInHeader && !g.settings.GenerateOperationHeaders {
			continue
		}
		for _, p := range merged {
			if p.In != in {
				continue
			}
			desc, err := g.describeParameter(p)
			if err != nil {
				return extraction{}, unresolvable(err, op, "parameter "+p.Name)
			}
			out.Params = append(out.Params, desc)
		}
	}
	for _, p := range merged {
		if p.In == openapi3.ParameterInCookie {
			g.log.Debug("cookie parameter ignored",
				zap.String("path", op.Path), zap.String("parameter", p.Name))
		}
	}

	body, multipart, err := g.bodyParameters(doc, op)
	if err != nil {
		return extraction{}, err
	}
	out.Params = append(out.Params, body...)
	out.Multipart = multipart

	for i := range out.Params {
		out.Params[i].Position = i
	}
	if g.settings.OptionalParameters {
		out.Params = requiredFirst(out.Params)
	}
	if g.settings.UseCancellationTokens {
		out.Params = append(out.Params, ParameterDescriptor{
			Name:     "cancellationToken",
			Type:     "CancellationToken",
			Source:   SourceCancellation,
			Position: len(out.Params),
		})
	}
	dedupeIdentifiers(out.Params)
	return out, nil
}

// mergeParameters returns path-item parameters overridden by operation
// parameters with the same location and name, in declaration order.
func mergeParameters(itemParams, opParams openapi3.Parameters) []*openapi3.Parameter {
	var out []*openapi3.Parameter
	index := make(map[string]int)
	add := func(refs openapi3.Parameters) {
		for _, ref := range refs {
			if ref == nil || ref.Value == nil {
				continue
			}
			key := ref.Value.In + ":" + ref.Value.Name
			if i, ok := index[key]; ok {
				out[i] = ref.Value
				continue
			}
			index[key] = len(out)
			out = append(out, ref.Value)
		}
	}
	add(itemParams)
	add(opParams)
	return out
}

func (g *Generator) describeParameter(p *openapi3.Parameter) (ParameterDescriptor, error) {
	required := p.Required || p.In == openapi3.ParameterInPath
	schema := p.Schema
	if schema == nil {
		for _, ct := range sortedContentTypes(p.Content) {
			if m := p.Content[ct]; m != nil && m.Schema != nil {
				schema = m.Schema
				break
			}
		}
	}
	typ := "string"
	if schema != nil {
		t, err := g.resolver.ResolveType(schema, !required)
		if err != nil {
			return ParameterDescriptor{}, err
		}
		typ = trimNamespaces(t, g.settings.TrimNamespaces)
		if isArraySchema(schema) {
			typ = substituteArrayType(typ, g.settings.ArrayType, g.settings.ArrayTypeTokens)
		}
	}

	d := ParameterDescriptor{
		Name:        parameterIdentifier(p.Name),
		WireName:    p.Name,
		Type:        typ,
		Required:    required,
		Description: p.Description,
	}
	switch p.In {
	case openapi3.ParameterInPath:
		d.Source = SourcePath
	case openapi3.ParameterInQuery:
		d.Source = SourceQuery
		d.Attributes = append(d.Attributes, g.queryAttribute(schema))
	case openapi3.ParameterInHeader:
		d.Source = SourceHeader
		d.Attributes = append(d.Attributes, `Header("`+p.Name+`")`)
	}
	if d.Source != SourceHeader && strings.TrimPrefix(d.Name, "@") != p.Name {
		d.Attributes = append(d.Attributes, `AliasAs("`+p.Name+`")`)
	}
	return d, nil
}

func (g *Generator) queryAttribute(schema *openapi3.SchemaRef) string {
	if g.settings.UseIsoDateFormat && schema != nil && schema.Value != nil && schema.Value.Type == "string" {
		switch schema.Value.Format {
		case "date":
			return `Query(Format = "yyyy-MM-dd")`
		case "date-time":
			return `Query(Format = "o")`
		}
	}
	return "Query"
}

// bodyParameters describes the request body. Multipart bodies are expanded
// into one parameter per form property.
func (g *Generator) bodyParameters(doc *spec.Document, op spec.Operation) ([]ParameterDescriptor, bool, error) {
	rb := op.Operation.RequestBody
	if rb == nil || rb.Value == nil {
		return nil, false, nil
	}
	order := doc.RequestContentTypes(op)
	for _, ct := range order {
		if mediaBase(ct) == "multipart/form-data" {
			params, err := g.multipartParameters(rb.Value.Content[ct], op)
			return params, true, err
		}
	}

	body := ParameterDescriptor{
		Name:        "body",
		Type:        "object",
		Required:    rb.Value.Required,
		Source:      SourceBody,
		Attributes:  []string{"Body"},
		Description: rb.Value.Description,
	}
	mt := preferredMediaType(order)
	if mediaBase(mt) == "application/x-www-form-urlencoded" {
		body.Attributes = []string{"Body(BodySerializationMethod.UrlEncoded)"}
	}
	if m := rb.Value.Content[mt]; m != nil && m.Schema != nil {
		t, err := g.resolver.ResolveType(m.Schema, !body.Required)
		if err != nil {
			return nil, false, unresolvable(err, op, "request body")
		}
		body.Type = trimNamespaces(t, g.settings.TrimNamespaces)
		if isArraySchema(m.Schema) {
			body.Type = substituteArrayType(body.Type, g.settings.ArrayType, g.settings.ArrayTypeTokens)
		}
	}
	return []ParameterDescriptor{body}, false, nil
}

func (g *Generator) multipartParameters(media *openapi3.MediaType, op spec.Operation) ([]ParameterDescriptor, error) {
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil, nil
	}
	s := media.Schema.Value
	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []ParameterDescriptor
	for _, name := range names {
		prop := s.Properties[name]
		d := ParameterDescriptor{
			Name:     parameterIdentifier(name),
			WireName: name,
			Required: required[name],
			Source:   SourceBody,
		}
		if prop != nil && prop.Value != nil {
			d.Description = prop.Value.Description
		}
		switch {
		case isBinary(prop):
			d.Type = "StreamPart"
		case isArraySchema(prop) && isBinary(prop.Value.Items):
			d.Type = "IEnumerable<StreamPart>"
		default:
			t, err := g.resolver.ResolveType(prop, !d.Required)
			if err != nil {
				return nil, unresolvable(err, op, "form field "+name)
			}
			d.Type = trimNamespaces(t, g.settings.TrimNamespaces)
		}
		if strings.TrimPrefix(d.Name, "@") != name {
			d.Attributes = []string{`AliasAs("` + name + `")`}
		}
		out = append(out, d)
	}
	return out, nil
}

func isBinary(ref *openapi3.SchemaRef) bool {
	return ref != nil && ref.Value != nil && ref.Value.Type == "string" &&
		(ref.Value.Format == "binary" || ref.Value.Format == "base64")
}

// requiredFirst moves optional parameters behind required ones, keeping the
// relative order inside each group.
func requiredFirst(params []ParameterDescriptor) []ParameterDescriptor {
	out := make([]ParameterDescriptor, 0, len(params))
	for _, p := range params {
		if p.Required {
			out = append(out, p)
		}
	}
	for _, p := range params {
		if !p.Required {
			out = append(out, p)
		}
	}
	return out
}

// dedupeIdentifiers renames parameters whose identifiers collide, e.g. a query
// parameter called "body" next to the request body.
func dedupeIdentifiers(params []ParameterDescriptor) {
	seen := make(uniqueNames, len(params))
	for i := range params {
		name := seen.claim(params[i].Name)
		if name != params[i].Name && params[i].WireName != "" && !hasAlias(params[i]) && params[i].Source != SourceHeader {
			params[i].Attributes = append(params[i].Attributes, `AliasAs("`+params[i].WireName+`")`)
		}
		params[i].Name = name
	}
}

func hasAlias(p ParameterDescriptor) bool {
	for _, a := range p.Attributes {
		if strings.HasPrefix(a, "AliasAs(") {
			return true
		}
	}
	return false
}

// parameterIdentifier turns a wire name into a camelCase C# identifier,
// escaping keywords with "@".
func parameterIdentifier(wire string) string {
	var b strings.Builder
	upperNext := false
	for _, r := range wire {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upperNext = b.Len() > 0
			continue
		}
		switch {
		case b.Len() == 0:
			r = unicode.ToLower(r)
		case upperNext:
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
		upperNext = false
	}
	name := b.String()
	if name == "" {
		return "param"
	}
	if unicode.IsDigit([]rune(name)[0]) {
		return "_" + name
	}
	if csharpKeywords[name] {
		return "@" + name
	}
	return name
}

func sortedContentTypes(content openapi3.Content) []string {
	keys := make([]string, 0, len(content))
	for k := range content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var csharpKeywords = map[string]bool{
	"abstract": true, "as": true, "base": true, "bool": true, "break": true, "byte": true,
	"case": true, "catch": true, "char": true, "checked": true, "class": true, "const": true,
	"continue": true, "decimal": true, "default": true, "delegate": true, "do": true,
	"double": true, "else": true, "enum": true, "event": true, "explicit": true,
	"extern": true, "false": true, "finally": true, "fixed": true, "float": true,
	"for": true, "foreach": true, "goto": true, "if": true, "implicit": true, "in": true,
	"int": true, "interface": true, "internal": true, "is": true, "lock": true, "long": true,
	"namespace": true, "new": true, "null": true, "object": true, "operator": true,
	"out": true, "override": true, "params": true, "private": true, "protected": true,
	"public": true, "readonly": true, "ref": true, "return": true, "sbyte": true,
	"sealed": true, "short": true, "sizeof": true, "stackalloc": true, "static": true,
	"string": true, "struct": true, "switch": true, "this": true, "throw": true,
	"true": true, "try": true, "typeof": true, "uint": true, "ulong": true,
	"unchecked": true, "unsafe": true, "ushort": true, "using": true, "virtual": true,
	"void": true, "volatile": true, "while": true,
}
