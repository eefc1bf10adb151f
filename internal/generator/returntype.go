package generator

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/refitgen/internal/config"
	"github.com/mark3labs/refitgen/internal/spec"
)

// successStatuses are scanned in this order for the payload of a method.
var successStatuses = []string{"200", "201", "203", "206"}

// returnInfo is the resolved result of one operation.
type returnInfo struct {
	Type        string // full declaration, e.g. "Task<Pet>"
	Payload     string // "" for void
	Description string
}

func (g *Generator) resolveReturnType(doc *spec.Document, op spec.Operation) (returnInfo, error) {
	var info returnInfo
	for _, status := range successStatuses {
		ref := op.Operation.Responses[status]
		if ref == nil || ref.Value == nil {
			continue
		}
		schema := preferredSchema(ref.Value.Content, doc.ResponseContentTypes(op, status))
		if schema == nil {
			continue
		}
		name, err := g.resolver.ResolveType(schema, false)
		if err != nil {
			return returnInfo{}, unresolvable(err, op, "response "+status)
		}
		name = trimNamespaces(name, g.settings.TrimNamespaces)
		if isArraySchema(schema) {
			name = substituteArrayType(name, g.settings.ArrayType, g.settings.ArrayTypeTokens)
		}
		info.Payload = name
		if ref.Value.Description != nil {
			info.Description = *ref.Value.Description
		}
		break
	}
	info.Type = wrapReturnType(info.Payload, g.settings.ReturnStyle)
	return info, nil
}

func wrapReturnType(payload string, style config.ReturnStyle) string {
	if style == config.ReturnWrapped {
		if payload == "" {
			return "Task<IApiResponse>"
		}
		return "Task<IApiResponse<" + payload + ">>"
	}
	if payload == "" {
		return "Task"
	}
	return "Task<" + payload + ">"
}

// preferredSchema returns the schema of the JSON media type when there is one,
// else of the first declared media type that has a schema.
func preferredSchema(content openapi3.Content, order []string) *openapi3.SchemaRef {
	mt := preferredMediaType(order)
	if mt != "" {
		if m := content[mt]; m != nil && m.Schema != nil {
			return m.Schema
		}
	}
	for _, ct := range order {
		if m := content[ct]; m != nil && m.Schema != nil {
			return m.Schema
		}
	}
	return nil
}

func preferredMediaType(order []string) string {
	for _, ct := range order {
		if mediaBase(ct) == "application/json" {
			return ct
		}
	}
	for _, ct := range order {
		if strings.HasSuffix(mediaBase(ct), "+json") {
			return ct
		}
	}
	if len(order) > 0 {
		return order[0]
	}
	return ""
}

func mediaBase(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

func isArraySchema(ref *openapi3.SchemaRef) bool {
	return ref != nil && ref.Value != nil && ref.Value.Type == "array"
}

// substituteArrayType swaps the generic collection token in a resolved type
// name for the configured array type. It works on the text of the name, not
// on the schema, so it also rewrites nested collections.
func substituteArrayType(name, arrayType string, tokens []string) string {
	if arrayType == "" {
		return name
	}
	for _, tok := range tokens {
		name = strings.ReplaceAll(name, tok+"<", arrayType+"<")
	}
	return name
}

// trimNamespaces drops well-known namespace prefixes when what follows is a
// simple type name, so "System.Guid" becomes "Guid" but "System.IO.Stream"
// stays qualified.
func trimNamespaces(name string, prefixes []string) string {
	for _, p := range prefixes {
		if p == "" || !strings.Contains(name, p) {
			continue
		}
		var b strings.Builder
		rest := name
		for {
			i := strings.Index(rest, p)
			if i < 0 {
				b.WriteString(rest)
				break
			}
			tail := rest[i+len(p):]
			end := strings.IndexFunc(tail, func(r rune) bool { return !isIdentRune(r) })
			simple := end < 0 || tail[end] != '.'
			boundary := i == 0 || (!isIdentRune(rune(rest[i-1])) && rest[i-1] != '.')
			b.WriteString(rest[:i])
			if !simple || !boundary {
				b.WriteString(p)
			}
			rest = tail
		}
		name = b.String()
	}
	return name
}

func isIdentRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
