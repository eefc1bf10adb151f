package spec

import (
	"sort"
	"strings"
)

var v2Methods = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"options": true, "head": true, "patch": true,
}

// repairV2Operations rewrites operations that Swagger 2.0 forbids but real
// documents carry, so openapi2conv accepts them. Several body parameters merge
// into one object-typed "body" parameter. Body parameters next to formData ones
// become form fields and the operation consumes multipart/form-data.
//
// doc is the decoded document; it is changed in place. The "METHOD path" keys
// of repaired operations are returned sorted.
func repairV2Operations(doc map[string]any) []string {
	paths, _ := doc["paths"].(map[string]any)
	var repaired []string
	for path, item := range paths {
		ops, _ := item.(map[string]any)
		for method, raw := range ops {
			if !v2Methods[strings.ToLower(method)] {
				continue
			}
			op, _ := raw.(map[string]any)
			if op == nil || !repairV2Operation(op) {
				continue
			}
			repaired = append(repaired, strings.ToUpper(method)+" "+path)
		}
	}
	sort.Strings(repaired)
	return repaired
}

func repairV2Operation(op map[string]any) bool {
	params, _ := op["parameters"].([]any)
	bodies, form := 0, false
	for _, p := range params {
		switch paramIn(p) {
		case "body":
			bodies++
		case "formdata":
			form = true
		}
	}
	switch {
	case bodies > 0 && form:
		out := make([]any, 0, len(params))
		for _, p := range params {
			if paramIn(p) == "body" {
				p = bodyAsFormField(p.(map[string]any))
			}
			out = append(out, p)
		}
		op["parameters"] = out
		consumes, _ := op["consumes"].([]any)
		for _, c := range consumes {
			if c == "multipart/form-data" {
				return true
			}
		}
		op["consumes"] = append(consumes, "multipart/form-data")
		return true
	case bodies > 1:
		props := map[string]any{}
		var required []any
		rest := make([]any, 0, len(params))
		for _, p := range params {
			if paramIn(p) != "body" {
				rest = append(rest, p)
				continue
			}
			pm := p.(map[string]any)
			name := paramName(pm)
			schema := paramSchema(pm)
			if schema == nil {
				schema = map[string]any{"type": "string"}
			}
			props[name] = schema
			if req, _ := pm["required"].(bool); req {
				required = append(required, name)
			}
		}
		schema := map[string]any{"type": "object", "properties": props}
		if len(required) > 0 {
			schema["required"] = required
		}
		merged := map[string]any{"in": "body", "name": "body", "schema": schema}
		op["parameters"] = append([]any{merged}, rest...)
		return true
	}
	return false
}

func paramIn(p any) string {
	pm, _ := p.(map[string]any)
	in, _ := pm["in"].(string)
	return strings.ToLower(in)
}

func paramName(pm map[string]any) string {
	if name, _ := pm["name"].(string); name != "" {
		return name
	}
	return "field"
}

// paramSchema returns the body schema, or one synthesized from the
// non-body type/items/format keys.
func paramSchema(pm map[string]any) map[string]any {
	if s, ok := pm["schema"].(map[string]any); ok {
		return s
	}
	t, _ := pm["type"].(string)
	if t == "" {
		return nil
	}
	s := map[string]any{"type": t}
	if items, ok := pm["items"]; ok {
		s["items"] = items
	}
	if f, _ := pm["format"].(string); f != "" {
		s["format"] = f
	}
	return s
}

// bodyAsFormField turns a body parameter into a formData one. Referenced
// objects cannot be form fields and degrade to strings.
func bodyAsFormField(pm map[string]any) map[string]any {
	out := map[string]any{"in": "formData", "name": paramName(pm)}
	if d, _ := pm["description"].(string); d != "" {
		out["description"] = d
	}
	if req, ok := pm["required"].(bool); ok {
		out["required"] = req
	}
	typ := "string"
	if s := paramSchema(pm); s != nil {
		if t, _ := s["type"].(string); t != "" {
			typ = t
			if items, ok := s["items"]; ok {
				out["items"] = items
			}
			if f, _ := s["format"].(string); f != "" {
				out["format"] = f
			}
		}
	}
	out["type"] = typ
	return out
}
