package spec

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// sourceOrder records mapping-key order from the raw document. JSON input is
// valid YAML, so one walk over yaml.Node covers both encodings.
type sourceOrder struct {
	paths          []string
	verbs          map[string][]HttpMethod
	responses      map[string][]string // "method path" -> status codes
	content        map[string][]string // "method path status" -> media types
	requestContent map[string][]string // "method path" -> media types
}

func readSourceOrder(raw []byte) (*sourceOrder, string) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, ""
	}
	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil, ""
	}

	version := ""
	if v := mappingValue(doc, "openapi"); v != nil && v.Kind == yaml.ScalarNode {
		version = strings.TrimSpace(v.Value)
	} else if v := mappingValue(doc, "swagger"); v != nil && v.Kind == yaml.ScalarNode {
		version = strings.TrimSpace(v.Value)
	}

	order := &sourceOrder{
		verbs:          make(map[string][]HttpMethod),
		responses:      make(map[string][]string),
		content:        make(map[string][]string),
		requestContent: make(map[string][]string),
	}
	paths := mappingValue(doc, "paths")
	if paths == nil || paths.Kind != yaml.MappingNode {
		return order, version
	}
	for i := 0; i+1 < len(paths.Content); i += 2 {
		path := paths.Content[i].Value
		item := paths.Content[i+1]
		order.paths = append(order.paths, path)
		if item.Kind != yaml.MappingNode {
			continue
		}
		for j := 0; j+1 < len(item.Content); j += 2 {
			m, ok := parseMethod(item.Content[j].Value)
			if !ok {
				continue
			}
			order.verbs[path] = append(order.verbs[path], m)
			key := string(m) + " " + path
			op := item.Content[j+1]

			if body := mappingValue(op, "requestBody"); body != nil {
				order.requestContent[key] = mappingKeys(mappingValue(body, "content"))
			}
			responses := mappingValue(op, "responses")
			for _, code := range mappingKeys(responses) {
				order.responses[key] = append(order.responses[key], code)
				resp := mappingValue(responses, code)
				if ct := mappingKeys(mappingValue(resp, "content")); len(ct) > 0 {
					order.content[key+" "+code] = ct
				}
			}
		}
	}
	return order, version
}

func parseMethod(s string) (HttpMethod, bool) {
	m := HttpMethod(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range methodOrder {
		if m == known {
			return m, true
		}
	}
	return "", false
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func mappingKeys(node *yaml.Node) []string {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]string, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys = append(keys, node.Content[i].Value)
	}
	return keys
}
