package spec

import (
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

type HttpMethod string

const (
	GET     HttpMethod = "get"
	POST    HttpMethod = "post"
	PUT     HttpMethod = "put"
	DELETE  HttpMethod = "delete"
	PATCH   HttpMethod = "patch"
	HEAD    HttpMethod = "head"
	OPTIONS HttpMethod = "options"
	TRACE   HttpMethod = "trace"
)

// methodOrder is the verb order used when the source order is unknown.
var methodOrder = []HttpMethod{GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS, TRACE}

// Document is a parsed API description together with the declaration order of
// its paths, verbs, responses and media types, which kin-openapi keeps in maps.
type Document struct {
	Model *openapi3.T
	// SourceVersion is the openapi/swagger version declared by the input before
	// any Swagger 2.0 conversion.
	SourceVersion string

	order *sourceOrder
}

// Operation is one verb bound to one path.
type Operation struct {
	Path      string
	Method    HttpMethod
	Item      *openapi3.PathItem
	Operation *openapi3.Operation
}

// Key identifies the operation as "method path".
func (o Operation) Key() string { return string(o.Method) + " " + o.Path }

// NewDocument wraps model. raw is the original document text and may be nil, in
// which case paths and verbs are ordered deterministically instead.
func NewDocument(model *openapi3.T, raw []byte) *Document {
	d := &Document{Model: model}
	if len(raw) > 0 {
		d.order, d.SourceVersion = readSourceOrder(raw)
	}
	if d.SourceVersion == "" && model != nil {
		d.SourceVersion = model.OpenAPI
	}
	return d
}

// Title returns info.title, or "" when the document has no info block.
func (d *Document) Title() string {
	if d == nil || d.Model == nil || d.Model.Info == nil {
		return ""
	}
	return strings.TrimSpace(d.Model.Info.Title)
}

// Operations lists every operation in declaration order.
func (d *Document) Operations() []Operation {
	if d == nil || d.Model == nil || len(d.Model.Paths) == 0 {
		return nil
	}
	var out []Operation
	for _, p := range d.pathOrder() {
		item := d.Model.Paths[p]
		if item == nil {
			continue
		}
		for _, m := range d.verbOrder(p) {
			op := operationFor(item, m)
			if op == nil {
				continue
			}
			out = append(out, Operation{Path: p, Method: m, Item: item, Operation: op})
		}
	}
	return out
}

// ResponseCodes lists the declared response status codes of op in declaration order.
func (d *Document) ResponseCodes(op Operation) []string {
	if op.Operation == nil || len(op.Operation.Responses) == 0 {
		return nil
	}
	present := make([]string, 0, len(op.Operation.Responses))
	for code := range op.Operation.Responses {
		present = append(present, code)
	}
	sort.Slice(present, func(i, j int) bool {
		ri, rj := statusRank(present[i]), statusRank(present[j])
		if ri != rj {
			return ri < rj
		}
		return present[i] < present[j]
	})
	var declared []string
	if d != nil && d.order != nil {
		declared = d.order.responses[op.Key()]
	}
	return mergeOrder(declared, present)
}

// ResponseContentTypes lists the media types declared for one response.
func (d *Document) ResponseContentTypes(op Operation, status string) []string {
	if op.Operation == nil {
		return nil
	}
	ref := op.Operation.Responses[status]
	if ref == nil || ref.Value == nil {
		return nil
	}
	var declared []string
	if d != nil && d.order != nil {
		declared = d.order.content[op.Key()+" "+status]
	}
	return mergeOrder(declared, sortedKeys(ref.Value.Content))
}

// RequestContentTypes lists the media types declared for the request body.
func (d *Document) RequestContentTypes(op Operation) []string {
	if op.Operation == nil || op.Operation.RequestBody == nil || op.Operation.RequestBody.Value == nil {
		return nil
	}
	var declared []string
	if d != nil && d.order != nil {
		declared = d.order.requestContent[op.Key()]
	}
	return mergeOrder(declared, sortedKeys(op.Operation.RequestBody.Value.Content))
}

func (d *Document) pathOrder() []string {
	present := make([]string, 0, len(d.Model.Paths))
	for p := range d.Model.Paths {
		present = append(present, p)
	}
	sort.Strings(present)
	var declared []string
	if d.order != nil {
		declared = d.order.paths
	}
	return mergeOrder(declared, present)
}

func (d *Document) verbOrder(path string) []HttpMethod {
	if d.order == nil || len(d.order.verbs[path]) == 0 {
		return methodOrder
	}
	declared := d.order.verbs[path]
	seen := make(map[HttpMethod]struct{}, len(declared))
	out := make([]HttpMethod, 0, len(methodOrder))
	for _, m := range declared {
		seen[m] = struct{}{}
		out = append(out, m)
	}
	for _, m := range methodOrder {
		if _, ok := seen[m]; !ok {
			out = append(out, m)
		}
	}
	return out
}

func operationFor(item *openapi3.PathItem, m HttpMethod) *openapi3.Operation {
	switch m {
	case GET:
		return item.Get
	case POST:
		return item.Post
	case PUT:
		return item.Put
	case DELETE:
		return item.Delete
	case PATCH:
		return item.Patch
	case HEAD:
		return item.Head
	case OPTIONS:
		return item.Options
	case TRACE:
		return item.Trace
	}
	return nil
}

// mergeOrder keeps declared entries that are present, then appends the rest of
// present in its given order.
func mergeOrder(declared, present []string) []string {
	if len(present) == 0 {
		return nil
	}
	want := make(map[string]struct{}, len(present))
	for _, p := range present {
		want[p] = struct{}{}
	}
	out := make([]string, 0, len(present))
	for _, k := range declared {
		if _, ok := want[k]; ok {
			out = append(out, k)
			delete(want, k)
		}
	}
	for _, k := range present {
		if _, ok := want[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

func sortedKeys(content openapi3.Content) []string {
	if len(content) == 0 {
		return nil
	}
	keys := make([]string, 0, len(content))
	for k := range content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// statusRank orders exact codes first by value, then range codes (2XX), then default.
func statusRank(code string) int {
	c := strings.ToUpper(strings.TrimSpace(code))
	if n, err := strconv.Atoi(c); err == nil {
		return n * 10
	}
	if len(c) == 3 && c[1:] == "XX" && c[0] >= '1' && c[0] <= '5' {
		return (int(c[0]-'0')*100+99)*10 + 5
	}
	if c == "DEFAULT" {
		return 1 << 20
	}
	return 1<<20 - 1
}
