package generator

import (
	"strings"

	"go.uber.org/zap"

	"github.com/mark3labs/refitgen/internal/config"
	"github.com/mark3labs/refitgen/internal/spec"
)

const (
	indent = "    "
	// endpointMethodName names the single method of a byEndpoint interface
	// before the operation name template is applied.
	endpointMethodName = "Execute"
)

// unitPlan is a group of methods bound for one interface.
type unitPlan struct {
	name    string
	methods []*method
}

func (g *Generator) assemble(doc *spec.Document, methods []*method) []GeneratedUnit {
	var plans []unitPlan
	switch g.settings.MultipleInterfaces {
	case config.SplitByEndpoint:
		plans = g.planByEndpoint(methods)
	case config.SplitByTag:
		plans = g.planByTag(methods)
	default:
		plans = []unitPlan{{name: interfaceName(doc, g.settings.Naming), methods: methods}}
	}

	units := make([]GeneratedUnit, 0, len(plans))
	for _, p := range plans {
		units = append(units, g.render(p))
	}
	return units
}

func (g *Generator) planByEndpoint(methods []*method) []unitPlan {
	names := make(uniqueNames, len(methods))
	plans := make([]unitPlan, 0, len(methods))
	for _, m := range methods {
		name := names.claim(endpointInterfaceName(m.baseName))
		plans = append(plans, unitPlan{name: name, methods: []*method{m}})
	}
	return plans
}

// planByTag creates one unit per tag in first-seen order. Operations with
// several tags land in each of their units; untagged ones in the fallback unit.
func (g *Generator) planByTag(methods []*method) []unitPlan {
	var plans []unitPlan
	index := make(map[string]int)
	add := func(unit string, m *method) {
		i, ok := index[unit]
		if !ok {
			i = len(plans)
			index[unit] = i
			plans = append(plans, unitPlan{name: unit})
		}
		for _, existing := range plans[i].methods {
			if existing == m {
				return
			}
		}
		plans[i].methods = append(plans[i].methods, m)
	}
	fallback := fallbackInterfaceName(g.settings.Naming)
	for _, m := range methods {
		placed := false
		for _, tag := range m.op.Operation.Tags {
			if unit := tagInterfaceName(tag); unit != "" {
				add(unit, m)
				placed = true
			}
		}
		if !placed {
			add(fallback, m)
		}
	}
	return plans
}

func (g *Generator) render(p unitPlan) GeneratedUnit {
	names := make(uniqueNames, len(p.methods))
	blocks := make([]string, 0, len(p.methods))
	keys := make([]string, 0, len(p.methods))
	for _, m := range p.methods {
		want := m.name
		if g.settings.MultipleInterfaces == config.SplitByEndpoint {
			want = applyTemplate(g.settings.OperationNameTemplate, endpointMethodName)
		}
		name := names.claim(want)
		if name != want {
			g.log.Debug("method renamed to avoid collision",
				zap.String("unit", p.name),
				zap.String("wanted", want),
				zap.String("name", name))
		}
		blocks = append(blocks, g.renderMethod(m, name))
		keys = append(keys, m.op.Key())
	}
	body := strings.Join(blocks, "\n\n")

	var b strings.Builder
	if g.settings.AddGeneratedHeader {
		b.WriteString(generatedCodeAttribute(g.version))
		b.WriteString("\n")
	}
	b.WriteString(string(g.settings.TypeAccessibility))
	b.WriteString(" partial interface ")
	b.WriteString(p.name)
	b.WriteString("\n{\n")
	if body != "" {
		b.WriteString(body)
		b.WriteString("\n")
	}
	b.WriteString("}")

	g.log.Debug("unit assembled", zap.String("unit", p.name), zap.Int("methods", len(p.methods)))
	return GeneratedUnit{Name: p.name, Body: body, Declaration: b.String(), Operations: keys}
}

func (g *Generator) renderMethod(m *method, name string) string {
	lines := make([]string, 0, len(m.decorations)+2)
	lines = append(lines, m.decorations...)
	lines = append(lines, routeAttribute(m.op.Method, m.op.Path))

	params := make([]string, 0, len(m.ex.Params))
	for _, p := range m.ex.Params {
		params = append(params, p.Declaration(g.settings.OptionalParameters || p.Source == SourceCancellation))
	}
	lines = append(lines, m.ret.Type+" "+name+"("+strings.Join(params, ", ")+");")

	for i, l := range lines {
		lines[i] = indent + l
	}
	return strings.Join(lines, "\n")
}

var routeVerbs = map[spec.HttpMethod]string{
	spec.GET:     "Get",
	spec.POST:    "Post",
	spec.PUT:     "Put",
	spec.DELETE:  "Delete",
	spec.PATCH:   "Patch",
	spec.HEAD:    "Head",
	spec.OPTIONS: "Options",
}

func routeAttribute(verb spec.HttpMethod, path string) string {
	return "[" + routeVerbs[verb] + `("` + strings.ReplaceAll(path, `"`, `\"`) + `")]`
}

// generatedCodeAttribute marks an interface with the tool name and version.
func generatedCodeAttribute(version string) string {
	return `[System.CodeDom.Compiler.GeneratedCode("refitgen", "` + version + `")]`
}
