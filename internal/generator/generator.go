// Package generator turns an API description into Refit client interfaces.
//
// Generation is a pure function of the document and the settings: the same
// inputs always render byte-identical units, whether operations are resolved
// sequentially or concurrently.
package generator

import (
	"runtime"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mark3labs/refitgen/internal/config"
	"github.com/mark3labs/refitgen/internal/spec"
	"github.com/mark3labs/refitgen/internal/typename"
)

// TypeResolver names the C# type of a schema. nullable asks for a nullable
// form of value types. Implementations must be safe for concurrent use unless
// the generator runs with WithConcurrency(1).
type TypeResolver interface {
	ResolveType(schema *openapi3.SchemaRef, nullable bool) (string, error)
}

// TypeResolverFunc adapts a function to TypeResolver.
type TypeResolverFunc func(schema *openapi3.SchemaRef, nullable bool) (string, error)

func (f TypeResolverFunc) ResolveType(schema *openapi3.SchemaRef, nullable bool) (string, error) {
	return f(schema, nullable)
}

// GeneratedUnit is one rendered interface.
type GeneratedUnit struct {
	// Name is the interface identifier, e.g. "IPetsApi".
	Name string
	// Body holds the method declarations, indented for placement inside the
	// interface braces.
	Body string
	// Declaration is the complete interface including attributes and braces.
	Declaration string
	// Operations lists the "method path" keys rendered into the unit.
	Operations []string
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger used for debug events. Logging never changes output.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

// WithVersion sets the tool version written into the generated-code attribute.
func WithVersion(v string) Option {
	return func(g *Generator) {
		if v != "" {
			g.version = v
		}
	}
}

// WithNameStrategy replaces the default operation naming. The configured name
// template is still applied on top of it.
func WithNameStrategy(n NameStrategy) Option {
	return func(g *Generator) {
		if n != nil {
			g.namer = n
		}
	}
}

// WithConcurrency bounds how many operations are resolved at once.
func WithConcurrency(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.workers = n
		}
	}
}

// Generator renders interfaces for one set of settings. It is safe to call
// Generate from several goroutines.
type Generator struct {
	settings config.Settings
	resolver TypeResolver
	namer    NameStrategy
	log      *zap.Logger
	version  string
	workers  int
}

// New returns a generator. A nil resolver selects the built-in schema mapping.
func New(settings config.Settings, resolver TypeResolver, opts ...Option) *Generator {
	settings.Normalize()
	if resolver == nil {
		resolver = typename.New()
	}
	g := &Generator{
		settings: settings,
		resolver: resolver,
		namer:    DefaultNamer{},
		log:      zap.NewNop(),
		version:  "dev",
		workers:  runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Settings returns a copy of the settings in use.
func (g *Generator) Settings() config.Settings { return g.settings }

// method is one operation on its way to becoming a declaration.
type method struct {
	op          spec.Operation
	baseName    string
	name        string
	ret         returnInfo
	ex          extraction
	decorations []string
}

// Generate renders every operation that survives the filters. On error no
// units are returned.
func (g *Generator) Generate(doc *spec.Document) ([]GeneratedUnit, error) {
	if doc == nil || doc.Model == nil {
		return nil, ErrNilDocument
	}

	naming := g.nameStrategy()
	var methods []*method
	for op := range enumerate(doc, g.settings, g.log) {
		base := g.namer.NameFor(doc, op.Path, op.Method, op.Operation)
		if base == "" {
			base = DefaultNamer{}.NameFor(doc, op.Path, op.Method, op.Operation)
		}
		name := naming.NameFor(doc, op.Path, op.Method, op.Operation)
		if name == "" {
			name = applyTemplate(g.settings.OperationNameTemplate, base)
		}
		methods = append(methods, &method{op: op, baseName: base, name: name})
	}

	errs := make([]error, len(methods))
	var eg errgroup.Group
	eg.SetLimit(g.workers)
	for i, m := range methods {
		eg.Go(func() error {
			errs[i] = g.resolve(doc, m)
			return errs[i]
		})
	}
	if eg.Wait() != nil {
		// report the failure of the earliest operation so errors are stable too
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
	}

	units := g.assemble(doc, methods)
	g.log.Debug("generation finished",
		zap.Int("operations", len(methods)),
		zap.Int("units", len(units)))
	return units, nil
}

// nameStrategy picks the template-driven strategy when a template is configured.
func (g *Generator) nameStrategy() NameStrategy {
	if g.settings.OperationNameTemplate == "" {
		return g.namer
	}
	return TemplateNamer{Base: g.namer, Template: g.settings.OperationNameTemplate}
}

func (g *Generator) resolve(doc *spec.Document, m *method) error {
	ret, err := g.resolveReturnType(doc, m.op)
	if err != nil {
		return err
	}
	ex, err := g.extractParameters(doc, m.op)
	if err != nil {
		return err
	}
	m.ret = ret
	m.ex = ex
	m.decorations = g.decorate(doc, m.op, ex, ret)
	return nil
}
