package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/mark3labs/refitgen/internal/config"
	"github.com/mark3labs/refitgen/internal/emitter/csemitter"
	"github.com/mark3labs/refitgen/internal/generator"
	"github.com/mark3labs/refitgen/internal/logging"
	"github.com/mark3labs/refitgen/internal/spec"
	"github.com/mark3labs/refitgen/internal/typename"
	"github.com/mark3labs/refitgen/internal/version"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, environment and CLI overrides.
type GenerateConfig struct {
	Settings   config.Settings
	ConfigPath string
	DryRun     bool
	Force      bool
	Watch      bool
	Verbose    bool
	LogJSON    bool
	// Out receives the plan and the write summary.
	Out io.Writer
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [openapi-document]",
		Short: "Generate Refit interfaces from an OpenAPI/Swagger document",
		Long: "Generate Refit interfaces from an OpenAPI/Swagger document. " +
			"Options can be provided via flags, config files, REFITGEN_* environment variables, or defaults.",
		Example: strings.TrimSpace(`  refitgen generate petstore.yaml --namespace Petstore --output ./Generated
  refitgen generate --input https://petstore3.swagger.io/api/v3/openapi.json --multiple-interfaces byTag
  refitgen --config refitgen.yaml generate --force --dry-run`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd, args)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	d := config.Defaults()
	flags := cmd.Flags()
	flags.StringP("input", "i", "", "Path or URL to the Swagger/OpenAPI document")
	flags.StringP("output", "o", d.OutputFolder, "Output directory")
	flags.String("output-filename", d.OutputFilename, "File name used when writing a single file")
	flags.StringP("namespace", "n", d.Namespace, "Namespace of the generated code")
	flags.String("interface-name", d.Naming.InterfaceName, "Interface name used when the document title is not")
	flags.Bool("use-document-title", d.Naming.UseDocumentTitle, "Derive the interface name from info.title")
	flags.String("multiple-interfaces", string(d.MultipleInterfaces), "Interface split strategy (none|byEndpoint|byTag)")
	flags.String("return-style", string(d.ReturnStyle), "Return payloads (plain) or response envelopes (wrapped)")
	flags.String("type-accessibility", string(d.TypeAccessibility), "Interface accessibility (public|internal)")
	flags.StringArray("match-path", nil, "Only include paths matching this regular expression (repeatable)")
	flags.StringSlice("tag", nil, "Only include operations with these tags")
	flags.Bool("include-deprecated", d.IncludeDeprecated, "Include deprecated operations")
	flags.String("operation-name-template", "", "Method name template, e.g. {operationName}Async")
	flags.Bool("optional-parameters", d.OptionalParameters, "Move optional parameters last and give them defaults")
	flags.Bool("cancellation-tokens", d.UseCancellationTokens, "Append a CancellationToken parameter")
	flags.Bool("accept-headers", d.AddAcceptHeaders, "Add Accept headers from response content types")
	flags.Bool("iso-date-format", d.UseIsoDateFormat, "Format date query parameters as ISO 8601")
	flags.String("array-type", d.ArrayType, "Collection type replacing the array tokens, e.g. List")
	flags.StringSlice("array-type-tokens", d.ArrayTypeTokens, "Collection type names replaced by --array-type")
	flags.StringSlice("trim-namespaces", d.TrimNamespaces, "Namespace prefixes stripped from type names")
	flags.Bool("doc-comments", d.GenerateDocComments, "Emit XML doc comments")
	flags.Bool("operation-headers", d.GenerateOperationHeaders, "Emit header parameters")
	flags.Bool("multiple-files", d.GenerateMultipleFiles, "Write one file per interface")
	flags.Bool("generated-header", d.AddGeneratedHeader, "Add the auto-generated banner and GeneratedCode attribute")
	flags.StringSlice("additional-namespaces", nil, "Extra using directives")
	flags.StringSlice("exclude-namespaces", nil, "Using directives to drop")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing files whose content differs")
	flags.Bool("watch", false, "Regenerate whenever the input document changes")

	return cmd
}

// settingFlag copies a changed flag into the settings.
type settingFlag struct {
	name  string
	apply func(flags *pflag.FlagSet, name string, s *config.Settings) error
}

func stringSetting(name string, field func(*config.Settings) *string) settingFlag {
	return settingFlag{name: name, apply: func(flags *pflag.FlagSet, name string, s *config.Settings) error {
		v, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*field(s) = strings.TrimSpace(v)
		return nil
	}}
}

func boolSetting(name string, field func(*config.Settings) *bool) settingFlag {
	return settingFlag{name: name, apply: func(flags *pflag.FlagSet, name string, s *config.Settings) error {
		v, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*field(s) = v
		return nil
	}}
}

func listSetting(name string, field func(*config.Settings) *[]string) settingFlag {
	return settingFlag{name: name, apply: func(flags *pflag.FlagSet, name string, s *config.Settings) error {
		var (
			v   []string
			err error
		)
		if flags.Lookup(name).Value.Type() == "stringArray" {
			v, err = flags.GetStringArray(name)
		} else {
			v, err = flags.GetStringSlice(name)
		}
		if err != nil {
			return err
		}
		*field(s) = config.CleanList(v)
		return nil
	}}
}

var settingFlags = []settingFlag{
	stringSetting("input", func(s *config.Settings) *string { return &s.OpenAPIPath }),
	stringSetting("output", func(s *config.Settings) *string { return &s.OutputFolder }),
	stringSetting("output-filename", func(s *config.Settings) *string { return &s.OutputFilename }),
	stringSetting("namespace", func(s *config.Settings) *string { return &s.Namespace }),
	stringSetting("interface-name", func(s *config.Settings) *string { return &s.Naming.InterfaceName }),
	boolSetting("use-document-title", func(s *config.Settings) *bool { return &s.Naming.UseDocumentTitle }),
	stringSetting("multiple-interfaces", func(s *config.Settings) *string { return (*string)(&s.MultipleInterfaces) }),
	stringSetting("return-style", func(s *config.Settings) *string { return (*string)(&s.ReturnStyle) }),
	stringSetting("type-accessibility", func(s *config.Settings) *string { return (*string)(&s.TypeAccessibility) }),
	listSetting("match-path", func(s *config.Settings) *[]string { return &s.IncludePathMatches }),
	listSetting("tag", func(s *config.Settings) *[]string { return &s.IncludeTags }),
	boolSetting("include-deprecated", func(s *config.Settings) *bool { return &s.IncludeDeprecated }),
	stringSetting("operation-name-template", func(s *config.Settings) *string { return &s.OperationNameTemplate }),
	boolSetting("optional-parameters", func(s *config.Settings) *bool { return &s.OptionalParameters }),
	boolSetting("cancellation-tokens", func(s *config.Settings) *bool { return &s.UseCancellationTokens }),
	boolSetting("accept-headers", func(s *config.Settings) *bool { return &s.AddAcceptHeaders }),
	boolSetting("iso-date-format", func(s *config.Settings) *bool { return &s.UseIsoDateFormat }),
	stringSetting("array-type", func(s *config.Settings) *string { return &s.ArrayType }),
	listSetting("array-type-tokens", func(s *config.Settings) *[]string { return &s.ArrayTypeTokens }),
	listSetting("trim-namespaces", func(s *config.Settings) *[]string { return &s.TrimNamespaces }),
	boolSetting("doc-comments", func(s *config.Settings) *bool { return &s.GenerateDocComments }),
	boolSetting("operation-headers", func(s *config.Settings) *bool { return &s.GenerateOperationHeaders }),
	boolSetting("multiple-files", func(s *config.Settings) *bool { return &s.GenerateMultipleFiles }),
	boolSetting("generated-header", func(s *config.Settings) *bool { return &s.AddGeneratedHeader }),
	listSetting("additional-namespaces", func(s *config.Settings) *[]string { return &s.AdditionalNamespaces }),
	listSetting("exclude-namespaces", func(s *config.Settings) *[]string { return &s.ExcludeNamespaces }),
}

func resolveGenerateConfig(cmd *cobra.Command, args []string) (*GenerateConfig, error) {
	flags := cmd.Flags()
	cfg := GenerateConfig{Out: cmd.OutOrStdout()}

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigPath = strings.TrimSpace(configPath)

	// defaults, then file and environment, then flags that were set explicitly
	settings, err := config.Load(cfg.ConfigPath)
	if err != nil {
		return nil, newUsageError(withHints(err))
	}
	for _, sf := range settingFlags {
		if !flags.Changed(sf.name) {
			continue
		}
		if err := sf.apply(flags, sf.name, &settings); err != nil {
			return nil, err
		}
	}
	if len(args) == 1 {
		if flags.Changed("input") {
			return nil, newUsageError("generate: pass the document either as an argument or with --input, not both")
		}
		settings.OpenAPIPath = strings.TrimSpace(args[0])
	}

	settings.Normalize()
	if err := settings.Validate(); err != nil {
		return nil, newUsageError(fmt.Sprintf("generate: %v", err))
	}
	if settings.OpenAPIPath == "" {
		return nil, newUsageError("generate: --input is required (set via argument, flag or config file)")
	}
	cfg.Settings = settings

	for name, dst := range map[string]*bool{
		"dry-run":  &cfg.DryRun,
		"force":    &cfg.Force,
		"watch":    &cfg.Watch,
		"verbose":  &cfg.Verbose,
		"log-json": &cfg.LogJSON,
	} {
		if *dst, err = flags.GetBool(name); err != nil {
			return nil, err
		}
	}
	if cfg.Watch && cfg.DryRun {
		return nil, newUsageError("generate: --watch cannot be combined with --dry-run")
	}
	if cfg.Watch && isRemote(settings.OpenAPIPath) {
		return nil, newUsageError("generate: --watch needs a local file, not a URL")
	}

	return &cfg, nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	log := logging.New(logging.Options{Verbose: cfg.Verbose, JSON: cfg.LogJSON})
	defer func() { _ = log.Sync() }()

	if cfg.Settings.OperationNameTemplate != "" && !cfg.Settings.HasOperationNamePlaceholder() {
		log.Warn("operation name template has no placeholder; every method gets the same name plus a numeric suffix",
			zap.String("template", cfg.Settings.OperationNameTemplate),
			zap.String("placeholder", config.OperationNamePlaceholder))
	}

	if !cfg.Watch {
		return generateOnce(ctx, cfg, cfg.Force, log)
	}

	ctx, stop := signalContext(ctx)
	defer stop()
	w := &watcher{
		path:     cfg.Settings.OpenAPIPath,
		debounce: defaultWatchDebounce,
		log:      log,
		run: func(ctx context.Context, first bool) error {
			// later runs overwrite what the first one wrote
			return generateOnce(ctx, cfg, cfg.Force || !first, log)
		},
	}
	return w.Run(ctx)
}

func generateOnce(ctx context.Context, cfg *GenerateConfig, force bool, log *zap.Logger) error {
	s := cfg.Settings

	doc, err := spec.Load(ctx, s.OpenAPIPath, spec.WithLogger(log))
	if err != nil {
		return specUsageError(err)
	}

	gen := generator.New(s, typename.New(),
		generator.WithLogger(log),
		generator.WithVersion(version.Version),
	)
	units, err := gen.Generate(doc)
	if err != nil {
		if errors.Is(err, generator.ErrUnresolvableType) {
			return errors.WithHint(err, "the schema uses a construct the type resolver cannot express in C#")
		}
		return err
	}

	opts := csemitter.OptionsFromSettings(s)
	opts.Version = version.Version
	opts.Force = force
	opts.DryRun = cfg.DryRun
	res, err := csemitter.Emit(ctx, units, opts)
	if err != nil {
		return wrapOutputError(err, s.OutputFolder)
	}

	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	rels := make([]string, 0, len(res.Planned))
	unchanged := 0
	for _, p := range res.Planned {
		rels = append(rels, p.RelPath)
		if p.Unchanged {
			unchanged++
		}
	}
	if cfg.DryRun {
		printPlan(out, res.OutDir, rels)
		return nil
	}
	log.Info("generation complete",
		zap.String("out", res.OutDir),
		zap.Int("interfaces", len(units)),
		zap.Int("files", len(rels)),
		zap.Int("unchanged", unchanged))
	fmt.Fprintf(out, "Wrote %d files to %s (%d unchanged)\n", len(rels)-unchanged, res.OutDir, unchanged)
	return nil
}

// specUsageError maps structured load errors into friendly messages.
func specUsageError(err error) error {
	var se *spec.SpecError
	if !errors.As(err, &se) {
		return err
	}
	msg := fmt.Sprintf("spec: %s", se.Message)
	if se.Location != "" {
		msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
	}
	if se.JSONPointer != "" {
		msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
	}
	return newUsageError(msg)
}

func printPlan(out io.Writer, outDir string, relPaths []string) {
	fmt.Fprintf(out, "Planned writes to %s (%d files):\n", outDir, len(relPaths))
	for _, p := range relPaths {
		fmt.Fprintf(out, "- %s\n", p)
	}
}

func wrapOutputError(err error, outDir string) error {
	if errors.Is(err, csemitter.ErrFileExists) {
		return newUsageError(withHints(err))
	}
	// Provide clearer guidance for common FS failures.
	lower := strings.ToLower(err.Error())
	if errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EROFS) ||
		strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") {
		return newUsageError(fmt.Sprintf("output error for %s: %v\nHint: choose a different --output or check directory permissions.", outDir, err))
	}
	return err
}

// withHints renders err followed by any hints attached to it.
func withHints(err error) string {
	msg := err.Error()
	if hints := errors.FlattenHints(err); hints != "" {
		msg += "\nHint: " + hints
	}
	return msg
}

func isRemote(input string) bool {
	u, err := url.Parse(input)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func absPath(p string) string {
	if a, err := filepath.Abs(p); err == nil {
		return a
	}
	return p
}
