package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const defaultConfigName = "refitgen.yaml"

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	Out        io.Writer
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample refitgen configuration file",
		Long:  "Scaffold a commented refitgen configuration file that documents every setting and its default.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			return initRunner(cmd.Context(), &InitConfig{
				OutputPath: out,
				Force:      force,
				Out:        cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().String("out", defaultConfigName, "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = defaultConfigName
	}
	target, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(target); err == nil && !cfg.Force {
		if st.Mode().IsRegular() {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", target))
		}
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot create parent directory: %v", err))
	}

	// atomic write via temp file + rename
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err))
	}
	_, werr := tmp.WriteString(strings.TrimSpace(sampleConfigYAML) + "\n")
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		_ = os.Remove(tmp.Name())
		return newUsageError(fmt.Sprintf("init: cannot write temp file: %v", firstErr(werr, cerr)))
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("init: chmod: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return newUsageError(fmt.Sprintf("init: cannot place file at %s: %v", target, err))
	}

	w := cfg.Out
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, "Wrote sample config to %s\n", target)
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// sampleConfigYAML lists every setting with its default value. Loading it
// unchanged yields the defaults plus openApiPath.
const sampleConfigYAML = `# refitgen configuration (YAML)
# Command-line flags override these values; REFITGEN_* environment variables
# (e.g. REFITGEN_NAMESPACE, REFITGEN_NAMING_INTERFACENAME) sit in between.

# Path or http/https URL of the Swagger 2.0 or OpenAPI 3.x document.
openApiPath: ./openapi.yaml

# Namespace wrapping the generated interfaces.
namespace: GeneratedCode

# Where generated files go, and the file name when writing a single file.
outputFolder: ./Generated
outputFilename: Output.cs

naming:
  # Derive the interface name from info.title ("Pet Store" becomes IPetStore).
  useDocumentTitle: true
  # Used when the title is empty or not used; also collects untagged
  # operations when multipleInterfaces is byTag.
  interfaceName: ApiClient

# none: one interface. byEndpoint: one interface per operation.
# byTag: one interface per tag, named I{Tag}Api.
multipleInterfaces: none

# plain returns Task<T>; wrapped returns Task<IApiResponse<T>>.
returnStyle: plain

# public or internal.
typeAccessibility: public

# Regular expressions; an operation is kept when its path matches any of them.
# includePathMatches: ["^/pets"]

# Keep only operations carrying one of these tags.
# includeTags: [pets]

includeDeprecated: true

# Method name template; {operationName} is replaced with the resolved name.
# operationNameTemplate: "{operationName}Async"

# Move optional parameters last and give them "= default".
optionalParameters: false

useCancellationTokens: false
addAcceptHeaders: true

# Format date and date-time query parameters as ISO 8601.
useIsoDateFormat: false

generateDocComments: true

# Emit header parameters as [Header("Name")] arguments.
generateOperationHeaders: true

# One file per interface instead of outputFilename.
generateMultipleFiles: false

# <auto-generated> banner and GeneratedCode attribute.
addGeneratedHeader: true

# Collection type replacing arrayTypeTokens in resolved type names.
# arrayType: List
arrayTypeTokens: [ICollection]

# Prefixes removed from fully qualified type names.
trimNamespaces:
  - System.Collections.Generic.
  - System.Threading.Tasks.
  - System.Threading.
  - System.

# Extra using directives, and defaults to drop.
# additionalNamespaces: [MyCompany.Models]
# excludeNamespaces: [System.Net.Http]
`
