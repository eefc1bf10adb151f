// Package config holds the generation settings and the loaders that populate them
// from files, environment variables and command-line flags.
package config

import (
	"fmt"
	"regexp"
	"strings"
)

// OperationNamePlaceholder is substituted with the resolved operation name in
// OperationNameTemplate.
const OperationNamePlaceholder = "{operationName}"

// SplitStrategy controls how operations are grouped into interfaces.
type SplitStrategy string

const (
	SplitNone       SplitStrategy = "none"
	SplitByEndpoint SplitStrategy = "byEndpoint"
	SplitByTag      SplitStrategy = "byTag"
)

// ReturnStyle controls whether methods return the bare payload or the response envelope.
type ReturnStyle string

const (
	ReturnPlain   ReturnStyle = "plain"
	ReturnWrapped ReturnStyle = "wrapped"
)

// Accessibility is the visibility modifier of generated interfaces.
type Accessibility string

const (
	AccessPublic   Accessibility = "public"
	AccessInternal Accessibility = "internal"
)

// Naming configures interface naming.
type Naming struct {
	// UseDocumentTitle derives the interface name from info.title.
	UseDocumentTitle bool `mapstructure:"useDocumentTitle" yaml:"useDocumentTitle"`
	// InterfaceName is used when UseDocumentTitle is false or the title is empty,
	// and names the unit collecting untagged operations under SplitByTag.
	InterfaceName string `mapstructure:"interfaceName" yaml:"interfaceName"`
}

// Settings is every knob the generator understands. The zero value is not useful;
// start from Defaults.
type Settings struct {
	OpenAPIPath    string `mapstructure:"openApiPath" yaml:"openApiPath"`
	Namespace      string `mapstructure:"namespace" yaml:"namespace"`
	OutputFolder   string `mapstructure:"outputFolder" yaml:"outputFolder"`
	OutputFilename string `mapstructure:"outputFilename" yaml:"outputFilename"`

	Naming             Naming        `mapstructure:"naming" yaml:"naming"`
	MultipleInterfaces SplitStrategy `mapstructure:"multipleInterfaces" yaml:"multipleInterfaces"`
	ReturnStyle        ReturnStyle   `mapstructure:"returnStyle" yaml:"returnStyle"`
	TypeAccessibility  Accessibility `mapstructure:"typeAccessibility" yaml:"typeAccessibility"`

	IncludePathMatches []string `mapstructure:"includePathMatches" yaml:"includePathMatches"`
	IncludeTags        []string `mapstructure:"includeTags" yaml:"includeTags"`
	IncludeDeprecated  bool     `mapstructure:"includeDeprecated" yaml:"includeDeprecated"`

	OperationNameTemplate    string `mapstructure:"operationNameTemplate" yaml:"operationNameTemplate"`
	OptionalParameters       bool   `mapstructure:"optionalParameters" yaml:"optionalParameters"`
	UseCancellationTokens    bool   `mapstructure:"useCancellationTokens" yaml:"useCancellationTokens"`
	AddAcceptHeaders         bool   `mapstructure:"addAcceptHeaders" yaml:"addAcceptHeaders"`
	UseIsoDateFormat         bool   `mapstructure:"useIsoDateFormat" yaml:"useIsoDateFormat"`
	GenerateDocComments      bool   `mapstructure:"generateDocComments" yaml:"generateDocComments"`
	GenerateOperationHeaders bool   `mapstructure:"generateOperationHeaders" yaml:"generateOperationHeaders"`
	GenerateMultipleFiles    bool   `mapstructure:"generateMultipleFiles" yaml:"generateMultipleFiles"`
	AddGeneratedHeader       bool   `mapstructure:"addGeneratedHeader" yaml:"addGeneratedHeader"`

	// ArrayType replaces any of ArrayTypeTokens in resolved collection type names.
	ArrayType       string   `mapstructure:"arrayType" yaml:"arrayType"`
	ArrayTypeTokens []string `mapstructure:"arrayTypeTokens" yaml:"arrayTypeTokens"`
	// TrimNamespaces are stripped from fully-qualified type names.
	TrimNamespaces []string `mapstructure:"trimNamespaces" yaml:"trimNamespaces"`

	AdditionalNamespaces []string `mapstructure:"additionalNamespaces" yaml:"additionalNamespaces"`
	ExcludeNamespaces    []string `mapstructure:"excludeNamespaces" yaml:"excludeNamespaces"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		Namespace:      "GeneratedCode",
		OutputFolder:   "./Generated",
		OutputFilename: "Output.cs",
		Naming: Naming{
			UseDocumentTitle: true,
			InterfaceName:    "ApiClient",
		},
		MultipleInterfaces:       SplitNone,
		ReturnStyle:              ReturnPlain,
		TypeAccessibility:        AccessPublic,
		IncludeDeprecated:        true,
		AddAcceptHeaders:         true,
		GenerateDocComments:      true,
		GenerateOperationHeaders: true,
		AddGeneratedHeader:       true,
		ArrayTypeTokens:          []string{"ICollection"},
		TrimNamespaces: []string{
			"System.Collections.Generic.",
			"System.Threading.Tasks.",
			"System.Threading.",
			"System.",
		},
	}
}

// HasOperationNamePlaceholder reports whether the template carries the placeholder.
// A template without it is still applied verbatim.
func (s Settings) HasOperationNamePlaceholder() bool {
	return strings.Contains(s.OperationNameTemplate, OperationNamePlaceholder)
}

// Normalize trims strings and deduplicates list settings in place.
func (s *Settings) Normalize() {
	s.OpenAPIPath = strings.TrimSpace(s.OpenAPIPath)
	s.Namespace = strings.TrimSpace(s.Namespace)
	s.OutputFolder = strings.TrimSpace(s.OutputFolder)
	s.OutputFilename = strings.TrimSpace(s.OutputFilename)
	s.Naming.InterfaceName = strings.TrimSpace(s.Naming.InterfaceName)
	s.OperationNameTemplate = strings.TrimSpace(s.OperationNameTemplate)
	s.ArrayType = strings.TrimSpace(s.ArrayType)
	s.MultipleInterfaces = SplitStrategy(strings.TrimSpace(string(s.MultipleInterfaces)))
	s.ReturnStyle = ReturnStyle(strings.TrimSpace(string(s.ReturnStyle)))
	s.TypeAccessibility = Accessibility(strings.ToLower(strings.TrimSpace(string(s.TypeAccessibility))))

	s.IncludePathMatches = CleanList(s.IncludePathMatches)
	s.IncludeTags = CleanList(s.IncludeTags)
	s.ArrayTypeTokens = CleanList(s.ArrayTypeTokens)
	s.TrimNamespaces = CleanList(s.TrimNamespaces)
	s.AdditionalNamespaces = CleanList(s.AdditionalNamespaces)
	s.ExcludeNamespaces = CleanList(s.ExcludeNamespaces)

	if s.MultipleInterfaces == "" {
		s.MultipleInterfaces = SplitNone
	}
	if s.ReturnStyle == "" {
		s.ReturnStyle = ReturnPlain
	}
	if s.TypeAccessibility == "" {
		s.TypeAccessibility = AccessPublic
	}
	if s.Naming.InterfaceName == "" {
		s.Naming.InterfaceName = "ApiClient"
	}
}

// Validate reports settings that cannot be honoured.
func (s Settings) Validate() error {
	switch s.MultipleInterfaces {
	case SplitNone, SplitByEndpoint, SplitByTag:
	default:
		return fmt.Errorf("multipleInterfaces: unsupported value %q (allowed: none, byEndpoint, byTag)", s.MultipleInterfaces)
	}
	switch s.ReturnStyle {
	case ReturnPlain, ReturnWrapped:
	default:
		return fmt.Errorf("returnStyle: unsupported value %q (allowed: plain, wrapped)", s.ReturnStyle)
	}
	switch s.TypeAccessibility {
	case AccessPublic, AccessInternal:
	default:
		return fmt.Errorf("typeAccessibility: unsupported value %q (allowed: public, internal)", s.TypeAccessibility)
	}
	for _, p := range s.IncludePathMatches {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("includePathMatches: invalid pattern %q: %w", p, err)
		}
	}
	return nil
}

// CleanList trims entries, drops empties and duplicates, and keeps first-seen order.
func CleanList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
