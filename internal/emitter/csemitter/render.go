package csemitter

import (
	"strings"

	"github.com/mark3labs/refitgen/internal/config"
	"github.com/mark3labs/refitgen/internal/generator"
)

const indent = "    "

func renderFile(units []generator.GeneratedUnit, opts Options) []byte {
	var b strings.Builder
	if opts.AutoGeneratedHeader {
		b.WriteString(autoGeneratedBanner(opts.Version))
		b.WriteString("\n")
	}
	for _, u := range Usings(opts.AdditionalNamespaces, opts.ExcludeNamespaces) {
		b.WriteString("using ")
		b.WriteString(u)
		b.WriteString(";\n")
	}
	b.WriteString("\n#nullable enable annotations\n\n")

	ns := strings.TrimSpace(opts.Namespace)
	if ns == "" {
		ns = "GeneratedCode"
	}
	b.WriteString("namespace ")
	b.WriteString(ns)
	b.WriteString("\n{\n")
	for i, u := range units {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(indentLines(u.Declaration))
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	return []byte(b.String())
}

// Usings returns the default imports plus additional ones, minus excluded
// ones, without duplicates.
func Usings(additional, excluded []string) []string {
	skip := make(map[string]struct{}, len(excluded))
	for _, e := range config.CleanList(excluded) {
		skip[e] = struct{}{}
	}
	var out []string
	for _, u := range config.CleanList(append(append([]string{}, DefaultUsings...), additional...)) {
		if _, ok := skip[u]; ok {
			continue
		}
		out = append(out, u)
	}
	return out
}

func autoGeneratedBanner(version string) string {
	if version == "" {
		version = "dev"
	}
	lines := []string{
		"// <auto-generated>",
		"//     This code was generated by refitgen " + version + ".",
		"//",
		"//     Changes to this file may cause incorrect behavior and will be lost if",
		"//     the code is regenerated.",
		"// </auto-generated>",
	}
	return strings.Join(lines, "\n") + "\n"
}

// indentLines shifts every non-empty line one level to the right.
func indentLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = indent + l
		}
	}
	return strings.Join(lines, "\n")
}
