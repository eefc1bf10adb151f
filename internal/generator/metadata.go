package generator

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/mark3labs/refitgen/internal/spec"
)

// Accept headers are only derived from documents declaring at least this version.
var minAcceptHeaderVersion = semver.MustParse("3.0.0")

// decorate returns the lines placed above the route attribute of a method:
// documentation, deprecation, multipart and accept headers, in that order.
func (g *Generator) decorate(doc *spec.Document, op spec.Operation, ex extraction, ret returnInfo) []string {
	var lines []string
	if g.settings.GenerateDocComments {
		lines = append(lines, docComment(op, ex.Params, ret)...)
	}
	if op.Operation.Deprecated {
		lines = append(lines, "[System.Obsolete]")
	}
	if ex.Multipart {
		lines = append(lines, "[Multipart]")
	}
	if g.settings.AddAcceptHeaders && acceptHeadersSupported(doc.SourceVersion) {
		if accept := acceptContentTypes(doc, op); len(accept) > 0 {
			lines = append(lines, `[Headers("Accept: `+strings.Join(accept, ", ")+`")]`)
		}
	}
	return lines
}

func acceptHeadersSupported(version string) bool {
	v, err := semver.NewVersion(strings.TrimSpace(version))
	if err != nil {
		return false
	}
	return !v.LessThan(minAcceptHeaderVersion)
}

// acceptContentTypes collects the media types of every response, grouped per
// status in declaration order, keeping the first occurrence of each.
func acceptContentTypes(doc *spec.Document, op spec.Operation) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, status := range doc.ResponseCodes(op) {
		for _, ct := range doc.ResponseContentTypes(op, status) {
			if _, dup := seen[ct]; dup {
				continue
			}
			seen[ct] = struct{}{}
			out = append(out, ct)
		}
	}
	return out
}

func docComment(op spec.Operation, params []ParameterDescriptor, ret returnInfo) []string {
	summary := strings.TrimSpace(op.Operation.Summary)
	description := strings.TrimSpace(op.Operation.Description)
	remarks := ""
	if summary == "" {
		summary = description
	} else if description != summary {
		remarks = description
	}

	var lines []string
	lines = appendXMLBlock(lines, "summary", summary)
	lines = appendXMLBlock(lines, "remarks", remarks)
	for _, p := range params {
		text := docLines(p.Description)
		if len(text) == 0 {
			continue
		}
		lines = append(lines, `/// <param name="`+strings.TrimPrefix(p.Name, "@")+`">`+strings.Join(text, " ")+"</param>")
	}
	if text := docLines(ret.Description); len(text) > 0 {
		lines = append(lines, "/// <returns>"+strings.Join(text, " ")+"</returns>")
	}
	return lines
}

func appendXMLBlock(lines []string, tag, text string) []string {
	body := docLines(text)
	if len(body) == 0 {
		return lines
	}
	lines = append(lines, "/// <"+tag+">")
	for _, l := range body {
		lines = append(lines, "/// "+l)
	}
	return append(lines, "/// </"+tag+">")
}

var newline = regexp.MustCompile(`\r\n|\r|\n`)

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// docLines splits text on any newline convention, trims each line and drops
// blank ones.
func docLines(text string) []string {
	var out []string
	for _, l := range newline.Split(text, -1) {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, xmlEscaper.Replace(l))
		}
	}
	return out
}
