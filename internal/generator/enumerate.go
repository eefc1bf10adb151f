package generator

import (
	"iter"
	"regexp"

	"go.uber.org/zap"

	"github.com/mark3labs/refitgen/internal/config"
	"github.com/mark3labs/refitgen/internal/spec"
)

// Enumerate yields the operations of doc that pass the settings filters, in
// declaration order. The sequence can be ranged over any number of times.
// TRACE operations are never yielded since the client attributes have no
// verb for them.
func Enumerate(doc *spec.Document, settings config.Settings) iter.Seq[spec.Operation] {
	return enumerate(doc, settings, zap.NewNop())
}

func enumerate(doc *spec.Document, settings config.Settings, log *zap.Logger) iter.Seq[spec.Operation] {
	f := newFilter(settings)
	return func(yield func(spec.Operation) bool) {
		for _, op := range doc.Operations() {
			if reason := f.reject(op); reason != "" {
				log.Debug("operation skipped",
					zap.String("method", string(op.Method)),
					zap.String("path", op.Path),
					zap.String("reason", reason))
				continue
			}
			if !yield(op) {
				return
			}
		}
	}
}

type filter struct {
	includeDeprecated bool
	pathRes           []*regexp.Regexp
	includeTags       map[string]struct{}
}

func newFilter(s config.Settings) filter {
	f := filter{includeDeprecated: s.IncludeDeprecated}
	for _, p := range config.CleanList(s.IncludePathMatches) {
		re, err := regexp.Compile(p)
		if err != nil {
			// Validate rejects these; a pattern that slipped through never matches.
			re = regexp.MustCompile("a^$")
		}
		f.pathRes = append(f.pathRes, re)
	}
	if tags := config.CleanList(s.IncludeTags); len(tags) > 0 {
		f.includeTags = make(map[string]struct{}, len(tags))
		for _, t := range tags {
			f.includeTags[t] = struct{}{}
		}
	}
	return f
}

// reject returns why op is filtered out, or "" when it is kept.
func (f filter) reject(op spec.Operation) string {
	if op.Method == spec.TRACE {
		return "unsupported method"
	}
	if op.Operation.Deprecated && !f.includeDeprecated {
		return "deprecated"
	}
	if len(f.pathRes) > 0 {
		matched := false
		for _, re := range f.pathRes {
			if re.MatchString(op.Path) {
				matched = true
				break
			}
		}
		if !matched {
			return "path not included"
		}
	}
	if len(f.includeTags) > 0 {
		for _, t := range op.Operation.Tags {
			if _, ok := f.includeTags[t]; ok {
				return ""
			}
		}
		return "tag not included"
	}
	return ""
}
