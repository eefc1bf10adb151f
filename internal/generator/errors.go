package generator

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/mark3labs/refitgen/internal/spec"
)

var (
	// ErrUnresolvableType marks failures of the type resolver. The wrapped error
	// names the operation that could not be typed.
	ErrUnresolvableType = errors.New("unresolvable type")
	// ErrNilDocument is returned when Generate is called without a document.
	ErrNilDocument = errors.New("nil document")
)

func unresolvable(err error, op spec.Operation, what string) error {
	return errors.Wrapf(errors.Mark(err, ErrUnresolvableType),
		"%s %s: %s", strings.ToUpper(string(op.Method)), op.Path, what)
}
