package pattern

import (
	"errors"
	"strings"
)

// ErrSchema is matched by every validation failure.
var ErrSchema = errors.New("invalid pattern")

// SchemaError describes one problem in a pattern document.
type SchemaError struct {
	// Path locates the offending value, e.g. "/bodies/2/gravity/min".
	Path    string
	Message string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// Unwrap returns ErrSchema.
func (e *SchemaError) Unwrap() error { return ErrSchema }

// SchemaErrors collects all problems found in one document.
type SchemaErrors []*SchemaError

func (errs SchemaErrors) Error() string {
	var sb strings.Builder
	sb.WriteString("invalid pattern: ")
	for i, e := range errs {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(e.Error())
	}
	return sb.String()
}

// Unwrap exposes every SchemaError to errors.Is and errors.As.
func (errs SchemaErrors) Unwrap() []error {
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return out
}
