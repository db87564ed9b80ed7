package schema

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrSchemaNotFound means no declarative source exists under the
	// requested schema name
	ErrSchemaNotFound = errors.New("schema not found")
)

// ParseError means the declarative schema source is malformed. It carries the
// underlying parse diagnostic. A ParseError aborts the load but never corrupts
// previously cached schemas.
type ParseError struct {
	Schema string // Schema name being loaded
	Detail string // What was malformed (empty when Cause says it all)
	Cause  error  // Underlying diagnostic, e.g. from the YAML decoder
}

// Error implements the error interface
func (e *ParseError) Error() string {
	switch {
	case e.Detail != "" && e.Cause != nil:
		return fmt.Sprintf("parse schema %q: %s: %v", e.Schema, e.Detail, e.Cause)
	case e.Detail != "":
		return fmt.Sprintf("parse schema %q: %s", e.Schema, e.Detail)
	default:
		return fmt.Sprintf("parse schema %q: %v", e.Schema, e.Cause)
	}
}

// Unwrap returns the underlying diagnostic for error chain support
func (e *ParseError) Unwrap() error {
	return e.Cause
}

func parseError(schema, format string, args ...any) *ParseError {
	return &ParseError{Schema: schema, Detail: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err indicates a missing schema
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSchemaNotFound)
}

// IsParseError reports whether err is a ParseError
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
