// Package validate checks entities and relationships against a loaded schema.
//
// Expected failures (unknown types, missing properties, disallowed triplets)
// are reported inside a Result, never as Go errors. Only infrastructure
// faults, such as an unreachable store during resolved validation, propagate
// as errors.
package validate

import "strings"

// Result is the outcome of one validation run. Valid is true iff Errors is
// empty; warnings never affect validity.
type Result struct {
	Valid    bool
	Errors   []string
	Warnings []string
	// Context carries extra machine-readable detail, such as the resolved
	// entity types in relationship validation
	Context map[string]any
	// ValidatedProperties lists the property names examined, entity
	// validation only
	ValidatedProperties []string
}

func (r *Result) addError(msg string) {
	r.Errors = append(r.Errors, msg)
}

func (r *Result) addWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

func (r *Result) setContext(key string, value any) {
	if r.Context == nil {
		r.Context = make(map[string]any)
	}
	r.Context[key] = value
}

// finish sets Valid from the accumulated errors and returns the result
func (r Result) finish() Result {
	r.Valid = len(r.Errors) == 0
	return r
}

// invalid builds a failed result from a fixed error list
func invalid(errors ...string) Result {
	return Result{Valid: false, Errors: errors}
}

func joinComma(items []string) string {
	return strings.Join(items, ", ")
}
