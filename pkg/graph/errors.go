package graph

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrNodeNotFound         = errors.New("node not found")
	ErrRelationshipNotFound = errors.New("relationship not found")
	ErrStoreClosed          = errors.New("store is closed")
)

// StoreError provides structured error information for store operations.
// Infrastructure faults reach callers wrapped in a StoreError; the core never
// retries them itself.
type StoreError struct {
	Op     string // Operation that failed (e.g. "FetchProperties", "ReadQuery")
	Entity string // Entity kind ("node", "relationship", "query")
	Ref    string // Entity reference, if applicable
	Cause  error  // Underlying error
}

// Error implements the error interface
func (e *StoreError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("%s %s %s: %v", e.Op, e.Entity, e.Ref, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Cause)
}

// Unwrap returns the underlying cause for error chain support
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// NodeNotFoundError creates a node not found error for the given reference
func NodeNotFoundError(op string, ref NodeRef) error {
	return &StoreError{Op: op, Entity: "node", Ref: string(ref), Cause: ErrNodeNotFound}
}

// RelationshipNotFoundError creates a relationship not found error
func RelationshipNotFoundError(op string, ref RelationshipRef) error {
	return &StoreError{Op: op, Entity: "relationship", Ref: string(ref), Cause: ErrRelationshipNotFound}
}

// QueryError wraps a failed query execution
func QueryError(op string, cause error) error {
	return &StoreError{Op: op, Entity: "query", Cause: cause}
}

// IsNotFound reports whether err indicates a missing node or relationship
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound) || errors.Is(err, ErrRelationshipNotFound)
}
