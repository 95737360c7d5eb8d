// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store implements the SQL persistence layer: the generic tree
// lifecycle engine, the entity stores built on it, and the schema registry.
// All multi-row mutations run in a single transaction; callers never
// observe a partially applied cascade.
package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports malformed input with per-field detail. Mapped
// to 422 by the HTTP layer, never retried.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, detail string) *ValidationError {
	return &ValidationError{
		Message: "validation failed",
		Fields:  map[string]string{field: detail},
	}
}

// NotFoundError reports an id that does not resolve. Mapped to 404.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ConflictError reports a uniqueness violation (feature code, table name,
// duplicate reference). Mapped to 409.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// DepthExceededError reports a tree walk past the recursion bound. The
// enclosing transaction is rolled back before it surfaces.
type DepthExceededError struct {
	Limit int
}

func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("tree depth exceeds limit of %d levels", e.Limit)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
