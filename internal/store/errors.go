// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	msqlite "modernc.org/sqlite"
	msqlitelib "modernc.org/sqlite/lib"
)

// Error kinds returned by the store. Match them with errors.Is.
var (
	// ErrValidation marks caller errors: a required field is missing or malformed.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an unknown id.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a uniqueness violation, e.g. a second row for the same (entity, locale).
	ErrConflict = errors.New("conflict")
	// ErrUnavailable marks lock contention or a timeout. Safe to retry with backoff.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrStorageFault marks any other storage failure. Not retried.
	ErrStorageFault = errors.New("storage fault")
)

// Error is a classified store error. It unwraps to both its Kind and the
// underlying driver error.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.Error()
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the kind and the cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ValidationError lists invalid fields with a message per field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// invalid builds a single-field ValidationError.
func invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// mergeValidation folds ozzo-validation errors into dst under prefix.
// Non-validation errors are returned unchanged.
func mergeValidation(dst map[string]string, prefix string, err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}
	for field, fieldErr := range errs {
		dst[prefix+field] = fieldErr.Error()
	}
	return nil
}

func notFound(op, what, id string) error {
	return &Error{Op: op, Kind: ErrNotFound, Err: fmt.Errorf("%s %q", what, id)}
}

// classify wraps err with the kind that matches the failure. Errors that are
// already classified pass through unchanged.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var se *Error
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, ErrValidation) {
		return err
	}

	kind := ErrStorageFault
	switch {
	case errors.Is(err, sql.ErrNoRows):
		kind = ErrNotFound
	case isBusyError(err), errors.Is(err, context.DeadlineExceeded):
		kind = ErrUnavailable
	case isUniqueViolation(err):
		kind = ErrConflict
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// isBusyError reports lock contention for either driver.
func isBusyError(err error) bool {
	var me *msqlite.Error
	if errors.As(err, &me) {
		code := me.Code() & 0xff
		return code == msqlitelib.SQLITE_BUSY || code == msqlitelib.SQLITE_LOCKED
	}
	return isMattnBusy(err)
}

// isUniqueViolation reports a UNIQUE or PRIMARY KEY constraint failure for either driver.
func isUniqueViolation(err error) bool {
	var me *msqlite.Error
	if errors.As(err, &me) {
		switch me.Code() {
		case msqlitelib.SQLITE_CONSTRAINT_UNIQUE, msqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
		return false
	}
	return isMattnUniqueViolation(err)
}
