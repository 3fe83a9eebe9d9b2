// Package errors provides error handling for planograph.
//
// It re-exports github.com/cockroachdb/errors (stack traces, wrapping,
// error marks) and defines the small taxonomy the graph engine reports:
//
//   - Validation: malformed input (empty id, missing required field)
//   - NotFound: an operation referenced an absent node, edge, or version
//   - UnsupportedFormat: an import/export format that is not implemented
//
// Taxonomy membership is carried via error marks so wrapping never hides
// the category:
//
//	if err := store.AddNodes(nodes); errors.IsValidation(err) {
//	    // reject the request, nothing was applied
//	}
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core creation and wrapping
var (
	New         = crdb.New
	Newf        = crdb.Newf
	Wrap        = crdb.Wrap
	Wrapf       = crdb.Wrapf
	WithStack   = crdb.WithStack
	WithMessage = crdb.WithMessage
	WithHint    = crdb.WithHint
	WithDetail  = crdb.WithDetail
)

// Inspection
var (
	Is     = crdb.Is
	IsAny  = crdb.IsAny
	As     = crdb.As
	Unwrap = crdb.Unwrap
	Mark   = crdb.Mark
)

// Taxonomy markers. Errors are attached to a category with Mark and
// tested with the Is* helpers below.
var (
	ErrValidation        = crdb.New("validation error")
	ErrNotFound          = crdb.New("not found")
	ErrUnsupportedFormat = crdb.New("unsupported format")
)

// Validationf creates a new validation error with formatting.
func Validationf(format string, args ...interface{}) error {
	return Mark(crdb.Newf(format, args...), ErrValidation)
}

// NotFoundf creates a new not-found error with formatting.
func NotFoundf(format string, args ...interface{}) error {
	return Mark(crdb.Newf(format, args...), ErrNotFound)
}

// UnsupportedFormatf creates a new unsupported-format error with formatting.
func UnsupportedFormatf(format string, args ...interface{}) error {
	return Mark(crdb.Newf(format, args...), ErrUnsupportedFormat)
}

// IsValidation reports whether err belongs to the validation category.
func IsValidation(err error) bool { return crdb.Is(err, ErrValidation) }

// IsNotFound reports whether err belongs to the not-found category.
func IsNotFound(err error) bool { return crdb.Is(err, ErrNotFound) }

// IsUnsupportedFormat reports whether err belongs to the unsupported-format category.
func IsUnsupportedFormat(err error) bool { return crdb.Is(err, ErrUnsupportedFormat) }
