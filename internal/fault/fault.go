// Package fault tags errors with the lifecycle category that produced them so
// the CLI can tell the user which kind of failure occurred.
package fault

import (
	"errors"
	"fmt"
)

// Category is the failure class of a lifecycle error.
type Category string

const (
	CategoryValidation  Category = "validation"
	CategoryEligibility Category = "eligibility"
	CategoryNetwork     Category = "network"
	CategoryProcess     Category = "process"
	CategoryRegistry    Category = "registry"
)

// Error is a categorized error. Op names the operation that failed
// (e.g., "install", "registry.write").
type Error struct {
	Category Category
	Op       string
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with a category. A nil err yields nil.
func New(cat Category, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Category: cat, Op: op, Err: err}
}

func Validation(op string, err error) error  { return New(CategoryValidation, op, err) }
func Eligibility(op string, err error) error { return New(CategoryEligibility, op, err) }
func Network(op string, err error) error     { return New(CategoryNetwork, op, err) }
func Process(op string, err error) error     { return New(CategoryProcess, op, err) }
func Registry(op string, err error) error    { return New(CategoryRegistry, op, err) }

// CategoryOf returns the category of the outermost categorized error in the
// chain, or "" if none.
func CategoryOf(err error) Category {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Category
	}
	return ""
}

// Is reports whether err carries the given category.
func Is(err error, cat Category) bool {
	return CategoryOf(err) == cat
}

// Format renders err for the terminal as "[category] message".
func Format(err error) string {
	if cat := CategoryOf(err); cat != "" {
		return fmt.Sprintf("[%s] %v", cat, err)
	}
	return err.Error()
}
