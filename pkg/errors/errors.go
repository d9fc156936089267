package errors

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when the backend rejects the bearer credential (401/403)
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrValidation is returned when validation fails
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrInvalidCoupon is returned when the backend answers a coupon check with a 400-class status
type ErrInvalidCoupon struct {
	Code    string
	Message string
}

func (e *ErrInvalidCoupon) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("invalid coupon %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("invalid coupon %s", e.Code)
}

// ErrTransient covers timeouts, connectivity loss and 5xx answers. Callers may retry.
type ErrTransient struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *ErrTransient) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: backend returned %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ErrTransient) Unwrap() error {
	return e.Err
}

// ErrInvalidStateTransition is returned when an invalid state transition is attempted
type ErrInvalidStateTransition struct {
	From string
	To   string
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// IsNotFound reports whether err wraps an *ErrNotFound.
func IsNotFound(err error) bool {
	var target *ErrNotFound
	return errors.As(err, &target)
}

// IsUnauthorized reports whether err wraps an *ErrUnauthorized.
func IsUnauthorized(err error) bool {
	var target *ErrUnauthorized
	return errors.As(err, &target)
}

// IsInvalidCoupon reports whether err wraps an *ErrInvalidCoupon.
func IsInvalidCoupon(err error) bool {
	var target *ErrInvalidCoupon
	return errors.As(err, &target)
}

// IsValidation reports whether err wraps an *ErrValidation.
func IsValidation(err error) bool {
	var target *ErrValidation
	return errors.As(err, &target)
}

// IsTransient reports whether err wraps an *ErrTransient.
func IsTransient(err error) bool {
	var target *ErrTransient
	return errors.As(err, &target)
}

// As is errors.As, re-exported so callers need a single errors import
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Is is errors.Is
func Is(err, target error) bool {
	return errors.Is(err, target)
}
