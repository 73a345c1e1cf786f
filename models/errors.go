package models

import (
	"errors"
	"fmt"
)

// ValidationError reports the first rule a submission broke.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e *ValidationError) Error() string {
	switch {
	case e.Msg != "" && e.Field != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Field != "":
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ConflictError means the resource is already taken, e.g. a held event day.
type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e *ConflictError) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	}
	return "conflict"
}

func (e *ConflictError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Resource string
	ID       string
	Err      error
}

func (e *NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// IllegalTransitionError is returned when a status change skips or reverses
// the booking lifecycle.
type IllegalTransitionError struct {
	From BookingStatus
	To   BookingStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("cannot change booking status from %s to %s", e.From, e.To)
}

// InfrastructureError wraps a storage or transport failure.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error { return e.Err }

// Infra wraps err as an InfrastructureError unless it already carries a
// domain category.
func Infra(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsValidation(err) || IsConflict(err) || IsNotFound(err) || IsIllegalTransition(err) || IsInfrastructure(err) {
		return err
	}
	return &InfrastructureError{Op: op, Err: err}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsIllegalTransition(err error) bool {
	var target *IllegalTransitionError
	return errors.As(err, &target)
}

func IsInfrastructure(err error) bool {
	var target *InfrastructureError
	return errors.As(err, &target)
}

// ErrDayHeld is the conflict returned when an active booking already owns the day.
func ErrDayHeld(day string) error {
	return &ConflictError{
		Resource: "booking",
		Msg:      "This date is already booked. Please choose another date.",
		Err:      fmt.Errorf("event day %s is held", day),
	}
}

// ErrStaleStatus signals that a compare-and-set lost to a concurrent writer.
var ErrStaleStatus = errors.New("booking status changed concurrently")
