package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation")            // 400
	ErrNotFound            = errors.New("not found")             // 404
	ErrForbidden           = errors.New("forbidden")             // 403
	ErrConflict            = errors.New("conflict")              // 409
	ErrInvalidCredentials  = errors.New("invalid credentials")   // 401
	ErrInvalidRefreshToken = errors.New("invalid refresh token") // 401
	ErrOpenOrderExists     = errors.New("user already has an unpaid order")
)

// NonFieldErrors is the field name used for errors not tied to one input field.
const NonFieldErrors = "non_field_errors"

// FieldError is a validation failure scoped to one request field.
type FieldError struct {
	Field string
	Msg   string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Msg
}

func (e *FieldError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrValidation, e.Err}
	}
	return []error{ErrValidation}
}

func fieldError(field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

func openOrderError() *FieldError {
	return &FieldError{
		Field: NonFieldErrors,
		Msg:   "You already have an unpaid order. Please pay for it before creating a new one.",
		Err:   ErrOpenOrderExists,
	}
}

// Actor is the authenticated caller a service call is performed for.
type Actor struct {
	UserID  uint
	IsStaff bool
}
