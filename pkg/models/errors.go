package models

import (
	"errors"
	"fmt"
)

type AppError struct {
	AppErrorType AppErrorType
	Err          error
}

type AppErrorType string

func (e AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.AppErrorType, e.Err)
	}
	return string(e.AppErrorType)
}

func (e AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError of the same type, so callers can
// write errors.Is(err, models.AppError{AppErrorType: models.ErrMissingFile}).
func (e AppError) Is(target error) bool {
	t, ok := target.(AppError)
	if !ok {
		return false
	}
	return t.AppErrorType == e.AppErrorType
}

const (
	ErrMissingFile         AppErrorType = "required file was not found"
	ErrMissingAssembly     AppErrorType = "implementation assembly was not found"
	ErrUnresolvedReference AppErrorType = "unable to resolve assembly reference"
	ErrInvalidSurface      AppErrorType = "invalid api surface document"
	ErrInvalidConfig       AppErrorType = "invalid configuration"
)

// NewAppError wraps err with the given error type.
func NewAppError(t AppErrorType, err error) AppError {
	return AppError{AppErrorType: t, Err: err}
}

// IsFatal reports whether err is a setup error that must abort a run before
// any comparison happens.
func IsFatal(err error) bool {
	for _, t := range []AppErrorType{ErrMissingFile, ErrMissingAssembly, ErrUnresolvedReference, ErrInvalidSurface, ErrInvalidConfig} {
		if errors.Is(err, AppError{AppErrorType: t}) {
			return true
		}
	}
	return false
}
