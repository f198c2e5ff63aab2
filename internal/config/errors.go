package config

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid tags every configuration failure so callers can match the
// whole class with errors.Is.
var ErrInvalid = errors.New("configuration invalid")

// InvalidError is a structured configuration failure. It is fatal for the
// verification path and for process start.
type InvalidError struct {
	Reason string
}

func (e *InvalidError) Error() string {
	return "configuration invalid: " + e.Reason
}

func (e *InvalidError) Is(target error) bool {
	return target == ErrInvalid
}

func isValidationErrors(err error, target *validator.ValidationErrors) bool {
	return errors.As(err, target)
}
