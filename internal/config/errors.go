package config

import (
	"errors"
	"fmt"
)

// Validation sentinels wrapped by *Error.
var (
	ErrMissingField  = errors.New("required field missing")
	ErrInvalidPeriod = errors.New("period must be a positive number of seconds")
	ErrUnknownType   = errors.New("unknown type")
)

// Error reports a configuration that could not be loaded or is invalid.
type Error struct {
	Path  string
	Field string
	Err   error
}

func (e *Error) Error() string {
	switch {
	case e.Field != "" && e.Path != "":
		return fmt.Sprintf("config %s: %s: %v", e.Path, e.Field, e.Err)
	case e.Field != "":
		return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
	default:
		return fmt.Sprintf("config %s: %v", e.Path, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }
