package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrLoad signals that a load could not produce a new generation.
	ErrLoad = errors.New("load failed")
	// ErrMalformedInput signals a decoded payload that does not match the record shape.
	// It wraps ErrLoad: a malformed payload is one way a load fails.
	ErrMalformedInput = fmt.Errorf("%w: malformed input", ErrLoad)
	// ErrInvalidQuery signals a query input the engine refuses to run.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrNotLoaded signals that no generation has been loaded yet.
	ErrNotLoaded = errors.New("no data loaded")
	// ErrRowNotFound signals an ordinal outside the active generation.
	ErrRowNotFound = errors.New("row not found")
	// ErrEngineClosed signals a call against a stopped engine.
	ErrEngineClosed = errors.New("engine closed")
)

// LoadError reports a transport failure while fetching records.
// Status is the upstream status code when the transport has one (HTTP), zero otherwise.
type LoadError struct {
	Locator string
	Status  int
	Err     error
}

func (e *LoadError) Error() string {
	msg := ErrLoad.Error() + ": " + e.Locator
	if e.Status != 0 {
		msg += fmt.Sprintf(": status %d", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrLoad}
	}
	return []error{ErrLoad, e.Err}
}

// NewLoadError creates a load error for the given locator.
func NewLoadError(locator string, status int, err error) error {
	return &LoadError{Locator: locator, Status: status, Err: err}
}

// MalformedInputError reports the first record that could not be decoded.
// Position is the 0-based element index, or -1 when the payload as a whole is wrong.
type MalformedInputError struct {
	Position int
	Err      error
}

func (e *MalformedInputError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("%s: %v", ErrMalformedInput.Error(), e.Err)
	}
	return fmt.Sprintf("%s: record %d: %v", ErrMalformedInput.Error(), e.Position, e.Err)
}

func (e *MalformedInputError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedInput}
	}
	return []error{ErrMalformedInput, e.Err}
}

// NewMalformedInput creates a malformed input error.
func NewMalformedInput(position int, err error) error {
	return &MalformedInputError{Position: position, Err: err}
}

// QueryError reports the query field that made the input invalid.
type QueryError struct {
	Field  string
	Reason string
}

func (e *QueryError) Error() string {
	if e.Field == "" {
		return ErrInvalidQuery.Error() + ": " + e.Reason
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalidQuery.Error(), e.Field, e.Reason)
}

func (e *QueryError) Unwrap() error { return ErrInvalidQuery }

// NewQueryError creates a query validation error.
func NewQueryError(field, reason string) error {
	return &QueryError{Field: field, Reason: reason}
}
