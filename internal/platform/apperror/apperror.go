// Package apperror defines the error taxonomy surfaced at the request boundary
// and the echo error handler that renders it.
package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports missing or malformed request fields. Fields maps
// the JSON field name to a human readable problem.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ForbiddenError reports an authenticated principal acting on something it
// does not own.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	if e.Message == "" {
		return "forbidden"
	}
	return e.Message
}

// NotFoundError reports an identifier that does not resolve.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// DataAccessFault wraps a failure of an underlying store. Its detail is
// logged but never rendered to clients.
type DataAccessFault struct {
	Op  string
	Err error
}

func (e *DataAccessFault) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DataAccessFault) Unwrap() error { return e.Err }

func Validation(fields map[string]string) error {
	return &ValidationError{Fields: fields}
}

// Field is shorthand for a single-field validation error.
func Field(name, problem string) error {
	return &ValidationError{Fields: map[string]string{name: problem}}
}

func Forbidden(msg string) error {
	return &ForbiddenError{Message: msg}
}

func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// DataAccess wraps err as a store fault. Errors already in the taxonomy are
// returned unchanged.
func DataAccess(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsTaxonomy(err) {
		return err
	}
	return &DataAccessFault{Op: op, Err: err}
}

// IsTaxonomy reports whether err is one of the request-boundary error kinds.
func IsTaxonomy(err error) bool {
	var (
		ve *ValidationError
		fe *ForbiddenError
		ne *NotFoundError
		de *DataAccessFault
	)
	return errors.As(err, &ve) || errors.As(err, &fe) || errors.As(err, &ne) || errors.As(err, &de)
}

func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

func IsForbidden(err error) bool {
	var fe *ForbiddenError
	return errors.As(err, &fe)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsDataAccess(err error) bool {
	var de *DataAccessFault
	return errors.As(err, &de)
}
