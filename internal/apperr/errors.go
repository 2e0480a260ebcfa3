// Package apperr holds the error kinds shared by the ledgers, the stores and
// the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound = errors.New("not found")
	ErrStorage  = errors.New("storage failure")
	ErrConflict = errors.New("conflict")
)

// ValidationError is a business-rule or input violation.
type ValidationError struct {
	Field   string
	Message string
	// alan adı → doğrulama etiketi, binding doldurur
	Fields  map[string]string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Validation(field, message string) error {
	return ValidationError{Field: field, Message: message}
}

type notFoundError struct {
	what string
}

func (e notFoundError) Error() string { return e.what + " not found" }

func (e notFoundError) Unwrap() error { return ErrNotFound }

// NotFound builds an error that matches ErrNotFound with errors.Is.
func NotFound(what string) error {
	return notFoundError{what: what}
}

type storageError struct {
	op  string
	err error
}

func (e storageError) Error() string { return fmt.Sprintf("%s: %v", e.op, e.err) }

func (e storageError) Unwrap() []error { return []error{ErrStorage, e.err} }

// Storage wraps a driver failure. Nil in, nil out.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorage) || errors.Is(err, ErrNotFound) || IsValidation(err) {
		return err
	}
	return storageError{op: op, err: err}
}

func Conflict(message string) error {
	return fmt.Errorf("%w: %s", ErrConflict, message)
}

func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsStorage(err error) bool { return errors.Is(err, ErrStorage) }

// HTTPStatus maps an error kind onto a response code.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err):
		return http.StatusUnprocessableEntity
	case IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage hides storage details from clients.
func PublicMessage(err error) string {
	switch {
	case IsValidation(err), IsNotFound(err), errors.Is(err, ErrConflict):
		return err.Error()
	default:
		return "internal server error"
	}
}
