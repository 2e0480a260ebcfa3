package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("quantity", "must be positive"), http.StatusUnprocessableEntity},
		{"wrapped validation", fmt.Errorf("add: %w", Validation("", "payment exceeds balance")), http.StatusUnprocessableEntity},
		{"not found", NotFound("inventory item"), http.StatusNotFound},
		{"conflict", Conflict("busy"), http.StatusConflict},
		{"storage", Storage("insert", errors.New("connection reset")), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HTTPStatus(tc.err); got != tc.want {
				t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestStorageKeepsKnownKinds(t *testing.T) {
	nf := NotFound("entry")
	if got := Storage("get", nf); got != nf {
		t.Errorf("Storage should pass not-found through, got %v", got)
	}
	if Storage("noop", nil) != nil {
		t.Error("Storage(nil) should be nil")
	}

	cause := errors.New("disk full")
	err := Storage("insert cash entry", cause)
	if !IsStorage(err) || !errors.Is(err, cause) {
		t.Errorf("storage error should match both ErrStorage and its cause: %v", err)
	}
	if PublicMessage(err) != "internal server error" {
		t.Errorf("storage details leaked: %q", PublicMessage(err))
	}
}

func TestValidationMessage(t *testing.T) {
	err := Validation("", "item not sold on credit")
	if err.Error() != "item not sold on credit" {
		t.Errorf("got %q", err.Error())
	}
	err = Validation("rate", "must not be negative")
	if err.Error() != "rate: must not be negative" {
		t.Errorf("got %q", err.Error())
	}
}
