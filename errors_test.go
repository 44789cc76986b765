package formapage

import (
	"errors"
	"testing"
)

func TestPagingErrorMessageIncludesFieldWhenSet(t *testing.T) {
	err := NewUnknownFieldError(ErrCodeUnknownFilterField, "status")
	if err.Error() != `[unknown_field:UNKNOWN_FILTER_FIELD] field "status": unknown field "status"` {
		t.Fatalf("unexpected error message: %s", err.Error())
	}
}

func TestPagingErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("driver timeout")
	err := NewBackendError("main query failed", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to find the wrapped cause")
	}
}

func TestIsUnknownFieldErrorDistinguishesKind(t *testing.T) {
	unknown := NewUnknownFieldError(ErrCodeUnknownFilterField, "bogus")
	if !IsUnknownFieldError(unknown) {
		t.Fatal("expected an unknown-field error to be classified as such")
	}

	invalid := NewInvalidCriteriaError(ErrCodeEmptyInList, "empty list", "tags")
	if IsUnknownFieldError(invalid) {
		t.Fatal("expected an invalid-criteria error not to classify as unknown-field")
	}
}

func TestPagingErrorWithDetailAccumulates(t *testing.T) {
	err := NewUnsupportedCriteriaError("price", 3.14).WithDetail("kind", "float64")
	if err.Details["kind"] != "float64" {
		t.Fatalf("unexpected details: %#v", err.Details)
	}
}
