package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	t.Parallel()

	if meta := MetadataFor(CodeNotFound); meta.HTTPStatus != http.StatusNotFound {
		t.Fatalf("expected 404 for not-found, got %d", meta.HTTPStatus)
	}
	if meta := MetadataFor(CodeDependency); !meta.Retryable {
		t.Fatal("dependency errors should be retryable")
	}
	if meta := MetadataFor(Code("UNKNOWN")); meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown codes fall back to internal, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	err := Wrap(CodeDependency, cause, "persist collection")

	if !errors.Is(err, cause) {
		t.Fatal("wrapped error should unwrap to its cause")
	}
	if typed := As(fmt.Errorf("outer: %w", err)); typed == nil || typed.Code() != CodeDependency {
		t.Fatalf("As should find the typed error through wrapping, got %v", typed)
	}
}

func TestWrapNilCauseBehavesLikeNew(t *testing.T) {
	t.Parallel()

	err := Wrap(CodeValidation, nil, "missing field")
	if err.Unwrap() != nil {
		t.Fatal("nil cause should not be retained")
	}
	if err.Code() != CodeValidation {
		t.Fatalf("unexpected code %s", err.Code())
	}
}

func TestWithDetails(t *testing.T) {
	t.Parallel()

	err := New(CodeValidation, "validation failed").WithDetails(map[string]string{"email": "is required"})
	details, ok := err.Details().(map[string]string)
	if !ok || details["email"] != "is required" {
		t.Fatalf("unexpected details: %v", err.Details())
	}
}
