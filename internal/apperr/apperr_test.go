package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindConfigValidation, "ConfigValidationError"},
		{KindInitialization, "ErrorInInitialization"},
		{KindEntityNotFound, "EntityNotFound"},
		{KindBadRequest, "BadRequest"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestIsKind(t *testing.T) {
	err := Initialization("no primary key found for %s", "books")
	if !IsKind(err, KindInitialization) {
		t.Error("expected KindInitialization")
	}
	if IsKind(err, KindBadRequest) {
		t.Error("did not expect KindBadRequest")
	}
	if IsKind(nil, KindInitialization) {
		t.Error("nil error should have no kind")
	}
	if IsKind(errors.New("plain"), KindInitialization) {
		t.Error("plain error should have no kind")
	}
}

func TestIsKindThroughWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := InitializationWrap(cause, "failed to load columns for %s", "books")

	wrapped := fmt.Errorf("catalog build: %w", err)
	if !IsKind(wrapped, KindInitialization) {
		t.Error("kind should survive fmt.Errorf wrapping")
	}
	if !errors.Is(wrapped, cause) {
		t.Error("cause should be reachable through Unwrap")
	}
}

func TestEntityNotFoundMessage(t *testing.T) {
	err := EntityNotFound("Book")
	if !IsKind(err, KindEntityNotFound) {
		t.Fatal("expected KindEntityNotFound")
	}
	want := `EntityNotFound: entity "Book" not found in catalog`
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}
