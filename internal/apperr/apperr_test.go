package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusUnprocessableEntity},
		{KindAuthentication, http.StatusUnauthorized},
		{KindAuthorization, http.StatusUnauthorized},
		{KindNotFound, http.StatusNotFound},
		{KindConflict, http.StatusConflict},
		{KindUnexpected, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.Status(); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	t.Run("typed error", func(t *testing.T) {
		if got := KindOf(NotFound("Post not found.")); got != KindNotFound {
			t.Errorf("got %v, want not_found", got)
		}
	})

	t.Run("wrapped typed error", func(t *testing.T) {
		err := fmt.Errorf("handler: %w", Conflict("taken", nil))
		if got := KindOf(err); got != KindConflict {
			t.Errorf("got %v, want conflict", got)
		}
	})

	t.Run("plain error is unexpected", func(t *testing.T) {
		if got := KindOf(errors.New("boom")); got != KindUnexpected {
			t.Errorf("got %v, want unexpected", got)
		}
	})

	t.Run("nil is never a kind", func(t *testing.T) {
		if Is(nil, KindUnexpected) {
			t.Error("Is(nil) should be false")
		}
	})
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("duplicate key")
	err := Conflict("Could not assign a unique slug.", cause)
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
	if err.Error() != "Could not assign a unique slug.: duplicate key" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestFieldsAdd(t *testing.T) {
	f := Fields{}
	f.Add("title", "The title field is required.")
	f.Add("title", "The title field must be a string.")
	if len(f["title"]) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(f["title"]))
	}
	if Validation(f).Message != "Validation failed." {
		t.Error("unexpected validation message")
	}
}
