package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf_Tagged(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validationf("bad input"), KindValidation},
		{"not found", NotFoundf("no task %s", "x"), KindNotFound},
		{"invalid transition", InvalidTransitionf("already terminal"), KindInvalidTransition},
		{"forbidden", Forbiddenf("wrong department"), KindForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKindOf_Untagged(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindUnknown {
		t.Errorf("KindOf(plain error) = %v, want KindUnknown", got)
	}
	if got := KindOf(nil); got != KindUnknown {
		t.Errorf("KindOf(nil) = %v, want KindUnknown", got)
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	inner := Validationf("empty interventions")
	wrapped := fmt.Errorf("create task: %w", inner)
	if got := KindOf(wrapped); got != KindValidation {
		t.Errorf("KindOf(wrapped) = %v, want KindValidation", got)
	}
}

func TestWrap_Unwraps(t *testing.T) {
	cause := errors.New("row scan failed")
	err := Wrap(KindNotFound, cause, "task lookup")
	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to satisfy errors.Is")
	}
	if KindOf(err) != KindNotFound {
		t.Errorf("expected KindNotFound, got %v", KindOf(err))
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validationf("x"), http.StatusBadRequest},
		{NotFoundf("x"), http.StatusNotFound},
		{InvalidTransitionf("x"), http.StatusConflict},
		{Forbiddenf("x"), http.StatusForbidden},
		{errors.New("x"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestMessage_OpaqueForUntagged(t *testing.T) {
	if got := Message(errors.New("pgx: connection refused")); got != "internal server error" {
		t.Errorf("expected opaque message, got %q", got)
	}
	if got := Message(Validationf("due date is in the past")); got != "due date is in the past" {
		t.Errorf("expected tagged message, got %q", got)
	}
}
