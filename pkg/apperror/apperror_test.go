package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesKindAndMessage(t *testing.T) {
	sentinel := New(KindLoginRequired, "login required")
	decorated := sentinel.WithDetail("email", "x@y.com")

	if !errors.Is(decorated, sentinel) {
		t.Fatal("expected decorated error to match its sentinel")
	}
	if errors.Is(decorated, New(KindLoginRequired, "something else")) {
		t.Fatal("expected different message not to match")
	}
	if errors.Is(decorated, New(KindConflict, "login required")) {
		t.Fatal("expected different kind not to match")
	}
	if decorated.Details["email"] != "x@y.com" {
		t.Fatalf("unexpected details: %v", decorated.Details)
	}
	if len(sentinel.Details) != 0 {
		t.Fatalf("WithDetail mutated the sentinel: %v", sentinel.Details)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "direct", err: New(KindNotFound, "group not found"), want: KindNotFound},
		{name: "wrapped", err: fmt.Errorf("lookup: %w", New(KindForbidden, "nope")), want: KindForbidden},
		{name: "plain", err: errors.New("boom"), want: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("smtp: connection refused")
	err := Wrap(KindDeliveryFailure, "failed to deliver email", cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable")
	}
	if err.Error() != "failed to deliver email: smtp: connection refused" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
