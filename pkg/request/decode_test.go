package request

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/podplanner/pkg/apperror"
)

type signup struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
}

func TestDecodeValidBody(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"username":"alice","email":"a@x.com"}`))

	var dst signup
	if err := Decode(r, &dst); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if dst.Username != "alice" {
		t.Fatalf("unexpected username %q", dst.Username)
	}
}

func TestDecodeReportsFieldErrors(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"username":"al","email":"nope"}`))

	var dst signup
	err := Decode(r, &dst)

	appErr, ok := apperror.As(err)
	if !ok || appErr.Kind != apperror.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if appErr.Details["username"] == "" || appErr.Details["email"] == "" {
		t.Fatalf("expected json field names in details, got %v", appErr.Details)
	}
}

func TestDecodeMalformedJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"username":`))

	var dst signup
	if err := Decode(r, &dst); apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPathID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{raw: "42", want: 42},
		{raw: "0", wantErr: true},
		{raw: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.raw)
			r := httptest.NewRequest("GET", "/", nil)
			r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

			got, err := PathID(r, "id")
			if (err != nil) != tt.wantErr {
				t.Fatalf("PathID err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("PathID = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestQueryBool(t *testing.T) {
	r := httptest.NewRequest("GET", "/?archived=true&deleted=maybe", nil)

	archived, err := QueryBool(r, "archived")
	if err != nil || archived == nil || !*archived {
		t.Fatalf("unexpected archived %v, %v", archived, err)
	}

	if _, err := QueryBool(r, "deleted"); apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	missing, err := QueryBool(r, "other")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing parameter, got %v, %v", missing, err)
	}
}
