package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestGuestSessionMintsIdentifier(t *testing.T) {
	mw := GuestSession(nil)
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if seen == "" {
		t.Fatal("expected session id in context")
	}
	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("expected uuid session id, got %q", seen)
	}
	if got := resp.Header().Get("X-Session-Id"); got != seen {
		t.Fatalf("expected response header %q, got %q", seen, got)
	}
}

func TestGuestSessionEchoesSuppliedIdentifier(t *testing.T) {
	mw := GuestSession(nil)
	supplied := uuid.NewString()
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-Session-Id", supplied)
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if seen != supplied {
		t.Fatalf("expected session %q, got %q", supplied, seen)
	}
	if got := resp.Header().Get("X-Session-Id"); got != supplied {
		t.Fatalf("expected header echo %q, got %q", supplied, got)
	}
}

func TestGuestSessionRejectsMalformedIdentifier(t *testing.T) {
	mw := GuestSession(nil)
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-Session-Id", "not-a-uuid; DROP TABLE carts")
	mw(handler).ServeHTTP(httptest.NewRecorder(), req)

	if seen == "not-a-uuid; DROP TABLE carts" {
		t.Fatal("malformed session id must not pass through")
	}
	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("expected minted uuid, got %q", seen)
	}
}
