package apiapp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	authsvc "github.com/Nkpro29/chuckle-match-ai/internal/services/auth"
)

func TestIdentityMiddlewareSetsCaller(t *testing.T) {
	mw := IdentityMiddleware(zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/candidates", nil)
	req.Header.Set(authsvc.UserIDHeader, "42")
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := authsvc.IdentityFromContext(r.Context())
		if !ok || identity.UserID != 42 {
			t.Fatalf("identity mismatch: %+v", identity)
		}
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestIdentityMiddlewareRejectsMissingHeader(t *testing.T) {
	mw := IdentityMiddleware(zap.NewNop())

	rr := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called without identity")
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/candidates", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestIdentityMiddlewareRejectsInvalidHeader(t *testing.T) {
	mw := IdentityMiddleware(zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/candidates", nil)
	req.Header.Set(authsvc.UserIDHeader, "abc")
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called on invalid identity")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}
}
