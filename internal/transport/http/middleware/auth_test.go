package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hrms/internal/domain/auth"
	"hrms/internal/requestctx"
)

type sessionStub struct {
	valid bool
	err   error
}

func (s sessionStub) SessionValid(context.Context, string, string) (bool, error) {
	return s.valid, s.err
}

func bearer(t *testing.T, secret string) string {
	t.Helper()
	token, err := auth.GenerateToken(secret, auth.Claims{UserID: "u1", Email: "hr@example.com", Role: auth.RoleHR, SessionID: "s1"}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	return "Bearer " + token
}

func TestAuthMiddlewareSetsUser(t *testing.T) {
	secret := "test-secret"
	called := false
	handler := Auth(secret, sessionStub{valid: true})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		user, ok := GetUser(r.Context())
		if !ok {
			t.Fatal("expected user in context")
		}
		if user.UserID != "u1" || user.Role != auth.RoleHR || user.SessionID != "s1" {
			t.Fatalf("unexpected user: %+v", user)
		}
		if actor := requestctx.GetActor(r.Context()); actor.UserID != "u1" || actor.IP != "192.0.2.5" {
			t.Fatalf("unexpected actor: %+v", actor)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.5:4000"
	req.Header.Set("Authorization", bearer(t, secret))
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if !called {
		t.Fatal("expected handler to run")
	}
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	handler := Auth("secret", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); ok {
			t.Fatal("did not expect user in context")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestAuthMiddlewareRevokedSession(t *testing.T) {
	secret := "test-secret"
	for _, stub := range []sessionStub{{valid: false}, {err: errors.New("db down")}} {
		handler := Auth(secret, stub)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetUser(r.Context()); ok {
				t.Fatal("did not expect user for an unusable session")
			}
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", bearer(t, secret))
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

type enforcerStub map[auth.Role]bool

func (e enforcerStub) HasPermission(_ context.Context, role auth.Role, _ string) (bool, error) {
	return e[role], nil
}

func TestRequirePermission(t *testing.T) {
	handler := RequirePermission(auth.PermPayrollRun, enforcerStub{auth.RoleHR: true})(http.HandlerFunc(noContent))

	hr := httptest.NewRequest(http.MethodPost, "/", nil)
	hr = hr.WithContext(WithUser(hr.Context(), auth.UserContext{UserID: "u1", Role: auth.RoleHR}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, hr)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected hr to pass, got %d", rec.Code)
	}

	emp := httptest.NewRequest(http.MethodPost, "/", nil)
	emp = emp.WithContext(WithUser(emp.Context(), auth.UserContext{UserID: "u2", Role: auth.RoleEmployee}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, emp)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected employee to be forbidden, got %d", rec.Code)
	}
}

func TestSecureHeaders(t *testing.T) {
	handler := SecureHeaders(false)(http.HandlerFunc(noContent))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("expected frame deny, got %q", rec.Header().Get("X-Frame-Options"))
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("expected nosniff")
	}
}
