// Package handlertest holds helpers shared by the handler packages' tests.
package handlertest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"hrms/internal/domain/auth"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
)

// Registrar is implemented by every handler.
type Registrar interface {
	RegisterRoutes(r chi.Router)
}

// Router mounts h the way the server does, under /api/v1.
func Router(h Registrar) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/v1", h.RegisterRoutes)
	return r
}

func Enforcer(t *testing.T) *auth.Enforcer {
	t.Helper()
	e, err := auth.NewEnforcer()
	require.NoError(t, err)
	return e
}

// Ids for routes that take a UUID. CrewID belongs to Employee.
const (
	CrewID  = "7f3c1a2e-5b6d-4e8f-9a01-23456789abcd"
	OtherID = "0d9e8f7a-6b5c-4d3e-8f21-0a1b2c3d4e5f"
)

var (
	HR       = auth.UserContext{UserID: "user-hr", Email: "hr@example.com", Role: auth.RoleHR}
	Admin    = auth.UserContext{UserID: "user-admin", Email: "admin@example.com", Role: auth.RoleAdmin}
	Employee = auth.UserContext{UserID: "user-emp", Email: "crew@example.com", Role: auth.RoleEmployee, EmployeeID: CrewID}
)

// Request builds a request carrying user. A zero user sends it anonymously.
func Request(method, target string, body io.Reader, user auth.UserContext) *http.Request {
	req := httptest.NewRequest(method, target, body)
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user.UserID != "" {
		req = req.WithContext(middleware.WithUser(req.Context(), user))
	}
	return req
}

func JSON(method, target, body string, user auth.UserContext) *http.Request {
	return Request(method, target, strings.NewReader(body), user)
}

func Serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *api.Error      `json:"error"`
}

// Data decodes a success envelope's data into dst.
func Data(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	require.True(t, env.Success, rec.Body.String())
	if dst != nil {
		require.NoError(t, json.Unmarshal(env.Data, dst))
	}
}

// ErrorCode returns the error code of a failure envelope.
func ErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	return env.Error.Code
}
