package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/httprate"

	"hrms/internal/domain/auth"
	"hrms/internal/requestctx"
	"hrms/internal/transport/http/api"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

// SessionChecker reports whether a signed-in session has not been revoked.
type SessionChecker interface {
	SessionValid(ctx context.Context, userID, sessionID string) (bool, error)
}

// Auth attaches the caller from a bearer token when one is present and valid.
// Requests without a usable token continue anonymously; RequireAuth and
// RequirePermission reject them where a caller is needed.
func Auth(secret string, sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := requestctx.Actor{IP: ClientIP(r)}
			ctx := r.Context()

			if user, ok := userFromRequest(r, secret, sessions); ok {
				actor.UserID = user.UserID
				ctx = WithUser(ctx, user)
			}
			ctx = requestctx.WithActor(ctx, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userFromRequest(r *http.Request, secret string, sessions SessionChecker) (auth.UserContext, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return auth.UserContext{}, false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return auth.UserContext{}, false
	}

	claims, err := auth.ParseToken(secret, parts[1])
	if err != nil {
		return auth.UserContext{}, false
	}
	if sessions != nil {
		valid, err := sessions.SessionValid(r.Context(), claims.UserID, claims.SessionID)
		if err != nil {
			slog.Warn("session check failed", "userId", claims.UserID, "err", err)
			return auth.UserContext{}, false
		}
		if !valid {
			return auth.UserContext{}, false
		}
	}
	return auth.UserContext{
		UserID:     claims.UserID,
		Email:      claims.Email,
		Role:       claims.Role,
		EmployeeID: claims.EmployeeID,
		SessionID:  claims.SessionID,
	}, true
}

// RequireAuth rejects anonymous requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireEmployee rejects callers whose account has no linked crew record.
func RequireEmployee(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r.Context())
		if !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		if !user.HasEmployee() {
			api.Fail(w, http.StatusForbidden, "unauthorized_access", "no employee record linked to this account", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithUser(ctx context.Context, user auth.UserContext) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(auth.UserContext)
	return user, ok
}

// ClientIP honours the usual proxy headers before falling back to the peer
// address.
func ClientIP(r *http.Request) string {
	ip, err := httprate.KeyByRealIP(r)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
