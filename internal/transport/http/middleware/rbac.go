package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"hrms/internal/domain/auth"
	"hrms/internal/transport/http/api"
)

type PermissionChecker interface {
	HasPermission(ctx context.Context, role auth.Role, permission string) (bool, error)
}

func RequirePermission(permission string, checker PermissionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
				return
			}

			allowed, err := checker.HasPermission(r.Context(), user.Role, permission)
			if err != nil {
				slog.Warn("permission check failed", "permission", permission, "err", err)
				api.Fail(w, http.StatusInternalServerError, "permission_error", "permission check failed", GetRequestID(r.Context()))
				return
			}
			if !allowed {
				slog.Warn("permission denied", "userId", user.UserID, "role", user.Role, "permission", permission)
				api.Fail(w, http.StatusForbidden, "unauthorized_access", "insufficient permissions", GetRequestID(r.Context()))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
