package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"

	"hrms/internal/transport/http/api"
)

// RateLimit throttles per signed-in user, or per client address for
// anonymous callers.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(actorOrIPKey),
		httprate.WithLimitHandler(limitExceeded),
	)
}

// LoginRateLimit applies a tighter budget to credential attempts, counted both
// per address and per submitted email.
func LoginRateLimit(baseLimit int, window time.Duration) func(http.Handler) http.Handler {
	limit := max(baseLimit/4, 1)
	byIP := httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(limitExceeded),
	)
	byEmail := httprate.Limit(limit, window,
		httprate.WithKeyFuncs(AuthEmailOrIPKey("email")),
		httprate.WithLimitHandler(limitExceeded),
	)
	return func(next http.Handler) http.Handler {
		return byIP(byEmail(next))
	}
}

// AuthEmailOrIPKey keys on a JSON body field, restoring the body for the
// handler. Requests without the field fall back to the client address.
func AuthEmailOrIPKey(field string) httprate.KeyFunc {
	normalizedField := strings.TrimSpace(field)
	if normalizedField == "" {
		normalizedField = "email"
	}
	return func(r *http.Request) (string, error) {
		email := extractJSONField(r, normalizedField)
		if email == "" {
			return "ip:" + ClientIP(r), nil
		}
		return "email:" + strings.ToLower(email), nil
	}
}

func actorOrIPKey(r *http.Request) (string, error) {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.UserID, nil
	}
	return "ip:" + ClientIP(r), nil
}

func limitExceeded(w http.ResponseWriter, r *http.Request) {
	slog.Warn("rate limit exceeded",
		"path", r.URL.Path,
		"method", r.Method,
		"ip", ClientIP(r),
	)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
}

func extractJSONField(r *http.Request, field string) string {
	if r == nil || r.Body == nil {
		return ""
	}
	contentType := strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Type")))
	if !strings.Contains(contentType, "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64*1024))
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if len(raw) == 0 {
		return ""
	}
	payload := map[string]any{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	value, _ := payload[field].(string)
	return strings.TrimSpace(value)
}
