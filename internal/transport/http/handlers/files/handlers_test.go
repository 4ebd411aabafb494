package fileshandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"hrms/internal/platform/storage"
)

func setup(t *testing.T) (http.Handler, *storage.LocalStorage) {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir(), "http://hr.test", storage.NewSigner("file-secret"))
	require.NoError(t, err)
	r := chi.NewRouter()
	NewHandler(files, files).RegisterRoutes(r)
	return r, files
}

func get(router http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestSignedURLServesFile(t *testing.T) {
	ctx := context.Background()
	router, files := setup(t)
	key, err := files.Upload(ctx, strings.NewReader("%PDF handbook"), "policies/handbook.pdf", "application/pdf")
	require.NoError(t, err)

	signed, err := files.GetURL(ctx, key, time.Hour)
	require.NoError(t, err)
	u, err := url.Parse(signed)
	require.NoError(t, err)

	rec := get(router, u.RequestURI())
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.Equal(t, "%PDF handbook", rec.Body.String())
	require.Empty(t, rec.Header().Get("Content-Disposition"))
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestMarkupServedAsAttachment(t *testing.T) {
	ctx := context.Background()
	router, files := setup(t)
	key, err := files.Upload(ctx, strings.NewReader("<script>alert(1)</script>"), "leave-evidence/crew-1_1.html", "text/html")
	require.NoError(t, err)

	signed, err := files.GetURL(ctx, key, time.Hour)
	require.NoError(t, err)
	u, err := url.Parse(signed)
	require.NoError(t, err)

	rec := get(router, u.RequestURI())
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, `attachment; filename=crew-1_1.html`, rec.Header().Get("Content-Disposition"))
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestTokenBoundToKey(t *testing.T) {
	ctx := context.Background()
	router, files := setup(t)
	_, err := files.Upload(ctx, strings.NewReader("a"), "policies/a.pdf", "application/pdf")
	require.NoError(t, err)
	_, err = files.Upload(ctx, strings.NewReader("b"), "policies/b.pdf", "application/pdf")
	require.NoError(t, err)

	signed, err := files.GetURL(ctx, "policies/a.pdf", time.Hour)
	require.NoError(t, err)
	u, err := url.Parse(signed)
	require.NoError(t, err)

	rec := get(router, "/files/policies/b.pdf?"+u.RawQuery)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = get(router, "/files/policies/a.pdf")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMissingObject(t *testing.T) {
	ctx := context.Background()
	router, files := setup(t)
	signed, err := files.GetURL(ctx, "policies/gone.pdf", time.Hour)
	require.NoError(t, err)
	u, err := url.Parse(signed)
	require.NoError(t, err)

	rec := get(router, u.RequestURI())
	require.Equal(t, http.StatusNotFound, rec.Code)
}
