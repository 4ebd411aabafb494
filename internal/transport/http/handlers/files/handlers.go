package fileshandler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrms/internal/platform/storage"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
)

type Downloader interface {
	Download(ctx context.Context, path string) (io.ReadCloser, error)
}

// Handler serves stored objects to holders of a signed URL. The token is the
// only credential; no session is required.
type Handler struct {
	Files    Downloader
	Verifier storage.URLVerifier
}

func NewHandler(files Downloader, verifier storage.URLVerifier) *Handler {
	return &Handler{Files: files, Verifier: verifier}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/files/*", h.handleDownload)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	key := chi.URLParam(r, "*")
	if err := h.Verifier.Verify(key, r.URL.Query().Get("token")); err != nil {
		api.Fail(w, http.StatusForbidden, "invalid_token", "invalid or expired file link", reqID)
		return
	}

	body, err := h.Files.Download(r.Context(), key)
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidPath) {
		api.Fail(w, http.StatusNotFound, "not_found", "file not found", reqID)
		return
	}
	if err != nil {
		slog.Warn("file download failed", "key", key, "err", err)
		api.Fail(w, http.StatusBadGateway, "remote_error", "file download failed", reqID)
		return
	}
	defer body.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if !inline(contentType) {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(key)}))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		slog.Warn("file stream failed", "key", key, "err", err)
	}
}

// inline reports whether a browser may render the object in place. Anything
// else is forced to download so stored markup never runs on this origin.
func inline(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") && contentType != "image/svg+xml" ||
		contentType == "application/pdf"
}
