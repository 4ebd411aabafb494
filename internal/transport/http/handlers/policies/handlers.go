package policieshandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/policies"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

const maxPolicyMultipartBytes = 16 * 1024 * 1024

type PolicyService interface {
	List(ctx context.Context) ([]policies.Policy, error)
	Create(ctx context.Context, title, description, createdBy string, file *policies.File) (policies.Policy, error)
	Update(ctx context.Context, id, title, description string, file *policies.File) (policies.Policy, error)
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	Service PolicyService
	Perms   middleware.PermissionChecker
}

func NewHandler(service PolicyService, perms middleware.PermissionChecker) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/policies", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPoliciesRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermPoliciesWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermPoliciesWrite, h.Perms)).Put("/{policyID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermPoliciesWrite, h.Perms)).Delete("/{policyID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	list, err := h.Service.List(r.Context())
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, list, reqID)
}

// readForm parses the multipart policy form. The returned upload is nil when
// no file part was sent.
func readForm(w http.ResponseWriter, r *http.Request, reqID string) (title, description string, upload *shared.Upload, ok bool) {
	if !shared.IsMultipart(r) {
		api.Fail(w, http.StatusUnsupportedMediaType, "invalid_payload", "multipart/form-data required", reqID)
		return "", "", nil, false
	}
	if err := shared.ParseMultipart(r, maxPolicyMultipartBytes); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid multipart payload", reqID)
		return "", "", nil, false
	}
	upload, err := shared.FormFile(r, "file")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid policy file", reqID)
		return "", "", nil, false
	}
	return r.FormValue("title"), r.FormValue("description"), upload, true
}

func toFile(upload *shared.Upload) *policies.File {
	if upload == nil {
		return nil
	}
	return &policies.File{FileName: upload.FileName, ContentType: upload.ContentType, Body: upload.Body}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	title, description, upload, ok := readForm(w, r, reqID)
	if !ok {
		return
	}
	defer upload.Close()

	created, err := h.Service.Create(r.Context(), title, description, user.UserID, toFile(upload))
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Created(w, created, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := shared.PathUUID(w, r, "policyID", reqID)
	if !ok {
		return
	}
	title, description, upload, ok := readForm(w, r, reqID)
	if !ok {
		return
	}
	defer upload.Close()

	updated, err := h.Service.Update(r.Context(), id, title, description, toFile(upload))
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, updated, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := shared.PathUUID(w, r, "policyID", reqID)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}
