package noticeshandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/notices"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type NoticeService interface {
	List(ctx context.Context) ([]notices.Notice, error)
	Create(ctx context.Context, title, content, createdBy string) (notices.Notice, error)
	Update(ctx context.Context, id, title, content string) (notices.Notice, error)
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	Service NoticeService
	Perms   middleware.PermissionChecker
}

func NewHandler(service NoticeService, perms middleware.PermissionChecker) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notices", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermNoticesRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermNoticesWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermNoticesWrite, h.Perms)).Put("/{noticeID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermNoticesWrite, h.Perms)).Delete("/{noticeID}", h.handleDelete)
	})
}

type noticeRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content"`
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

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	var payload noticeRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	created, err := h.Service.Create(r.Context(), payload.Title, payload.Content, user.UserID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Created(w, created, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := shared.PathUUID(w, r, "noticeID", reqID)
	if !ok {
		return
	}
	var payload noticeRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	updated, err := h.Service.Update(r.Context(), id, payload.Title, payload.Content)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, updated, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := shared.PathUUID(w, r, "noticeID", reqID)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}
