package leavehandler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/leave"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

const maxLeaveMultipartBytes = 8 * 1024 * 1024

type LeaveService interface {
	Submit(ctx context.Context, employeeID string, in leave.SubmitInput) (leave.LeaveRequest, error)
	ListMine(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error)
	Balance(ctx context.Context, employeeID string, year int) (map[leave.Category]leave.Balance, error)
	List(ctx context.Context, status leave.Status, category leave.Category) ([]leave.LeaveRequest, error)
	Decide(ctx context.Context, id string, decision leave.Status) (leave.LeaveRequest, error)
}

type Handler struct {
	Service LeaveService
	Perms   middleware.PermissionChecker
}

func NewHandler(service LeaveService, perms middleware.PermissionChecker) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermLeaveRequest, h.Perms)).Post("/requests", h.handleSubmit)
		r.With(middleware.RequirePermission(auth.PermLeaveRequest, h.Perms)).Get("/requests/mine", h.handleMine)
		r.With(middleware.RequirePermission(auth.PermLeaveRequest, h.Perms)).Get("/balance", h.handleBalance)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/requests", h.handleList)
		r.With(middleware.RequirePermission(auth.PermLeaveApprove, h.Perms)).Post("/requests/{requestID}/approve", h.handleDecide(leave.StatusApproved))
		r.With(middleware.RequirePermission(auth.PermLeaveApprove, h.Perms)).Post("/requests/{requestID}/reject", h.handleDecide(leave.StatusRejected))
	})
}

type submitRequest struct {
	Category  string `json:"category"`
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate"`
	Remark    string `json:"remark"`
}

type balanceResponse struct {
	Year     int                              `json:"year"`
	Balances map[leave.Category]leave.Balance `json:"balances"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload submitRequest
	var evidence *shared.Upload
	if shared.IsMultipart(r) {
		if err := shared.ParseMultipart(r, maxLeaveMultipartBytes); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid multipart payload", reqID)
			return
		}
		payload = submitRequest{
			Category:  r.FormValue("category"),
			StartDate: r.FormValue("startDate"),
			EndDate:   r.FormValue("endDate"),
			Remark:    r.FormValue("remark"),
		}
		upload, err := shared.FormFile(r, "evidence")
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid evidence file", reqID)
			return
		}
		evidence = upload
		defer evidence.Close()
	} else if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}

	v := shared.NewValidator()
	v.Required("startDate", payload.StartDate, "is required")
	var start, end time.Time
	if strings.TrimSpace(payload.StartDate) != "" {
		start, _ = v.Date("startDate", payload.StartDate)
	}
	if strings.TrimSpace(payload.EndDate) != "" {
		end, _ = v.Date("endDate", payload.EndDate)
	}
	v.DateOrder("startDate", start, "endDate", end)
	if v.Reject(w, reqID) {
		return
	}

	in := leave.SubmitInput{
		Category:  payload.Category,
		StartDate: start,
		EndDate:   end,
		Remark:    payload.Remark,
	}
	if evidence != nil {
		in.Evidence = &leave.Evidence{FileName: evidence.FileName, ContentType: evidence.ContentType, Body: evidence.Body}
	}
	created, err := h.Service.Submit(r.Context(), user.EmployeeID, in)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Created(w, created, reqID)
}

func (h *Handler) handleMine(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	list, err := h.Service.ListMine(r.Context(), user.EmployeeID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, list, reqID)
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	year := time.Now().Year()
	if raw := strings.TrimSpace(r.URL.Query().Get("year")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1900 || parsed > 9999 {
			shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "year", Reason: "must be a four digit year"}})
			return
		}
		year = parsed
	}
	balances, err := h.Service.Balance(r.Context(), user.EmployeeID, year)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, balanceResponse{Year: year, Balances: balances}, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()
	status := leave.Status(strings.ToLower(strings.TrimSpace(q.Get("status"))))
	category := leave.Category(strings.ToLower(strings.TrimSpace(q.Get("category"))))
	list, err := h.Service.List(r.Context(), status, category)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, list, reqID)
}

func (h *Handler) handleDecide(decision leave.Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.GetRequestID(r.Context())
		id, ok := shared.PathUUID(w, r, "requestID", reqID)
		if !ok {
			return
		}
		updated, err := h.Service.Decide(r.Context(), id, decision)
		if err != nil {
			api.FailError(w, err, reqID)
			return
		}
		api.Success(w, updated, reqID)
	}
}
