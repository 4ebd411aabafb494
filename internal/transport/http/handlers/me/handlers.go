package mehandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/employee"
	"hrms/internal/domain/period"
	"hrms/internal/platform/apperr"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type EmployeeReader interface {
	ForUser(ctx context.Context, userID string) (employee.Employee, error)
}

// Handler serves the caller's own settings: the selected payroll period and
// the linked crew record.
type Handler struct {
	Periods   *period.Resolver
	Employees EmployeeReader
}

func NewHandler(periods *period.Resolver, employees EmployeeReader) *Handler {
	return &Handler{Periods: periods, Employees: employees}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/me", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/period", h.handleGetPeriod)
		r.Put("/period", h.handleSetPeriod)
		r.Get("/employee", h.handleEmployee)
	})
}

type periodPayload struct {
	Period string `json:"period" validate:"required"`
}

type periodResponse struct {
	Period period.Period `json:"period"`
	Label  string        `json:"label"`
}

func (h *Handler) handleGetPeriod(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	p, err := h.Periods.Selected(r.Context(), user.UserID)
	if err != nil {
		api.FailError(w, apperr.Remote("load selected period", err), reqID)
		return
	}
	api.Success(w, periodResponse{Period: p, Label: p.Label()}, reqID)
}

func (h *Handler) handleSetPeriod(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	var payload periodPayload
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	p, err := period.Parse(payload.Period)
	if err != nil {
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "period", Reason: "must be in YYYY-MM format"}})
		return
	}
	if err := h.Periods.Select(r.Context(), user.UserID, p); err != nil {
		api.FailError(w, apperr.Remote("store selected period", err), reqID)
		return
	}
	api.Success(w, periodResponse{Period: p, Label: p.Label()}, reqID)
}

func (h *Handler) handleEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	emp, err := h.Employees.ForUser(r.Context(), user.UserID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	employee.FilterSensitiveFields(&emp, user)
	api.Success(w, emp, reqID)
}
