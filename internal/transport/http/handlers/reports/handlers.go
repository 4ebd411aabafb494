package reportshandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/period"
	"hrms/internal/domain/reports"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type ReportService interface {
	AdminStats(ctx context.Context) (reports.AdminStats, error)
	HRDashboard(ctx context.Context, p period.Period) (reports.HRDashboard, error)
	EmployeeDashboard(ctx context.Context, employeeID string) (reports.EmployeeDashboard, error)
}

type Handler struct {
	Service ReportService
	Periods *period.Resolver
	Perms   middleware.PermissionChecker
}

func NewHandler(service ReportService, periods *period.Resolver, perms middleware.PermissionChecker) *Handler {
	return &Handler{Service: service, Periods: periods, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermAdminStats, h.Perms)).Get("/admin/stats", h.handleAdminStats)
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/dashboard/hr", h.handleHRDashboard)
		r.With(middleware.RequirePermission(auth.PermPayslipsRead, h.Perms), middleware.RequireEmployee).Get("/dashboard/employee", h.handleEmployeeDashboard)
	})
}

func (h *Handler) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	stats, err := h.Service.AdminStats(r.Context())
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, stats, reqID)
}

func (h *Handler) handleHRDashboard(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	p, err := shared.ResolvePeriod(r, h.Periods, user.UserID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	dash, err := h.Service.HRDashboard(r.Context(), p)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, dash, reqID)
}

func (h *Handler) handleEmployeeDashboard(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	dash, err := h.Service.EmployeeDashboard(r.Context(), user.EmployeeID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, dash, reqID)
}
