package payrollhandler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/payroll"
	"hrms/internal/domain/period"
	"hrms/internal/domain/reports"
	"hrms/internal/platform/jobs"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type PayrollService interface {
	SalaryRows(ctx context.Context, p period.Period) ([]payroll.EditableRow, error)
	SaveSalaryRows(ctx context.Context, p period.Period, rows []payroll.EditableRow) (int, error)
	Run(ctx context.Context, p period.Period) (payroll.RunResult, error)
	Preview(ctx context.Context, employeeID string, p period.Period) (payroll.Preview, error)
	Payslips(ctx context.Context, p period.Period) ([]payroll.Payslip, error)
	EmployeePayslips(ctx context.Context, employeeID string) ([]payroll.Payslip, error)
	Payslip(ctx context.Context, callerEmployeeID, employeeID string, p period.Period) (payroll.PayslipDetail, error)
}

type JobRunLister interface {
	JobRuns(ctx context.Context, filter reports.JobRunFilter, limit, offset int) ([]reports.JobRun, int, error)
}

type Handler struct {
	Service PayrollService
	Runs    JobRunLister
	Periods *period.Resolver
	Perms   middleware.PermissionChecker
}

func NewHandler(service PayrollService, runs JobRunLister, periods *period.Resolver, perms middleware.PermissionChecker) *Handler {
	return &Handler{Service: service, Runs: runs, Periods: periods, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/salary-rows", h.handleSalaryRows)
		r.With(middleware.RequirePermission(auth.PermPayrollWrite, h.Perms)).Put("/salary-rows", h.handleSaveSalaryRows)
		r.With(middleware.RequirePermission(auth.PermPayrollRun, h.Perms)).Post("/run", h.handleRun)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/runs", h.handleRuns)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/preview/{employeeID}", h.handlePreview)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/payslips", h.handlePayslips)
	})
	r.Route("/payslips", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPayslipsRead, h.Perms), middleware.RequireEmployee).Get("/mine", h.handleMyPayslips)
		r.With(middleware.RequirePermission(auth.PermPayslipsRead, h.Perms)).Get("/{employeeID}/{period}", h.handlePayslip)
		r.With(middleware.RequirePermission(auth.PermPayslipsRead, h.Perms)).Get("/{employeeID}/{period}/pdf", h.handlePayslipPDF)
	})
}

type saveRowsRequest struct {
	Rows []payroll.EditableRow `json:"rows" validate:"required"`
}

type saveRowsResponse struct {
	Period period.Period `json:"period"`
	Saved  int           `json:"saved"`
}

func (h *Handler) resolvePeriod(w http.ResponseWriter, r *http.Request) (period.Period, bool) {
	user, _ := middleware.GetUser(r.Context())
	p, err := shared.ResolvePeriod(r, h.Periods, user.UserID)
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return period.Period{}, false
	}
	return p, true
}

func (h *Handler) handleSalaryRows(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	p, ok := h.resolvePeriod(w, r)
	if !ok {
		return
	}
	rows, err := h.Service.SalaryRows(r.Context(), p)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, rows, reqID)
}

func (h *Handler) handleSaveSalaryRows(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	p, ok := h.resolvePeriod(w, r)
	if !ok {
		return
	}
	var payload saveRowsRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	saved, err := h.Service.SaveSalaryRows(r.Context(), p, payload.Rows)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, saveRowsResponse{Period: p, Saved: saved}, reqID)
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	p, ok := h.resolvePeriod(w, r)
	if !ok {
		return
	}
	result, err := h.Service.Run(r.Context(), p)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, result, reqID)
}

func (h *Handler) handleRuns(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 20, 100)
	filter := reports.JobRunFilter{
		JobType: jobs.JobPayrollRun,
		Status:  strings.TrimSpace(r.URL.Query().Get("status")),
	}
	runs, total, err := h.Runs.JobRuns(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{
		"items":  runs,
		"total":  total,
		"limit":  page.Limit,
		"offset": page.Offset,
	}, reqID)
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := shared.PathUUID(w, r, "employeeID", reqID)
	if !ok {
		return
	}
	p, ok := h.resolvePeriod(w, r)
	if !ok {
		return
	}
	preview, err := h.Service.Preview(r.Context(), id, p)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, preview, reqID)
}

func (h *Handler) handlePayslips(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	p, ok := h.resolvePeriod(w, r)
	if !ok {
		return
	}
	list, err := h.Service.Payslips(r.Context(), p)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, list, reqID)
}

func (h *Handler) handleMyPayslips(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	list, err := h.Service.EmployeePayslips(r.Context(), user.EmployeeID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, list, reqID)
}

func (h *Handler) payslip(w http.ResponseWriter, r *http.Request) (payroll.PayslipDetail, bool) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id, ok := shared.PathUUID(w, r, "employeeID", reqID)
	if !ok {
		return payroll.PayslipDetail{}, false
	}
	p, err := period.Parse(chi.URLParam(r, "period"))
	if err != nil {
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "period", Reason: "must be in YYYY-MM format"}})
		return payroll.PayslipDetail{}, false
	}
	detail, err := h.Service.Payslip(r.Context(), user.EmployeeID, id, p)
	if err != nil {
		api.FailError(w, err, reqID)
		return payroll.PayslipDetail{}, false
	}
	return detail, true
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	detail, ok := h.payslip(w, r)
	if !ok {
		return
	}
	api.Success(w, detail, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePayslipPDF(w http.ResponseWriter, r *http.Request) {
	detail, ok := h.payslip(w, r)
	if !ok {
		return
	}
	body, err := payroll.RenderPayslipPDF(detail)
	if err != nil {
		slog.Warn("render payslip pdf failed", "employeeId", detail.EmployeeID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "pdf_failed", "failed to render payslip", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="payslip-%s-%s.pdf"`, detail.EmployeeNo, detail.Period.String()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.Warn("write payslip pdf failed", "err", err)
	}
}
