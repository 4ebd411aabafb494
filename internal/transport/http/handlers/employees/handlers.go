package employeeshandler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/employee"
	"hrms/internal/domain/payroll"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type EmployeeService interface {
	List(ctx context.Context) ([]employee.Employee, error)
	Get(ctx context.Context, id string) (employee.Employee, error)
	Create(ctx context.Context, in employee.Input) (employee.Employee, error)
	Update(ctx context.Context, id string, in employee.Input) (employee.Employee, error)
}

type CompensationService interface {
	SetSalary(ctx context.Context, employeeID string, amount decimal.Decimal, date time.Time) (payroll.CompensationChange, error)
	CompensationHistory(ctx context.Context, employeeID string) ([]payroll.CompensationRecord, error)
}

type Handler struct {
	Employees    EmployeeService
	Compensation CompensationService
	Perms        middleware.PermissionChecker
}

func NewHandler(employees EmployeeService, compensation CompensationService, perms middleware.PermissionChecker) *Handler {
	return &Handler{Employees: employees, Compensation: compensation, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Put("/{employeeID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermPayrollWrite, h.Perms)).Put("/{employeeID}/salary", h.handleSetSalary)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/{employeeID}/compensation", h.handleCompensation)
	})
}

type employeeRequest struct {
	UserID          string `json:"userId" validate:"omitempty,uuid"`
	Name            string `json:"name" validate:"required"`
	FullName        string `json:"fullName"`
	EmployeeNo      string `json:"employeeNo"`
	NRIC            string `json:"nric" validate:"required"`
	Gender          string `json:"gender"`
	Race            string `json:"race"`
	Nationality     string `json:"nationality"`
	DateOfBirth     string `json:"dateOfBirth"`
	PRStartDate     string `json:"prStartDate"`
	PRYear          *int   `json:"prYear"`
	HireDate        string `json:"hireDate"`
	TerminationDate string `json:"terminationDate"`
	JobTitle        string `json:"jobTitle"`
	IsActive        *bool  `json:"isActive"`
	PayMode         string `json:"payMode"`
	BankName        string `json:"bankName"`
	BankCode        string `json:"bankCode"`
	BranchCode      string `json:"branchCode"`
	BankAccountNo   string `json:"bankAccountNo"`
}

type salaryRequest struct {
	BasicSalary   payroll.Amount `json:"basicSalary"`
	EffectiveFrom string         `json:"effectiveFrom"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	list, err := h.Employees.List(r.Context())
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	for i := range list {
		employee.FilterSensitiveFields(&list[i], user)
	}
	api.Success(w, list, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id, ok := shared.PathUUID(w, r, "employeeID", reqID)
	if !ok {
		return
	}
	emp, err := h.Employees.Get(r.Context(), id)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	employee.FilterSensitiveFields(&emp, user)
	api.Success(w, emp, reqID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload employeeRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	in, ok := toInput(w, payload, reqID)
	if !ok {
		return
	}
	emp, err := h.Employees.Create(r.Context(), in)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Created(w, emp, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := shared.PathUUID(w, r, "employeeID", reqID)
	if !ok {
		return
	}
	var payload employeeRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	in, ok := toInput(w, payload, reqID)
	if !ok {
		return
	}
	emp, err := h.Employees.Update(r.Context(), id, in)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, emp, reqID)
}

func (h *Handler) handleSetSalary(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := shared.PathUUID(w, r, "employeeID", reqID)
	if !ok {
		return
	}
	var payload salaryRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	var effective time.Time
	if strings.TrimSpace(payload.EffectiveFrom) != "" {
		v := shared.NewValidator()
		effective, _ = v.Date("effectiveFrom", payload.EffectiveFrom)
		if v.Reject(w, reqID) {
			return
		}
	}
	change, err := h.Compensation.SetSalary(r.Context(), id, payload.BasicSalary.Decimal, effective)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, change, reqID)
}

func (h *Handler) handleCompensation(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := shared.PathUUID(w, r, "employeeID", reqID)
	if !ok {
		return
	}
	history, err := h.Compensation.CompensationHistory(r.Context(), id)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, history, reqID)
}

func toInput(w http.ResponseWriter, p employeeRequest, reqID string) (employee.Input, bool) {
	v := shared.NewValidator()
	in := employee.Input{
		UserID:        strings.TrimSpace(p.UserID),
		Name:          p.Name,
		FullName:      strings.TrimSpace(p.FullName),
		EmployeeNo:    strings.TrimSpace(p.EmployeeNo),
		NRIC:          p.NRIC,
		Gender:        strings.TrimSpace(p.Gender),
		Race:          strings.TrimSpace(p.Race),
		Nationality:   strings.TrimSpace(p.Nationality),
		PRYear:        p.PRYear,
		JobTitle:      strings.TrimSpace(p.JobTitle),
		IsActive:      p.IsActive == nil || *p.IsActive,
		PayMode:       p.PayMode,
		BankName:      strings.TrimSpace(p.BankName),
		BankCode:      strings.TrimSpace(p.BankCode),
		BranchCode:    strings.TrimSpace(p.BranchCode),
		BankAccountNo: p.BankAccountNo,
	}
	in.DateOfBirth = optionalDate(v, "dateOfBirth", p.DateOfBirth)
	in.PRStartDate = optionalDate(v, "prStartDate", p.PRStartDate)
	in.HireDate = optionalDate(v, "hireDate", p.HireDate)
	in.TerminationDate = optionalDate(v, "terminationDate", p.TerminationDate)
	if in.HireDate != nil && in.TerminationDate != nil {
		v.DateOrder("hireDate", *in.HireDate, "terminationDate", *in.TerminationDate)
	}
	if v.Reject(w, reqID) {
		return employee.Input{}, false
	}
	return in, true
}

func optionalDate(v *shared.Validator, field, raw string) *time.Time {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parsed, ok := v.Date(field, raw)
	if !ok {
		return nil
	}
	return &parsed
}
