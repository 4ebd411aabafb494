package authhandler

import (
	"context"
	"errors"
	"log/slog"
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

type AuthService interface {
	SignUp(ctx context.Context, in auth.SignUpInput) (auth.User, error)
	SignIn(ctx context.Context, email, password string) (auth.SignInResult, error)
	SignOut(ctx context.Context, user auth.UserContext) error
	Session(ctx context.Context, user auth.UserContext) (auth.SessionInfo, error)
}

type EmployeeCreator interface {
	CreateForUser(ctx context.Context, userID, name, nric string) (employee.Employee, error)
}

type SalarySetter interface {
	SetSalary(ctx context.Context, employeeID string, amount decimal.Decimal, date time.Time) (payroll.CompensationChange, error)
}

type Handler struct {
	Auth      AuthService
	Employees EmployeeCreator
	Salaries  SalarySetter
	Perms     middleware.PermissionChecker
	// LoginLimit throttles credential attempts when set.
	LoginLimit func(http.Handler) http.Handler
}

func NewHandler(authSvc AuthService, employees EmployeeCreator, salaries SalarySetter, perms middleware.PermissionChecker) *Handler {
	return &Handler{Auth: authSvc, Employees: employees, Salaries: salaries, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		login := r.With()
		if h.LoginLimit != nil {
			login = r.With(h.LoginLimit)
		}
		login.Post("/login", h.handleLogin)
		r.With(middleware.RequireAuth).Post("/logout", h.handleLogout)
		r.With(middleware.RequireAuth).Get("/session", h.handleSession)
		r.With(middleware.RequirePermission(auth.PermUsersCreate, h.Perms)).Post("/signup", h.handleSignUp)
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type signUpRequest struct {
	Email         string         `json:"email" validate:"required,email"`
	Password      string         `json:"password" validate:"required,min=8"`
	Role          string         `json:"role" validate:"required,oneof=admin hr employee"`
	Name          string         `json:"name"`
	NRIC          string         `json:"nric"`
	BasicSalary   payroll.Amount `json:"basicSalary"`
	EffectiveFrom string         `json:"effectiveFrom"`
}

type signUpResponse struct {
	User         auth.User                   `json:"user"`
	Role         auth.Role                   `json:"role"`
	Employee     *employee.Employee          `json:"employee,omitempty"`
	Compensation *payroll.CompensationRecord `json:"compensation,omitempty"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}

	result, err := h.Auth.SignIn(r.Context(), payload.Email, payload.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, result, reqID)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	if err := h.Auth.SignOut(r.Context(), user); err != nil {
		slog.Warn("logout session revoke failed", "userId", user.UserID, "err", err)
	}
	api.Success(w, map[string]string{"status": "logged_out"}, reqID)
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	info, err := h.Auth.Session(r.Context(), user)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, info, reqID)
}

// handleSignUp creates the login and, for employees, the linked crew record
// and its first compensation record. The steps are not atomic: a failure
// after the account exists leaves the account in place.
func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload signUpRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	role, _ := auth.ParseRole(payload.Role)

	v := shared.NewValidator()
	var effective time.Time
	if role == auth.RoleEmployee {
		v.Required("name", payload.Name, "is required for employees")
		v.Required("nric", payload.NRIC, "is required for employees")
		if payload.BasicSalary.IsNegative() {
			v.Add("basicSalary", "must not be negative")
		}
		if strings.TrimSpace(payload.EffectiveFrom) != "" {
			effective, _ = v.Date("effectiveFrom", payload.EffectiveFrom)
		}
	}
	if v.Reject(w, reqID) {
		return
	}

	user, err := h.Auth.SignUp(r.Context(), auth.SignUpInput{
		Email:    payload.Email,
		Password: payload.Password,
		Role:     role,
		Name:     payload.Name,
	})
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	resp := signUpResponse{User: user, Role: role}
	if role != auth.RoleEmployee {
		api.Created(w, resp, reqID)
		return
	}

	emp, err := h.Employees.CreateForUser(r.Context(), user.ID, payload.Name, payload.NRIC)
	if err != nil {
		slog.Warn("signup created account without employee record", "userId", user.ID, "err", err)
		api.FailError(w, err, reqID)
		return
	}
	resp.Employee = &emp

	if payload.BasicSalary.IsPositive() {
		change, err := h.Salaries.SetSalary(r.Context(), emp.ID, payload.BasicSalary.Decimal, effective)
		if err != nil {
			slog.Warn("signup created employee without compensation", "employeeId", emp.ID, "err", err)
			api.FailError(w, err, reqID)
			return
		}
		resp.Compensation = &change.Record
	}
	api.Created(w, resp, reqID)
}
