package employee

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"hrms/internal/platform/apperr"
)

type AuditRecorder interface {
	Record(ctx context.Context, action, entityType, entityID string, before, after any) error
}

type Service struct {
	Store StoreAPI
	Audit AuditRecorder
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

func (s *Service) List(ctx context.Context) ([]Employee, error) {
	out, err := s.Store.List(ctx)
	if err != nil {
		return nil, apperr.Remote("list employees", err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (Employee, error) {
	emp, err := s.Store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Employee{}, apperr.NotFound("employee")
	}
	if err != nil {
		return Employee{}, apperr.Remote("load employee", err)
	}
	return emp, nil
}

func (s *Service) ForUser(ctx context.Context, userID string) (Employee, error) {
	emp, err := s.Store.GetByUserID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return Employee{}, apperr.NotFound("employee")
	}
	if err != nil {
		return Employee{}, apperr.Remote("load employee", err)
	}
	return emp, nil
}

func (s *Service) Create(ctx context.Context, in Input) (Employee, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		return Employee{}, err
	}
	emp, err := s.Store.Create(ctx, in)
	if errors.Is(err, ErrUserLinked) {
		return Employee{}, apperr.Validation("employee invalid", map[string]string{"userId": "already linked to an employee"})
	}
	if err != nil {
		return Employee{}, apperr.Remote("create employee", err)
	}
	s.audit(ctx, "employee.create", emp.ID, nil, emp)
	return emp, nil
}

// CreateForUser links a new crew record to a freshly created login.
func (s *Service) CreateForUser(ctx context.Context, userID, name, nric string) (Employee, error) {
	return s.Create(ctx, Input{UserID: userID, Name: name, NRIC: nric, IsActive: true})
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Employee, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		return Employee{}, err
	}
	before, err := s.Get(ctx, id)
	if err != nil {
		return Employee{}, err
	}
	in.UserID = before.UserID
	emp, err := s.Store.Update(ctx, id, in)
	if errors.Is(err, ErrNotFound) {
		return Employee{}, apperr.NotFound("employee")
	}
	if err != nil {
		return Employee{}, apperr.Remote("update employee", err)
	}
	s.audit(ctx, "employee.update", id, before, emp)
	return emp, nil
}

func normalize(in Input) Input {
	in.Name = strings.TrimSpace(in.Name)
	in.NRIC = strings.ToUpper(strings.TrimSpace(in.NRIC))
	in.BankAccountNo = strings.TrimSpace(in.BankAccountNo)
	in.PayMode = strings.ToUpper(strings.TrimSpace(in.PayMode))
	if in.PayMode == "" {
		in.PayMode = PayModeGIRO
	}
	return in
}

func validate(in Input) error {
	fields := map[string]string{}
	if in.Name == "" {
		fields["name"] = "is required"
	}
	if in.NRIC == "" {
		fields["nric"] = "is required"
	}
	if in.HireDate != nil && in.TerminationDate != nil && in.TerminationDate.Before(*in.HireDate) {
		fields["terminationDate"] = "must be on or after hireDate"
	}
	if len(fields) > 0 {
		return apperr.Validation("employee invalid", fields)
	}
	return nil
}

func (s *Service) audit(ctx context.Context, action, entityID string, before, after any) {
	if s.Audit == nil {
		return
	}
	redact := func(v any) any {
		emp, ok := v.(Employee)
		if !ok {
			return v
		}
		emp.NRIC = ""
		emp.BankAccountNo = ""
		return emp
	}
	if before != nil {
		before = redact(before)
	}
	if err := s.Audit.Record(ctx, action, "crews", entityID, before, redact(after)); err != nil {
		slog.Warn("audit "+action+" failed", "err", err)
	}
}
