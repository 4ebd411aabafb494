package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"hrms/internal/platform/apperr"
	"hrms/internal/platform/storage"
)

const (
	EvidencePrefix = "leave-evidence"
	EvidenceURLTTL = time.Hour
)

type AuditRecorder interface {
	Record(ctx context.Context, action, entityType, entityID string, before, after any) error
}

type DecisionObserver interface {
	LeaveDecision(status string)
}

type Service struct {
	Store StoreAPI
	Files storage.FileStorage
	Audit AuditRecorder
	Obs   DecisionObserver
	now   func() time.Time
}

func NewService(store StoreAPI, files storage.FileStorage) *Service {
	return &Service{Store: store, Files: files, now: time.Now}
}

// Submit files a pending request for the employee. Evidence is uploaded
// before the row is written; if the insert then fails the object stays in
// storage.
func (s *Service) Submit(ctx context.Context, employeeID string, in SubmitInput) (LeaveRequest, error) {
	if employeeID == "" {
		return LeaveRequest{}, apperr.Authorization("no employee record linked to this account")
	}
	fields := map[string]string{}
	category := Category(strings.ToLower(strings.TrimSpace(in.Category)))
	if category == "" {
		category = CategoryAnnual
	}
	if !category.Valid() {
		fields["category"] = "must be one of annual, sick, unpaid, other"
	}
	if in.StartDate.IsZero() {
		fields["startDate"] = "is required"
	}
	end := in.EndDate
	if end.IsZero() {
		end = in.StartDate
	}
	days, err := CalculateDays(in.StartDate, end)
	if err != nil && !in.StartDate.IsZero() {
		fields["endDate"] = "must be on or after startDate"
	}
	if in.Evidence != nil && !allowedEvidence(in.Evidence.FileName) {
		fields["evidence"] = "must be an image, PDF or Word document"
	}
	if len(fields) > 0 {
		return LeaveRequest{}, apperr.Validation("leave request invalid", fields)
	}

	req := LeaveRequest{
		EmployeeID: employeeID,
		Category:   category,
		LeaveDate:  dateOnly(in.StartDate),
		Days:       days,
		Status:     StatusPending,
		Remark:     strings.TrimSpace(in.Remark),
	}
	if !in.EndDate.IsZero() {
		e := dateOnly(in.EndDate)
		req.EndDate = &e
	}

	if in.Evidence != nil {
		if s.Files == nil {
			return LeaveRequest{}, apperr.Remote("upload evidence", errors.New("file storage not configured"))
		}
		key := evidenceKey(employeeID, in.Evidence.FileName, s.now())
		stored, err := s.Files.Upload(ctx, in.Evidence.Body, key, in.Evidence.ContentType)
		if err != nil {
			return LeaveRequest{}, apperr.Remote("upload evidence", err)
		}
		req.EvidencePath = stored
	}

	created, err := s.Store.CreateRequest(ctx, req)
	if err != nil {
		return LeaveRequest{}, apperr.Remote("create leave request", err)
	}
	s.audit(ctx, "leave.request.create", created.ID, nil, created)
	s.signEvidence(ctx, &created)
	return created, nil
}

var evidenceExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".heic": true,
	".pdf": true, ".doc": true, ".docx": true,
}

// allowedEvidence accepts medical certificates and similar supporting files
// by extension. The extension decides how /files serves the object, so
// anything a browser would execute is refused.
func allowedEvidence(fileName string) bool {
	return evidenceExtensions[strings.ToLower(path.Ext(fileName))]
}

func evidenceKey(employeeID, fileName string, now time.Time) string {
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("%s/%s_%d%s", EvidencePrefix, employeeID, now.UnixMilli(), ext)
}

func (s *Service) ListMine(ctx context.Context, employeeID string) ([]LeaveRequest, error) {
	if employeeID == "" {
		return []LeaveRequest{}, nil
	}
	out, err := s.Store.ListForEmployee(ctx, employeeID)
	if err != nil {
		return nil, apperr.Remote("list leave requests", err)
	}
	s.signAll(ctx, out)
	return out, nil
}

// Balance computes the employee's balances for year; zero means the current
// year.
func (s *Service) Balance(ctx context.Context, employeeID string, year int) (map[Category]Balance, error) {
	if year == 0 {
		year = s.now().Year()
	}
	if employeeID == "" {
		return ComputeBalances(nil, year), nil
	}
	requests, err := s.Store.ListForEmployee(ctx, employeeID)
	if err != nil {
		return nil, apperr.Remote("list leave requests", err)
	}
	return ComputeBalances(requests, year), nil
}

func (s *Service) List(ctx context.Context, status Status, category Category) ([]LeaveRequest, error) {
	if status != "" && !status.Valid() {
		return nil, apperr.Validation("invalid filter", map[string]string{"status": "must be pending, approved or rejected"})
	}
	if category != "" && !category.Valid() {
		return nil, apperr.Validation("invalid filter", map[string]string{"category": "must be one of annual, sick, unpaid, other"})
	}
	out, err := s.Store.List(ctx, status, category)
	if err != nil {
		return nil, apperr.Remote("list leave requests", err)
	}
	s.signAll(ctx, out)
	return out, nil
}

// Decide approves or rejects a pending request. Decisions are final.
func (s *Service) Decide(ctx context.Context, id string, decision Status) (LeaveRequest, error) {
	if decision != StatusApproved && decision != StatusRejected {
		return LeaveRequest{}, apperr.Validation("invalid decision", map[string]string{"status": "must be approved or rejected"})
	}
	req, err := s.Store.Get(ctx, id)
	if errors.Is(err, ErrRequestNotFound) {
		return LeaveRequest{}, apperr.NotFound("leave request")
	}
	if err != nil {
		return LeaveRequest{}, apperr.Remote("load leave request", err)
	}
	if req.Status != StatusPending {
		return LeaveRequest{}, apperr.InvalidState("leave request already %s", req.Status)
	}

	ok, err := s.Store.UpdateStatus(ctx, id, StatusPending, decision)
	if err != nil {
		return LeaveRequest{}, apperr.Remote("update leave request", err)
	}
	if !ok {
		return LeaveRequest{}, apperr.InvalidState("leave request already decided")
	}

	before := req
	req.Status = decision
	decidedAt := s.now()
	req.DecidedAt = &decidedAt
	if s.Obs != nil {
		s.Obs.LeaveDecision(string(decision))
	}
	s.audit(ctx, "leave.request."+string(decision), id, before, req)
	s.signEvidence(ctx, &req)
	return req, nil
}

func (s *Service) signAll(ctx context.Context, reqs []LeaveRequest) {
	for i := range reqs {
		s.signEvidence(ctx, &reqs[i])
	}
}

func (s *Service) signEvidence(ctx context.Context, req *LeaveRequest) {
	if req.EvidencePath == "" || s.Files == nil {
		return
	}
	url, err := s.Files.GetURL(ctx, req.EvidencePath, EvidenceURLTTL)
	if err != nil {
		slog.Warn("sign evidence url failed", "err", err, "path", req.EvidencePath)
		return
	}
	req.EvidenceURL = url
}

func (s *Service) audit(ctx context.Context, action, entityID string, before, after any) {
	if s.Audit == nil {
		return
	}
	if err := s.Audit.Record(ctx, action, "leaves", entityID, before, after); err != nil {
		slog.Warn("audit "+action+" failed", "err", err)
	}
}
