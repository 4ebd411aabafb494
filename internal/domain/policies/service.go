package policies

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"hrms/internal/platform/apperr"
	"hrms/internal/platform/jobs"
	"hrms/internal/platform/storage"
)

const (
	FilePrefix = "policies"
	FileURLTTL = time.Hour
)

type Enqueuer interface {
	Enqueue(jobType string, run jobs.RunFunc)
}

type AuditRecorder interface {
	Record(ctx context.Context, action, entityType, entityID string, before, after any) error
}

type Service struct {
	Store StoreAPI
	Files storage.FileStorage
	// Cleanup removes replaced objects in the background; without it they
	// are removed inline.
	Cleanup Enqueuer
	Audit   AuditRecorder
	now     func() time.Time
}

func NewService(store StoreAPI, files storage.FileStorage) *Service {
	return &Service{Store: store, Files: files, now: time.Now}
}

// List returns every policy with a read URL valid for one hour.
func (s *Service) List(ctx context.Context) ([]Policy, error) {
	out, err := s.Store.List(ctx)
	if err != nil {
		return nil, apperr.Remote("list policies", err)
	}
	for i := range out {
		s.sign(ctx, &out[i])
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, title, description, createdBy string, file *File) (Policy, error) {
	title, description = strings.TrimSpace(title), strings.TrimSpace(description)
	fields := map[string]string{}
	if title == "" {
		fields["title"] = "is required"
	}
	if file == nil {
		fields["file"] = "a PDF file is required"
	} else if !isPDF(file) {
		fields["file"] = "must be a PDF"
	}
	if len(fields) > 0 {
		return Policy{}, apperr.Validation("policy invalid", fields)
	}

	key, err := s.upload(ctx, file)
	if err != nil {
		return Policy{}, err
	}
	p, err := s.Store.Create(ctx, Policy{Title: title, Description: description, FilePath: key, CreatedBy: createdBy})
	if err != nil {
		s.remove(key)
		return Policy{}, apperr.Remote("create policy", err)
	}
	s.audit(ctx, "policy.create", p.ID, nil, p)
	s.sign(ctx, &p)
	return p, nil
}

// Update edits the policy text and, when file is set, swaps the document.
// The previous object is removed only after the row points at the new one.
func (s *Service) Update(ctx context.Context, id, title, description string, file *File) (Policy, error) {
	title, description = strings.TrimSpace(title), strings.TrimSpace(description)
	fields := map[string]string{}
	if title == "" {
		fields["title"] = "is required"
	}
	if file != nil && !isPDF(file) {
		fields["file"] = "must be a PDF"
	}
	if len(fields) > 0 {
		return Policy{}, apperr.Validation("policy invalid", fields)
	}

	current, err := s.Store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Policy{}, apperr.NotFound("policy")
	}
	if err != nil {
		return Policy{}, apperr.Remote("load policy", err)
	}

	next := current
	next.Title, next.Description = title, description
	if file != nil {
		if next.FilePath, err = s.upload(ctx, file); err != nil {
			return Policy{}, err
		}
	}
	updated, err := s.Store.Update(ctx, next)
	if err != nil {
		if file != nil {
			s.remove(next.FilePath)
		}
		if errors.Is(err, ErrNotFound) {
			return Policy{}, apperr.NotFound("policy")
		}
		return Policy{}, apperr.Remote("update policy", err)
	}
	if file != nil && current.FilePath != "" {
		s.remove(current.FilePath)
	}
	s.audit(ctx, "policy.update", id, current, updated)
	s.sign(ctx, &updated)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	current, err := s.Store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("policy")
	}
	if err != nil {
		return apperr.Remote("load policy", err)
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("policy")
		}
		return apperr.Remote("delete policy", err)
	}
	if current.FilePath != "" {
		s.remove(current.FilePath)
	}
	s.audit(ctx, "policy.delete", id, current, nil)
	return nil
}

func (s *Service) upload(ctx context.Context, file *File) (string, error) {
	if s.Files == nil {
		return "", apperr.Remote("upload policy", errors.New("file storage not configured"))
	}
	key := fmt.Sprintf("%s/%d-%s.pdf", FilePrefix, s.now().UnixMilli(), uuid.NewString()[:8])
	stored, err := s.Files.Upload(ctx, file.Body, key, "application/pdf")
	if err != nil {
		return "", apperr.Remote("upload policy", err)
	}
	return stored, nil
}

func (s *Service) remove(key string) {
	if s.Files == nil {
		return
	}
	run := func(ctx context.Context) (any, error) {
		return map[string]any{"path": key}, s.Files.Delete(ctx, key)
	}
	if s.Cleanup != nil {
		s.Cleanup.Enqueue(jobs.JobStorageCleanup, run)
		return
	}
	if _, err := run(context.Background()); err != nil {
		slog.Warn("policy file cleanup failed", "err", err, "path", key)
	}
}

func (s *Service) sign(ctx context.Context, p *Policy) {
	if p.FilePath == "" || s.Files == nil {
		return
	}
	url, err := s.Files.GetURL(ctx, p.FilePath, FileURLTTL)
	if err != nil {
		slog.Warn("sign policy url failed", "err", err, "path", p.FilePath)
		return
	}
	p.FileURL = url
}

func isPDF(file *File) bool {
	if strings.EqualFold(path.Ext(file.FileName), ".pdf") {
		return true
	}
	return strings.HasPrefix(strings.ToLower(file.ContentType), "application/pdf")
}

func (s *Service) audit(ctx context.Context, action, entityID string, before, after any) {
	if s.Audit == nil {
		return
	}
	if err := s.Audit.Record(ctx, action, "policies", entityID, before, after); err != nil {
		slog.Warn("audit "+action+" failed", "err", err)
	}
}
