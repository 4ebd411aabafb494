package notices

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

func (s *Service) List(ctx context.Context) ([]Notice, error) {
	out, err := s.Store.List(ctx)
	if err != nil {
		return nil, apperr.Remote("list notices", err)
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, title, content, createdBy string) (Notice, error) {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if title == "" {
		return Notice{}, apperr.Validation("notice invalid", map[string]string{"title": "is required"})
	}
	n, err := s.Store.Create(ctx, title, content, createdBy)
	if err != nil {
		return Notice{}, apperr.Remote("create notice", err)
	}
	s.audit(ctx, "notice.create", n.ID, nil, n)
	return n, nil
}

func (s *Service) Update(ctx context.Context, id, title, content string) (Notice, error) {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if title == "" {
		return Notice{}, apperr.Validation("notice invalid", map[string]string{"title": "is required"})
	}
	n, err := s.Store.Update(ctx, id, title, content)
	if errors.Is(err, ErrNotFound) {
		return Notice{}, apperr.NotFound("notice")
	}
	if err != nil {
		return Notice{}, apperr.Remote("update notice", err)
	}
	s.audit(ctx, "notice.update", id, nil, n)
	return n, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.Store.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("notice")
	}
	if err != nil {
		return apperr.Remote("delete notice", err)
	}
	s.audit(ctx, "notice.delete", id, nil, nil)
	return nil
}

func (s *Service) audit(ctx context.Context, action, entityID string, before, after any) {
	if s.Audit == nil {
		return
	}
	if err := s.Audit.Record(ctx, action, "notices", entityID, before, after); err != nil {
		slog.Warn("audit "+action+" failed", "err", err)
	}
}
