package service

import (
	"context"
	"fmt"
	"time"

	"github.com/agendoc/agendoc/internal/domain/samsevent"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SamsEventService manages the administrative SAMS roster. Events carry no
// doctor or calendar linkage and never touch slot computation.
type SamsEventService struct {
	repo     samsevent.Repository
	auditSvc *AuditService
	log      *zap.Logger
}

func NewSamsEventService(repo samsevent.Repository, auditSvc *AuditService, log *zap.Logger) *SamsEventService {
	return &SamsEventService{repo: repo, auditSvc: auditSvc, log: log}
}

type CreateSamsEventCommand struct {
	Title       string
	StartAt     time.Time
	EndAt       time.Time
	Location    string
	Description string
	Source      string
}

func (s *SamsEventService) Create(ctx context.Context, cmd *CreateSamsEventCommand, callerID uuid.UUID, callerRole string, ip string) (*samsevent.SamsEvent, error) {
	if cmd.Title == "" {
		return nil, newFieldError("title", "must not be empty")
	}
	if !cmd.StartAt.Before(cmd.EndAt) {
		return nil, newFieldError("endAt", "must be after startAt")
	}

	e := &samsevent.SamsEvent{
		Title:       cmd.Title,
		StartAt:     cmd.StartAt.UTC(),
		EndAt:       cmd.EndAt.UTC(),
		Location:    cmd.Location,
		Description: cmd.Description,
		Source:      cmd.Source,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("creating sams event: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "create", ResourceType: "sams_event", ResourceID: e.ID.String(), IPAddress: ip,
	})
	return e, nil
}

func (s *SamsEventService) Get(ctx context.Context, id uuid.UUID) (*samsevent.SamsEvent, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *SamsEventService) ListInRange(ctx context.Context, from, to time.Time) ([]*samsevent.SamsEvent, error) {
	return s.repo.ListInRange(ctx, from, to)
}

func (s *SamsEventService) Delete(ctx context.Context, id uuid.UUID, callerID uuid.UUID, callerRole string, ip string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "delete", ResourceType: "sams_event", ResourceID: id.String(), IPAddress: ip,
	})
	return nil
}
