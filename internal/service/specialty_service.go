package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/agendoc/agendoc/internal/domain/specialty"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SpecialtyService manages the shared specialty referential. Specialties are
// admin-curated; doctors only consume them through calendar sync.
type SpecialtyService struct {
	repo     specialty.Repository
	auditSvc *AuditService
	log      *zap.Logger
}

func NewSpecialtyService(repo specialty.Repository, auditSvc *AuditService, log *zap.Logger) *SpecialtyService {
	return &SpecialtyService{repo: repo, auditSvc: auditSvc, log: log}
}

func (s *SpecialtyService) Create(ctx context.Context, label string, callerID uuid.UUID, callerRole string, ip string) (*specialty.Specialty, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, newFieldError("label", "label is required")
	}

	code, err := s.uniqueCode(ctx, label)
	if err != nil {
		return nil, err
	}

	sp := &specialty.Specialty{Code: code, Label: label}
	if err := s.repo.Create(ctx, sp); err != nil {
		s.log.Error("failed to create specialty", zap.Error(err))
		return nil, fmt.Errorf("creating specialty: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "create", ResourceType: "specialty", ResourceID: sp.ID.String(), IPAddress: ip,
	})
	return sp, nil
}

func (s *SpecialtyService) List(ctx context.Context) ([]*specialty.Specialty, error) {
	return s.repo.List(ctx)
}

// Delete removes a specialty that no calendar references; a referenced
// specialty must be detached from its doctors first.
func (s *SpecialtyService) Delete(ctx context.Context, id uuid.UUID, callerID uuid.UUID, callerRole string, ip string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	used, err := s.repo.InUse(ctx, id)
	if err != nil {
		return fmt.Errorf("checking specialty references: %w", err)
	}
	if used {
		return specialty.ErrSpecialtyInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "delete", ResourceType: "specialty", ResourceID: id.String(), IPAddress: ip,
	})
	return nil
}

func (s *SpecialtyService) uniqueCode(ctx context.Context, label string) (string, error) {
	base := Slugify(label)
	if base == "" {
		base = "specialty"
	}

	code := base
	for suffix := 2; ; suffix++ {
		exists, err := s.repo.CodeExists(ctx, code, nil)
		if err != nil {
			return "", fmt.Errorf("checking code uniqueness: %w", err)
		}
		if !exists {
			return code, nil
		}
		code = base + "-" + strconv.Itoa(suffix)
	}
}
