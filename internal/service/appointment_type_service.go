package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/agendoc/agendoc/internal/domain/appointmenttype"
	"github.com/agendoc/agendoc/internal/domain/calendar"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AppointmentTypeService struct {
	repo      appointmenttype.Repository
	calendars calendar.Repository
	auditSvc  *AuditService
	log       *zap.Logger
}

func NewAppointmentTypeService(
	repo appointmenttype.Repository,
	calendars calendar.Repository,
	auditSvc *AuditService,
	log *zap.Logger,
) *AppointmentTypeService {
	return &AppointmentTypeService{repo: repo, calendars: calendars, auditSvc: auditSvc, log: log}
}

func (s *AppointmentTypeService) Create(ctx context.Context, cmd *appointmenttype.CreateCommand, callerID uuid.UUID, callerRole string, ip string) (*appointmenttype.AppointmentType, error) {
	if cmd.DurationMinutes <= 0 || cmd.BufferBeforeMinutes < 0 || cmd.BufferAfterMinutes < 0 {
		return nil, appointmenttype.ErrInvalidDuration
	}

	cal, err := s.calendars.GetByID(ctx, cmd.CalendarID)
	if err != nil {
		return nil, err
	}
	if cal.DoctorID == nil || *cal.DoctorID != cmd.DoctorID {
		return nil, calendar.ErrCalendarMismatch
	}
	if callerRole == "doctor" && cmd.DoctorID != callerID {
		return nil, ErrForbidden
	}

	code, err := s.uniqueCode(ctx, cmd.Label, cmd.DoctorID, cmd.CalendarID, nil)
	if err != nil {
		return nil, err
	}

	t := &appointmenttype.AppointmentType{
		DoctorID:            cmd.DoctorID,
		CalendarID:          cmd.CalendarID,
		SpecialtyID:         cmd.SpecialtyID,
		Code:                code,
		Label:               strings.TrimSpace(cmd.Label),
		DurationMinutes:     cmd.DurationMinutes,
		BufferBeforeMinutes: cmd.BufferBeforeMinutes,
		BufferAfterMinutes:  cmd.BufferAfterMinutes,
		IsActive:            cmd.IsActive,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		s.log.Error("failed to create appointment type", zap.Error(err))
		return nil, fmt.Errorf("creating appointment type: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "create", ResourceType: "appointment_type", ResourceID: t.ID.String(), IPAddress: ip,
	})
	return t, nil
}

func (s *AppointmentTypeService) Update(ctx context.Context, id uuid.UUID, cmd *appointmenttype.UpdateCommand, callerID uuid.UUID, callerRole string, ip string) (*appointmenttype.AppointmentType, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if callerRole == "doctor" && t.DoctorID != callerID {
		return nil, ErrForbidden
	}

	if cmd.DurationMinutes != nil && *cmd.DurationMinutes <= 0 {
		return nil, appointmenttype.ErrInvalidDuration
	}
	if (cmd.BufferBeforeMinutes != nil && *cmd.BufferBeforeMinutes < 0) ||
		(cmd.BufferAfterMinutes != nil && *cmd.BufferAfterMinutes < 0) {
		return nil, appointmenttype.ErrInvalidDuration
	}

	// Relabeling regenerates the slug code; the new code is persisted
	// with the rest of the update.
	if cmd.Label != nil && strings.TrimSpace(*cmd.Label) != t.Label {
		code, err := s.uniqueCode(ctx, *cmd.Label, t.DoctorID, t.CalendarID, &t.ID)
		if err != nil {
			return nil, err
		}
		cmd.Code = &code
	}

	updated, err := s.repo.Update(ctx, id, cmd)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "update", ResourceType: "appointment_type", ResourceID: id.String(), IPAddress: ip,
	})
	return updated, nil
}

func (s *AppointmentTypeService) Delete(ctx context.Context, id uuid.UUID, callerID uuid.UUID, callerRole string, ip string) error {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if callerRole == "doctor" && t.DoctorID != callerID {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "delete", ResourceType: "appointment_type", ResourceID: id.String(), IPAddress: ip,
	})
	return nil
}

func (s *AppointmentTypeService) ListActive(ctx context.Context, calendarID uuid.UUID) ([]*appointmenttype.AppointmentType, error) {
	return s.repo.ListActiveByCalendar(ctx, calendarID)
}

// uniqueCode slugs the label and disambiguates collisions within
// (doctor, calendar) with -2, -3, … suffixes.
func (s *AppointmentTypeService) uniqueCode(ctx context.Context, label string, doctorID, calendarID uuid.UUID, ignoreID *uuid.UUID) (string, error) {
	base := Slugify(label)
	if base == "" {
		base = "type"
	}

	code := base
	for suffix := 2; ; suffix++ {
		exists, err := s.repo.CodeExists(ctx, doctorID, calendarID, code, ignoreID)
		if err != nil {
			return "", fmt.Errorf("checking code uniqueness: %w", err)
		}
		if !exists {
			return code, nil
		}
		code = base + "-" + strconv.Itoa(suffix)
	}
}

// Slugify lowercases, strips accents common in French labels, and collapses
// everything else to single hyphens.
func Slugify(label string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		if folded, ok := accentFold[r]; ok {
			r = folded
		}
		switch {
		case unicode.IsLower(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

var accentFold = map[rune]rune{
	'à': 'a', 'â': 'a', 'ä': 'a',
	'ç': 'c',
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e',
	'î': 'i', 'ï': 'i',
	'ô': 'o', 'ö': 'o',
	'ù': 'u', 'û': 'u', 'ü': 'u',
}
