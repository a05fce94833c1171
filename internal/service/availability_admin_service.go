package service

import (
	"context"
	"fmt"
	"time"

	"github.com/agendoc/agendoc/internal/domain/availability"
	"github.com/agendoc/agendoc/internal/domain/calendar"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AvailabilityAdminService manages the inputs of slot computation: recurring
// weekly rules and date exceptions. Writes are doctor-scoped; admins may edit
// any calendar.
type AvailabilityAdminService struct {
	rules      availability.RuleRepository
	exceptions availability.ExceptionRepository
	calendars  calendar.Repository
	auditSvc   *AuditService
	log        *zap.Logger
}

func NewAvailabilityAdminService(
	rules availability.RuleRepository,
	exceptions availability.ExceptionRepository,
	calendars calendar.Repository,
	auditSvc *AuditService,
	log *zap.Logger,
) *AvailabilityAdminService {
	return &AvailabilityAdminService{
		rules:      rules,
		exceptions: exceptions,
		calendars:  calendars,
		auditSvc:   auditSvc,
		log:        log,
	}
}

type CreateRuleCommand struct {
	CalendarID uuid.UUID
	DayOfWeek  int
	StartTime  string
	EndTime    string
}

func (s *AvailabilityAdminService) CreateRule(ctx context.Context, cmd *CreateRuleCommand, callerID uuid.UUID, callerRole string, ip string) (*availability.Rule, error) {
	cal, err := s.ownedCalendar(ctx, cmd.CalendarID, callerID, callerRole)
	if err != nil {
		return nil, err
	}

	if cmd.DayOfWeek < 0 || cmd.DayOfWeek > 6 {
		return nil, availability.ErrInvalidDayOfWeek
	}
	if err := validateClockRange(cmd.StartTime, cmd.EndTime); err != nil {
		return nil, err
	}

	r := &availability.Rule{
		DoctorID:   *cal.DoctorID,
		CalendarID: cal.ID,
		DayOfWeek:  cmd.DayOfWeek,
		StartTime:  cmd.StartTime,
		EndTime:    cmd.EndTime,
	}
	if err := s.rules.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("creating availability rule: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "create", ResourceType: "availability_rule", ResourceID: r.ID.String(), IPAddress: ip,
	})
	return r, nil
}

func (s *AvailabilityAdminService) ListRules(ctx context.Context, calendarID uuid.UUID, callerID uuid.UUID, callerRole string) ([]*availability.Rule, error) {
	if _, err := s.ownedCalendar(ctx, calendarID, callerID, callerRole); err != nil {
		return nil, err
	}
	return s.rules.ListByCalendar(ctx, calendarID)
}

func (s *AvailabilityAdminService) DeleteRule(ctx context.Context, calendarID, ruleID uuid.UUID, callerID uuid.UUID, callerRole string, ip string) error {
	if _, err := s.ownedCalendar(ctx, calendarID, callerID, callerRole); err != nil {
		return err
	}
	if err := s.rules.Delete(ctx, ruleID); err != nil {
		return err
	}
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "delete", ResourceType: "availability_rule", ResourceID: ruleID.String(), IPAddress: ip,
	})
	return nil
}

type CreateExceptionCommand struct {
	CalendarID uuid.UUID
	Date       time.Time
	Kind       availability.ExceptionKind
	StartTime  string
	EndTime    string
	Reason     string
}

func (s *AvailabilityAdminService) CreateException(ctx context.Context, cmd *CreateExceptionCommand, callerID uuid.UUID, callerRole string, ip string) (*availability.Exception, error) {
	cal, err := s.ownedCalendar(ctx, cmd.CalendarID, callerID, callerRole)
	if err != nil {
		return nil, err
	}

	if !cmd.Kind.IsValid() {
		return nil, availability.ErrInvalidKind
	}
	if cmd.Kind == availability.ExceptionCustom {
		if err := validateClockRange(cmd.StartTime, cmd.EndTime); err != nil {
			return nil, err
		}
	}

	y, m, d := cmd.Date.Date()
	e := &availability.Exception{
		DoctorID:   *cal.DoctorID,
		CalendarID: cal.ID,
		Date:       time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Kind:       cmd.Kind,
		StartTime:  cmd.StartTime,
		EndTime:    cmd.EndTime,
		Reason:     cmd.Reason,
	}
	if err := s.exceptions.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("creating availability exception: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "create", ResourceType: "availability_exception", ResourceID: e.ID.String(), IPAddress: ip,
	})
	return e, nil
}

func (s *AvailabilityAdminService) ListExceptions(ctx context.Context, calendarID uuid.UUID, from, to time.Time, callerID uuid.UUID, callerRole string) ([]*availability.Exception, error) {
	if _, err := s.ownedCalendar(ctx, calendarID, callerID, callerRole); err != nil {
		return nil, err
	}
	return s.exceptions.ListByCalendarRange(ctx, calendarID, from, to)
}

func (s *AvailabilityAdminService) DeleteException(ctx context.Context, calendarID, exceptionID uuid.UUID, callerID uuid.UUID, callerRole string, ip string) error {
	if _, err := s.ownedCalendar(ctx, calendarID, callerID, callerRole); err != nil {
		return err
	}
	if err := s.exceptions.Delete(ctx, exceptionID); err != nil {
		return err
	}
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "delete", ResourceType: "availability_exception", ResourceID: exceptionID.String(), IPAddress: ip,
	})
	return nil
}

func (s *AvailabilityAdminService) ownedCalendar(ctx context.Context, calendarID, callerID uuid.UUID, callerRole string) (*calendar.Calendar, error) {
	cal, err := s.calendars.GetByID(ctx, calendarID)
	if err != nil {
		return nil, err
	}
	if cal.DoctorID == nil {
		return nil, calendar.ErrCalendarMismatch
	}
	if callerRole == "doctor" && *cal.DoctorID != callerID {
		return nil, ErrForbidden
	}
	return cal, nil
}

func validateClockRange(start, end string) error {
	st, err := parseClockMinutes(start)
	if err != nil {
		return err
	}
	en, err := parseClockMinutes(end)
	if err != nil {
		return err
	}
	if st >= en {
		return availability.ErrInvalidClockTime
	}
	return nil
}

func parseClockMinutes(v string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(v, "%2d:%2d", &h, &m); err != nil || len(v) != 5 || v[2] != ':' {
		return 0, availability.ErrInvalidClockTime
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, availability.ErrInvalidClockTime
	}
	return h*60 + m, nil
}
