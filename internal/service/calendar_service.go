package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agendoc/agendoc/internal/domain/calendar"
	"github.com/agendoc/agendoc/internal/domain/specialty"
	"github.com/agendoc/agendoc/internal/schedule"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CascadeDeleter removes a calendar together with every record that references
// it (appointments, appointment types, rules, exceptions, booking tokens),
// all-or-nothing within one transaction.
type CascadeDeleter interface {
	DeleteCalendarCascade(ctx context.Context, calendarID uuid.UUID) error
}

type CalendarService struct {
	repo        calendar.Repository
	specialties specialty.Repository
	cascade     CascadeDeleter
	engine      *schedule.Engine
	auditSvc    *AuditService
	log         *zap.Logger
	now         func() time.Time
}

func NewCalendarService(
	repo calendar.Repository,
	specialties specialty.Repository,
	cascade CascadeDeleter,
	engine *schedule.Engine,
	auditSvc *AuditService,
	log *zap.Logger,
) *CalendarService {
	return &CalendarService{
		repo:        repo,
		specialties: specialties,
		cascade:     cascade,
		engine:      engine,
		auditSvc:    auditSvc,
		log:         log,
		now:         time.Now,
	}
}

// WithClock replaces the time source; tests inject a fixed instant.
func (s *CalendarService) WithClock(now func() time.Time) *CalendarService {
	s.now = now
	return s
}

// ListMine returns every calendar owned by the doctor, both the doctor-wide
// calendar and the per-specialty ones.
func (s *CalendarService) ListMine(ctx context.Context, doctorID uuid.UUID) ([]*calendar.Calendar, error) {
	return s.repo.ListByDoctor(ctx, doctorID)
}

func (s *CalendarService) Get(ctx context.Context, id uuid.UUID) (*calendar.Calendar, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateBookingWindow changes a calendar's lead time and horizon, bounded by
// the dashboard limits (0–720 hours, 1–730 days).
func (s *CalendarService) UpdateBookingWindow(ctx context.Context, id uuid.UUID, cmd *calendar.UpdateBookingWindowCommand, callerID uuid.UUID, callerRole string, ip string) (*calendar.Calendar, error) {
	fields := map[string][]string{}
	if cmd.BookingMinHours < calendar.MinBookingMinHours || cmd.BookingMinHours > calendar.MaxBookingMinHours {
		fields["bookingMinHours"] = []string{fmt.Sprintf("must be between %d and %d hours", calendar.MinBookingMinHours, calendar.MaxBookingMinHours)}
	}
	if cmd.BookingMaxDays < calendar.MinBookingMaxDays || cmd.BookingMaxDays > calendar.MaxBookingMaxDays {
		fields["bookingMaxDays"] = []string{fmt.Sprintf("must be between %d and %d days", calendar.MinBookingMaxDays, calendar.MaxBookingMaxDays)}
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	cal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if callerRole == "doctor" && (cal.DoctorID == nil || *cal.DoctorID != callerID) {
		return nil, ErrForbidden
	}

	updated, err := s.repo.UpdateBookingWindow(ctx, id, cmd)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "update", ResourceType: "calendar", ResourceID: id.String(), IPAddress: ip,
		Changes: fmt.Sprintf(`{"bookingMinHours":%d,"bookingMaxDays":%d}`, cmd.BookingMinHours, cmd.BookingMaxDays),
	})

	return updated, nil
}

// BookingWindow derives the calendar's current booking window for UI messaging.
func (s *CalendarService) BookingWindow(cal *calendar.Calendar) schedule.BookingWindow {
	return schedule.NewBookingWindow(
		cal.EffectiveBookingMinHours(),
		cal.EffectiveBookingMaxDays(),
		s.now(),
		s.engine.Location(),
	)
}

// Delete cascade-deletes a calendar and everything referencing it.
func (s *CalendarService) Delete(ctx context.Context, id uuid.UUID, callerID uuid.UUID, callerRole string, ip string) error {
	cal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if callerRole == "doctor" && (cal.DoctorID == nil || *cal.DoctorID != callerID) {
		return ErrForbidden
	}

	if err := s.cascade.DeleteCalendarCascade(ctx, id); err != nil {
		return fmt.Errorf("cascade-deleting calendar: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "delete", ResourceType: "calendar", ResourceID: id.String(), IPAddress: ip,
	})
	return nil
}

// SyncDoctorCalendars reconciles a doctor's calendars with their specialty
// assignments: the doctor-scope calendar always exists, a specialty-scope
// calendar exists per assigned specialty, and calendars for removed
// specialties are cascade-deleted.
func (s *CalendarService) SyncDoctorCalendars(ctx context.Context, doctorID uuid.UUID, newSpecialtyIDs, oldSpecialtyIDs []uuid.UUID) error {
	if err := s.ensureDoctorCalendar(ctx, doctorID); err != nil {
		return err
	}

	oldSet := make(map[uuid.UUID]bool, len(oldSpecialtyIDs))
	for _, id := range oldSpecialtyIDs {
		oldSet[id] = true
	}
	newSet := make(map[uuid.UUID]bool, len(newSpecialtyIDs))
	for _, id := range newSpecialtyIDs {
		newSet[id] = true
	}

	for _, id := range newSpecialtyIDs {
		if oldSet[id] {
			continue
		}
		if err := s.ensureSpecialtyCalendar(ctx, doctorID, id); err != nil {
			return err
		}
	}

	for _, id := range oldSpecialtyIDs {
		if newSet[id] {
			continue
		}
		if err := s.deleteSpecialtyCalendar(ctx, doctorID, id); err != nil {
			return err
		}
	}

	return nil
}

// DeleteDoctorCalendars cascade-deletes every calendar a doctor owns; used
// when the doctor account itself is removed.
func (s *CalendarService) DeleteDoctorCalendars(ctx context.Context, doctorID uuid.UUID) error {
	calendars, err := s.repo.ListByDoctor(ctx, doctorID)
	if err != nil {
		return err
	}
	for _, cal := range calendars {
		if err := s.cascade.DeleteCalendarCascade(ctx, cal.ID); err != nil {
			return fmt.Errorf("cascade-deleting calendar %s: %w", cal.ID, err)
		}
	}
	return nil
}

func (s *CalendarService) ensureDoctorCalendar(ctx context.Context, doctorID uuid.UUID) error {
	_, err := s.repo.FindByScope(ctx, doctorID, calendar.ScopeDoctor, nil)
	if err == nil {
		return nil
	}
	if !errors.Is(err, calendar.ErrCalendarNotFound) {
		return err
	}

	did := doctorID
	return s.repo.Create(ctx, &calendar.Calendar{
		Scope:    calendar.ScopeDoctor,
		DoctorID: &did,
		Label:    "Médical",
		IsActive: true,
	})
}

func (s *CalendarService) ensureSpecialtyCalendar(ctx context.Context, doctorID, specialtyID uuid.UUID) error {
	_, err := s.repo.FindByScope(ctx, doctorID, calendar.ScopeSpecialty, &specialtyID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, calendar.ErrCalendarNotFound) {
		return err
	}

	label := "Spécialité"
	if sp, err := s.specialties.GetByID(ctx, specialtyID); err == nil {
		label = sp.Label
	}

	did, sid := doctorID, specialtyID
	return s.repo.Create(ctx, &calendar.Calendar{
		Scope:       calendar.ScopeSpecialty,
		DoctorID:    &did,
		SpecialtyID: &sid,
		Label:       label,
		IsActive:    true,
	})
}

func (s *CalendarService) deleteSpecialtyCalendar(ctx context.Context, doctorID, specialtyID uuid.UUID) error {
	cal, err := s.repo.FindByScope(ctx, doctorID, calendar.ScopeSpecialty, &specialtyID)
	if errors.Is(err, calendar.ErrCalendarNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.cascade.DeleteCalendarCascade(ctx, cal.ID)
}
