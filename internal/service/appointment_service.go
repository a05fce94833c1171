package service

import (
	"context"
	"fmt"
	"time"

	"github.com/agendoc/agendoc/internal/domain/appointment"
	"github.com/agendoc/agendoc/internal/domain/appointmenttype"
	"github.com/agendoc/agendoc/internal/domain/calendar"
	"github.com/agendoc/agendoc/internal/schedule"
	"github.com/agendoc/agendoc/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AppointmentService struct {
	repo      appointment.Repository
	calendars calendar.Repository
	types     appointmenttype.Repository
	engine    *schedule.Engine
	auditSvc  *AuditService
	collector *metrics.Collector
	log       *zap.Logger
	now       func() time.Time
}

func NewAppointmentService(
	repo appointment.Repository,
	calendars calendar.Repository,
	types appointmenttype.Repository,
	engine *schedule.Engine,
	auditSvc *AuditService,
	collector *metrics.Collector,
	log *zap.Logger,
) *AppointmentService {
	return &AppointmentService{
		repo:      repo,
		calendars: calendars,
		types:     types,
		engine:    engine,
		auditSvc:  auditSvc,
		collector: collector,
		log:       log,
		now:       time.Now,
	}
}

// WithClock replaces the time source; tests inject a fixed instant.
func (s *AppointmentService) WithClock(now func() time.Time) *AppointmentService {
	s.now = now
	return s
}

// Book validates a booking request against the calendar's booking window and
// commits it with an atomic no-overlap check. Between the patient seeing a
// free slot and this call, a concurrent booking may have taken it; that race
// surfaces as appointment.ErrSlotUnavailable and the caller re-fetches slots.
func (s *AppointmentService) Book(
	ctx context.Context,
	cmd *appointment.CreateCommand,
	patientFacing bool,
	callerRole string,
	ip string,
) (*appointment.Appointment, error) {
	cal, err := s.calendars.GetByID(ctx, cmd.CalendarID)
	if err != nil {
		return nil, err
	}
	if cal.Scope == calendar.ScopeSams {
		return nil, calendar.ErrSamsNotBookable
	}
	if patientFacing && !cal.IsActive {
		return nil, calendar.ErrCalendarInactive
	}
	if cal.DoctorID == nil || *cal.DoctorID != cmd.DoctorID {
		return nil, calendar.ErrCalendarMismatch
	}

	apptType, err := s.types.GetByID(ctx, cmd.AppointmentTypeID)
	if err != nil {
		return nil, err
	}
	if apptType.CalendarID != cmd.CalendarID || apptType.DoctorID != cmd.DoctorID {
		return nil, appointmenttype.ErrTypeMismatch
	}
	if !apptType.IsActive {
		return nil, appointmenttype.ErrTypeInactive
	}
	if apptType.TotalMinutes() <= 0 {
		return nil, appointmenttype.ErrInvalidDuration
	}

	now := s.now()
	if cmd.StartAt.Before(now) {
		return nil, appointment.ErrScheduledInPast
	}

	// Patient bookings honor the calendar's booking window; dashboard staff
	// may book outside it.
	if patientFacing {
		window := schedule.NewBookingWindow(
			cal.EffectiveBookingMinHours(),
			cal.EffectiveBookingMaxDays(),
			now,
			s.engine.Location(),
		)
		if err := window.Check(cmd.StartAt); err != nil {
			return nil, err
		}
	}

	a := &appointment.Appointment{
		CalendarID:        cmd.CalendarID,
		DoctorID:          cmd.DoctorID,
		AppointmentTypeID: cmd.AppointmentTypeID,
		SpecialtyID:       firstSpecialty(cmd.SpecialtyID, apptType.SpecialtyID, cal.SpecialtyID),
		StartAt:           cmd.StartAt.UTC(),
		EndAt:             cmd.StartAt.UTC().Add(apptType.TotalLength()),
		Status:            appointment.StatusConfirmed,
		Patient:           cmd.Patient,
		CreatedBy:         cmd.CreatedBy,
	}

	if err := s.repo.CreateIfFree(ctx, a); err != nil {
		if err == appointment.ErrSlotUnavailable {
			s.collector.BookingConflicts.Inc()
			return nil, err
		}
		s.log.Error("failed to create appointment", zap.Error(err))
		return nil, fmt.Errorf("creating appointment: %w", err)
	}

	s.collector.AppointmentsTotal.WithLabelValues(string(a.Status)).Inc()

	if cmd.CreatedBy != nil {
		s.auditSvc.LogAsync(ctx, AuditEntry{
			UserID:       *cmd.CreatedBy,
			UserRole:     callerRole,
			Action:       "create",
			ResourceType: "appointment",
			ResourceID:   a.ID.String(),
			IPAddress:    ip,
		})
	}

	return a, nil
}

// Cancel marks an appointment cancelled, freeing its time range.
func (s *AppointmentService) Cancel(ctx context.Context, id uuid.UUID, reason string, callerID uuid.UUID, callerRole string, ip string) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if callerRole == "doctor" && a.DoctorID != callerID {
		return nil, ErrForbidden
	}

	if err := a.Cancel(reason); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, a); err != nil {
		return nil, fmt.Errorf("updating appointment status: %w", err)
	}

	s.collector.AppointmentsTotal.WithLabelValues(string(a.Status)).Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "update", ResourceType: "appointment", ResourceID: id.String(), IPAddress: ip,
		Changes: fmt.Sprintf(`{"status":"cancelled","reason":%q}`, reason),
	})

	return a, nil
}

// Transfer hands an appointment to another doctor, re-running the overlap
// guard for the target doctor inside the same transaction as the move.
func (s *AppointmentService) Transfer(ctx context.Context, id uuid.UUID, cmd *appointment.TransferCommand, callerID uuid.UUID, callerRole string, ip string) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status.IsCancelled() {
		return nil, appointment.ErrAlreadyCancelled
	}

	target, err := s.calendars.GetByID(ctx, cmd.ToCalendarID)
	if err != nil {
		return nil, err
	}
	if target.Scope == calendar.ScopeSams {
		return nil, calendar.ErrSamsNotBookable
	}
	if target.DoctorID == nil || *target.DoctorID != cmd.ToDoctorID {
		return nil, calendar.ErrCalendarMismatch
	}

	a.Transfer = &appointment.Transfer{
		FromDoctorID: a.DoctorID,
		ToDoctorID:   cmd.ToDoctorID,
		Reason:       cmd.Reason,
	}

	if err := s.repo.Transfer(ctx, a, cmd.ToDoctorID, cmd.ToCalendarID); err != nil {
		if err == appointment.ErrSlotUnavailable {
			s.collector.BookingConflicts.Inc()
		}
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "update", ResourceType: "appointment", ResourceID: id.String(), IPAddress: ip,
		Changes: fmt.Sprintf(`{"transfer":{"toDoctorId":%q}}`, cmd.ToDoctorID),
	})

	return a, nil
}

func (s *AppointmentService) Get(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AppointmentService) List(ctx context.Context, q *appointment.ListQuery, callerID uuid.UUID, callerRole string) (*appointment.PagedAppointments, error) {
	// Doctors only see their own appointments.
	if callerRole == "doctor" {
		q.DoctorID = &callerID
	}
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return s.repo.List(ctx, q)
}

func firstSpecialty(ids ...*uuid.UUID) *uuid.UUID {
	for _, id := range ids {
		if id != nil {
			return id
		}
	}
	return nil
}
