package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agendoc/agendoc/internal/domain/appointment"
	"github.com/agendoc/agendoc/internal/domain/appointmenttype"
	"github.com/agendoc/agendoc/internal/domain/availability"
	"github.com/agendoc/agendoc/internal/domain/calendar"
	"github.com/agendoc/agendoc/internal/schedule"
	"github.com/agendoc/agendoc/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AvailabilityService orchestrates slot computation: it fetches a calendar's
// rules, exceptions, and the doctor's blocking appointments, then runs the
// pure slot engine over them. It performs no writes.
type AvailabilityService struct {
	calendars    calendar.Repository
	rules        availability.RuleRepository
	exceptions   availability.ExceptionRepository
	types        appointmenttype.Repository
	appointments appointment.Repository
	engine       *schedule.Engine
	collector    *metrics.Collector
	log          *zap.Logger
	now          func() time.Time
}

func NewAvailabilityService(
	calendars calendar.Repository,
	rules availability.RuleRepository,
	exceptions availability.ExceptionRepository,
	types appointmenttype.Repository,
	appointments appointment.Repository,
	engine *schedule.Engine,
	collector *metrics.Collector,
	log *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		calendars:    calendars,
		rules:        rules,
		exceptions:   exceptions,
		types:        types,
		appointments: appointments,
		engine:       engine,
		collector:    collector,
		log:          log,
		now:          time.Now,
	}
}

// WithClock replaces the time source; tests inject a fixed instant.
func (s *AvailabilityService) WithClock(now func() time.Time) *AvailabilityService {
	s.now = now
	return s
}

// GetSlots computes the bookable slots for one doctor/calendar/type over
// [from, to), after validating that calendar and type belong together.
// patientFacing additionally forbids sams-scope calendars.
func (s *AvailabilityService) GetSlots(
	ctx context.Context,
	doctorID, calendarID, appointmentTypeID uuid.UUID,
	from, to time.Time,
	patientFacing bool,
) ([]schedule.Interval, schedule.BookingWindow, error) {
	cal, err := s.calendars.GetByID(ctx, calendarID)
	if err != nil {
		return nil, schedule.BookingWindow{}, err
	}

	if patientFacing && cal.Scope == calendar.ScopeSams {
		return nil, schedule.BookingWindow{}, calendar.ErrSamsNotBookable
	}
	if cal.DoctorID == nil || *cal.DoctorID != doctorID {
		return nil, schedule.BookingWindow{}, calendar.ErrCalendarMismatch
	}

	apptType, err := s.types.GetByID(ctx, appointmentTypeID)
	if err != nil {
		return nil, schedule.BookingWindow{}, err
	}
	if apptType.CalendarID != calendarID || apptType.DoctorID != doctorID {
		return nil, schedule.BookingWindow{}, appointmenttype.ErrTypeMismatch
	}
	if !apptType.IsActive {
		return nil, schedule.BookingWindow{}, appointmenttype.ErrTypeInactive
	}

	now := s.now()
	window := s.windowFor(cal, now)

	slots, err := s.computeSlots(ctx, cal, apptType, from, to, window)
	if err != nil {
		return nil, schedule.BookingWindow{}, err
	}

	s.collector.SlotsComputed.Add(float64(len(slots)))
	return slots, window, nil
}

// GetFeedSlots aggregates availability over several doctors and/or calendars
// into one deduplicated feed. For every resolved non-sams calendar the
// cheapest-fit active type (smallest total length, code as tiebreak) sizes the
// slots; calendars without a doctor or a qualifying type are skipped.
func (s *AvailabilityService) GetFeedSlots(
	ctx context.Context,
	doctorIDs, calendarIDs []uuid.UUID,
	from, to time.Time,
) ([]schedule.FeedSlot, error) {
	if len(doctorIDs) == 0 && len(calendarIDs) == 0 {
		return []schedule.FeedSlot{}, nil
	}

	calendars, err := s.calendars.List(ctx, &calendar.ListCalendarsQuery{
		DoctorIDs:   doctorIDs,
		CalendarIDs: calendarIDs,
		ExcludeSams: true,
	})
	if err != nil {
		return nil, fmt.Errorf("resolving feed calendars: %w", err)
	}
	if len(calendars) == 0 {
		return []schedule.FeedSlot{}, nil
	}

	ids := make([]uuid.UUID, 0, len(calendars))
	for _, cal := range calendars {
		ids = append(ids, cal.ID)
	}
	types, err := s.types.ListActiveByCalendars(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolving feed appointment types: %w", err)
	}
	typeByCalendar := cheapestFitTypes(types)

	now := s.now()

	// Calendars are independent inputs; run the engine over them in parallel
	// and merge only at the dedup step.
	runs := make([][]schedule.FeedSlot, len(calendars))
	errs := make([]error, len(calendars))
	var wg sync.WaitGroup

	for i, cal := range calendars {
		if cal.DoctorID == nil {
			continue
		}
		apptType, ok := typeByCalendar[cal.ID]
		if !ok {
			continue
		}

		wg.Add(1)
		go func(i int, cal *calendar.Calendar, apptType *appointmenttype.AppointmentType) {
			defer wg.Done()
			window := s.windowFor(cal, now)
			slots, err := s.computeSlots(ctx, cal, apptType, from, to, window)
			if err != nil {
				errs[i] = err
				return
			}
			run := make([]schedule.FeedSlot, 0, len(slots))
			for _, slot := range slots {
				run = append(run, schedule.FeedSlot{
					DoctorID:   *cal.DoctorID,
					CalendarID: cal.ID,
					StartAt:    slot.Start,
					EndAt:      slot.End,
				})
			}
			runs[i] = run
		}(i, cal, apptType)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	merged := schedule.MergeFeedSlots(runs)
	s.collector.SlotsComputed.Add(float64(len(merged)))
	return merged, nil
}

// ComputeBookingWindow derives the calendar's current booking window, surfaced
// verbatim in patient responses alongside slot data.
func (s *AvailabilityService) ComputeBookingWindow(cal *calendar.Calendar) schedule.BookingWindow {
	return s.windowFor(cal, s.now())
}

func (s *AvailabilityService) windowFor(cal *calendar.Calendar, now time.Time) schedule.BookingWindow {
	return schedule.NewBookingWindow(
		cal.EffectiveBookingMinHours(),
		cal.EffectiveBookingMaxDays(),
		now,
		s.engine.Location(),
	)
}

func (s *AvailabilityService) computeSlots(
	ctx context.Context,
	cal *calendar.Calendar,
	apptType *appointmenttype.AppointmentType,
	from, to time.Time,
	window schedule.BookingWindow,
) ([]schedule.Interval, error) {
	if apptType.TotalMinutes() <= 0 {
		return nil, nil
	}

	rules, err := s.rules.ListByCalendar(ctx, cal.ID)
	if err != nil {
		return nil, fmt.Errorf("loading availability rules: %w", err)
	}

	// Pad by a day on both sides: boundary days are iterated in full and their
	// windows may extend past the requested range.
	exceptions, err := s.exceptions.ListByCalendarRange(ctx, cal.ID, from.AddDate(0, 0, -1), to.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("loading availability exceptions: %w", err)
	}

	busy, err := s.appointments.ListBlockingInRange(ctx, apptType.DoctorID, from.AddDate(0, 0, -1), to.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("loading blocking appointments: %w", err)
	}

	req := schedule.SlotRequest{
		From:       from,
		To:         to,
		SlotLength: apptType.TotalLength(),
		Rules:      make([]schedule.WeeklyRule, 0, len(rules)),
		Exceptions: make(map[string]schedule.DayException, len(exceptions)),
		Busy:       make([]schedule.Interval, 0, len(busy)),
		Window:     window,
	}
	for _, r := range rules {
		req.Rules = append(req.Rules, schedule.WeeklyRule{
			DayOfWeek: r.DayOfWeek,
			StartTime: r.StartTime,
			EndTime:   r.EndTime,
		})
	}
	for _, exc := range exceptions {
		req.Exceptions[exc.DateKey()] = schedule.DayException{
			Kind:      schedule.ExceptionKind(exc.Kind),
			StartTime: exc.StartTime,
			EndTime:   exc.EndTime,
		}
	}
	for _, a := range busy {
		req.Busy = append(req.Busy, schedule.Interval{Start: a.StartAt, End: a.EndAt})
	}

	return s.engine.Slots(req), nil
}

// cheapestFitTypes picks, per calendar, the active type with the smallest
// total length; ties break on the lexically smallest code so feed output is
// deterministic. Types with non-positive total length never qualify.
func cheapestFitTypes(types []*appointmenttype.AppointmentType) map[uuid.UUID]*appointmenttype.AppointmentType {
	best := make(map[uuid.UUID]*appointmenttype.AppointmentType)
	for _, t := range types {
		length := t.TotalMinutes()
		if length <= 0 {
			continue
		}
		current, ok := best[t.CalendarID]
		if !ok || length < current.TotalMinutes() ||
			(length == current.TotalMinutes() && t.Code < current.Code) {
			best[t.CalendarID] = t
		}
	}
	return best
}
