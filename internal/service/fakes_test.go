package service

import (
	"context"
	"sync"
	"time"

	"github.com/agendoc/agendoc/internal/domain"
	"github.com/agendoc/agendoc/internal/domain/appointment"
	"github.com/agendoc/agendoc/internal/domain/appointmenttype"
	"github.com/agendoc/agendoc/internal/domain/availability"
	"github.com/agendoc/agendoc/internal/domain/bookingtoken"
	"github.com/agendoc/agendoc/internal/domain/calendar"
	"github.com/agendoc/agendoc/internal/domain/specialty"
	"github.com/agendoc/agendoc/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Prometheus collectors register globally; one shared instance serves every
// test in the package.
var testCollector = metrics.NewCollector("agendoc_test")

var testLogger = zap.NewNop()

func newTestAuditService() *AuditService {
	return NewAuditService(&fakeAuditRepo{}, testCollector, testLogger)
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

type fakeCalendarRepo struct {
	mu   sync.Mutex
	cals map[uuid.UUID]*calendar.Calendar
}

func newFakeCalendarRepo(cals ...*calendar.Calendar) *fakeCalendarRepo {
	r := &fakeCalendarRepo{cals: make(map[uuid.UUID]*calendar.Calendar)}
	for _, c := range cals {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		r.cals[c.ID] = c
	}
	return r
}

func (r *fakeCalendarRepo) Create(_ context.Context, c *calendar.Calendar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.cals[c.ID] = c
	return nil
}

func (r *fakeCalendarRepo) GetByID(_ context.Context, id uuid.UUID) (*calendar.Calendar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cals[id]
	if !ok {
		return nil, calendar.ErrCalendarNotFound
	}
	return c, nil
}

func (r *fakeCalendarRepo) FindByScope(_ context.Context, doctorID uuid.UUID, scope calendar.Scope, specialtyID *uuid.UUID) (*calendar.Calendar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cals {
		if c.Scope != scope || c.DoctorID == nil || *c.DoctorID != doctorID {
			continue
		}
		if scope == calendar.ScopeSpecialty {
			if specialtyID == nil || c.SpecialtyID == nil || *c.SpecialtyID != *specialtyID {
				continue
			}
		}
		return c, nil
	}
	return nil, calendar.ErrCalendarNotFound
}

func (r *fakeCalendarRepo) List(_ context.Context, q *calendar.ListCalendarsQuery) ([]*calendar.Calendar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doctorSet := make(map[uuid.UUID]bool, len(q.DoctorIDs))
	for _, id := range q.DoctorIDs {
		doctorSet[id] = true
	}
	calSet := make(map[uuid.UUID]bool, len(q.CalendarIDs))
	for _, id := range q.CalendarIDs {
		calSet[id] = true
	}

	var out []*calendar.Calendar
	for _, c := range r.cals {
		if q.ExcludeSams && c.Scope == calendar.ScopeSams {
			continue
		}
		match := calSet[c.ID] || (c.DoctorID != nil && doctorSet[*c.DoctorID])
		if match {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCalendarRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*calendar.Calendar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*calendar.Calendar
	for _, c := range r.cals {
		if c.DoctorID != nil && *c.DoctorID == doctorID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCalendarRepo) UpdateBookingWindow(ctx context.Context, id uuid.UUID, cmd *calendar.UpdateBookingWindowCommand) (*calendar.Calendar, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	minHours, maxDays := cmd.BookingMinHours, cmd.BookingMaxDays
	c.BookingMinHours = &minHours
	c.BookingMaxDays = &maxDays
	return c, nil
}

type fakeRuleRepo struct {
	rules []*availability.Rule
}

func (r *fakeRuleRepo) Create(_ context.Context, rule *availability.Rule) error {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	r.rules = append(r.rules, rule)
	return nil
}

func (r *fakeRuleRepo) ListByCalendar(_ context.Context, calendarID uuid.UUID) ([]*availability.Rule, error) {
	var out []*availability.Rule
	for _, rule := range r.rules {
		if rule.CalendarID == calendarID {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (r *fakeRuleRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, rule := range r.rules {
		if rule.ID == id {
			r.rules = append(r.rules[:i], r.rules[i+1:]...)
			return nil
		}
	}
	return availability.ErrRuleNotFound
}

type fakeExceptionRepo struct {
	exceptions []*availability.Exception
}

func (r *fakeExceptionRepo) Create(_ context.Context, e *availability.Exception) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.exceptions = append(r.exceptions, e)
	return nil
}

func (r *fakeExceptionRepo) GetByCalendarAndDate(_ context.Context, calendarID uuid.UUID, date time.Time) (*availability.Exception, error) {
	key := date.Format("2006-01-02")
	for _, e := range r.exceptions {
		if e.CalendarID == calendarID && e.DateKey() == key {
			return e, nil
		}
	}
	return nil, availability.ErrExceptionNotFound
}

func (r *fakeExceptionRepo) ListByCalendarRange(_ context.Context, calendarID uuid.UUID, from, to time.Time) ([]*availability.Exception, error) {
	var out []*availability.Exception
	for _, e := range r.exceptions {
		if e.CalendarID == calendarID && !e.Date.Before(from) && !e.Date.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeExceptionRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, e := range r.exceptions {
		if e.ID == id {
			r.exceptions = append(r.exceptions[:i], r.exceptions[i+1:]...)
			return nil
		}
	}
	return availability.ErrExceptionNotFound
}

type fakeTypeRepo struct {
	types map[uuid.UUID]*appointmenttype.AppointmentType
}

func newFakeTypeRepo(types ...*appointmenttype.AppointmentType) *fakeTypeRepo {
	r := &fakeTypeRepo{types: make(map[uuid.UUID]*appointmenttype.AppointmentType)}
	for _, t := range types {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		r.types[t.ID] = t
	}
	return r
}

// The fake stores and returns copies so a caller mutating a returned
// value cannot change the store without going through Update.
func (r *fakeTypeRepo) Create(_ context.Context, t *appointmenttype.AppointmentType) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	stored := *t
	r.types[t.ID] = &stored
	return nil
}

func (r *fakeTypeRepo) GetByID(_ context.Context, id uuid.UUID) (*appointmenttype.AppointmentType, error) {
	t, ok := r.types[id]
	if !ok {
		return nil, appointmenttype.ErrTypeNotFound
	}
	out := *t
	return &out, nil
}

func (r *fakeTypeRepo) ListActiveByCalendar(ctx context.Context, calendarID uuid.UUID) ([]*appointmenttype.AppointmentType, error) {
	return r.ListActiveByCalendars(ctx, []uuid.UUID{calendarID})
}

func (r *fakeTypeRepo) ListActiveByCalendars(_ context.Context, calendarIDs []uuid.UUID) ([]*appointmenttype.AppointmentType, error) {
	set := make(map[uuid.UUID]bool, len(calendarIDs))
	for _, id := range calendarIDs {
		set[id] = true
	}
	var out []*appointmenttype.AppointmentType
	for _, t := range r.types {
		if t.IsActive && set[t.CalendarID] {
			c := *t
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeTypeRepo) Update(_ context.Context, id uuid.UUID, cmd *appointmenttype.UpdateCommand) (*appointmenttype.AppointmentType, error) {
	stored, ok := r.types[id]
	if !ok {
		return nil, appointmenttype.ErrTypeNotFound
	}
	t := *stored
	if cmd.Label != nil {
		t.Label = *cmd.Label
	}
	if cmd.Code != nil {
		t.Code = *cmd.Code
	}
	if cmd.DurationMinutes != nil {
		t.DurationMinutes = *cmd.DurationMinutes
	}
	if cmd.BufferBeforeMinutes != nil {
		t.BufferBeforeMinutes = *cmd.BufferBeforeMinutes
	}
	if cmd.BufferAfterMinutes != nil {
		t.BufferAfterMinutes = *cmd.BufferAfterMinutes
	}
	if cmd.IsActive != nil {
		t.IsActive = *cmd.IsActive
	}
	r.types[id] = &t
	out := t
	return &out, nil
}

func (r *fakeTypeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.types[id]; !ok {
		return appointmenttype.ErrTypeNotFound
	}
	delete(r.types, id)
	return nil
}

func (r *fakeTypeRepo) CodeExists(_ context.Context, doctorID, calendarID uuid.UUID, code string, ignoreID *uuid.UUID) (bool, error) {
	for _, t := range r.types {
		if ignoreID != nil && t.ID == *ignoreID {
			continue
		}
		if t.DoctorID == doctorID && t.CalendarID == calendarID && t.Code == code {
			return true, nil
		}
	}
	return false, nil
}

type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments []*appointment.Appointment
}

func (r *fakeAppointmentRepo) CreateIfFree(_ context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.overlapLocked(a.DoctorID, a.StartAt, a.EndAt, nil) {
		return appointment.ErrSlotUnavailable
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.appointments = append(r.appointments, a)
	return nil
}

func (r *fakeAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appointments {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, appointment.ErrAppointmentNotFound
}

func (r *fakeAppointmentRepo) ListBlockingInRange(_ context.Context, doctorID uuid.UUID, from, to time.Time) ([]*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*appointment.Appointment
	for _, a := range r.appointments {
		if a.DoctorID == doctorID && a.Blocks() && a.StartAt.Before(to) && a.EndAt.After(from) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) HasOverlap(_ context.Context, doctorID uuid.UUID, startAt, endAt time.Time, ignoreID *uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overlapLocked(doctorID, startAt, endAt, ignoreID), nil
}

func (r *fakeAppointmentRepo) UpdateStatus(_ context.Context, a *appointment.Appointment) error {
	return nil
}

func (r *fakeAppointmentRepo) Transfer(_ context.Context, a *appointment.Appointment, toDoctorID, toCalendarID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.overlapLocked(toDoctorID, a.StartAt, a.EndAt, &a.ID) {
		return appointment.ErrSlotUnavailable
	}
	a.DoctorID = toDoctorID
	a.CalendarID = toCalendarID
	return nil
}

func (r *fakeAppointmentRepo) List(_ context.Context, q *appointment.ListQuery) (*appointment.PagedAppointments, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*appointment.Appointment
	for _, a := range r.appointments {
		if q.DoctorID != nil && a.DoctorID != *q.DoctorID {
			continue
		}
		if q.CalendarID != nil && a.CalendarID != *q.CalendarID {
			continue
		}
		out = append(out, a)
	}
	return &appointment.PagedAppointments{
		Appointments: out,
		TotalCount:   int64(len(out)),
		Page:         q.Page,
		PageSize:     q.PageSize,
	}, nil
}

func (r *fakeAppointmentRepo) overlapLocked(doctorID uuid.UUID, startAt, endAt time.Time, ignoreID *uuid.UUID) bool {
	for _, a := range r.appointments {
		if ignoreID != nil && a.ID == *ignoreID {
			continue
		}
		if a.DoctorID == doctorID && a.Blocks() && a.StartAt.Before(endAt) && a.EndAt.After(startAt) {
			return true
		}
	}
	return false
}

type fakeSpecialtyRepo struct {
	specialties map[uuid.UUID]*specialty.Specialty

	// cals, when set, backs the InUse check.
	cals *fakeCalendarRepo
}

func newFakeSpecialtyRepo(specialties ...*specialty.Specialty) *fakeSpecialtyRepo {
	r := &fakeSpecialtyRepo{specialties: make(map[uuid.UUID]*specialty.Specialty)}
	for _, s := range specialties {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		r.specialties[s.ID] = s
	}
	return r
}

func (r *fakeSpecialtyRepo) Create(_ context.Context, s *specialty.Specialty) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.specialties[s.ID] = s
	return nil
}

func (r *fakeSpecialtyRepo) GetByID(_ context.Context, id uuid.UUID) (*specialty.Specialty, error) {
	s, ok := r.specialties[id]
	if !ok {
		return nil, specialty.ErrSpecialtyNotFound
	}
	return s, nil
}

func (r *fakeSpecialtyRepo) List(_ context.Context) ([]*specialty.Specialty, error) {
	var out []*specialty.Specialty
	for _, s := range r.specialties {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeSpecialtyRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.specialties, id)
	return nil
}

func (r *fakeSpecialtyRepo) InUse(_ context.Context, id uuid.UUID) (bool, error) {
	if r.cals == nil {
		return false, nil
	}
	r.cals.mu.Lock()
	defer r.cals.mu.Unlock()
	for _, c := range r.cals.cals {
		if c.SpecialtyID != nil && *c.SpecialtyID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSpecialtyRepo) CodeExists(_ context.Context, code string, ignoreID *uuid.UUID) (bool, error) {
	for _, s := range r.specialties {
		if ignoreID != nil && s.ID == *ignoreID {
			continue
		}
		if s.Code == code {
			return true, nil
		}
	}
	return false, nil
}

type fakeCascade struct {
	deleted []uuid.UUID
}

func (c *fakeCascade) DeleteCalendarCascade(_ context.Context, calendarID uuid.UUID) error {
	c.deleted = append(c.deleted, calendarID)
	return nil
}

type fakeTokenRepo struct {
	tokens map[string]*bookingtoken.BookingToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*bookingtoken.BookingToken)}
}

func (r *fakeTokenRepo) Create(_ context.Context, t *bookingtoken.BookingToken) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.tokens[t.TokenHash] = t
	return nil
}

func (r *fakeTokenRepo) GetByHash(_ context.Context, hash string) (*bookingtoken.BookingToken, error) {
	t, ok := r.tokens[hash]
	if !ok {
		return nil, bookingtoken.ErrTokenNotFound
	}
	return t, nil
}

func (r *fakeTokenRepo) MarkUsed(_ context.Context, id uuid.UUID, usedAt time.Time) error {
	for _, t := range r.tokens {
		if t.ID == id {
			if t.UsedAt != nil {
				return bookingtoken.ErrTokenUsed
			}
			t.UsedAt = &usedAt
			return nil
		}
	}
	return bookingtoken.ErrTokenNotFound
}
