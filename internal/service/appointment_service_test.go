package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agendoc/agendoc/internal/domain/appointment"
	"github.com/agendoc/agendoc/internal/domain/appointmenttype"
	"github.com/agendoc/agendoc/internal/domain/calendar"
	"github.com/agendoc/agendoc/internal/schedule"
	"github.com/google/uuid"
)

type appointmentFixture struct {
	svc   *AppointmentService
	repo  *fakeAppointmentRepo
	cals  *fakeCalendarRepo
	types *fakeTypeRepo

	doctorID   uuid.UUID
	calendarID uuid.UUID
	typeID     uuid.UUID
	now        time.Time
}

func newAppointmentFixture(t *testing.T) *appointmentFixture {
	t.Helper()

	doctorID := uuid.New()
	minHours, maxDays := 24, 30
	cal := &calendar.Calendar{
		Scope:           calendar.ScopeDoctor,
		DoctorID:        &doctorID,
		Label:           "Médical",
		IsActive:        true,
		BookingMinHours: &minHours,
		BookingMaxDays:  &maxDays,
	}
	cals := newFakeCalendarRepo(cal)

	apptType := &appointmenttype.AppointmentType{
		DoctorID:           doctorID,
		CalendarID:         cal.ID,
		Code:               "consultation",
		Label:              "Consultation",
		DurationMinutes:    30,
		BufferAfterMinutes: 10,
		IsActive:           true,
	}
	types := newFakeTypeRepo(apptType)

	repo := &fakeAppointmentRepo{}
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	svc := NewAppointmentService(
		repo, cals, types, parisEngine(t),
		newTestAuditService(), testCollector, testLogger,
	).WithClock(func() time.Time { return now })

	return &appointmentFixture{
		svc:        svc,
		repo:       repo,
		cals:       cals,
		types:      types,
		doctorID:   doctorID,
		calendarID: cal.ID,
		typeID:     apptType.ID,
		now:        now,
	}
}

func (f *appointmentFixture) cmd(startAt time.Time) *appointment.CreateCommand {
	return &appointment.CreateCommand{
		CalendarID:        f.calendarID,
		DoctorID:          f.doctorID,
		AppointmentTypeID: f.typeID,
		StartAt:           startAt,
		Patient: appointment.PatientInfo{
			LastName:  "Durand",
			FirstName: "Claire",
			Phone:     "+33600000000",
		},
	}
}

func TestBookSizesAppointmentFromType(t *testing.T) {
	f := newAppointmentFixture(t)
	start := f.now.AddDate(0, 0, 2)

	a, err := f.svc.Book(context.Background(), f.cmd(start), false, "admin", "10.0.0.1")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	// 30 minutes duration + 10 minutes buffer.
	if got := a.EndAt.Sub(a.StartAt); got != 40*time.Minute {
		t.Errorf("appointment length %v, want 40m", got)
	}
	if a.Status != appointment.StatusConfirmed {
		t.Errorf("status %q, want confirmed", a.Status)
	}
}

func TestBookRejectsPastStart(t *testing.T) {
	f := newAppointmentFixture(t)

	_, err := f.svc.Book(context.Background(), f.cmd(f.now.Add(-time.Hour)), false, "admin", "")
	if !errors.Is(err, appointment.ErrScheduledInPast) {
		t.Fatalf("got %v, want ErrScheduledInPast", err)
	}
}

func TestBookPatientFacingHonorsWindow(t *testing.T) {
	f := newAppointmentFixture(t)

	// 24h minimum lead time: two hours out is too soon for a patient.
	tooSoon := f.now.Add(2 * time.Hour)
	_, err := f.svc.Book(context.Background(), f.cmd(tooSoon), true, "patient", "")

	var violation *schedule.WindowViolation
	if !errors.As(err, &violation) {
		t.Fatalf("got %v, want WindowViolation", err)
	}
	if violation.Bound != schedule.BoundTooSoon {
		t.Errorf("bound %q, want too_soon", violation.Bound)
	}
}

func TestBookDashboardBypassesWindow(t *testing.T) {
	f := newAppointmentFixture(t)

	// Same instant a patient would be refused for.
	soon := f.now.Add(2 * time.Hour)
	if _, err := f.svc.Book(context.Background(), f.cmd(soon), false, "admin", ""); err != nil {
		t.Fatalf("dashboard booking inside lead time: %v", err)
	}
}

func TestBookConflictSurfacesSlotUnavailable(t *testing.T) {
	f := newAppointmentFixture(t)
	start := f.now.AddDate(0, 0, 2)

	if _, err := f.svc.Book(context.Background(), f.cmd(start), false, "admin", ""); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	_, err := f.svc.Book(context.Background(), f.cmd(start.Add(10*time.Minute)), false, "admin", "")
	if !errors.Is(err, appointment.ErrSlotUnavailable) {
		t.Fatalf("got %v, want ErrSlotUnavailable", err)
	}
}

func TestBookValidation(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()
	start := f.now.AddDate(0, 0, 2)

	t.Run("sams calendar", func(t *testing.T) {
		did := f.doctorID
		sams := &calendar.Calendar{Scope: calendar.ScopeSams, DoctorID: &did, Label: "SAMS", IsActive: true}
		if err := f.cals.Create(ctx, sams); err != nil {
			t.Fatal(err)
		}
		cmd := f.cmd(start)
		cmd.CalendarID = sams.ID
		_, err := f.svc.Book(ctx, cmd, false, "admin", "")
		if !errors.Is(err, calendar.ErrSamsNotBookable) {
			t.Errorf("got %v, want ErrSamsNotBookable", err)
		}
	})

	t.Run("inactive calendar patient-facing", func(t *testing.T) {
		did := f.doctorID
		off := &calendar.Calendar{Scope: calendar.ScopeSpecialty, DoctorID: &did, Label: "Spécialité", IsActive: false}
		if err := f.cals.Create(ctx, off); err != nil {
			t.Fatal(err)
		}
		cmd := f.cmd(start)
		cmd.CalendarID = off.ID
		_, err := f.svc.Book(ctx, cmd, true, "patient", "")
		if !errors.Is(err, calendar.ErrCalendarInactive) {
			t.Errorf("got %v, want ErrCalendarInactive", err)
		}
	})

	t.Run("doctor calendar mismatch", func(t *testing.T) {
		cmd := f.cmd(start)
		cmd.DoctorID = uuid.New()
		_, err := f.svc.Book(ctx, cmd, false, "admin", "")
		if !errors.Is(err, calendar.ErrCalendarMismatch) {
			t.Errorf("got %v, want ErrCalendarMismatch", err)
		}
	})
}

func TestCancelFreesSlot(t *testing.T) {
	f := newAppointmentFixture(t)
	start := f.now.AddDate(0, 0, 2)

	a, err := f.svc.Book(context.Background(), f.cmd(start), false, "admin", "")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	cancelled, err := f.svc.Cancel(context.Background(), a.ID, "patient request", f.doctorID, "doctor", "")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if !cancelled.Status.IsCancelled() || cancelled.CancelledAt == nil {
		t.Fatalf("appointment not cancelled: %+v", cancelled)
	}

	// The freed range is bookable again.
	if _, err := f.svc.Book(context.Background(), f.cmd(start), false, "admin", ""); err != nil {
		t.Fatalf("rebooking cancelled slot: %v", err)
	}
}

func TestCancelForbiddenForOtherDoctor(t *testing.T) {
	f := newAppointmentFixture(t)
	a, err := f.svc.Book(context.Background(), f.cmd(f.now.AddDate(0, 0, 2)), false, "admin", "")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	_, err = f.svc.Cancel(context.Background(), a.ID, "", uuid.New(), "doctor", "")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}
}

func TestCancelTwiceFails(t *testing.T) {
	f := newAppointmentFixture(t)
	a, err := f.svc.Book(context.Background(), f.cmd(f.now.AddDate(0, 0, 2)), false, "admin", "")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if _, err := f.svc.Cancel(context.Background(), a.ID, "", f.doctorID, "doctor", ""); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	_, err = f.svc.Cancel(context.Background(), a.ID, "", f.doctorID, "doctor", "")
	if !errors.Is(err, appointment.ErrAlreadyCancelled) {
		t.Fatalf("got %v, want ErrAlreadyCancelled", err)
	}
}

func TestTransferMovesAppointment(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()

	otherDoctor := uuid.New()
	target := &calendar.Calendar{Scope: calendar.ScopeDoctor, DoctorID: &otherDoctor, Label: "Médical", IsActive: true}
	if err := f.cals.Create(ctx, target); err != nil {
		t.Fatal(err)
	}

	a, err := f.svc.Book(ctx, f.cmd(f.now.AddDate(0, 0, 2)), false, "admin", "")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	moved, err := f.svc.Transfer(ctx, a.ID, &appointment.TransferCommand{
		ToDoctorID:   otherDoctor,
		ToCalendarID: target.ID,
		Reason:       "absence",
	}, f.doctorID, "doctor", "")
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if moved.DoctorID != otherDoctor || moved.CalendarID != target.ID {
		t.Errorf("appointment not moved: doctor=%s calendar=%s", moved.DoctorID, moved.CalendarID)
	}
	if moved.Transfer == nil || moved.Transfer.FromDoctorID != f.doctorID {
		t.Errorf("transfer record missing or wrong: %+v", moved.Transfer)
	}
}

func TestTransferRejectsBusyTarget(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()
	start := f.now.AddDate(0, 0, 2)

	otherDoctor := uuid.New()
	target := &calendar.Calendar{Scope: calendar.ScopeDoctor, DoctorID: &otherDoctor, Label: "Médical", IsActive: true}
	if err := f.cals.Create(ctx, target); err != nil {
		t.Fatal(err)
	}
	// The target doctor is already busy over the same range.
	f.repo.appointments = append(f.repo.appointments, &appointment.Appointment{
		ID: uuid.New(), DoctorID: otherDoctor, CalendarID: target.ID,
		StartAt: start, EndAt: start.Add(time.Hour),
		Status: appointment.StatusConfirmed,
	})

	a, err := f.svc.Book(ctx, f.cmd(start), false, "admin", "")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	_, err = f.svc.Transfer(ctx, a.ID, &appointment.TransferCommand{
		ToDoctorID: otherDoctor, ToCalendarID: target.ID,
	}, f.doctorID, "doctor", "")
	if !errors.Is(err, appointment.ErrSlotUnavailable) {
		t.Fatalf("got %v, want ErrSlotUnavailable", err)
	}
}

func TestTransferToSamsRejected(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()

	otherDoctor := uuid.New()
	sams := &calendar.Calendar{Scope: calendar.ScopeSams, DoctorID: &otherDoctor, Label: "SAMS", IsActive: true}
	if err := f.cals.Create(ctx, sams); err != nil {
		t.Fatal(err)
	}

	a, err := f.svc.Book(ctx, f.cmd(f.now.AddDate(0, 0, 2)), false, "admin", "")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	_, err = f.svc.Transfer(ctx, a.ID, &appointment.TransferCommand{
		ToDoctorID: otherDoctor, ToCalendarID: sams.ID,
	}, f.doctorID, "doctor", "")
	if !errors.Is(err, calendar.ErrSamsNotBookable) {
		t.Fatalf("got %v, want ErrSamsNotBookable", err)
	}
}

func TestListScopesDoctorsToTheirOwn(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Book(ctx, f.cmd(f.now.AddDate(0, 0, 2)), false, "admin", ""); err != nil {
		t.Fatalf("Book: %v", err)
	}
	f.repo.appointments = append(f.repo.appointments, &appointment.Appointment{
		ID: uuid.New(), DoctorID: uuid.New(), CalendarID: uuid.New(),
		StartAt: f.now.AddDate(0, 0, 3), EndAt: f.now.AddDate(0, 0, 3).Add(time.Hour),
		Status: appointment.StatusConfirmed,
	})

	paged, err := f.svc.List(ctx, &appointment.ListQuery{}, f.doctorID, "doctor")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paged.Appointments) != 1 {
		t.Fatalf("doctor sees %d appointments, want 1", len(paged.Appointments))
	}
	if paged.Page != 1 || paged.PageSize != 20 {
		t.Errorf("paging defaults page=%d size=%d, want 1/20", paged.Page, paged.PageSize)
	}

	adminPaged, err := f.svc.List(ctx, &appointment.ListQuery{}, uuid.New(), "admin")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(adminPaged.Appointments) != 2 {
		t.Fatalf("admin sees %d appointments, want 2", len(adminPaged.Appointments))
	}
}
