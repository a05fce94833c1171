package service

import (
	"context"
	"errors"
	"testing"

	"github.com/agendoc/agendoc/internal/domain/appointmenttype"
	"github.com/agendoc/agendoc/internal/domain/calendar"
	"github.com/google/uuid"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		label string
		want  string
	}{
		{"Consultation", "consultation"},
		{"Consultation Générale", "consultation-generale"},
		{"Suivi post-opératoire", "suivi-post-operatoire"},
		{"  Échographie  ", "echographie"},
		{"Rendez-vous n°2", "rendez-vous-n-2"},
		{"---", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.label); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.label, got, tc.want)
		}
	}
}

type typeFixture struct {
	svc      *AppointmentTypeService
	repo     *fakeTypeRepo
	cals     *fakeCalendarRepo
	doctorID uuid.UUID
	calID    uuid.UUID
}

func newTypeFixture(t *testing.T) *typeFixture {
	t.Helper()
	doctorID := uuid.New()
	cal := &calendar.Calendar{Scope: calendar.ScopeDoctor, DoctorID: &doctorID, Label: "Médical", IsActive: true}
	cals := newFakeCalendarRepo(cal)
	repo := newFakeTypeRepo()
	svc := NewAppointmentTypeService(repo, cals, newTestAuditService(), testLogger)
	return &typeFixture{svc: svc, repo: repo, cals: cals, doctorID: doctorID, calID: cal.ID}
}

func (f *typeFixture) createCmd(label string) *appointmenttype.CreateCommand {
	return &appointmenttype.CreateCommand{
		DoctorID:        f.doctorID,
		CalendarID:      f.calID,
		Label:           label,
		DurationMinutes: 30,
		IsActive:        true,
	}
}

func TestCreateTypeSlugsCode(t *testing.T) {
	f := newTypeFixture(t)

	created, err := f.svc.Create(context.Background(), f.createCmd("Consultation Générale"), f.doctorID, "doctor", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Code != "consultation-generale" {
		t.Errorf("code %q, want consultation-generale", created.Code)
	}
}

func TestCreateTypeDisambiguatesCodeCollisions(t *testing.T) {
	f := newTypeFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, f.createCmd("Consultation"), f.doctorID, "doctor", "")
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}
	second, err := f.svc.Create(ctx, f.createCmd("Consultation"), f.doctorID, "doctor", "")
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	third, err := f.svc.Create(ctx, f.createCmd("Consultation"), f.doctorID, "doctor", "")
	if err != nil {
		t.Fatalf("third Create: %v", err)
	}

	if first.Code != "consultation" || second.Code != "consultation-2" || third.Code != "consultation-3" {
		t.Errorf("codes %q/%q/%q, want consultation/consultation-2/consultation-3",
			first.Code, second.Code, third.Code)
	}
}

func TestCreateTypeValidation(t *testing.T) {
	f := newTypeFixture(t)
	ctx := context.Background()

	t.Run("non-positive duration", func(t *testing.T) {
		cmd := f.createCmd("Consultation")
		cmd.DurationMinutes = 0
		_, err := f.svc.Create(ctx, cmd, f.doctorID, "doctor", "")
		if !errors.Is(err, appointmenttype.ErrInvalidDuration) {
			t.Errorf("got %v, want ErrInvalidDuration", err)
		}
	})

	t.Run("negative buffer", func(t *testing.T) {
		cmd := f.createCmd("Consultation")
		cmd.BufferBeforeMinutes = -5
		_, err := f.svc.Create(ctx, cmd, f.doctorID, "doctor", "")
		if !errors.Is(err, appointmenttype.ErrInvalidDuration) {
			t.Errorf("got %v, want ErrInvalidDuration", err)
		}
	})

	t.Run("calendar of another doctor", func(t *testing.T) {
		cmd := f.createCmd("Consultation")
		cmd.DoctorID = uuid.New()
		_, err := f.svc.Create(ctx, cmd, cmd.DoctorID, "doctor", "")
		if !errors.Is(err, calendar.ErrCalendarMismatch) {
			t.Errorf("got %v, want ErrCalendarMismatch", err)
		}
	})

	t.Run("doctor creating for someone else", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.createCmd("Consultation"), uuid.New(), "doctor", "")
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("got %v, want ErrForbidden", err)
		}
	})
}

func TestUpdateTypeRelabelRegeneratesCode(t *testing.T) {
	f := newTypeFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.createCmd("Consultation"), f.doctorID, "doctor", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	label := "Téléconsultation"
	updated, err := f.svc.Update(ctx, created.ID, &appointmenttype.UpdateCommand{Label: &label}, f.doctorID, "doctor", "")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Code != "teleconsultation" {
		t.Errorf("code %q, want teleconsultation", updated.Code)
	}

	// The regenerated code must survive a round trip through the store,
	// not just decorate the returned value.
	stored, err := f.repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Code != "teleconsultation" {
		t.Errorf("stored code %q, want teleconsultation", stored.Code)
	}
	if stored.Label != "Téléconsultation" {
		t.Errorf("stored label %q, want Téléconsultation", stored.Label)
	}
}

func TestUpdateTypeRejectsBadDuration(t *testing.T) {
	f := newTypeFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.createCmd("Consultation"), f.doctorID, "doctor", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	bad := 0
	_, err = f.svc.Update(ctx, created.ID, &appointmenttype.UpdateCommand{DurationMinutes: &bad}, f.doctorID, "doctor", "")
	if !errors.Is(err, appointmenttype.ErrInvalidDuration) {
		t.Fatalf("got %v, want ErrInvalidDuration", err)
	}
}

func TestDeleteTypeForbiddenForOtherDoctor(t *testing.T) {
	f := newTypeFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.createCmd("Consultation"), f.doctorID, "doctor", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := f.svc.Delete(ctx, created.ID, uuid.New(), "doctor", ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}
	if err := f.svc.Delete(ctx, created.ID, uuid.New(), "admin", ""); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
}
