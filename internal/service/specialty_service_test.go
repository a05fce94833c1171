package service

import (
	"context"
	"errors"
	"testing"

	"github.com/agendoc/agendoc/internal/domain/calendar"
	"github.com/agendoc/agendoc/internal/domain/specialty"
	"github.com/google/uuid"
)

func newSpecialtyService(repo *fakeSpecialtyRepo) *SpecialtyService {
	return NewSpecialtyService(repo, newTestAuditService(), testLogger)
}

func TestCreateSpecialtySlugsCode(t *testing.T) {
	repo := newFakeSpecialtyRepo()
	svc := newSpecialtyService(repo)

	sp, err := svc.Create(context.Background(), "Médecine Générale", uuid.New(), "admin", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sp.Code != "medecine-generale" {
		t.Errorf("code %q, want medecine-generale", sp.Code)
	}
	if sp.Label != "Médecine Générale" {
		t.Errorf("label %q, want Médecine Générale", sp.Label)
	}
}

func TestCreateSpecialtyDisambiguatesCodes(t *testing.T) {
	repo := newFakeSpecialtyRepo()
	svc := newSpecialtyService(repo)
	ctx := context.Background()

	first, err := svc.Create(ctx, "Cardiologie", uuid.New(), "admin", "")
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}
	second, err := svc.Create(ctx, "Cardiologie", uuid.New(), "admin", "")
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if first.Code != "cardiologie" || second.Code != "cardiologie-2" {
		t.Errorf("codes %q, %q, want cardiologie, cardiologie-2", first.Code, second.Code)
	}
}

func TestCreateSpecialtyRequiresLabel(t *testing.T) {
	svc := newSpecialtyService(newFakeSpecialtyRepo())

	_, err := svc.Create(context.Background(), "   ", uuid.New(), "admin", "")
	var validErr *ValidationError
	if !errors.As(err, &validErr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if len(validErr.Fields["label"]) == 0 {
		t.Errorf("expected a label field error, got %v", validErr.Fields)
	}
}

func TestDeleteSpecialty(t *testing.T) {
	sp := &specialty.Specialty{ID: uuid.New(), Code: "cardiologie", Label: "Cardiologie"}
	repo := newFakeSpecialtyRepo(sp)
	repo.cals = newFakeCalendarRepo()
	svc := newSpecialtyService(repo)
	ctx := context.Background()

	if err := svc.Delete(ctx, sp.ID, uuid.New(), "admin", ""); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, sp.ID); !errors.Is(err, specialty.ErrSpecialtyNotFound) {
		t.Fatalf("got %v, want ErrSpecialtyNotFound after delete", err)
	}

	if err := svc.Delete(ctx, sp.ID, uuid.New(), "admin", ""); !errors.Is(err, specialty.ErrSpecialtyNotFound) {
		t.Fatalf("got %v, want ErrSpecialtyNotFound for unknown id", err)
	}
}

func TestDeleteSpecialtyInUse(t *testing.T) {
	sp := &specialty.Specialty{ID: uuid.New(), Code: "cardiologie", Label: "Cardiologie"}
	repo := newFakeSpecialtyRepo(sp)

	doctorID := uuid.New()
	repo.cals = newFakeCalendarRepo(&calendar.Calendar{
		Scope:       calendar.ScopeSpecialty,
		DoctorID:    &doctorID,
		SpecialtyID: &sp.ID,
		Label:       "Cardiologie",
		IsActive:    true,
	})
	svc := newSpecialtyService(repo)

	err := svc.Delete(context.Background(), sp.ID, uuid.New(), "admin", "")
	if !errors.Is(err, specialty.ErrSpecialtyInUse) {
		t.Fatalf("got %v, want ErrSpecialtyInUse", err)
	}
	if _, getErr := repo.GetByID(context.Background(), sp.ID); getErr != nil {
		t.Fatalf("specialty should survive a rejected delete: %v", getErr)
	}
}
