package calendar

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new calendar. Returns ErrDuplicateCalendar when the
	// doctor-scope or (doctor, specialty) uniqueness invariant is violated.
	Create(ctx context.Context, c *Calendar) error

	// GetByID retrieves a calendar. Returns ErrCalendarNotFound if missing.
	GetByID(ctx context.Context, id uuid.UUID) (*Calendar, error)

	// FindByScope looks up a doctor's calendar of the given scope; specialtyID
	// is required for ScopeSpecialty and ignored otherwise.
	FindByScope(ctx context.Context, doctorID uuid.UUID, scope Scope, specialtyID *uuid.UUID) (*Calendar, error)

	// List returns calendars matching the query filters.
	List(ctx context.Context, q *ListCalendarsQuery) ([]*Calendar, error)

	// ListByDoctor returns every calendar owned by the doctor.
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Calendar, error)

	// UpdateBookingWindow persists new lead-time/horizon settings.
	UpdateBookingWindow(ctx context.Context, id uuid.UUID, cmd *UpdateBookingWindowCommand) (*Calendar, error)
}
