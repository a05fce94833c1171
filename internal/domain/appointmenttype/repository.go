package appointmenttype

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, t *AppointmentType) error

	// GetByID returns ErrTypeNotFound if missing.
	GetByID(ctx context.Context, id uuid.UUID) (*AppointmentType, error)

	// ListActiveByCalendar returns the active types for one calendar.
	ListActiveByCalendar(ctx context.Context, calendarID uuid.UUID) ([]*AppointmentType, error)

	// ListActiveByCalendars returns the active types across several calendars,
	// used by the availability feed.
	ListActiveByCalendars(ctx context.Context, calendarIDs []uuid.UUID) ([]*AppointmentType, error)

	Update(ctx context.Context, id uuid.UUID, cmd *UpdateCommand) (*AppointmentType, error)

	Delete(ctx context.Context, id uuid.UUID) error

	// CodeExists checks slug uniqueness within (doctor, calendar), optionally
	// ignoring one record during updates.
	CodeExists(ctx context.Context, doctorID, calendarID uuid.UUID, code string, ignoreID *uuid.UUID) (bool, error)
}
