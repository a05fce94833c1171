package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// CreateIfFree atomically re-checks the no-overlap invariant for the
	// doctor and inserts the appointment in one transaction. Returns
	// ErrSlotUnavailable when a concurrent non-cancelled booking overlaps.
	CreateIfFree(ctx context.Context, a *Appointment) error

	// GetByID returns ErrAppointmentNotFound if missing.
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// ListBlockingInRange returns the doctor's non-cancelled appointments that
	// overlap [from, to). Appointments are looked up per-doctor, not
	// per-calendar: a doctor cannot be double-booked across calendars.
	ListBlockingInRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Appointment, error)

	// HasOverlap checks whether any non-cancelled appointment for the doctor
	// intersects [startAt, endAt), optionally ignoring one appointment.
	HasOverlap(ctx context.Context, doctorID uuid.UUID, startAt, endAt time.Time, ignoreID *uuid.UUID) (bool, error)

	// UpdateStatus persists status, cancellation, and transfer fields.
	UpdateStatus(ctx context.Context, a *Appointment) error

	// Transfer atomically moves the appointment to another doctor/calendar,
	// re-checking the overlap invariant for the target doctor. Returns
	// ErrSlotUnavailable if the target doctor is busy.
	Transfer(ctx context.Context, a *Appointment, toDoctorID, toCalendarID uuid.UUID) error

	List(ctx context.Context, q *ListQuery) (*PagedAppointments, error)
}
