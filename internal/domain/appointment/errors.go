package appointment

import "errors"

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	// ErrSlotUnavailable is the commit-time race: the slot looked free when the
	// patient fetched availability but a concurrent booking won. Callers should
	// re-fetch slots and retry.
	ErrSlotUnavailable  = errors.New("slot is no longer available")
	ErrAlreadyCancelled = errors.New("appointment is already cancelled")
	ErrScheduledInPast  = errors.New("cannot schedule appointment in the past")
)
