package appointmenttype

import "errors"

var (
	ErrTypeNotFound    = errors.New("appointment type not found")
	ErrTypeMismatch    = errors.New("appointment type does not belong to this calendar or doctor")
	ErrTypeInactive    = errors.New("appointment type is inactive")
	ErrInvalidDuration = errors.New("duration must be positive and buffers non-negative")
)
