package availability

import "errors"

var (
	ErrRuleNotFound      = errors.New("availability rule not found")
	ErrExceptionNotFound = errors.New("availability exception not found")
	ErrInvalidDayOfWeek  = errors.New("day of week must be between 0 and 6")
	ErrInvalidClockTime  = errors.New("clock time must match HH:MM with start before end")
	ErrInvalidKind       = errors.New("exception kind must be closed or custom")
)
