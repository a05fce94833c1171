package calendar

import "errors"

var (
	ErrCalendarNotFound     = errors.New("calendar not found")
	ErrCalendarMismatch     = errors.New("calendar does not belong to this doctor")
	ErrInvalidScope         = errors.New("invalid calendar scope")
	ErrSamsNotBookable      = errors.New("sams calendars are not patient-bookable")
	ErrCalendarInactive     = errors.New("calendar is not accepting bookings")
	ErrDuplicateCalendar    = errors.New("a calendar with this scope already exists for the doctor")
	ErrInvalidBookingWindow = errors.New("booking window out of allowed bounds")
)
