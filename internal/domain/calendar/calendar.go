package calendar

import (
	"time"

	"github.com/google/uuid"
)

// Scope is the kind of scheduling surface a calendar represents.
type Scope string

const (
	// ScopeDoctor is the doctor-wide calendar. Exactly one per doctor.
	ScopeDoctor Scope = "doctor"
	// ScopeSpecialty is a per-(doctor, specialty) calendar. At most one per pair.
	ScopeSpecialty Scope = "specialty"
	// ScopeSams holds administrative SAMS events; never patient-bookable and
	// excluded from all slot computation.
	ScopeSams Scope = "sams"
)

func (s Scope) IsValid() bool {
	switch s {
	case ScopeDoctor, ScopeSpecialty, ScopeSams:
		return true
	}
	return false
}

// Booking window configuration bounds, matching the dashboard validation.
const (
	MinBookingMinHours = 0
	MaxBookingMinHours = 720 // 30 days
	MinBookingMaxDays  = 1
	MaxBookingMaxDays  = 730 // 2 years

	DefaultBookingMinHours = 0
	DefaultBookingMaxDays  = 365
)

type Calendar struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt *time.Time `gorm:"index" json:"-"`

	Scope       Scope      `gorm:"column:scope;type:varchar(20);not null;index" json:"scope"`
	DoctorID    *uuid.UUID `gorm:"column:doctor_id;type:uuid;index" json:"doctorId,omitempty"`
	SpecialtyID *uuid.UUID `gorm:"column:specialty_id;type:uuid;index" json:"specialtyId,omitempty"`

	Label    string `gorm:"column:label;type:varchar(120);not null" json:"label"`
	Color    string `gorm:"column:color;type:varchar(20)" json:"color,omitempty"`
	Message  string `gorm:"column:message;type:text" json:"message,omitempty"`
	IsActive bool   `gorm:"column:is_active;default:true;index" json:"isActive"`

	// Booking window: minimum lead time in hours and maximum horizon in days
	// for patient-initiated bookings. Zero values fall back to the defaults.
	BookingMinHours *int `gorm:"column:booking_min_hours" json:"bookingMinHours,omitempty"`
	BookingMaxDays  *int `gorm:"column:booking_max_days" json:"bookingMaxDays,omitempty"`
}

func (Calendar) TableName() string {
	return "scheduling.calendars"
}

// EffectiveBookingMinHours returns the configured lead time, defaulted.
func (c *Calendar) EffectiveBookingMinHours() int {
	if c.BookingMinHours == nil {
		return DefaultBookingMinHours
	}
	return *c.BookingMinHours
}

// EffectiveBookingMaxDays returns the configured horizon, defaulted.
func (c *Calendar) EffectiveBookingMaxDays() int {
	if c.BookingMaxDays == nil {
		return DefaultBookingMaxDays
	}
	return *c.BookingMaxDays
}

// Bookable reports whether patients may ever book on this calendar.
func (c *Calendar) Bookable() bool {
	return c.Scope != ScopeSams && c.IsActive
}

type UpdateBookingWindowCommand struct {
	BookingMinHours int
	BookingMaxDays  int
}

type ListCalendarsQuery struct {
	DoctorIDs   []uuid.UUID
	CalendarIDs []uuid.UUID
	// ExcludeSams is forced on by every feed and patient path.
	ExcludeSams bool
}
