package appointmenttype

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentType is the sizing template for a bookable service: the core
// duration plus blocked-but-not-bookable buffer time on either side.
type AppointmentType struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt *time.Time `gorm:"index" json:"-"`

	DoctorID    uuid.UUID  `gorm:"column:doctor_id;type:uuid;not null;index:idx_types_doctor_calendar_code,unique" json:"doctorId"`
	CalendarID  uuid.UUID  `gorm:"column:calendar_id;type:uuid;not null;index:idx_types_doctor_calendar_code,unique" json:"calendarId"`
	SpecialtyID *uuid.UUID `gorm:"column:specialty_id;type:uuid;index" json:"specialtyId,omitempty"`

	// Code is a slug of the label, unique within (doctor, calendar); collisions
	// get numeric suffixes (-2, -3, …).
	Code  string `gorm:"column:code;type:varchar(120);not null;index:idx_types_doctor_calendar_code,unique" json:"code"`
	Label string `gorm:"column:label;type:varchar(120);not null" json:"label"`

	DurationMinutes     int  `gorm:"column:duration_minutes;not null" json:"durationMinutes"`
	BufferBeforeMinutes int  `gorm:"column:buffer_before_minutes;default:0" json:"bufferBeforeMinutes"`
	BufferAfterMinutes  int  `gorm:"column:buffer_after_minutes;default:0" json:"bufferAfterMinutes"`
	IsActive            bool `gorm:"column:is_active;default:true;index" json:"isActive"`
}

func (AppointmentType) TableName() string {
	return "scheduling.appointment_types"
}

// TotalMinutes is the full block a booking occupies: duration plus both
// buffers. A type whose total is not positive contributes no slots.
func (t *AppointmentType) TotalMinutes() int {
	return t.DurationMinutes + t.BufferBeforeMinutes + t.BufferAfterMinutes
}

// TotalLength is TotalMinutes as a duration, the slot length used by the engine.
func (t *AppointmentType) TotalLength() time.Duration {
	return time.Duration(t.TotalMinutes()) * time.Minute
}

type CreateCommand struct {
	DoctorID            uuid.UUID
	CalendarID          uuid.UUID
	SpecialtyID         *uuid.UUID
	Label               string
	DurationMinutes     int
	BufferBeforeMinutes int
	BufferAfterMinutes  int
	IsActive            bool
}

type UpdateCommand struct {
	Label               *string
	DurationMinutes     *int
	BufferBeforeMinutes *int
	BufferAfterMinutes  *int
	IsActive            *bool

	// Code is filled by the service when a relabel regenerates the slug;
	// it is never taken from client input.
	Code *string
}
