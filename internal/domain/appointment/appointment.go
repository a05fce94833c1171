package appointment

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
	// Both spellings occur in historic data; overlap checks must treat the two
	// identically.
	StatusCancelled Status = "cancelled"
	StatusCanceled  Status = "canceled"
)

// CancelledStatuses are the statuses that never block a time range.
var CancelledStatuses = []Status{StatusCancelled, StatusCanceled}

// IsCancelled reports whether the status frees the appointment's time range.
func (s Status) IsCancelled() bool {
	return s == StatusCancelled || s == StatusCanceled
}

// PatientInfo is embedded booking contact data. Patients hold no accounts, so
// this is the only patient record the system keeps.
type PatientInfo struct {
	LastName  string `gorm:"column:patient_last_name;type:varchar(100);not null" json:"lastname"`
	FirstName string `gorm:"column:patient_first_name;type:varchar(100);not null" json:"firstname"`
	Phone     string `gorm:"column:patient_phone;type:varchar(30);not null" json:"phone"`
	Email     string `gorm:"column:patient_email;type:varchar(255)" json:"email,omitempty"`
}

// Transfer records a hand-off of an appointment between doctors.
type Transfer struct {
	FromDoctorID uuid.UUID `json:"fromDoctorId"`
	ToDoctorID   uuid.UUID `json:"toDoctorId"`
	Reason       string    `json:"reason,omitempty"`
}

type Appointment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt *time.Time `gorm:"index" json:"-"`

	CalendarID        uuid.UUID  `gorm:"column:calendar_id;type:uuid;not null;index" json:"calendarId"`
	DoctorID          uuid.UUID  `gorm:"column:doctor_id;type:uuid;not null;index" json:"doctorId"`
	AppointmentTypeID uuid.UUID  `gorm:"column:appointment_type_id;type:uuid;not null" json:"appointmentTypeId"`
	SpecialtyID       *uuid.UUID `gorm:"column:specialty_id;type:uuid;index" json:"specialtyId,omitempty"`

	StartAt time.Time `gorm:"column:start_at;not null;index" json:"startAt"`
	EndAt   time.Time `gorm:"column:end_at;not null" json:"endAt"`
	Status  Status    `gorm:"column:status;type:varchar(20);not null;default:'confirmed';index" json:"status"`

	Patient  PatientInfo `gorm:"embedded" json:"patient"`
	Transfer *Transfer   `gorm:"column:transfer;serializer:json;type:jsonb" json:"transfer,omitempty"`

	CreatedBy *uuid.UUID `gorm:"column:created_by;type:uuid" json:"createdBy,omitempty"`

	CancelledAt        *time.Time `gorm:"column:cancelled_at" json:"cancelledAt,omitempty"`
	CancellationReason string     `gorm:"column:cancellation_reason;type:text" json:"cancellationReason,omitempty"`
}

func (Appointment) TableName() string {
	return "scheduling.appointments"
}

// Blocks reports whether this appointment occupies its time range.
func (a *Appointment) Blocks() bool {
	return !a.Status.IsCancelled()
}

// Cancel marks the appointment cancelled; the time range becomes free again.
func (a *Appointment) Cancel(reason string) error {
	if a.Status.IsCancelled() {
		return ErrAlreadyCancelled
	}
	now := time.Now()
	a.Status = StatusCancelled
	a.CancelledAt = &now
	a.CancellationReason = reason
	return nil
}

type CreateCommand struct {
	CalendarID        uuid.UUID
	DoctorID          uuid.UUID
	AppointmentTypeID uuid.UUID
	SpecialtyID       *uuid.UUID
	StartAt           time.Time
	Patient           PatientInfo
	CreatedBy         *uuid.UUID
}

type TransferCommand struct {
	ToDoctorID   uuid.UUID
	ToCalendarID uuid.UUID
	Reason       string
}

type ListQuery struct {
	DoctorID   *uuid.UUID
	CalendarID *uuid.UUID
	Status     *Status
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

type PagedAppointments struct {
	Appointments []*Appointment
	TotalCount   int64
	Page         int
	PageSize     int
	TotalPages   int
}
