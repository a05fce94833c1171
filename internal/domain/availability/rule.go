package availability

import (
	"time"

	"github.com/google/uuid"
)

// Rule is a recurring weekly availability template for one calendar.
// StartTime/EndTime are clinic-local clock times ("HH:MM"); the slot engine
// anchors them to concrete dates before any interval arithmetic.
type Rule struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	DoctorID   uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index:idx_rules_doctor_day" json:"doctorId"`
	CalendarID uuid.UUID `gorm:"column:calendar_id;type:uuid;not null;index" json:"calendarId"`

	DayOfWeek int    `gorm:"column:day_of_week;not null;index:idx_rules_doctor_day" json:"dayOfWeek"` // 0 = Sunday … 6 = Saturday
	StartTime string `gorm:"column:start_time;type:varchar(5);not null" json:"startTime"`
	EndTime   string `gorm:"column:end_time;type:varchar(5);not null" json:"endTime"`
}

func (Rule) TableName() string {
	return "scheduling.availability_rules"
}

// ExceptionKind mirrors the two override shapes the engine understands.
type ExceptionKind string

const (
	ExceptionClosed ExceptionKind = "closed"
	ExceptionCustom ExceptionKind = "custom"
)

func (k ExceptionKind) IsValid() bool {
	return k == ExceptionClosed || k == ExceptionCustom
}

// Exception is a date-specific override for one calendar: "closed" removes the
// day's availability, "custom" replaces it with an explicit window. Exceptions
// always take precedence over recurring rules for their date.
type Exception struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	DoctorID   uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index:idx_exceptions_doctor_date" json:"doctorId"`
	CalendarID uuid.UUID `gorm:"column:calendar_id;type:uuid;not null;index" json:"calendarId"`

	// Date is a civil date; stored at midnight UTC, keyed by "2006-01-02".
	Date time.Time     `gorm:"column:date;type:date;not null;index:idx_exceptions_doctor_date" json:"date"`
	Kind ExceptionKind `gorm:"column:kind;type:varchar(10);not null" json:"kind"`

	StartTime string `gorm:"column:start_time;type:varchar(5)" json:"startTime,omitempty"`
	EndTime   string `gorm:"column:end_time;type:varchar(5)" json:"endTime,omitempty"`
	Reason    string `gorm:"column:reason;type:text" json:"reason,omitempty"`
}

func (Exception) TableName() string {
	return "scheduling.availability_exceptions"
}

// DateKey returns the civil-date map key used by the slot engine.
func (e *Exception) DateKey() string {
	return e.Date.Format("2006-01-02")
}
