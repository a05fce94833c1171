package samsevent

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrEventNotFound = errors.New("sams event not found")

// SamsEvent is an administrative calendar entry (on-call rosters, SAMS duty
// shifts). These events live outside the booking system entirely: they are
// never patient-bookable and never enter slot computation.
type SamsEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Title       string    `gorm:"column:title;type:varchar(200);not null" json:"title"`
	StartAt     time.Time `gorm:"column:start_at;not null;index" json:"startAt"`
	EndAt       time.Time `gorm:"column:end_at;not null" json:"endAt"`
	Location    string    `gorm:"column:location;type:varchar(200)" json:"location,omitempty"`
	Description string    `gorm:"column:description;type:text" json:"description,omitempty"`
	Source      string    `gorm:"column:source;type:varchar(50)" json:"source,omitempty"`
}

func (SamsEvent) TableName() string {
	return "scheduling.sams_events"
}

type Repository interface {
	Create(ctx context.Context, e *SamsEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*SamsEvent, error)
	ListInRange(ctx context.Context, from, to time.Time) ([]*SamsEvent, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
