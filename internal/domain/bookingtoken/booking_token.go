package bookingtoken

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTokenNotFound = errors.New("booking token not found")
	ErrTokenExpired  = errors.New("booking token has expired")
	ErrTokenUsed     = errors.New("booking token has already been used")
	ErrTokenScope    = errors.New("booking token does not cover this calendar")
)

// BookingToken gates the public patient flow: a doctor issues a token, the
// patient presents it to browse slots and book once. Only the SHA-256 hash of
// the raw token is stored.
type BookingToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`

	DoctorID    uuid.UUID  `gorm:"column:doctor_id;type:uuid;not null;index" json:"doctorId"`
	CalendarID  *uuid.UUID `gorm:"column:calendar_id;type:uuid;index" json:"calendarId,omitempty"`
	SpecialtyID *uuid.UUID `gorm:"column:specialty_id;type:uuid" json:"specialtyId,omitempty"`

	// CalendarScope optionally restricts the token to one calendar scope.
	CalendarScope string `gorm:"column:calendar_scope;type:varchar(20)" json:"calendarScope,omitempty"`

	TokenHash string     `gorm:"column:token_hash;type:char(64);uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time  `gorm:"column:expires_at;not null;index" json:"expiresAt"`
	UsedAt    *time.Time `gorm:"column:used_at" json:"usedAt,omitempty"`
}

func (BookingToken) TableName() string {
	return "scheduling.booking_tokens"
}

// Valid reports whether the token can still open a booking session.
func (t *BookingToken) Valid(now time.Time) error {
	if t.UsedAt != nil {
		return ErrTokenUsed
	}
	if now.After(t.ExpiresAt) {
		return ErrTokenExpired
	}
	return nil
}

type Repository interface {
	Create(ctx context.Context, t *BookingToken) error

	// GetByHash returns ErrTokenNotFound if no token matches the hash.
	GetByHash(ctx context.Context, hash string) (*BookingToken, error)

	// MarkUsed stamps UsedAt; a token is single-use.
	MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error
}
