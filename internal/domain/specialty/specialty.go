package specialty

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSpecialtyNotFound = errors.New("specialty not found")
	ErrSpecialtyInUse    = errors.New("specialty is still assigned to doctors")
)

type Specialty struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt *time.Time `gorm:"index" json:"-"`

	// Code is a slug of the label, unique across specialties.
	Code  string `gorm:"column:code;type:varchar(120);uniqueIndex;not null" json:"code"`
	Label string `gorm:"column:label;type:varchar(120);not null" json:"label"`
}

func (Specialty) TableName() string {
	return "scheduling.specialties"
}

type Repository interface {
	Create(ctx context.Context, s *Specialty) error
	GetByID(ctx context.Context, id uuid.UUID) (*Specialty, error)
	List(ctx context.Context) ([]*Specialty, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CodeExists(ctx context.Context, code string, ignoreID *uuid.UUID) (bool, error)

	// InUse reports whether any live calendar still references the specialty.
	InUse(ctx context.Context, id uuid.UUID) (bool, error)
}
