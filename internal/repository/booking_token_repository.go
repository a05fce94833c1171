package repository

import (
	"context"
	"errors"
	"time"

	"github.com/agendoc/agendoc/internal/domain/bookingtoken"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingTokenRepository struct {
	db *gorm.DB
}

func NewBookingTokenRepository(db *gorm.DB) *BookingTokenRepository {
	return &BookingTokenRepository{db: db}
}

func (r *BookingTokenRepository) Create(ctx context.Context, t *bookingtoken.BookingToken) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *BookingTokenRepository) GetByHash(ctx context.Context, hash string) (*bookingtoken.BookingToken, error) {
	var t bookingtoken.BookingToken
	err := r.db.WithContext(ctx).
		Where("token_hash = ?", hash).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, bookingtoken.ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// MarkUsed stamps the token exactly once; a second call finds used_at set and
// reports the token as already consumed.
func (r *BookingTokenRepository) MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&bookingtoken.BookingToken{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", usedAt)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return bookingtoken.ErrTokenUsed
	}
	return nil
}
