package repository

import (
	"context"
	"errors"
	"time"

	"github.com/agendoc/agendoc/internal/domain/samsevent"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SamsEventRepository struct {
	db *gorm.DB
}

func NewSamsEventRepository(db *gorm.DB) *SamsEventRepository {
	return &SamsEventRepository{db: db}
}

func (r *SamsEventRepository) Create(ctx context.Context, e *samsevent.SamsEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *SamsEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*samsevent.SamsEvent, error) {
	var e samsevent.SamsEvent
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, samsevent.ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *SamsEventRepository) ListInRange(ctx context.Context, from, to time.Time) ([]*samsevent.SamsEvent, error) {
	var events []*samsevent.SamsEvent
	err := r.db.WithContext(ctx).
		Where("start_at < ? AND end_at > ?", to, from).
		Order("start_at").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *SamsEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&samsevent.SamsEvent{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return samsevent.ErrEventNotFound
	}
	return nil
}
