package repository

import (
	"context"
	"errors"

	"github.com/agendoc/agendoc/internal/domain/appointmenttype"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentTypeRepository struct {
	db *gorm.DB
}

func NewAppointmentTypeRepository(db *gorm.DB) *AppointmentTypeRepository {
	return &AppointmentTypeRepository{db: db}
}

func (r *AppointmentTypeRepository) Create(ctx context.Context, t *appointmenttype.AppointmentType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *AppointmentTypeRepository) GetByID(ctx context.Context, id uuid.UUID) (*appointmenttype.AppointmentType, error) {
	var t appointmenttype.AppointmentType
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appointmenttype.ErrTypeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *AppointmentTypeRepository) ListActiveByCalendar(ctx context.Context, calendarID uuid.UUID) ([]*appointmenttype.AppointmentType, error) {
	return r.listActive(ctx, []uuid.UUID{calendarID})
}

func (r *AppointmentTypeRepository) ListActiveByCalendars(ctx context.Context, calendarIDs []uuid.UUID) ([]*appointmenttype.AppointmentType, error) {
	if len(calendarIDs) == 0 {
		return nil, nil
	}
	return r.listActive(ctx, calendarIDs)
}

func (r *AppointmentTypeRepository) listActive(ctx context.Context, calendarIDs []uuid.UUID) ([]*appointmenttype.AppointmentType, error) {
	var types []*appointmenttype.AppointmentType
	err := r.db.WithContext(ctx).
		Where("calendar_id IN ? AND is_active AND deleted_at IS NULL", calendarIDs).
		Order("code").
		Find(&types).Error
	if err != nil {
		return nil, err
	}
	return types, nil
}

func (r *AppointmentTypeRepository) Update(ctx context.Context, id uuid.UUID, cmd *appointmenttype.UpdateCommand) (*appointmenttype.AppointmentType, error) {
	updates := map[string]any{}
	if cmd.Label != nil {
		updates["label"] = *cmd.Label
	}
	if cmd.Code != nil {
		updates["code"] = *cmd.Code
	}
	if cmd.DurationMinutes != nil {
		updates["duration_minutes"] = *cmd.DurationMinutes
	}
	if cmd.BufferBeforeMinutes != nil {
		updates["buffer_before_minutes"] = *cmd.BufferBeforeMinutes
	}
	if cmd.BufferAfterMinutes != nil {
		updates["buffer_after_minutes"] = *cmd.BufferAfterMinutes
	}
	if cmd.IsActive != nil {
		updates["is_active"] = *cmd.IsActive
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).
			Model(&appointmenttype.AppointmentType{}).
			Where("id = ? AND deleted_at IS NULL", id).
			Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, appointmenttype.ErrTypeNotFound
		}
	}
	return r.GetByID(ctx, id)
}

func (r *AppointmentTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&appointmenttype.AppointmentType{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", gorm.Expr("NOW()"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return appointmenttype.ErrTypeNotFound
	}
	return nil
}

func (r *AppointmentTypeRepository) CodeExists(ctx context.Context, doctorID, calendarID uuid.UUID, code string, ignoreID *uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&appointmenttype.AppointmentType{}).
		Where("doctor_id = ? AND calendar_id = ? AND code = ? AND deleted_at IS NULL", doctorID, calendarID, code)
	if ignoreID != nil {
		q = q.Where("id <> ?", *ignoreID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
